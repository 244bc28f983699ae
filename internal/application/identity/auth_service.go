package identity

import (
	"context"
	"errors"

	"github.com/estudio-contable/backend/internal/domain/identity"
	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/estudio-contable/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenIssuer signs access tokens
type TokenIssuer interface {
	GenerateToken(userID uuid.UUID, email string) (*auth.Token, error)
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo  identity.UserRepository
	tokens    TokenIssuer
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	tokens TokenIssuer,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:  userRepo,
		tokens:    tokens,
		blacklist: blacklist,
		logger:    logger,
	}
}

// Register creates an account and signs the user in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	user, err := identity.NewUser(input.Email, input.Password, input.Name)
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, shared.NewPersistenceError("register", uuid.Nil, user.Email, err)
	}
	if exists {
		s.logger.Info("Registration with taken email", zap.String("email", user.Email))
		return nil, identity.ErrEmailTaken
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, shared.NewPersistenceError("register", user.ID, user.Email, err)
	}
	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))

	return s.issue(user)
}

// Login authenticates an active user by email and password
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := identity.NormalizeEmail(input.Email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown email", zap.String("email", email), zap.String("ip", input.IP))
			return nil, identity.ErrInvalidCredentials
		}
		return nil, shared.NewPersistenceError("login", uuid.Nil, email, err)
	}

	if !user.CanLogin() {
		s.logger.Warn("Login attempt for inactive account", zap.String("user_id", user.ID.String()))
		return nil, identity.ErrInvalidCredentials
	}
	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt",
			zap.String("user_id", user.ID.String()),
			zap.String("ip", input.IP))
		return nil, identity.ErrInvalidCredentials
	}

	s.logger.Info("User logged in successfully", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

func (s *AuthService) issue(user *identity.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "No se pudo generar el token")
	}
	return &AuthResult{
		User:      ToUserInfo(user),
		Token:     token.AccessToken,
		ExpiresAt: token.ExpiresAt,
	}, nil
}

// Logout revokes the presented token until it would have expired
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if s.blacklist == nil || input.TokenJTI == "" {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, input.ExpiresIn); err != nil {
		s.logger.Error("Failed to blacklist token", zap.String("user_id", input.UserID.String()), zap.Error(err))
		return err
	}
	s.logger.Info("User logout", zap.String("user_id", input.UserID.String()))
	return nil
}

// Profile returns the caller's account
func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("UNAUTHORIZED", "Usuario no encontrado")
		}
		return nil, shared.NewPersistenceError("profile", userID, "", err)
	}
	info := ToUserInfo(user)
	return &info, nil
}

// UpdateProfile changes the display name and photo
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.NewPersistenceError("update_profile", userID, "", err)
	}
	if input.Name != nil {
		if err := user.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.ProfilePhoto != nil {
		user.SetProfilePhoto(*input.ProfilePhoto)
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, shared.NewPersistenceError("update_profile", userID, "", err)
	}
	info := ToUserInfo(user)
	return &info, nil
}
