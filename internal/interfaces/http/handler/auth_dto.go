package handler

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Name     string `json:"nombre" binding:"required,max=255"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest is the body of PATCH /auth/profile. Absent fields
// are left unchanged.
type UpdateProfileRequest struct {
	Name         *string `json:"nombre" binding:"omitempty,min=2,max=255"`
	ProfilePhoto *string `json:"fotoPerfil" binding:"omitempty,max=2048"`
}

// MessageResponse carries a confirmation message
type MessageResponse struct {
	Message string `json:"message"`
}
