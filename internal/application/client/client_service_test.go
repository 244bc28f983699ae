package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/estudio-contable/backend/internal/domain/client"
	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClientRepository is a mock implementation of client.Repository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*client.Client, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, active *bool) ([]client.Client, error) {
	args := m.Called(ctx, ownerID, active)
	return args.Get(0).([]client.Client), args.Error(1)
}

func (m *MockClientRepository) Search(ctx context.Context, ownerID uuid.UUID, folded string) ([]client.Client, error) {
	args := m.Called(ctx, ownerID, folded)
	return args.Get(0).([]client.Client), args.Error(1)
}

func (m *MockClientRepository) ExistsByCUIT(ctx context.Context, cuit string) (bool, error) {
	args := m.Called(ctx, cuit)
	return args.Bool(0), args.Error(1)
}

func (m *MockClientRepository) FindActiveRecurring(ctx context.Context, ownerID uuid.UUID) ([]engagement.RecurringClient, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]engagement.RecurringClient), args.Error(1)
}

func (m *MockClientRepository) NamesByID(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	args := m.Called(ctx, ownerID, ids)
	return args.Get(0).(map[uuid.UUID]string), args.Error(1)
}

func (m *MockClientRepository) Stats(ctx context.Context, ownerID uuid.UUID) (*client.Stats, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Stats), args.Error(1)
}

func (m *MockClientRepository) Save(ctx context.Context, c *client.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockClientRepository) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

type stubCounter struct {
	count int64
	err   error
}

func (s stubCounter) CountByClient(ctx context.Context, ownerID, clientID uuid.UUID) (int64, error) {
	return s.count, s.err
}

func fee(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected a domain error, got %v", err)
	return de.Code
}

func validInput() CreateClientInput {
	return CreateClientInput{
		Name:         "Almacén Don José",
		CUIT:         "20-30405060-7",
		RegisteredOn: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
		Contact:      "jose@example.com",
	}
}

func TestClientService_Create(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc := NewClientService(repo, stubCounter{}, nil)
		repo.On("ExistsByCUIT", mock.Anything, "20-30405060-7").Return(false, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*client.Client")).Return(nil)

		input := validInput()
		input.Recurring = true
		input.MonthlyFee = fee("12000")
		resp, err := svc.Create(ctx, ownerID, input)
		require.NoError(t, err)
		assert.True(t, resp.Active)
		assert.True(t, resp.Recurring)
		assert.Equal(t, "2023-04-01", resp.RegisteredOn)
	})

	t.Run("duplicate cuit", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc := NewClientService(repo, stubCounter{}, nil)
		repo.On("ExistsByCUIT", mock.Anything, "20-30405060-7").Return(true, nil)

		_, err := svc.Create(ctx, ownerID, validInput())
		assert.ErrorIs(t, err, client.ErrDuplicateCUIT)
		assert.Equal(t, "Ya existe un cliente con ese CUIT", err.Error())
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("fixed client without fee", func(t *testing.T) {
		svc := NewClientService(new(MockClientRepository), stubCounter{}, nil)
		input := validInput()
		input.Recurring = true
		_, err := svc.Create(ctx, ownerID, input)
		assert.Equal(t, "INVALID_FEE", codeOf(t, err))
	})

	t.Run("short name and bad cuit", func(t *testing.T) {
		svc := NewClientService(new(MockClientRepository), stubCounter{}, nil)
		input := validInput()
		input.Name = "AB"
		_, err := svc.Create(ctx, ownerID, input)
		assert.Equal(t, "INVALID_NAME", codeOf(t, err))

		input = validInput()
		input.CUIT = "20304050607"
		_, err = svc.Create(ctx, ownerID, input)
		assert.Equal(t, "INVALID_CUIT", codeOf(t, err))
	})
}

func TestClientService_Update(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	newClient := func(t *testing.T) *client.Client {
		c, err := client.NewClient(ownerID, "Almacén Don José", "20-30405060-7", time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), "jose@example.com")
		require.NoError(t, err)
		return c
	}

	t.Run("same cuit skips the uniqueness check", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc := NewClientService(repo, stubCounter{}, nil)
		c := newClient(t)
		repo.On("FindByIDForOwner", mock.Anything, ownerID, c.ID).Return(c, nil)
		repo.On("Save", mock.Anything, c).Return(nil)

		resp, err := svc.Update(ctx, ownerID, c.ID, UpdateClientInput{CUIT: &c.CUIT, Name: ptr("Almacén José")})
		require.NoError(t, err)
		assert.Equal(t, "Almacén José", resp.Name)
		repo.AssertNotCalled(t, "ExistsByCUIT", mock.Anything, mock.Anything)
	})

	t.Run("turning fixed keeps the stored fee", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc := NewClientService(repo, stubCounter{}, nil)
		c := newClient(t)
		require.NoError(t, c.ConfigureBilling(false, fee("5000")))
		repo.On("FindByIDForOwner", mock.Anything, ownerID, c.ID).Return(c, nil)
		repo.On("Save", mock.Anything, c).Return(nil)

		resp, err := svc.Update(ctx, ownerID, c.ID, UpdateClientInput{Recurring: ptr(true)})
		require.NoError(t, err)
		assert.True(t, resp.Recurring)
		assert.True(t, resp.MonthlyFee.Equal(decimal.NewFromInt(5000)))
	})

	t.Run("changed cuit already taken", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc := NewClientService(repo, stubCounter{}, nil)
		c := newClient(t)
		repo.On("FindByIDForOwner", mock.Anything, ownerID, c.ID).Return(c, nil)
		repo.On("ExistsByCUIT", mock.Anything, "27-11111111-1").Return(true, nil)

		_, err := svc.Update(ctx, ownerID, c.ID, UpdateClientInput{CUIT: ptr("27-11111111-1")})
		assert.ErrorIs(t, err, client.ErrDuplicateCUIT)
	})
}

func TestClientService_Delete(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	c, err := client.NewClient(ownerID, "Almacén Don José", "20-30405060-7", time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), "jose@example.com")
	require.NoError(t, err)

	t.Run("blocked by engagements", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc := NewClientService(repo, stubCounter{count: 2}, nil)
		repo.On("FindByIDForOwner", mock.Anything, ownerID, c.ID).Return(c, nil)

		_, err := svc.Delete(ctx, ownerID, c.ID)
		assert.ErrorIs(t, err, client.ErrHasEngagements)
		assert.Equal(t, "CONFLICT", codeOf(t, err))
		repo.AssertNotCalled(t, "DeleteForOwner", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("removed", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc := NewClientService(repo, stubCounter{}, nil)
		repo.On("FindByIDForOwner", mock.Anything, ownerID, c.ID).Return(c, nil)
		repo.On("DeleteForOwner", mock.Anything, ownerID, c.ID).Return(nil)

		resp, err := svc.Delete(ctx, ownerID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cliente eliminado correctamente", resp.Message)
	})

	t.Run("foreign client", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc := NewClientService(repo, stubCounter{}, nil)
		id := uuid.New()
		repo.On("FindByIDForOwner", mock.Anything, ownerID, id).Return(nil, client.ErrNotFound)

		_, err := svc.Delete(ctx, ownerID, id)
		assert.Equal(t, "NOT_FOUND", codeOf(t, err))
	})
}

func TestClientService_Search(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	repo := new(MockClientRepository)
	svc := NewClientService(repo, stubCounter{}, nil)

	_, err := svc.Search(ctx, ownerID, "   ")
	assert.ErrorIs(t, err, client.ErrEmptySearch)

	repo.On("Search", mock.Anything, ownerID, "jose perez").Return([]client.Client{}, nil)
	rows, err := svc.Search(ctx, ownerID, "  JOSÉ Pérez ")
	require.NoError(t, err)
	assert.Empty(t, rows)
	repo.AssertExpectations(t)
}

func ptr[T any](v T) *T {
	return &v
}
