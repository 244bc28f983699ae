package engagement

import (
	"context"
	"sync"
	"time"

	"github.com/estudio-contable/backend/internal/domain/client"
	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// MockEngagementRepository is a mock implementation of engagement.Repository
type MockEngagementRepository struct {
	mock.Mock
}

func (m *MockEngagementRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*engagement.Engagement, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engagement.Engagement), args.Error(1)
}

func (m *MockEngagementRepository) FindByIDForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*engagement.Engagement, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engagement.Engagement), args.Error(1)
}

func (m *MockEngagementRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter engagement.Filter) ([]engagement.Engagement, int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]engagement.Engagement), args.Get(1).(int64), args.Error(2)
}

func (m *MockEngagementRepository) FindPendingDueBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]engagement.Engagement, error) {
	args := m.Called(ctx, ownerID, from, to)
	return args.Get(0).([]engagement.Engagement), args.Error(1)
}

func (m *MockEngagementRepository) FindPendingDueBy(ctx context.Context, ownerID uuid.UUID, date time.Time) ([]engagement.Engagement, error) {
	args := m.Called(ctx, ownerID, date)
	return args.Get(0).([]engagement.Engagement), args.Error(1)
}

func (m *MockEngagementRepository) FindDueBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]engagement.Engagement, error) {
	args := m.Called(ctx, ownerID, from, to)
	return args.Get(0).([]engagement.Engagement), args.Error(1)
}

func (m *MockEngagementRepository) FindCompletedBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]engagement.Engagement, error) {
	args := m.Called(ctx, ownerID, from, to)
	return args.Get(0).([]engagement.Engagement), args.Error(1)
}

func (m *MockEngagementRepository) SumCompletedByMonth(ctx context.Context, ownerID uuid.UUID, year int) (map[int]decimal.Decimal, error) {
	args := m.Called(ctx, ownerID, year)
	return args.Get(0).(map[int]decimal.Decimal), args.Error(1)
}

func (m *MockEngagementRepository) Stats(ctx context.Context, ownerID uuid.UUID, today time.Time) (*engagement.Stats, error) {
	args := m.Called(ctx, ownerID, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engagement.Stats), args.Error(1)
}

func (m *MockEngagementRepository) CountRecurringInRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (int64, error) {
	args := m.Called(ctx, ownerID, start, end)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEngagementRepository) CountByClient(ctx context.Context, ownerID, clientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID, clientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEngagementRepository) FindRecurringWithZeroTotal(ctx context.Context, ownerID uuid.UUID) ([]engagement.Engagement, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]engagement.Engagement), args.Error(1)
}

func (m *MockEngagementRepository) InsertMany(ctx context.Context, engagements []*engagement.Engagement) error {
	args := m.Called(ctx, engagements)
	return args.Error(0)
}

func (m *MockEngagementRepository) Save(ctx context.Context, e *engagement.Engagement) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEngagementRepository) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

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

// MockGenerationRunRepository is a mock implementation of engagement.GenerationRunRepository
type MockGenerationRunRepository struct {
	mock.Mock
}

func (m *MockGenerationRunRepository) Save(ctx context.Context, run *engagement.GenerationRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockGenerationRunRepository) FindRecentForOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]engagement.GenerationRun, error) {
	args := m.Called(ctx, ownerID, limit)
	return args.Get(0).([]engagement.GenerationRun), args.Error(1)
}

// memoryIdempotency is an in-memory shared.IdempotencyStore
type memoryIdempotency struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMemoryIdempotency() *memoryIdempotency {
	return &memoryIdempotency{keys: make(map[string]bool)}
}

func (m *memoryIdempotency) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *memoryIdempotency) IsProcessed(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[key], nil
}

func (m *memoryIdempotency) Close() error { return nil }

// stubLocker grants every lock unless busy is set
type stubLocker struct {
	mu       sync.Mutex
	busy     bool
	keys     []string
	released int
}

func (l *stubLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	if l.busy {
		return func() {}, false, nil
	}
	return func() {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
	}, true, nil
}

// MockBillingMetrics is a mock implementation of BillingMetrics
type MockBillingMetrics struct {
	mock.Mock
}

func (m *MockBillingMetrics) RecordPayment(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal) {
	m.Called(ctx, ownerID, amount)
}

func (m *MockBillingMetrics) RecordEngagementsGenerated(ctx context.Context, ownerID uuid.UUID, trigger engagement.Trigger, count int) {
	m.Called(ctx, ownerID, trigger, count)
}

func (m *MockBillingMetrics) RecordDataQualityWarnings(ctx context.Context, ownerID uuid.UUID, count int) {
	m.Called(ctx, ownerID, count)
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func ptr[T any](v T) *T {
	return &v
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}
