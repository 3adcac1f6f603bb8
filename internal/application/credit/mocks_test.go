package credit

import (
	"context"
	"sync"
	"time"

	"github.com/crediario/backend/internal/domain/catalog"
	"github.com/crediario/backend/internal/domain/credit"
	"github.com/crediario/backend/internal/domain/finance"
	"github.com/crediario/backend/internal/domain/partner"
	"github.com/crediario/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*credit.CreditAccount, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if fn, ok := args.Get(0).(func(uuid.UUID) *credit.CreditAccount); ok {
		return fn(id), args.Error(1)
	}
	return args.Get(0).(*credit.CreditAccount), args.Error(1)
}

func (m *MockAccountRepository) FindByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (*credit.CreditAccount, error) {
	args := m.Called(ctx, tenantID, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credit.CreditAccount), args.Error(1)
}

func (m *MockAccountRepository) FindByCustomerID(ctx context.Context, tenantID, customerID uuid.UUID) (*credit.CreditAccount, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credit.CreditAccount), args.Error(1)
}

func (m *MockAccountRepository) ExistsByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (bool, error) {
	args := m.Called(ctx, tenantID, phone)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context, tenantID uuid.UUID, filter credit.AccountFilter) ([]credit.CreditAccount, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]credit.CreditAccount), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *credit.CreditAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) SaveWithLock(ctx context.Context, account *credit.CreditAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) Summary(ctx context.Context, tenantID uuid.UUID) (*credit.AccountSummary, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credit.AccountSummary), args.Error(1)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *credit.CreditTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*credit.CreditTransaction, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if fn, ok := args.Get(0).(func(uuid.UUID) *credit.CreditTransaction); ok {
		return fn(id), args.Error(1)
	}
	return args.Get(0).(*credit.CreditTransaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, tenantID, accountID uuid.UUID, filter shared.Filter) ([]credit.CreditTransaction, int64, error) {
	args := m.Called(ctx, tenantID, accountID, filter)
	return args.Get(0).([]credit.CreditTransaction), args.Get(1).(int64), args.Error(2)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) ([]partner.Customer, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

type MockCashFlowRepository struct {
	mock.Mock
}

func (m *MockCashFlowRepository) PostEntry(ctx context.Context, entry *finance.CashFlowEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockCashFlowRepository) List(ctx context.Context, tenantID uuid.UUID, filter finance.CashFlowFilter) ([]finance.CashFlowEntry, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]finance.CashFlowEntry), args.Get(1).(int64), args.Error(2)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// =============================================================================
// In-memory fakes
// =============================================================================

// fakeCatalog is a product store whose stock really changes, so tests can
// assert on the stock after a decrement
type fakeCatalog struct {
	mu         sync.Mutex
	products   map[uuid.UUID]*catalog.Product
	failOn     map[uuid.UUID]error
	findErr    error
	decrements []uuid.UUID
}

func newFakeCatalog(products ...*catalog.Product) *fakeCatalog {
	c := &fakeCatalog{
		products: make(map[uuid.UUID]*catalog.Product),
		failOn:   make(map[uuid.UUID]error),
	}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *fakeCatalog) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.findErr != nil {
		return nil, c.findErr
	}
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := c.products[id]; ok && p.TenantID == tenantID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (c *fakeCatalog) GetStock(ctx context.Context, tenantID, productID uuid.UUID) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[productID]
	if !ok || p.TenantID != tenantID {
		return 0, shared.ErrNotFound
	}
	return p.Stock, nil
}

func (c *fakeCatalog) DecrementStock(ctx context.Context, tenantID, productID uuid.UUID, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decrements = append(c.decrements, productID)
	if err, ok := c.failOn[productID]; ok {
		return err
	}
	p, ok := c.products[productID]
	if !ok || p.TenantID != tenantID {
		return shared.ErrNotFound
	}
	return p.Decrease(quantity)
}

func (c *fakeCatalog) stock(id uuid.UUID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.products[id].Stock
}

// fakeIdempotencyStore keeps keys in a map and ignores TTLs
type fakeIdempotencyStore struct {
	mu       sync.Mutex
	keys     map[string]bool
	released []string
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{keys: make(map[string]bool)}
}

func (s *fakeIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *fakeIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *fakeIdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	s.released = append(s.released, key)
	return nil
}

func (s *fakeIdempotencyStore) Close() error {
	return nil
}

// recordingMetrics remembers what was recorded
type recordingMetrics struct {
	mu        sync.Mutex
	outcomes  []string
	warnings  []string
	debtTotal decimal.Decimal
	paidTotal decimal.Decimal
}

func (r *recordingMetrics) RecordOperation(_ context.Context, _ uuid.UUID, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recordingMetrics) RecordWarning(_ context.Context, _ uuid.UUID, kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, kind)
}

func (r *recordingMetrics) RecordDebtAmount(_ context.Context, _ uuid.UUID, amount decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.debtTotal = r.debtTotal.Add(amount)
}

func (r *recordingMetrics) RecordPayment(_ context.Context, _ uuid.UUID, amount decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paidTotal = r.paidTotal.Add(amount)
}
