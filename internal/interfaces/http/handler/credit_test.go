package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	creditapp "github.com/crediario/backend/internal/application/credit"
	"github.com/crediario/backend/internal/domain/catalog"
	"github.com/crediario/backend/internal/domain/credit"
	"github.com/crediario/backend/internal/infrastructure/cache"
	"github.com/crediario/backend/internal/infrastructure/event"
	"github.com/crediario/backend/internal/infrastructure/persistence"
	"github.com/crediario/backend/internal/infrastructure/persistence/models"
	"github.com/crediario/backend/internal/interfaces/http/dto"
	"github.com/crediario/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

type creditTestEnv struct {
	engine   *gin.Engine
	products *persistence.GormProductRepository
	tenantID uuid.UUID
}

func newCreditTestEnv(t *testing.T) *creditTestEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	log := zap.NewNop()
	accounts := persistence.NewGormCreditAccountRepository(db)
	transactions := persistence.NewGormCreditTransactionRepository(db)
	customers := persistence.NewGormCustomerRepository(db)
	products := persistence.NewGormProductRepository(db)

	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	ledger := creditapp.NewLedgerService(accounts, transactions, event.NewInMemoryEventBus(log), nil, log,
		creditapp.WithTransactionManager(persistence.NewGormTransactionManager(db)))
	resolver := credit.NewCustomerResolver(accounts, customers)
	ops := creditapp.NewDebtOperationService(ledger, resolver, customers, products, accounts, transactions,
		persistence.NewGormCashFlowRepository(db), log, creditapp.WithIdempotencyStore(store))

	opHandler := NewCreditOperationHandler(ops, creditapp.NewFormService(products, resolver))
	accHandler := NewCreditAccountHandler(ledger)

	engine := gin.New()
	api := engine.Group("/api/v1/credit", middleware.RequestID(), middleware.TenantMiddleware())
	api.POST("/operations", opHandler.Submit)
	api.POST("/operations/stage", opHandler.StageItem)
	api.POST("/schedule/preview", opHandler.PreviewSchedule)
	api.GET("/schedule/options", opHandler.ScheduleOptions)
	api.GET("/customers/resolve", opHandler.ResolveCustomer)
	api.GET("/accounts", accHandler.List)
	api.GET("/accounts/summary", accHandler.Summary)
	api.GET("/accounts/:id", accHandler.Get)
	api.DELETE("/accounts/:id", accHandler.Delete)
	api.GET("/accounts/:id/transactions", accHandler.Transactions)
	api.POST("/accounts/:id/payments", accHandler.RegisterPayment)
	api.POST("/accounts/:id/debts", accHandler.RegisterDebt)

	return &creditTestEnv{engine: engine, products: products, tenantID: uuid.New()}
}

func (e *creditTestEnv) seedProduct(t *testing.T, name string, price string, stock int) uuid.UUID {
	t.Helper()
	p, err := catalog.NewProduct(e.tenantID, name, decimal.RequireFromString(price), stock)
	require.NoError(t, err)
	require.NoError(t, e.products.Create(context.Background(), p))
	return p.ID
}

func (e *creditTestEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1/credit"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TenantHeaderKey, e.tenantID.String())
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decodeAs[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func saleForm(productID uuid.UUID, quantity int) map[string]any {
	return map[string]any{
		"customer_name":  "Maria Souza",
		"customer_phone": "(11) 98765-4321",
		"items":          []map[string]any{{"product_id": productID, "quantity": quantity}},
		"installments":   4,
		"frequency":      "monthly",
		"first_due_date": "15/01/2027",
		"description":    "Jogo de panelas",
	}
}

func TestCreditOperationHandler_Submit(t *testing.T) {
	t.Run("books the sale", func(t *testing.T) {
		env := newCreditTestEnv(t)
		productID := env.seedProduct(t, "Panela", "50.00", 5)

		w := env.do(t, http.MethodPost, "/operations", saleForm(productID, 2))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		result := decodeAs[creditapp.DebtOperationResult](t, w).Data
		assert.True(t, result.CustomerCreated)
		assert.True(t, result.AccountCreated)
		assert.True(t, result.Account.TotalDebt.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, "11987654321", result.Account.CustomerPhone)
		assert.True(t, result.Plan.InstallmentValue.Equal(decimal.NewFromInt(25)))
		assert.Equal(t, "15/04/2027", result.Plan.FinalDueDate)
		assert.Empty(t, result.Warnings)

		stock, err := env.products.GetStock(context.Background(), env.tenantID, productID)
		require.NoError(t, err)
		assert.Equal(t, 3, stock)
	})

	t.Run("customer with an account is rejected", func(t *testing.T) {
		env := newCreditTestEnv(t)
		productID := env.seedProduct(t, "Panela", "50.00", 5)
		require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/operations", saleForm(productID, 1)).Code)

		w := env.do(t, http.MethodPost, "/operations", saleForm(productID, 1))
		assert.Equal(t, http.StatusConflict, w.Code)
		resp := decodeAs[any](t, w)
		assert.Equal(t, dto.ErrCodeDuplicateAccount, resp.Error.Code)
		assert.Contains(t, resp.Error.Details, "account")
	})

	t.Run("missing fields", func(t *testing.T) {
		env := newCreditTestEnv(t)
		form := saleForm(uuid.New(), 1)
		delete(form, "customer_name")

		w := env.do(t, http.MethodPost, "/operations", form)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeAs[any](t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Fields, 1)
		assert.Equal(t, "customer_name", resp.Error.Fields[0].Field)
	})

	t.Run("not enough stock", func(t *testing.T) {
		env := newCreditTestEnv(t)
		productID := env.seedProduct(t, "Panela", "50.00", 1)

		w := env.do(t, http.MethodPost, "/operations", saleForm(productID, 3))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeAs[any](t, w)
		assert.Equal(t, dto.ErrCodeInsufficientStock, resp.Error.Code)
		assert.Contains(t, resp.Error.Details, "items")

		list := decodeAs[[]creditapp.AccountResponse](t, env.do(t, http.MethodGet, "/accounts", nil))
		assert.Empty(t, list.Data)
	})

	t.Run("invalid due date", func(t *testing.T) {
		env := newCreditTestEnv(t)
		productID := env.seedProduct(t, "Panela", "50.00", 5)
		form := saleForm(productID, 1)
		form["first_due_date"] = "31/02/2027"

		w := env.do(t, http.MethodPost, "/operations", form)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidScheduleInput, decodeAs[any](t, w).Error.Code)
	})

	t.Run("resubmission with the same key", func(t *testing.T) {
		env := newCreditTestEnv(t)
		productID := env.seedProduct(t, "Panela", "50.00", 5)

		first := env.do(t, http.MethodPost, "/operations", saleForm(productID, 1), middleware.IdempotencyKeyHeader, "form-42")
		require.Equal(t, http.StatusCreated, first.Code)

		second := env.do(t, http.MethodPost, "/operations", saleForm(productID, 1), middleware.IdempotencyKeyHeader, "form-42")
		assert.Equal(t, http.StatusConflict, second.Code)
		assert.Equal(t, dto.ErrCodeAlreadyProcessed, decodeAs[any](t, second).Error.Code)
	})

	t.Run("failed submission releases the key", func(t *testing.T) {
		env := newCreditTestEnv(t)
		productID := env.seedProduct(t, "Panela", "50.00", 1)

		failed := env.do(t, http.MethodPost, "/operations", saleForm(productID, 2), middleware.IdempotencyKeyHeader, "form-7")
		require.Equal(t, http.StatusUnprocessableEntity, failed.Code)

		retried := env.do(t, http.MethodPost, "/operations", saleForm(productID, 1), middleware.IdempotencyKeyHeader, "form-7")
		assert.Equal(t, http.StatusCreated, retried.Code, retried.Body.String())
	})
}

func TestCreditOperationHandler_FormChecks(t *testing.T) {
	env := newCreditTestEnv(t)
	productID := env.seedProduct(t, "Caneca", "12.50", 2)

	t.Run("stage accepts an item in stock", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/operations/stage", map[string]any{
			"item": map[string]any{"product_id": productID, "quantity": 2},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decodeAs[creditapp.StageItemResponse](t, w).Data
		assert.True(t, resp.Accepted)
		assert.True(t, resp.Total.Equal(decimal.RequireFromString("25")))
	})

	t.Run("stage counts staged quantities", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/operations/stage", map[string]any{
			"staged_items": []map[string]any{{"product_id": productID, "quantity": 2}},
			"item":         map[string]any{"product_id": productID, "quantity": 1},
		})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeAs[creditapp.StageItemResponse](t, w).Data
		assert.False(t, resp.Accepted)
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, 0, resp.Errors[0].Available)
		assert.Equal(t, 1, resp.Errors[0].Requested)
	})

	t.Run("preview", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/schedule/preview", map[string]any{
			"total":          "100",
			"installments":   3,
			"frequency":      "weekly",
			"first_due_date": "05/03/2027",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		plan := decodeAs[creditapp.PlanResponse](t, w).Data
		assert.True(t, plan.InstallmentValue.Equal(decimal.RequireFromString("33.33")))
		assert.Equal(t, []string{"05/03/2027", "12/03/2027", "19/03/2027"}, plan.DueDates)
	})

	t.Run("preview rejects unknown frequency", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/schedule/preview", map[string]any{
			"total":          "100",
			"installments":   3,
			"frequency":      "yearly",
			"first_due_date": "05/03/2027",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("preview rejects a zero total", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/schedule/preview", map[string]any{
			"total":          "0",
			"installments":   3,
			"frequency":      "monthly",
			"first_due_date": "05/03/2027",
		})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
		assert.Equal(t, dto.ErrCodeInvalidScheduleInput, decodeAs[any](t, w).Error.Code)
	})

	t.Run("options", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/schedule/options", nil)
		require.Equal(t, http.StatusOK, w.Code)
		opts := decodeAs[creditapp.ScheduleOptionsResponse](t, w).Data
		assert.Len(t, opts.Installments, 24)
		assert.Equal(t, []string{"daily", "weekly", "biweekly", "monthly"}, opts.Frequencies)
	})

	t.Run("resolve reports a new customer", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/customers/resolve?name=Jo%C3%A3o&phone=11%2091234-5678", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		res := decodeAs[creditapp.ResolutionResponse](t, w).Data
		assert.Equal(t, string(credit.ResolutionNewCustomer), res.Kind)
		assert.Equal(t, "11912345678", res.NormalizedPhone)
	})
}

func TestCreditAccountHandler_Ledger(t *testing.T) {
	env := newCreditTestEnv(t)
	productID := env.seedProduct(t, "Panela", "50.00", 5)

	w := env.do(t, http.MethodPost, "/operations", saleForm(productID, 2))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	accountID := decodeAs[creditapp.DebtOperationResult](t, w).Data.Account.ID.String()

	t.Run("list and get", func(t *testing.T) {
		list := decodeAs[[]creditapp.AccountResponse](t, env.do(t, http.MethodGet, "/accounts?search=maria", nil))
		require.Len(t, list.Data, 1)
		assert.Equal(t, int64(1), list.Meta.Total)

		w := env.do(t, http.MethodGet, "/accounts/"+accountID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Maria Souza", decodeAs[creditapp.AccountResponse](t, w).Data.CustomerName)
	})

	t.Run("unknown and malformed ids", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/accounts/"+uuid.NewString(), nil).Code)
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/accounts/42", nil).Code)
	})

	t.Run("delete with debt is refused", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, "/accounts/"+accountID, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeNonZeroBalance, decodeAs[any](t, w).Error.Code)
	})

	t.Run("payment must be positive", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/accounts/"+accountID+"/payments", map[string]any{"amount": "0"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidAmount, decodeAs[any](t, w).Error.Code)
	})

	t.Run("manual debt then payments", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/accounts/"+accountID+"/debts", map[string]any{"amount": "20", "description": "Ajuste"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.True(t, decodeAs[creditapp.MovementResponse](t, w).Data.Account.TotalDebt.Equal(decimal.NewFromInt(120)))

		w = env.do(t, http.MethodPost, "/accounts/"+accountID+"/payments", map[string]any{"amount": "30"})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decodeAs[creditapp.MovementResponse](t, w).Data.Account.TotalDebt.Equal(decimal.NewFromInt(90)))

		w = env.do(t, http.MethodPost, "/accounts/"+accountID+"/payments", map[string]any{"amount": "500"})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decodeAs[creditapp.MovementResponse](t, w).Data.Account.TotalDebt.IsZero())
	})

	t.Run("history newest first", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/accounts/"+accountID+"/transactions?page_size=2", nil)
		require.Equal(t, http.StatusOK, w.Code)
		history := decodeAs[[]creditapp.TransactionResponse](t, w)
		assert.Equal(t, int64(4), history.Meta.Total)
		require.Len(t, history.Data, 2)
		assert.True(t, history.Data[0].BalanceAfter.IsZero())
	})

	t.Run("summary", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/accounts/summary", nil)
		require.Equal(t, http.StatusOK, w.Code)
		summary := decodeAs[creditapp.SummaryResponse](t, w).Data
		assert.Equal(t, int64(1), summary.AccountCount)
		assert.True(t, summary.TotalOutstanding.IsZero())
	})

	t.Run("delete once settled", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/accounts/"+accountID, nil).Code)
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/accounts/"+accountID, nil).Code)
	})
}

func TestCreditHandlers_RequireTenant(t *testing.T) {
	env := newCreditTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/credit/accounts", nil)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
