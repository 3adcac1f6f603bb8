package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crediario/backend/internal/domain/shared"
	"github.com/crediario/backend/internal/interfaces/http/dto"
	"github.com/crediario/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func newTestContext(method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name:       "from context",
			setup:      func(c *gin.Context) { c.Set(middleware.RequestIDKey, "ctx-request-id") },
			expectedID: "ctx-request-id",
		},
		{
			name:       "from header when context empty",
			setup:      func(c *gin.Context) { c.Request.Header.Set(middleware.RequestIDHeader, "header-request-id") },
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
		{
			name: "context takes precedence over header",
			setup: func(c *gin.Context) {
				c.Set(middleware.RequestIDKey, "ctx-id")
				c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
			},
			expectedID: "ctx-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodGet, "/", nil)
			tt.setup(c)
			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandlerTenant(t *testing.T) {
	h := &BaseHandler{}
	tenantID := uuid.New()

	t.Run("set by middleware", func(t *testing.T) {
		c, _ := newTestContext(http.MethodGet, "/", nil)
		c.Set(middleware.TenantIDKey, tenantID)

		got, ok := h.tenant(c)
		assert.True(t, ok)
		assert.Equal(t, tenantID, got)
	})

	t.Run("falls back to header", func(t *testing.T) {
		c, _ := newTestContext(http.MethodGet, "/", nil)
		c.Request.Header.Set(middleware.TenantHeaderKey, tenantID.String())

		got, ok := h.tenant(c)
		assert.True(t, ok)
		assert.Equal(t, tenantID, got)
	})

	for name, header := range map[string]string{"missing": "", "malformed": "loja-1", "nil uuid": uuid.Nil.String()} {
		t.Run(name, func(t *testing.T) {
			c, w := newTestContext(http.MethodGet, "/", nil)
			if header != "" {
				c.Request.Header.Set(middleware.TenantHeaderKey, header)
			}

			_, ok := h.tenant(c)
			assert.False(t, ok)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, dto.ErrCodeUnauthorized, decodeResponse(t, w).Error.Code)
		})
	}
}

func TestBaseHandlerPathID(t *testing.T) {
	h := &BaseHandler{}

	t.Run("valid uuid", func(t *testing.T) {
		id := uuid.New()
		c, _ := newTestContext(http.MethodGet, "/", nil)
		c.Params = gin.Params{{Key: "id", Value: id.String()}}

		got, ok := h.pathID(c)
		assert.True(t, ok)
		assert.Equal(t, id, got)
	})

	t.Run("malformed", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/", nil)
		c.Params = gin.Params{{Key: "id", Value: "42"}}

		_, ok := h.pathID(c)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeBadRequest, decodeResponse(t, w).Error.Code)
	})
}

func TestBaseHandlerBindJSON(t *testing.T) {
	type payload struct {
		Name     string `json:"name" binding:"required"`
		Quantity int    `json:"quantity" binding:"gte=1"`
	}
	h := &BaseHandler{}

	t.Run("decodes valid body", func(t *testing.T) {
		c, _ := newTestContext(http.MethodPost, "/", []byte(`{"name":"Maria","quantity":2}`))
		var p payload
		assert.True(t, h.bindJSON(c, &p))
		assert.Equal(t, "Maria", p.Name)
	})

	t.Run("malformed json", func(t *testing.T) {
		c, w := newTestContext(http.MethodPost, "/", []byte(`{"name":`))
		var p payload
		assert.False(t, h.bindJSON(c, &p))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeResponse(t, w).Error.Code)
	})

	t.Run("validation failure lists fields", func(t *testing.T) {
		c, w := newTestContext(http.MethodPost, "/", []byte(`{"quantity":0}`))
		var p payload
		assert.False(t, h.bindJSON(c, &p))
		assert.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		fields := make([]string, 0, len(resp.Error.Fields))
		for _, f := range resp.Error.Fields {
			fields = append(fields, f.Field)
		}
		assert.ElementsMatch(t, []string{"name", "quantity"}, fields)
	})

	t.Run("body over the limit", func(t *testing.T) {
		c, w := newTestContext(http.MethodPost, "/", []byte(`{"name":"`+string(bytes.Repeat([]byte("a"), 64))+`"}`))
		c.Request.Body = http.MaxBytesReader(w, c.Request.Body, 16)
		var p payload
		assert.False(t, h.bindJSON(c, &p))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, dto.ErrCodeRequestTooLarge, decodeResponse(t, w).Error.Code)
	})
}

func TestBaseHandlerResponses(t *testing.T) {
	h := &BaseHandler{}

	t.Run("Success", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/", nil)
		h.Success(c, map[string]string{"key": "value"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decodeResponse(t, w).Success)
	})

	t.Run("SuccessWithMeta", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/", nil)
		h.SuccessWithMeta(c, []string{"a", "b"}, 41, 2, 20)

		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(41), resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})

	t.Run("Created", func(t *testing.T) {
		c, w := newTestContext(http.MethodPost, "/", nil)
		h.Created(c, map[string]string{"id": "123"})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("NoContent", func(t *testing.T) {
		engine := gin.New()
		engine.DELETE("/test", h.NoContent)

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/test", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.Bytes())
	})

	t.Run("Error carries request id and code", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/", nil)
		c.Set(middleware.RequestIDKey, "req-123")

		h.BadRequest(c, "Requisição inválida")

		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, "req-123", resp.Error.RequestID)
		assert.Equal(t, dto.ErrCodeBadRequest, c.GetString(middleware.ErrorCodeKey))
	})
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedErr  string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"invalid input aliases to validation", shared.ErrInvalidInput, http.StatusBadRequest, dto.ErrCodeValidation},
		{"optimistic lock", shared.ErrConcurrencyConflict, http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"already processed", shared.ErrAlreadyProcessed, http.StatusConflict, dto.ErrCodeAlreadyProcessed},
		{"out of stock", shared.ErrOutOfStock, http.StatusUnprocessableEntity, dto.ErrCodeOutOfStock},
		{"insufficient stock", shared.ErrInsufficientStock, http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock},
		{"invalid state", shared.ErrInvalidState, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"wrapped", fmt.Errorf("load account: %w", shared.ErrNotFound), http.StatusNotFound, dto.ErrCodeNotFound},
		{"plain error", assert.AnError, http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestContext(http.MethodGet, "/", nil)

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
			assert.Equal(t, tt.expectedErr, c.GetString(middleware.ErrorCodeKey))
		})
	}

	t.Run("nil writes nothing", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := newTestContext(http.MethodGet, "/", nil)
		h.HandleError(c, nil)
		assert.Empty(t, w.Body.Bytes())
	})

	t.Run("internal errors hide the cause", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := newTestContext(http.MethodGet, "/", nil)
		h.HandleError(c, fmt.Errorf("dial tcp 10.0.0.5:5432: connection refused"))

		resp := decodeResponse(t, w)
		assert.Equal(t, dto.InternalErrorMessage, resp.Error.Message)
		assert.Len(t, c.Errors, 1)
	})

	t.Run("details are forwarded", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := newTestContext(http.MethodGet, "/", nil)
		h.HandleError(c, shared.ErrOutOfStock.WithDetails(map[string]any{"product": "Caneca"}))

		resp := decodeResponse(t, w)
		assert.Equal(t, "Caneca", resp.Error.Details["product"])
	})
}

func TestPageOf(t *testing.T) {
	page, size := pageOf(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)

	page, size = pageOf(3, 50)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, size)
}
