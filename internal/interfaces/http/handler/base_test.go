package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/hamkkebu/transaction-service/internal/domain/ledger"
	"github.com/hamkkebu/transaction-service/internal/domain/shared"
	"github.com/hamkkebu/transaction-service/internal/interfaces/http/middleware"
)

func TestBaseHandler_HandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &BaseHandler{}

	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody string
	}{
		{"transaction not found", ledger.ErrTransactionNotFound, http.StatusNotFound, "ERR_NOT_FOUND"},
		{"ledger not found", ledger.ErrLedgerNotFound, http.StatusNotFound, "ERR_NOT_FOUND"},
		{"access denied", ledger.ErrLedgerAccessDenied, http.StatusForbidden, "ERR_FORBIDDEN"},
		{"wrapped domain error", fmt.Errorf("context: %w", ledger.ErrTransactionNotFound), http.StatusNotFound, "ERR_NOT_FOUND"},
		{"dependency unavailable", shared.NewDomainError("DEPENDENCY_UNAVAILABLE", "identity service unreachable"), http.StatusServiceUnavailable, "ERR_DEPENDENCY_UNAVAILABLE"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "ERR_INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}

func TestBaseHandler_HandleError_Nil(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &BaseHandler{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.HandleError(c, nil)
	assert.Empty(t, w.Body.String())
}

func TestBaseHandler_ErrorCarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &BaseHandler{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(RequestIDKey, "req-abc-123")

	h.NotFound(c, "gone")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "req-abc-123")
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(middleware.JWTUserIDKey, int64(42))
	id, err := getUserID(c)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)

	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err = getUserID(c2)
	assert.Error(t, err)
}
