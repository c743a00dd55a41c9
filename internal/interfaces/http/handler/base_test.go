package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockadoodle/backend/internal/domain/shared"
	"github.com/stockadoodle/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	h := &BaseHandler{}
	router.GET("/test", func(c *gin.Context) {
		h.HandleError(c, err)
	})
	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestHandleError_DomainErrors(t *testing.T) {
	tests := []struct {
		err        *shared.DomainError
		wantStatus int
	}{
		{shared.ErrNotFound, http.StatusNotFound},
		{shared.ErrBatchNotFound, http.StatusNotFound},
		{shared.ErrProductNotFound, http.StatusNotFound},
		{shared.ErrRetailerNotFound, http.StatusNotFound},
		{shared.ErrInvalidInput, http.StatusBadRequest},
		{shared.ErrInvalidLine, http.StatusBadRequest},
		{shared.ErrInsufficientStock, http.StatusUnprocessableEntity},
		{shared.ErrAlreadyDisposed, http.StatusConflict},
		{shared.ErrConcurrencyConflict, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			w := performError(t, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)

			errInfo := decodeError(t, w)
			assert.Equal(t, tt.err.Code, errInfo.Code)
			assert.Equal(t, tt.err.Message, errInfo.Message)
		})
	}
}

func TestHandleError_WrappedDomainError(t *testing.T) {
	wrapped := fmt.Errorf("posting sale: %w", shared.ErrInsufficientStock)
	w := performError(t, wrapped)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errInfo := decodeError(t, w)
	assert.Equal(t, "INSUFFICIENT_STOCK", errInfo.Code)
}

func TestHandleError_UnknownError(t *testing.T) {
	w := performError(t, errors.New("connection reset"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	errInfo := decodeError(t, w)
	assert.Equal(t, "INTERNAL_ERROR", errInfo.Code)
	// Internal details must not leak to clients
	assert.NotContains(t, errInfo.Message, "connection reset")
}

func TestBaseHandlerResponses(t *testing.T) {
	router := gin.New()
	h := &BaseHandler{}
	router.GET("/ok", func(c *gin.Context) {
		h.Success(c, gin.H{"value": 1})
	})
	router.POST("/created", func(c *gin.Context) {
		h.Created(c, gin.H{"id": "abc"})
	})

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/ok", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
	})

	t.Run("created", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/created", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})
}
