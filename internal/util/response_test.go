package util

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
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"validation", NewValidationError("category", "unknown category %q", "Sports"), http.StatusBadRequest},
		{"not found", fmt.Errorf("%w: COMP-404", ErrComplaintNotFound), http.StatusNotFound},
		{"version conflict", fmt.Errorf("%w: stale", ErrVersionConflict), http.StatusConflict},
		{"already assigned", ErrAlreadyAssigned, http.StatusConflict},
		{"duplicate", ErrDuplicateComplaint, http.StatusConflict},
		{"invalid transition", fmt.Errorf("%w: Resolved -> Pending", ErrInvalidTransition), http.StatusUnprocessableEntity},
		{"unknown department", ErrUnknownDepartment, http.StatusBadRequest},
		{"permission denied", ErrPermissionDenied, http.StatusForbidden},
		{"unexpected", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			HandleError(c, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			var resp Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestHandleErrorHidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleError(c, errors.New("dial tcp 10.0.0.5:3306: connection refused"))

	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestValidationErrorMessage(t *testing.T) {
	assert.Equal(t, "status: unknown status \"Closed\"", NewValidationError("status", "unknown status %q", "Closed").Error())
	assert.Equal(t, "bad input", (&ValidationError{Message: "bad input"}).Error())

	wrapped := fmt.Errorf("submit: %w", NewValidationError("description", "is required"))
	assert.True(t, IsValidationError(wrapped))
	assert.False(t, IsValidationError(ErrComplaintNotFound))
}

func TestSuccessEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, PageResponse{List: []string{"a"}, Total: 1, Page: 1, Limit: 20})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":200,"message":"success","data":{"list":["a"],"total":1,"page":1,"limit":20}}`, w.Body.String())
}

func TestConv(t *testing.T) {
	assert.Equal(t, 7, MustParseInt("7", 1))
	assert.Equal(t, 1, MustParseInt("seven", 1))
	assert.Equal(t, 1, MustParseInt("", 1))

	assert.Equal(t, "5MB", FormatSize(5*MB))
	assert.Equal(t, "1536B", FormatSize(1536))
	assert.Equal(t, "0B", FormatSize(0))
}

func TestNormalizeMimeType(t *testing.T) {
	assert.Equal(t, "text/plain", NormalizeMimeType(" Text/Plain; charset=utf-8 "))
	assert.Equal(t, "image/png", NormalizeMimeType("image/png"))
	assert.Equal(t, "not a mime", NormalizeMimeType("NOT A MIME"))
}
