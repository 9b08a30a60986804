package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe_backend/internal/shared/apperr"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	RegisterValidator()
	os.Exit(m.Run())
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.FieldValidation("email", "required"), http.StatusBadRequest},
		{"authentication", apperr.Authentication("bad token"), http.StatusUnauthorized},
		{"not found", fmt.Errorf("wrap: %w", apperr.NotFound("recipe not found")), http.StatusNotFound},
		{"method not allowed", apperr.New(apperr.ErrMethodNotAllowed, "nope"), http.StatusMethodNotAllowed},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestError(t *testing.T) {
	t.Run("validation error with details", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

		Error(c, apperr.FieldValidation("password", "too short"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var body ErrorBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "too short", body.Error)
		assert.Equal(t, map[string]string{"password": "too short"}, body.Details)
		assert.True(t, c.IsAborted())
	})

	t.Run("internal error is hidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		Error(c, errors.New("dial tcp: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

type bindTarget struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=5"`
	Minutes  int    `json:"time_minutes" binding:"gte=0"`
}

func TestBindError(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{"missing fields", `{}`, []string{"email", "password"}},
		{"invalid email and short password", `{"email":"nope","password":"pw"}`, []string{"email", "password"}},
		{"negative number", `{"email":"a@b.co","password":"secret","time_minutes":-1}`, []string{"time_minutes"}},
		{"wrong type", `{"email":"a@b.co","password":"secret","time_minutes":"x"}`, []string{"time_minutes"}},
		{"empty body", ``, nil},
		{"malformed json", `{"email":`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var target bindTarget
			bindErr := c.ShouldBindJSON(&target)
			require.Error(t, bindErr)

			err := BindError(bindErr)
			assert.ErrorIs(t, err, apperr.ErrValidation)
			details := apperr.Details(err)
			for _, f := range tt.wantFields {
				assert.Contains(t, details, f)
			}
			if tt.wantFields == nil {
				assert.Empty(t, details)
			}
		})
	}
}

type patchTarget struct {
	Name  *string `json:"name" binding:"omitempty,max=3"`
	Price *amount `json:"price"`
}

// amount は不正な値をフィールドエラーとして返すJSON型です。
type amount string

func (a *amount) UnmarshalJSON(b []byte) error {
	if string(b) != `"1.00"` {
		return apperr.FieldValidation("price", "a valid number is required")
	}
	*a = "1.00"
	return nil
}

func TestBindPatch(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantErr   bool
		wantField string
	}{
		{"empty body is an empty patch", ``, false, ""},
		{"empty object", `{}`, false, ""},
		{"valid field", `{"name":"abc"}`, false, ""},
		{"validation still applies", `{"name":"abcd"}`, true, "name"},
		{"field error from decoder", `{"price":"abc"}`, true, "price"},
		{"malformed json", `{"name":`, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var target patchTarget
			err := BindPatch(c, &target)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			err = BindError(err)
			assert.ErrorIs(t, err, apperr.ErrValidation)
			if tt.wantField != "" {
				assert.Contains(t, apperr.Details(err), tt.wantField)
			}
		})
	}
}
