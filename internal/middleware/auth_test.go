package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"scms_backend/internal/model"
	"scms_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(roles ...model.UserRole) *gin.Engine {
	r := gin.New()
	r.GET("/whoami", AuthMiddleware(secret), RoleMiddleware(roles...), func(c *gin.Context) {
		actor, _ := util.GetActor(c)
		c.JSON(http.StatusOK, actor)
	})
	return r
}

func token(t *testing.T, actor model.Actor) string {
	t.Helper()
	tok, err := util.GenerateJWT(actor, secret, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(model.Student)
	student := model.Actor{ID: "STU-001", Name: "Rahul Sharma", Role: model.Student}

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bearer header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, student))
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"id":"STU-001"`)
	})

	t.Run("query parameter", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami?token="+token(t, student), nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRoleMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		allowed []model.UserRole
		actor   model.Actor
		want    int
	}{
		{"matching role", []model.UserRole{model.DepartmentHead}, model.Actor{ID: "H-1", Role: model.DepartmentHead}, http.StatusOK},
		{"admin always passes", []model.UserRole{model.Student}, model.Actor{ID: "A-1", Role: model.Admin}, http.StatusOK},
		{"student on admin route", []model.UserRole{model.Admin}, model.Actor{ID: "S-1", Role: model.Student}, http.StatusForbidden},
		{"head on student route", []model.UserRole{model.Student}, model.Actor{ID: "H-1", Role: model.DepartmentHead}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set("Authorization", "Bearer "+token(t, tt.actor))
			newRouter(tt.allowed...).ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRoleMiddlewareWithoutActor(t *testing.T) {
	r := gin.New()
	r.GET("/admin", RoleMiddleware(model.Admin), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
