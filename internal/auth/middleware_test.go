package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/bookclub/internal/config"
)

func setupGuardedRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	svc := NewService(db, config.Auth{BcryptCost: 4})

	// Default in-memory scs store is enough for middleware tests.
	sm := &SessionManager{SessionManager: scs.New()}
	middleware := NewMiddleware(svc, sm)

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.Use(middleware.Handler())

	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	router.GET("/", ok)
	router.GET("/login", ok)
	router.GET("/register", ok)
	router.GET("/api/12345", ok)
	router.GET("/book/:id", ok)

	return router
}

func TestMiddleware_RedirectsAnonymousToLogin(t *testing.T) {
	router := setupGuardedRouter(t)

	tests := []struct {
		name         string
		path         string
		wantCode     int
		wantLocation string
	}{
		{
			name:         "search page is guarded",
			path:         "/",
			wantCode:     http.StatusFound,
			wantLocation: "/login?next=%2F",
		},
		{
			name:         "book detail is guarded",
			path:         "/book/1",
			wantCode:     http.StatusFound,
			wantLocation: "/login?next=%2Fbook%2F1",
		},
		{
			name:         "query metacharacters in the path are escaped",
			path:         "/book/1&x=2",
			wantCode:     http.StatusFound,
			wantLocation: "/login?next=%2Fbook%2F1%26x%3D2",
		},
		{
			name:     "login page is public",
			path:     "/login",
			wantCode: http.StatusOK,
		},
		{
			name:     "register page is public",
			path:     "/register",
			wantCode: http.StatusOK,
		},
		{
			name:     "json book api is public",
			path:     "/api/12345",
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", tt.path, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))
			}
		})
	}
}

func TestMiddleware_JSONClientsGet401(t *testing.T) {
	router := setupGuardedRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	req.Header.Set("Accept", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "authentication required")
}
