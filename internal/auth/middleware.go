package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookclub/internal/entities"
)

// Context keys for the authenticated person
const (
	ContextKeyPersonID = "auth_person_id"
	ContextKeyUsername = "auth_username"
)

// Middleware gates access to protected pages. Requests without a valid
// session are redirected to the login page; JSON clients get a 401 instead.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	publicPaths    map[string]bool
}

// NewMiddleware creates the authentication guard.
func NewMiddleware(service *Service, sessionManager *SessionManager) *Middleware {
	publicPaths := map[string]bool{
		"/health":      true,
		"/ping":        true,
		"/login":       true,
		"/register":    true,
		"/logout":      true,
		"/favicon.ico": true,
	}

	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		publicPaths:    publicPaths,
	}
}

// Handler returns a Gin middleware handler that authenticates requests.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		if person := m.trySessionAuth(c); person != nil {
			c.Set(ContextKeyPersonID, person.ID)
			c.Set(ContextKeyUsername, person.Username)
			c.Next()
			return
		}

		if m.isAPIRequest(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.Path))
		c.Abort()
	}
}

// trySessionAuth resolves the session's person id to a person record.
// A stale session pointing at a missing person counts as unauthenticated.
func (m *Middleware) trySessionAuth(c *gin.Context) *entities.Person {
	if m.sessionManager == nil {
		return nil
	}

	personID := m.sessionManager.GetPersonID(c.Request)
	if personID == 0 {
		return nil
	}

	person, err := m.service.GetPersonByID(personID)
	if err != nil {
		return nil
	}

	return person
}

// isPublicPath checks if a path should be accessible without authentication.
func (m *Middleware) isPublicPath(path string) bool {
	if m.publicPaths[path] {
		return true
	}

	// The JSON book API and static assets need no authentication.
	if strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/static/") {
		return true
	}

	return false
}

// isAPIRequest determines if this is an API request vs web browser request.
func (m *Middleware) isAPIRequest(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// Helper functions to extract auth data from the Gin context

// GetPersonID retrieves the authenticated person's ID from the context.
// Returns 0 if the request is anonymous.
func GetPersonID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyPersonID); exists {
		if personID, ok := id.(uint); ok {
			return personID
		}
	}
	return 0
}

// GetUsername retrieves the authenticated person's username from the context.
func GetUsername(c *gin.Context) string {
	if name, exists := c.Get(ContextKeyUsername); exists {
		if username, ok := name.(string); ok {
			return username
		}
	}
	return ""
}
