package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookclub/internal/database"
)

// HealthController reports liveness. SQLite is the only dependency, so the
// check is a single database ping.
type HealthController struct {
	db      *database.Database
	version string
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{
		db:      db,
		version: version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	body := gin.H{
		"status":  "healthy",
		"version": h.version,
		"time":    time.Now().Format(time.RFC3339),
	}

	if err := h.pingDatabase(); err != nil {
		body["status"] = "unhealthy"
		body["database"] = err.Error()
		c.IndentedJSON(http.StatusServiceUnavailable, body)
		return
	}

	c.IndentedJSON(http.StatusOK, body)
}

func (h *HealthController) pingDatabase() error {
	if h.db == nil {
		return errors.New("database not configured")
	}
	sqlDB, err := h.db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
