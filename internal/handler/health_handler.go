package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/splicerhq/groupbuy_api/internal/utils"
)

// HealthHandler reports service health.
type HealthHandler struct {
	db *sqlx.DB
}

func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		utils.Error(c, 503, "DATABASE_UNAVAILABLE", "Database connection failed")
		return
	}
	utils.Success(c, 200, "OK", gin.H{"status": "healthy"})
}
