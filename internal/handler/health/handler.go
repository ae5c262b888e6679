package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/vetdesk/vetdesk-api/internal/handler"
)

type Handler struct {
	db *sqlx.DB
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"status": "up",
		"time":   time.Now().UTC(),
	}))
}

func (h *Handler) Ready(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, handler.NewErrorResponse("database unavailable"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"status": "ready"}))
}
