package clinic

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vetdesk/vetdesk-api/internal/handler"
	"github.com/vetdesk/vetdesk-api/internal/middleware"
	"github.com/vetdesk/vetdesk-api/internal/model"
	clinicService "github.com/vetdesk/vetdesk-api/internal/service/clinic"
)

type Handler struct {
	service clinicService.ClinicServicer
}

func NewHandler(service clinicService.ClinicServicer) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires clinic management. Creating, updating and
// deactivating clinics is platform administration, not clinic staff
// work, so everything except reads requires ADMIN_MASTER.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	clinics := r.Group("/clinics")
	{
		clinics.GET("/:clinic_id", auth.RequireClinicRoles(), h.GetClinic)

		admin := clinics.Group("", auth.RequireAdminMaster())
		{
			admin.GET("", h.ListClinics)
			admin.POST("", h.CreateClinic)
			admin.PUT("/:clinic_id", h.UpdateClinic)
			admin.DELETE("/:clinic_id", h.DeactivateClinic)
			admin.POST("/:clinic_id/webhook-secret", h.RotateWebhookSecret)
		}
	}
}

func (h *Handler) CreateClinic(c *gin.Context) {
	var req model.CreateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	clinic, err := h.service.CreateClinic(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(clinic))
}

func (h *Handler) GetClinic(c *gin.Context) {
	id, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
		return
	}

	clinic, err := h.service.GetClinic(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinic))
}

func (h *Handler) UpdateClinic(c *gin.Context) {
	id, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
		return
	}

	var req model.UpdateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	clinic, err := h.service.UpdateClinic(c.Request.Context(), id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinic))
}

func (h *Handler) DeactivateClinic(c *gin.Context) {
	id, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
		return
	}

	if err := h.service.DeactivateClinic(c.Request.Context(), id); err != nil {
		handler.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RotateWebhookSecret returns the new secret once; only the hash is
// stored.
func (h *Handler) RotateWebhookSecret(c *gin.Context) {
	id, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
		return
	}

	secret, err := h.service.RotateWebhookSecret(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"secret": secret}))
}

func (h *Handler) ListClinics(c *gin.Context) {
	clinics, err := h.service.ListClinics(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinics))
}
