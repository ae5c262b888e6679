package prescription

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vetdesk/vetdesk-api/internal/handler"
	"github.com/vetdesk/vetdesk-api/internal/middleware"
	"github.com/vetdesk/vetdesk-api/internal/model"
	prescriptionService "github.com/vetdesk/vetdesk-api/internal/service/prescription"
)

type Handler struct {
	service prescriptionService.PrescriptionServicer
}

func NewHandler(service prescriptionService.PrescriptionServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	prescriptions := r.Group("/clinics/:clinic_id/prescriptions", auth.RequireClinicRoles())
	{
		prescriptions.GET("", h.ListPrescriptions)
		prescriptions.GET("/:id", h.GetPrescription)

		vets := prescriptions.Group("", auth.RequireClinicRoles(model.ClinicRoleVeterinarian, model.ClinicRoleAdmin))
		{
			vets.POST("", h.CreatePrescription)
			vets.POST("/:id/items", h.AddItem)
			vets.DELETE("/:id/items/:item_id", h.DeleteItem)
		}
	}
}

// RegisterWebhookRoutes wires the unauthenticated callback the document
// generator uses to push the rendered PDF. It authenticates with the
// clinic's webhook secret carried in the body, not a user token.
func (h *Handler) RegisterWebhookRoutes(r *gin.RouterGroup) {
	r.PUT("/prescriptions/:id/document", h.AttachDocument)
}

func (h *Handler) CreatePrescription(c *gin.Context) {
	var req model.CreatePrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	req.ClinicID = c.Param("clinic_id")

	prescription, err := h.service.CreatePrescription(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(prescription))
}

func (h *Handler) GetPrescription(c *gin.Context) {
	prescription, ok := h.scopedPrescription(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(prescription))
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
		return
	}

	prescriptions, err := h.service.ListPrescriptions(c.Request.Context(), clinicID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(prescriptions))
}

func (h *Handler) AddItem(c *gin.Context) {
	prescription, ok := h.scopedPrescription(c)
	if !ok {
		return
	}

	var req model.CreatePrescriptionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	item, err := h.service.AddItem(c.Request.Context(), prescription.ID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(item))
}

func (h *Handler) DeleteItem(c *gin.Context) {
	prescription, ok := h.scopedPrescription(c)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(c.Param("item_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid item ID"))
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), prescription.ID, itemID); err != nil {
		handler.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AttachDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid prescription ID"))
		return
	}

	var req model.AttachDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.AttachDocument(c.Request.Context(), id, &req); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) scopedPrescription(c *gin.Context) (*model.Prescription, bool) {
	clinicID, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
		return nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid prescription ID"))
		return nil, false
	}

	prescription, err := h.service.GetPrescription(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return nil, false
	}
	if prescription.ClinicID != clinicID {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("prescription not found"))
		return nil, false
	}
	return prescription, true
}
