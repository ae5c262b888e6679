package owner

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vetdesk/vetdesk-api/internal/handler"
	"github.com/vetdesk/vetdesk-api/internal/middleware"
	"github.com/vetdesk/vetdesk-api/internal/model"
	ownerService "github.com/vetdesk/vetdesk-api/internal/service/owner"
)

type Handler struct {
	service ownerService.OwnerServicer
}

func NewHandler(service ownerService.OwnerServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	owners := r.Group("/clinics/:clinic_id/owners", auth.RequireClinicRoles())
	{
		owners.POST("", h.CreateOwner)
		owners.GET("", h.ListOwners)
		owners.GET("/:id", h.GetOwner)
		owners.PUT("/:id", h.UpdateOwner)
		owners.DELETE("/:id", h.DeleteOwner)
		owners.GET("/:id/patients", h.ListPatients)
	}
}

func (h *Handler) CreateOwner(c *gin.Context) {
	var req model.CreateOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	req.ClinicID = c.Param("clinic_id")

	owner, err := h.service.CreateOwner(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(owner))
}

func (h *Handler) GetOwner(c *gin.Context) {
	owner, ok := h.scopedOwner(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(owner))
}

func (h *Handler) UpdateOwner(c *gin.Context) {
	owner, ok := h.scopedOwner(c)
	if !ok {
		return
	}

	var req model.UpdateOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.UpdateOwner(c.Request.Context(), owner.ID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) DeleteOwner(c *gin.Context) {
	owner, ok := h.scopedOwner(c)
	if !ok {
		return
	}

	if err := h.service.DeleteOwner(c.Request.Context(), owner.ID); err != nil {
		handler.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListOwners returns the clinic's owners, optionally narrowed by a
// search term matched against name, phone and email.
func (h *Handler) ListOwners(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
		return
	}

	owners, err := h.service.ListOwners(c.Request.Context(), clinicID, c.Query("search"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(owners))
}

func (h *Handler) ListPatients(c *gin.Context) {
	owner, ok := h.scopedOwner(c)
	if !ok {
		return
	}

	patients, err := h.service.ListPatients(c.Request.Context(), owner.ID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) scopedOwner(c *gin.Context) (*model.Owner, bool) {
	clinicID, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
		return nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid owner ID"))
		return nil, false
	}

	owner, err := h.service.GetOwner(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return nil, false
	}
	if owner.ClinicID != clinicID {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("owner not found"))
		return nil, false
	}
	return owner, true
}
