package membership

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vetdesk/vetdesk-api/internal/handler"
	"github.com/vetdesk/vetdesk-api/internal/middleware"
	"github.com/vetdesk/vetdesk-api/internal/model"
	membershipService "github.com/vetdesk/vetdesk-api/internal/service/membership"
)

type Handler struct {
	service membershipService.MembershipServicer
}

func NewHandler(service membershipService.MembershipServicer) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires staff management for a clinic. Clinic admins
// manage their own staff; ADMIN_MASTER passes the same check.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	memberships := r.Group("/clinics/:clinic_id/memberships", auth.RequireClinicRoles(model.ClinicRoleAdmin))
	{
		memberships.POST("", h.CreateMembership)
		memberships.GET("", h.ListMemberships)
		memberships.PATCH("/:id", h.UpdateMembership)
		memberships.DELETE("/:id", h.RemoveMembership)
	}
}

func (h *Handler) CreateMembership(c *gin.Context) {
	clinicID := c.Param("clinic_id")

	var req model.CreateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	req.ClinicID = clinicID

	membership, err := h.service.CreateMembership(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(membership))
}

func (h *Handler) ListMemberships(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
		return
	}

	memberships, err := h.service.ListMemberships(c.Request.Context(), clinicID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(memberships))
}

func (h *Handler) UpdateMembership(c *gin.Context) {
	membership, ok := h.scopedMembership(c)
	if !ok {
		return
	}

	var req model.UpdateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.UpdateMembership(c.Request.Context(), membership.ID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) RemoveMembership(c *gin.Context) {
	membership, ok := h.scopedMembership(c)
	if !ok {
		return
	}

	if err := h.service.RemoveMembership(c.Request.Context(), membership.ID); err != nil {
		handler.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// scopedMembership loads the membership and hides rows belonging to
// other clinics behind a 404.
func (h *Handler) scopedMembership(c *gin.Context) (*model.ClinicMembership, bool) {
	clinicID, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
		return nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid membership ID"))
		return nil, false
	}

	membership, err := h.service.GetMembership(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return nil, false
	}
	if membership.ClinicID != clinicID {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("membership not found"))
		return nil, false
	}
	return membership, true
}
