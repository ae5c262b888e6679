package encounter

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vetdesk/vetdesk-api/internal/handler"
	"github.com/vetdesk/vetdesk-api/internal/middleware"
	"github.com/vetdesk/vetdesk-api/internal/model"
	encounterService "github.com/vetdesk/vetdesk-api/internal/service/encounter"
)

type Handler struct {
	service encounterService.EncounterServicer
}

func NewHandler(service encounterService.EncounterServicer) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires clinical records. Writing clinical content is
// veterinarian work; reception staff only read.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	encounters := r.Group("/clinics/:clinic_id/encounters", auth.RequireClinicRoles())
	{
		encounters.GET("", h.ListEncounters)
		encounters.GET("/:id", h.GetEncounter)

		vets := encounters.Group("", auth.RequireClinicRoles(model.ClinicRoleVeterinarian, model.ClinicRoleAdmin))
		{
			vets.POST("", h.CreateEncounter)
			vets.PUT("/:id", h.UpdateEncounter)
			vets.POST("/:id/confirm", h.ConfirmEncounter)
			vets.POST("/:id/addenda", h.AddAddendum)
		}
	}

	r.GET("/clinics/:clinic_id/patients/:id/encounters", auth.RequireClinicRoles(), h.ListPatientEncounters)
}

type confirmRequest struct {
	Version int `json:"version" binding:"required,min=1"`
}

func (h *Handler) CreateEncounter(c *gin.Context) {
	var req model.CreateEncounterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	req.ClinicID = c.Param("clinic_id")

	encounter, err := h.service.CreateEncounter(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(encounter))
}

func (h *Handler) GetEncounter(c *gin.Context) {
	encounter, ok := h.scopedEncounter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(encounter))
}

func (h *Handler) UpdateEncounter(c *gin.Context) {
	encounter, ok := h.scopedEncounter(c)
	if !ok {
		return
	}

	var req model.UpdateEncounterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.UpdateEncounter(c.Request.Context(), encounter.ID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) ConfirmEncounter(c *gin.Context) {
	encounter, ok := h.scopedEncounter(c)
	if !ok {
		return
	}

	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	signed, err := h.service.ConfirmEncounter(c.Request.Context(), encounter.ID, req.Version)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(signed))
}

func (h *Handler) AddAddendum(c *gin.Context) {
	usr := middleware.CurrentUser(c)
	if usr == nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	encounter, ok := h.scopedEncounter(c)
	if !ok {
		return
	}

	var req model.AddAddendumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.AddAddendum(c.Request.Context(), encounter.ID, usr.ID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) ListEncounters(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
		return
	}

	encounters, err := h.service.ListEncounters(c.Request.Context(), clinicID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(encounters))
}

func (h *Handler) ListPatientEncounters(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
		return
	}
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	encounters, err := h.service.ListByPatient(c.Request.Context(), clinicID, patientID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(encounters))
}

func (h *Handler) scopedEncounter(c *gin.Context) (*model.Encounter, bool) {
	clinicID, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
		return nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid encounter ID"))
		return nil, false
	}

	encounter, err := h.service.GetEncounter(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return nil, false
	}
	if encounter.ClinicID != clinicID {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("encounter not found"))
		return nil, false
	}
	return encounter, true
}
