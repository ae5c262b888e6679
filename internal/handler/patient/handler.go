package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vetdesk/vetdesk-api/internal/handler"
	"github.com/vetdesk/vetdesk-api/internal/middleware"
	"github.com/vetdesk/vetdesk-api/internal/model"
	patientService "github.com/vetdesk/vetdesk-api/internal/service/patient"
)

type Handler struct {
	service patientService.PatientServicer
}

func NewHandler(service patientService.PatientServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	patients := r.Group("/clinics/:clinic_id/patients", auth.RequireClinicRoles())
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	req.ClinicID = c.Param("clinic_id")

	patient, err := h.service.CreatePatient(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(patient))
}

func (h *Handler) GetPatient(c *gin.Context) {
	patient, ok := h.scopedPatient(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patient))
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	patient, ok := h.scopedPatient(c)
	if !ok {
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.UpdatePatient(c.Request.Context(), patient.ID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) DeletePatient(c *gin.Context) {
	patient, ok := h.scopedPatient(c)
	if !ok {
		return
	}

	if err := h.service.DeletePatient(c.Request.Context(), patient.ID); err != nil {
		handler.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListPatients returns the clinic's patients, optionally narrowed by a
// search term matched against name, breed and microchip.
func (h *Handler) ListPatients(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
		return
	}

	patients, err := h.service.ListPatients(c.Request.Context(), clinicID, c.Query("search"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) scopedPatient(c *gin.Context) (*model.Patient, bool) {
	clinicID, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
		return nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return nil, false
	}

	patient, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return nil, false
	}
	if patient.ClinicID != clinicID {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("patient not found"))
		return nil, false
	}
	return patient, true
}
