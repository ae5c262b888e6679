package appointment

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vetdesk/vetdesk-api/internal/handler"
	"github.com/vetdesk/vetdesk-api/internal/middleware"
	"github.com/vetdesk/vetdesk-api/internal/model"
	appointmentService "github.com/vetdesk/vetdesk-api/internal/service/appointment"
)

type Handler struct {
	service appointmentService.AppointmentServicer
}

func NewHandler(service appointmentService.AppointmentServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	appointments := r.Group("/clinics/:clinic_id/appointments", auth.RequireClinicRoles())
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.RescheduleAppointment)
		appointments.POST("/:id/status", h.TransitionAppointment)
		appointments.DELETE("/:id", h.DeleteAppointment)
	}
}

type transitionRequest struct {
	Status model.AppointmentStatus `json:"status" binding:"required,oneof=PENDING CONFIRMED CANCELLED COMPLETED NO_SHOW"`
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	usr := middleware.CurrentUser(c)
	if usr == nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	req.ClinicID = c.Param("clinic_id")

	appointment, err := h.service.CreateAppointment(c.Request.Context(), &req, usr.ID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(appointment))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	appointment, ok := h.scopedAppointment(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointment))
}

func (h *Handler) RescheduleAppointment(c *gin.Context) {
	appointment, ok := h.scopedAppointment(c)
	if !ok {
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.RescheduleAppointment(c.Request.Context(), appointment.ID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

// TransitionAppointment moves the appointment through its lifecycle.
// Cancelling is a transition too, not a delete.
func (h *Handler) TransitionAppointment(c *gin.Context) {
	appointment, ok := h.scopedAppointment(c)
	if !ok {
		return
	}

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.TransitionAppointment(c.Request.Context(), appointment.ID, req.Status)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	appointment, ok := h.scopedAppointment(c)
	if !ok {
		return
	}

	if err := h.service.DeleteAppointment(c.Request.Context(), appointment.ID); err != nil {
		handler.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
		return
	}

	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	appointments, err := h.service.ListAppointments(c.Request.Context(), clinicID, filters)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func parseFilters(c *gin.Context) (*model.AppointmentFilters, error) {
	filters := &model.AppointmentFilters{}

	if v := c.Query("provider_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		filters.ProviderID = id
	}
	if v := c.Query("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		filters.PatientID = id
	}
	if v := c.Query("status"); v != "" {
		filters.Status = model.AppointmentStatus(v)
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, err
		}
		filters.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, err
		}
		filters.To = t
	}

	return filters, nil
}

func (h *Handler) scopedAppointment(c *gin.Context) (*model.Appointment, bool) {
	clinicID, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
		return nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return nil, false
	}

	appointment, err := h.service.GetAppointment(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return nil, false
	}
	if appointment.ClinicID != clinicID {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("appointment not found"))
		return nil, false
	}
	return appointment, true
}
