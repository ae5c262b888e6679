package prescription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/vetdesk-api/internal/model"
	prescriptionService "github.com/vetdesk/vetdesk-api/internal/service/prescription"
	apperrors "github.com/vetdesk/vetdesk-api/pkg/errors"
)

type fakeService struct {
	prescriptionService.PrescriptionServicer
	created      *model.Prescription
	createErr    error
	prescription *model.Prescription
	attachErr    error
}

func (f *fakeService) CreatePrescription(_ context.Context, _ *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	return f.created, f.createErr
}

func (f *fakeService) GetPrescription(_ context.Context, _ uuid.UUID) (*model.Prescription, error) {
	if f.prescription == nil {
		return nil, apperrors.NotFound("prescription", nil)
	}
	return f.prescription, nil
}

func (f *fakeService) AttachDocument(_ context.Context, _ uuid.UUID, _ *model.AttachDocumentRequest) error {
	return f.attachErr
}

func (f *fakeService) DeleteItem(_ context.Context, _, _ uuid.UUID) error {
	return nil
}

func newTestRouter(svc *fakeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	h := NewHandler(svc)
	r.POST("/clinics/:clinic_id/prescriptions", h.CreatePrescription)
	r.GET("/clinics/:clinic_id/prescriptions/:id", h.GetPrescription)
	r.DELETE("/clinics/:clinic_id/prescriptions/:id/items/:item_id", h.DeleteItem)
	h.RegisterWebhookRoutes(r.Group("/webhooks"))
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createBody(clinicID uuid.UUID, items []map[string]any) map[string]any {
	return map[string]any{
		"clinic_id":    clinicID.String(),
		"encounter_id": uuid.New().String(),
		"patient_id":   uuid.New().String(),
		"provider_id":  uuid.New().String(),
		"items":        items,
	}
}

func TestCreateRejectsEmptyItemList(t *testing.T) {
	clinicID := uuid.New()
	r := newTestRouter(&fakeService{})

	w := postJSON(t, r, "/clinics/"+clinicID.String()+"/prescriptions",
		createBody(clinicID, []map[string]any{}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReturnsCreated(t *testing.T) {
	clinicID := uuid.New()
	created := &model.Prescription{Base: model.Base{ID: uuid.New()}, ClinicID: clinicID}
	r := newTestRouter(&fakeService{created: created})

	w := postJSON(t, r, "/clinics/"+clinicID.String()+"/prescriptions",
		createBody(clinicID, []map[string]any{{"drug_name": "Amoxicillin"}}))

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateMapsServiceConflict(t *testing.T) {
	clinicID := uuid.New()
	r := newTestRouter(&fakeService{createErr: apperrors.Conflict("appointment already closed")})

	w := postJSON(t, r, "/clinics/"+clinicID.String()+"/prescriptions",
		createBody(clinicID, []map[string]any{{"drug_name": "Amoxicillin"}}))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetHidesForeignClinicPrescription(t *testing.T) {
	prescription := &model.Prescription{Base: model.Base{ID: uuid.New()}, ClinicID: uuid.New()}
	r := newTestRouter(&fakeService{prescription: prescription})

	path := fmt.Sprintf("/clinics/%s/prescriptions/%s", uuid.New(), prescription.ID)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteItemReturnsNoContent(t *testing.T) {
	prescription := &model.Prescription{Base: model.Base{ID: uuid.New()}, ClinicID: uuid.New()}
	r := newTestRouter(&fakeService{prescription: prescription})

	path := fmt.Sprintf("/clinics/%s/prescriptions/%s/items/%s",
		prescription.ClinicID, prescription.ID, uuid.New())
	req := httptest.NewRequest(http.MethodDelete, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestWebhookRejectsBadSecret(t *testing.T) {
	r := newTestRouter(&fakeService{attachErr: apperrors.Unauthorized(nil)})

	payload, err := json.Marshal(map[string]any{
		"pdf_url": "https://docs.example.com/rx.pdf",
		"secret":  "wrong",
	})
	require.NoError(t, err)

	path := "/webhooks/prescriptions/" + uuid.New().String() + "/document"
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookAcceptsValidDocument(t *testing.T) {
	r := newTestRouter(&fakeService{})

	payload, err := json.Marshal(map[string]any{
		"pdf_url": "https://docs.example.com/rx.pdf",
		"secret":  "super-secret-webhook-key",
	})
	require.NoError(t, err)

	path := "/webhooks/prescriptions/" + uuid.New().String() + "/document"
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
