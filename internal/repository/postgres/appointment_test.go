package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/vetdesk-api/internal/model"
	"github.com/vetdesk/vetdesk-api/internal/repository"
	apperrors "github.com/vetdesk/vetdesk-api/pkg/errors"
)

func newMockRepo(t *testing.T) (repository.AppointmentRepository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	return NewAppointmentRepository(db), mock
}

func TestUpdateStatusGuardsOnCurrentStatus(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE appointments").
		WithArgs(model.AppointmentStatusConfirmed, sqlmock.AnyArg(), id, model.AppointmentStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.UpdateStatus(context.Background(), id, model.AppointmentStatusPending, model.AppointmentStatusConfirmed)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusReportsLostRace(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE appointments").
		WithArgs(model.AppointmentStatusConfirmed, sqlmock.AnyArg(), id, model.AppointmentStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.UpdateStatus(context.Background(), id, model.AppointmentStatusPending, model.AppointmentStatusConfirmed)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasOverlapExcludesGivenAppointment(t *testing.T) {
	repo, mock := newMockRepo(t)
	providerID := uuid.New()
	excludeID := uuid.New()
	start := time.Now().UTC()
	end := start.Add(30 * time.Minute)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WithArgs(providerID, start, end, excludeID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	overlap, err := repo.HasOverlap(context.Background(), providerID, start, end, &excludeID)
	require.NoError(t, err)
	assert.False(t, overlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasOverlapCountsLiveAppointments(t *testing.T) {
	repo, mock := newMockRepo(t)
	providerID := uuid.New()
	start := time.Now().UTC()
	end := start.Add(30 * time.Minute)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WithArgs(providerID, start, end).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	overlap, err := repo.HasOverlap(context.Background(), providerID, start, end, nil)
	require.NoError(t, err)
	assert.True(t, overlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMapsMissingRowToNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), id)
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMapsZeroRowsToNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM appointments").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), id)
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
