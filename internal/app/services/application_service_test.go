package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/scholarhub/internal/app/auth"
	"github.com/yigit/scholarhub/internal/app/models"
	"github.com/yigit/scholarhub/internal/app/repositories"
	"github.com/yigit/scholarhub/internal/pkg/apperrors"
	"github.com/yigit/scholarhub/internal/pkg/filestorage"
)

var pngContent = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type fakeStorage struct {
	base     string
	stored   map[string][]byte
	deleted  []string
	storeErr error
	seq      int
}

func newFakeStorage(t *testing.T) *fakeStorage {
	return &fakeStorage{base: t.TempDir(), stored: map[string][]byte{}}
}

func (f *fakeStorage) Store(content []byte, originalName string) (string, error) {
	if f.storeErr != nil {
		return "", f.storeErr
	}
	f.seq++
	p := fmt.Sprintf("%s/file-%d%s", filestorage.RequirementsDir, f.seq, strings.ToLower(filepath.Ext(originalName)))
	f.stored[p] = content
	return p, nil
}

func (f *fakeStorage) Delete(relPath string) error {
	f.deleted = append(f.deleted, relPath)
	delete(f.stored, relPath)
	return nil
}

func (f *fakeStorage) FullPath(relPath string) (string, error) {
	return filepath.Join(f.base, relPath), nil
}

func (f *fakeStorage) List() ([]filestorage.FileInfo, error) {
	files := make([]filestorage.FileInfo, 0, len(f.stored))
	for p, c := range f.stored {
		files = append(files, filestorage.FileInfo{Path: p, Size: int64(len(c)), ModTime: time.Now()})
	}
	return files, nil
}

type applicationFixture struct {
	mock    pgxmock.PgxPoolIface
	storage *fakeStorage
	svc     ApplicationService
}

func newApplicationFixture(t *testing.T) *applicationFixture {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	repos := repositories.NewRepositories(mock)
	storage := newFakeStorage(t)
	svc := NewApplicationService(mock, repos, storage, auth.NewAuthorizationService(repos.ApplicationRepository), nil, 1<<20)
	return &applicationFixture{mock: mock, storage: storage, svc: svc}
}

func studentActor(studentID int64) auth.Actor {
	return auth.Actor{UserID: 20, Username: "maria", Role: models.RoleStudent, StudentID: &studentID}
}

var adminActor = auth.Actor{UserID: 1, Username: "admin", Role: models.RoleAdmin}

func appRows(id, studentID int64, status models.ApplicationStatus, remarks string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"application_id", "student_id", "scholarship_id", "status", "remarks", "date_applied"}).
		AddRow(id, studentID, int64(1), status, remarks, time.Now())
}

func existsRows(v bool) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"exists"}).AddRow(v)
}

func (f *applicationFixture) expectCreate(appID int64, requirementIDs ...int64) {
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM scholarship WHERE scholarship_id`).
		WithArgs(int64(1)).
		WillReturnRows(existsRows(true))
	f.mock.ExpectQuery(`FROM application WHERE scholarship_id`).
		WithArgs(int64(1), "Draft", "Pending", int64(3)).
		WillReturnRows(existsRows(false))
	f.mock.ExpectQuery(`INSERT INTO application`).
		WithArgs(int64(3), int64(1), "Draft", models.RemarksApplicationStarted).
		WillReturnRows(pgxmock.NewRows([]string{"application_id", "date_applied"}).AddRow(appID, time.Now()))

	reqRows := pgxmock.NewRows([]string{"requirement_id", "requirement_name", "description"})
	for _, id := range requirementIDs {
		reqRows.AddRow(id, fmt.Sprintf("Requirement %d", id), "")
	}
	f.mock.ExpectQuery(`FROM requirements r JOIN scholarship_requirements sr`).
		WithArgs(int64(1)).
		WillReturnRows(reqRows)
}

func (f *applicationFixture) expectUpload(appID, reqID, submissionID int64) {
	f.mock.ExpectQuery(`FROM application WHERE application_id`).
		WithArgs(appID).
		WillReturnRows(appRows(appID, 3, models.StatusDraft, models.RemarksApplicationStarted))
	f.mock.ExpectQuery(`FROM application a JOIN scholarship_requirements sr`).
		WithArgs(appID, reqID).
		WillReturnRows(existsRows(true))
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM submitted_requirements WHERE application_id = \$1 AND requirement_id = \$2 FOR UPDATE`).
		WithArgs(appID, reqID).
		WillReturnRows(pgxmock.NewRows([]string{"submission_id", "application_id", "requirement_id", "status", "file_name", "file_path", "date_submitted"}).
			AddRow(submissionID, appID, reqID, models.SubmissionNotSubmitted, (*string)(nil), (*string)(nil), (*time.Time)(nil)))
	now := time.Now()
	f.mock.ExpectQuery(`ON CONFLICT \(application_id, requirement_id\) DO UPDATE`).
		WithArgs(appID, reqID, "Submitted", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"submission_id", "date_submitted"}).AddRow(submissionID, &now))
	f.mock.ExpectExec(`UPDATE application SET date_applied = NOW\(\)`).
		WithArgs(appID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectCommit()
}

func TestCreateApplicationSeedsRequirementRows(t *testing.T) {
	f := newApplicationFixture(t)

	f.expectCreate(7, 1, 2)
	f.mock.ExpectExec(`INSERT INTO submitted_requirements`).
		WithArgs(int64(7), int64(1), "Not Submitted", int64(7), int64(2), "Not Submitted").
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	f.mock.ExpectCommit()

	app, err := f.svc.CreateApplication(context.Background(), 3, 1)

	require.NoError(t, err)
	assert.Equal(t, int64(7), app.ID)
	assert.Equal(t, models.StatusDraft, app.Status)
	assert.Equal(t, models.RemarksApplicationStarted, app.Remarks)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateApplicationRollsBackWhenPlaceholdersFail(t *testing.T) {
	f := newApplicationFixture(t)

	f.expectCreate(7, 1)
	f.mock.ExpectExec(`INSERT INTO submitted_requirements`).
		WithArgs(int64(7), int64(1), "Not Submitted").
		WillReturnError(errors.New("disk full"))
	f.mock.ExpectRollback()

	_, err := f.svc.CreateApplication(context.Background(), 3, 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateApplicationRejectsSecondActiveApplication(t *testing.T) {
	f := newApplicationFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM scholarship WHERE scholarship_id`).
		WithArgs(int64(1)).
		WillReturnRows(existsRows(true))
	f.mock.ExpectQuery(`FROM application WHERE scholarship_id`).
		WithArgs(int64(1), "Draft", "Pending", int64(3)).
		WillReturnRows(existsRows(true))
	f.mock.ExpectRollback()

	_, err := f.svc.CreateApplication(context.Background(), 3, 1)

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateApplicationUnknownScholarship(t *testing.T) {
	f := newApplicationFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM scholarship WHERE scholarship_id`).
		WithArgs(int64(1)).
		WillReturnRows(existsRows(false))
	f.mock.ExpectRollback()

	_, err := f.svc.CreateApplication(context.Background(), 3, 1)

	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUploadThenSubmitLifecycle(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	maria := studentActor(3)

	// Form 138 is uploaded, Indigency is still missing
	f.expectUpload(7, 1, 11)
	result, err := f.svc.UploadRequirementFile(ctx, maria, 7, 1, models.UploadedFile{Name: "Form138.PNG", Content: pngContent})
	require.NoError(t, err)
	assert.Equal(t, "image/png", result.MimeType)
	assert.Equal(t, models.SubmissionSubmitted, result.Status)
	assert.Equal(t, "Form138.PNG", result.FileName)
	assert.Len(t, f.storage.stored, 1)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM application WHERE application_id = \$1 FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(appRows(7, 3, models.StatusDraft, models.RemarksApplicationStarted))
	f.mock.ExpectQuery(`LEFT JOIN submitted_requirements s`).
		WithArgs(int64(7), "Not Submitted").
		WillReturnRows(pgxmock.NewRows([]string{"requirement_name"}).AddRow("Indigency"))
	f.mock.ExpectRollback()

	_, err = f.svc.SubmitApplication(ctx, maria, 7)
	require.ErrorIs(t, err, apperrors.ErrIncompleteSubmission)
	assert.Equal(t, []string{"Indigency"}, apperrors.MissingRequirements(err))

	// Indigency arrives and the submission goes through
	f.expectUpload(7, 2, 12)
	_, err = f.svc.UploadRequirementFile(ctx, maria, 7, 2, models.UploadedFile{Name: "indigency.png", Content: pngContent})
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM application WHERE application_id = \$1 FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(appRows(7, 3, models.StatusDraft, models.RemarksApplicationStarted))
	f.mock.ExpectQuery(`LEFT JOIN submitted_requirements s`).
		WithArgs(int64(7), "Not Submitted").
		WillReturnRows(pgxmock.NewRows([]string{"requirement_name"}))
	f.mock.ExpectQuery(`UPDATE application SET status = \$1, remarks = \$2, date_applied = NOW\(\)`).
		WithArgs("Pending", models.RemarksApplicationSubmitted, int64(7)).
		WillReturnRows(appRows(7, 3, models.StatusPending, models.RemarksApplicationSubmitted))
	f.mock.ExpectCommit()

	app, err := f.svc.SubmitApplication(ctx, maria, 7)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, app.Status)
	assert.Equal(t, models.RemarksApplicationSubmitted, app.Remarks)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSubmitApplicationOnlyFromDraft(t *testing.T) {
	f := newApplicationFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(appRows(7, 3, models.StatusPending, models.RemarksApplicationSubmitted))
	f.mock.ExpectRollback()

	_, err := f.svc.SubmitApplication(context.Background(), studentActor(3), 7)

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSubmitApplicationOfAnotherStudent(t *testing.T) {
	f := newApplicationFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(appRows(7, 3, models.StatusDraft, models.RemarksApplicationStarted))
	f.mock.ExpectRollback()

	_, err := f.svc.SubmitApplication(context.Background(), studentActor(4), 7)

	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUploadRejectsUnsupportedFile(t *testing.T) {
	f := newApplicationFixture(t)

	_, err := f.svc.UploadRequirementFile(context.Background(), studentActor(3), 7, 1,
		models.UploadedFile{Name: "notes.txt", Content: []byte("plain text is not accepted")})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Empty(t, f.storage.stored)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUploadRejectsRequirementOutsideScholarship(t *testing.T) {
	f := newApplicationFixture(t)

	f.mock.ExpectQuery(`FROM application WHERE application_id`).
		WithArgs(int64(7)).
		WillReturnRows(appRows(7, 3, models.StatusDraft, models.RemarksApplicationStarted))
	f.mock.ExpectQuery(`FROM application a JOIN scholarship_requirements sr`).
		WithArgs(int64(7), int64(9)).
		WillReturnRows(existsRows(false))

	_, err := f.svc.UploadRequirementFile(context.Background(), studentActor(3), 7, 9,
		models.UploadedFile{Name: "x.png", Content: pngContent})

	assert.ErrorIs(t, err, ErrRequirementNotInScholarship)
	assert.Empty(t, f.storage.stored)
}

func TestUploadRemovesFileWhenDatabaseUpdateFails(t *testing.T) {
	f := newApplicationFixture(t)

	f.mock.ExpectQuery(`FROM application WHERE application_id`).
		WithArgs(int64(7)).
		WillReturnRows(appRows(7, 3, models.StatusDraft, models.RemarksApplicationStarted))
	f.mock.ExpectQuery(`FROM application a JOIN scholarship_requirements sr`).
		WithArgs(int64(7), int64(1)).
		WillReturnRows(existsRows(true))
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(int64(7), int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"submission_id", "application_id", "requirement_id", "status", "file_name", "file_path", "date_submitted"}))
	f.mock.ExpectQuery(`ON CONFLICT`).
		WithArgs(int64(7), int64(1), "Submitted", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))
	f.mock.ExpectRollback()

	_, err := f.svc.UploadRequirementFile(context.Background(), studentActor(3), 7, 1,
		models.UploadedFile{Name: "form.png", Content: pngContent})

	require.Error(t, err)
	assert.Empty(t, f.storage.stored)
	assert.Equal(t, []string{"requirements/file-1.png"}, f.storage.deleted)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUploadReplacesPreviousFile(t *testing.T) {
	f := newApplicationFixture(t)
	oldName, oldPath := "old.png", "requirements/old.png"
	f.storage.stored[oldPath] = pngContent

	f.mock.ExpectQuery(`FROM application WHERE application_id`).
		WithArgs(int64(7)).
		WillReturnRows(appRows(7, 3, models.StatusDraft, models.RemarksApplicationStarted))
	f.mock.ExpectQuery(`FROM application a JOIN scholarship_requirements sr`).
		WithArgs(int64(7), int64(1)).
		WillReturnRows(existsRows(true))
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(int64(7), int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"submission_id", "application_id", "requirement_id", "status", "file_name", "file_path", "date_submitted"}).
			AddRow(int64(11), int64(7), int64(1), models.SubmissionSubmitted, &oldName, &oldPath, (*time.Time)(nil)))
	now := time.Now()
	f.mock.ExpectQuery(`ON CONFLICT`).
		WithArgs(int64(7), int64(1), "Submitted", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"submission_id", "date_submitted"}).AddRow(int64(11), &now))
	f.mock.ExpectExec(`UPDATE application SET date_applied`).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectCommit()

	_, err := f.svc.UploadRequirementFile(context.Background(), studentActor(3), 7, 1,
		models.UploadedFile{Name: "new.png", Content: pngContent})

	require.NoError(t, err)
	assert.Equal(t, []string{oldPath}, f.storage.deleted)
	assert.Contains(t, f.storage.stored, "requirements/file-1.png")
}

func TestOpenSubmissionFile(t *testing.T) {
	f := newApplicationFixture(t)
	name := "form.png"

	fileRows := func() *pgxmock.Rows {
		return pgxmock.NewRows([]string{"submission_id", "application_id", "student_id", "file_name", "file_path"}).
			AddRow(int64(11), int64(7), int64(3), &name, "requirements/abc.png")
	}

	f.mock.ExpectQuery(`WHERE s.submission_id = \$1`).WithArgs(int64(11)).WillReturnRows(fileRows())
	_, _, err := f.svc.OpenSubmissionFile(context.Background(), studentActor(3), 11)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	full := filepath.Join(f.storage.base, "requirements", "abc.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, pngContent, 0o644))

	f.mock.ExpectQuery(`WHERE s.submission_id = \$1`).WithArgs(int64(11)).WillReturnRows(fileRows())
	file, path, err := f.svc.OpenSubmissionFile(context.Background(), adminActor, 11)
	require.NoError(t, err)
	assert.Equal(t, full, path)
	assert.Equal(t, "form.png", file.FileName)

	f.mock.ExpectQuery(`WHERE s.submission_id = \$1`).WithArgs(int64(11)).WillReturnRows(fileRows())
	_, _, err = f.svc.OpenSubmissionFile(context.Background(), studentActor(5), 11)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "form.pdf", sanitizeFileName(`C:\Users\maria\form.pdf`))
	assert.Equal(t, "form.pdf", sanitizeFileName("../../form.pdf"))
	assert.Equal(t, "upload", sanitizeFileName(""))

	long := sanitizeFileName(strings.Repeat("a", 300) + ".pdf")
	assert.Len(t, long, maxFileNameLength)
	assert.True(t, strings.HasSuffix(long, ".pdf"))

	accented := sanitizeFileName(strings.Repeat("é", 200) + ".pdf")
	assert.LessOrEqual(t, len(accented), maxFileNameLength)
	assert.True(t, utf8.ValidString(accented))
	assert.True(t, strings.HasSuffix(accented, "é.pdf"))
}
