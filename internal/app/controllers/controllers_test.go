package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appAuth "github.com/yigit/scholarhub/internal/app/auth"
	"github.com/yigit/scholarhub/internal/app/models"
	"github.com/yigit/scholarhub/internal/app/models/dto"
	"github.com/yigit/scholarhub/internal/middleware"
	"github.com/yigit/scholarhub/internal/pkg/apperrors"
	"github.com/yigit/scholarhub/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

// fakeApplicationService records calls and returns canned results
type fakeApplicationService struct {
	createErr   error
	submitErr   error
	uploaded    models.UploadedFile
	lastActor   appAuth.Actor
	lastStudent int64
}

func (f *fakeApplicationService) CreateApplication(_ context.Context, studentID, scholarshipID int64) (*models.Application, error) {
	f.lastStudent = studentID
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Application{ID: 7, StudentID: studentID, ScholarshipID: scholarshipID, Status: models.StatusDraft}, nil
}

func (f *fakeApplicationService) UploadRequirementFile(_ context.Context, actor appAuth.Actor, applicationID, requirementID int64, file models.UploadedFile) (*models.UploadResult, error) {
	f.lastActor = actor
	f.uploaded = file
	return &models.UploadResult{
		ApplicationID: applicationID,
		RequirementID: requirementID,
		FileName:      file.Name,
		MimeType:      "application/pdf",
		Status:        models.SubmissionSubmitted,
		DateSubmitted: time.Now(),
	}, nil
}

func (f *fakeApplicationService) SubmitApplication(_ context.Context, actor appAuth.Actor, applicationID int64) (*models.Application, error) {
	f.lastActor = actor
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &models.Application{ID: applicationID, Status: models.StatusPending}, nil
}

func (f *fakeApplicationService) GetApplicationDetails(context.Context, appAuth.Actor, int64) (*models.ApplicationDetail, error) {
	return nil, apperrors.ErrApplicationNotFound
}

func (f *fakeApplicationService) OpenSubmissionFile(context.Context, appAuth.Actor, int64) (*models.SubmissionFile, string, error) {
	return nil, "", apperrors.ErrSubmissionNotFound
}

type fakeReviewService struct {
	filter   models.ApplicationFilter
	status   string
	remarks  string
	statusFn func() (*models.Application, error)
}

func (f *fakeReviewService) ListApplications(_ context.Context, filter models.ApplicationFilter) ([]*models.ApplicationListItem, int64, error) {
	f.filter = filter
	return []*models.ApplicationListItem{}, 23, nil
}

func (f *fakeReviewService) GetApplicationDetails(context.Context, int64) (*models.ApplicationDetail, error) {
	return &models.ApplicationDetail{}, nil
}

func (f *fakeReviewService) UpdateApplicationStatus(_ context.Context, applicationID int64, status, remarks string) (*models.Application, error) {
	f.status, f.remarks = status, remarks
	if f.statusFn != nil {
		return f.statusFn()
	}
	return &models.Application{ID: applicationID, Status: models.ApplicationStatus(status)}, nil
}

func (f *fakeReviewService) DeleteApplication(context.Context, int64) error { return nil }

func (f *fakeReviewService) CreateEvaluation(_ context.Context, actor appAuth.Actor, e models.Evaluation) (*models.Evaluation, error) {
	if e.EvaluatorName == "" {
		e.EvaluatorName = actor.Username
	}
	e.ID = 1
	return &e, nil
}

func (f *fakeReviewService) ListEvaluations(context.Context, int64) ([]*models.Evaluation, error) {
	return nil, nil
}

func (f *fakeReviewService) UpdateEvaluation(context.Context, int64, *float64, *string) (*models.Evaluation, error) {
	return nil, apperrors.ErrEvaluationNotFound
}

type fakeAuthenticator struct{}

func (fakeAuthenticator) Register(_ context.Context, req *dto.RegisterRequest) (*models.Student, error) {
	if req.Username == "taken" {
		return nil, apperrors.ErrUsernameOrEmailTaken
	}
	return &models.Student{ID: 3, FirstName: req.FirstName, LastName: req.LastName, Email: req.Email}, nil
}

func (fakeAuthenticator) Login(context.Context, *dto.LoginRequest) (*dto.AuthResponse, error) {
	return nil, apperrors.ErrInvalidCredentials
}

var testJWT = auth.NewJWTService(auth.JWTConfig{
	SecretKey:      "controller-test",
	AccessTokenExp: time.Hour,
	TokenIssuer:    "scholarhub-test",
})

func bearer(t *testing.T, account *models.UserAccount) string {
	t.Helper()
	token, _, err := testJWT.GenerateAccessToken(account)
	require.NoError(t, err)
	return "Bearer " + token
}

func studentToken(t *testing.T, studentID int64) string {
	return bearer(t, &models.UserAccount{ID: 10, Username: "maria", Role: models.RoleStudent, StudentID: &studentID})
}

func adminToken(t *testing.T) string {
	return bearer(t, &models.UserAccount{ID: 1, Username: "admin", Role: models.RoleAdmin})
}

func newTestRouter(apps *fakeApplicationService, reviews *fakeReviewService) *gin.Engine {
	m := middleware.NewAuthMiddleware(testJWT)
	authController := NewAuthController(fakeAuthenticator{}, zerolog.Nop())
	appController := NewApplicationController(apps, 1024)
	reviewController := NewReviewController(reviews)

	r := gin.New()
	r.POST("/auth/register", authController.Register)
	r.POST("/auth/login", authController.Login)

	student := r.Group("/student", m.JWTAuth(), m.RoleRequired(models.RoleStudent))
	student.POST("/applications", appController.CreateApplication)
	student.POST("/applications/:id/requirements/:requirementId/upload", appController.UploadRequirement)
	student.POST("/applications/:id/submit", appController.SubmitApplication)

	admin := r.Group("/admin", m.JWTAuth(), m.RoleRequired(models.RoleAdmin))
	admin.GET("/applications", reviewController.ListApplications)
	admin.PUT("/applications/:id/status", reviewController.UpdateApplicationStatus)
	admin.POST("/evaluations", reviewController.CreateEvaluation)
	admin.PUT("/evaluations/:id", reviewController.UpdateEvaluation)
	return r
}

func jsonRequest(method, path, body, token string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	return req
}

func TestCreateApplicationUsesTokenStudent(t *testing.T) {
	apps := &fakeApplicationService{}
	r := newTestRouter(apps, &fakeReviewService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/student/applications", `{"scholarshipId": 2}`, studentToken(t, 5)))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(5), apps.lastStudent)

	var app models.Application
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &app))
	assert.Equal(t, models.StatusDraft, app.Status)
	assert.Equal(t, int64(2), app.ScholarshipID)
}

func TestCreateApplicationValidation(t *testing.T) {
	r := newTestRouter(&fakeApplicationService{}, &fakeReviewService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/student/applications", `{}`, studentToken(t, 5)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", decode(t, w).Error.Code)
}

func TestCreateApplicationDuplicate(t *testing.T) {
	r := newTestRouter(&fakeApplicationService{createErr: apperrors.ErrDuplicateActiveApplication}, &fakeReviewService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/student/applications", `{"scholarshipId": 2}`, studentToken(t, 5)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "RES_004", decode(t, w).Error.Code)
}

func TestSubmitIncompleteListsMissing(t *testing.T) {
	apps := &fakeApplicationService{submitErr: apperrors.NewIncompleteSubmissionError([]string{"Indigency"})}
	r := newTestRouter(apps, &fakeReviewService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/student/applications/7/submit", "", studentToken(t, 5)))

	env := decode(t, w)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "APP_001", env.Error.Code)
	assert.JSONEq(t, `{"missingRequirements":["Indigency"]}`, string(env.Error.Details))
	require.NotNil(t, apps.lastActor.StudentID)
	assert.Equal(t, int64(5), *apps.lastActor.StudentID)
}

func TestUploadRequirementReadsMultipartFile(t *testing.T) {
	apps := &fakeApplicationService{}
	r := newTestRouter(apps, &fakeReviewService{})

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "form138.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/student/applications/7/requirements/3/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", studentToken(t, 5))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "form138.pdf", apps.uploaded.Name)
	assert.Equal(t, []byte("%PDF-1.4 test"), apps.uploaded.Content)
}

func TestUploadRequirementTooLarge(t *testing.T) {
	apps := &fakeApplicationService{}
	r := newTestRouter(apps, &fakeReviewService{})

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "big.pdf")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), 2048))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/student/applications/7/requirements/3/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", studentToken(t, 5))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_002", decode(t, w).Error.Code)
	assert.Empty(t, apps.uploaded.Name)
}

func TestStudentCannotReachAdminRoutes(t *testing.T) {
	r := newTestRouter(&fakeApplicationService{}, &fakeReviewService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodGet, "/admin/applications", "", studentToken(t, 5)))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListApplicationsParsesFilters(t *testing.T) {
	reviews := &fakeReviewService{}
	r := newTestRouter(&fakeApplicationService{}, reviews)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodGet, "/admin/applications?status=Under%20Review&scholarshipId=4&page=2&size=10", "", adminToken(t)))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, reviews.filter.Status)
	assert.Equal(t, models.StatusUnderReview, *reviews.filter.Status)
	require.NotNil(t, reviews.filter.ScholarshipID)
	assert.Equal(t, int64(4), *reviews.filter.ScholarshipID)
	assert.Equal(t, uint64(10), reviews.filter.Offset)
	assert.Equal(t, 10, reviews.filter.Limit)

	var page dto.PaginatedResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &page))
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.Equal(t, int64(23), page.Pagination.TotalItems)
}

func TestListApplicationsRejectsUnknownStatus(t *testing.T) {
	r := newTestRouter(&fakeApplicationService{}, &fakeReviewService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodGet, "/admin/applications?status=approved", "", adminToken(t)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", decode(t, w).Error.Code)
}

func TestUpdateApplicationStatusPassesRemarks(t *testing.T) {
	reviews := &fakeReviewService{}
	r := newTestRouter(&fakeApplicationService{}, reviews)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPut, "/admin/applications/9/status", `{"status":"Approved","remarks":"Complete"}`, adminToken(t)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Approved", reviews.status)
	assert.Equal(t, "Complete", reviews.remarks)
}

func TestUpdateApplicationStatusConflict(t *testing.T) {
	reviews := &fakeReviewService{statusFn: func() (*models.Application, error) {
		return nil, apperrors.NewConflictError("application is already Approved")
	}}
	r := newTestRouter(&fakeApplicationService{}, reviews)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPut, "/admin/applications/9/status", `{"status":"Rejected"}`, adminToken(t)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "RES_004", decode(t, w).Error.Code)
}

func TestCreateEvaluationDefaultsEvaluator(t *testing.T) {
	r := newTestRouter(&fakeApplicationService{}, &fakeReviewService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/admin/evaluations", `{"applicationId":9,"score":88.5,"comments":"Strong"}`, adminToken(t)))

	require.Equal(t, http.StatusCreated, w.Code)
	var evaluation models.Evaluation
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &evaluation))
	assert.Equal(t, "admin", evaluation.EvaluatorName)
	require.NotNil(t, evaluation.Score)
	assert.Equal(t, 88.5, *evaluation.Score)
}

func TestUpdateEvaluationNotFound(t *testing.T) {
	r := newTestRouter(&fakeApplicationService{}, &fakeReviewService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPut, "/admin/evaluations/99", `{"comments":"x"}`, adminToken(t)))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "RES_001", decode(t, w).Error.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	r := newTestRouter(&fakeApplicationService{}, &fakeReviewService{})
	register := `{"firstName":"Maria","lastName":"Santos","program":"BSIT","yearLevel":2,` +
		`"email":"maria@example.edu","username":"%s","password":"secret123"}`

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/auth/register", fmt.Sprintf(register, "maria"), ""))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/auth/register", fmt.Sprintf(register, "taken"), ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "RES_004", decode(t, w).Error.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/auth/login", `{"username":"maria","password":"wrong"}`, ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_001", decode(t, w).Error.Code)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	r := gin.New()
	r.GET("/health", NewHealthController(fakePinger{}).Health)
	r.GET("/unhealthy", NewHealthController(fakePinger{err: context.DeadlineExceeded}).Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/unhealthy", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
