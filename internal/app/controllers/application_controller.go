package controllers

import (
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	appAuth "github.com/yigit/scholarhub/internal/app/auth"
	"github.com/yigit/scholarhub/internal/app/models"
	"github.com/yigit/scholarhub/internal/app/models/dto"
	"github.com/yigit/scholarhub/internal/app/services"
	"github.com/yigit/scholarhub/internal/middleware"
)

// ApplicationController handles the student side of the application lifecycle
type ApplicationController struct {
	applicationService services.ApplicationService
	maxUploadBytes     int64
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(applicationService services.ApplicationService, maxUploadBytes int64) *ApplicationController {
	return &ApplicationController{
		applicationService: applicationService,
		maxUploadBytes:     maxUploadBytes,
	}
}

// currentStudent returns the caller and its student id, writing 403 when the
// token carries no student
func currentStudent(ctx *gin.Context) (appAuth.Actor, int64, bool) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok || actor.StudentID == nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied")
		errorDetail = errorDetail.WithDetails("A student account is required for this operation")
		ctx.JSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
		return appAuth.Actor{}, 0, false
	}
	return actor, *actor.StudentID, true
}

// CreateApplication starts a draft application
// @Summary Create an application
// @Description Creates a Draft application for the calling student and one Not Submitted row per scholarship requirement
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateApplicationRequest true "Scholarship to apply for"
// @Success 201 {object} dto.APIResponse{data=models.Application} "Application created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or an active application already exists"
// @Failure 404 {object} dto.ErrorResponse "Scholarship not found"
// @Router /student/applications [post]
func (c *ApplicationController) CreateApplication(ctx *gin.Context) {
	_, studentID, ok := currentStudent(ctx)
	if !ok {
		return
	}

	var req dto.CreateApplicationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	application, err := c.applicationService.CreateApplication(ctx.Request.Context(), studentID, req.ScholarshipID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(application, "Application created"))
}

// UploadRequirement stores a document for one requirement of an application
// @Summary Upload a requirement file
// @Description Uploads a PDF, JPEG or PNG for a requirement and marks it Submitted. A second upload replaces the first.
// @Tags applications
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param requirementId path int true "Requirement ID"
// @Param file formData file true "Requirement document"
// @Success 200 {object} dto.APIResponse{data=models.UploadResult} "File uploaded"
// @Failure 400 {object} dto.ErrorResponse "Invalid file"
// @Failure 403 {object} dto.ErrorResponse "Not your application"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /student/applications/{id}/requirements/{requirementId}/upload [post]
func (c *ApplicationController) UploadRequirement(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		return
	}
	applicationID, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	requirementID, ok := middleware.ParseIDParam(ctx, "requirementId")
	if !ok {
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidFile, "No file uploaded")
		errorDetail = errorDetail.WithField("file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	if c.maxUploadBytes > 0 && header.Size > c.maxUploadBytes {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidFile, fmt.Sprintf("file exceeds the maximum size of %d bytes", c.maxUploadBytes))
		errorDetail = errorDetail.WithField("file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	f, err := header.Open()
	if err != nil {
		middleware.HandleAPIError(ctx, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		middleware.HandleAPIError(ctx, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	result, err := c.applicationService.UploadRequirementFile(ctx.Request.Context(), actor, applicationID, requirementID, models.UploadedFile{
		Name:    header.Filename,
		Size:    header.Size,
		Content: content,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, "File uploaded"))
}

// SubmitApplication moves a complete draft to Pending
// @Summary Submit an application
// @Description Submits a Draft application once every requirement has a file
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=models.Application} "Application submitted"
// @Failure 400 {object} dto.ErrorResponse "Requirements missing or application not in Draft"
// @Failure 403 {object} dto.ErrorResponse "Not your application"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /student/applications/{id}/submit [post]
func (c *ApplicationController) SubmitApplication(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		return
	}
	applicationID, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	application, err := c.applicationService.SubmitApplication(ctx.Request.Context(), actor, applicationID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(application, "Application submitted"))
}

// GetApplication returns an application owned by the caller
// @Summary Get application details
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=models.ApplicationDetail}
// @Failure 403 {object} dto.ErrorResponse "Not your application"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /student/applications/{id} [get]
func (c *ApplicationController) GetApplication(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		return
	}
	applicationID, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.applicationService.GetApplicationDetails(ctx.Request.Context(), actor, applicationID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(detail, ""))
}

// ServeSubmissionFile streams an uploaded requirement file inline
// @Summary View an uploaded file
// @Tags files
// @Produce application/pdf,image/jpeg,image/png
// @Security BearerAuth
// @Param id path int true "Submission ID"
// @Success 200 {file} file
// @Failure 403 {object} dto.ErrorResponse "Not your file"
// @Failure 404 {object} dto.ErrorResponse "File not found"
// @Router /files/{id} [get]
func (c *ApplicationController) ServeSubmissionFile(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		return
	}
	submissionID, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	file, fullPath, err := c.applicationService.OpenSubmissionFile(ctx.Request.Context(), actor, submissionID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": file.FileName}))
	ctx.File(fullPath)
}
