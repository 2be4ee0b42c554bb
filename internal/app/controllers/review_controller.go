package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/scholarhub/internal/app/models"
	"github.com/yigit/scholarhub/internal/app/models/dto"
	"github.com/yigit/scholarhub/internal/app/services"
	"github.com/yigit/scholarhub/internal/middleware"
	"github.com/yigit/scholarhub/internal/pkg/helpers"
	"github.com/yigit/scholarhub/internal/pkg/logger"
)

// ReviewController handles admin review of applications and their evaluations
type ReviewController struct {
	reviewService services.ReviewService
}

// NewReviewController creates a new ReviewController
func NewReviewController(reviewService services.ReviewService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
	}
}

// ListApplications handles the admin application listing
// @Summary List applications
// @Description Lists applications newest first with optional status and scholarship filters
// @Tags admin-applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status (Draft, Pending, Under Review, Approved, Rejected)"
// @Param scholarshipId query int false "Filter by scholarship ID"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.ApplicationListItem}}
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /admin/applications [get]
func (c *ReviewController) ListApplications(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	filter := models.ApplicationFilter{Offset: offset, Limit: limit}

	if raw := ctx.Query("status"); raw != "" {
		status, ok := models.ParseApplicationStatus(raw)
		if !ok {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid status filter")
			errorDetail = errorDetail.WithField("status").WithDetails(models.ApplicationStatuses)
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		filter.Status = &status
	}

	if raw := ctx.Query("scholarshipId"); raw != "" {
		scholarshipID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || scholarshipID <= 0 {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid scholarshipId filter")
			errorDetail = errorDetail.WithField("scholarshipId")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		filter.ScholarshipID = &scholarshipID
	}

	items, total, err := c.reviewService.ListApplications(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PaginatedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}, ""))
}

// GetApplication returns the full reviewer view of an application
// @Summary Get application details
// @Tags admin-applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=models.ApplicationDetail}
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /admin/applications/{id} [get]
func (c *ReviewController) GetApplication(ctx *gin.Context) {
	applicationID, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.reviewService.GetApplicationDetails(ctx.Request.Context(), applicationID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(detail, ""))
}

// UpdateApplicationStatus records an admin decision
// @Summary Update application status
// @Description Moves a Pending or Under Review application to a new status with remarks. Draft applications must be submitted by the student first, and Approved or Rejected applications are final.
// @Tags admin-applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.UpdateApplicationStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.Application}
// @Failure 400 {object} dto.ErrorResponse "Invalid status or transition"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /admin/applications/{id}/status [put]
func (c *ReviewController) UpdateApplicationStatus(ctx *gin.Context) {
	applicationID, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateApplicationStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	application, err := c.reviewService.UpdateApplicationStatus(ctx.Request.Context(), applicationID, req.Status, req.Remarks)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(application, "Application status updated"))
}

// DeleteApplication removes an application with its submissions and evaluations
// @Summary Delete an application
// @Tags admin-applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /admin/applications/{id} [delete]
func (c *ReviewController) DeleteApplication(ctx *gin.Context) {
	applicationID, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.reviewService.DeleteApplication(ctx.Request.Context(), applicationID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	logger.Info().Int64("applicationID", applicationID).Msg("Application deleted by admin")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Application deleted"))
}

// CreateEvaluation appends an evaluation to an application
// @Summary Create an evaluation
// @Tags admin-evaluations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEvaluationRequest true "Evaluation"
// @Success 201 {object} dto.APIResponse{data=models.Evaluation}
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /admin/evaluations [post]
func (c *ReviewController) CreateEvaluation(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		return
	}

	var req dto.CreateEvaluationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	evaluation, err := c.reviewService.CreateEvaluation(ctx.Request.Context(), actor, models.Evaluation{
		ApplicationID: req.ApplicationID,
		EvaluatorName: req.EvaluatorName,
		Score:         req.Score,
		Comments:      req.Comments,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(evaluation, "Evaluation created"))
}

// ListEvaluations returns the evaluations of an application, newest first
// @Summary List evaluations of an application
// @Tags admin-evaluations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Evaluation}
// @Router /admin/applications/{id}/evaluations [get]
func (c *ReviewController) ListEvaluations(ctx *gin.Context) {
	applicationID, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	evaluations, err := c.reviewService.ListEvaluations(ctx.Request.Context(), applicationID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(evaluations, ""))
}

// UpdateEvaluation edits the score or comments of an evaluation
// @Summary Update an evaluation
// @Tags admin-evaluations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Evaluation ID"
// @Param request body dto.UpdateEvaluationRequest true "Changed fields"
// @Success 200 {object} dto.APIResponse{data=models.Evaluation}
// @Failure 404 {object} dto.ErrorResponse "Evaluation not found"
// @Router /admin/evaluations/{id} [put]
func (c *ReviewController) UpdateEvaluation(ctx *gin.Context) {
	evaluationID, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateEvaluationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	evaluation, err := c.reviewService.UpdateEvaluation(ctx.Request.Context(), evaluationID, req.Score, req.Comments)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(evaluation, "Evaluation updated"))
}
