package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/scholarhub/internal/app/models"
	"github.com/yigit/scholarhub/internal/app/models/dto"
	"github.com/yigit/scholarhub/internal/app/services"
	"github.com/yigit/scholarhub/internal/middleware"
)

// ScholarshipController handles the scholarship catalog and requirement definitions
type ScholarshipController struct {
	scholarshipService services.ScholarshipService
	requirementService services.RequirementService
}

// NewScholarshipController creates a new ScholarshipController
func NewScholarshipController(scholarshipService services.ScholarshipService, requirementService services.RequirementService) *ScholarshipController {
	return &ScholarshipController{
		scholarshipService: scholarshipService,
		requirementService: requirementService,
	}
}

// ListCatalog returns every scholarship
// @Summary List scholarships
// @Tags scholarships
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Scholarship}
// @Router /scholarships [get]
func (c *ScholarshipController) ListCatalog(ctx *gin.Context) {
	scholarships, err := c.scholarshipService.ListCatalog(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(scholarships, ""))
}

// GetScholarship returns a scholarship with its requirements
// @Summary Get scholarship details
// @Tags scholarships
// @Produce json
// @Security BearerAuth
// @Param id path int true "Scholarship ID"
// @Success 200 {object} dto.APIResponse{data=models.ScholarshipDetail}
// @Failure 404 {object} dto.ErrorResponse "Scholarship not found"
// @Router /scholarships/{id} [get]
func (c *ScholarshipController) GetScholarship(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.scholarshipService.GetScholarshipDetails(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(detail, ""))
}

// ListSummaries returns scholarships with application and requirement counts
// @Summary List scholarships for administration
// @Tags admin-scholarships
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.ScholarshipSummary}
// @Router /admin/scholarships [get]
func (c *ScholarshipController) ListSummaries(ctx *gin.Context) {
	summaries, err := c.scholarshipService.ListSummaries(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(summaries, ""))
}

// CreateScholarship handles scholarship creation
// @Summary Create a scholarship
// @Tags admin-scholarships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateScholarshipRequest true "Scholarship"
// @Success 201 {object} dto.APIResponse{data=models.ScholarshipDetail}
// @Failure 400 {object} dto.ErrorResponse "Invalid request or duplicate name"
// @Router /admin/scholarships [post]
func (c *ScholarshipController) CreateScholarship(ctx *gin.Context) {
	var req dto.CreateScholarshipRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	detail, err := c.scholarshipService.CreateScholarship(ctx.Request.Context(), req.ToModel(), req.RequirementIDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(detail, "Scholarship created"))
}

// UpdateScholarship handles partial scholarship updates
// @Summary Update a scholarship
// @Description Omitted fields keep their value. A requirementIds array replaces the requirement set.
// @Tags admin-scholarships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Scholarship ID"
// @Param request body dto.UpdateScholarshipRequest true "Changed fields"
// @Success 200 {object} dto.APIResponse{data=models.ScholarshipDetail}
// @Failure 404 {object} dto.ErrorResponse "Scholarship not found"
// @Router /admin/scholarships/{id} [put]
func (c *ScholarshipController) UpdateScholarship(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateScholarshipRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	detail, err := c.scholarshipService.UpdateScholarship(ctx.Request.Context(), id, req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(detail, "Scholarship updated"))
}

// DeleteScholarship handles scholarship deletion
// @Summary Delete a scholarship
// @Tags admin-scholarships
// @Produce json
// @Security BearerAuth
// @Param id path int true "Scholarship ID"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Scholarship has applications"
// @Failure 404 {object} dto.ErrorResponse "Scholarship not found"
// @Router /admin/scholarships/{id} [delete]
func (c *ScholarshipController) DeleteScholarship(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.scholarshipService.DeleteScholarship(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Scholarship deleted"))
}

// ListRequirements returns requirement definitions with usage counts
// @Summary List requirements
// @Tags admin-requirements
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.RequirementSummary}
// @Router /admin/requirements [get]
func (c *ScholarshipController) ListRequirements(ctx *gin.Context) {
	requirements, err := c.requirementService.ListRequirements(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(requirements, ""))
}

// CreateRequirement handles requirement creation
// @Summary Create a requirement
// @Tags admin-requirements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateRequirementRequest true "Requirement"
// @Success 201 {object} dto.APIResponse{data=models.Requirement}
// @Failure 400 {object} dto.ErrorResponse "Invalid request or duplicate name"
// @Router /admin/requirements [post]
func (c *ScholarshipController) CreateRequirement(ctx *gin.Context) {
	var req dto.CreateRequirementRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	requirement, err := c.requirementService.CreateRequirement(ctx.Request.Context(), models.Requirement{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(requirement, "Requirement created"))
}

// UpdateRequirement handles partial requirement updates
// @Summary Update a requirement
// @Tags admin-requirements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Requirement ID"
// @Param request body dto.UpdateRequirementRequest true "Changed fields"
// @Success 200 {object} dto.APIResponse{data=models.Requirement}
// @Failure 404 {object} dto.ErrorResponse "Requirement not found"
// @Router /admin/requirements/{id} [put]
func (c *ScholarshipController) UpdateRequirement(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateRequirementRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	requirement, err := c.requirementService.UpdateRequirement(ctx.Request.Context(), id, models.RequirementUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(requirement, "Requirement updated"))
}

// DeleteRequirement handles requirement deletion
// @Summary Delete a requirement
// @Tags admin-requirements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Requirement ID"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Requirement held by an active application"
// @Failure 404 {object} dto.ErrorResponse "Requirement not found"
// @Router /admin/requirements/{id} [delete]
func (c *ScholarshipController) DeleteRequirement(ctx *gin.Context) {
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.requirementService.DeleteRequirement(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Requirement deleted"))
}
