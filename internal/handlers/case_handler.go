package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/weihan-tech/casetrack/internal/errors"
	"github.com/weihan-tech/casetrack/internal/services"
)

// dateLayout is the wire format for date-only fields.
const dateLayout = "2006-01-02"

// CaseHandler handles case-related HTTP requests.
type CaseHandler struct {
	service services.CaseService
}

// NewCaseHandler creates a new CaseHandler instance.
func NewCaseHandler(service services.CaseService) *CaseHandler {
	return &CaseHandler{service: service}
}

// CreateCaseRequest is the payload for opening a case. The business number
// is assigned server-side and must not be supplied.
type CreateCaseRequest struct {
	ViolationReason     *string `json:"violation_reason"`
	Status              string  `json:"status"`
	ConstructionUnit    string  `json:"construction_unit" binding:"required"`
	BuildingType        string  `json:"building_type" binding:"required"`
	PermitStatus        string  `json:"permit_status"`
	LandType            string  `json:"land_type" binding:"required"`
	EngineeringCategory string  `json:"engineering_category" binding:"required"`
	CaseSource          string  `json:"case_source" binding:"required"`
	StartDate           string  `json:"start_date"`
	DiscoveryDate       string  `json:"discovery_date"`
	LandArea            float64 `json:"land_area" binding:"gte=0"`
	BuildingArea        float64 `json:"building_area" binding:"gte=0"`
	ViolationArea       float64 `json:"violation_area" binding:"gte=0"`
	LocationID          int64   `json:"location_id" binding:"required"`
}

// ListCasesRequest is the pagination query for the case list.
type ListCasesRequest struct {
	Offset int `form:"offset" binding:"omitempty,gte=0"`
	Limit  int `form:"limit" binding:"omitempty,gte=1,lte=500"`
}

// EnforcementRequest is the payload for a government-side progress event.
type EnforcementRequest struct {
	ActionStage    string `json:"action_stage" binding:"required"`
	Executor       string `json:"executor" binding:"required"`
	ActionDate     string `json:"action_date" binding:"required"`
	StatusSnapshot string `json:"status_snapshot" binding:"required"`
	CaseID         int64  `json:"case_id" binding:"required"`
}

// BuildingProgressRequest is the payload for an inspector-side progress event.
type BuildingProgressRequest struct {
	PhotoPath      *string `json:"photo_path"`
	Description    string  `json:"description" binding:"required"`
	Inspector      string  `json:"inspector" binding:"required"`
	DiscoveryDate  string  `json:"discovery_date" binding:"required"`
	StatusSnapshot string  `json:"status_snapshot" binding:"required"`
	CaseID         int64   `json:"case_id" binding:"required"`
}

// ArchiveRequest is the payload for registering uploaded-file metadata.
// The file bytes themselves live elsewhere; only the metadata is recorded.
type ArchiveRequest struct {
	EnforcementID *int64  `json:"enforcement_id"`
	DocumentCode  *string `json:"document_code"`
	FileName      string  `json:"file_name" binding:"required"`
	FilePath      string  `json:"file_path" binding:"required"`
	FileType      string  `json:"file_type" binding:"required"`
}

// Create handles POST /api/v1/cases.
func (h *CaseHandler) Create(c *gin.Context) {
	var req CreateCaseRequest
	if !bindJSON(c, &req) {
		return
	}

	startDate, ok := parseOptionalDate(c, "start_date", req.StartDate)
	if !ok {
		return
	}
	discoveryDate, ok := parseOptionalDate(c, "discovery_date", req.DiscoveryDate)
	if !ok {
		return
	}

	created, err := h.service.CreateCase(c.Request.Context(), services.CreateCaseInput{
		LocationID:          req.LocationID,
		Status:              req.Status,
		ConstructionUnit:    req.ConstructionUnit,
		BuildingType:        req.BuildingType,
		LandArea:            req.LandArea,
		BuildingArea:        req.BuildingArea,
		ViolationArea:       req.ViolationArea,
		PermitStatus:        req.PermitStatus,
		LandType:            req.LandType,
		EngineeringCategory: req.EngineeringCategory,
		CaseSource:          req.CaseSource,
		ViolationReason:     req.ViolationReason,
		StartDate:           startDate,
		DiscoveryDate:       discoveryDate,
	})
	if err != nil {
		h.renderError(c, err, "Failed to create case")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// List handles GET /api/v1/cases.
func (h *CaseHandler) List(c *gin.Context) {
	var req ListCasesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	cases, err := h.service.ListCases(c.Request.Context(), req.Offset, req.Limit)
	if err != nil {
		h.renderError(c, err, "Failed to list cases")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cases": cases,
		"count": len(cases),
	})
}

// Detail handles GET /api/v1/cases/:id.
func (h *CaseHandler) Detail(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	detail, err := h.service.GetCaseDetail(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err, "Failed to load case detail")
		return
	}

	c.JSON(http.StatusOK, detail)
}

// ArchiveCheck handles GET /api/v1/cases/:id/archive-check.
func (h *CaseHandler) ArchiveCheck(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	report, err := h.service.CheckArchive(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err, "Failed to check archive compliance")
		return
	}

	c.JSON(http.StatusOK, report)
}

// AddEnforcement handles POST /api/v1/cases/enforcement.
func (h *CaseHandler) AddEnforcement(c *gin.Context) {
	var req EnforcementRequest
	if !bindJSON(c, &req) {
		return
	}

	actionDate, ok := parseDate(c, "action_date", req.ActionDate)
	if !ok {
		return
	}

	rec, err := h.service.AddEnforcementAction(c.Request.Context(), services.AddEnforcementInput{
		CaseID:         req.CaseID,
		ActionStage:    req.ActionStage,
		Executor:       req.Executor,
		ActionDate:     actionDate,
		StatusSnapshot: req.StatusSnapshot,
	})
	if err != nil {
		h.renderError(c, err, "Failed to append enforcement action")
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// AddBuildingProgress handles POST /api/v1/cases/building-progress.
func (h *CaseHandler) AddBuildingProgress(c *gin.Context) {
	var req BuildingProgressRequest
	if !bindJSON(c, &req) {
		return
	}

	discoveryDate, ok := parseDate(c, "discovery_date", req.DiscoveryDate)
	if !ok {
		return
	}

	rec, err := h.service.AddBuildingProgress(c.Request.Context(), services.AddBuildingProgressInput{
		CaseID:         req.CaseID,
		Description:    req.Description,
		Inspector:      req.Inspector,
		DiscoveryDate:  discoveryDate,
		PhotoPath:      req.PhotoPath,
		StatusSnapshot: req.StatusSnapshot,
	})
	if err != nil {
		h.renderError(c, err, "Failed to append building progress")
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// AddArchive handles POST /api/v1/cases/:id/archives.
func (h *CaseHandler) AddArchive(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req ArchiveRequest
	if !bindJSON(c, &req) {
		return
	}

	rec, err := h.service.AddArchive(c.Request.Context(), services.AddArchiveInput{
		CaseID:        id,
		EnforcementID: req.EnforcementID,
		FileName:      req.FileName,
		FilePath:      req.FilePath,
		FileType:      req.FileType,
		DocumentCode:  req.DocumentCode,
	})
	if err != nil {
		h.renderError(c, err, "Failed to register archive")
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// Export handles GET /api/v1/cases/export.
func (h *CaseHandler) Export(c *gin.Context) {
	data, err := h.service.ExportCases(c.Request.Context())
	if err != nil {
		h.renderError(c, err, "Failed to export cases")
		return
	}

	filename := fmt.Sprintf("cases_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// renderError maps service-level errors to HTTP error responses.
func (h *CaseHandler) renderError(c *gin.Context, err error, message string) {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		var details map[string]interface{}
		if vErr.Field != "" {
			details = map[string]interface{}{vErr.Field: vErr.Reason}
		}
		apierrors.BadRequest(c, vErr.Error(), details)
	case errors.Is(err, services.ErrCaseNotFound):
		apierrors.NotFound(c, "Case not found")
	case errors.Is(err, services.ErrLocationNotFound):
		apierrors.NotFound(c, "Location not found")
	case errors.Is(err, services.ErrCaseNumberConflict):
		apierrors.Conflict(c, "Case number already assigned, retry the request")
	default:
		apierrors.InternalServerError(c, message, err)
	}
}

// bindJSON binds the request body and renders a validation response on
// failure. Returns false when the request has already been answered.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return false
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return false
	}
	return true
}

// parseIDParam reads the numeric :id path parameter.
func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid id parameter", nil)
		return 0, false
	}
	return id, true
}

// parseDate parses a required YYYY-MM-DD field.
func parseDate(c *gin.Context, field, value string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		apierrors.BadRequest(c, "Invalid date", map[string]interface{}{
			field: "must be formatted as " + dateLayout,
		})
		return time.Time{}, false
	}
	return t, true
}

// parseOptionalDate parses an optional YYYY-MM-DD field, returning nil when empty.
func parseOptionalDate(c *gin.Context, field, value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	t, ok := parseDate(c, field, value)
	if !ok {
		return nil, false
	}
	return &t, true
}
