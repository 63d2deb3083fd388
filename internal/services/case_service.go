package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/weihan-tech/casetrack/internal/compliance"
	"github.com/weihan-tech/casetrack/internal/logger"
	"github.com/weihan-tech/casetrack/internal/metrics"
	"github.com/weihan-tech/casetrack/internal/models"
	"github.com/weihan-tech/casetrack/internal/repository"
)

// List pagination bounds.
const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// Service-level errors
var (
	ErrCaseNotFound       = errors.New("case not found")
	ErrLocationNotFound   = errors.New("location not found")
	ErrCaseNumberConflict = errors.New("case number conflict")
)

// CreateCaseInput carries the fields for opening a new case. The business
// number is assigned internally and is not part of the input.
type CreateCaseInput struct {
	StartDate           *time.Time
	DiscoveryDate       *time.Time
	ViolationReason     *string
	Status              string
	ConstructionUnit    string
	BuildingType        string
	PermitStatus        string
	LandType            string
	EngineeringCategory string
	CaseSource          string
	LandArea            float64
	BuildingArea        float64
	ViolationArea       float64
	LocationID          int64
}

// AddEnforcementInput carries the fields for a government-side progress event.
type AddEnforcementInput struct {
	ActionDate     time.Time
	ActionStage    string
	Executor       string
	StatusSnapshot string
	CaseID         int64
}

// AddBuildingProgressInput carries the fields for an inspector-side progress event.
type AddBuildingProgressInput struct {
	DiscoveryDate  time.Time
	PhotoPath      *string
	Description    string
	Inspector      string
	StatusSnapshot string
	CaseID         int64
}

// AddArchiveInput carries the metadata for an uploaded supporting document.
type AddArchiveInput struct {
	EnforcementID *int64
	DocumentCode  *string
	FileName      string
	FilePath      string
	FileType      string
	CaseID        int64
}

// CaseDetail is the full read model for one case: the case itself plus both
// ordered progress perspectives, its archives, and its location.
type CaseDetail struct {
	Case               models.Case                `json:"case"`
	Location           *models.Location           `json:"location"`
	EnforcementActions []models.EnforcementAction `json:"enforcement_actions"`
	BuildingProgresses []models.BuildingProgress  `json:"building_progresses"`
	Archives           []models.FileArchive       `json:"archives"`
}

// ArchiveReport is the result of an archive compliance check.
type ArchiveReport struct {
	CurrentStage string   `json:"current_stage"`
	MissingDocs  []string `json:"missing_docs"`
	IsCompliant  bool     `json:"is_compliant"`
}

// CaseService defines the business operations of the case lifecycle engine.
type CaseService interface {
	// CreateCase validates the input, assigns the next business number for
	// the current year and persists the case.
	// Returns a *ValidationError for rule-violating input,
	// ErrLocationNotFound when the location reference is dangling, and
	// ErrCaseNumberConflict when numbering collides twice in a row.
	CreateCase(ctx context.Context, in CreateCaseInput) (*models.Case, error)

	// GetCaseDetail returns the case with both progress perspectives, its
	// archives and its location. Returns ErrCaseNotFound when absent.
	GetCaseDetail(ctx context.Context, id int64) (*CaseDetail, error)

	// ListCases returns a page of cases in creation order.
	ListCases(ctx context.Context, offset, limit int) ([]models.Case, error)

	// AddEnforcementAction appends a government-side progress event and
	// overwrites the case status with the event's snapshot, atomically.
	// Returns ErrCaseNotFound when the case is absent.
	AddEnforcementAction(ctx context.Context, in AddEnforcementInput) (*models.EnforcementAction, error)

	// AddBuildingProgress appends an inspector-side progress event with the
	// same status-linkage side effect as AddEnforcementAction.
	AddBuildingProgress(ctx context.Context, in AddBuildingProgressInput) (*models.BuildingProgress, error)

	// AddArchive registers uploaded-file metadata against a case.
	// Returns ErrCaseNotFound when the case is absent.
	AddArchive(ctx context.Context, in AddArchiveInput) (*models.FileArchive, error)

	// CheckArchive compares the case's current status against the configured
	// document rules and reports what is missing. Read-only.
	CheckArchive(ctx context.Context, id int64) (*ArchiveReport, error)

	// ExportCases renders the brief case list as an XLSX workbook.
	ExportCases(ctx context.Context) ([]byte, error)
}

// caseService is the concrete implementation of CaseService.
type caseService struct {
	store repository.Store
	rules *compliance.Rules
	log   *logger.Logger
	met   *metrics.Metrics
	now   func() time.Time
}

// NewCaseService creates a new CaseService.
func NewCaseService(store repository.Store, rules *compliance.Rules, log *logger.Logger, met *metrics.Metrics) CaseService {
	return &caseService{
		store: store,
		rules: rules,
		log:   log,
		met:   met,
		now:   time.Now,
	}
}

// createAttempts bounds numbering retries after a unique-constraint collision.
const createAttempts = 2

func (s *caseService) CreateCase(ctx context.Context, in CreateCaseInput) (*models.Case, error) {
	start := time.Now()

	if err := s.validateInput(in); err != nil {
		s.log.Warn("Case creation rejected", map[string]interface{}{
			"location_id": in.LocationID,
			"reason":      err.Error(),
		})
		return nil, err
	}

	loc, err := s.store.FindLocation(ctx, in.LocationID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up location: %w", err)
	}
	if loc == nil {
		return nil, ErrLocationNotFound
	}

	if in.Status == "" {
		in.Status = models.DefaultStatus
	}

	var created *models.Case
	for attempt := 1; attempt <= createAttempts; attempt++ {
		err = s.store.WithinTx(ctx, func(tx repository.Store) error {
			number, err := nextCaseNumber(ctx, tx, s.now().Year())
			if err != nil {
				return err
			}

			// Last line of defense: nothing violating the area invariant
			// may reach the insert, even if validation above changes.
			if in.LandArea > 0 && in.BuildingArea > 0 && in.LandArea > in.BuildingArea {
				return &ValidationError{Reason: "land area exceeds building area"}
			}

			c, err := tx.InsertCase(ctx, repository.NewCase{
				LocationID:          in.LocationID,
				CaseNumber:          number,
				Status:              in.Status,
				ConstructionUnit:    in.ConstructionUnit,
				BuildingType:        in.BuildingType,
				LandArea:            in.LandArea,
				BuildingArea:        in.BuildingArea,
				ViolationArea:       in.ViolationArea,
				PermitStatus:        in.PermitStatus,
				LandType:            in.LandType,
				EngineeringCategory: in.EngineeringCategory,
				CaseSource:          in.CaseSource,
				ViolationReason:     in.ViolationReason,
				StartDate:           in.StartDate,
				DiscoveryDate:       in.DiscoveryDate,
			})
			if err != nil {
				return err
			}
			created = c
			return nil
		})

		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicateCaseNumber) && attempt < createAttempts {
			s.log.Warn("Case number collision, retrying with fresh scan", map[string]interface{}{
				"attempt": attempt,
			})
			continue
		}
		if errors.Is(err, repository.ErrDuplicateCaseNumber) {
			return nil, fmt.Errorf("%w: %v", ErrCaseNumberConflict, err)
		}
		return nil, err
	}

	s.log.Info("Case created", map[string]interface{}{
		"case_id":     created.ID,
		"case_number": created.CaseNumber,
		"location_id": created.LocationID,
	})
	s.met.IncrementCasesCreated()
	s.met.ObserveCreateCase(start)

	return created, nil
}

// validateInput applies the field-level and cross-field rules on creation
// input. land_type, engineering_category and case_source are mandatory here
// rather than at the storage layer, so the rejection carries a field name
// instead of a constraint violation.
func (s *caseService) validateInput(in CreateCaseInput) error {
	if err := validateAreas(in.LandArea, in.BuildingArea, in.ViolationArea); err != nil {
		return err
	}
	for _, f := range []struct {
		field string
		value string
	}{
		{"construction_unit", in.ConstructionUnit},
		{"building_type", in.BuildingType},
		{"land_type", in.LandType},
		{"engineering_category", in.EngineeringCategory},
		{"case_source", in.CaseSource},
	} {
		if f.value == "" {
			return &ValidationError{Field: f.field, Reason: "required"}
		}
	}
	return nil
}

func (s *caseService) GetCaseDetail(ctx context.Context, id int64) (*CaseDetail, error) {
	c, err := s.store.FindCase(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up case: %w", err)
	}
	if c == nil {
		return nil, ErrCaseNotFound
	}

	actions, err := s.store.ListEnforcementActionsForCase(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load enforcement actions: %w", err)
	}
	progresses, err := s.store.ListBuildingProgressForCase(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load building progress: %w", err)
	}
	archives, err := s.store.ListArchivesForCase(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load archives: %w", err)
	}
	loc, err := s.store.FindLocation(ctx, c.LocationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load location: %w", err)
	}

	return &CaseDetail{
		Case:               *c,
		Location:           loc,
		EnforcementActions: actions,
		BuildingProgresses: progresses,
		Archives:           archives,
	}, nil
}

func (s *caseService) ListCases(ctx context.Context, offset, limit int) ([]models.Case, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.store.ListCases(ctx, offset, limit)
}

func (s *caseService) AddEnforcementAction(ctx context.Context, in AddEnforcementInput) (*models.EnforcementAction, error) {
	var rec *models.EnforcementAction
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		c, err := tx.FindCase(ctx, in.CaseID)
		if err != nil {
			return fmt.Errorf("failed to look up case: %w", err)
		}
		if c == nil {
			return ErrCaseNotFound
		}

		rec, err = tx.InsertEnforcementAction(ctx, repository.NewEnforcementAction{
			CaseID:         in.CaseID,
			ActionStage:    in.ActionStage,
			Executor:       in.Executor,
			ActionDate:     in.ActionDate,
			StatusSnapshot: in.StatusSnapshot,
		})
		if err != nil {
			return err
		}
		return linkStatus(ctx, tx, in.CaseID, in.StatusSnapshot)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Enforcement action appended", map[string]interface{}{
		"case_id": in.CaseID,
		"stage":   in.ActionStage,
		"status":  in.StatusSnapshot,
	})
	s.met.IncrementProgress("enforcement")

	return rec, nil
}

func (s *caseService) AddBuildingProgress(ctx context.Context, in AddBuildingProgressInput) (*models.BuildingProgress, error) {
	var rec *models.BuildingProgress
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		c, err := tx.FindCase(ctx, in.CaseID)
		if err != nil {
			return fmt.Errorf("failed to look up case: %w", err)
		}
		if c == nil {
			return ErrCaseNotFound
		}

		rec, err = tx.InsertBuildingProgress(ctx, repository.NewBuildingProgress{
			CaseID:         in.CaseID,
			Description:    in.Description,
			Inspector:      in.Inspector,
			DiscoveryDate:  in.DiscoveryDate,
			PhotoPath:      in.PhotoPath,
			StatusSnapshot: in.StatusSnapshot,
		})
		if err != nil {
			return err
		}
		return linkStatus(ctx, tx, in.CaseID, in.StatusSnapshot)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Building progress appended", map[string]interface{}{
		"case_id":   in.CaseID,
		"inspector": in.Inspector,
		"status":    in.StatusSnapshot,
	})
	s.met.IncrementProgress("building")

	return rec, nil
}

// linkStatus overwrites the parent case's status with a progress event's
// snapshot, verbatim. Both event perspectives funnel through here; the
// latest append wins regardless of which side it came from.
func linkStatus(ctx context.Context, tx repository.Store, caseID int64, snapshot string) error {
	c, err := tx.UpdateCaseStatus(ctx, caseID, snapshot)
	if err != nil {
		return fmt.Errorf("failed to link case status: %w", err)
	}
	if c == nil {
		return ErrCaseNotFound
	}
	return nil
}

func (s *caseService) AddArchive(ctx context.Context, in AddArchiveInput) (*models.FileArchive, error) {
	c, err := s.store.FindCase(ctx, in.CaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up case: %w", err)
	}
	if c == nil {
		return nil, ErrCaseNotFound
	}

	return s.store.InsertFileArchive(ctx, repository.NewFileArchive{
		CaseID:        in.CaseID,
		EnforcementID: in.EnforcementID,
		FileName:      in.FileName,
		FilePath:      in.FilePath,
		FileType:      in.FileType,
		DocumentCode:  in.DocumentCode,
	})
}

func (s *caseService) CheckArchive(ctx context.Context, id int64) (*ArchiveReport, error) {
	c, err := s.store.FindCase(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up case: %w", err)
	}
	if c == nil {
		return nil, ErrCaseNotFound
	}

	archives, err := s.store.ListArchivesForCase(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load archives: %w", err)
	}

	names := make([]string, 0, len(archives))
	for _, a := range archives {
		names = append(names, a.FileName)
	}

	missing := s.rules.Missing(c.Status, names)
	report := &ArchiveReport{
		CurrentStage: c.Status,
		MissingDocs:  missing,
		IsCompliant:  len(missing) == 0,
	}

	outcome := "compliant"
	if !report.IsCompliant {
		outcome = "missing"
	}
	s.met.IncrementArchiveCheck(outcome)

	return report, nil
}
