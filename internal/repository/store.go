package repository

import (
	"context"
	"errors"
	"time"

	"github.com/weihan-tech/casetrack/internal/models"
)

// ErrDuplicateCaseNumber is returned by InsertCase when the business number
// collides with an existing case. The cases.case_number column is unique, so
// the database is the final arbiter of concurrent number assignment.
var ErrDuplicateCaseNumber = errors.New("duplicate case number")

// NewLocation holds the fields required to insert a location.
type NewLocation struct {
	Address    string
	Community  string
	UnitNumber string
	Longitude  float64
	Latitude   float64
}

// NewCase holds the fields required to insert a case. CaseNumber is assigned
// by the service layer, not by the caller.
type NewCase struct {
	StartDate           *time.Time
	DiscoveryDate       *time.Time
	ViolationReason     *string
	CaseNumber          string
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

// NewEnforcementAction holds the fields required to insert an enforcement action.
type NewEnforcementAction struct {
	ActionDate     time.Time
	ActionStage    string
	Executor       string
	StatusSnapshot string
	CaseID         int64
}

// NewBuildingProgress holds the fields required to insert a building-progress entry.
type NewBuildingProgress struct {
	DiscoveryDate  time.Time
	PhotoPath      *string
	Description    string
	Inspector      string
	StatusSnapshot string
	CaseID         int64
}

// NewFileArchive holds the fields required to insert a file-archive record.
type NewFileArchive struct {
	EnforcementID *int64
	DocumentCode  *string
	FileName      string
	FilePath      string
	FileType      string
	CaseID        int64
}

// Store defines the persistence operations the case engine depends on.
//
// Lookup methods return (nil, nil) when the row is absent, not an error.
// Errors are reserved for actual database failures. MaxCaseNumberWithPrefix
// returns "" when no case matches the prefix.
type Store interface {
	FindLocation(ctx context.Context, id int64) (*models.Location, error)
	InsertLocation(ctx context.Context, loc NewLocation) (*models.Location, error)
	ListCasesForLocation(ctx context.Context, locationID int64) ([]models.Case, error)

	FindCase(ctx context.Context, id int64) (*models.Case, error)
	FindCaseByNumber(ctx context.Context, number string) (*models.Case, error)
	MaxCaseNumberWithPrefix(ctx context.Context, prefix string) (string, error)
	ListCases(ctx context.Context, offset, limit int) ([]models.Case, error)
	InsertCase(ctx context.Context, c NewCase) (*models.Case, error)
	UpdateCaseStatus(ctx context.Context, id int64, status string) (*models.Case, error)

	InsertEnforcementAction(ctx context.Context, a NewEnforcementAction) (*models.EnforcementAction, error)
	InsertBuildingProgress(ctx context.Context, p NewBuildingProgress) (*models.BuildingProgress, error)
	ListEnforcementActionsForCase(ctx context.Context, caseID int64) ([]models.EnforcementAction, error)
	ListBuildingProgressForCase(ctx context.Context, caseID int64) ([]models.BuildingProgress, error)

	InsertFileArchive(ctx context.Context, f NewFileArchive) (*models.FileArchive, error)
	ListArchivesForCase(ctx context.Context, caseID int64) ([]models.FileArchive, error)

	// WithinTx runs fn with a Store bound to a single database transaction.
	// The transaction commits when fn returns nil and rolls back otherwise,
	// so a failure between an event insert and the status update leaves no
	// partial state.
	WithinTx(ctx context.Context, fn func(Store) error) error
}
