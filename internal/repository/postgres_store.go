package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/weihan-tech/casetrack/internal/database"
	"github.com/weihan-tech/casetrack/internal/models"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, allowing the same
// query methods to run inside or outside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgStore is the pgx-backed implementation of Store.
type pgStore struct {
	q  querier
	db *database.Database // nil when bound to a transaction
}

// NewStore creates a Store backed by the given database pool.
func NewStore(db *database.Database) Store {
	return &pgStore{q: db.Pool, db: db}
}

// WithinTx begins a transaction and runs fn with a Store bound to it.
// Calling WithinTx on an already tx-bound store runs fn directly, so
// service-level helpers compose without nesting transactions.
func (s *pgStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txStore := &pgStore{q: tx}
	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const locationColumns = `id, address, longitude, latitude, community, unit_number, created_at`

func scanLocation(row pgx.Row) (*models.Location, error) {
	var loc models.Location
	err := row.Scan(
		&loc.ID,
		&loc.Address,
		&loc.Longitude,
		&loc.Latitude,
		&loc.Community,
		&loc.UnitNumber,
		&loc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (s *pgStore) FindLocation(ctx context.Context, id int64) (*models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1`

	loc, err := scanLocation(s.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query location %d: %w", id, err)
	}
	return loc, nil
}

func (s *pgStore) InsertLocation(ctx context.Context, in NewLocation) (*models.Location, error) {
	query := `
		INSERT INTO locations (address, longitude, latitude, community, unit_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + locationColumns

	loc, err := scanLocation(s.q.QueryRow(ctx, query, in.Address, in.Longitude, in.Latitude, in.Community, in.UnitNumber))
	if err != nil {
		return nil, fmt.Errorf("failed to insert location: %w", err)
	}
	return loc, nil
}

const caseColumns = `id, location_id, case_number, status, construction_unit, building_type,
		land_area, building_area, violation_area,
		permit_status, land_type, engineering_category, case_source, violation_reason,
		start_date, discovery_date, created_at, updated_at`

func scanCase(row pgx.Row) (*models.Case, error) {
	var c models.Case
	err := row.Scan(
		&c.ID,
		&c.LocationID,
		&c.CaseNumber,
		&c.Status,
		&c.ConstructionUnit,
		&c.BuildingType,
		&c.LandArea,
		&c.BuildingArea,
		&c.ViolationArea,
		&c.PermitStatus,
		&c.LandType,
		&c.EngineeringCategory,
		&c.CaseSource,
		&c.ViolationReason,
		&c.StartDate,
		&c.DiscoveryDate,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *pgStore) collectCases(ctx context.Context, query string, args ...any) ([]models.Case, error) {
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cases := []models.Case{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case row: %w", err)
		}
		cases = append(cases, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating case rows: %w", err)
	}
	return cases, nil
}

func (s *pgStore) FindCase(ctx context.Context, id int64) (*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = $1`

	c, err := scanCase(s.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query case %d: %w", id, err)
	}
	return c, nil
}

func (s *pgStore) FindCaseByNumber(ctx context.Context, number string) (*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE case_number = $1`

	c, err := scanCase(s.q.QueryRow(ctx, query, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query case by number %s: %w", number, err)
	}
	return c, nil
}

// MaxCaseNumberWithPrefix returns the lexicographically largest case number
// starting with prefix, or "" when no case matches. Numbers are fixed-width
// within a year, so lexicographic and numeric order coincide.
func (s *pgStore) MaxCaseNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	query := `
		SELECT case_number FROM cases
		WHERE case_number LIKE $1 || '%'
		ORDER BY case_number DESC
		LIMIT 1`

	var number string
	err := s.q.QueryRow(ctx, query, prefix).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to query max case number for prefix %s: %w", prefix, err)
	}
	return number, nil
}

func (s *pgStore) ListCases(ctx context.Context, offset, limit int) ([]models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases ORDER BY created_at, id OFFSET $1 LIMIT $2`

	cases, err := s.collectCases(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases (offset=%d, limit=%d): %w", offset, limit, err)
	}
	return cases, nil
}

func (s *pgStore) ListCasesForLocation(ctx context.Context, locationID int64) ([]models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE location_id = $1 ORDER BY created_at, id`

	cases, err := s.collectCases(ctx, query, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases for location %d: %w", locationID, err)
	}
	return cases, nil
}

func (s *pgStore) InsertCase(ctx context.Context, in NewCase) (*models.Case, error) {
	query := `
		INSERT INTO cases (
			location_id, case_number, status, construction_unit, building_type,
			land_area, building_area, violation_area,
			permit_status, land_type, engineering_category, case_source, violation_reason,
			start_date, discovery_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + caseColumns

	c, err := scanCase(s.q.QueryRow(ctx, query,
		in.LocationID,
		in.CaseNumber,
		in.Status,
		in.ConstructionUnit,
		in.BuildingType,
		in.LandArea,
		in.BuildingArea,
		in.ViolationArea,
		in.PermitStatus,
		in.LandType,
		in.EngineeringCategory,
		in.CaseSource,
		in.ViolationReason,
		in.StartDate,
		in.DiscoveryDate,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCaseNumber, in.CaseNumber)
		}
		return nil, fmt.Errorf("failed to insert case %s: %w", in.CaseNumber, err)
	}
	return c, nil
}

func (s *pgStore) UpdateCaseStatus(ctx context.Context, id int64, status string) (*models.Case, error) {
	query := `
		UPDATE cases SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + caseColumns

	c, err := scanCase(s.q.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update status of case %d: %w", id, err)
	}
	return c, nil
}

const enforcementColumns = `id, case_id, action_stage, executor, action_date, status_snapshot, created_at`

func scanEnforcementAction(row pgx.Row) (*models.EnforcementAction, error) {
	var a models.EnforcementAction
	err := row.Scan(
		&a.ID,
		&a.CaseID,
		&a.ActionStage,
		&a.Executor,
		&a.ActionDate,
		&a.StatusSnapshot,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *pgStore) InsertEnforcementAction(ctx context.Context, in NewEnforcementAction) (*models.EnforcementAction, error) {
	query := `
		INSERT INTO enforcement_actions (case_id, action_stage, executor, action_date, status_snapshot)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + enforcementColumns

	a, err := scanEnforcementAction(s.q.QueryRow(ctx, query, in.CaseID, in.ActionStage, in.Executor, in.ActionDate, in.StatusSnapshot))
	if err != nil {
		return nil, fmt.Errorf("failed to insert enforcement action for case %d: %w", in.CaseID, err)
	}
	return a, nil
}

func (s *pgStore) ListEnforcementActionsForCase(ctx context.Context, caseID int64) ([]models.EnforcementAction, error) {
	query := `SELECT ` + enforcementColumns + ` FROM enforcement_actions WHERE case_id = $1 ORDER BY created_at, id`

	rows, err := s.q.Query(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enforcement actions for case %d: %w", caseID, err)
	}
	defer rows.Close()

	actions := []models.EnforcementAction{}
	for rows.Next() {
		a, err := scanEnforcementAction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enforcement action row: %w", err)
		}
		actions = append(actions, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enforcement action rows: %w", err)
	}
	return actions, nil
}

const progressColumns = `id, case_id, description, inspector, discovery_date, photo_path, status_snapshot, created_at`

func scanBuildingProgress(row pgx.Row) (*models.BuildingProgress, error) {
	var p models.BuildingProgress
	err := row.Scan(
		&p.ID,
		&p.CaseID,
		&p.Description,
		&p.Inspector,
		&p.DiscoveryDate,
		&p.PhotoPath,
		&p.StatusSnapshot,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *pgStore) InsertBuildingProgress(ctx context.Context, in NewBuildingProgress) (*models.BuildingProgress, error) {
	query := `
		INSERT INTO building_progresses (case_id, description, inspector, discovery_date, photo_path, status_snapshot)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + progressColumns

	p, err := scanBuildingProgress(s.q.QueryRow(ctx, query, in.CaseID, in.Description, in.Inspector, in.DiscoveryDate, in.PhotoPath, in.StatusSnapshot))
	if err != nil {
		return nil, fmt.Errorf("failed to insert building progress for case %d: %w", in.CaseID, err)
	}
	return p, nil
}

func (s *pgStore) ListBuildingProgressForCase(ctx context.Context, caseID int64) ([]models.BuildingProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM building_progresses WHERE case_id = $1 ORDER BY created_at, id`

	rows, err := s.q.Query(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list building progress for case %d: %w", caseID, err)
	}
	defer rows.Close()

	entries := []models.BuildingProgress{}
	for rows.Next() {
		p, err := scanBuildingProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan building progress row: %w", err)
		}
		entries = append(entries, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating building progress rows: %w", err)
	}
	return entries, nil
}

const archiveColumns = `id, case_id, enforcement_id, file_name, file_path, file_type, document_code, uploaded_at`

func scanFileArchive(row pgx.Row) (*models.FileArchive, error) {
	var f models.FileArchive
	err := row.Scan(
		&f.ID,
		&f.CaseID,
		&f.EnforcementID,
		&f.FileName,
		&f.FilePath,
		&f.FileType,
		&f.DocumentCode,
		&f.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *pgStore) InsertFileArchive(ctx context.Context, in NewFileArchive) (*models.FileArchive, error) {
	query := `
		INSERT INTO file_archives (case_id, enforcement_id, file_name, file_path, file_type, document_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + archiveColumns

	f, err := scanFileArchive(s.q.QueryRow(ctx, query, in.CaseID, in.EnforcementID, in.FileName, in.FilePath, in.FileType, in.DocumentCode))
	if err != nil {
		return nil, fmt.Errorf("failed to insert file archive for case %d: %w", in.CaseID, err)
	}
	return f, nil
}

func (s *pgStore) ListArchivesForCase(ctx context.Context, caseID int64) ([]models.FileArchive, error) {
	query := `SELECT ` + archiveColumns + ` FROM file_archives WHERE case_id = $1 ORDER BY uploaded_at, id`

	rows, err := s.q.Query(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list archives for case %d: %w", caseID, err)
	}
	defer rows.Close()

	archives := []models.FileArchive{}
	for rows.Next() {
		f, err := scanFileArchive(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file archive row: %w", err)
		}
		archives = append(archives, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file archive rows: %w", err)
	}
	return archives, nil
}
