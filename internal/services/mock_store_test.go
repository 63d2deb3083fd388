package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/weihan-tech/casetrack/internal/models"
	"github.com/weihan-tech/casetrack/internal/repository"
)

// MockStore is a mock implementation of repository.Store for testing.
type MockStore struct {
	mock.Mock
}

// WithinTx runs fn against the mock itself; transactional boundaries are
// exercised by the integration tests, not here.
func (m *MockStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(m)
}

func (m *MockStore) FindLocation(ctx context.Context, id int64) (*models.Location, error) {
	args := m.Called(ctx, id)
	loc, _ := args.Get(0).(*models.Location)
	return loc, args.Error(1)
}

func (m *MockStore) InsertLocation(ctx context.Context, in repository.NewLocation) (*models.Location, error) {
	args := m.Called(ctx, in)
	loc, _ := args.Get(0).(*models.Location)
	return loc, args.Error(1)
}

func (m *MockStore) ListCasesForLocation(ctx context.Context, locationID int64) ([]models.Case, error) {
	args := m.Called(ctx, locationID)
	cases, _ := args.Get(0).([]models.Case)
	return cases, args.Error(1)
}

func (m *MockStore) FindCase(ctx context.Context, id int64) (*models.Case, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Case)
	return c, args.Error(1)
}

func (m *MockStore) FindCaseByNumber(ctx context.Context, number string) (*models.Case, error) {
	args := m.Called(ctx, number)
	c, _ := args.Get(0).(*models.Case)
	return c, args.Error(1)
}

func (m *MockStore) MaxCaseNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	args := m.Called(ctx, prefix)
	return args.String(0), args.Error(1)
}

func (m *MockStore) ListCases(ctx context.Context, offset, limit int) ([]models.Case, error) {
	args := m.Called(ctx, offset, limit)
	cases, _ := args.Get(0).([]models.Case)
	return cases, args.Error(1)
}

func (m *MockStore) InsertCase(ctx context.Context, in repository.NewCase) (*models.Case, error) {
	args := m.Called(ctx, in)
	c, _ := args.Get(0).(*models.Case)
	return c, args.Error(1)
}

func (m *MockStore) UpdateCaseStatus(ctx context.Context, id int64, status string) (*models.Case, error) {
	args := m.Called(ctx, id, status)
	c, _ := args.Get(0).(*models.Case)
	return c, args.Error(1)
}

func (m *MockStore) InsertEnforcementAction(ctx context.Context, in repository.NewEnforcementAction) (*models.EnforcementAction, error) {
	args := m.Called(ctx, in)
	a, _ := args.Get(0).(*models.EnforcementAction)
	return a, args.Error(1)
}

func (m *MockStore) InsertBuildingProgress(ctx context.Context, in repository.NewBuildingProgress) (*models.BuildingProgress, error) {
	args := m.Called(ctx, in)
	p, _ := args.Get(0).(*models.BuildingProgress)
	return p, args.Error(1)
}

func (m *MockStore) ListEnforcementActionsForCase(ctx context.Context, caseID int64) ([]models.EnforcementAction, error) {
	args := m.Called(ctx, caseID)
	actions, _ := args.Get(0).([]models.EnforcementAction)
	return actions, args.Error(1)
}

func (m *MockStore) ListBuildingProgressForCase(ctx context.Context, caseID int64) ([]models.BuildingProgress, error) {
	args := m.Called(ctx, caseID)
	entries, _ := args.Get(0).([]models.BuildingProgress)
	return entries, args.Error(1)
}

func (m *MockStore) InsertFileArchive(ctx context.Context, in repository.NewFileArchive) (*models.FileArchive, error) {
	args := m.Called(ctx, in)
	f, _ := args.Get(0).(*models.FileArchive)
	return f, args.Error(1)
}

func (m *MockStore) ListArchivesForCase(ctx context.Context, caseID int64) ([]models.FileArchive, error) {
	args := m.Called(ctx, caseID)
	archives, _ := args.Get(0).([]models.FileArchive)
	return archives, args.Error(1)
}
