package services

import (
	"context"
	"fmt"

	"github.com/weihan-tech/casetrack/internal/logger"
	"github.com/weihan-tech/casetrack/internal/models"
	"github.com/weihan-tech/casetrack/internal/repository"
)

// CreateLocationInput carries the fields for registering a location.
type CreateLocationInput struct {
	Address    string
	Community  string
	UnitNumber string
	Longitude  float64
	Latitude   float64
}

// LocationHistory is a location plus the brief records of its cases.
// Cases are deliberately reduced to their brief shape; nesting full case
// detail here would recurse back through locations.
type LocationHistory struct {
	Location models.Location    `json:"location"`
	Cases    []models.CaseBrief `json:"cases"`
}

// LocationService defines location registration and history retrieval.
type LocationService interface {
	// CreateLocation registers a new location. Locations are immutable
	// once created.
	CreateLocation(ctx context.Context, in CreateLocationInput) (*models.Location, error)

	// GetLocationHistory returns the location and the brief list of cases
	// filed against it, in creation order.
	// Returns ErrLocationNotFound when absent.
	GetLocationHistory(ctx context.Context, id int64) (*LocationHistory, error)
}

type locationService struct {
	store repository.Store
	log   *logger.Logger
}

// NewLocationService creates a new LocationService.
func NewLocationService(store repository.Store, log *logger.Logger) LocationService {
	return &locationService{store: store, log: log}
}

func (s *locationService) CreateLocation(ctx context.Context, in CreateLocationInput) (*models.Location, error) {
	loc, err := s.store.InsertLocation(ctx, repository.NewLocation{
		Address:    in.Address,
		Longitude:  in.Longitude,
		Latitude:   in.Latitude,
		Community:  in.Community,
		UnitNumber: in.UnitNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert location: %w", err)
	}

	s.log.Info("Location created", map[string]interface{}{
		"location_id": loc.ID,
		"community":   loc.Community,
	})

	return loc, nil
}

func (s *locationService) GetLocationHistory(ctx context.Context, id int64) (*LocationHistory, error) {
	loc, err := s.store.FindLocation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up location: %w", err)
	}
	if loc == nil {
		return nil, ErrLocationNotFound
	}

	cases, err := s.store.ListCasesForLocation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases for location: %w", err)
	}

	briefs := make([]models.CaseBrief, 0, len(cases))
	for i := range cases {
		briefs = append(briefs, cases[i].Brief())
	}

	return &LocationHistory{Location: *loc, Cases: briefs}, nil
}
