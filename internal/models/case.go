package models

import (
	"time"
)

// DefaultStatus is assigned to a case at creation when no status is given.
const DefaultStatus = "进行中"

// Case is one tracked illegal-construction enforcement matter.
// All nullable fields use pointers to distinguish between zero values and NULL.
// The status field is the only mutable field after creation; it is overwritten
// by the latest progress event from either perspective.
type Case struct {
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	StartDate           *time.Time `json:"start_date,omitempty"`
	DiscoveryDate       *time.Time `json:"discovery_date,omitempty"`
	ViolationReason     *string    `json:"violation_reason,omitempty"`
	CaseNumber          string     `json:"case_number"`
	Status              string     `json:"status"`
	ConstructionUnit    string     `json:"construction_unit"`
	BuildingType        string     `json:"building_type"`
	PermitStatus        string     `json:"permit_status"`
	LandType            string     `json:"land_type"`
	EngineeringCategory string     `json:"engineering_category"`
	CaseSource          string     `json:"case_source"`
	LandArea            float64    `json:"land_area"`
	BuildingArea        float64    `json:"building_area"`
	ViolationArea       float64    `json:"violation_area"`
	ID                  int64      `json:"id"`
	LocationID          int64      `json:"location_id"`
}

// CaseBrief is the trimmed case shape returned in location history, where the
// full detail (events, archives) is deliberately excluded.
type CaseBrief struct {
	CreatedAt        time.Time `json:"created_at"`
	CaseNumber       string    `json:"case_number"`
	Status           string    `json:"status"`
	ConstructionUnit string    `json:"construction_unit"`
	ID               int64     `json:"id"`
}

// Brief returns the case reduced to its brief representation.
func (c *Case) Brief() CaseBrief {
	return CaseBrief{
		ID:               c.ID,
		CaseNumber:       c.CaseNumber,
		Status:           c.Status,
		ConstructionUnit: c.ConstructionUnit,
		CreatedAt:        c.CreatedAt,
	}
}
