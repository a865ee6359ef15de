package repositories

import (
	"fleet-tracker/internal/repositories/base"

	"gorm.io/gorm"
)

// StateDistricts groups the district names belonging to one state.
type StateDistricts struct {
	StateName string   `json:"state_name"`
	Districts []string `json:"districts"`
}

// ReferenceRepository reads the pre-populated states/districts lookup.
// It is consumed by the HTTP layer only, never by the simulation pipeline.
type ReferenceRepository interface {
	StatesAndDistricts() ([]StateDistricts, error)
}

type referenceRepository struct {
	db *gorm.DB
}

// NewReferenceRepository creates a repository over the states database.
func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) StatesAndDistricts() ([]StateDistricts, error) {
	var rows []struct {
		StateName    string
		DistrictName *string
	}
	err := r.db.Raw(
		`SELECT s.state_name AS state_name, d.district_name AS district_name
		 FROM states s
		 LEFT JOIN districts d ON d.state_id = s.id
		 ORDER BY s.state_name, d.district_name`,
	).Scan(&rows).Error
	if err != nil {
		return nil, base.WrapDBError("list", "states", err)
	}

	var result []StateDistricts
	for _, row := range rows {
		if len(result) == 0 || result[len(result)-1].StateName != row.StateName {
			result = append(result, StateDistricts{StateName: row.StateName, Districts: []string{}})
		}
		if row.DistrictName != nil {
			last := &result[len(result)-1]
			last.Districts = append(last.Districts, *row.DistrictName)
		}
	}
	return result, nil
}
