package models

import "time"

// Village is a relocation-program village record.
type Village struct {
	UpdatedAt        time.Time `json:"lastUpdatedOn"`
	VillageID        string    `json:"villageId"`
	Name             string    `json:"name"`
	Photo            string    `json:"image,omitempty"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	AreaOfRelocation float64   `json:"areaOfRelocation"`
	AreaDiverted     float64   `json:"areaDiverted"`
	CurrentStage     int       `json:"currentStage"`
	TotalStages      int       `json:"totalStages"`
}

// VillageCard is the dashboard list projection of a village.
type VillageCard struct {
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	VillageID     string    `json:"villageId"`
	Name          string    `json:"name"`
	CurrStage     int       `json:"currStage"`
}

// Card returns the list projection of v.
func (v *Village) Card() VillageCard {
	return VillageCard{
		VillageID:     v.VillageID,
		Name:          v.Name,
		CurrStage:     v.CurrentStage,
		LastUpdatedAt: v.UpdatedAt,
	}
}

// FamilyCount is the per-village relocation-option aggregate for dashboards.
type FamilyCount struct {
	VillageID       string `json:"villageId"`
	TotalFamilies   int    `json:"totalFamilies"`
	FamiliesOption1 int    `json:"familiesOption1"`
	FamiliesOption2 int    `json:"familiesOption2"`
}
