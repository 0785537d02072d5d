package api

// MeetingRequest creates or updates a consultation meeting record.
type MeetingRequest struct {
	VillageID   string `json:"villageId" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	HeldBy      string `json:"heldBy" validate:"required"`
	Place       string `json:"place,omitempty"`
	HeldOn      string `json:"heldOn" validate:"required"` // RFC 3339
	Attendees   int    `json:"attendees" validate:"gte=0"`
}

// BuildingRequest creates or updates a community building record.
type BuildingRequest struct {
	VillageID string `json:"villageId" validate:"required"`
	Name      string `json:"name" validate:"required"`
	TypeID    string `json:"typeId" validate:"required"`
	Stage     int    `json:"currentStage" validate:"gte=0"`
}

// FeedbackRequest submits a villager complaint or suggestion.
type FeedbackRequest struct {
	VillageID    string `json:"villageId" validate:"required"`
	FamilyID     string `json:"familyId,omitempty"`
	Name         string `json:"name" validate:"required"`
	Mobile       string `json:"mobile,omitempty"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	FeedbackType string `json:"feedbackType" validate:"required,oneof=complaint suggestion"`
	Comments     string `json:"comments" validate:"required"`
}

// StatusUpdateRequest moves a verification or material update to a new
// status, appending to its status history.
type StatusUpdateRequest struct {
	Status  string `json:"status" validate:"required,oneof=pending verified rejected"`
	Remarks string `json:"remarks,omitempty"`
}

// MaterialUpdateRequest records construction material movement.
type MaterialUpdateRequest struct {
	VillageID  string  `json:"villageId" validate:"required"`
	MaterialID string  `json:"materialId" validate:"required"`
	Unit       string  `json:"unit" validate:"required"`
	Quantity   float64 `json:"quantity" validate:"gt=0"`
}

// StageCount is one bucket of a stage histogram.
type StageCount struct {
	Stage int `json:"stage"`
	Count int `json:"count"`
}

// OptionAnalytics aggregates relocation-option takeup for one village.
type OptionAnalytics struct {
	VillageID string `json:"villageId"`
	Option1   int    `json:"option1"`
	Option2   int    `json:"option2"`
	Total     int    `json:"total"`
}

// BuildingAnalytics is the per-stage building histogram for one village.
type BuildingAnalytics struct {
	VillageID string       `json:"villageId"`
	Stages    []StageCount `json:"stages"`
}
