package models

import "time"

// Meeting is a village consultation meeting log entry.
type Meeting struct {
	HeldOn      time.Time `json:"heldOn"`
	CreatedAt   time.Time `json:"createdAt"`
	MeetingID   string    `json:"meetingId"`
	VillageID   string    `json:"villageId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	HeldBy      string    `json:"heldBy"`
	Place       string    `json:"place,omitempty"`
	Attendees   int       `json:"attendees"`
}

// Building is a community building (school, anganwadi, hand pump...) under
// construction at the resettlement site.
type Building struct {
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	BuildingID string    `json:"buildingId"`
	VillageID  string    `json:"villageId"`
	Name       string    `json:"name"`
	TypeID     string    `json:"typeId"`
	Stage      int       `json:"currentStage"`
	Deleted    bool      `json:"-"`
}

// Feedback is a complaint or suggestion submitted by a villager.
type Feedback struct {
	CreatedAt    time.Time `json:"createdAt"`
	FeedbackID   string    `json:"feedbackId"`
	VillageID    string    `json:"villageId"`
	FamilyID     string    `json:"familyId,omitempty"`
	Name         string    `json:"name"`
	Mobile       string    `json:"mobile,omitempty"`
	Email        string    `json:"email,omitempty"`
	FeedbackType string    `json:"feedbackType"` // "complaint" or "suggestion"
	Comments     string    `json:"comments"`
}
