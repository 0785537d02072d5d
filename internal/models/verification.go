package models

import "time"

// Verification statuses shared by facility/field verifications and
// material updates.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusRejected = "rejected"
)

// StatusChange is one entry of a record's status history sub-resource.
type StatusChange struct {
	ChangedAt time.Time `json:"changedAt"`
	Status    string    `json:"status"`
	ChangedBy string    `json:"changedBy"`
	Remarks   string    `json:"remarks,omitempty"`
}

// FacilityVerification is a field check of a facility at the resettlement
// site (water supply, electrification, road access...).
type FacilityVerification struct {
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	VerificationID string    `json:"verificationId"`
	VillageID      string    `json:"villageId"`
	FacilityID     string    `json:"facilityId"`
	Status         string    `json:"status"`
	VerifiedBy     string    `json:"verifiedBy"`
	Remarks        string    `json:"remarks,omitempty"`
}

// MaterialUpdate records construction material delivered or consumed.
type MaterialUpdate struct {
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	UpdateID   string    `json:"updateId"`
	VillageID  string    `json:"villageId"`
	MaterialID string    `json:"materialId"`
	Unit       string    `json:"unit"`
	Status     string    `json:"status"`
	UpdatedBy  string    `json:"updatedBy"`
	Quantity   float64   `json:"quantity"`
}

// FieldVerification is an on-site check of an allotted plot.
type FieldVerification struct {
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	VerificationID string    `json:"verificationId"`
	VillageID      string    `json:"villageId"`
	PlotID         string    `json:"plotId"`
	Status         string    `json:"status"`
	VerifiedBy     string    `json:"verifiedBy"`
	Remarks        string    `json:"remarks,omitempty"`
}

// LogEntry is one activity-log record.
type LogEntry struct {
	UpdateTime time.Time `json:"updateTime"`
	LogID      string    `json:"logId"`
	Type       string    `json:"type"`
	Action     string    `json:"action"`
	VillageID  string    `json:"villageId,omitempty"`
	UserID     string    `json:"userId,omitempty"`
	RelatedID  string    `json:"relatedId,omitempty"`
	Message    string    `json:"message,omitempty"`
}
