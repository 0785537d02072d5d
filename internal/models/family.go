package models

import "time"

// Relocation option codes. Option 1 is housing in the resettlement site,
// option 2 is a cash compensation package.
const (
	OptionHousing = 1
	OptionPackage = 2
)

// Family is a beneficiary household headed by a mukhiya.
type Family struct {
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	FamilyID         string    `json:"familyId"`
	VillageID        string    `json:"villageId"`
	MukhiyaID        string    `json:"mukhiyaId"`
	MukhiyaName      string    `json:"mukhiyaName"`
	MukhiyaPhoto     string    `json:"mukhiyaPhoto,omitempty"`
	RelocationOption int       `json:"relocationOption"`
}

// Member is a single person within a family.
type Member struct {
	FamilyID string `json:"familyId"`
	Name     string `json:"name"`
	Relation string `json:"relation"`
	Gender   string `json:"gender,omitempty"`
	Age      int    `json:"age"`
}

// BeneficiaryCard is the paginated family-list projection.
type BeneficiaryCard struct {
	FamilyID     string `json:"familyId"`
	MukhiyaName  string `json:"mukhiyaName"`
	MukhiyaPhoto string `json:"mukhiyaPhoto,omitempty"`
}

// HousingPhoto documents option-1 construction progress.
type HousingPhoto struct {
	UploadedOn time.Time `json:"uploadedOn"`
	FamilyID   string    `json:"familyId"`
	URL        string    `json:"url"`
	Caption    string    `json:"caption,omitempty"`
}

// FundTransaction is a single option-2 compensation disbursement.
type FundTransaction struct {
	TransactionDate time.Time `json:"transactionDate"`
	FamilyID        string    `json:"familyId"`
	Note            string    `json:"note,omitempty"`
	Amount          float64   `json:"amount"`
}

// FamilyDetail is the full family view: household, members and whichever
// option progress records exist.
type FamilyDetail struct {
	Family          Family            `json:"family"`
	Members         []Member          `json:"members"`
	Option1Housing  []HousingPhoto    `json:"option1Housing"`
	Option2FundFlow []FundTransaction `json:"option2FundFlow"`
}
