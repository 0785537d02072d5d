package storage

import (
	"context"

	"github.com/maati-dev/maati/internal/models"
)

// BeneficiaryQuery filters and paginates the beneficiary list.
// Zero values mean "no filter"; Limit 0 falls back to the handler default.
type BeneficiaryQuery struct {
	MukhiyaName string
	Page        int
	Limit       int
	OptionID    int
}

// FamilyStorage defines the interface for beneficiary families.
type FamilyStorage interface {
	// CreateFamily inserts a family record.
	CreateFamily(ctx context.Context, family *models.Family) error

	// AddMember adds a person to a family.
	AddMember(ctx context.Context, member *models.Member) error

	// AddHousingPhoto records option-1 construction progress.
	AddHousingPhoto(ctx context.Context, photo *models.HousingPhoto) error

	// AddFundTransaction records an option-2 disbursement.
	AddFundTransaction(ctx context.Context, tx *models.FundTransaction) error

	// ListBeneficiaries returns one page of family cards plus the total
	// matching count.
	ListBeneficiaries(ctx context.Context, villageID string, q BeneficiaryQuery) ([]models.BeneficiaryCard, int, error)

	// GetFamilyDetail returns the full family view.
	// Returns ErrFamilyNotFound if no record matches.
	GetFamilyDetail(ctx context.Context, familyID string) (*models.FamilyDetail, error)
}
