package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maati-dev/maati/internal/models"
	"github.com/maati-dev/maati/internal/server/storage"
)

// CreateFamily inserts a family record.
func (s *Storage) CreateFamily(ctx context.Context, family *models.Family) error {
	query := `
		INSERT INTO families (id, village_id, mukhiya_id, mukhiya_name, mukhiya_photo, relocation_option, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		family.FamilyID,
		family.VillageID,
		family.MukhiyaID,
		family.MukhiyaName,
		family.MukhiyaPhoto,
		family.RelocationOption,
		family.CreatedAt,
		family.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert family: %w", err)
	}

	return nil
}

// AddMember adds a person to a family.
func (s *Storage) AddMember(ctx context.Context, member *models.Member) error {
	query := `
		INSERT INTO members (family_id, name, relation, gender, age)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		member.FamilyID,
		member.Name,
		member.Relation,
		member.Gender,
		member.Age,
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}

	return nil
}

// AddHousingPhoto records option-1 construction progress.
func (s *Storage) AddHousingPhoto(ctx context.Context, photo *models.HousingPhoto) error {
	query := `
		INSERT INTO housing_photos (family_id, url, caption, uploaded_on)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		photo.FamilyID,
		photo.URL,
		photo.Caption,
		photo.UploadedOn,
	)
	if err != nil {
		return fmt.Errorf("failed to insert housing photo: %w", err)
	}

	return nil
}

// AddFundTransaction records an option-2 disbursement.
func (s *Storage) AddFundTransaction(ctx context.Context, tx *models.FundTransaction) error {
	query := `
		INSERT INTO fund_transactions (family_id, amount, note, transaction_date)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		tx.FamilyID,
		tx.Amount,
		tx.Note,
		tx.TransactionDate,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fund transaction: %w", err)
	}

	return nil
}

// ListBeneficiaries returns one page of family cards plus the total count.
func (s *Storage) ListBeneficiaries(ctx context.Context, villageID string, q storage.BeneficiaryQuery) ([]models.BeneficiaryCard, int, error) {
	where := `WHERE village_id = ?`
	args := []any{villageID}
	if q.OptionID > 0 {
		where += ` AND relocation_option = ?`
		args = append(args, q.OptionID)
	}
	if q.MukhiyaName != "" {
		where += ` AND mukhiya_name LIKE ?`
		args = append(args, "%"+q.MukhiyaName+"%")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM families ` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count beneficiaries: %w", err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	listQuery := `SELECT id, mukhiya_name, mukhiya_photo FROM families ` + where +
		` ORDER BY mukhiya_name LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query beneficiaries: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var cards []models.BeneficiaryCard
	for rows.Next() {
		var card models.BeneficiaryCard
		if err := rows.Scan(&card.FamilyID, &card.MukhiyaName, &card.MukhiyaPhoto); err != nil {
			return nil, 0, fmt.Errorf("failed to scan beneficiary card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return cards, total, nil
}

// GetFamilyDetail returns the full family view.
func (s *Storage) GetFamilyDetail(ctx context.Context, familyID string) (*models.FamilyDetail, error) {
	family := models.Family{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, village_id, mukhiya_id, mukhiya_name, mukhiya_photo, relocation_option, created_at, updated_at
		FROM families
		WHERE id = ?
	`, familyID).Scan(
		&family.FamilyID,
		&family.VillageID,
		&family.MukhiyaID,
		&family.MukhiyaName,
		&family.MukhiyaPhoto,
		&family.RelocationOption,
		&family.CreatedAt,
		&family.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrFamilyNotFound
		}
		return nil, fmt.Errorf("failed to get family: %w", err)
	}

	detail := &models.FamilyDetail{
		Family:          family,
		Members:         []models.Member{},
		Option1Housing:  []models.HousingPhoto{},
		Option2FundFlow: []models.FundTransaction{},
	}

	if err := s.loadMembers(ctx, familyID, detail); err != nil {
		return nil, err
	}

	switch family.RelocationOption {
	case models.OptionHousing:
		if err := s.loadHousingPhotos(ctx, familyID, detail); err != nil {
			return nil, err
		}
	case models.OptionPackage:
		if err := s.loadFundTransactions(ctx, familyID, detail); err != nil {
			return nil, err
		}
	}

	return detail, nil
}

func (s *Storage) loadMembers(ctx context.Context, familyID string, detail *models.FamilyDetail) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT family_id, name, relation, gender, age
		FROM members
		WHERE family_id = ?
		ORDER BY age DESC
	`, familyID)
	if err != nil {
		return fmt.Errorf("failed to query members: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var member models.Member
		if err := rows.Scan(&member.FamilyID, &member.Name, &member.Relation, &member.Gender, &member.Age); err != nil {
			return fmt.Errorf("failed to scan member: %w", err)
		}
		detail.Members = append(detail.Members, member)
	}
	return rows.Err()
}

func (s *Storage) loadHousingPhotos(ctx context.Context, familyID string, detail *models.FamilyDetail) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT family_id, url, caption, uploaded_on
		FROM housing_photos
		WHERE family_id = ?
		ORDER BY uploaded_on
	`, familyID)
	if err != nil {
		return fmt.Errorf("failed to query housing photos: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var photo models.HousingPhoto
		if err := rows.Scan(&photo.FamilyID, &photo.URL, &photo.Caption, &photo.UploadedOn); err != nil {
			return fmt.Errorf("failed to scan housing photo: %w", err)
		}
		detail.Option1Housing = append(detail.Option1Housing, photo)
	}
	return rows.Err()
}

func (s *Storage) loadFundTransactions(ctx context.Context, familyID string, detail *models.FamilyDetail) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT family_id, amount, note, transaction_date
		FROM fund_transactions
		WHERE family_id = ?
		ORDER BY transaction_date
	`, familyID)
	if err != nil {
		return fmt.Errorf("failed to query fund transactions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var tx models.FundTransaction
		if err := rows.Scan(&tx.FamilyID, &tx.Amount, &tx.Note, &tx.TransactionDate); err != nil {
			return fmt.Errorf("failed to scan fund transaction: %w", err)
		}
		detail.Option2FundFlow = append(detail.Option2FundFlow, tx)
	}
	return rows.Err()
}
