package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"contracthub/model"
	"contracthub/pkg/apperr"
	"contracthub/pkg/logger"
)

// ContractService implements CRUD, filtered search and the approval
// transition for contract records.
type ContractService struct {
	db *gorm.DB
}

func NewContractService(db *gorm.DB) *ContractService {
	return &ContractService{db: db}
}

// SearchFilter holds the optional, AND-combined search criteria. Nil pointer
// fields mean "no constraint"; open-ended amount and date ranges are allowed.
type SearchFilter struct {
	Title     string
	Status    string
	MinAmount *float64
	MaxAmount *float64
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

// UpdateFields carries a partial update; only non-nil fields are applied.
type UpdateFields struct {
	ContractNo *string
	Title      *string
	PartyA     *string
	PartyB     *string
	Amount     *float64
	Status     *string
}

// Create inserts a new contract, defaulting status to DRAFT. The contractNo
// pre-check is racy; the unique index is authoritative.
func (s *ContractService) Create(ctx context.Context, contract *model.Contract) (*model.Contract, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Contract{}).Where("contract_no = ?", contract.ContractNo).Count(&count).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if count > 0 {
		return nil, apperr.Conflict(fmt.Sprintf("contract number %s already exists", contract.ContractNo))
	}

	if contract.Status == "" {
		contract.Status = model.StatusDraft
	}

	if err := s.db.WithContext(ctx).Create(contract).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict(fmt.Sprintf("contract number %s already exists", contract.ContractNo))
		}
		return nil, apperr.Internal(err)
	}
	return contract, nil
}

// Search returns the page of contracts matching the filter plus the total
// match count across all pages. Attachments are eagerly loaded.
func (s *ContractService) Search(ctx context.Context, f SearchFilter) ([]model.Contract, int64, error) {
	if f.Page < 1 {
		return nil, 0, apperr.Validation("page must be at least 1")
	}
	if f.Limit < 1 {
		return nil, 0, apperr.Validation("limit must be at least 1")
	}
	if f.MinAmount != nil && f.MaxAmount != nil && *f.MinAmount > *f.MaxAmount {
		return nil, 0, apperr.Validation("minAmount must not exceed maxAmount")
	}
	if f.Status != "" && !model.ValidStatus(f.Status) {
		return nil, 0, apperr.Validation("status must be one of DRAFT, PENDING, APPROVED, REJECTED, ARCHIVED")
	}

	q := s.db.WithContext(ctx).Model(&model.Contract{})
	if f.Title != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(f.Title)+"%")
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	if f.StartDate != nil {
		q = q.Where("created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		// EndDate is a calendar day; include the whole day
		q = q.Where("created_at < ?", f.EndDate.Add(24*time.Hour))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}

	var contracts []model.Contract
	offset := (f.Page - 1) * f.Limit
	err := q.Preload("Attachments").
		Order("id").
		Offset(offset).
		Limit(f.Limit).
		Find(&contracts).Error
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}

	logger.Debug(ctx, "contract search executed", "total", total, "page", f.Page, "limit", f.Limit)
	return contracts, total, nil
}

// Get fetches one contract with its attachments.
func (s *ContractService) Get(ctx context.Context, id uint) (*model.Contract, error) {
	var contract model.Contract
	err := s.db.WithContext(ctx).Preload("Attachments").First(&contract, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("contract not found")
		}
		return nil, apperr.Internal(err)
	}
	if contract.Attachments == nil {
		contract.Attachments = []model.Attachment{}
	}
	return &contract, nil
}

// Update applies a partial merge and returns the re-fetched record so
// server-computed fields reflect the store's own values. When contractNo
// changes, uniqueness is re-checked against all other rows.
func (s *ContractService) Update(ctx context.Context, id uint, fields UpdateFields) (*model.Contract, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if fields.ContractNo != nil {
		var count int64
		err := s.db.WithContext(ctx).Model(&model.Contract{}).
			Where("contract_no = ? AND id != ?", *fields.ContractNo, id).
			Count(&count).Error
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if count > 0 {
			return nil, apperr.Conflict(fmt.Sprintf("contract number %s already exists", *fields.ContractNo))
		}
		updates["contract_no"] = *fields.ContractNo
	}
	if fields.Title != nil {
		updates["title"] = *fields.Title
	}
	if fields.PartyA != nil {
		updates["party_a"] = *fields.PartyA
	}
	if fields.PartyB != nil {
		updates["party_b"] = *fields.PartyB
	}
	if fields.Amount != nil {
		updates["amount"] = *fields.Amount
	}
	if fields.Status != nil {
		updates["status"] = *fields.Status
	}

	if len(updates) > 0 {
		err := s.db.WithContext(ctx).Model(&model.Contract{}).Where("id = ?", id).Updates(updates).Error
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperr.Conflict("contract number already exists")
			}
			return nil, apperr.Internal(err)
		}
	}

	return s.Get(ctx, id)
}

// Delete removes a contract and its attachment rows in one transaction.
// Deleting an absent id succeeds; the operation is idempotent.
func (s *ContractService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contract_id = ?", id).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Contract{}, id).Error
	})
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Approve sets the contract's lifecycle status. The status must be a
// recognized value.
func (s *ContractService) Approve(ctx context.Context, id uint, status string) (*model.Contract, error) {
	if !model.ValidStatus(status) {
		return nil, apperr.Validation("status must be one of DRAFT, PENDING, APPROVED, REJECTED, ARCHIVED")
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Model(&model.Contract{}).Where("id = ?", id).Update("status", status).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}

	logger.Info(ctx, "contract status changed", "contract_id", id, "status", status)
	return s.Get(ctx, id)
}
