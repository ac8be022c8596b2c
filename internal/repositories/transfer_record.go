package repositories

import (
	"context"
	"fmt"

	"bulkpay/internal/models"

	"gorm.io/gorm"
)

// TransferRecordRepository stores transfer attempts. Records are
// append-only, so there is no update or delete.
type TransferRecordRepository interface {
	Create(ctx context.Context, record *models.TransferRecord) error
	ListByBatch(ctx context.Context, batchID uint) ([]models.TransferRecord, error)
}

type transferRecordRepository struct {
	db *gorm.DB
}

func NewTransferRecordRepository(db *gorm.DB) TransferRecordRepository {
	return &transferRecordRepository{db: db}
}

func (r *transferRecordRepository) Create(ctx context.Context, record *models.TransferRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create transfer record: %w", err)
	}
	return nil
}

func (r *transferRecordRepository) ListByBatch(ctx context.Context, batchID uint) ([]models.TransferRecord, error) {
	var records []models.TransferRecord
	err := r.db.WithContext(ctx).
		Where("batch_job_id = ?", batchID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transfer records: %w", err)
	}
	return records, nil
}
