package repositories

import (
	"context"
	"errors"
	"fmt"

	"bulkpay/internal/models"

	"gorm.io/gorm"
)

var ErrBatchJobNotFound = errors.New("batch job not found")

// BatchJobRepository persists uploaded batches and their counters.
type BatchJobRepository interface {
	Create(ctx context.Context, job *models.BatchJob) error
	GetByID(ctx context.Context, id uint) (*models.BatchJob, error)
	Update(ctx context.Context, job *models.BatchJob) error
	// List returns jobs newest first.
	List(ctx context.Context, limit, offset int) ([]models.BatchJob, error)
	ListByStatus(ctx context.Context, status models.BatchStatus) ([]models.BatchJob, error)
}

type batchJobRepository struct {
	db *gorm.DB
}

func NewBatchJobRepository(db *gorm.DB) BatchJobRepository {
	return &batchJobRepository{db: db}
}

func (r *batchJobRepository) Create(ctx context.Context, job *models.BatchJob) error {
	if job.Status == "" {
		job.Status = models.BatchStatusUploaded
	}
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create batch job: %w", err)
	}
	return nil
}

func (r *batchJobRepository) GetByID(ctx context.Context, id uint) (*models.BatchJob, error) {
	var job models.BatchJob
	if err := r.db.WithContext(ctx).First(&job, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchJobNotFound
		}
		return nil, fmt.Errorf("failed to get batch job: %w", err)
	}
	return &job, nil
}

func (r *batchJobRepository) Update(ctx context.Context, job *models.BatchJob) error {
	if err := r.db.WithContext(ctx).Save(job).Error; err != nil {
		return fmt.Errorf("failed to update batch job: %w", err)
	}
	return nil
}

func (r *batchJobRepository) List(ctx context.Context, limit, offset int) ([]models.BatchJob, error) {
	var jobs []models.BatchJob
	err := r.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list batch jobs: %w", err)
	}
	return jobs, nil
}

func (r *batchJobRepository) ListByStatus(ctx context.Context, status models.BatchStatus) ([]models.BatchJob, error) {
	var jobs []models.BatchJob
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("id ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list batch jobs by status: %w", err)
	}
	return jobs, nil
}
