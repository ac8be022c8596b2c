package models

import (
	"fmt"
	"time"
)

// BatchStatus is the lifecycle state of an uploaded batch.
type BatchStatus string

const (
	BatchStatusUploaded            BatchStatus = "UPLOADED"
	BatchStatusProcessing          BatchStatus = "PROCESSING"
	BatchStatusCompleted           BatchStatus = "COMPLETED"
	BatchStatusCompletedWithErrors BatchStatus = "COMPLETED_WITH_ERRORS"
)

// IsTerminal reports whether no further transition is allowed.
func (s BatchStatus) IsTerminal() bool {
	return s == BatchStatusCompleted || s == BatchStatusCompletedWithErrors
}

// BatchJob tracks one uploaded transfer file and its aggregate result.
type BatchJob struct {
	ID             uint        `gorm:"primarykey" json:"id"`
	SenderMSISDN   string      `gorm:"size:15;not null;index" json:"sender_msisdn"`
	FileName       string      `gorm:"not null;default:''" json:"file_name"`
	FilePath       string      `gorm:"not null" json:"-"`
	Status         BatchStatus `gorm:"type:varchar(32);not null;default:'UPLOADED';index" json:"status"`
	TotalTransfers int         `gorm:"not null;default:0" json:"total_transfers"`
	SucceededCount int         `gorm:"not null;default:0" json:"succeeded_count"`
	FailedCount    int         `gorm:"not null;default:0" json:"failed_count"`
	Message        string      `gorm:"type:text;not null;default:''" json:"message"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`

	Transfers []TransferRecord `gorm:"foreignKey:BatchJobID" json:"-"`
}

// Finish stores the final counters and derives the terminal status.
func (j *BatchJob) Finish(total, succeeded, failed int) {
	j.TotalTransfers = total
	j.SucceededCount = succeeded
	j.FailedCount = failed
	if failed == 0 {
		j.Status = BatchStatusCompleted
	} else {
		j.Status = BatchStatusCompletedWithErrors
	}
	j.Message = fmt.Sprintf("Finished: %d succeeded, %d failed out of %d transfers.", succeeded, failed, total)
}
