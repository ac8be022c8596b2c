package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// TransferStatus is the stored result of one transfer attempt.
type TransferStatus string

const (
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusFailed    TransferStatus = "FAILED"
)

// ErrImmutableRecord is returned when code tries to update a stored transfer.
var ErrImmutableRecord = errors.New("transfer records are immutable")

// TransferRecord is the durable trace of one attempted transfer.
type TransferRecord struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	SenderMSISDN      string         `gorm:"size:15;not null;index" json:"sender_msisdn"`
	ReceiverIDType    string         `gorm:"size:50;not null" json:"receiver_id_type"`
	ReceiverIDValue   string         `gorm:"size:100;not null" json:"receiver_id_value"`
	BeneficiaryName   string         `gorm:"not null;default:''" json:"beneficiary_name"`
	Amount            string         `gorm:"size:64;not null" json:"amount"` // as sent to the switch
	Currency          string         `gorm:"size:3;not null" json:"currency"`
	Note              string         `gorm:"type:text" json:"note"`
	TransferID        *string        `gorm:"index" json:"transfer_id"`
	HomeTransactionID string         `gorm:"size:64;not null;uniqueIndex" json:"home_transaction_id"`
	Status            TransferStatus `gorm:"type:varchar(16);not null" json:"status"`
	ErrorMessage      string         `gorm:"type:text" json:"error_message,omitempty"`
	ResponseData      JSON           `gorm:"type:jsonb" json:"response_data"`
	BatchJobID        *uint          `gorm:"index" json:"batch_job_id,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

// BeforeUpdate keeps stored transfers append-only.
func (r *TransferRecord) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutableRecord
}
