package models

import (
	"time"
)

// IDTypeMSISDN is the identifier type of every local account.
const IDTypeMSISDN = "MSISDN"

// Account is a locally known sender, keyed by its phone number.
type Account struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	MSISDN      string    `gorm:"uniqueIndex;size:15;not null" json:"msisdn"`
	DisplayName string    `gorm:"not null;default:''" json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
