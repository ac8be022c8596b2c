package transfer

import (
	"context"

	"bulkpay/internal/models"
	"bulkpay/internal/services/gateway"
)

// AccountLookup resolves the sender of a transfer.
type AccountLookup interface {
	GetByMSISDN(ctx context.Context, msisdn string) (*models.Account, error)
}

// Recorder persists the outcome of a transfer.
type Recorder interface {
	Record(ctx context.Context, req gateway.Request, out gateway.Outcome, batchID *uint) (*models.TransferRecord, error)
}

// Service handles single P2P transfers outside any batch.
type Service interface {
	Transfer(ctx context.Context, req Request) (*Result, error)
}
