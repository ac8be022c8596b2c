// Package recorder persists the outcome of every attempted transfer.
package recorder

import (
	"context"

	"bulkpay/internal/models"
	"bulkpay/internal/repositories"
	"bulkpay/internal/services/amount"
	"bulkpay/internal/services/gateway"
	"bulkpay/internal/utils/logger"
)

type Recorder struct {
	repo repositories.TransferRecordRepository
}

func New(repo repositories.TransferRecordRepository) *Recorder {
	return &Recorder{repo: repo}
}

// Record writes one immutable transfer record. batchID is nil for
// single transfers.
func (r *Recorder) Record(ctx context.Context, req gateway.Request, out gateway.Outcome, batchID *uint) (*models.TransferRecord, error) {
	record := &models.TransferRecord{
		SenderMSISDN:      req.SenderMSISDN,
		ReceiverIDType:    req.ReceiverIDType,
		ReceiverIDValue:   req.ReceiverIDValue,
		BeneficiaryName:   req.BeneficiaryName,
		Amount:            amount.Normalize(req.Amount),
		Currency:          req.Currency,
		Note:              req.Note,
		TransferID:        out.TransferID,
		HomeTransactionID: out.HomeTransactionID,
		Status:            out.Status(),
		ResponseData:      out.Payload(),
		BatchJobID:        batchID,
	}
	if !out.Success {
		record.ErrorMessage = out.Error
	}

	if err := r.repo.Create(ctx, record); err != nil {
		logger.Error("failed to record transfer %s: %v", out.HomeTransactionID, err)
		return nil, err
	}

	logger.Debug("recorded transfer %s as %s", record.HomeTransactionID, record.Status)
	return record, nil
}
