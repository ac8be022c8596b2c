package transfer

import (
	"context"
	"errors"
	"fmt"

	"bulkpay/internal/models"
	"bulkpay/internal/repositories"
	"bulkpay/internal/services/gateway"
	"bulkpay/internal/utils/logger"
	"bulkpay/internal/utils/validation"

	"github.com/go-playground/validator/v10"
)

func init() {
	validation.RegisterStructValidation(distinctParties, Request{})
}

// distinctParties rejects MSISDN transfers to the sender itself.
func distinctParties(sl validator.StructLevel) {
	req := sl.Current().Interface().(Request)
	if req.ReceiverIDType == models.IDTypeMSISDN && req.ReceiverIDValue == req.SenderMSISDN {
		sl.ReportError(req.ReceiverIDValue, "receiver_id_value", "ReceiverIDValue", "distinct_party", "")
	}
}

// service implements the transfer Service interface.
type service struct {
	accounts AccountLookup
	gateway  gateway.Gateway
	recorder Recorder
}

// NewService creates a new transfer service instance.
func NewService(accounts AccountLookup, gw gateway.Gateway, rec Recorder) Service {
	return &service{
		accounts: accounts,
		gateway:  gw,
		recorder: rec,
	}
}

// Transfer validates the request, resolves the sender and sends one
// transfer through the switch. Every call that reaches the switch is
// recorded, whatever the outcome.
func (s *service) Transfer(ctx context.Context, req Request) (*Result, error) {
	req = req.withDefaults()

	if err := validation.Struct(req); err != nil {
		var fields validation.Errors
		if errors.As(err, &fields) {
			return nil, &ValidationError{Fields: fields}
		}
		return nil, err
	}

	if _, err := s.accounts.GetByMSISDN(ctx, req.SenderMSISDN); err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrSenderNotFound
		}
		return nil, fmt.Errorf("failed to resolve sender: %w", err)
	}

	gwReq := req.gatewayRequest()
	out := s.gateway.Execute(ctx, gwReq)

	record, err := s.recorder.Record(ctx, gwReq, out, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to record transfer %s: %w", out.HomeTransactionID, err)
	}

	result := &Result{Record: record, Outcome: out}
	if !out.Success {
		logger.Warning("P2P transfer %s from %s failed: %s", out.HomeTransactionID, req.SenderMSISDN, out.Error)
		return result, fmt.Errorf("%w: %s", ErrTransferFailed, out.Error)
	}

	logger.Info("P2P transfer %s from %s completed", out.HomeTransactionID, req.SenderMSISDN)
	return result, nil
}
