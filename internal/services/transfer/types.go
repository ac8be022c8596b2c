package transfer

import (
	"errors"

	"bulkpay/internal/models"
	"bulkpay/internal/services/gateway"
	"bulkpay/internal/utils/validation"
)

const (
	DefaultCurrency = "XOF"
	DefaultNote     = "P2P MSISDN transfer"
)

var (
	ErrSenderNotFound = errors.New("sender account not found")
	ErrTransferFailed = errors.New("transfer failed")
)

// ValidationError lists the rejected fields of a Request.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return "invalid transfer request: " + e.Fields.Error()
}

type Request struct {
	SenderMSISDN    string `json:"sender_msisdn" validate:"required,msisdn"`
	ReceiverIDType  string `json:"receiver_id_type" validate:"required,max=50"`
	ReceiverIDValue string `json:"receiver_id_value" validate:"required,max=100"`
	Amount          string `json:"amount" validate:"positive_amount"`
	Currency        string `json:"currency" validate:"currency"`
	Note            string `json:"note" validate:"max=500"`
}

func (r Request) withDefaults() Request {
	if r.ReceiverIDType == "" {
		r.ReceiverIDType = models.IDTypeMSISDN
	}
	if r.Currency == "" {
		r.Currency = DefaultCurrency
	}
	if r.Note == "" {
		r.Note = DefaultNote
	}
	return r
}

func (r Request) gatewayRequest() gateway.Request {
	return gateway.Request{
		SenderMSISDN:    r.SenderMSISDN,
		ReceiverIDType:  r.ReceiverIDType,
		ReceiverIDValue: r.ReceiverIDValue,
		Amount:          r.Amount,
		Currency:        r.Currency,
		Note:            r.Note,
	}
}

// Result carries the stored record and the switch outcome. It is also
// returned alongside ErrTransferFailed.
type Result struct {
	Record  *models.TransferRecord
	Outcome gateway.Outcome
}
