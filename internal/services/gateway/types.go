package gateway

import (
	"bulkpay/internal/models"
)

const (
	amountTypeSend      = "SEND"
	transactionTransfer = "TRANSFER"
	transfersPath       = "/transfers"
)

// Request describes one outbound P2P transfer.
type Request struct {
	SenderMSISDN    string
	ReceiverIDType  string
	ReceiverIDValue string
	Amount          string
	Currency        string
	Note            string
	// BeneficiaryName is kept on the transfer record, not sent to the switch.
	BeneficiaryName string
	// HomeTransactionID is generated when empty.
	HomeTransactionID string
}

// Outcome is the classified result of one Execute call. It is always
// populated; transport failures are reported through Success and Error.
type Outcome struct {
	Success           bool
	TransferID        *string
	CurrentState      string
	HomeTransactionID string
	Data              models.JSON
	Error             string
}

// Status maps the outcome to the stored transfer status.
func (o Outcome) Status() models.TransferStatus {
	if o.Success {
		return models.TransferStatusCompleted
	}
	return models.TransferStatusFailed
}

// Payload is the diagnostic blob stored with the transfer record: the
// switch response on success, otherwise a summary of the failure.
func (o Outcome) Payload() models.JSON {
	if o.Success && len(o.Data) > 0 {
		return o.Data
	}
	return models.JSON{
		"success":             o.Success,
		"error":               o.Error,
		"home_transaction_id": o.HomeTransactionID,
	}
}

type party struct {
	DisplayName string `json:"displayName,omitempty"`
	IDType      string `json:"idType"`
	IDValue     string `json:"idValue"`
}

type transferPayload struct {
	From              party  `json:"from"`
	To                party  `json:"to"`
	AmountType        string `json:"amountType"`
	Currency          string `json:"currency"`
	Amount            string `json:"amount"`
	TransactionType   string `json:"transactionType"`
	Note              string `json:"note"`
	HomeTransactionID string `json:"homeTransactionId"`
}

type transferResponse struct {
	TransferID   *string `json:"transferId"`
	CurrentState string  `json:"currentState"`
}
