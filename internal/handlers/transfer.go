package handlers

import (
	"errors"

	"bulkpay/internal/services/transfer"
	"bulkpay/internal/utils/logger"
	"bulkpay/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// TransferHandler exposes P2P transfer endpoints.
type TransferHandler struct {
	service transfer.Service
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(s transfer.Service) *TransferHandler { return &TransferHandler{service: s} }

type transferPayload struct {
	SenderMSISDN    string          `json:"sender_msisdn"`
	ReceiverIDType  string          `json:"receiver_id_type"`
	ReceiverIDValue string          `json:"receiver_id_value"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Note            string          `json:"note"`
}

// Info handles GET /transfers/p2p with a sample request body.
func (h *TransferHandler) Info(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "P2P transfer endpoint is up. POST a JSON body like the example to send a transfer.",
		"example": fiber.Map{
			"sender_msisdn":     "1234567890",
			"receiver_id_type":  "MSISDN",
			"receiver_id_value": "0987654321",
			"amount":            "100.00",
			"currency":          transfer.DefaultCurrency,
			"note":              transfer.DefaultNote,
		},
	})
}

// Transfer handles POST /transfers/p2p requests.
func (h *TransferHandler) Transfer(c *fiber.Ctx) error {
	var req transferPayload
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request")
	}

	result, err := h.service.Transfer(c.Context(), transfer.Request{
		SenderMSISDN:    req.SenderMSISDN,
		ReceiverIDType:  req.ReceiverIDType,
		ReceiverIDValue: req.ReceiverIDValue,
		Amount:          req.Amount.String(),
		Currency:        req.Currency,
		Note:            req.Note,
	})

	var verr *transfer.ValidationError
	switch {
	case err == nil:
		return response.Created(c, "transfer completed", result.Record)
	case errors.As(err, &verr):
		return response.ValidationError(c, "invalid transfer request", verr.Fields)
	case errors.Is(err, transfer.ErrSenderNotFound):
		return response.NotFound(c, "Sender account not found")
	case errors.Is(err, transfer.ErrTransferFailed):
		var record interface{}
		if result != nil {
			record = result.Record
		}
		return response.ServiceUnavailable(c, err.Error(), record)
	default:
		logger.Error("P2P transfer failed: %v", err)
		return response.ServerError(c, "could not process transfer")
	}
}
