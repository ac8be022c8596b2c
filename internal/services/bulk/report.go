package bulk

import (
	"encoding/csv"
	"io"
	"time"

	"bulkpay/internal/models"

	"github.com/goccy/go-json"
)

// DefaultErrorMessage is reported for failed transfers whose stored
// response carries no error text.
const DefaultErrorMessage = "invalid account or recipient for the target DFSP"

// ReportRow is the per-transfer line of a batch report.
type ReportRow struct {
	BeneficiaryName string                `json:"beneficiary_name"`
	PersonalID      string                `json:"personal_id"`
	Amount          string                `json:"amount"`
	Currency        string                `json:"currency"`
	Status          models.TransferStatus `json:"status"`
	ErrorMessage    *string               `json:"error_message"`
	Timestamp       time.Time             `json:"timestamp"`
	TransactionID   string                `json:"transaction_id"`
	Reference       string                `json:"reference"`
}

var reportHeader = []string{
	"beneficiary_name", "personal_id", "amount", "currency", "status",
	"error_message", "timestamp", "transaction_id", "reference",
}

func NewReport(records []models.TransferRecord) []ReportRow {
	rows := make([]ReportRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, ReportRow{
			BeneficiaryName: r.BeneficiaryName,
			PersonalID:      r.ReceiverIDValue,
			Amount:          r.Amount,
			Currency:        r.Currency,
			Status:          r.Status,
			ErrorMessage:    errorMessage(r),
			Timestamp:       r.CreatedAt,
			TransactionID:   r.HomeTransactionID,
			Reference:       r.Note,
		})
	}
	return rows
}

func errorMessage(r models.TransferRecord) *string {
	if r.Status != models.TransferStatusFailed {
		return nil
	}
	msg := r.ResponseData.String("error")
	if msg == "" {
		msg = r.ErrorMessage
	}
	if msg == "" {
		msg = DefaultErrorMessage
	}
	return &msg
}

func WriteCSV(w io.Writer, rows []ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		var errMsg string
		if r.ErrorMessage != nil {
			errMsg = *r.ErrorMessage
		}
		err := cw.Write([]string{
			r.BeneficiaryName,
			r.PersonalID,
			r.Amount,
			r.Currency,
			string(r.Status),
			errMsg,
			r.Timestamp.UTC().Format(time.RFC3339),
			r.TransactionID,
			r.Reference,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteJSON(w io.Writer, rows []ReportRow) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
