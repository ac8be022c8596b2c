package bulk

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"bulkpay/internal/models"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportRecords() []models.TransferRecord {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return []models.TransferRecord{
		{
			BeneficiaryName:   "Alice",
			ReceiverIDValue:   "111",
			Amount:            "100",
			Currency:          "XOF",
			Status:            models.TransferStatusCompleted,
			HomeTransactionID: "home-1",
			Note:              "Bulk: Alice - Lot 1",
			CreatedAt:         at,
		},
		{
			BeneficiaryName:   "Bob",
			ReceiverIDValue:   "222",
			Amount:            "5",
			Currency:          "XOF",
			Status:            models.TransferStatusFailed,
			ResponseData:      models.JSON{"error": "switch request failed: party not found"},
			HomeTransactionID: "home-2",
			CreatedAt:         at,
		},
		{
			BeneficiaryName: "Carol",
			Status:          models.TransferStatusFailed,
			CreatedAt:       at,
		},
	}
}

func TestNewReport(t *testing.T) {
	rows := NewReport(reportRecords())
	require.Len(t, rows, 3)

	assert.Nil(t, rows[0].ErrorMessage)
	assert.Equal(t, "111", rows[0].PersonalID)
	assert.Equal(t, "home-1", rows[0].TransactionID)
	assert.Equal(t, "Bulk: Alice - Lot 1", rows[0].Reference)

	require.NotNil(t, rows[1].ErrorMessage)
	assert.Equal(t, "switch request failed: party not found", *rows[1].ErrorMessage)

	require.NotNil(t, rows[2].ErrorMessage)
	assert.Equal(t, DefaultErrorMessage, *rows[2].ErrorMessage)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, NewReport(reportRecords())))

	lines, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 4)
	assert.Equal(t, reportHeader, lines[0])
	assert.Equal(t, "Alice", lines[1][0])
	assert.Equal(t, "", lines[1][5])
	assert.Equal(t, "2024-05-01T10:00:00Z", lines[1][6])
	assert.Equal(t, "FAILED", lines[2][4])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewReport(reportRecords())))

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 3)
	assert.Nil(t, decoded[0]["error_message"])
	assert.Equal(t, DefaultErrorMessage, decoded[2]["error_message"])
}
