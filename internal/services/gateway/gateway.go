// Package gateway sends P2P transfers to the payment-switch adapter.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"bulkpay/internal/models"
	"bulkpay/internal/services/amount"
	"bulkpay/internal/utils/logger"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

// DefaultBaseURL is the local scheme adapter address.
const DefaultBaseURL = "http://localhost:4001"

// maxErrorBody caps how much of a failed response is kept as error text.
const maxErrorBody = 4096

// Gateway executes single transfers against the switch.
type Gateway interface {
	Execute(ctx context.Context, req Request) Outcome
}

// Options configures a Client. Zero values take the defaults.
type Options struct {
	BaseURL     string
	DisplayName string
	Policy      RetryPolicy
	// HTTPClient is the underlying transport, replaceable in tests.
	HTTPClient *http.Client
	// Quiet disables retry logging.
	Quiet bool
}

// Client is a stateless switch client with an explicit retry policy.
type Client struct {
	baseURL     string
	displayName string
	policy      RetryPolicy
	http        *retryablehttp.Client
}

// NewClient builds a Client from opts.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.DisplayName == "" {
		opts.DisplayName = "Bulk Transfer Client"
	}
	if opts.Policy.MaxAttempts == 0 && len(opts.Policy.StatusCodes) == 0 {
		opts.Policy = DefaultRetryPolicy()
	}

	rc := retryablehttp.NewClient()
	if opts.HTTPClient != nil {
		rc.HTTPClient = opts.HTTPClient
	}
	rc.RetryMax = opts.Policy.retryMax()
	rc.RetryWaitMin = opts.Policy.BackoffBase
	rc.RetryWaitMax = opts.Policy.BackoffMax
	rc.CheckRetry = opts.Policy.checkRetry
	rc.Backoff = opts.Policy.backoff
	rc.ErrorHandler = giveUp
	if opts.Quiet {
		rc.Logger = nil
	} else {
		rc.Logger = leveledLogger{}
	}

	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		displayName: opts.DisplayName,
		policy:      opts.Policy,
		http:        rc,
	}
}

// Execute posts req to the switch. It never fails: every transport or
// remote error is folded into the returned Outcome.
func (c *Client) Execute(ctx context.Context, req Request) Outcome {
	homeTxID := req.HomeTransactionID
	if homeTxID == "" {
		homeTxID = uuid.NewString()
	}
	out := Outcome{HomeTransactionID: homeTxID}

	payload := transferPayload{
		From: party{
			DisplayName: c.displayName,
			IDType:      models.IDTypeMSISDN,
			IDValue:     req.SenderMSISDN,
		},
		To: party{
			IDType:  req.ReceiverIDType,
			IDValue: req.ReceiverIDValue,
		},
		AmountType:        amountTypeSend,
		Currency:          req.Currency,
		Amount:            amount.Normalize(req.Amount),
		TransactionType:   transactionTransfer,
		Note:              req.Note,
		HomeTransactionID: homeTxID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return c.fail(out, fmt.Sprintf("failed to marshal request: %v", err))
	}

	if c.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.policy.Timeout)
		defer cancel()
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+transfersPath, body)
	if err != nil {
		return c.fail(out, err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return c.fail(out, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(out, fmt.Sprintf("failed to read response: %v", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := strings.TrimSpace(string(truncate(respBody, maxErrorBody)))
		if text == "" {
			text = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return c.fail(out, text)
	}

	var parsed transferResponse
	data := models.JSON{}
	if len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, &data); err != nil {
			return c.fail(out, fmt.Sprintf("invalid switch response: %v", err))
		}
		_ = json.Unmarshal(respBody, &parsed)
	}

	out.Success = true
	out.TransferID = parsed.TransferID
	out.CurrentState = parsed.CurrentState
	out.Data = data
	logger.Debug("transfer %s accepted by switch: transferId=%v state=%s", homeTxID, deref(parsed.TransferID), parsed.CurrentState)
	return out
}

func (c *Client) fail(out Outcome, text string) Outcome {
	out.Success = false
	out.Error = "switch request failed: " + text
	logger.Warning("transfer %s failed: %s", out.HomeTransactionID, text)
	return out
}

// giveUp hands the last response back to Execute so its body can be
// reported, and annotates transport errors with the attempt count.
func giveUp(resp *http.Response, err error, numTries int) (*http.Response, error) {
	if err != nil {
		return resp, fmt.Errorf("giving up after %d attempt(s): %w", numTries, err)
	}
	return resp, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
