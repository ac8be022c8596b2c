package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"bulkpay/internal/models"
	"bulkpay/internal/repositories"
	"bulkpay/internal/services/bulk"
	"bulkpay/internal/utils/logger"
	"bulkpay/internal/utils/pagination"
	"bulkpay/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// AccountChecker tells whether a sender is known.
type AccountChecker interface {
	Exists(ctx context.Context, msisdn string) (bool, error)
}

// FileSaver stores uploaded batch files.
type FileSaver interface {
	Save(originalName string, r io.Reader) (string, error)
	Remove(path string) error
}

// BatchSubmitter queues an uploaded batch for processing.
type BatchSubmitter interface {
	Submit(batchID uint) (bool, error)
}

// BulkHandler exposes batch upload, status, history and export.
type BulkHandler struct {
	jobs       repositories.BatchJobRepository
	records    repositories.TransferRecordRepository
	accounts   AccountChecker
	files      FileSaver
	dispatcher BatchSubmitter
}

func NewBulkHandler(
	jobs repositories.BatchJobRepository,
	records repositories.TransferRecordRepository,
	accounts AccountChecker,
	files FileSaver,
	dispatcher BatchSubmitter,
) *BulkHandler {
	return &BulkHandler{
		jobs:       jobs,
		records:    records,
		accounts:   accounts,
		files:      files,
		dispatcher: dispatcher,
	}
}

// Upload handles POST /bulk/upload (multipart: file, sender_msisdn).
func (h *BulkHandler) Upload(c *fiber.Ctx) error {
	sender := strings.TrimSpace(c.FormValue("sender_msisdn"))
	if sender == "" {
		return response.BadRequest(c, "sender_msisdn is required")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "file is required")
	}

	ok, err := h.accounts.Exists(c.Context(), sender)
	if err != nil {
		logger.Error("sender lookup failed for %s: %v", sender, err)
		return response.ServerError(c, "could not verify sender")
	}
	if !ok {
		return response.BadRequest(c, "Sender account not found")
	}

	f, err := fh.Open()
	if err != nil {
		return response.BadRequest(c, "could not read uploaded file")
	}
	defer f.Close()

	if err := bulk.ValidateHeader(f); err != nil {
		return response.BadRequest(c, err.Error())
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return response.ServerError(c, "could not read uploaded file")
	}

	path, err := h.files.Save(fh.Filename, f)
	if err != nil {
		logger.Error("failed to store upload %s: %v", fh.Filename, err)
		return response.ServerError(c, "could not store uploaded file")
	}

	job := &models.BatchJob{
		SenderMSISDN: sender,
		FileName:     fh.Filename,
		FilePath:     path,
		Status:       models.BatchStatusUploaded,
	}
	if err := h.jobs.Create(c.Context(), job); err != nil {
		logger.Error("failed to create batch for %s: %v", fh.Filename, err)
		_ = h.files.Remove(path)
		return response.ServerError(c, "could not create batch")
	}

	if _, err := h.dispatcher.Submit(job.ID); err != nil {
		logger.Warning("batch %d left for the next sweep: %v", job.ID, err)
	}

	logger.Info("batch %d uploaded by %s (%s)", job.ID, sender, fh.Filename)
	return response.Accepted(c, "batch accepted for processing", job)
}

// Status handles GET /bulk/status/:id.
func (h *BulkHandler) Status(c *fiber.Ctx) error {
	job, records, ok, err := h.load(c)
	if !ok {
		return err
	}
	return response.Success(c, "batch status", fiber.Map{
		"job":       job,
		"transfers": bulk.NewReport(records),
	})
}

// History handles GET /bulk/history, newest batches first.
func (h *BulkHandler) History(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	jobs, err := h.jobs.List(c.Context(), p.Limit, p.Offset)
	if err != nil {
		logger.Error("failed to list batches: %v", err)
		return response.ServerError(c, "could not list batches")
	}
	return c.JSON(pagination.Response(p, jobs))
}

// Export handles GET /bulk/export/:format/:id with format csv or json.
func (h *BulkHandler) Export(c *fiber.Ctx) error {
	format := strings.ToLower(c.Params("format"))
	if format != "csv" && format != "json" {
		return response.BadRequest(c, "format must be csv or json")
	}

	job, records, ok, err := h.load(c)
	if !ok {
		return err
	}

	rows := bulk.NewReport(records)
	c.Attachment(fmt.Sprintf("batch_%d_report.%s", job.ID, format))
	if format == "csv" {
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		return bulk.WriteCSV(c, rows)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return bulk.WriteJSON(c, rows)
}

// load resolves the :id param to a job and its records. When ok is
// false the error response has already been written.
func (h *BulkHandler) load(c *fiber.Ctx) (job *models.BatchJob, records []models.TransferRecord, ok bool, err error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, nil, false, response.BadRequest(c, "invalid batch id")
	}

	job, err = h.jobs.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, repositories.ErrBatchJobNotFound) {
			return nil, nil, false, response.NotFound(c, "batch not found")
		}
		logger.Error("failed to load batch %d: %v", id, err)
		return nil, nil, false, response.ServerError(c, "could not load batch")
	}

	records, err = h.records.ListByBatch(c.Context(), job.ID)
	if err != nil {
		logger.Error("failed to load transfers of batch %d: %v", id, err)
		return nil, nil, false, response.ServerError(c, "could not load batch transfers")
	}
	return job, records, true, nil
}
