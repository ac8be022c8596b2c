// Package bulk runs uploaded transfer batches: one gateway call and one
// stored record per row, with per-batch counters.
package bulk

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"bulkpay/internal/models"
	"bulkpay/internal/repositories"
	"bulkpay/internal/services/gateway"
	"bulkpay/internal/utils/logger"
)

// Recorder stores the outcome of one transfer.
type Recorder interface {
	Record(ctx context.Context, req gateway.Request, out gateway.Outcome, batchID *uint) (*models.TransferRecord, error)
}

type Processor struct {
	jobs     repositories.BatchJobRepository
	opener   SourceOpener
	gateway  gateway.Gateway
	recorder Recorder
}

func NewProcessor(jobs repositories.BatchJobRepository, opener SourceOpener, gw gateway.Gateway, rec Recorder) *Processor {
	return &Processor{
		jobs:     jobs,
		opener:   opener,
		gateway:  gw,
		recorder: rec,
	}
}

// rowResult is the contribution of one row to the batch counters.
type rowResult struct {
	succeeded bool
	err       error
}

// Process runs every row of the batch in file order. An unknown batch is
// a no-op. Row failures never abort the batch; only failures to persist
// the job itself are returned, plus the open error of an unreadable file.
func (p *Processor) Process(ctx context.Context, batchID uint) error {
	job, err := p.jobs.GetByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, repositories.ErrBatchJobNotFound) {
			logger.Info("batch %d not found, nothing to process", batchID)
			return nil
		}
		return err
	}

	job.Status = models.BatchStatusProcessing
	if err := p.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to mark batch %d processing: %w", batchID, err)
	}
	logger.Info("processing batch %d from %s", job.ID, job.SenderMSISDN)

	src, err := p.opener.Open(job)
	if err != nil {
		logger.Error("batch %d: cannot read file: %v", job.ID, err)
		job.Finish(0, 0, 0)
		job.Status = models.BatchStatusCompletedWithErrors
		job.Message = fmt.Sprintf("Could not read batch file: %v", err)
		if uerr := p.jobs.Update(ctx, job); uerr != nil {
			return fmt.Errorf("failed to save batch %d: %w", batchID, uerr)
		}
		return fmt.Errorf("failed to open batch %d: %w", batchID, err)
	}
	defer src.Close()

	var total, succeeded, failed int
	for {
		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		var res rowResult
		if err != nil {
			res = rowResult{err: fmt.Errorf("line %d: %w", row.Line, err)}
		} else {
			res = p.processRow(ctx, job, row)
		}

		total++
		if res.succeeded {
			succeeded++
		} else {
			failed++
			if res.err != nil {
				logger.Warning("batch %d: row failed: %v", job.ID, res.err)
			}
		}

		var perr *csv.ParseError
		if err != nil && !errors.As(err, &perr) {
			break
		}
	}

	job.Finish(total, succeeded, failed)
	if err := p.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to save batch %d: %w", batchID, err)
	}
	logger.Info("batch %d %s: %s", job.ID, job.Status, job.Message)
	return nil
}

func (p *Processor) processRow(ctx context.Context, job *models.BatchJob, row Row) (res rowResult) {
	defer func() {
		if r := recover(); r != nil {
			res = rowResult{err: fmt.Errorf("line %d: panic: %v", row.Line, r)}
		}
	}()

	req, err := requestFromRow(job, row)
	if err != nil {
		return rowResult{err: err}
	}

	out := p.gateway.Execute(ctx, req)
	if _, err := p.recorder.Record(ctx, req, out, &job.ID); err != nil {
		return rowResult{err: fmt.Errorf("line %d: failed to record transfer %s: %w", row.Line, out.HomeTransactionID, err)}
	}
	if !out.Success {
		return rowResult{err: fmt.Errorf("line %d: %s", row.Line, out.Error)}
	}
	return rowResult{succeeded: true}
}

func requestFromRow(job *models.BatchJob, row Row) (gateway.Request, error) {
	values := make(map[string]string, len(RequiredColumns))
	for _, column := range RequiredColumns {
		v, ok := row.Get(column)
		if !ok {
			return gateway.Request{}, fmt.Errorf("line %d: %w: %s", row.Line, ErrMissingColumn, column)
		}
		values[column] = v
	}

	name := values[ColumnBeneficiary]
	return gateway.Request{
		SenderMSISDN:    job.SenderMSISDN,
		ReceiverIDType:  values[ColumnIDType],
		ReceiverIDValue: values[ColumnIDValue],
		Amount:          values[ColumnAmount],
		Currency:        values[ColumnCurrency],
		Note:            fmt.Sprintf("Bulk: %s - Lot %d", name, job.ID),
		BeneficiaryName: name,
	}, nil
}
