package bulk

import (
	"context"
	"errors"
	"sync"

	"bulkpay/internal/models"
	"bulkpay/internal/repositories"
	"bulkpay/internal/utils/logger"

	"github.com/robfig/cron/v3"
)

var ErrQueueFull = errors.New("batch queue is full")

// Runner processes one batch.
type Runner interface {
	Process(ctx context.Context, batchID uint) error
}

type DispatcherConfig struct {
	QueueSize int
	// Schedule is a cron expression for sweeping UPLOADED jobs. Empty disables
	// the sweep.
	Schedule string
}

// Dispatcher feeds batch ids to a single worker so that at most one batch
// runs at a time. Ids already queued or running are ignored.
type Dispatcher struct {
	runner Runner
	jobs   repositories.BatchJobRepository
	queue  chan uint
	cron   *cron.Cron

	mu       sync.Mutex
	inFlight map[uint]struct{}

	quit chan struct{}
	wg   sync.WaitGroup
}

func NewDispatcher(runner Runner, jobs repositories.BatchJobRepository, cfg DispatcherConfig) (*Dispatcher, error) {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	d := &Dispatcher{
		runner:   runner,
		jobs:     jobs,
		queue:    make(chan uint, cfg.QueueSize),
		inFlight: make(map[uint]struct{}),
		quit:     make(chan struct{}),
	}

	l := cronLogger{}
	d.cron = cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)
	if cfg.Schedule != "" {
		if _, err := d.cron.AddFunc(cfg.Schedule, func() { d.Sweep(context.Background()) }); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Start launches the worker and the sweep schedule, and queues every job
// left UPLOADED by a previous run.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go d.work()
	d.cron.Start()
	d.Sweep(ctx)
}

// Stop waits for the running batch to finish. Queued ids are dropped;
// their jobs stay UPLOADED and are picked up by the next sweep.
func (d *Dispatcher) Stop() {
	<-d.cron.Stop().Done()
	close(d.quit)
	d.wg.Wait()
}

// Submit queues a batch. It returns false if the id is already queued or
// running, and ErrQueueFull when the queue has no room.
func (d *Dispatcher) Submit(batchID uint) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.inFlight[batchID]; ok {
		return false, nil
	}
	select {
	case d.queue <- batchID:
		d.inFlight[batchID] = struct{}{}
		return true, nil
	default:
		return false, ErrQueueFull
	}
}

// Sweep queues every job still UPLOADED.
func (d *Dispatcher) Sweep(ctx context.Context) {
	jobs, err := d.jobs.ListByStatus(ctx, models.BatchStatusUploaded)
	if err != nil {
		logger.Error("sweep: failed to list uploaded batches: %v", err)
		return
	}
	for _, job := range jobs {
		queued, err := d.Submit(job.ID)
		if err != nil {
			logger.Warning("sweep: batch %d not queued: %v", job.ID, err)
			return
		}
		if queued {
			logger.Info("sweep: queued batch %d", job.ID)
		}
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for {
		select {
		case <-d.quit:
			return
		case id := <-d.queue:
			d.run(id)
		}
	}
}

func (d *Dispatcher) run(id uint) {
	defer func() {
		d.mu.Lock()
		delete(d.inFlight, id)
		d.mu.Unlock()
	}()

	ctx := context.Background()

	// A sweep can race with a batch that has just finished.
	job, err := d.jobs.GetByID(ctx, id)
	if err == nil && job.Status != models.BatchStatusUploaded {
		logger.Debug("batch %d already %s, skipping", id, job.Status)
		return
	}

	if err := d.runner.Process(ctx, id); err != nil {
		logger.Error("batch %d failed: %v", id, err)
	}
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: %s %v", msg, keysAndValues)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: %s: %v %v", msg, err, keysAndValues)
}
