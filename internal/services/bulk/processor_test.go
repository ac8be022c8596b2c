package bulk

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"bulkpay/internal/models"
	"bulkpay/internal/repositories"
	"bulkpay/internal/services/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "type_id,valeur_id,montant,devise,nom_complet\n"

type fakeJobs struct {
	mu       sync.Mutex
	jobs     map[uint]models.BatchJob
	statuses []models.BatchStatus
	failOn   int // fail the n-th Update (1-based), 0 never
	updates  int
}

func newFakeJobs(jobs ...models.BatchJob) *fakeJobs {
	f := &fakeJobs{jobs: make(map[uint]models.BatchJob)}
	for _, j := range jobs {
		f.jobs[j.ID] = j
	}
	return f
}

func (f *fakeJobs) Create(_ context.Context, job *models.BatchJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job.ID = uint(len(f.jobs) + 1)
	f.jobs[job.ID] = *job
	return nil
}

func (f *fakeJobs) GetByID(_ context.Context, id uint) (*models.BatchJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, repositories.ErrBatchJobNotFound
	}
	return &job, nil
}

func (f *fakeJobs) Update(_ context.Context, job *models.BatchJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updates == f.failOn {
		return errors.New("database is gone")
	}
	f.jobs[job.ID] = *job
	f.statuses = append(f.statuses, job.Status)
	return nil
}

func (f *fakeJobs) List(_ context.Context, _, _ int) ([]models.BatchJob, error) {
	return nil, nil
}

func (f *fakeJobs) ListByStatus(_ context.Context, status models.BatchStatus) ([]models.BatchJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BatchJob
	for id := uint(1); id <= uint(len(f.jobs))+10; id++ {
		if j, ok := f.jobs[id]; ok && j.Status == status {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f *fakeJobs) get(id uint) models.BatchJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs[id]
}

type stringOpener struct {
	data string
	err  error
}

func (o stringOpener) Open(*models.BatchJob) (RowSource, error) {
	if o.err != nil {
		return nil, o.err
	}
	return NewCSVSource(io.NopCloser(strings.NewReader(o.data)))
}

// fakeGateway fails or panics for chosen receivers and succeeds otherwise.
type fakeGateway struct {
	mu       sync.Mutex
	calls    []gateway.Request
	failFor  map[string]bool
	panicFor map[string]bool
}

func (g *fakeGateway) Execute(_ context.Context, req gateway.Request) gateway.Outcome {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	g.mu.Unlock()

	if g.panicFor[req.ReceiverIDValue] {
		panic("unexpected switch payload")
	}
	id := "home-" + req.ReceiverIDValue
	if g.failFor[req.ReceiverIDValue] {
		return gateway.Outcome{HomeTransactionID: id, Error: "switch request failed: rejected"}
	}
	tid := "tr-" + req.ReceiverIDValue
	return gateway.Outcome{Success: true, TransferID: &tid, HomeTransactionID: id}
}

type fakeRecorder struct {
	records []models.TransferRecord
	failFor map[string]bool
}

func (r *fakeRecorder) Record(_ context.Context, req gateway.Request, out gateway.Outcome, batchID *uint) (*models.TransferRecord, error) {
	if r.failFor[req.ReceiverIDValue] {
		return nil, errors.New("insert failed")
	}
	rec := models.TransferRecord{
		ReceiverIDValue:   req.ReceiverIDValue,
		Note:              req.Note,
		BeneficiaryName:   req.BeneficiaryName,
		HomeTransactionID: out.HomeTransactionID,
		Status:            out.Status(),
		BatchJobID:        batchID,
	}
	r.records = append(r.records, rec)
	return &rec, nil
}

func newProcessor(jobs *fakeJobs, data string, gw *fakeGateway, rec *fakeRecorder) *Processor {
	return NewProcessor(jobs, stringOpener{data: data}, gw, rec)
}

func uploadedJob(id uint) models.BatchJob {
	return models.BatchJob{ID: id, SenderMSISDN: "1234567890", FilePath: "batch.csv", Status: models.BatchStatusUploaded}
}

func TestProcess_RowMissingAmountIsIsolated(t *testing.T) {
	data := header +
		"MSISDN,111,100.00,XOF,Alice\n" +
		"MSISDN,222,50,XOF,Bob\n" +
		"MSISDN,333,,XOF,Carol\n" +
		"MSISDN,444,12.50,XOF,Dan\n" +
		"MSISDN,555,1e3,XOF,Eve\n"

	jobs := newFakeJobs(uploadedJob(7))
	gw := &fakeGateway{}
	rec := &fakeRecorder{}

	require.NoError(t, newProcessor(jobs, data, gw, rec).Process(context.Background(), 7))

	job := jobs.get(7)
	assert.Equal(t, 5, job.TotalTransfers)
	assert.Equal(t, 4, job.SucceededCount)
	assert.Equal(t, 1, job.FailedCount)
	assert.Equal(t, models.BatchStatusCompletedWithErrors, job.Status)
	assert.Equal(t, "Finished: 4 succeeded, 1 failed out of 5 transfers.", job.Message)
	assert.Len(t, rec.records, 4)
	assert.Len(t, gw.calls, 4)
	for _, r := range rec.records {
		assert.NotEqual(t, "333", r.ReceiverIDValue)
	}
}

func TestProcess_ShortLineIsIsolated(t *testing.T) {
	data := header +
		"MSISDN,111,100,XOF,Alice\n" +
		"MSISDN,222\n" +
		"MSISDN,333,75,XOF,Carol\n"

	jobs := newFakeJobs(uploadedJob(8))
	gw := &fakeGateway{}
	rec := &fakeRecorder{}

	require.NoError(t, newProcessor(jobs, data, gw, rec).Process(context.Background(), 8))

	job := jobs.get(8)
	assert.Equal(t, 3, job.TotalTransfers)
	assert.Equal(t, 2, job.SucceededCount)
	assert.Equal(t, 1, job.FailedCount)
	assert.Equal(t, models.BatchStatusCompletedWithErrors, job.Status)
	require.Len(t, gw.calls, 2)
	assert.Equal(t, "111", gw.calls[0].ReceiverIDValue)
	assert.Equal(t, "333", gw.calls[1].ReceiverIDValue)
	assert.Len(t, rec.records, 2)
}

func TestProcess_AllRowsSucceed(t *testing.T) {
	data := header +
		"MSISDN,111,100,XOF,Alice\n" +
		"MSISDN,222,200,XOF,Bob\n"

	jobs := newFakeJobs(uploadedJob(3))
	gw := &fakeGateway{}
	rec := &fakeRecorder{}

	require.NoError(t, newProcessor(jobs, data, gw, rec).Process(context.Background(), 3))

	job := jobs.get(3)
	assert.Equal(t, models.BatchStatusCompleted, job.Status)
	assert.Equal(t, 2, job.SucceededCount)
	assert.Equal(t, job.TotalTransfers, job.SucceededCount+job.FailedCount)

	require.Len(t, rec.records, 2)
	assert.Equal(t, "Bulk: Alice - Lot 3", rec.records[0].Note)
	assert.Equal(t, "Alice", rec.records[0].BeneficiaryName)
	require.NotNil(t, rec.records[1].BatchJobID)
	assert.Equal(t, uint(3), *rec.records[1].BatchJobID)

	assert.Equal(t, "1234567890", gw.calls[0].SenderMSISDN)
	assert.Equal(t, "111", gw.calls[0].ReceiverIDValue)
	assert.Equal(t, "XOF", gw.calls[0].Currency)
}

func TestProcess_GatewayFailuresAreRecorded(t *testing.T) {
	data := header +
		"MSISDN,111,100,XOF,Alice\n" +
		"MSISDN,222,100,XOF,Bob\n"

	jobs := newFakeJobs(uploadedJob(1))
	gw := &fakeGateway{failFor: map[string]bool{"222": true}}
	rec := &fakeRecorder{}

	require.NoError(t, newProcessor(jobs, data, gw, rec).Process(context.Background(), 1))

	job := jobs.get(1)
	assert.Equal(t, 1, job.SucceededCount)
	assert.Equal(t, 1, job.FailedCount)
	require.Len(t, rec.records, 2)
	assert.Equal(t, models.TransferStatusFailed, rec.records[1].Status)
	assert.Equal(t, "home-222", rec.records[1].HomeTransactionID)
}

func TestProcess_UnknownBatchIsNoop(t *testing.T) {
	jobs := newFakeJobs()
	gw := &fakeGateway{}

	err := newProcessor(jobs, header+"MSISDN,111,1,XOF,A\n", gw, &fakeRecorder{}).Process(context.Background(), 42)

	assert.NoError(t, err)
	assert.Empty(t, gw.calls)
	assert.Empty(t, jobs.statuses)
}

func TestProcess_MarksProcessingBeforeRows(t *testing.T) {
	jobs := newFakeJobs(uploadedJob(2))

	require.NoError(t, newProcessor(jobs, header+"MSISDN,111,1,XOF,A\n", &fakeGateway{}, &fakeRecorder{}).
		Process(context.Background(), 2))

	require.Len(t, jobs.statuses, 2)
	assert.Equal(t, models.BatchStatusProcessing, jobs.statuses[0])
	assert.Equal(t, models.BatchStatusCompleted, jobs.statuses[1])
}

func TestProcess_PanicInRowIsIsolated(t *testing.T) {
	data := header +
		"MSISDN,111,1,XOF,A\n" +
		"MSISDN,222,1,XOF,B\n" +
		"MSISDN,333,1,XOF,C\n"

	jobs := newFakeJobs(uploadedJob(5))
	gw := &fakeGateway{panicFor: map[string]bool{"222": true}}
	rec := &fakeRecorder{}

	require.NoError(t, newProcessor(jobs, data, gw, rec).Process(context.Background(), 5))

	job := jobs.get(5)
	assert.Equal(t, 3, job.TotalTransfers)
	assert.Equal(t, 2, job.SucceededCount)
	assert.Equal(t, 1, job.FailedCount)
	assert.Len(t, rec.records, 2)
	assert.Len(t, gw.calls, 3)
}

func TestProcess_RecorderErrorFailsRow(t *testing.T) {
	data := header +
		"MSISDN,111,1,XOF,A\n" +
		"MSISDN,222,1,XOF,B\n"

	jobs := newFakeJobs(uploadedJob(6))
	rec := &fakeRecorder{failFor: map[string]bool{"111": true}}

	require.NoError(t, newProcessor(jobs, data, &fakeGateway{}, rec).Process(context.Background(), 6))

	job := jobs.get(6)
	assert.Equal(t, 1, job.SucceededCount)
	assert.Equal(t, 1, job.FailedCount)
}

func TestProcess_MalformedLineCountsAsFailure(t *testing.T) {
	data := header +
		"MSISDN,111,1,XOF,A\n" +
		"MSISDN,22\"2,1,XOF,B\n" +
		"MSISDN,333,1,XOF,C\n"

	jobs := newFakeJobs(uploadedJob(8))
	gw := &fakeGateway{}

	require.NoError(t, newProcessor(jobs, data, gw, &fakeRecorder{}).Process(context.Background(), 8))

	job := jobs.get(8)
	assert.Equal(t, 3, job.TotalTransfers)
	assert.Equal(t, 2, job.SucceededCount)
	assert.Equal(t, 1, job.FailedCount)
	assert.Len(t, gw.calls, 2)
}

func TestProcess_HeaderOnlyFile(t *testing.T) {
	jobs := newFakeJobs(uploadedJob(9))

	require.NoError(t, newProcessor(jobs, header, &fakeGateway{}, &fakeRecorder{}).Process(context.Background(), 9))

	job := jobs.get(9)
	assert.Equal(t, models.BatchStatusCompleted, job.Status)
	assert.Equal(t, 0, job.TotalTransfers)
}

func TestProcess_UnreadableFile(t *testing.T) {
	jobs := newFakeJobs(uploadedJob(10))
	p := NewProcessor(jobs, stringOpener{err: errors.New("no such file")}, &fakeGateway{}, &fakeRecorder{})

	err := p.Process(context.Background(), 10)
	assert.Error(t, err)

	job := jobs.get(10)
	assert.Equal(t, models.BatchStatusCompletedWithErrors, job.Status)
	assert.Equal(t, 0, job.TotalTransfers)
	assert.Contains(t, job.Message, "no such file")
}

func TestProcess_JobSaveFailureIsReturned(t *testing.T) {
	jobs := newFakeJobs(uploadedJob(11))
	jobs.failOn = 1

	err := newProcessor(jobs, header, &fakeGateway{}, &fakeRecorder{}).Process(context.Background(), 11)
	assert.Error(t, err)
}
