package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paperchat/paperchat/internal/domain/docModel"
	"github.com/paperchat/paperchat/internal/job"
	"github.com/paperchat/paperchat/pkg/logx"
)

// MockRunner to track if jobs are executed
type MockRunner struct {
	ProcessedCount int32
	OnRun          func(ctx context.Context, doc docModel.Document, plan docModel.Plan) error
}

func (m *MockRunner) Run(ctx context.Context, doc docModel.Document, plan docModel.Plan) error {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnRun != nil {
		return m.OnRun(ctx, doc, plan)
	}
	return nil
}

func TestWorkerPool_Flow(t *testing.T) {
	jobSvc := &job.Service{
		JobChannel:        make(chan job.IngestJob, 10),
		DispatcherChannel: make(chan bool, 10),
	}
	mockRunner := &MockRunner{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(jobSvc, mockRunner)
	InitWorkerPool(stopChan, wg)

	// Reset global state for test
	atomic.StoreInt64(&currentWorkerCount, 0)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true

		// Give it a millisecond to spawn
		time.Sleep(50 * time.Millisecond)

		count := atomic.LoadInt64(&currentWorkerCount)
		if count < 1 {
			t.Errorf("Expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Worker processes a job", func(t *testing.T) {
		testJob := job.IngestJob{
			Doc:  docModel.Document{Id: "doc-1", Status: docModel.StatusProcessing},
			Plan: docModel.PlanFree,
		}
		jobSvc.JobChannel <- testJob

		// Wait for worker to pick up and process
		time.Sleep(50 * time.Millisecond)

		processed := atomic.LoadInt32(&mockRunner.ProcessedCount)
		if processed != 1 {
			t.Errorf("Expected 1 job processed, got %d", processed)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			// Success
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestWorker_IdleTimeout(t *testing.T) {
	// Temporarily override config/globals for test
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 2) // retirement only kicks in above 1
	oldIdle := idleWorkerTimeout
	idleWorkerTimeout = 50 * time.Millisecond
	defer func() { idleWorkerTimeout = oldIdle }()

	logger = logx.NewLogger("TestWorkerPool")
	jobSvc := &job.Service{
		JobChannel: make(chan job.IngestJob),
	}
	InitServices(jobSvc, &MockRunner{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	// Spawn 1 worker manually
	createWorker()
	time.Sleep(idleWorkerTimeout + 100*time.Millisecond)

	count := atomic.LoadInt64(&currentWorkerCount)
	if count != 0 {
		t.Errorf("Assertion Failed: Worker should have timed out and retired, but count is %d", count)
	}
}

func TestEnqueue_FullQueueRejects(t *testing.T) {
	jobSvc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan job.IngestJob, 1),
		DispatcherChannel: make(chan bool, 1),
	})

	if ok := jobSvc.Enqueue(job.IngestJob{Doc: docModel.Document{Id: "a"}}); !ok {
		t.Fatal("first enqueue should succeed")
	}
	if ok := jobSvc.Enqueue(job.IngestJob{Doc: docModel.Document{Id: "b"}}); ok {
		t.Error("enqueue into a full queue should report false")
	}
}
