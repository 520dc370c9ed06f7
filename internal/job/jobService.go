package job

import (
	"github.com/paperchat/paperchat/internal/domain/docModel"
	"github.com/paperchat/paperchat/internal/metrics"
)

// IngestJob is one queued ingestion run: the document to process and the
// plan whose quota applies to it.
type IngestJob struct {
	Doc     docModel.Document
	Plan    docModel.Plan
	TraceId string
}

// Service is the handoff point between the upload handler and the worker
// pool. JobChannel carries the work, DispatcherChannel nudges the pool to
// grow when the queue backs up.
type Service struct {
	JobChannel        chan IngestJob
	DispatcherChannel chan bool
}

type ServiceConfig struct {
	JobChannel        chan IngestJob
	DispatcherChannel chan bool
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		DispatcherChannel: cfg.DispatcherChannel,
	}
}

// Enqueue hands a job to the pool without blocking. False means the queue is
// full and the caller should push back on the client.
func (s *Service) Enqueue(j IngestJob) bool {
	select {
	case s.JobChannel <- j:
		metrics.IncrementIngestQueue()
	default:
		return false
	}

	select {
	case s.DispatcherChannel <- true:
		metrics.StartDispatcherSignalCount()
	default:
		// pool is already being signaled, no need to pile up
	}
	return true
}
