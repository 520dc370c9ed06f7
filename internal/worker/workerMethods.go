package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/paperchat/paperchat/internal/config"
	"github.com/paperchat/paperchat/internal/job"
	"github.com/paperchat/paperchat/internal/metrics"
	"github.com/paperchat/paperchat/internal/rag/ingest"
)

func executeJob(currentJob job.IngestJob) {
	start := time.Now()
	outcome := "success"
	defer func() {
		metrics.CaptureIngestMetrics(outcome, time.Since(start))
	}()

	ctxTrace := context.WithValue(context.Background(), config.TraceIDKey, currentJob.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.IngestJobTimeout)
	defer cancel()
	logger.Debug("Processing ingest job", "docId", currentJob.Doc.Id)

	if err := _pipeline.Run(ctx, currentJob.Doc, currentJob.Plan); err != nil {
		outcome = classify(err)
		logger.Error("Ingest job failed", "docId", currentJob.Doc.Id, "outcome", outcome, "error", err)
	}
}

func classify(err error) string {
	switch {
	case errors.Is(err, ingest.ErrFetch):
		return "fetch_error"
	case errors.Is(err, ingest.ErrExtraction):
		return "extraction_error"
	case errors.Is(err, ingest.ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, ingest.ErrIndexing):
		return "indexing_error"
	default:
		return "error"
	}
}

func removeWorker(reason string) {

	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()

}
