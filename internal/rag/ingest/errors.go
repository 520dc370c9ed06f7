package ingest

import "errors"

// Failure classes of the ingestion pipeline. The worker matches on these to
// log why a document ended up FAILED.
var (
	ErrFetch         = errors.New("fetching document failed")
	ErrExtraction    = errors.New("extracting document text failed")
	ErrQuotaExceeded = errors.New("document exceeds plan page quota")
	ErrIndexing      = errors.New("embedding or indexing document failed")
)
