package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/paperchat/paperchat/internal/adapter/utils"
	"github.com/paperchat/paperchat/internal/data/store"
	"github.com/paperchat/paperchat/internal/domain/docModel"
	"github.com/paperchat/paperchat/internal/objstore"
	"github.com/paperchat/paperchat/internal/rag/embedding"
	"github.com/paperchat/paperchat/internal/rag/vectorDB"
	"github.com/paperchat/paperchat/pkg/logx"
)

var logger *logx.Logger

const embedBatchSize = 100

// Pipeline turns an uploaded document into an indexed, chat-ready one:
// fetch the bytes, extract pages, enforce the plan quota, embed and upsert.
// Each extracted page becomes exactly one chunk and one vector.
type Pipeline struct {
	fetcher  objstore.Fetcher
	embedder embedding.Embedder
	index    vectorDB.Index
	docs     store.DocumentStore
	extract  func(name string, data []byte) ([]docModel.Page, error)
}

func NewPipeline(fetcher objstore.Fetcher, embedder embedding.Embedder, index vectorDB.Index, docs store.DocumentStore) *Pipeline {
	logger = logx.NewLogger("Document Ingestion")
	return &Pipeline{
		fetcher:  fetcher,
		embedder: embedder,
		index:    index,
		docs:     docs,
		extract:  extractText,
	}
}

// Run processes one document end to end. Any failure marks the document
// FAILED and comes back wrapped in one of the sentinel errors; a quota breach
// is decided before a single embedding call is made. Run never rolls back
// the raw upload, a FAILED document keeps its stored bytes.
func (p *Pipeline) Run(ctx context.Context, doc docModel.Document, plan docModel.Plan) error {
	logger.Debug("Processing document", "docId", doc.Id, "name", doc.Name, "plan", plan.Name)

	data, err := p.fetcher.Fetch(ctx, objstore.Ref{Key: doc.Key, URL: doc.URL})
	if err != nil {
		return p.fail(ctx, doc, 0, fmt.Errorf("%w: %v", ErrFetch, err))
	}

	pages, err := p.extract(doc.Name, data)
	if err != nil {
		return p.fail(ctx, doc, 0, fmt.Errorf("%w: %v", ErrExtraction, err))
	}
	if len(pages) == 0 {
		return p.fail(ctx, doc, 0, fmt.Errorf("%w: no extractable pages", ErrExtraction))
	}

	pageCount := len(pages)
	if pageCount > plan.MaxPagesPerDoc {
		logger.Info("Document over page quota", "docId", doc.Id, "pages", pageCount, "limit", plan.MaxPagesPerDoc)
		return p.fail(ctx, doc, pageCount, fmt.Errorf("%w: %d pages, plan %q allows %d", ErrQuotaExceeded, pageCount, plan.Name, plan.MaxPagesPerDoc))
	}

	chunks := prepareChunks(doc, pages)
	if err := p.indexChunks(ctx, doc.Id, chunks); err != nil {
		return p.fail(ctx, doc, pageCount, fmt.Errorf("%w: %v", ErrIndexing, err))
	}

	if err := transition(doc, docModel.StatusSuccess); err != nil {
		return p.fail(ctx, doc, pageCount, err)
	}
	if err := p.docs.UpdateStatus(ctx, doc.Id, docModel.StatusSuccess, pageCount); err != nil {
		return fmt.Errorf("marking document indexed: %w", err)
	}
	logger.Info("Document indexed", "docId", doc.Id, "pages", pageCount, "chunks", len(chunks))
	return nil
}

// prepareChunks maps pages one-to-one onto chunks, the page is the retrieval
// unit for this corpus.
func prepareChunks(doc docModel.Document, pages []docModel.Page) []docModel.DocChunk {
	chunks := make([]docModel.DocChunk, 0, len(pages))
	for i, page := range pages {
		chunks = append(chunks, docModel.DocChunk{
			DocId:   doc.Id,
			ChunkId: utils.GetNewUUID(),
			Text:    page.Content,
			PageNum: page.Number,
			Order:   i,
		})
	}
	return chunks
}

func (p *Pipeline) indexChunks(ctx context.Context, docId string, chunks []docModel.DocChunk) error {
	for i := 0; i < len(chunks); i += embedBatchSize {
		end := i + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[i:end]

		texts := make([]string, len(batch))
		for j, c := range batch {
			texts[j] = c.Text
		}

		vectors, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch failed: %w", err)
		}
		if err := p.index.UpsertBatch(ctx, docId, batch, vectors); err != nil {
			return fmt.Errorf("upserting batch failed: %w", err)
		}
	}
	return nil
}

func (p *Pipeline) fail(ctx context.Context, doc docModel.Document, pageCount int, cause error) error {
	logger.Error("Document ingestion failed", "docId", doc.Id, "error", cause)
	if err := p.docs.UpdateStatus(ctx, doc.Id, docModel.StatusFailed, pageCount); err != nil {
		logger.Error("could not mark document failed", "docId", doc.Id, "error", err)
		return errors.Join(cause, err)
	}
	return cause
}

func transition(doc docModel.Document, to docModel.UploadStatus) error {
	if _, err := doc.Status.Transition(to); err != nil {
		return fmt.Errorf("document %s: %w", doc.Id, err)
	}
	return nil
}
