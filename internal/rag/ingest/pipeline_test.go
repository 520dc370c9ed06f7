package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paperchat/paperchat/internal/data/store"
	"github.com/paperchat/paperchat/internal/domain/docModel"
	"github.com/paperchat/paperchat/internal/objstore"
	"github.com/paperchat/paperchat/pkg/logx"
)

type mockFetcher struct {
	OnFetch func(ctx context.Context, ref objstore.Ref) ([]byte, error)
}

func (m *mockFetcher) Fetch(ctx context.Context, ref objstore.Ref) ([]byte, error) {
	if m.OnFetch != nil {
		return m.OnFetch(ctx, ref)
	}
	return []byte("raw bytes"), nil
}

type mockEmbedder struct {
	BatchCalls int32
	OnBatch    func(texts []string) ([][]float32, error)
}

func (m *mockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	atomic.AddInt32(&m.BatchCalls, 1)
	if m.OnBatch != nil {
		return m.OnBatch(texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(i)}
	}
	return vectors, nil
}

type mockIndex struct {
	UpsertedNamespace string
	UpsertedChunks    []docModel.DocChunk
	OnUpsert          func(namespace string, chunks []docModel.DocChunk, vectors [][]float32) error
}

func (m *mockIndex) EnsureReady(ctx context.Context) error { return nil }

func (m *mockIndex) UpsertBatch(ctx context.Context, namespace string, chunks []docModel.DocChunk, vectors [][]float32) error {
	m.UpsertedNamespace = namespace
	m.UpsertedChunks = append(m.UpsertedChunks, chunks...)
	if m.OnUpsert != nil {
		return m.OnUpsert(namespace, chunks, vectors)
	}
	return nil
}

func (m *mockIndex) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]docModel.ScoredChunk, error) {
	return nil, nil
}

func (m *mockIndex) DeleteNamespace(ctx context.Context, namespace string) error { return nil }

func pagesOf(n int) []docModel.Page {
	pages := make([]docModel.Page, n)
	for i := range pages {
		pages[i] = docModel.Page{Number: i + 1, Content: fmt.Sprintf("page %d text", i+1)}
	}
	return pages
}

func newTestPipeline(fetcher *mockFetcher, embedder *mockEmbedder, index *mockIndex, docs store.DocumentStore, pages int, extractErr error) *Pipeline {
	logger = logx.NewLogger("ingest test")
	return &Pipeline{
		fetcher:  fetcher,
		embedder: embedder,
		index:    index,
		docs:     docs,
		extract: func(name string, data []byte) ([]docModel.Page, error) {
			if extractErr != nil {
				return nil, extractErr
			}
			return pagesOf(pages), nil
		},
	}
}

func processingDoc(t *testing.T, docs store.DocumentStore) docModel.Document {
	t.Helper()
	doc := docModel.Document{
		Id:        "doc-1",
		UserId:    "user-1",
		Name:      "notes.pdf",
		URL:       "https://uploads.example.com/notes.pdf",
		Status:    docModel.StatusProcessing,
		CreatedAt: time.Now(),
	}
	if err := docs.Create(context.Background(), doc); err != nil {
		t.Fatalf("seeding document: %v", err)
	}
	return doc
}

func currentStatus(t *testing.T, docs store.DocumentStore, doc docModel.Document) docModel.UploadStatus {
	t.Helper()
	status, err := docs.GetStatus(context.Background(), doc.Id, doc.UserId)
	if err != nil {
		t.Fatalf("reading status: %v", err)
	}
	return status
}

func TestPipeline_SuccessfulIngest(t *testing.T) {
	docs := store.InitInMemoryDocumentStore()
	embedder := &mockEmbedder{}
	index := &mockIndex{}
	p := newTestPipeline(&mockFetcher{}, embedder, index, docs, 3, nil)
	doc := processingDoc(t, docs)

	if err := p.Run(context.Background(), doc, docModel.PlanFree); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if got := currentStatus(t, docs, doc); got != docModel.StatusSuccess {
		t.Errorf("status = %s, want SUCCESS", got)
	}
	if index.UpsertedNamespace != doc.Id {
		t.Errorf("namespace = %q, want the document id %q", index.UpsertedNamespace, doc.Id)
	}
	if len(index.UpsertedChunks) != 3 {
		t.Errorf("upserted %d chunks, want one per page (3)", len(index.UpsertedChunks))
	}
	for i, chunk := range index.UpsertedChunks {
		if chunk.PageNum != i+1 || chunk.Order != i {
			t.Errorf("chunk %d has page %d order %d", i, chunk.PageNum, chunk.Order)
		}
	}

	stored, err := docs.GetByID(context.Background(), doc.Id, doc.UserId)
	if err != nil {
		t.Fatalf("reading document: %v", err)
	}
	if stored.PageCount != 3 {
		t.Errorf("page count = %d, want 3", stored.PageCount)
	}
}

func TestPipeline_QuotaExceededBeforeEmbedding(t *testing.T) {
	docs := store.InitInMemoryDocumentStore()
	embedder := &mockEmbedder{}
	p := newTestPipeline(&mockFetcher{}, embedder, &mockIndex{}, docs, docModel.PlanFree.MaxPagesPerDoc+1, nil)
	doc := processingDoc(t, docs)

	err := p.Run(context.Background(), doc, docModel.PlanFree)
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("error = %v, want ErrQuotaExceeded", err)
	}

	if got := atomic.LoadInt32(&embedder.BatchCalls); got != 0 {
		t.Errorf("embedder was called %d times, quota must be checked first", got)
	}
	if got := currentStatus(t, docs, doc); got != docModel.StatusFailed {
		t.Errorf("status = %s, want FAILED", got)
	}

	stored, _ := docs.GetByID(context.Background(), doc.Id, doc.UserId)
	if stored.PageCount != docModel.PlanFree.MaxPagesPerDoc+1 {
		t.Errorf("page count = %d, the real count should be recorded even on failure", stored.PageCount)
	}
}

func TestPipeline_FetchFailure(t *testing.T) {
	docs := store.InitInMemoryDocumentStore()
	fetcher := &mockFetcher{OnFetch: func(ctx context.Context, ref objstore.Ref) ([]byte, error) {
		return nil, errors.New("connection refused")
	}}
	p := newTestPipeline(fetcher, &mockEmbedder{}, &mockIndex{}, docs, 1, nil)
	doc := processingDoc(t, docs)

	err := p.Run(context.Background(), doc, docModel.PlanFree)
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("error = %v, want ErrFetch", err)
	}
	if got := currentStatus(t, docs, doc); got != docModel.StatusFailed {
		t.Errorf("status = %s, want FAILED", got)
	}
}

func TestPipeline_ExtractionFailure(t *testing.T) {
	docs := store.InitInMemoryDocumentStore()
	p := newTestPipeline(&mockFetcher{}, &mockEmbedder{}, &mockIndex{}, docs, 0, errors.New("garbled bytes"))
	doc := processingDoc(t, docs)

	err := p.Run(context.Background(), doc, docModel.PlanFree)
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("error = %v, want ErrExtraction", err)
	}
	if got := currentStatus(t, docs, doc); got != docModel.StatusFailed {
		t.Errorf("status = %s, want FAILED", got)
	}
}

func TestPipeline_EmptyExtractionFails(t *testing.T) {
	docs := store.InitInMemoryDocumentStore()
	p := newTestPipeline(&mockFetcher{}, &mockEmbedder{}, &mockIndex{}, docs, 0, nil)
	doc := processingDoc(t, docs)

	if err := p.Run(context.Background(), doc, docModel.PlanFree); !errors.Is(err, ErrExtraction) {
		t.Fatalf("error = %v, want ErrExtraction for a document with no extractable pages", err)
	}
}

func TestPipeline_IndexingFailure(t *testing.T) {
	docs := store.InitInMemoryDocumentStore()
	index := &mockIndex{OnUpsert: func(namespace string, chunks []docModel.DocChunk, vectors [][]float32) error {
		return errors.New("qdrant unavailable")
	}}
	p := newTestPipeline(&mockFetcher{}, &mockEmbedder{}, index, docs, 2, nil)
	doc := processingDoc(t, docs)

	err := p.Run(context.Background(), doc, docModel.PlanFree)
	if !errors.Is(err, ErrIndexing) {
		t.Fatalf("error = %v, want ErrIndexing", err)
	}
	if got := currentStatus(t, docs, doc); got != docModel.StatusFailed {
		t.Errorf("status = %s, want FAILED", got)
	}
}

func TestGetDocType(t *testing.T) {
	cases := []struct {
		name string
		want docModel.DocType
	}{
		{"report.pdf", docModel.PDF},
		{"REPORT.PDF", docModel.PDF},
		{"essay.docx", docModel.DOCX},
		{"notes.txt", docModel.DOCX},
		{"memo.rtf", docModel.DOCX},
		{"archive.zip", docModel.ERR},
		{"noextension", docModel.ERR},
	}
	for _, tc := range cases {
		if got := getDocType(tc.name); got != tc.want {
			t.Errorf("getDocType(%q) = %s, want %s", tc.name, got, tc.want)
		}
	}
}
