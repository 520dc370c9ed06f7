package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"

	"github.com/paperchat/paperchat/internal/domain/docModel"
)

func getDocType(name string) docModel.DocType {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".pdf":
		return docModel.PDF
	case ".docx", ".txt", ".rtf":
		return docModel.DOCX
	default:
		return docModel.ERR
	}
}

func extractText(name string, data []byte) ([]docModel.Page, error) {
	switch getDocType(name) {
	case docModel.PDF:
		return extractPDF(data)
	case docModel.DOCX:
		return extractDocxTxtRtf(name, data)
	default:
		return nil, fmt.Errorf("unsupported content type: %s", filepath.Ext(name))
	}
}

func extractPDF(data []byte) ([]docModel.Page, error) {
	f, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		logger.Error("failed opening of pdf file", "error", err)
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []docModel.Page
	numPages := f.NumPage()
	logger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			logger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}

		pages = append(pages, docModel.Page{
			Number:  i,
			Content: content,
		})
	}
	return pages, nil
}

// extractDocxTxtRtf hands the bytes to cat, which only reads from disk, so
// they pass through a temp file. Everything lands on one page; docx has no
// usable page boundaries.
func extractDocxTxtRtf(name string, data []byte) ([]docModel.Page, error) {
	tmp, err := os.CreateTemp("", "paperchat-*"+filepath.Ext(name))
	if err != nil {
		return nil, fmt.Errorf("failed to stage doc: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to stage doc: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to stage doc: %w", err)
	}

	text, err := cat.File(tmp.Name())
	if err != nil {
		logger.Error("Error extracting content from doc", "error", err)
		return nil, fmt.Errorf("failed to extract docx: %w", err)
	}

	return []docModel.Page{
		{
			Number:  1,
			Content: text,
		},
	}, nil
}

// protectExtract guards against pdf pages that make GetPlainText spin
// forever on malformed content streams.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		logger.Error("page extraction timed out")
		return "", errors.New("timeout")
	}
}
