package imaging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"
)

// File is one upload of a batch.
type File struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// BatchResult is the outcome for one file of a batch, in input order.
type BatchResult struct {
	Name   string
	Result Result
	Err    error
}

// IngestBatch ingests files as independent tasks. A failing file is reported in
// its BatchResult and never stops the others.
func (p *Pipeline) IngestBatch(ctx context.Context, files []File) []BatchResult {
	results := make([]BatchResult, len(files))

	g := new(errgroup.Group)
	if p.Workers > 0 {
		g.SetLimit(p.Workers)
	}

	for i, f := range files {
		results[i].Name = f.Name

		g.Go(func() error {
			res, err := p.ingestFile(ctx, f)
			results[i].Result = res
			results[i].Err = err

			return nil
		})
	}

	_ = g.Wait()

	return results
}

func (p *Pipeline) ingestFile(ctx context.Context, f File) (Result, error) {
	rc, err := f.Open()
	if err != nil {
		return Result{}, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()

	contentType := f.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		head := make([]byte, 512) //nolint:mnd
		n, _ := io.ReadFull(rc, head)
		head = head[:n]
		contentType = http.DetectContentType(head)

		rc = readCloser{Reader: io.MultiReader(bytes.NewReader(head), rc), Closer: rc}
	}

	if !strings.HasPrefix(contentType, "image/") {
		return Result{}, fmt.Errorf("%w: %s (%s)", ErrNotImage, f.Name, contentType)
	}

	return p.Ingest(ctx, f.Name, rc)
}

type readCloser struct {
	io.Reader
	io.Closer
}
