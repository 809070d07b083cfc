package artifact

import (
	"context"
	"errors"
	"time"
)

// Reader loads and validates the artifact currently published at a source
type Reader struct {
	source  Source
	timeout time.Duration
}

// NewReader creates a reader; timeout bounds each fetch (0 means no bound)
func NewReader(source Source, timeout time.Duration) *Reader {
	return &Reader{source: source, timeout: timeout}
}

func (r *Reader) Location() string {
	return r.source.Location()
}

// Load fetches and decodes the artifact. Every failure is a *LoadError.
func (r *Reader) Load(ctx context.Context) (*Artifact, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	data, err := r.source.Fetch(ctx)
	if err != nil {
		kind := LoadIO
		if errors.Is(err, ErrNotFound) {
			kind = LoadNotFound
		}
		return nil, &LoadError{Kind: kind, Location: r.source.Location(), Err: err}
	}

	a, err := Decode(data)
	if err != nil {
		return nil, &LoadError{Kind: LoadCorrupt, Location: r.source.Location(), Err: err}
	}
	return a, nil
}
