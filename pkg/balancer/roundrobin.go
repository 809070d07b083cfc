// Package balancer selects backend endpoints for the request router.
package balancer

import (
	"errors"
	"strings"
	"sync/atomic"
)

// ErrNoEndpoints is returned when a balancer is built without backends
var ErrNoEndpoints = errors.New("no backend endpoints configured")

// Endpoint is one backend prediction server. No health state is tracked.
type Endpoint struct {
	BaseURL string
}

// RoundRobin cycles over a fixed, ordered endpoint list. The i-th call to Next
// returns endpoints[i mod len]; concurrent callers never share a cursor position.
type RoundRobin struct {
	endpoints []Endpoint
	cursor    atomic.Uint64
}

// NewRoundRobin builds a balancer over baseURLs in order. Duplicates are kept.
func NewRoundRobin(baseURLs []string) (*RoundRobin, error) {
	endpoints := make([]Endpoint, 0, len(baseURLs))
	for _, u := range baseURLs {
		u = strings.TrimRight(strings.TrimSpace(u), "/")
		if u == "" {
			continue
		}
		endpoints = append(endpoints, Endpoint{BaseURL: u})
	}
	if len(endpoints) == 0 {
		return nil, ErrNoEndpoints
	}
	return &RoundRobin{endpoints: endpoints}, nil
}

// Next claims the current cursor position and advances it
func (b *RoundRobin) Next() (int, Endpoint) {
	pos := b.cursor.Add(1) - 1
	idx := int(pos % uint64(len(b.endpoints)))
	return idx, b.endpoints[idx]
}

// Endpoints returns a copy of the configured endpoints
func (b *RoundRobin) Endpoints() []Endpoint {
	out := make([]Endpoint, len(b.endpoints))
	copy(out, b.endpoints)
	return out
}

func (b *RoundRobin) Len() int {
	return len(b.endpoints)
}
