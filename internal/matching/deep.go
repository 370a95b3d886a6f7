package matching

import "context"

// DeepSearcher is an optional secondary lookup consulted when fingerprint
// matching finds a strong signal but no corpus record. Implementations
// might query a remote index or a vector store.
type DeepSearcher interface {
	// Search returns candidates for the query, or an empty slice when the
	// backend has nothing. Errors are reported, not fatal; detection
	// degrades to fingerprint-only results.
	Search(ctx context.Context, query Query) ([]Candidate, error)
	// Enabled reports whether the backend is configured.
	Enabled() bool
}

// NoopDeepSearcher is the default DeepSearcher: always disabled.
type NoopDeepSearcher struct{}

func (NoopDeepSearcher) Search(context.Context, Query) ([]Candidate, error) { return nil, nil }

func (NoopDeepSearcher) Enabled() bool { return false }
