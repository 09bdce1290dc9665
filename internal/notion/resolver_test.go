package notion

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

type countingRetriever struct {
	calls int64
	db    *Database
	err   error
}

func (c *countingRetriever) RetrieveDatabase(ctx context.Context, id string) (*Database, error) {
	atomic.AddInt64(&c.calls, 1)
	if c.err != nil {
		return nil, c.err
	}
	return c.db, nil
}

func TestResolveCachesResult(t *testing.T) {
	retriever := &countingRetriever{db: &Database{
		ID:          "db-1",
		DataSources: []DataSourceRef{{ID: "ds-1"}, {ID: "ds-2"}},
	}}
	resolver := NewResolver(retriever, NewDataSourceCache())

	for i := 0; i < 3; i++ {
		id, err := resolver.Resolve(context.Background(), "db-1")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if id != "ds-1" {
			t.Errorf("expected first data source, got %q", id)
		}
	}

	if calls := atomic.LoadInt64(&retriever.calls); calls != 1 {
		t.Errorf("expected one upstream lookup, got %d", calls)
	}
}

func TestResolveConcurrent(t *testing.T) {
	retriever := &countingRetriever{db: &Database{
		ID:          "db-1",
		DataSources: []DataSourceRef{{ID: "ds-1"}},
	}}
	cache := NewDataSourceCache()
	resolver := NewResolver(retriever, cache)

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := resolver.Resolve(context.Background(), "db-1")
			if err != nil {
				t.Errorf("Resolve failed: %v", err)
				return
			}
			if id != "ds-1" {
				t.Errorf("expected ds-1, got %q", id)
			}
		}()
	}
	wg.Wait()

	if cache.Len() != 1 {
		t.Errorf("expected exactly one cached entry, got %d", cache.Len())
	}
	// Concurrent misses may each hit upstream once, but never more than
	// the number of callers.
	if calls := atomic.LoadInt64(&retriever.calls); calls < 1 || calls > workers {
		t.Errorf("expected between 1 and %d lookups, got %d", workers, calls)
	}

	// A warm cache issues no further lookups.
	before := atomic.LoadInt64(&retriever.calls)
	if _, err := resolver.Resolve(context.Background(), "db-1"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if after := atomic.LoadInt64(&retriever.calls); after != before {
		t.Errorf("warm resolve hit upstream: %d -> %d", before, after)
	}
}

func TestResolveNoDataSource(t *testing.T) {
	retriever := &countingRetriever{db: &Database{ID: "db-empty"}}
	resolver := NewResolver(retriever, NewDataSourceCache())

	_, err := resolver.Resolve(context.Background(), "db-empty")
	if err == nil {
		t.Fatal("expected an error")
	}
	upstreamErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if upstreamErr.Kind != KindNoDataSource {
		t.Errorf("expected no-data-source kind, got %s", upstreamErr.Kind)
	}
}

func TestResolvePropagatesRetrieveError(t *testing.T) {
	retriever := &countingRetriever{err: &Error{Kind: KindNotFound, Message: "gone"}}
	resolver := NewResolver(retriever, NewDataSourceCache())

	_, err := resolver.Resolve(context.Background(), "db-1")
	if !IsNotFound(err) {
		t.Errorf("expected not-found passthrough, got %v", err)
	}
}
