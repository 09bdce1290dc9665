package notion

import (
	"context"
	"sync"
)

// DataSourceCache memoizes database id → data-source id lookups for the
// life of the process. Entries are never evicted; a race between two
// concurrent misses writes the same deterministic value twice, which is
// harmless.
type DataSourceCache struct {
	mu  sync.RWMutex
	ids map[string]string
}

func NewDataSourceCache() *DataSourceCache {
	return &DataSourceCache{ids: make(map[string]string)}
}

func (c *DataSourceCache) get(databaseID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.ids[databaseID]
	return id, ok
}

func (c *DataSourceCache) set(databaseID, dataSourceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[databaseID] = dataSourceID
}

// Len reports how many databases have been resolved so far.
func (c *DataSourceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ids)
}

// DatabaseRetriever is the slice of the client the resolver needs.
type DatabaseRetriever interface {
	RetrieveDatabase(ctx context.Context, id string) (*Database, error)
}

// Resolver discovers the data-source id behind a database id, caching
// results in an injected cache.
type Resolver struct {
	retriever DatabaseRetriever
	cache     *DataSourceCache
}

func NewResolver(retriever DatabaseRetriever, cache *DataSourceCache) *Resolver {
	return &Resolver{retriever: retriever, cache: cache}
}

// Resolve returns the data-source id for databaseID. Only the first
// declared data source is ever used; databases with several are out of
// scope. A database with none yields a KindNoDataSource error.
func (r *Resolver) Resolve(ctx context.Context, databaseID string) (string, error) {
	if id, ok := r.cache.get(databaseID); ok {
		return id, nil
	}

	db, err := r.retriever.RetrieveDatabase(ctx, databaseID)
	if err != nil {
		return "", err
	}
	if len(db.DataSources) == 0 {
		return "", &Error{Kind: KindNoDataSource, Message: "database " + databaseID + " declares no data sources"}
	}

	id := db.DataSources[0].ID
	r.cache.set(databaseID, id)
	return id, nil
}
