package vector

import (
	"context"
	"fmt"
)

// Config selects and configures a vector index backend.
type Config struct {
	Provider string // "qdrant" or "pinecone"
	Host     string // qdrant host, or pinecone index host
	Port     int    // qdrant gRPC port
	Index    string // collection name (qdrant)
	APIKey   string // index API key (pinecone)
	TopK     int    // retrieval depth for the query pipeline
}

// Constructor builds a Repository from config.
type Constructor func(ctx context.Context, cfg Config) (Repository, error)

// Factory creates Repository instances from config. Backends register
// themselves at wiring time so this package stays free of driver imports.
type Factory struct {
	constructors map[string]Constructor
}

// NewFactory creates an empty factory.
func NewFactory() *Factory {
	return &Factory{constructors: make(map[string]Constructor)}
}

// Register adds a backend constructor under the given name.
func (f *Factory) Register(name string, ctor Constructor) {
	f.constructors[name] = ctor
}

// Create builds a Repository for the configured provider.
func (f *Factory) Create(ctx context.Context, cfg Config) (Repository, error) {
	ctor, ok := f.constructors[cfg.Provider]
	if !ok {
		names := make([]string, 0, len(f.constructors))
		for k := range f.constructors {
			names = append(names, k)
		}
		return nil, fmt.Errorf("unknown vector index provider %q (registered: %v)", cfg.Provider, names)
	}
	return ctor(ctx, cfg)
}
