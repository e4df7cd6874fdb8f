package store

import (
	"context"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/emergent/internal/memory"
	"github.com/fyrsmithlabs/emergent/internal/vsa"
)

// ChromemIndexConfig configures the embedded similarity index.
type ChromemIndexConfig struct {
	// Path is the directory for persistent storage. Empty keeps the
	// index in memory only.
	Path string `koanf:"path"`

	// Collection is the collection name. Default: "emergent_concepts".
	Collection string `koanf:"collection"`

	// Compress enables gzip compression for persisted data.
	Compress bool `koanf:"compress"`
}

// ApplyDefaults sets default values for unset fields.
func (c *ChromemIndexConfig) ApplyDefaults() {
	if c.Collection == "" {
		c.Collection = "emergent_concepts"
	}
}

// ChromemIndex mirrors concept vectors into an embedded chromem-go
// collection and answers nearest-concept queries. The index is advisory:
// the memory graph remains the source of truth, and index failures never
// corrupt it.
type ChromemIndex struct {
	mu         sync.Mutex
	db         *chromem.DB
	collection *chromem.Collection
	logger     *zap.Logger
}

var _ memory.Index = (*ChromemIndex)(nil)

// NewChromemIndex creates the index, persisting to cfg.Path when set.
func NewChromemIndex(cfg ChromemIndexConfig, logger *zap.Logger) (*ChromemIndex, error) {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		db  *chromem.DB
		err error
	)
	if cfg.Path != "" {
		db, err = chromem.NewPersistentDB(cfg.Path, cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("opening chromem db: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	// Embeddings are always supplied explicitly; the embedding func must
	// never be called.
	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, rejectEmbedding)
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	return &ChromemIndex{
		db:         db,
		collection: collection,
		logger:     logger,
	}, nil
}

// Add inserts or replaces the concept's vector in the index.
func (x *ChromemIndex) Add(ctx context.Context, id, content string, vec vsa.Vector) error {
	if id == "" || len(vec) == 0 {
		return fmt.Errorf("%w: id and vector are required", ErrInvalidConfig)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	err := x.collection.AddDocument(ctx, chromem.Document{
		ID:        id,
		Content:   content,
		Embedding: toFloat32(vec),
	})
	if err != nil {
		return fmt.Errorf("indexing concept: %w", err)
	}
	return nil
}

// Query returns the k concepts nearest to vec, ordered by similarity.
func (x *ChromemIndex) Query(ctx context.Context, vec vsa.Vector, k int) ([]memory.IndexMatch, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	count := x.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}
	if k <= 0 {
		k = 1
	}

	results, err := x.collection.QueryEmbedding(ctx, toFloat32(vec), k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	matches := make([]memory.IndexMatch, len(results))
	for i, r := range results {
		matches[i] = memory.IndexMatch{
			ID:         r.ID,
			Content:    r.Content,
			Similarity: float64(r.Similarity),
		}
	}
	return matches, nil
}

func rejectEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, fmt.Errorf("index documents must carry explicit embeddings")
}

func toFloat32(v vsa.Vector) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
