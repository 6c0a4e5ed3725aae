// Package retriever composes the chunker, embedder, and vector driver into
// the corpus indexing path and the per-query retrieval path.
package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/petalhealth/petal/pkg/chunker"
	"github.com/petalhealth/petal/pkg/embeddings"
	"github.com/petalhealth/petal/pkg/ingest"
	"github.com/petalhealth/petal/pkg/vector"
)

const (
	// DefaultTopK is the search result count when the caller passes zero.
	DefaultTopK = 5

	// embedBatchSize bounds how many chunk texts go to the embedder per call.
	embedBatchSize = 64
)

// Retriever orchestrates chunk loading, embedding, and indexing offline, and
// query embedding, search, and deduplication online.
type Retriever struct {
	chunker  *chunker.Chunker
	embedder embeddings.Embedder
	driver   vector.Driver
	loader   *ingest.Loader
	logger   *slog.Logger

	// mu serializes destructive collection rebuilds against concurrent
	// retrievals so a query never reads a partially-rebuilt collection.
	mu sync.RWMutex
}

// New creates a Retriever from its injected components.
func New(c *chunker.Chunker, e embeddings.Embedder, d vector.Driver, l *ingest.Loader, logger *slog.Logger) *Retriever {
	return &Retriever{
		chunker:  c,
		embedder: e,
		driver:   d,
		loader:   l,
		logger:   logger,
	}
}

// IndexStats reports the outcome of an ingestion run.
type IndexStats struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
	Skipped   int `json:"skipped"`
}

// IndexCorpus walks root, loads supported documents, chunks and embeds them,
// and upserts the result into the vector collection.
//
// With rebuild=true the collection is dropped and recreated first, holding
// the write lock for the whole run. With rebuild=false the collection is
// created only if missing; calling IndexCorpus twice without a rebuild
// duplicates entries — callers must rebuild (or clear) first if they want a
// fresh index.
func (r *Retriever) IndexCorpus(ctx context.Context, root string, rebuild bool) (*IndexStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dim := r.embedder.Dimensions()
	if rebuild {
		if err := r.driver.Recreate(ctx, dim); err != nil {
			return nil, fmt.Errorf("recreating collection: %w", err)
		}
	} else {
		if err := r.driver.EnsureCollection(ctx, dim); err != nil {
			return nil, fmt.Errorf("ensuring collection: %w", err)
		}
	}

	docs, skipped, err := r.loader.LoadDir(root)
	if err != nil {
		return nil, err
	}

	stats := &IndexStats{Documents: len(docs), Skipped: skipped}
	for _, doc := range docs {
		chunks := r.chunker.Split(doc.Text)
		if len(chunks) == 0 {
			continue
		}

		if err := r.indexChunks(ctx, doc, chunks); err != nil {
			return nil, err
		}
		stats.Chunks += len(chunks)
	}

	r.logger.Info("corpus indexed",
		"documents", stats.Documents,
		"chunks", stats.Chunks,
		"skipped", stats.Skipped,
		"rebuild", rebuild,
	)
	return stats, nil
}

// indexChunks embeds a document's chunks in batches and upserts them.
func (r *Retriever) indexChunks(ctx context.Context, doc ingest.Document, chunks []string) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		batch := chunks[start:end]

		vectors, err := r.embedder.Embed(ctx, batch)
		if err != nil {
			return fmt.Errorf("embedding chunks of %s: %w", doc.Path, err)
		}

		entries := make([]vector.Entry, len(batch))
		for i, text := range batch {
			entries[i] = vector.Entry{
				ID:     uuid.NewString(),
				Vector: vectors[i],
				Passage: vector.Passage{
					Text: text,
					Metadata: vector.Metadata{
						Source: doc.Path,
						Title:  doc.Title,
					},
				},
			}
		}

		if err := r.driver.Upsert(ctx, entries); err != nil {
			return fmt.Errorf("upserting chunks of %s: %w", doc.Path, err)
		}
	}
	return nil
}

// Retrieve embeds query and returns the index's top-k passages. Ordering is
// the index's responsibility; no re-ranking happens here.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK uint64) ([]vector.ScoredPassage, error) {
	if topK == 0 {
		topK = DefaultTopK
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	vec, err := embeddings.EmbedOne(ctx, r.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := r.driver.Search(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	r.logger.Debug("retrieved passages", "query", query, "results", len(results))
	return results, nil
}

// Deduplicate removes passages sharing a (source, page) key, keeping the
// first occurrence in order. It is idempotent and is the single dedup policy
// applied wherever citations are rendered.
func Deduplicate(passages []vector.Passage) []vector.Passage {
	type key struct{ source, page string }

	seen := make(map[key]bool, len(passages))
	out := make([]vector.Passage, 0, len(passages))
	for _, p := range passages {
		k := key{p.Metadata.Source, p.Metadata.Page}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}

// Passages strips scores from search results.
func Passages(scored []vector.ScoredPassage) []vector.Passage {
	out := make([]vector.Passage, len(scored))
	for i, s := range scored {
		out[i] = s.Passage
	}
	return out
}
