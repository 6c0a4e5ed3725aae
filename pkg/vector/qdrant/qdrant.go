// Package qdrant provides a Qdrant vector database driver implementation
// backed by the official gRPC client.
package qdrant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/qdrant/go-client/qdrant"

	"github.com/petalhealth/petal/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection for passage embeddings.
	DefaultCollectionName = "petal"

	// DefaultPort is Qdrant's default gRPC port.
	DefaultPort = 6334
)

// Driver implements vector.Driver using Qdrant.
type Driver struct {
	client     *qdrant.Client
	collection string
	dimensions uint64
	logger     *slog.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Host is the Qdrant server host (e.g., "localhost").
	Host string

	// Port is the gRPC port. Defaults to DefaultPort if zero.
	Port int

	// APIKey authenticates against Qdrant Cloud. Optional.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool

	// CollectionName is the name of the collection to use.
	// Defaults to DefaultCollectionName if empty.
	CollectionName string
}

// NewDriver creates a new Qdrant vector driver.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	if c.Host == "" {
		return nil, fmt.Errorf("qdrant host is required")
	}

	port := c.Port
	if port == 0 {
		port = DefaultPort
	}

	collection := c.CollectionName
	if collection == "" {
		collection = DefaultCollectionName
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   c.Host,
		Port:   port,
		APIKey: c.APIKey,
		UseTLS: c.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to qdrant: %v", vector.ErrUnavailable, err)
	}

	logger.Info("connected to qdrant",
		"host", c.Host,
		"port", port,
		"collection", collection,
	)

	return &Driver{
		client:     client,
		collection: collection,
		logger:     logger,
	}, nil
}

// EnsureCollection creates the collection if it does not exist.
func (d *Driver) EnsureCollection(ctx context.Context, dimensions uint64) error {
	exists, err := d.client.CollectionExists(ctx, d.collection)
	if err != nil {
		return fmt.Errorf("%w: checking collection %q: %v", vector.ErrUnavailable, d.collection, err)
	}

	if !exists {
		if err := d.createCollection(ctx, dimensions); err != nil {
			return err
		}
		d.logger.Info("created collection", "collection", d.collection, "dimensions", dimensions)
	}

	d.dimensions = dimensions
	return nil
}

// Recreate drops and recreates the collection. Destructive and explicit:
// every stored entry is lost.
func (d *Driver) Recreate(ctx context.Context, dimensions uint64) error {
	exists, err := d.client.CollectionExists(ctx, d.collection)
	if err != nil {
		return fmt.Errorf("%w: checking collection %q: %v", vector.ErrUnavailable, d.collection, err)
	}

	if exists {
		if err := d.client.DeleteCollection(ctx, d.collection); err != nil {
			return fmt.Errorf("%w: deleting collection %q: %v", vector.ErrUnavailable, d.collection, err)
		}
	}

	if err := d.createCollection(ctx, dimensions); err != nil {
		return err
	}

	d.dimensions = dimensions
	d.logger.Info("recreated collection", "collection", d.collection, "dimensions", dimensions)
	return nil
}

func (d *Driver) createCollection(ctx context.Context, dimensions uint64) error {
	err := d.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: d.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimensions,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: creating collection %q: %v", vector.ErrUnavailable, d.collection, err)
	}
	return nil
}

// Upsert stores entries in the collection.
func (d *Driver) Upsert(ctx context.Context, entries []vector.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(entries))
	for i, e := range entries {
		if d.dimensions != 0 && uint64(len(e.Vector)) != d.dimensions {
			return fmt.Errorf("%w: entry %s has %d dimensions, collection has %d",
				vector.ErrDimensionMismatch, e.ID, len(e.Vector), d.dimensions)
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(e.ID),
			Vectors: qdrant.NewVectors(e.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"text": e.Passage.Text,
				"metadata": map[string]any{
					"source": e.Passage.Metadata.Source,
					"page":   e.Passage.Metadata.Page,
					"title":  e.Passage.Metadata.Title,
				},
			}),
		}
	}

	_, err := d.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: d.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("%w: upserting %d points: %v", vector.ErrUnavailable, len(points), err)
	}

	d.logger.Debug("upserted points", "count", len(points))
	return nil
}

// Search returns up to limit passages ordered by descending score.
func (d *Driver) Search(ctx context.Context, vec []float32, limit uint64) ([]vector.ScoredPassage, error) {
	if limit == 0 {
		limit = 5
	}

	points, err := d.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: d.collection,
		Query:          qdrant.NewQuery(vec...),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(false),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: querying collection %q: %v", vector.ErrUnavailable, d.collection, err)
	}

	results := make([]vector.ScoredPassage, 0, len(points))
	for _, p := range points {
		results = append(results, vector.ScoredPassage{
			Score:   p.GetScore(),
			Passage: passageFromPayload(p.GetPayload()),
		})
	}

	d.logger.Debug("queried qdrant", "results", len(results))
	return results, nil
}

// passageFromPayload reconstructs a Passage from a Qdrant point payload.
func passageFromPayload(payload map[string]*qdrant.Value) vector.Passage {
	p := vector.Passage{}
	if v, ok := payload["text"]; ok {
		p.Text = v.GetStringValue()
	}
	if v, ok := payload["metadata"]; ok {
		fields := v.GetStructValue().GetFields()
		if s, ok := fields["source"]; ok {
			p.Metadata.Source = s.GetStringValue()
		}
		if pg, ok := fields["page"]; ok {
			p.Metadata.Page = pg.GetStringValue()
		}
		if t, ok := fields["title"]; ok {
			p.Metadata.Title = t.GetStringValue()
		}
	}
	return p
}

// Close releases the gRPC connection.
func (d *Driver) Close() error {
	return d.client.Close()
}

// Ensure Driver implements vector.Driver
var _ vector.Driver = (*Driver)(nil)
