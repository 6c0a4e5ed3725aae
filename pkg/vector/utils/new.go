// Package vectorutils is the vector store utility package
package vectorutils

import (
	"fmt"
	"log/slog"

	"github.com/petalhealth/petal/pkg/vector"
	"github.com/petalhealth/petal/pkg/vector/memory"
	"github.com/petalhealth/petal/pkg/vector/qdrant"
)

type NewDriverOpts struct {
	ProviderType string
	Host         string
	Port         int
	APIKey       string
	UseTLS       bool
	Collection   string
	Logger       *slog.Logger
}

func NewDriver(o *NewDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case "qdrant":
		return qdrant.NewDriver(qdrant.Config{
			Host:           o.Host,
			Port:           o.Port,
			APIKey:         o.APIKey,
			UseTLS:         o.UseTLS,
			CollectionName: o.Collection,
		}, o.Logger)
	case "memory":
		return memory.NewDriver(), nil
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
