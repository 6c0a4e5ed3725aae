// Package api provides the HTTP API server for the petal answer pipeline.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string

	// CorpusRoot is the document tree indexed by the reindex endpoint.
	CorpusRoot string
}
