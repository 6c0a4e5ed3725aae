package embeddings

import "errors"

// ErrEmbedding is returned when embedding generation fails. It is a distinct
// error kind so callers can retry the underlying model call instead of
// mistaking the failure for an empty result.
var ErrEmbedding = errors.New("embedding failed")
