// Package objectstore contains the binary scientific-object store
// abstraction and its S3-compatible implementation. Objects are stored as
// JSON envelopes keyed by calculation task id; the envelope data is the
// transport-encoded payload produced by the packed codec.
package objectstore

import (
	"context"
	"errors"

	"matapi/internal/model"
)

// ErrNoObject reports that the store holds no materialized object for a task
// id. This is distinct from a document-level not-found: the task id may be
// perfectly valid in the index while its binary object was never written.
var ErrNoObject = errors.New("no object found")

// ObjectStore is the raw object fetch capability consumed by the retrieval
// core. Responses are opaque payload collections, not typed documents.
type ObjectStore interface {
	// FetchObject retrieves the raw payload for a task id. It fails with
	// ErrNoObject when the envelope is missing or carries no data field.
	FetchObject(ctx context.Context, taskID string) (model.RawObject, error)

	// PutObject stores a raw payload under a task id. Used by ingestion,
	// never by the retrieval path.
	PutObject(ctx context.Context, taskID string, payload model.RawObject) error
}
