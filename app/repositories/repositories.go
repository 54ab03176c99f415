// Package repositories persists the turnos models in MongoDB.
//
// Finders return (nil, nil) when nothing matches so services decide what a
// miss means. Store failures are wrapped with the operation that failed.
package repositories

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned by writes that matched no document.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicateKey is returned when a unique index rejects a write.
	ErrDuplicateKey = errors.New("duplicate key")
)

func notFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
