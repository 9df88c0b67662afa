package repository

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseID decodes a hex document id. Both store implementations key items by
// ObjectID, so anything rejected here is malformed for every backend.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}
