package repositories

import (
	"github.com/shashiranjanraj/propelyu/pkg/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseID converts a 24-char hex id. Malformed ids are Unprocessable.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Unprocessable("invalid id %q", id)
	}
	return oid, nil
}
