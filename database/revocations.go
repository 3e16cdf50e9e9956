package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/kazmori/sneakstore/models"
	"github.com/kazmori/sneakstore/utils"
)

// RevocationStore keeps revoked token ids in the revoked_tokens collection,
// one document per id with the jti as _id. The unique _id gives the
// insert-if-absent semantics rotation relies on.
type RevocationStore struct {
	col *mongo.Collection
}

func NewRevocationStore() *RevocationStore {
	return &RevocationStore{col: OpenCollection("revoked_tokens")}
}

func (s *RevocationStore) Revoke(ctx context.Context, tokenID uuid.UUID, now time.Time) (bool, error) {
	_, err := s.col.InsertOne(ctx, models.RevokedToken{
		JTI:        tokenID.String(),
		RecordedAt: now.UTC(),
	})
	if err != nil {
		if utils.IsDuplicateKey(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID uuid.UUID) (bool, error) {
	err := s.col.FindOne(ctx, bson.M{"_id": tokenID.String()}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
