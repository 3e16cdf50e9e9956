package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// WatermarkStore reads and advances the tokensValidFrom field on the user
// document. Bump uses $max so concurrent security events can never move the
// cutoff backwards.
type WatermarkStore struct {
	col *mongo.Collection
}

func NewWatermarkStore() *WatermarkStore {
	return &WatermarkStore{col: OpenCollection("users")}
}

func (s *WatermarkStore) Bump(ctx context.Context, accountID uuid.UUID, now time.Time) error {
	_, err := s.col.UpdateByID(ctx, accountID.String(), bson.M{
		"$max": bson.M{"tokensValidFrom": now.UTC()},
	})
	return err
}

func (s *WatermarkStore) Get(ctx context.Context, accountID uuid.UUID) (time.Time, error) {
	var doc struct {
		TokensValidFrom time.Time `bson:"tokensValidFrom"`
	}
	err := s.col.FindOne(ctx, bson.M{"_id": accountID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// A missing account has no watermark; the policy's existence
		// check rejects the token further down.
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return doc.TokensValidFrom, nil
}
