package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/kazmori/sneakstore/auth"
	"github.com/kazmori/sneakstore/models"
)

// AccountStore resolves token subjects against the users collection.
type AccountStore struct {
	col *mongo.Collection
}

func NewAccountStore() *AccountStore {
	return &AccountStore{col: OpenCollection("users")}
}

func (s *AccountStore) FindByID(ctx context.Context, accountID uuid.UUID) (*auth.Account, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"_id": accountID.String()}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(user.ID)
	if err != nil {
		return nil, fmt.Errorf("corrupt account id %q: %w", user.ID, err)
	}
	return &auth.Account{
		ID:       id,
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
	}, nil
}
