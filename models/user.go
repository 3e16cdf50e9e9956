package models

import "time"

type User struct {
	ID           string `bson:"_id" json:"id"`
	Username     string `bson:"username" json:"username"`
	Email        string `bson:"email" json:"email"`
	PasswordHash string `bson:"passwordHash" json:"-"` // never expose
	IsAdmin      bool   `bson:"isAdmin" json:"is_admin"`
	// Tokens issued before this instant are void. Set at registration,
	// advanced only by security events (password change, full logout).
	TokensValidFrom time.Time `bson:"tokensValidFrom" json:"-"`
	CreatedAt       time.Time `bson:"createdAt" json:"-"`
}

// RevokedToken marks a single token id as permanently rejected. Documents
// are insert-only and aged out by the TTL index on recordedAt.
type RevokedToken struct {
	JTI        string    `bson:"_id"`
	RecordedAt time.Time `bson:"recordedAt"`
}
