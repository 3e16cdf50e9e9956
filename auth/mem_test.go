package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// In-memory store fakes. The maps are guarded so the concurrency tests can
// hammer them from multiple goroutines.

type memRevocations struct {
	mu  sync.Mutex
	ids map[uuid.UUID]time.Time
}

func newMemRevocations() *memRevocations {
	return &memRevocations{ids: make(map[uuid.UUID]time.Time)}
}

func (m *memRevocations) Revoke(_ context.Context, tokenID uuid.UUID, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ids[tokenID]; ok {
		return false, nil
	}
	m.ids[tokenID] = now
	return true, nil
}

func (m *memRevocations) IsRevoked(_ context.Context, tokenID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ids[tokenID]
	return ok, nil
}

type memWatermarks struct {
	mu    sync.Mutex
	marks map[uuid.UUID]time.Time
}

func newMemWatermarks() *memWatermarks {
	return &memWatermarks{marks: make(map[uuid.UUID]time.Time)}
}

func (m *memWatermarks) Bump(_ context.Context, accountID uuid.UUID, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if now.After(m.marks[accountID]) {
		m.marks[accountID] = now
	}
	return nil
}

func (m *memWatermarks) Get(_ context.Context, accountID uuid.UUID) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.marks[accountID], nil
}

type memAccounts struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{accounts: make(map[uuid.UUID]Account)}
}

func (m *memAccounts) add(a Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = a
}

func (m *memAccounts) remove(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, id)
}

func (m *memAccounts) FindByID(_ context.Context, accountID uuid.UUID) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[accountID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// testEnv wires a full lifecycle core over the fakes with the default
// 30m/30d lifetimes.
type testEnv struct {
	codec       *Codec
	revocations *memRevocations
	watermarks  *memWatermarks
	accounts    *memAccounts
	policy      *Policy
	issuer      *Issuer
	rotator     *Rotator
	subject     uuid.UUID
}

func newTestEnv() *testEnv {
	codec := NewCodec([]byte("test-secret"), 30*time.Minute, 30*24*time.Hour)
	revocations := newMemRevocations()
	watermarks := newMemWatermarks()
	accounts := newMemAccounts()

	policy := &Policy{Revocations: revocations, Watermarks: watermarks, Accounts: accounts}
	issuer := &Issuer{Codec: codec}
	rotator := &Rotator{Codec: codec, Policy: policy, Issuer: issuer, Revocations: revocations}

	subject := uuid.New()
	accounts.add(Account{ID: subject, Username: "taro", Email: "taro@example.com"})

	return &testEnv{
		codec:       codec,
		revocations: revocations,
		watermarks:  watermarks,
		accounts:    accounts,
		policy:      policy,
		issuer:      issuer,
		rotator:     rotator,
		subject:     subject,
	}
}
