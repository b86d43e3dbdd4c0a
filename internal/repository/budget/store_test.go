package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/policyqa/internal/db"
)

func TestStore_IncrBy_SetsTTLOnce(t *testing.T) {
	ms := newMockStore()
	s := New(ms, 0, 0)

	key := "policyqa:budget:openai:daily:2026-03-14"
	if err := s.IncrBy(context.Background(), key, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.IncrBy(context.Background(), key, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ms.values[key] != 12 {
		t.Errorf("value = %d, want 12", ms.values[key])
	}
	if ms.ttls[key] != DefaultDailyTTL {
		t.Errorf("ttl = %v, want %v", ms.ttls[key], DefaultDailyTTL)
	}
	if ms.expireCalls != 2 || !ms.allNX {
		t.Errorf("expected EXPIRE NX on every increment, got calls=%d nx=%v", ms.expireCalls, ms.allNX)
	}
}

func TestStore_TTLByPeriod(t *testing.T) {
	s := New(newMockStore(), time.Hour, 2*time.Hour)
	tests := map[string]time.Duration{
		"policyqa:budget:openai:daily:2026-03-14": time.Hour,
		"policyqa:budget:openai:monthly:2026-03":  2 * time.Hour,
	}
	for key, want := range tests {
		if got := s.ttlFor(key); got != want {
			t.Errorf("ttlFor(%s) = %v, want %v", key, got, want)
		}
	}
}

func TestStore_Get(t *testing.T) {
	ms := newMockStore()
	ms.raw["k"] = []byte("42")
	ms.raw["bad"] = []byte("forty")
	s := New(ms, 0, 0)

	if v, err := s.Get(context.Background(), "k"); err != nil || v != 42 {
		t.Errorf("Get(k) = %d, %v", v, err)
	}
	if v, err := s.Get(context.Background(), "missing"); err != nil || v != 0 {
		t.Errorf("Get(missing) = %d, %v; want 0, nil", v, err)
	}
	if _, err := s.Get(context.Background(), "bad"); err == nil {
		t.Error("expected parse error")
	}
}

func TestStore_Errors(t *testing.T) {
	ms := newMockStore()
	ms.err = errors.New("connection refused")
	s := New(ms, 0, 0)

	if err := s.IncrBy(context.Background(), "k", 1); err == nil {
		t.Error("expected IncrBy error")
	}
	if _, err := s.Get(context.Background(), "k"); err == nil {
		t.Error("expected Get error")
	}
}

// --- Mocks ---

type mockStore struct {
	values      map[string]int64
	raw         map[string][]byte
	ttls        map[string]time.Duration
	expireCalls int
	allNX       bool
	err         error
}

func newMockStore() *mockStore {
	return &mockStore{
		values: map[string]int64{},
		raw:    map[string][]byte{},
		ttls:   map[string]time.Duration{},
		allNX:  true,
	}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.raw[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) IncrBy(_ context.Context, key string, val int64) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] += val
	return nil
}

func (m *mockStore) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	m.expireCalls++
	m.allNX = m.allNX && nx
	if _, set := m.ttls[key]; !set || !nx {
		m.ttls[key] = ttl
	}
	return nil
}
