package testsupport

import (
	"context"
	"testing"

	"sheetwatch/internal/config"
	"sheetwatch/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// InsertAnalysis creates an analysis record for tests using the provided store.
func InsertAnalysis(t testing.TB, st *store.Store, filename, text, vendorCode, hash string) int64 {
	t.Helper()

	id, err := st.InsertAnalysis(context.Background(), filename, text, vendorCode, hash, nil)
	if err != nil {
		t.Fatalf("store.InsertAnalysis: %v", err)
	}
	return id
}
