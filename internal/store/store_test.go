package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"sheetwatch/internal/store"
	"sheetwatch/internal/testsupport"
)

func TestInsertAndGetByFilenameRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	text := "## 1. IC datasheet analysis\nLM317 adjustable regulator\n"
	id, err := st.InsertAnalysis(ctx, "lm317.pdf", text, "LM317T", "abc123", nil)
	if err != nil {
		t.Fatalf("InsertAnalysis: %v", err)
	}
	if id <= 0 {
		t.Fatalf("id = %d, want positive", id)
	}

	record, err := st.GetByFilename(ctx, "lm317.pdf")
	if err != nil {
		t.Fatalf("GetByFilename: %v", err)
	}
	if record == nil {
		t.Fatal("expected record")
	}
	if record.AnalysisText != text {
		t.Fatalf("text mutated: %q", record.AnalysisText)
	}
	if record.VendorCode != "LM317T" {
		t.Fatalf("vendor code = %q", record.VendorCode)
	}
	if record.Status != store.StatusFinish {
		t.Fatalf("status = %q", record.Status)
	}
	if record.CreatedAt.IsZero() || record.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps")
	}
}

func TestGetByFilenameReturnsNilWhenAbsent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	record, err := st.GetByFilename(context.Background(), "missing.pdf")
	if err != nil {
		t.Fatalf("GetByFilename: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil record, got %+v", record)
	}
}

func TestDuplicateInsertFailsAndLeavesStoreUnchanged(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.InsertAnalysis(t, st, "lm317.pdf", "text", "LM317T", "hash-1")

	_, err := st.InsertAnalysis(ctx, "lm317.pdf", "other text", "LM317T", "hash-1", map[string]any{"Package": "TO-220"})
	if !errors.Is(err, store.ErrDuplicateAnalysis) {
		t.Fatalf("expected ErrDuplicateAnalysis, got %v", err)
	}

	records, err := st.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("row count = %d, want 1", len(records))
	}
	metadata, err := st.Metadata(ctx, records[0].ID)
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if len(metadata) != 0 {
		t.Fatalf("expected no metadata leaked from failed insert, got %v", metadata)
	}
}

func TestGetByFilenameReturnsLatest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.InsertAnalysis(t, st, "lm317.pdf", "first revision", "LM317T", "hash-1")
	time.Sleep(5 * time.Millisecond)
	second := testsupport.InsertAnalysis(t, st, "lm317.pdf", "second revision", "LM317T", "hash-2")

	record, err := st.GetByFilename(ctx, "lm317.pdf")
	if err != nil {
		t.Fatalf("GetByFilename: %v", err)
	}
	if record.ID != second {
		t.Fatalf("latest id = %d, want %d", record.ID, second)
	}
	if record.AnalysisText != "second revision" {
		t.Fatalf("latest text = %q", record.AnalysisText)
	}
}

func TestDeleteCascadesAndAllowsReinsert(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	id, err := st.InsertAnalysis(ctx, "ne555.pdf", "timer", "NE555", "hash-1", map[string]any{"Package": "DIP-8"})
	if err != nil {
		t.Fatalf("InsertAnalysis: %v", err)
	}
	if _, err := st.InsertChecklistItem(ctx, id, "Connect pin 1 to ground", "print('x')"); err != nil {
		t.Fatalf("InsertChecklistItem: %v", err)
	}

	removed, err := st.Delete(ctx, id)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !removed {
		t.Fatal("expected record removal")
	}

	items, err := st.ChecklistByAnalysis(ctx, id)
	if err != nil {
		t.Fatalf("ChecklistByAnalysis: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("checklist not cascaded: %d items", len(items))
	}
	metadata, err := st.Metadata(ctx, id)
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if len(metadata) != 0 {
		t.Fatalf("metadata not cascaded: %v", metadata)
	}

	// Same (filename, hash) is insertable again once the old record is gone.
	newID := testsupport.InsertAnalysis(t, st, "ne555.pdf", "timer", "NE555", "hash-1")
	if newID == id {
		t.Fatalf("expected a fresh id, got %d twice", id)
	}
}

func TestUpdateAnalysisPartial(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	id := testsupport.InsertAnalysis(t, st, "lm317.pdf", "original", "LM317T", "hash-1")
	before, err := st.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	text := "revised"
	if err := st.UpdateAnalysis(ctx, id, store.AnalysisUpdate{
		AnalysisText: &text,
		Metadata:     map[string]any{"Reviewed": "yes"},
	}); err != nil {
		t.Fatalf("UpdateAnalysis: %v", err)
	}

	after, err := st.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if after.AnalysisText != "revised" {
		t.Fatalf("text = %q", after.AnalysisText)
	}
	if after.VendorCode != "LM317T" {
		t.Fatalf("vendor code changed: %q", after.VendorCode)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Fatal("expected updated_at to advance")
	}
	metadata, err := st.Metadata(ctx, id)
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if metadata["Reviewed"] != "yes" {
		t.Fatalf("metadata = %v", metadata)
	}
}

func TestSearchByVendorAndList(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.InsertAnalysis(t, st, "a.pdf", "a", "LM317T", "h1")
	testsupport.InsertAnalysis(t, st, "b.pdf", "b", "NE555", "h2")
	testsupport.InsertAnalysis(t, st, "c.pdf", "c", "LM317T", "h3")

	matches, err := st.SearchByVendor(ctx, "LM317T")
	if err != nil {
		t.Fatalf("SearchByVendor: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}

	page, err := st.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page size = %d, want 2", len(page))
	}
	rest, err := st.List(ctx, 2, 2)
	if err != nil {
		t.Fatalf("List offset: %v", err)
	}
	if len(rest) != 1 {
		t.Fatalf("remaining = %d, want 1", len(rest))
	}
}

func TestStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats empty: %v", err)
	}
	if stats.TotalAnalyses != 0 || stats.Latest != nil {
		t.Fatalf("empty stats = %+v", stats)
	}

	testsupport.InsertAnalysis(t, st, "a.pdf", "a", "LM317T", "h1")
	testsupport.InsertAnalysis(t, st, "b.pdf", "b", "LM317T", "h2")
	testsupport.InsertAnalysis(t, st, "c.pdf", "c", "NE555", "h3")

	stats, err = st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalAnalyses != 3 {
		t.Fatalf("total = %d", stats.TotalAnalyses)
	}
	if len(stats.TopVendors) != 2 {
		t.Fatalf("vendors = %v", stats.TopVendors)
	}
	if stats.TopVendors[0].VendorCode != "LM317T" || stats.TopVendors[0].Count != 2 {
		t.Fatalf("top vendor = %+v", stats.TopVendors[0])
	}
	if stats.Latest == nil || stats.Latest.IsZero() {
		t.Fatal("expected latest timestamp")
	}
}

func TestOpenRebuildsLegacyPartNumberColumn(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	// Seed a database shaped like one from an older build, including the
	// obsolete part_number column.
	db, err := sql.Open("sqlite", cfg.Paths.DatabasePath)
	if err != nil {
		t.Fatalf("open seed db: %v", err)
	}
	seed := []string{
		`CREATE TABLE analyses (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            filename TEXT NOT NULL,
            vendor_code TEXT,
            analysis_text TEXT NOT NULL,
            file_hash TEXT,
            status TEXT NOT NULL DEFAULT 'Finish',
            part_number TEXT,
            created_at TEXT NOT NULL,
            updated_at TEXT NOT NULL,
            UNIQUE (filename, file_hash)
        )`,
		`INSERT INTO analyses (filename, vendor_code, analysis_text, file_hash, status, part_number, created_at, updated_at)
         VALUES ('old.pdf', 'LM317T', 'legacy text', 'h1', 'Finish', 'obsolete', '2024-01-02T03:04:05Z', '2024-01-02T03:04:05Z')`,
	}
	for _, stmt := range seed {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed legacy schema: %v", err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close seed db: %v", err)
	}

	st := testsupport.MustOpenStore(t, cfg)

	record, err := st.GetByFilename(context.Background(), "old.pdf")
	if err != nil {
		t.Fatalf("GetByFilename after rebuild: %v", err)
	}
	if record == nil || record.AnalysisText != "legacy text" {
		t.Fatalf("legacy data lost: %+v", record)
	}

	// A second open must be a no-op.
	st2, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()
}
