package store

import "time"

// StatusFinish is the status label stamped on persisted analysis records.
// Records only exist once a pipeline run has completed, so the stored status
// is always Finish; in-flight state lives on in-memory descriptors instead.
const StatusFinish = "Finish"

// Analysis is one persisted datasheet analysis record.
type Analysis struct {
	ID           int64
	Filename     string
	VendorCode   string
	AnalysisText string
	FileHash     string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ChecklistItem is a generated verification instruction with its synthesized
// code artifact. GeneratedCode is empty (never null) when synthesis failed.
type ChecklistItem struct {
	ID            int64
	AnalysisID    int64
	Text          string
	GeneratedCode string
	CreatedAt     time.Time
}

// VendorCount is one row of the vendor histogram.
type VendorCount struct {
	VendorCode string
	Count      int
}

// Statistics aggregates store-wide counters for the stats command.
type Statistics struct {
	TotalAnalyses int
	TopVendors    []VendorCount
	Latest        *time.Time
}

// AnalysisUpdate describes a partial update; nil fields are left unchanged.
// Metadata keys are upserted individually.
type AnalysisUpdate struct {
	AnalysisText *string
	VendorCode   *string
	Metadata     map[string]any
}
