package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// UpsertMetadata writes a single metadata entry, replacing any existing value
// for the same key.
func (s *Store) UpsertMetadata(ctx context.Context, analysisID int64, key string, value any) error {
	encoded, err := encodeMetadataValue(value)
	if err != nil {
		return fmt.Errorf("encode metadata %q: %w", key, err)
	}
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO analysis_metadata (analysis_id, key, value) VALUES (?, ?, ?)`,
		analysisID, key, encoded,
	); err != nil {
		return fmt.Errorf("upsert metadata %q: %w", key, err)
	}
	return nil
}

// Metadata returns the metadata mapping for a record. Values stored as JSON
// are decoded opportunistically; anything that fails to decode is returned as
// the raw string.
func (s *Store) Metadata(ctx context.Context, analysisID int64) (map[string]any, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT key, value FROM analysis_metadata WHERE analysis_id = ? ORDER BY key`,
		analysisID,
	)
	if err != nil {
		return nil, fmt.Errorf("query metadata: %w", err)
	}
	defer rows.Close()

	metadata := make(map[string]any)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan metadata: %w", err)
		}
		metadata[key] = decodeMetadataValue(value)
	}
	return metadata, rows.Err()
}

// encodeMetadataValue serializes scalars as plain strings and compound values
// as JSON text.
func encodeMetadataValue(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}

func decodeMetadataValue(value string) any {
	var decoded any
	if err := json.Unmarshal([]byte(value), &decoded); err == nil {
		return decoded
	}
	return value
}
