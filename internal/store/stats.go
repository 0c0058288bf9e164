package store

import (
	"context"
	"fmt"
)

// Stats aggregates store-wide counters: total records, the top-10 vendor code
// histogram descending by count, and the most recent creation timestamp.
func (s *Store) Stats(ctx context.Context) (Statistics, error) {
	var stats Statistics

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM analyses`)
	if err := row.Scan(&stats.TotalAnalyses); err != nil {
		return stats, fmt.Errorf("count analyses: %w", err)
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT vendor_code, COUNT(1) AS n FROM analyses
         WHERE vendor_code IS NOT NULL AND vendor_code != ''
         GROUP BY vendor_code ORDER BY n DESC, vendor_code ASC LIMIT 10`,
	)
	if err != nil {
		return stats, fmt.Errorf("vendor histogram: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var vc VendorCount
		if err := rows.Scan(&vc.VendorCode, &vc.Count); err != nil {
			return stats, fmt.Errorf("scan vendor histogram: %w", err)
		}
		stats.TopVendors = append(stats.TopVendors, vc)
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	var latestRaw string
	row = s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(created_at), '') FROM analyses`)
	if err := row.Scan(&latestRaw); err != nil {
		return stats, fmt.Errorf("latest analysis: %w", err)
	}
	if latest, err := parseTimeString(latestRaw); err == nil {
		stats.Latest = &latest
	}

	return stats, nil
}
