package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// InsertChecklistItem appends a checklist item to a record. The code artifact
// may be empty when synthesis failed; it is never stored as NULL.
func (s *Store) InsertChecklistItem(ctx context.Context, analysisID int64, text, generatedCode string) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO checklist_items (analysis_id, text, generated_code, created_at) VALUES (?, ?, ?, ?)`,
		analysisID, text, generatedCode, timestamp,
	)
	if err != nil {
		return 0, fmt.Errorf("insert checklist item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// ChecklistByAnalysis returns a record's checklist items in insertion order.
func (s *Store) ChecklistByAnalysis(ctx context.Context, analysisID int64) ([]*ChecklistItem, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+checklistColumns+` FROM checklist_items WHERE analysis_id = ? ORDER BY created_at ASC, id ASC`,
		analysisID,
	)
	if err != nil {
		return nil, fmt.Errorf("query checklist: %w", err)
	}
	defer rows.Close()

	var items []*ChecklistItem
	for rows.Next() {
		item, err := scanChecklistItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ChecklistItemByID fetches one checklist item, or nil when absent.
func (s *Store) ChecklistItemByID(ctx context.Context, id int64) (*ChecklistItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+checklistColumns+` FROM checklist_items WHERE id = ?`, id)
	item, err := scanChecklistItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get checklist item: %w", err)
	}
	return item, nil
}

// UpdateChecklistItem applies a partial update; nil fields are left unchanged.
func (s *Store) UpdateChecklistItem(ctx context.Context, id int64, text, generatedCode *string) error {
	if text == nil && generatedCode == nil {
		return nil
	}
	setClauses := ""
	args := make([]any, 0, 3)
	if text != nil {
		setClauses = "text = ?"
		args = append(args, *text)
	}
	if generatedCode != nil {
		if setClauses != "" {
			setClauses += ", "
		}
		setClauses += "generated_code = ?"
		args = append(args, *generatedCode)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, `UPDATE checklist_items SET `+setClauses+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update checklist item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update checklist item: no item with id %d", id)
	}
	return nil
}

// DeleteChecklistItem removes one checklist item.
func (s *Store) DeleteChecklistItem(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM checklist_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete checklist item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// DeleteChecklistByAnalysis removes all checklist items belonging to a record.
func (s *Store) DeleteChecklistByAnalysis(ctx context.Context, analysisID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM checklist_items WHERE analysis_id = ?`, analysisID)
	if err != nil {
		return 0, fmt.Errorf("delete checklist for analysis: %w", err)
	}
	return res.RowsAffected()
}

const checklistColumns = "id, analysis_id, text, generated_code, created_at"

func scanChecklistItem(scanner interface{ Scan(dest ...any) error }) (*ChecklistItem, error) {
	var (
		id         int64
		analysisID int64
		text       string
		code       string
		createdRaw string
	)
	if err := scanner.Scan(&id, &analysisID, &text, &code, &createdRaw); err != nil {
		return nil, err
	}
	item := &ChecklistItem{
		ID:            id,
		AnalysisID:    analysisID,
		Text:          text,
		GeneratedCode: code,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		item.CreatedAt = created
	}
	return item, nil
}
