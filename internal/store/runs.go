package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/HelloAnner/northstar-verify/internal/model"
)

// ErrRunNotFound 运行记录不存在
var ErrRunNotFound = errors.New("run not found")

// RunSummary 运行记录的列表视图
type RunSummary struct {
	ID          string    `db:"id" json:"id"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	Status      string    `db:"status" json:"status"`
	Issues      int       `db:"issues" json:"issues"`
	ImportGaps  int       `db:"import_gaps" json:"importGaps"`
	ImportDiffs int       `db:"import_diffs" json:"importDiffs"`
	ExportGaps  int       `db:"export_gaps" json:"exportGaps"`
	ExportDiffs int       `db:"export_diffs" json:"exportDiffs"`
	CaseTotal   int       `db:"case_total" json:"caseTotal"`
	CaseFailed  int       `db:"case_failed" json:"caseFailed"`
	InputFile   string    `db:"input_file" json:"inputFile"`
	ExportFile  string    `db:"export_file" json:"exportFile"`
}

const runColumns = `id, created_at, status, issues, import_gaps, import_diffs, export_gaps, export_diffs,
	case_total, case_failed, input_file, export_file`

// SaveRun 保存一次运行的完整报告，并记为最近一次运行
func (s *Store) SaveRun(ctx context.Context, rep *model.Report, inputFile, exportFile string) error {
	if rep == nil || rep.ID == "" {
		return errors.New("report has no id")
	}
	payload, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rep.ID, rep.GeneratedAt.UTC(), string(rep.Status), len(rep.Issues),
		len(rep.Import.Gaps), len(rep.Import.Mismatches),
		len(rep.Export.Gaps), len(rep.Export.Mismatches),
		len(rep.Completeness), rep.CompletenessFailures(),
		inputFile, exportFile, string(payload))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, configLastRunID, rep.ID); err != nil {
		return fmt.Errorf("failed to update last run: %w", err)
	}
	return tx.Commit()
}

// ListRuns 按时间倒序列出运行记录；limit<=0 表示不限
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	runs := []RunSummary{}
	if err := s.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// GetRun 读取完整报告
func (s *Store) GetRun(ctx context.Context, id string) (*model.Report, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload, "SELECT report_json FROM runs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	var rep model.Report
	if err := json.Unmarshal([]byte(payload), &rep); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", id, err)
	}
	return &rep, nil
}
