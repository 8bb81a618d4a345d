package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/HelloAnner/northstar-verify/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "data", "runs.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func report(id string, at time.Time, status model.RunStatus) *model.Report {
	return &model.Report{
		ID:          id,
		GeneratedAt: at,
		Status:      status,
		Issues:      []string{"导出字段不一致：1"},
		Export: model.AxisResult{
			Usable:     true,
			Mismatches: []model.Mismatch{{Key: "914401007RDD76M0RF", Field: "本年-本月", Expected: "1000", Actual: 900.0}},
		},
		Completeness: []model.CompletenessCase{{Key: "914401007RDD76M0RF", OK: true}, {OK: false}},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	at := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	if err := s.SaveRun(ctx, report("run-1", at, model.StatusFail), "input.xlsx", "export.xlsx"); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != model.StatusFail || len(got.Export.Mismatches) != 1 || !got.GeneratedAt.Equal(at) {
		t.Fatalf("round trip lost data: %+v", got)
	}

	if _, err := s.GetRun(ctx, "nope"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("err=%v, want ErrRunNotFound", err)
	}
	if err := s.SaveRun(ctx, &model.Report{}, "", ""); err == nil {
		t.Fatalf("report without id should be rejected")
	}
}

func TestListRuns_NewestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := s.SaveRun(ctx, report(id, base.Add(time.Duration(i)*time.Minute), model.StatusPass), "in.xlsx", "out.xlsx"); err != nil {
			t.Fatalf("SaveRun %s: %v", id, err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("runs=%+v", runs)
	}
	r := runs[0]
	if r.ExportDiffs != 1 || r.CaseTotal != 2 || r.CaseFailed != 1 || r.Issues != 1 || r.InputFile != "in.xlsx" {
		t.Fatalf("summary=%+v", r)
	}

	last, err := s.LastRunID(ctx)
	if err != nil || last != "c" {
		t.Fatalf("LastRunID=%q err=%v", last, err)
	}
}

func TestConfig(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	if id, err := s.LastRunID(ctx); err != nil || id != "" {
		t.Fatalf("empty store LastRunID=%q err=%v", id, err)
	}
	if _, err := s.GetConfig(ctx, "missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("err=%v", err)
	}
	if err := s.SetConfig(ctx, "k", "1"); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	if err := s.SetConfig(ctx, "k", "2"); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	if v, err := s.GetConfig(ctx, "k"); err != nil || v != "2" {
		t.Fatalf("GetConfig=%q err=%v", v, err)
	}
}
