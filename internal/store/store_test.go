package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	s, err := Open(dsn)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is covered by TestFileDatabaseUsesWAL.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestFileDatabaseUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lasi.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("journal_mode = %q, want wal", mode)
	}
}

func TestLLMEventsFilterAndPrune(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, ok := range []bool{true, false, true} {
		if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{Purpose: "evaluate", Success: ok}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	failed, err := repo.QueryLLMEvents(ctx, QueryOpts{FailedOnly: true})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(failed) != 1 || failed[0].Success {
		t.Fatalf("expected one failed event, got %+v", failed)
	}

	recent, err := repo.QueryLLMEvents(ctx, QueryOpts{Since: time.Now().Add(-time.Minute)})
	if err != nil {
		t.Fatalf("query since: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 recent events, got %d", len(recent))
	}
	future, err := repo.QueryLLMEvents(ctx, QueryOpts{Since: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("query future: %v", err)
	}
	if len(future) != 0 {
		t.Fatalf("expected no events after now, got %d", len(future))
	}

	n, err := repo.PruneLLMEvents(ctx, time.Now().Add(-time.Hour))
	if err != nil || n != 0 {
		t.Fatalf("prune old = %d, %v; want 0, nil", n, err)
	}
	n, err = repo.PruneLLMEvents(ctx, time.Now().Add(time.Minute))
	if err != nil || n != 3 {
		t.Fatalf("prune all = %d, %v; want 3, nil", n, err)
	}

	// ids keep growing after a prune
	if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{Purpose: "format"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	after, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(after) != 1 || after[0].ID != 4 {
		t.Fatalf("expected a single event with id 4, got %+v", after)
	}
}

func TestLLMEventsAppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.5-flash-lite", Purpose: "questions", InputTokens: 100, OutputTokens: 20, LatencyMs: 300, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-flash-lite", Purpose: "evaluate", InputTokens: 50, OutputTokens: 10, LatencyMs: 100, Success: true},
		{Provider: "deepseek", Model: "deepseek-chat", Purpose: "simplify", InputTokens: 400, OutputTokens: 300, LatencyMs: 900, Success: false, ErrorMessage: "boom"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}
	if all[0].Purpose != "simplify" {
		t.Fatalf("expected newest first, got %q", all[0].Purpose)
	}
	if all[0].Success || all[0].ErrorMessage != "boom" {
		t.Fatalf("failure not recorded: %+v", all[0])
	}

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1, Purpose: "questions"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(limited) != 1 || limited[0].InputTokens != 100 {
		t.Fatalf("unexpected filtered result: %+v", limited)
	}

	got, err := repo.GetLLMEvent(ctx, all[1].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Purpose != "evaluate" {
		t.Fatalf("unexpected event: %+v", got)
	}

	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for missing event, got %v, %v", missing, err)
	}
}

func TestLLMUsageAggregates(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_ = repo.AppendLLMRequest(ctx, LLMRequestEventData{Model: "m1", Purpose: "questions", InputTokens: 10, OutputTokens: 5, LatencyMs: 100})
	}
	_ = repo.AppendLLMRequest(ctx, LLMRequestEventData{Model: "m2", Purpose: "evaluate", InputTokens: 7, OutputTokens: 3, LatencyMs: 50})

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("by purpose: %v", err)
	}
	if len(byPurpose) != 2 || byPurpose[0].Purpose != "questions" || byPurpose[0].Calls != 2 || byPurpose[0].InputTokens != 20 {
		t.Fatalf("unexpected usage by purpose: %+v", byPurpose)
	}
	if byPurpose[0].AvgLatencyMs != 100 {
		t.Fatalf("expected avg latency 100, got %d", byPurpose[0].AvgLatencyMs)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("by model: %v", err)
	}
	if len(byModel) != 2 || byModel[1].Model != "m2" || byModel[1].OutputTokens != 3 {
		t.Fatalf("unexpected usage by model: %+v", byModel)
	}
}

func TestTextUpsertGetList(t *testing.T) {
	s := openTestStore(t)
	repo := s.TextRepo()
	ctx := context.Background()

	rec := &TextRecord{
		Name:     "The Fox",
		Language: "English",
		Parts: []PartRecord{
			{Name: "Part 1", Body: "A fox ran."},
			{Name: "Part 2", Body: "It hid."},
		},
	}
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if rec.ID == "" || rec.Parts[0].ID == "" {
		t.Fatal("expected IDs to be assigned")
	}

	got, err := repo.Get(ctx, "The Fox", "english")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Parts) != 2 || got.Parts[1].Name != "Part 2" || got.Parts[1].Position != 1 {
		t.Fatalf("unexpected parts: %+v", got.Parts)
	}

	other := &TextRecord{Name: "Lapsa", Language: "Latvian", Parts: []PartRecord{{Name: "Part 1", Body: "Lapsa skrēja."}}}
	if err := repo.Upsert(ctx, other); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	english, err := repo.List(ctx, "English")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(english) != 1 || english[0].Name != "The Fox" || len(english[0].Parts) != 2 {
		t.Fatalf("unexpected list: %+v", english)
	}

	all, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 texts, got %d", len(all))
	}
}

func TestTextUpsertSupersedes(t *testing.T) {
	s := openTestStore(t)
	repo := s.TextRepo()
	ctx := context.Background()

	first := &TextRecord{Name: "Story", Language: "English", Parts: []PartRecord{{Name: "Part 1", Body: "old"}, {Name: "Part 2", Body: "old 2"}}}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	second := &TextRecord{Name: "Story", Language: "English", Parts: []PartRecord{{Name: "Part 1", Body: "new"}}}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected identity to be kept, got %s vs %s", second.ID, first.ID)
	}

	got, err := repo.Get(ctx, "Story", "English")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Parts) != 1 || got.Parts[0].Body != "new" {
		t.Fatalf("expected superseded parts, got %+v", got.Parts)
	}
}

func TestTextGetAndDeleteNotFound(t *testing.T) {
	s := openTestStore(t)
	repo := s.TextRepo()
	ctx := context.Background()

	if _, err := repo.Get(ctx, "nope", "English"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "nope", "English"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	rec := &TextRecord{Name: "Gone", Language: "Spanish", Parts: []PartRecord{{Name: "Part 1", Body: "x"}}}
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Delete(ctx, "Gone", "Spanish"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, "Gone", "Spanish"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
