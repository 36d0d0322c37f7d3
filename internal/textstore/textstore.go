// Package textstore serves the text library: built-in texts merged with
// uploads persisted in SQLite. An upload replaces a built-in text with the
// same name in the same language.
package textstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/lasi/internal/api"
	"github.com/abhisek/lasi/internal/lang"
	"github.com/abhisek/lasi/internal/logger"
	"github.com/abhisek/lasi/internal/splitter"
	"github.com/abhisek/lasi/internal/store"
)

var (
	// ErrNotFound is returned for unknown texts.
	ErrNotFound = errors.New("text not found")

	// ErrInvalid is returned for uploads that cannot be stored.
	ErrInvalid = errors.New("invalid text")
)

const softHyphen = "\u00ad"

// Service reads and writes texts.
type Service struct {
	library []api.Text
	repo    store.TextRepo
	split   *splitter.Splitter
	log     *logger.Logger
}

// New creates a Service over the built-in library and the upload repo.
func New(library []api.Text, repo store.TextRepo, split *splitter.Splitter, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{library: library, repo: repo, split: split, log: log}
}

// List returns the texts in language l: built-ins first, then uploads.
func (s *Service) List(ctx context.Context, l lang.Language) ([]api.Text, error) {
	recs, err := s.repo.List(ctx, string(l))
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}

	uploaded := make(map[string]bool, len(recs))
	for _, r := range recs {
		uploaded[r.Name] = true
	}

	out := make([]api.Text, 0, len(s.library)+len(recs))
	for _, t := range s.library {
		if t.Language == string(l) && !uploaded[t.Name] {
			out = append(out, t)
		}
	}
	for _, r := range recs {
		out = append(out, fromRecord(r))
	}
	return out, nil
}

// Get returns one text by name in language l.
func (s *Service) Get(ctx context.Context, name string, l lang.Language) (*api.Text, error) {
	rec, err := s.repo.Get(ctx, name, string(l))
	switch {
	case err == nil:
		t := fromRecord(*rec)
		return &t, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("get upload: %w", err)
	}

	for _, t := range s.library {
		if t.Language == string(l) && t.Name == name {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (%s)", ErrNotFound, name, l)
}

// Parts returns the ordered parts of one text.
func (s *Service) Parts(ctx context.Context, name string, l lang.Language) (api.Parts, error) {
	t, err := s.Get(ctx, name, l)
	if err != nil {
		return nil, err
	}
	return t.Parts, nil
}

// UploadInput describes a text to store.
type UploadInput struct {
	Name         string
	Language     lang.Language
	Text         string
	AutoSplit    bool
	TargetTokens int
}

// Upload stores a text, split into parts when AutoSplit is set and as a
// single part otherwise. Uploading again under the same name and language
// replaces the earlier text.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*api.Text, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	body := strings.TrimSpace(strings.ReplaceAll(in.Text, softHyphen, ""))
	if body == "" {
		return nil, fmt.Errorf("%w: text is empty", ErrInvalid)
	}

	var parts []splitter.Part
	if in.AutoSplit {
		parts = s.split.Apply(body, in.TargetTokens)
	} else {
		parts = []splitter.Part{{Name: splitter.PartName(0), Text: body}}
	}

	rec := &store.TextRecord{Name: name, Language: string(in.Language)}
	for _, p := range parts {
		rec.Parts = append(rec.Parts, store.PartRecord{Name: p.Name, Body: p.Text})
	}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	s.log.Info("text uploaded", "name", name, "language", string(in.Language), "parts", len(rec.Parts))
	t := fromRecord(*rec)
	return &t, nil
}

// Preview splits text without storing it.
func (s *Service) Preview(text string, targetTokens int) []string {
	frags := s.split.Preview(strings.ReplaceAll(text, softHyphen, ""), targetTokens)
	if frags == nil {
		return []string{}
	}
	return frags
}

// Delete removes an upload. Built-in texts cannot be deleted.
func (s *Service) Delete(ctx context.Context, name string, l lang.Language) error {
	err := s.repo.Delete(ctx, name, string(l))
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %q (%s)", ErrNotFound, name, l)
	}
	return err
}

func fromRecord(r store.TextRecord) api.Text {
	t := api.Text{
		Name:      r.Name,
		Language:  r.Language,
		Parts:     make(api.Parts, len(r.Parts)),
		Fragments: make([]api.Fragment, len(r.Parts)),
		Source:    api.SourceUpload,
	}
	for i, p := range r.Parts {
		t.Parts[i] = api.Part{Name: p.Name, Text: p.Body}
		t.Fragments[i] = api.Fragment{ID: p.ID, Name: p.Name, Position: p.Position, Text: p.Body}
	}
	return t
}
