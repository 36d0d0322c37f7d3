package textstore

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/abhisek/lasi/internal/api"
	"github.com/abhisek/lasi/internal/lang"
)

//go:embed library.json
var sampleLibrary []byte

// libraryNamespace scopes the name-based IDs of built-in fragments.
var libraryNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("lasi:library"))

type libraryFile struct {
	Texts []api.Text `json:"texts"`
}

// LoadLibrary reads built-in texts from a JSON file. An empty path loads
// the bundled samples.
func LoadLibrary(path string) ([]api.Text, error) {
	data := sampleLibrary
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read library: %w", err)
		}
	}
	return ParseLibrary(data)
}

// ParseLibrary decodes either {"texts": [...]} or a bare list of texts.
// Languages are normalized and every part gets a stable fragment ID.
func ParseLibrary(data []byte) ([]api.Text, error) {
	var texts []api.Text
	if err := json.Unmarshal(data, &texts); err != nil {
		var f libraryFile
		if err2 := json.Unmarshal(data, &f); err2 != nil {
			return nil, fmt.Errorf("parse library: %w", err2)
		}
		texts = f.Texts
	}

	for i := range texts {
		t := &texts[i]
		l, ok := lang.Parse(t.Language)
		if !ok {
			return nil, fmt.Errorf("library text %q: unsupported language %q", t.Name, t.Language)
		}
		t.Language = string(l)
		t.Source = api.SourceLibrary
		t.Fragments = libraryFragments(*t)
	}
	return texts, nil
}

func libraryFragments(t api.Text) []api.Fragment {
	out := make([]api.Fragment, len(t.Parts))
	for i, p := range t.Parts {
		key := t.Language + "\x00" + t.Name + "\x00" + strconv.Itoa(i)
		out[i] = api.Fragment{
			ID:       uuid.NewSHA1(libraryNamespace, []byte(key)).String(),
			Name:     p.Name,
			Position: i,
			Text:     p.Text,
		}
	}
	return out
}
