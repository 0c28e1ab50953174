package out

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "trackboard/internal/platform/errors"
)

func TestYAMLSourceFallsBackToDefault(t *testing.T) {
	t.Parallel()
	tracks, err := NewYAMLSource(filepath.Join(t.TempDir(), "tracks.yaml")).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tracks) != 30 {
		t.Fatalf("expected built-in catalog, got %d tracks", len(tracks))
	}
}

func TestYAMLSourceReadsOverride(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tracks.yaml")
	body := "tracks:\n  - name: Baby Park\n    code: \":track_BP:\"\n  - name: Mushroom Gorge\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tracks, err := NewYAMLSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tracks) != 2 || tracks[0].Name != "Baby Park" || tracks[0].Code != ":track_BP:" || tracks[1].Code != "" {
		t.Fatalf("unexpected tracks %+v", tracks)
	}
}

func TestYAMLSourceRejectsBadFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cases := map[string]string{
		"syntax.yaml": "tracks: [",
		"empty.yaml":  "tracks: []\n",
		"dup.yaml":    "tracks:\n  - name: A\n  - name: a\n",
	}
	for file, body := range cases {
		path := filepath.Join(dir, file)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		_, err := NewYAMLSource(path).Load(context.Background())
		if err == nil {
			t.Fatalf("%s: expected error", file)
		}
		if file != "dup.yaml" && !errors.Is(err, apperrors.ErrInvalidFormat) {
			t.Fatalf("%s: expected invalid format, got %v", file, err)
		}
	}
}
