package markdown

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestRenderFrontmatterRoundTripsMeta(t *testing.T) {
	t.Parallel()
	out, err := RenderFrontmatter(map[string]any{"name": "Cup A", "score": 27}, "# Cup A\n")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out, "---\n") {
		t.Fatalf("missing opening separator: %q", out)
	}
	rest := strings.TrimPrefix(out, "---\n")
	idx := strings.Index(rest, "\n---\n")
	if idx < 0 {
		t.Fatalf("missing closing separator: %q", out)
	}
	meta := map[string]any{}
	if err := yaml.Unmarshal([]byte(rest[:idx]), &meta); err != nil {
		t.Fatalf("decode meta: %v", err)
	}
	if meta["name"] != "Cup A" || meta["score"] != 27 {
		t.Fatalf("unexpected meta: %v", meta)
	}
	if !strings.HasSuffix(out, "\n# Cup A\n") {
		t.Fatalf("body not appended after blank line: %q", out)
	}
}

func TestTableEscapesPipes(t *testing.T) {
	t.Parallel()
	got := Table([]string{"Track", "Note"}, [][]string{{"Rainbow Road", "a|b"}})
	want := "| Track | Note |\n| --- | --- |\n| Rainbow Road | a\\|b |\n"
	if got != want {
		t.Fatalf("unexpected table:\n%s\nwant:\n%s", got, want)
	}
}

func TestBodyDropsFrontmatter(t *testing.T) {
	t.Parallel()
	doc, err := RenderFrontmatter(map[string]any{"name": "Cup A"}, "# Cup A\n")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := Body(doc); got != "# Cup A\n" {
		t.Fatalf("unexpected body %q", got)
	}
	if got := Body("# plain\n"); got != "# plain\n" {
		t.Fatalf("plain document changed: %q", got)
	}
}
