package slug

import "testing"

func TestExportFilename(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"Cup A":                       "Cup_A_session.json",
		"Session 1 - 3/4/2026 10:15": "Session_1___3_4_2026_10_15_session.json",
		"   ":                         "untitled_session.json",
	}
	for in, want := range cases {
		if got := ExportFilename(in); got != want {
			t.Fatalf("ExportFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
