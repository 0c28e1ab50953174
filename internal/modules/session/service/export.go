package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"trackboard/internal/modules/session/domain"
	apperrors "trackboard/internal/platform/errors"
	"trackboard/internal/platform/markdown"
)

// Export builds the export document for a saved session without touching the
// registry.
func (t *Tracker) Export(name string) (domain.ExportDocument, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.registry.Get(name)
	if !ok {
		return domain.ExportDocument{}, fmt.Errorf("%w: session %q", apperrors.ErrNotFound, name)
	}
	return domain.ExportDocument{Record: rec, Exported: true, ExportDate: t.clock.Now()}, nil
}

func EncodeExport(doc domain.ExportDocument) ([]byte, error) {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return payload, nil
}

// RenderMarkdown summarises a session as a note with YAML frontmatter.
func RenderMarkdown(rec domain.Record) (string, error) {
	meta := map[string]any{
		"name":      rec.Name,
		"created":   rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		"score":     rec.Score(),
		"completed": len(rec.Completed),
		"placed":    len(rec.Placements),
	}
	if rec.LastModifiedAt != nil {
		meta["last_modified"] = rec.LastModifiedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	if rec.Imported {
		meta["imported"] = true
	}

	tracks := make([]string, 0, len(rec.Placements)+len(rec.Completed))
	seen := map[string]bool{}
	for _, track := range rec.Completed {
		if !seen[track] {
			seen[track] = true
			tracks = append(tracks, track)
		}
	}
	var orphans []string
	for track := range rec.Placements {
		if !seen[track] {
			orphans = append(orphans, track)
		}
	}
	sort.Strings(orphans)
	tracks = append(tracks, orphans...)

	rows := make([][]string, 0, len(tracks))
	for _, track := range tracks {
		place, points := "-", "-"
		if p, ok := rec.Placements[track]; ok {
			place = domain.Ordinal(p)
			if pts, err := domain.PointsFor(p); err == nil {
				points = fmt.Sprintf("%d", pts)
			}
		}
		rows = append(rows, []string{track, place, points})
	}

	var body strings.Builder
	fmt.Fprintf(&body, "# %s\n\nScore: **%d**\n\n", rec.Name, rec.Score())
	if len(rows) == 0 {
		body.WriteString("No races recorded.\n")
	} else {
		body.WriteString(markdown.Table([]string{"Track", "Placement", "Points"}, rows))
	}

	noted := make([]string, 0, len(rec.Notes))
	for track := range rec.Notes {
		if rec.HasNote(track) {
			noted = append(noted, track)
		}
	}
	sort.Strings(noted)
	if len(noted) > 0 {
		body.WriteString("\n## Notes\n\n")
		for _, track := range noted {
			fmt.Fprintf(&body, "- **%s**: %s\n", track, strings.TrimSpace(rec.Notes[track]))
		}
	}
	return markdown.RenderFrontmatter(meta, body.String())
}
