package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	catalogin "trackboard/internal/modules/catalog/port/in"
	sessionin "trackboard/internal/modules/session/port/in"
	"trackboard/internal/modules/stats/domain"
	statsdto "trackboard/internal/modules/stats/dto"
	statsin "trackboard/internal/modules/stats/port/in"
	"trackboard/internal/platform/markdown"
)

type Interactor struct {
	sessions sessionin.Usecase
	catalog  catalogin.Usecase
}

func NewInteractor(sessions sessionin.Usecase, catalog catalogin.Usecase) statsin.Usecase {
	return &Interactor{sessions: sessions, catalog: catalog}
}

func (i *Interactor) Report(ctx context.Context) (statsdto.ReportOutput, error) {
	summaries := i.sessions.ListSessions(ctx)
	placements := make([]map[string]int, 0, len(summaries))
	for _, s := range summaries {
		detail, err := i.sessions.GetSession(ctx, s.Name)
		if err != nil {
			return statsdto.ReportOutput{}, err
		}
		placements = append(placements, detail.Placements)
	}

	var tracks []string
	for _, t := range i.catalog.Tracks(ctx) {
		tracks = append(tracks, t.Name)
	}

	report := domain.Compute(placements, tracks)
	out := statsdto.ReportOutput{
		TotalSessions:       report.TotalSessions,
		TotalRaces:          report.TotalRaces,
		AvgScorePerSession:  report.AvgScorePerSession,
		OverallAvgPlacement: report.OverallAvgPlacement,
		Tracks:              make([]statsdto.TrackStatOutput, 0, len(report.Tracks)),
	}
	for _, t := range report.Tracks {
		out.Tracks = append(out.Tracks, statsdto.TrackStatOutput(t))
	}
	out.Markdown = renderReport(out)
	return out, nil
}

func renderReport(r statsdto.ReportOutput) string {
	var sb strings.Builder
	sb.WriteString("# Stats\n\n")
	if r.TotalSessions == 0 {
		sb.WriteString("No saved sessions yet.\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "- Sessions: %d\n", r.TotalSessions)
	fmt.Fprintf(&sb, "- Races: %d\n", r.TotalRaces)
	fmt.Fprintf(&sb, "- Average score per session: %d\n", r.AvgScorePerSession)
	fmt.Fprintf(&sb, "- Average placement: %.1f\n", r.OverallAvgPlacement)
	if len(r.Tracks) == 0 {
		return sb.String()
	}
	rows := make([][]string, 0, len(r.Tracks))
	for _, t := range r.Tracks {
		rows = append(rows, []string{
			t.Track,
			strconv.Itoa(t.Races),
			strconv.FormatFloat(t.AvgPlacement, 'f', 1, 64),
			strconv.FormatFloat(t.AvgScore, 'f', 1, 64),
			strconv.Itoa(t.Best),
		})
	}
	sb.WriteString("\n")
	sb.WriteString(markdown.Table([]string{"Track", "Races", "Avg place", "Avg points", "Best"}, rows))
	return sb.String()
}
