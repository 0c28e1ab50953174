package domain

import (
	"math"
	"sort"

	sessiondomain "trackboard/internal/modules/session/domain"
)

type TrackStat struct {
	Track        string
	Races        int
	AvgPlacement float64
	AvgScore     float64
	Best         int
}

type Report struct {
	TotalSessions int
	// TotalRaces counts placements on catalog tracks only.
	TotalRaces         int
	AvgScorePerSession int
	// OverallAvgPlacement is taken over every valid placement, catalog or not.
	OverallAvgPlacement float64
	Tracks              []TrackStat
}

// Compute aggregates the placements of saved sessions. tracks is the catalog;
// per-track rows are only produced for catalog tracks that were raced, best
// average placement first.
func Compute(sessions []map[string]int, tracks []string) Report {
	report := Report{TotalSessions: len(sessions)}
	known := make(map[string]bool, len(tracks))
	for _, t := range tracks {
		known[t] = true
	}

	type acc struct {
		placements []int
		points     int
	}
	perTrack := map[string]*acc{}
	totalScore, placementSum, placementCount := 0, 0, 0

	for _, placements := range sessions {
		totalScore += sessiondomain.TotalScore(placements)
		for track, p := range placements {
			pts, err := sessiondomain.PointsFor(p)
			if err != nil {
				continue
			}
			placementSum += p
			placementCount++
			if !known[track] {
				continue
			}
			a := perTrack[track]
			if a == nil {
				a = &acc{}
				perTrack[track] = a
			}
			a.placements = append(a.placements, p)
			a.points += pts
			report.TotalRaces++
		}
	}

	if report.TotalSessions > 0 {
		report.AvgScorePerSession = int(math.Round(float64(totalScore) / float64(report.TotalSessions)))
	}
	if placementCount > 0 {
		report.OverallAvgPlacement = round1(float64(placementSum) / float64(placementCount))
	}

	for track, a := range perTrack {
		sum, best := 0, sessiondomain.MaxPlacement
		for _, p := range a.placements {
			sum += p
			best = min(best, p)
		}
		n := float64(len(a.placements))
		report.Tracks = append(report.Tracks, TrackStat{
			Track:        track,
			Races:        len(a.placements),
			AvgPlacement: float64(sum) / n,
			AvgScore:     float64(a.points) / n,
			Best:         best,
		})
	}
	sort.Slice(report.Tracks, func(i, j int) bool {
		a, b := report.Tracks[i], report.Tracks[j]
		if a.AvgPlacement != b.AvgPlacement {
			return a.AvgPlacement < b.AvgPlacement
		}
		return a.Track < b.Track
	})
	return report
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
