package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	apperrors "trackboard/internal/platform/errors"
)

const (
	MinPlacement = 1
	MaxPlacement = 12
)

// Durable keys. The names match the browser build's localStorage keys so
// exported stores stay readable by both.
const (
	KeyFavorites   = "globalStarredTracks"
	KeyTempSession = "tempSession"
	KeySessions    = "savedSessions"
	KeyCounter     = "sessionCounter"
	KeySortMode    = "sortMode"
)

// State is the placements/notes/completed triple shared by the working copy,
// the temporary session and every saved session.
type State struct {
	Placements map[string]int    `json:"placements"`
	Notes      map[string]string `json:"notes"`
	// Completed is kept in completion order; membership is derived from it.
	Completed []string `json:"completedTracks"`
}

func NewState() State {
	return State{Placements: map[string]int{}, Notes: map[string]string{}, Completed: []string{}}
}

// Clone deep-copies the state and replaces nil collections with empty ones.
func (s State) Clone() State {
	out := NewState()
	for k, v := range s.Placements {
		out.Placements[k] = v
	}
	for k, v := range s.Notes {
		out.Notes[k] = v
	}
	seen := make(map[string]struct{}, len(s.Completed))
	for _, track := range s.Completed {
		if _, dup := seen[track]; dup {
			continue
		}
		seen[track] = struct{}{}
		out.Completed = append(out.Completed, track)
	}
	return out
}

func (s State) IsCompleted(track string) bool {
	return slices.Contains(s.Completed, track)
}

// Complete appends track to the completion order. It reports false when the
// track was already completed.
func (s *State) Complete(track string) bool {
	if s.IsCompleted(track) {
		return false
	}
	s.Completed = append(s.Completed, track)
	return true
}

func (s *State) Uncomplete(track string) bool {
	idx := slices.Index(s.Completed, track)
	if idx < 0 {
		return false
	}
	s.Completed = slices.Delete(s.Completed, idx, idx+1)
	return true
}

func (s State) Score() int {
	return TotalScore(s.Placements)
}

// HasNote treats whitespace-only text as no note.
func (s State) HasNote(track string) bool {
	return strings.TrimSpace(s.Notes[track]) != ""
}

func (s State) Equal(other State) bool {
	a, b := s.Clone(), other.Clone()
	if len(a.Placements) != len(b.Placements) || len(a.Notes) != len(b.Notes) {
		return false
	}
	for k, v := range a.Placements {
		if w, ok := b.Placements[k]; !ok || w != v {
			return false
		}
	}
	for k, v := range a.Notes {
		if w, ok := b.Notes[k]; !ok || w != v {
			return false
		}
	}
	return slices.Equal(a.Completed, b.Completed)
}

type Record struct {
	Name           string     `json:"name"`
	CreatedAt      time.Time  `json:"date"`
	LastModifiedAt *time.Time `json:"lastModified,omitempty"`
	State
	Imported bool `json:"imported,omitempty"`
}

func (r Record) Clone() Record {
	out := r
	out.State = r.State.Clone()
	if r.LastModifiedAt != nil {
		at := *r.LastModifiedAt
		out.LastModifiedAt = &at
	}
	return out
}

// ExportDocument is the on-disk shape of a single exported session.
type ExportDocument struct {
	Record
	Exported   bool      `json:"exported"`
	ExportDate time.Time `json:"exportDate"`
}

// Summary is a registry listing row.
type Summary struct {
	Name           string
	CreatedAt      time.Time
	LastModifiedAt *time.Time
	Completed      int
	Placed         int
	Score          int
	Active         bool
	Imported       bool
}

func ValidatePlacement(p int) error {
	if p < MinPlacement || p > MaxPlacement {
		return fmt.Errorf("%w: %d (want %d..%d)", apperrors.ErrInvalidPlacement, p, MinPlacement, MaxPlacement)
	}
	return nil
}

// PointsFor maps a finishing position to its score: 15 for 1st, 12 for 2nd,
// then 10 down to 1 for 3rd through 12th.
func PointsFor(p int) (int, error) {
	if err := ValidatePlacement(p); err != nil {
		return 0, err
	}
	switch p {
	case 1:
		return 15, nil
	case 2:
		return 12, nil
	default:
		return 13 - p, nil
	}
}

// TotalScore sums the points of every valid placement.
func TotalScore(placements map[string]int) int {
	total := 0
	for _, p := range placements {
		if pts, err := PointsFor(p); err == nil {
			total += pts
		}
	}
	return total
}

func Ordinal(n int) string {
	suffix := "th"
	switch {
	case n%10 == 1 && n%100 != 11:
		suffix = "st"
	case n%10 == 2 && n%100 != 12:
		suffix = "nd"
	case n%10 == 3 && n%100 != 13:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// DefaultSessionName follows "Session {counter} - {date} {time}".
func DefaultSessionName(counter int, at time.Time) string {
	return fmt.Sprintf("Session %d - %s %s", counter, at.Format("1/2/2006"), at.Format("03:04 PM"))
}
