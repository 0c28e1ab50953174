package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"trackboard/internal/modules/catalog/domain"
	catalogout "trackboard/internal/modules/catalog/port/out"
	apperrors "trackboard/internal/platform/errors"
)

// Catalog is the loaded track list with a case-insensitive name index.
type Catalog struct {
	tracks []domain.Track
	index  map[string]int
}

func Load(ctx context.Context, source catalogout.Source) (*Catalog, error) {
	tracks, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}
	return New(tracks)
}

func New(tracks []domain.Track) (*Catalog, error) {
	if err := domain.Validate(tracks); err != nil {
		return nil, err
	}
	c := &Catalog{tracks: make([]domain.Track, len(tracks)), index: make(map[string]int, len(tracks))}
	for i, t := range tracks {
		t.Name = strings.TrimSpace(t.Name)
		c.tracks[i] = t
		c.index[strings.ToLower(t.Name)] = i
	}
	return c, nil
}

func (c *Catalog) Tracks() []domain.Track {
	return append([]domain.Track(nil), c.tracks...)
}

func (c *Catalog) Contains(name string) bool {
	_, ok := c.index[strings.ToLower(name)]
	return ok
}

// Resolve maps user input to a catalog name: an exact case-insensitive match
// wins, otherwise the query must be the prefix of exactly one track.
func (c *Catalog) Resolve(query string) (string, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", fmt.Errorf("%w: track is required", apperrors.ErrInvalidInput)
	}
	if i, ok := c.index[q]; ok {
		return c.tracks[i].Name, nil
	}
	var matches []string
	for _, t := range c.tracks {
		if strings.HasPrefix(strings.ToLower(t.Name), q) {
			matches = append(matches, t.Name)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownTrack, query)
	default:
		sort.Strings(matches)
		return "", fmt.Errorf("%w: %q matches %s", apperrors.ErrUnknownTrack, query, strings.Join(matches, ", "))
	}
}
