package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "trackboard/internal/platform/errors"
)

// ParseImport validates an exported session blob. The name must be present
// and placements/notes must be JSON objects; completedTracks is optional.
// fallback stamps records that carry no creation date.
func ParseImport(blob []byte, fallback time.Time) (Record, error) {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(blob, &fields); err != nil {
		return Record{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidFormat, err)
	}

	var name string
	if raw, ok := fields["name"]; ok {
		if err := json.Unmarshal(raw, &name); err != nil {
			return Record{}, fmt.Errorf("%w: name must be a string", apperrors.ErrInvalidFormat)
		}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Record{}, fmt.Errorf("%w: missing name", apperrors.ErrInvalidFormat)
	}
	for _, key := range []string{"placements", "notes"} {
		if !isObject(fields[key]) {
			return Record{}, fmt.Errorf("%w: %s must be an object", apperrors.ErrInvalidFormat, key)
		}
	}

	rec := Record{Name: name, CreatedAt: fallback, State: NewState()}
	placements, err := decodePlacements(fields["placements"])
	if err != nil {
		return Record{}, err
	}
	rec.Placements = placements
	if err := json.Unmarshal(fields["notes"], &rec.Notes); err != nil {
		return Record{}, fmt.Errorf("%w: notes: %v", apperrors.ErrInvalidFormat, err)
	}
	if raw, ok := fields["completedTracks"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &rec.Completed); err != nil {
			return Record{}, fmt.Errorf("%w: completedTracks: %v", apperrors.ErrInvalidFormat, err)
		}
	}
	if raw, ok := fields["date"]; ok && !isNull(raw) {
		var created time.Time
		if err := json.Unmarshal(raw, &created); err == nil {
			rec.CreatedAt = created
		}
	}
	rec.State = rec.State.Clone()
	return rec, nil
}

// decodePlacements accepts any JSON number with an integral value, so files
// written by other tools as 3.0 still import.
func decodePlacements(raw json.RawMessage) (map[string]int, error) {
	numbers := map[string]float64{}
	if err := json.Unmarshal(raw, &numbers); err != nil {
		return nil, fmt.Errorf("%w: placements: %v", apperrors.ErrInvalidFormat, err)
	}
	out := make(map[string]int, len(numbers))
	for track, n := range numbers {
		p := int(n)
		if float64(p) != n {
			return nil, fmt.Errorf("%w: placement for %q is not a whole number", apperrors.ErrInvalidFormat, track)
		}
		if err := ValidatePlacement(p); err != nil {
			return nil, fmt.Errorf("%w: placement for %q: %v", apperrors.ErrInvalidFormat, track, err)
		}
		out[track] = p
	}
	return out, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
