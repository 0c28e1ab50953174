package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	catalogin "trackboard/internal/modules/catalog/port/in"
	"trackboard/internal/modules/session/domain"
	sessiondto "trackboard/internal/modules/session/dto"
	sessionin "trackboard/internal/modules/session/port/in"
	"trackboard/internal/modules/session/service"
	apperrors "trackboard/internal/platform/errors"
	"trackboard/internal/platform/slug"
)

type Interactor struct {
	tracker *service.Tracker
	catalog catalogin.Usecase
}

// NewInteractor wires the tracker to an optional catalog. Without a catalog,
// track names are used verbatim.
func NewInteractor(tracker *service.Tracker, catalog catalogin.Usecase) sessionin.Usecase {
	return &Interactor{tracker: tracker, catalog: catalog}
}

func (i *Interactor) State(_ context.Context) sessiondto.StateOutput {
	state := i.tracker.State()
	return sessiondto.StateOutput{
		Current:    i.tracker.Current(),
		Placements: state.Placements,
		Notes:      state.Notes,
		Completed:  state.Completed,
		Favorites:  i.tracker.Favorites(),
		Score:      state.Score(),
		SortMode:   i.tracker.SortMode(),
		Counter:    i.tracker.SessionCounter(),
	}
}

func (i *Interactor) SetPlacement(ctx context.Context, input sessiondto.PlacementInput) (sessiondto.PlacementOutput, error) {
	track, err := i.resolve(ctx, input.Track)
	if err != nil {
		return sessiondto.PlacementOutput{}, err
	}
	points, err := domain.PointsFor(input.Placement)
	if err != nil {
		return sessiondto.PlacementOutput{}, err
	}
	if err := i.tracker.SetPlacement(ctx, track, input.Placement); err != nil {
		return sessiondto.PlacementOutput{}, err
	}
	return sessiondto.PlacementOutput{Track: track, Placement: input.Placement, Points: points}, nil
}

func (i *Interactor) ClearPlacement(ctx context.Context, track string) (string, error) {
	name, err := i.resolve(ctx, track)
	if err != nil {
		return "", err
	}
	return name, i.tracker.ClearPlacement(ctx, name)
}

func (i *Interactor) SetNote(ctx context.Context, input sessiondto.NoteInput) (string, error) {
	name, err := i.resolve(ctx, input.Track)
	if err != nil {
		return "", err
	}
	return name, i.tracker.SetNote(ctx, name, input.Note)
}

func (i *Interactor) ToggleCompletion(ctx context.Context, track string) (sessiondto.CompletionOutput, error) {
	name, err := i.resolve(ctx, track)
	if err != nil {
		return sessiondto.CompletionOutput{}, err
	}
	completed, err := i.tracker.ToggleCompletion(ctx, name)
	if err != nil {
		return sessiondto.CompletionOutput{}, err
	}
	return sessiondto.CompletionOutput{Track: name, Completed: completed}, nil
}

// SetCompleted toggles only when the track is not already in the wanted state.
func (i *Interactor) SetCompleted(ctx context.Context, input sessiondto.CompletionInput) (sessiondto.CompletionOutput, error) {
	name, err := i.resolve(ctx, input.Track)
	if err != nil {
		return sessiondto.CompletionOutput{}, err
	}
	if i.tracker.State().IsCompleted(name) == input.Completed {
		return sessiondto.CompletionOutput{Track: name, Completed: input.Completed}, nil
	}
	completed, err := i.tracker.ToggleCompletion(ctx, name)
	if err != nil {
		return sessiondto.CompletionOutput{}, err
	}
	return sessiondto.CompletionOutput{Track: name, Completed: completed}, nil
}

func (i *Interactor) ResetCompleted(ctx context.Context) error {
	return i.tracker.ResetCompleted(ctx)
}

func (i *Interactor) ToggleFavorite(ctx context.Context, track string) (sessiondto.FavoriteOutput, error) {
	name, err := i.resolve(ctx, track)
	if err != nil {
		return sessiondto.FavoriteOutput{}, err
	}
	starred, err := i.tracker.ToggleFavorite(ctx, name)
	if err != nil {
		return sessiondto.FavoriteOutput{}, err
	}
	return sessiondto.FavoriteOutput{Track: name, Favorite: starred}, nil
}

func (i *Interactor) SetSortMode(ctx context.Context, mode string) (string, error) {
	if i.catalog != nil {
		normalized, err := i.catalog.NormalizeSortMode(mode)
		if err != nil {
			return "", err
		}
		mode = normalized
	}
	return mode, i.tracker.SetSortMode(ctx, mode)
}

func (i *Interactor) CreateSession(ctx context.Context, input sessiondto.CreateInput) (sessiondto.SessionOutput, error) {
	name, err := i.tracker.Create(ctx, service.CreateOptions{Name: input.Name, Overwrite: input.Overwrite, Select: input.Select})
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return i.summary(name)
}

// SelectSession and DeleteSession ignore names that are not saved.
func (i *Interactor) SelectSession(ctx context.Context, name string) error {
	return i.tracker.Select(ctx, name)
}

func (i *Interactor) DeselectSession(ctx context.Context) error {
	return i.tracker.Deselect(ctx)
}

func (i *Interactor) RenameSession(ctx context.Context, oldName, newName string) error {
	return i.tracker.Rename(ctx, oldName, newName)
}

func (i *Interactor) DeleteSession(ctx context.Context, name string) error {
	return i.tracker.Delete(ctx, name)
}

func (i *Interactor) ListSessions(_ context.Context) []sessiondto.SessionOutput {
	summaries := i.tracker.Summaries()
	out := make([]sessiondto.SessionOutput, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, toSessionOutput(s))
	}
	return out
}

func (i *Interactor) GetSession(_ context.Context, name string) (sessiondto.SessionDetailOutput, error) {
	rec, ok := i.tracker.Session(name)
	if !ok {
		return sessiondto.SessionDetailOutput{}, fmt.Errorf("%w: session %q", apperrors.ErrNotFound, name)
	}
	md, err := service.RenderMarkdown(rec)
	if err != nil {
		return sessiondto.SessionDetailOutput{}, err
	}
	summary, err := i.summary(name)
	if err != nil {
		return sessiondto.SessionDetailOutput{}, err
	}
	return sessiondto.SessionDetailOutput{
		SessionOutput:   summary,
		Placements:      rec.Placements,
		Notes:           rec.Notes,
		CompletedTracks: rec.Completed,
		Markdown:        md,
	}, nil
}

func (i *Interactor) ExportSession(_ context.Context, input sessiondto.ExportInput) (sessiondto.ExportOutput, error) {
	doc, err := i.tracker.Export(input.Name)
	if err != nil {
		return sessiondto.ExportOutput{}, err
	}
	switch strings.ToLower(strings.TrimSpace(input.Format)) {
	case "", sessiondto.FormatJSON:
		payload, err := service.EncodeExport(doc)
		if err != nil {
			return sessiondto.ExportOutput{}, err
		}
		return sessiondto.ExportOutput{Filename: slug.ExportFilename(doc.Name), Content: payload}, nil
	case sessiondto.FormatMarkdown, "md":
		md, err := service.RenderMarkdown(doc.Record)
		if err != nil {
			return sessiondto.ExportOutput{}, err
		}
		return sessiondto.ExportOutput{Filename: slug.Filename(doc.Name) + "_session.md", Content: []byte(md)}, nil
	default:
		return sessiondto.ExportOutput{}, fmt.Errorf("%w: unknown export format %q", apperrors.ErrInvalidInput, input.Format)
	}
}

func (i *Interactor) ImportSession(ctx context.Context, blob []byte) (sessiondto.SessionOutput, error) {
	name, err := i.tracker.Import(ctx, blob)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return i.summary(name)
}

func (i *Interactor) Subscribe(fn func(sessiondto.ChangeOutput)) func() {
	return i.tracker.Subscribe(func(ev domain.Event) {
		fn(sessiondto.ChangeOutput{
			Kind:      string(ev.Kind),
			Session:   ev.Session,
			Track:     ev.Track,
			Placement: ev.Placement,
			Completed: ev.Completed,
			Favorite:  ev.Favorite,
			Celebrate: ev.Celebrate,
		})
	})
}

// resolve maps user input to a catalog track. Names unknown to the catalog
// are still accepted when the working copy already holds data for them, so
// stale entries stay editable.
func (i *Interactor) resolve(ctx context.Context, track string) (string, error) {
	raw := strings.TrimSpace(track)
	if raw == "" {
		return "", fmt.Errorf("%w: track is required", apperrors.ErrInvalidInput)
	}
	if i.catalog == nil {
		return raw, nil
	}
	name, err := i.catalog.Resolve(ctx, raw)
	if err == nil {
		return name, nil
	}
	if errors.Is(err, apperrors.ErrUnknownTrack) {
		state := i.tracker.State()
		if _, ok := state.Placements[raw]; ok {
			return raw, nil
		}
		if _, ok := state.Notes[raw]; ok || state.IsCompleted(raw) {
			return raw, nil
		}
	}
	return "", err
}

func (i *Interactor) summary(name string) (sessiondto.SessionOutput, error) {
	for _, s := range i.tracker.Summaries() {
		if s.Name == name {
			return toSessionOutput(s), nil
		}
	}
	return sessiondto.SessionOutput{}, fmt.Errorf("%w: session %q", apperrors.ErrNotFound, name)
}

func toSessionOutput(s domain.Summary) sessiondto.SessionOutput {
	return sessiondto.SessionOutput{
		Name:           s.Name,
		CreatedAt:      s.CreatedAt,
		LastModifiedAt: s.LastModifiedAt,
		Completed:      s.Completed,
		Placed:         s.Placed,
		Score:          s.Score,
		Active:         s.Active,
		Imported:       s.Imported,
	}
}
