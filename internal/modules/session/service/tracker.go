package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"trackboard/internal/modules/session/domain"
	"trackboard/internal/platform/clock"
	apperrors "trackboard/internal/platform/errors"
	"trackboard/internal/platform/logging"
)

type CreateOptions struct {
	Name      string
	Overwrite bool
	// Select makes the new session current right after it is stored.
	Select bool
}

// Tracker owns the working copy of placements, notes and completed tracks and
// decides which backing store each change is written through to: the
// temporary session while no saved session is current, otherwise the current
// saved session. Switching always flushes the old store and loads the new one
// wholesale; the two are never merged.
type Tracker struct {
	mu     sync.Mutex
	clock  clock.Clock
	logger *slog.Logger

	store     *JSONStore
	favorites *Favorites
	temp      *TempSession
	registry  *Registry
	events    *Dispatcher

	active     domain.State
	current    string
	celebrated map[string]bool
	sortMode   string
}

func NewTracker(clk clock.Clock, store *JSONStore, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Tracker{
		clock:      clk,
		logger:     logger,
		store:      store,
		favorites:  NewFavorites(store),
		temp:       NewTempSession(store),
		registry:   NewRegistry(store),
		events:     NewDispatcher(),
		active:     domain.NewState(),
		celebrated: map[string]bool{},
	}
}

// Restore loads durable state. Favorites load first; the working copy comes
// from the temporary session because saved sessions are never resumed.
func (t *Tracker) Restore(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.favorites.Load(ctx); err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}
	if err := t.registry.Load(ctx); err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}
	if err := t.temp.Load(ctx); err != nil {
		return fmt.Errorf("load temp session: %w", err)
	}
	mode := ""
	if found, err := t.store.Get(ctx, domain.KeySortMode, &mode); err != nil {
		return fmt.Errorf("load sort mode: %w", err)
	} else if found {
		t.sortMode = mode
	}
	t.current = ""
	t.active = t.temp.Restore()
	t.celebrated = map[string]bool{}
	t.logger.Debug("state restored", "sessions", len(t.registry.Records()), "completed", len(t.active.Completed))
	return nil
}

func (t *Tracker) Subscribe(fn Listener) func() {
	return t.events.Subscribe(fn)
}

// ─── reads ───────────────────────────────────────────────────────────────────

func (t *Tracker) State() domain.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active.Clone()
}

func (t *Tracker) Current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resolvedCurrent()
}

func (t *Tracker) TempSession() domain.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.temp.Restore()
}

func (t *Tracker) Favorites() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.favorites.List()
}

func (t *Tracker) IsFavorite(track string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.favorites.IsFavorite(track)
}

func (t *Tracker) Session(name string) (domain.Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.registry.Get(name)
}

func (t *Tracker) Sessions() []domain.Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.registry.Records()
}

func (t *Tracker) Summaries() []domain.Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	current := t.resolvedCurrent()
	records := t.registry.Records()
	out := make([]domain.Summary, 0, len(records))
	for _, rec := range records {
		out = append(out, domain.Summary{
			Name:           rec.Name,
			CreatedAt:      rec.CreatedAt,
			LastModifiedAt: rec.LastModifiedAt,
			Completed:      len(rec.Completed),
			Placed:         len(rec.Placements),
			Score:          rec.Score(),
			Active:         rec.Name == current,
			Imported:       rec.Imported,
		})
	}
	return out
}

func (t *Tracker) SessionCounter() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.registry.Counter()
}

func (t *Tracker) SortMode() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sortMode
}

// ─── working copy mutations ──────────────────────────────────────────────────

func (t *Tracker) SetPlacement(ctx context.Context, track string, placement int) error {
	if err := validTrack(track); err != nil {
		return err
	}
	if err := domain.ValidatePlacement(placement); err != nil {
		return err
	}
	return t.apply(ctx, func() ([]domain.Event, error) {
		t.active.Placements[track] = placement
		ev := domain.Event{Kind: domain.EventPlacement, Track: track, Placement: placement}
		ev.Celebrate = t.markCelebration(track, placement)
		return []domain.Event{ev}, nil
	})
}

func (t *Tracker) ClearPlacement(ctx context.Context, track string) error {
	if err := validTrack(track); err != nil {
		return err
	}
	return t.apply(ctx, func() ([]domain.Event, error) {
		if _, ok := t.active.Placements[track]; !ok {
			return nil, nil
		}
		delete(t.active.Placements, track)
		delete(t.celebrated, track)
		return []domain.Event{{Kind: domain.EventPlacement, Track: track}}, nil
	})
}

func (t *Tracker) SetNote(ctx context.Context, track, note string) error {
	if err := validTrack(track); err != nil {
		return err
	}
	return t.apply(ctx, func() ([]domain.Event, error) {
		t.active.Notes[track] = note
		return []domain.Event{{Kind: domain.EventNote, Track: track}}, nil
	})
}

// ToggleCompletion flips a track's completed flag. Un-completing a track drops
// its placement and keeps its note.
func (t *Tracker) ToggleCompletion(ctx context.Context, track string) (bool, error) {
	if err := validTrack(track); err != nil {
		return false, err
	}
	completed := false
	err := t.apply(ctx, func() ([]domain.Event, error) {
		if t.active.Uncomplete(track) {
			events := []domain.Event{{Kind: domain.EventCompletion, Track: track}}
			if _, placed := t.active.Placements[track]; placed {
				delete(t.active.Placements, track)
				delete(t.celebrated, track)
				events = append(events, domain.Event{Kind: domain.EventPlacement, Track: track})
			}
			return events, nil
		}
		t.active.Complete(track)
		completed = true
		return []domain.Event{{Kind: domain.EventCompletion, Track: track, Completed: true}}, nil
	})
	return completed, err
}

// ResetCompleted clears the completed list; placements and notes stay.
func (t *Tracker) ResetCompleted(ctx context.Context) error {
	return t.apply(ctx, func() ([]domain.Event, error) {
		t.active.Completed = []string{}
		return []domain.Event{{Kind: domain.EventReset}}, nil
	})
}

// ToggleFavorite persists the global set directly; no session is written.
func (t *Tracker) ToggleFavorite(ctx context.Context, track string) (bool, error) {
	if err := validTrack(track); err != nil {
		return false, err
	}
	t.mu.Lock()
	starred, err := t.favorites.Toggle(ctx, track)
	current := t.resolvedCurrent()
	t.mu.Unlock()
	if err != nil {
		return starred, err
	}
	t.events.Emit(domain.Event{Kind: domain.EventFavorite, Session: current, Track: track, Favorite: starred})
	return starred, nil
}

func (t *Tracker) SetSortMode(ctx context.Context, mode string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.store.Put(ctx, domain.KeySortMode, mode); err != nil {
		return err
	}
	t.sortMode = mode
	return nil
}

// ─── session switching ───────────────────────────────────────────────────────

// Create stores a new saved session. Created while the temporary session is
// current, it takes over the working copy and both the working copy and the
// temporary session are reset to empty; otherwise it starts empty.
func (t *Tracker) Create(ctx context.Context, opts CreateOptions) (string, error) {
	t.mu.Lock()
	name, events, err := t.createLocked(ctx, opts)
	t.mu.Unlock()
	if err != nil {
		return "", err
	}
	t.events.Emit(events...)
	return name, nil
}

func (t *Tracker) createLocked(ctx context.Context, opts CreateOptions) (string, []domain.Event, error) {
	now := t.clock.Now()
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = domain.DefaultSessionName(t.registry.Counter(), now)
	}
	if t.registry.Has(name) && !opts.Overwrite {
		return "", nil, fmt.Errorf("%w: %q", apperrors.ErrSessionExists, name)
	}

	current := t.resolvedCurrent()
	fromScratch := current == ""
	rec := domain.Record{Name: name, CreatedAt: now, State: domain.NewState()}
	if fromScratch {
		rec.State = t.active.Clone()
	}
	t.registry.Put(rec)
	t.registry.IncrementCounter()
	if err := t.registry.Persist(ctx); err != nil {
		return "", nil, err
	}
	if fromScratch {
		if err := t.temp.Replace(ctx, domain.NewState()); err != nil {
			return "", nil, err
		}
		t.replaceActive(domain.NewState())
	} else if name == current {
		// The current session was overwritten with an empty record.
		t.replaceActive(domain.NewState())
	}
	t.logger.Info("session created", "name", name, "from_scratch", fromScratch)

	events := []domain.Event{{Kind: domain.EventRegistry, Session: t.resolvedCurrent()}}
	if opts.Select && t.resolvedCurrent() != name {
		more, err := t.selectLocked(ctx, name)
		if err != nil {
			return "", nil, err
		}
		events = append(events, more...)
	}
	return name, events, nil
}

// Select makes name current. Selecting the current session deselects it.
// Unknown names are ignored.
func (t *Tracker) Select(ctx context.Context, name string) error {
	t.mu.Lock()
	events, err := t.selectLocked(ctx, name)
	t.mu.Unlock()
	if err != nil {
		return err
	}
	t.events.Emit(events...)
	return nil
}

func (t *Tracker) selectLocked(ctx context.Context, name string) ([]domain.Event, error) {
	rec, ok := t.registry.Get(name)
	if !ok {
		return nil, nil
	}
	if t.resolvedCurrent() == name {
		return t.deselectLocked(ctx)
	}
	if err := t.flushLocked(ctx); err != nil {
		return nil, err
	}
	t.current = name
	t.replaceActive(rec.State)
	t.logger.Debug("session selected", "name", name)
	return []domain.Event{{Kind: domain.EventSwitch, Session: name}}, nil
}

// Deselect flushes the current session and returns to the temporary one.
func (t *Tracker) Deselect(ctx context.Context) error {
	t.mu.Lock()
	events, err := t.deselectLocked(ctx)
	t.mu.Unlock()
	if err != nil {
		return err
	}
	t.events.Emit(events...)
	return nil
}

func (t *Tracker) deselectLocked(ctx context.Context) ([]domain.Event, error) {
	if t.resolvedCurrent() == "" {
		return nil, nil
	}
	if err := t.flushLocked(ctx); err != nil {
		return nil, err
	}
	t.current = ""
	t.replaceActive(t.temp.Restore())
	t.logger.Debug("session deselected")
	return []domain.Event{{Kind: domain.EventSwitch}}, nil
}

func (t *Tracker) Rename(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("%w: new session name is empty", apperrors.ErrInvalidInput)
	}
	t.mu.Lock()
	if newName == oldName {
		t.mu.Unlock()
		return nil
	}
	if err := t.registry.Rename(oldName, newName); err != nil {
		t.mu.Unlock()
		return err
	}
	if t.current == oldName {
		t.current = newName
	}
	err := t.registry.Persist(ctx)
	current := t.resolvedCurrent()
	t.mu.Unlock()
	if err != nil {
		return err
	}
	t.events.Emit(domain.Event{Kind: domain.EventRegistry, Session: current})
	return nil
}

// Delete removes a saved session, deselecting it first when current.
// Unknown names are ignored.
func (t *Tracker) Delete(ctx context.Context, name string) error {
	t.mu.Lock()
	if !t.registry.Has(name) {
		t.mu.Unlock()
		return nil
	}
	var events []domain.Event
	if t.resolvedCurrent() == name {
		deselected, err := t.deselectLocked(ctx)
		if err != nil {
			t.mu.Unlock()
			return err
		}
		events = append(events, deselected...)
	}
	t.registry.Remove(name)
	err := t.registry.Persist(ctx)
	current := t.resolvedCurrent()
	t.mu.Unlock()
	if err != nil {
		return err
	}
	t.logger.Info("session deleted", "name", name)
	t.events.Emit(append(events, domain.Event{Kind: domain.EventRegistry, Session: current})...)
	return nil
}

// Import stores a parsed session under a collision-free name.
func (t *Tracker) Import(ctx context.Context, blob []byte) (string, error) {
	t.mu.Lock()
	rec, err := domain.ParseImport(blob, t.clock.Now())
	if err != nil {
		t.mu.Unlock()
		return "", err
	}
	rec.Name = t.registry.UniqueName(rec.Name)
	rec.Imported = true
	rec.LastModifiedAt = nil
	t.registry.Put(rec)
	err = t.registry.Persist(ctx)
	current := t.resolvedCurrent()
	t.mu.Unlock()
	if err != nil {
		return "", err
	}
	t.logger.Info("session imported", "name", rec.Name)
	t.events.Emit(domain.Event{Kind: domain.EventRegistry, Session: current})
	return rec.Name, nil
}

// ─── internals ───────────────────────────────────────────────────────────────

// apply runs one mutation of the working copy, writes it through to the
// authoritative store and only then dispatches the resulting events.
func (t *Tracker) apply(ctx context.Context, mutate func() ([]domain.Event, error)) error {
	t.mu.Lock()
	events, err := mutate()
	if err == nil && len(events) > 0 {
		err = t.flushLocked(ctx)
	}
	current := t.resolvedCurrent()
	t.mu.Unlock()
	if err != nil {
		return err
	}
	for i := range events {
		events[i].Session = current
	}
	t.events.Emit(events...)
	return nil
}

// flushLocked writes the working copy into whichever store is authoritative.
func (t *Tracker) flushLocked(ctx context.Context) error {
	current := t.resolvedCurrent()
	if current == "" {
		return t.temp.Replace(ctx, t.active)
	}
	rec, _ := t.registry.Get(current)
	rec.State = t.active.Clone()
	now := t.clock.Now()
	rec.LastModifiedAt = &now
	t.registry.Put(rec)
	return t.registry.Persist(ctx)
}

// resolvedCurrent treats a pointer to a missing record as no session.
func (t *Tracker) resolvedCurrent() string {
	if t.current != "" && !t.registry.Has(t.current) {
		t.logger.Warn("current session vanished from registry", "name", t.current)
		t.current = ""
	}
	return t.current
}

func (t *Tracker) replaceActive(state domain.State) {
	t.active = state.Clone()
	for track := range t.celebrated {
		if t.active.Placements[track] != 1 {
			delete(t.celebrated, track)
		}
	}
}

// markCelebration reports whether reaching placement should celebrate and
// keeps the per-track marker in step: set on the first 1st place, cleared on
// any other placement.
func (t *Tracker) markCelebration(track string, placement int) bool {
	if placement != 1 {
		delete(t.celebrated, track)
		return false
	}
	if t.celebrated[track] {
		return false
	}
	t.celebrated[track] = true
	return true
}

func validTrack(track string) error {
	if strings.TrimSpace(track) == "" {
		return fmt.Errorf("%w: track is required", apperrors.ErrInvalidInput)
	}
	return nil
}
