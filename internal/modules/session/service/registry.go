package service

import (
	"context"
	"fmt"
	"sort"

	"trackboard/internal/modules/session/domain"
	apperrors "trackboard/internal/platform/errors"
)

// Registry maps session names to records. Every mutation is followed by a
// Persist of the whole map and the counter; there is no per-record write.
type Registry struct {
	store    *JSONStore
	sessions map[string]domain.Record
	counter  int
}

func NewRegistry(store *JSONStore) *Registry {
	return &Registry{store: store, sessions: map[string]domain.Record{}, counter: 1}
}

func (r *Registry) Load(ctx context.Context) error {
	stored := map[string]domain.Record{}
	found, err := r.store.Get(ctx, domain.KeySessions, &stored)
	if err != nil {
		return err
	}
	r.sessions = map[string]domain.Record{}
	if found {
		for key, rec := range stored {
			if rec.Name == "" {
				rec.Name = key
			}
			r.sessions[key] = rec.Clone()
		}
	}

	counter := 0
	found, err = r.store.Get(ctx, domain.KeyCounter, &counter)
	if err != nil {
		return err
	}
	r.counter = 1
	if found && counter > 0 {
		r.counter = counter
	}
	return nil
}

// Persist writes the registry before the counter so a partial write never
// loses a record, only a counter bump.
func (r *Registry) Persist(ctx context.Context) error {
	if err := r.store.Put(ctx, domain.KeySessions, r.sessions); err != nil {
		return err
	}
	return r.store.Put(ctx, domain.KeyCounter, r.counter)
}

func (r *Registry) Has(name string) bool {
	_, ok := r.sessions[name]
	return ok
}

func (r *Registry) Get(name string) (domain.Record, bool) {
	rec, ok := r.sessions[name]
	if !ok {
		return domain.Record{}, false
	}
	return rec.Clone(), true
}

func (r *Registry) Put(rec domain.Record) {
	r.sessions[rec.Name] = rec.Clone()
}

func (r *Registry) Remove(name string) {
	delete(r.sessions, name)
}

// Rename moves the record under a new key.
func (r *Registry) Rename(oldName, newName string) error {
	rec, ok := r.sessions[oldName]
	if !ok {
		return fmt.Errorf("%w: session %q", apperrors.ErrNotFound, oldName)
	}
	if newName != oldName && r.Has(newName) {
		return fmt.Errorf("%w: %q", apperrors.ErrDuplicateName, newName)
	}
	delete(r.sessions, oldName)
	rec.Name = newName
	r.sessions[newName] = rec
	return nil
}

func (r *Registry) Counter() int {
	return r.counter
}

func (r *Registry) IncrementCounter() {
	r.counter++
}

// UniqueName appends " (n)" with increasing n until base is free.
func (r *Registry) UniqueName(base string) string {
	name := base
	for n := 1; r.Has(name); n++ {
		name = fmt.Sprintf("%s (%d)", base, n)
	}
	return name
}

// Records returns clones ordered newest first.
func (r *Registry) Records() []domain.Record {
	out := make([]domain.Record, 0, len(r.sessions))
	for _, rec := range r.sessions {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out
}
