package service

import (
	"context"
	"slices"

	"trackboard/internal/modules/session/domain"
)

// Favorites is the global starred-track set. It is never part of a session.
type Favorites struct {
	store *JSONStore
	set   map[string]struct{}
}

func NewFavorites(store *JSONStore) *Favorites {
	return &Favorites{store: store, set: map[string]struct{}{}}
}

func (f *Favorites) Load(ctx context.Context) error {
	var tracks []string
	found, err := f.store.Get(ctx, domain.KeyFavorites, &tracks)
	if err != nil {
		return err
	}
	f.set = map[string]struct{}{}
	if !found {
		return nil
	}
	for _, track := range tracks {
		f.set[track] = struct{}{}
	}
	return nil
}

// Toggle flips membership and persists the whole set before returning.
func (f *Favorites) Toggle(ctx context.Context, track string) (bool, error) {
	_, starred := f.set[track]
	if starred {
		delete(f.set, track)
	} else {
		f.set[track] = struct{}{}
	}
	if err := f.store.Put(ctx, domain.KeyFavorites, f.List()); err != nil {
		if starred {
			f.set[track] = struct{}{}
		} else {
			delete(f.set, track)
		}
		return starred, err
	}
	return !starred, nil
}

func (f *Favorites) IsFavorite(track string) bool {
	_, ok := f.set[track]
	return ok
}

func (f *Favorites) List() []string {
	out := make([]string, 0, len(f.set))
	for track := range f.set {
		out = append(out, track)
	}
	slices.Sort(out)
	return out
}
