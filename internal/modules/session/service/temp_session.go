package service

import (
	"context"

	"trackboard/internal/modules/session/domain"
)

// TempSession holds the unnamed session that backs the working copy while no
// saved session is selected.
type TempSession struct {
	store *JSONStore
	data  domain.State
}

func NewTempSession(store *JSONStore) *TempSession {
	return &TempSession{store: store, data: domain.NewState()}
}

func (t *TempSession) Load(ctx context.Context) error {
	var stored domain.State
	found, err := t.store.Get(ctx, domain.KeyTempSession, &stored)
	if err != nil {
		return err
	}
	if !found {
		t.data = domain.NewState()
		return nil
	}
	t.data = stored.Clone()
	return nil
}

// Restore returns a deep copy of the held data; empty on first run.
func (t *TempSession) Restore() domain.State {
	return t.data.Clone()
}

// Replace overwrites the held data wholesale and persists it.
func (t *TempSession) Replace(ctx context.Context, state domain.State) error {
	t.data = state.Clone()
	return t.store.Put(ctx, domain.KeyTempSession, t.data)
}
