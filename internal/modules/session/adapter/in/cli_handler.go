package in

import (
	"context"

	sessiondto "trackboard/internal/modules/session/dto"
	sessionin "trackboard/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) State(ctx context.Context) sessiondto.StateOutput {
	return h.usecase.State(ctx)
}

func (h CLIHandler) Place(ctx context.Context, track string, placement int) (sessiondto.PlacementOutput, error) {
	return h.usecase.SetPlacement(ctx, sessiondto.PlacementInput{Track: track, Placement: placement})
}

func (h CLIHandler) Clear(ctx context.Context, track string) (string, error) {
	return h.usecase.ClearPlacement(ctx, track)
}

func (h CLIHandler) Note(ctx context.Context, track, note string) (string, error) {
	return h.usecase.SetNote(ctx, sessiondto.NoteInput{Track: track, Note: note})
}

func (h CLIHandler) Toggle(ctx context.Context, track string) (sessiondto.CompletionOutput, error) {
	return h.usecase.ToggleCompletion(ctx, track)
}

func (h CLIHandler) SetCompleted(ctx context.Context, track string, completed bool) (sessiondto.CompletionOutput, error) {
	return h.usecase.SetCompleted(ctx, sessiondto.CompletionInput{Track: track, Completed: completed})
}

func (h CLIHandler) Reset(ctx context.Context) error {
	return h.usecase.ResetCompleted(ctx)
}

func (h CLIHandler) Star(ctx context.Context, track string) (sessiondto.FavoriteOutput, error) {
	return h.usecase.ToggleFavorite(ctx, track)
}

func (h CLIHandler) Sort(ctx context.Context, mode string) (string, error) {
	return h.usecase.SetSortMode(ctx, mode)
}

func (h CLIHandler) Create(ctx context.Context, name string, overwrite, selectIt bool) (sessiondto.SessionOutput, error) {
	return h.usecase.CreateSession(ctx, sessiondto.CreateInput{Name: name, Overwrite: overwrite, Select: selectIt})
}

func (h CLIHandler) Select(ctx context.Context, name string) error {
	return h.usecase.SelectSession(ctx, name)
}

func (h CLIHandler) Deselect(ctx context.Context) error {
	return h.usecase.DeselectSession(ctx)
}

func (h CLIHandler) Rename(ctx context.Context, oldName, newName string) error {
	return h.usecase.RenameSession(ctx, oldName, newName)
}

func (h CLIHandler) Delete(ctx context.Context, name string) error {
	return h.usecase.DeleteSession(ctx, name)
}

func (h CLIHandler) List(ctx context.Context) []sessiondto.SessionOutput {
	return h.usecase.ListSessions(ctx)
}

func (h CLIHandler) Get(ctx context.Context, name string) (sessiondto.SessionDetailOutput, error) {
	return h.usecase.GetSession(ctx, name)
}

func (h CLIHandler) Export(ctx context.Context, name, format string) (sessiondto.ExportOutput, error) {
	return h.usecase.ExportSession(ctx, sessiondto.ExportInput{Name: name, Format: format})
}

func (h CLIHandler) Import(ctx context.Context, blob []byte) (sessiondto.SessionOutput, error) {
	return h.usecase.ImportSession(ctx, blob)
}
