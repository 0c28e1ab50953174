package in

import (
	"context"

	"trackboard/internal/modules/session/dto"
)

type Usecase interface {
	State(ctx context.Context) dto.StateOutput
	SetPlacement(ctx context.Context, input dto.PlacementInput) (dto.PlacementOutput, error)
	ClearPlacement(ctx context.Context, track string) (string, error)
	SetNote(ctx context.Context, input dto.NoteInput) (string, error)
	ToggleCompletion(ctx context.Context, track string) (dto.CompletionOutput, error)
	SetCompleted(ctx context.Context, input dto.CompletionInput) (dto.CompletionOutput, error)
	ResetCompleted(ctx context.Context) error
	ToggleFavorite(ctx context.Context, track string) (dto.FavoriteOutput, error)
	SetSortMode(ctx context.Context, mode string) (string, error)

	CreateSession(ctx context.Context, input dto.CreateInput) (dto.SessionOutput, error)
	SelectSession(ctx context.Context, name string) error
	DeselectSession(ctx context.Context) error
	RenameSession(ctx context.Context, oldName, newName string) error
	DeleteSession(ctx context.Context, name string) error
	ListSessions(ctx context.Context) []dto.SessionOutput
	GetSession(ctx context.Context, name string) (dto.SessionDetailOutput, error)
	ExportSession(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error)
	ImportSession(ctx context.Context, blob []byte) (dto.SessionOutput, error)

	Subscribe(fn func(dto.ChangeOutput)) func()
}
