package apperrors

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrInvalidPlacement = errors.New("invalid placement")
	ErrDuplicateName    = errors.New("session name already exists")
	ErrSessionExists    = errors.New("session exists; overwrite not confirmed")
	ErrInvalidFormat    = errors.New("invalid session file format")
	ErrUnknownTrack     = errors.New("unknown track")
)
