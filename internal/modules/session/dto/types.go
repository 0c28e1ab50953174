package dto

import "time"

type StateOutput struct {
	// Current is the selected saved session; empty while the temporary
	// session backs the working copy.
	Current    string
	Placements map[string]int
	Notes      map[string]string
	Completed  []string
	Favorites  []string
	Score      int
	SortMode   string
	Counter    int
}

type PlacementInput struct {
	Track     string
	Placement int
}

type PlacementOutput struct {
	Track     string
	Placement int
	Points    int
}

type NoteInput struct {
	Track string
	Note  string
}

type CompletionInput struct {
	Track     string
	Completed bool
}

type CompletionOutput struct {
	Track     string
	Completed bool
}

type FavoriteOutput struct {
	Track    string
	Favorite bool
}

type CreateInput struct {
	Name      string
	Overwrite bool
	Select    bool
}

type SessionOutput struct {
	Name           string
	CreatedAt      time.Time
	LastModifiedAt *time.Time
	Completed      int
	Placed         int
	Score          int
	Active         bool
	Imported       bool
}

type SessionDetailOutput struct {
	SessionOutput
	Placements      map[string]int
	Notes           map[string]string
	CompletedTracks []string
	Markdown        string
}

const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

type ExportInput struct {
	Name   string
	Format string
}

type ExportOutput struct {
	Filename string
	Content  []byte
}

type ChangeOutput struct {
	Kind      string
	Session   string
	Track     string
	Placement int
	Completed bool
	Favorite  bool
	Celebrate bool
}
