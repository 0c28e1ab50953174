package domain

type EventKind string

const (
	EventPlacement  EventKind = "placement"
	EventNote       EventKind = "note"
	EventCompletion EventKind = "completion"
	EventFavorite   EventKind = "favorite"
	EventReset      EventKind = "reset"
	EventSwitch     EventKind = "switch"
	EventRegistry   EventKind = "registry"
)

// Event describes one applied change. It is delivered only after the change
// has been written to its backing store.
type Event struct {
	Kind EventKind
	// Session is the current session after the change; empty means the
	// temporary session.
	Session   string
	Track     string
	Placement int
	Completed bool
	Favorite  bool
	// Celebrate is set the first time a track reaches 1st place.
	Celebrate bool
}
