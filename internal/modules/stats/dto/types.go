package dto

type TrackStatOutput struct {
	Track        string
	Races        int
	AvgPlacement float64
	AvgScore     float64
	Best         int
}

type ReportOutput struct {
	TotalSessions       int
	TotalRaces          int
	AvgScorePerSession  int
	OverallAvgPlacement float64
	Tracks              []TrackStatOutput
	// Markdown is the report rendered as a summary list and a per-track table.
	Markdown string
}
