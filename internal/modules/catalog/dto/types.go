package dto

type TrackOutput struct {
	Name  string
	Image string
	Code  string
}

type OrderInput struct {
	Mode      string
	Favorites []string
}

type OrderOutput struct {
	Mode   string
	Tracks []TrackOutput
}
