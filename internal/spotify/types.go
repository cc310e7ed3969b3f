package spotify

// Track is the flattened track metadata served to the dashboard.
type Track struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Artists     string  `json:"artists"` // Comma-separated artist names
	Album       string  `json:"album"`
	Popularity  int     `json:"popularity"`
	ReleaseDate string  `json:"release_date"`
	DurationMs  int     `json:"duration_ms"`
	PreviewURL  *string `json:"preview_url"`
	AlbumImage  *string `json:"album_image"`
	ExternalURL string  `json:"external_url"`
}

// trackResponse is the JSON body of GET /tracks/{id}.
// Pointer fields distinguish absent keys from zero values.
type trackResponse struct {
	ID           *string           `json:"id"`
	Name         *string           `json:"name"`
	Artists      []artistObject    `json:"artists"`
	Album        *albumObject      `json:"album"`
	Popularity   *int              `json:"popularity"`
	DurationMs   *int              `json:"duration_ms"`
	PreviewURL   *string           `json:"preview_url"`
	ExternalURLs map[string]string `json:"external_urls"`
}

type artistObject struct {
	ID   string  `json:"id"`
	Name *string `json:"name"`
}

type albumObject struct {
	ID          string        `json:"id"`
	Name        *string       `json:"name"`
	ReleaseDate *string       `json:"release_date"`
	Images      []imageObject `json:"images"`
}

type imageObject struct {
	URL    *string `json:"url"`
	Height int     `json:"height"`
	Width  int     `json:"width"`
}

// errorResponse is the JSON error body returned by the Web API.
type errorResponse struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}
