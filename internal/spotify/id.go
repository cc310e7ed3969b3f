package spotify

import (
	"net/url"
	"strings"

	"github.com/zmb3/spotify/v2"
)

// ParseTrackID extracts a track ID from a bare ID, a spotify:track:<id> URI
// or an open.spotify.com/track/<id> link. The result is validated with
// ValidateTrackID.
func ParseTrackID(input string) (spotify.ID, error) {
	s := strings.TrimSpace(input)

	switch {
	case strings.HasPrefix(s, "spotify:track:"):
		s = strings.TrimPrefix(s, "spotify:track:")
	case strings.Contains(s, "open.spotify.com/"):
		if !strings.Contains(s, "://") {
			s = "https://" + s
		}
		u, err := url.Parse(s)
		if err != nil {
			return "", newError(ErrInvalidID, "Invalid track link: "+input, err)
		}
		// Localized links look like /intl-de/track/<id>.
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		s = ""
		for i := 0; i+1 < len(segments); i++ {
			if segments[i] == "track" {
				s = segments[i+1]
				break
			}
		}
	}

	if err := ValidateTrackID(s); err != nil {
		return "", err
	}
	return spotify.ID(s), nil
}
