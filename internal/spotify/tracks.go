package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/oauth2"

	"github.com/justestif/spotify-track-popularity/internal/auth"
)

// trackIDLength is the length of every Spotify base-62 track ID.
const trackIDLength = 22

// GetTrackInfo fetches a track and flattens it into a Track.
// The ID is validated before any network call is made.
// Failures are returned as *Error.
func (c *Client) GetTrackInfo(ctx context.Context, trackID string) (*Track, error) {
	if err := ValidateTrackID(trackID); err != nil {
		return nil, err
	}

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, authError(err)
	}

	body, err := c.getTrack(ctx, trackID, token)
	if err != nil {
		return nil, err
	}

	var resp trackResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, newError(ErrUnexpected,
			fmt.Sprintf("Unexpected error while fetching track data: parsing response: %v", err), err)
	}

	track, err := convertTrack(resp)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched track", "id", track.ID, "popularity", track.Popularity)
	return track, nil
}

// ValidateTrackID checks that id has the shape of a Spotify track ID.
func ValidateTrackID(id string) error {
	if id == "" || utf8.RuneCountInString(id) != trackIDLength {
		return newError(ErrInvalidID,
			"Invalid track ID format. Spotify track IDs are 22 characters long.", nil)
	}
	return nil
}

// getTrack performs GET /tracks/{id} and returns the body of a 2xx response.
func (c *Client) getTrack(ctx context.Context, trackID, accessToken string) ([]byte, error) {
	reqURL := c.baseURL + "/tracks/" + url.PathEscape(trackID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, newError(ErrUnexpected, "Unexpected error while fetching track data: "+err.Error(), err)
	}
	token := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
	token.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, newError(ErrNotFound,
			"Track not found. Please check the track ID: "+trackID, nil)
	case http.StatusBadRequest:
		return nil, newError(ErrMalformedRequest,
			"Invalid request. The track ID may be malformed.", nil)
	case http.StatusTooManyRequests:
		c.logger.Warn("rate limited by Spotify", "retry_after", resp.Header.Get("Retry-After"))
		return nil, newError(ErrRateLimited,
			"Rate limit exceeded. Please wait a moment and try again.", nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, upstreamError(resp.StatusCode, body)
	}

	return body, nil
}

// upstreamError builds the generic error for a non-2xx status without a
// dedicated mapping, including Spotify's own message when it sent one.
func upstreamError(status int, body []byte) *Error {
	detail := fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))

	var apiErr errorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		detail += ": " + apiErr.Error.Message
	}

	return newError(ErrUpstream, "Spotify API request failed: "+detail, nil)
}

// authError wraps a token failure so it carries the auth message.
func authError(err error) *Error {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		return newError(ErrAuth, authErr.Msg, err)
	}
	return newError(ErrAuth, "Unexpected error during authentication: "+err.Error(), err)
}

// convertTrack projects the API response onto a Track, failing with
// ErrMissingField when a required key is absent.
func convertTrack(resp trackResponse) (*Track, error) {
	switch {
	case resp.ID == nil:
		return nil, missingField("id")
	case resp.Name == nil:
		return nil, missingField("name")
	case resp.Artists == nil:
		return nil, missingField("artists")
	case resp.Album == nil:
		return nil, missingField("album")
	case resp.Album.Name == nil:
		return nil, missingField("album.name")
	case resp.Album.ReleaseDate == nil:
		return nil, missingField("album.release_date")
	case resp.Album.Images == nil:
		return nil, missingField("album.images")
	case resp.Popularity == nil:
		return nil, missingField("popularity")
	case resp.DurationMs == nil:
		return nil, missingField("duration_ms")
	}

	externalURL, ok := resp.ExternalURLs["spotify"]
	if !ok {
		return nil, missingField("external_urls.spotify")
	}

	artists := make([]string, len(resp.Artists))
	for i, a := range resp.Artists {
		if a.Name == nil {
			return nil, missingField(fmt.Sprintf("artists[%d].name", i))
		}
		artists[i] = *a.Name
	}

	var albumImage *string
	if len(resp.Album.Images) > 0 {
		if resp.Album.Images[0].URL == nil {
			return nil, missingField("album.images[0].url")
		}
		albumImage = resp.Album.Images[0].URL
	}

	return &Track{
		ID:          *resp.ID,
		Name:        *resp.Name,
		Artists:     strings.Join(artists, ", "),
		Album:       *resp.Album.Name,
		Popularity:  *resp.Popularity,
		ReleaseDate: *resp.Album.ReleaseDate,
		DurationMs:  *resp.DurationMs,
		PreviewURL:  resp.PreviewURL,
		AlbumImage:  albumImage,
		ExternalURL: externalURL,
	}, nil
}

func missingField(name string) *Error {
	return newError(ErrMissingField,
		"Unexpected response format from Spotify API: missing "+name, nil)
}
