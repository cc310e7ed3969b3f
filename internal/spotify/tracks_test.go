package spotify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/justestif/spotify-track-popularity/internal/auth"
)

const testTrackID = "11dFghVXANMlKmJXsNCbNl"

const fullTrackJSON = `{
	"id": "11dFghVXANMlKmJXsNCbNl",
	"name": "Cut To The Feeling",
	"artists": [{"id": "6sFIWsNpZYqfjUpaCgueju", "name": "Carly Rae Jepsen"}],
	"album": {
		"id": "0tGPJ0bkWOUmH7MEOR77qc",
		"name": "Cut To The Feeling",
		"release_date": "2017-05-26",
		"images": [
			{"url": "https://i.scdn.co/image/large", "height": 640, "width": 640},
			{"url": "https://i.scdn.co/image/small", "height": 64, "width": 64}
		]
	},
	"popularity": 73,
	"duration_ms": 207959,
	"preview_url": "https://p.scdn.co/mp3-preview/abc",
	"external_urls": {"spotify": "https://open.spotify.com/track/11dFghVXANMlKmJXsNCbNl"}
}`

// staticTokens is a TokenSource that always returns the same result.
type staticTokens struct {
	token string
	err   error
	calls atomic.Int32
}

func (s *staticTokens) AccessToken(context.Context) (string, error) {
	s.calls.Add(1)
	return s.token, s.err
}

func newTestClient(t *testing.T, ts TokenSource, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client := New(ts,
		WithBaseURL(server.URL+"/v1/"),
		WithHTTPClient(server.Client()),
		WithLogger(log.New(io.Discard)),
	)
	return client, &requests
}

func TestGetTrackInfo(t *testing.T) {
	tokens := &staticTokens{token: "test-token"}
	client, _ := newTestClient(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tracks/"+testTrackID {
			t.Errorf("path = %s, want /v1/tracks/%s", r.URL.Path, testTrackID)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want Bearer test-token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, fullTrackJSON)
	})

	track, err := client.GetTrackInfo(context.Background(), testTrackID)
	if err != nil {
		t.Fatalf("GetTrackInfo() error = %v", err)
	}

	if track.ID != testTrackID {
		t.Errorf("ID = %q, want %q", track.ID, testTrackID)
	}
	if track.Name != "Cut To The Feeling" {
		t.Errorf("Name = %q, want Cut To The Feeling", track.Name)
	}
	if track.Artists != "Carly Rae Jepsen" {
		t.Errorf("Artists = %q, want Carly Rae Jepsen", track.Artists)
	}
	if track.Album != "Cut To The Feeling" {
		t.Errorf("Album = %q", track.Album)
	}
	if track.Popularity != 73 {
		t.Errorf("Popularity = %d, want 73", track.Popularity)
	}
	if track.ReleaseDate != "2017-05-26" {
		t.Errorf("ReleaseDate = %q, want 2017-05-26", track.ReleaseDate)
	}
	if track.DurationMs != 207959 {
		t.Errorf("DurationMs = %d, want 207959", track.DurationMs)
	}
	if track.PreviewURL == nil || *track.PreviewURL != "https://p.scdn.co/mp3-preview/abc" {
		t.Errorf("PreviewURL = %v, want preview link", track.PreviewURL)
	}
	if track.AlbumImage == nil || *track.AlbumImage != "https://i.scdn.co/image/large" {
		t.Errorf("AlbumImage = %v, want first image", track.AlbumImage)
	}
	if track.ExternalURL != "https://open.spotify.com/track/11dFghVXANMlKmJXsNCbNl" {
		t.Errorf("ExternalURL = %q", track.ExternalURL)
	}
}

func TestConvertTrack(t *testing.T) {
	str := func(s string) *string { return &s }
	num := func(n int) *int { return &n }

	base := func() trackResponse {
		return trackResponse{
			ID:         str("id"),
			Name:       str("Song"),
			Artists:    []artistObject{{Name: str("Solo")}},
			Album:      &albumObject{Name: str("Album"), ReleaseDate: str("2020"), Images: []imageObject{}},
			Popularity: num(10),
			DurationMs: num(1000),
			ExternalURLs: map[string]string{
				"spotify": "https://open.spotify.com/track/id",
			},
		}
	}

	tests := []struct {
		name           string
		modify         func(*trackResponse)
		wantArtists    string
		wantAlbumImage *string
		wantPreview    *string
	}{
		{
			name:        "single artist, no images, no preview",
			modify:      func(*trackResponse) {},
			wantArtists: "Solo",
		},
		{
			name: "multiple artists",
			modify: func(r *trackResponse) {
				r.Artists = []artistObject{{Name: str("Artist A")}, {Name: str("Artist B")}, {Name: str("Artist C")}}
			},
			wantArtists: "Artist A, Artist B, Artist C",
		},
		{
			name: "no artists",
			modify: func(r *trackResponse) {
				r.Artists = []artistObject{}
			},
			wantArtists: "",
		},
		{
			name: "first image is used",
			modify: func(r *trackResponse) {
				r.Album.Images = []imageObject{{URL: str("big")}, {URL: str("small")}}
			},
			wantArtists:    "Solo",
			wantAlbumImage: str("big"),
		},
		{
			name: "preview present",
			modify: func(r *trackResponse) {
				r.PreviewURL = str("preview")
			},
			wantArtists: "Solo",
			wantPreview: str("preview"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := base()
			tt.modify(&resp)

			got, err := convertTrack(resp)
			if err != nil {
				t.Fatalf("convertTrack() error = %v", err)
			}
			if got.Artists != tt.wantArtists {
				t.Errorf("Artists = %q, want %q", got.Artists, tt.wantArtists)
			}
			if !equalPtr(got.AlbumImage, tt.wantAlbumImage) {
				t.Errorf("AlbumImage = %v, want %v", deref(got.AlbumImage), deref(tt.wantAlbumImage))
			}
			if !equalPtr(got.PreviewURL, tt.wantPreview) {
				t.Errorf("PreviewURL = %v, want %v", deref(got.PreviewURL), deref(tt.wantPreview))
			}
		})
	}
}

func TestGetTrackInfo_MissingFields(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"no id", `{"name":"x"}`, "missing id"},
		{"no artists", `{"id":"x","name":"x"}`, "missing artists"},
		{"no album", `{"id":"x","name":"x","artists":[]}`, "missing album"},
		{
			"no release date",
			`{"id":"x","name":"x","artists":[],"album":{"name":"a","images":[]}}`,
			"missing album.release_date",
		},
		{
			"no popularity",
			`{"id":"x","name":"x","artists":[],"album":{"name":"a","release_date":"2020","images":[]},"duration_ms":1}`,
			"missing popularity",
		},
		{
			"no external url",
			`{"id":"x","name":"x","artists":[],"album":{"name":"a","release_date":"2020","images":[]},"popularity":1,"duration_ms":1,"external_urls":{}}`,
			"missing external_urls.spotify",
		},
		{
			"artist without name",
			`{"id":"x","name":"x","artists":[{"id":"a"}],"album":{"name":"a","release_date":"2020","images":[]},"popularity":1,"duration_ms":1,"external_urls":{"spotify":"u"}}`,
			"missing artists[0].name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, &staticTokens{token: "tok"}, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, tt.body)
			})

			_, err := client.GetTrackInfo(context.Background(), testTrackID)
			if !errors.Is(err, ErrMissingField) {
				t.Fatalf("GetTrackInfo() error = %v, want ErrMissingField", err)
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("GetTrackInfo() error = %q, want it to contain %q", err.Error(), tt.wantField)
			}
		})
	}
}

func TestGetTrackInfo_InvalidIDMakesNoRequests(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"empty", ""},
		{"too short", "abc"},
		{"21 characters", "11dFghVXANMlKmJXsNCbN"},
		{"23 characters", "11dFghVXANMlKmJXsNCbNlx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &staticTokens{token: "tok"}
			client, requests := newTestClient(t, tokens, func(w http.ResponseWriter, r *http.Request) {
				t.Error("unexpected request to track endpoint")
			})

			_, err := client.GetTrackInfo(context.Background(), tt.id)
			if !errors.Is(err, ErrInvalidID) {
				t.Fatalf("GetTrackInfo() error = %v, want ErrInvalidID", err)
			}
			if !strings.Contains(err.Error(), "22 characters") {
				t.Errorf("GetTrackInfo() error = %q, want format message", err.Error())
			}
			if n := requests.Load(); n != 0 {
				t.Errorf("track requests = %d, want 0", n)
			}
			if n := tokens.calls.Load(); n != 0 {
				t.Errorf("token requests = %d, want 0", n)
			}
		})
	}
}

func TestGetTrackInfo_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind error
		wantMsg  string
	}{
		{"not found", http.StatusNotFound, `{"error":{"status":404,"message":"Non existing id"}}`, ErrNotFound, "not found"},
		{"bad request", http.StatusBadRequest, `{"error":{"status":400,"message":"invalid id"}}`, ErrMalformedRequest, "malformed"},
		{"rate limited", http.StatusTooManyRequests, ``, ErrRateLimited, "Rate limit exceeded"},
		{"server error", http.StatusBadGateway, `{"error":{"status":502,"message":"Bad gateway."}}`, ErrUpstream, "HTTP 502 Bad Gateway: Bad gateway."},
		{"unauthorized", http.StatusUnauthorized, `not json`, ErrUpstream, "HTTP 401"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, &staticTokens{token: "tok"}, func(w http.ResponseWriter, r *http.Request) {
				if tt.status == http.StatusTooManyRequests {
					w.Header().Set("Retry-After", "5")
				}
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := client.GetTrackInfo(context.Background(), testTrackID)
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("GetTrackInfo() error = %v, want %v", err, tt.wantKind)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("GetTrackInfo() error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestGetTrackInfo_NotFoundIncludesID(t *testing.T) {
	client, _ := newTestClient(t, &staticTokens{token: "tok"}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetTrackInfo(context.Background(), testTrackID)
	if err == nil || !strings.Contains(err.Error(), testTrackID) {
		t.Errorf("GetTrackInfo() error = %v, want it to name %s", err, testTrackID)
	}
}

func TestGetTrackInfo_AuthErrorIsWrapped(t *testing.T) {
	authErr := &auth.Error{
		Kind: auth.ErrInvalidCredentials,
		Msg:  "Invalid Spotify credentials. Please check your Client ID and Secret.",
	}
	client, requests := newTestClient(t, &staticTokens{err: authErr}, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request to track endpoint")
	})

	_, err := client.GetTrackInfo(context.Background(), testTrackID)

	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("GetTrackInfo() error type = %T, want *Error", err)
	}
	if !errors.Is(err, ErrAuth) {
		t.Errorf("GetTrackInfo() error = %v, want ErrAuth", err)
	}
	if !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("GetTrackInfo() error does not unwrap to auth.ErrInvalidCredentials")
	}
	if err.Error() != authErr.Msg {
		t.Errorf("GetTrackInfo() error = %q, want %q", err.Error(), authErr.Msg)
	}
	if n := requests.Load(); n != 0 {
		t.Errorf("track requests = %d, want 0", n)
	}
}

func TestGetTrackInfo_InvalidJSON(t *testing.T) {
	client, _ := newTestClient(t, &staticTokens{token: "tok"}, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": `)
	})

	_, err := client.GetTrackInfo(context.Background(), testTrackID)
	if !errors.Is(err, ErrUnexpected) {
		t.Fatalf("GetTrackInfo() error = %v, want ErrUnexpected", err)
	}
}

func TestGetTrackInfo_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := New(&staticTokens{token: "tok"},
		WithBaseURL(server.URL),
		WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}),
		WithLogger(log.New(io.Discard)),
	)

	_, err := client.GetTrackInfo(context.Background(), testTrackID)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("GetTrackInfo() error = %v, want ErrTimeout", err)
	}
}

func TestGetTrackInfo_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := New(&staticTokens{token: "tok"}, WithBaseURL(url), WithLogger(log.New(io.Discard)))

	_, err := client.GetTrackInfo(context.Background(), testTrackID)
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("GetTrackInfo() error = %v, want ErrConnection", err)
	}
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
