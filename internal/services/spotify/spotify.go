package spotify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gabrielcapilla/jukebox-driver/internal/domain"
	"github.com/gabrielcapilla/jukebox-driver/internal/logger"
	"github.com/gabrielcapilla/jukebox-driver/internal/ports"

	"github.com/buger/jsonparser"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

type Client struct {
	apiURL     string
	httpClient *http.Client
	oauth      *clientcredentials.Config
}

func NewClient(cfg domain.SpotifyConfig, httpClient *http.Client) ports.MetadataService {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		httpClient: httpClient,
		oauth: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
	}
}

// IssueToken runs the client credentials grant against the token endpoint.
func (c *Client) IssueToken(ctx context.Context) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.oauth.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("spotify token request failed: %w", err)
	}
	logger.Log.Debug().Str("token", logger.Redact(token.AccessToken)).Time("expiry", token.Expiry).Msg("Issued Spotify access token")
	return token.AccessToken, nil
}

func (c *Client) TrackDuration(ctx context.Context, token, trackID string) (uint64, error) {
	trackURL := c.apiURL + "/tracks/" + url.PathEscape(trackID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("GET track %s failed: %w", trackID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("could not read track %s response: %w", trackID, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg, _ := jsonparser.GetString(body, "error", "message")
		return 0, fmt.Errorf("spotify returned status %d for track %s: %s", resp.StatusCode, trackID, msg)
	}

	durationMs, err := jsonparser.GetInt(body, "duration_ms")
	if err != nil {
		return 0, fmt.Errorf("%w: no integer field \"duration_ms\" in track %s: %v", domain.ErrMalformedPayload, trackID, err)
	}
	if durationMs < 0 {
		return 0, fmt.Errorf("%w: negative duration_ms %d for track %s", domain.ErrMalformedPayload, durationMs, trackID)
	}

	return uint64(durationMs), nil
}
