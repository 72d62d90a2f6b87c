package spotify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gabrielcapilla/jukebox-driver/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(domain.SpotifyConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     srv.URL + "/api/token",
		APIURL:       srv.URL + "/v1/",
	}, srv.Client()).(*Client)
}

func TestClient_IssueToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/token", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		id, secret, ok := r.BasicAuth()
		require.True(t, ok, "client credentials must be sent as basic auth")
		assert.Equal(t, "client-id", id)
		assert.Equal(t, "client-secret", secret)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"BQDnewtoken","token_type":"Bearer","expires_in":3600}`))
	})

	token, err := client.IssueToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "BQDnewtoken", token)
}

func TestClient_IssueTokenRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_client"}`))
	})

	_, err := client.IssueToken(context.Background())
	require.Error(t, err)
}

func TestClient_TrackDuration(t *testing.T) {
	testCases := []struct {
		name        string
		status      int
		body        string
		expectErr   bool
		malformed   bool
		expectedDur uint64
	}{
		{
			name:        "Successful lookup",
			status:      http.StatusOK,
			body:        `{"id":"track1","name":"Song","duration_ms":215733}`,
			expectedDur: 215733,
		},
		{
			name:      "Expired token",
			status:    http.StatusUnauthorized,
			body:      `{"error":{"status":401,"message":"The access token expired"}}`,
			expectErr: true,
		},
		{
			name:      "Missing duration",
			status:    http.StatusOK,
			body:      `{"id":"track1"}`,
			expectErr: true,
			malformed: true,
		},
		{
			name:      "Duration is a string",
			status:    http.StatusOK,
			body:      `{"duration_ms":"215733"}`,
			expectErr: true,
			malformed: true,
		},
		{
			name:      "Negative duration",
			status:    http.StatusOK,
			body:      `{"duration_ms":-5}`,
			expectErr: true,
			malformed: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/tracks/track1", r.URL.Path)
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			d, err := client.TrackDuration(context.Background(), "tok", "track1")

			if tc.expectErr {
				require.Error(t, err)
				if tc.malformed {
					assert.ErrorIs(t, err, domain.ErrMalformedPayload)
				} else {
					assert.NotErrorIs(t, err, domain.ErrMalformedPayload)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedDur, d)
		})
	}
}
