package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/iou/internal/auth/domain"
	apperrors "github.com/allisson/iou/internal/errors"
	"github.com/allisson/iou/internal/httpclient"
)

// recordingMetrics captures RecordDuration calls.
type recordingMetrics struct {
	mu         sync.Mutex
	operations []string
	statuses   []string
}

func (r *recordingMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

func (r *recordingMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operations = append(r.operations, domain+"/"+operation)
	r.statuses = append(r.statuses, status)
}

// fakeKeycloak emulates the realm endpoints used by KeycloakClient.
type fakeKeycloak struct {
	ready           bool
	discoveryStatus int
	discoveryHits   atomic.Int32
	logoutStatus   int
	userinfoStatus int
	lastLogoutAuth string
	lastLogoutForm map[string]string
}

func (f *fakeKeycloak) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if !f.ready {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("GET /realms/seed/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		f.discoveryHits.Add(1)
		if f.discoveryStatus != 0 {
			w.WriteHeader(f.discoveryStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"issuer":"http://keycloak/realms/seed"}`))
	})

	mux.HandleFunc("POST /realms/seed/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "seed", r.PostForm.Get("client_id"))

		w.Header().Set("Content-Type", "application/json")
		switch r.PostForm.Get("grant_type") {
		case "password":
			if r.PostForm.Get("username") != "username" || r.PostForm.Get("password") != "password" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"123.access.456","expires_in":300,"refresh_token":"123.refresh.456","token_type":"bearer"}`))
		case "refresh_token":
			switch r.PostForm.Get("refresh_token") {
			case "123.refresh.456":
				_, _ = w.Write([]byte(`{"access_token":"123.access.789","expires_in":300,"refresh_token":"123.refresh.789","token_type":"bearer"}`))
			case "keep.me":
				_, _ = w.Write([]byte(`{"access_token":"123.access.999","expires_in":60,"token_type":"bearer"}`))
			case "malformed":
				_, _ = w.Write([]byte(`{"expires_in":60}`))
			case "broken":
				w.WriteHeader(http.StatusServiceUnavailable)
			default:
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			}
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	mux.HandleFunc("POST /realms/seed/protocol/openid-connect/logout", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.lastLogoutAuth = r.Header.Get("Authorization")
		f.lastLogoutForm = map[string]string{
			"client_id":     r.PostForm.Get("client_id"),
			"refresh_token": r.PostForm.Get("refresh_token"),
		}
		w.WriteHeader(f.logoutStatus)
	})

	mux.HandleFunc("GET /realms/seed/protocol/openid-connect/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if f.userinfoStatus != 0 {
			w.WriteHeader(f.userinfoStatus)
			return
		}
		switch r.Header.Get("Authorization") {
		case "Bearer aToken":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"preferred_username": "issuer1",
				"party":              []string{"issuer"},
			})
		case "Bearer garbled":
			_, _ = w.Write([]byte(`not json`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	})

	return mux
}

func setupKeycloakClient(t *testing.T, fake *fakeKeycloak) (*KeycloakClient, *recordingMetrics) {
	t.Helper()

	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	recorder := &recordingMetrics{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewKeycloakClient(
		KeycloakConfig{BaseURL: server.URL, Realm: "seed", ClientID: "seed"},
		httpclient.New(httpclient.Options{Name: "keycloak", MaxRetries: 1, RetryPeriod: time.Millisecond}),
		recorder,
		logger,
	)
	return client, recorder
}

func TestKeycloakClient_Ready(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		client, _ := setupKeycloakClient(t, &fakeKeycloak{ready: true})
		assert.True(t, client.Ready(context.Background()))
	})

	t.Run("health not ok", func(t *testing.T) {
		client, _ := setupKeycloakClient(t, &fakeKeycloak{ready: false})
		assert.False(t, client.Ready(context.Background()))
	})

	t.Run("discovery not ok", func(t *testing.T) {
		for _, status := range []int{http.StatusNotFound, http.StatusServiceUnavailable} {
			fake := &fakeKeycloak{ready: true, discoveryStatus: status}
			client, _ := setupKeycloakClient(t, fake)

			assert.False(t, client.Ready(context.Background()), "discovery status %d", status)
			assert.Equal(t, int32(1), fake.discoveryHits.Load(), "discovery status %d", status)
		}
	})

	t.Run("repeated calls agree", func(t *testing.T) {
		for _, fake := range []*fakeKeycloak{
			{ready: true},
			{ready: true, discoveryStatus: http.StatusServiceUnavailable},
			{ready: false},
		} {
			client, _ := setupKeycloakClient(t, fake)

			first := client.Ready(context.Background())
			for range 3 {
				assert.Equal(t, first, client.Ready(context.Background()))
			}
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		client := NewKeycloakClient(
			KeycloakConfig{BaseURL: "http://127.0.0.1:1", Realm: "seed", ClientID: "seed"},
			httpclient.New(httpclient.Options{Name: "keycloak"}),
			&recordingMetrics{},
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		)
		assert.False(t, client.Ready(context.Background()))
	})
}

func TestKeycloakClient_Login(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		client, recorder := setupKeycloakClient(t, &fakeKeycloak{})

		token, err := client.Login(context.Background(), "username", "password")
		require.NoError(t, err)
		assert.Equal(t, &authDomain.Token{
			AccessToken:  "123.access.456",
			ExpiresIn:    300,
			RefreshToken: "123.refresh.456",
		}, token)
		assert.Equal(t, []string{"identity/login"}, recorder.operations)
		assert.Equal(t, []string{"success"}, recorder.statuses)
	})

	t.Run("Error_InvalidLogin", func(t *testing.T) {
		client, recorder := setupKeycloakClient(t, &fakeKeycloak{})

		_, err := client.Login(context.Background(), "username", "wrong")
		assert.ErrorIs(t, err, authDomain.ErrInvalidLogin)
		assert.Equal(t, []string{"error"}, recorder.statuses)
	})
}

func TestKeycloakClient_Refresh(t *testing.T) {
	client, _ := setupKeycloakClient(t, &fakeKeycloak{})
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		token, err := client.Refresh(ctx, "123.refresh.456")
		require.NoError(t, err)
		assert.Equal(t, "123.access.789", token.AccessToken)
		assert.Equal(t, "123.refresh.789", token.RefreshToken)
		assert.Equal(t, 300, token.ExpiresIn)
	})

	t.Run("Success_KeepsRefreshToken", func(t *testing.T) {
		token, err := client.Refresh(ctx, "keep.me")
		require.NoError(t, err)
		assert.Equal(t, "123.access.999", token.AccessToken)
		assert.Equal(t, "keep.me", token.RefreshToken)
	})

	t.Run("Error_InvalidRefreshToken", func(t *testing.T) {
		_, err := client.Refresh(ctx, "unknown")
		assert.ErrorIs(t, err, authDomain.ErrInvalidRefreshToken)
	})

	t.Run("Error_MalformedBody", func(t *testing.T) {
		_, err := client.Refresh(ctx, "malformed")
		code, ok := apperrors.CodeOf(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeInternalServerError, code)
	})

	t.Run("Error_UpstreamFailure", func(t *testing.T) {
		_, err := client.Refresh(ctx, "broken")
		assert.ErrorIs(t, err, authDomain.ErrIdentityProvider)
	})
}

func TestKeycloakClient_Logout(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		fake := &fakeKeycloak{logoutStatus: http.StatusNoContent}
		client, _ := setupKeycloakClient(t, fake)

		err := client.Logout(context.Background(), "123.access.456", "123.refresh.456")
		require.NoError(t, err)
		assert.Equal(t, "Bearer 123.access.456", fake.lastLogoutAuth)
		assert.Equal(t, map[string]string{
			"client_id":     "seed",
			"refresh_token": "123.refresh.456",
		}, fake.lastLogoutForm)
	})

	t.Run("Error_UnexpectedStatus", func(t *testing.T) {
		client, _ := setupKeycloakClient(t, &fakeKeycloak{logoutStatus: http.StatusBadRequest})

		err := client.Logout(context.Background(), "a", "b")
		assert.ErrorIs(t, err, authDomain.ErrIdentityProvider)
	})
}

func TestKeycloakClient_Authorize(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		client, recorder := setupKeycloakClient(t, &fakeKeycloak{})
		require.NoError(t, client.Authorize(context.Background(), "Bearer aToken"))
		assert.Equal(t, []string{"identity/authorize"}, recorder.operations)
	})

	t.Run("Error_Rejected", func(t *testing.T) {
		client, _ := setupKeycloakClient(t, &fakeKeycloak{})
		err := client.Authorize(context.Background(), "Bearer other")
		assert.ErrorIs(t, err, authDomain.ErrInvalidBearerToken)
	})

	t.Run("Error_UnexpectedStatus", func(t *testing.T) {
		client, _ := setupKeycloakClient(t, &fakeKeycloak{userinfoStatus: http.StatusForbidden})
		err := client.Authorize(context.Background(), "Bearer aToken")
		assert.ErrorIs(t, err, authDomain.ErrIdentityProvider)
	})

	t.Run("Error_Transport", func(t *testing.T) {
		client := NewKeycloakClient(
			KeycloakConfig{BaseURL: "http://127.0.0.1:1", Realm: "seed", ClientID: "seed"},
			httpclient.New(httpclient.Options{Name: "keycloak"}),
			&recordingMetrics{},
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		)
		err := client.Authorize(context.Background(), "Bearer aToken")
		assert.ErrorIs(t, err, authDomain.ErrIdentityProvider)
	})
}

func TestKeycloakClient_Party(t *testing.T) {
	client, _ := setupKeycloakClient(t, &fakeKeycloak{})
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		party, err := client.Party(ctx, "Bearer aToken")
		require.NoError(t, err)

		expected := authDomain.Party{
			Entity: map[string]authDomain.StringSet{
				"party":              authDomain.NewStringSet("issuer"),
				"preferred_username": authDomain.NewStringSet("issuer1"),
			},
			Access: map[string]authDomain.StringSet{},
		}
		assert.True(t, expected.Equal(party))
	})

	t.Run("Error_Rejected", func(t *testing.T) {
		_, err := client.Party(ctx, "Bearer other")
		assert.ErrorIs(t, err, authDomain.ErrInvalidBearerToken)
	})

	t.Run("Error_Undecodable", func(t *testing.T) {
		_, err := client.Party(ctx, "Bearer garbled")
		assert.ErrorIs(t, err, authDomain.ErrIdentityProvider)
	})
}
