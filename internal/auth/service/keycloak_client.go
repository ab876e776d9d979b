package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"

	authDomain "github.com/allisson/iou/internal/auth/domain"
	apperrors "github.com/allisson/iou/internal/errors"
	"github.com/allisson/iou/internal/metrics"
)

// maxResponseBody caps how much of an identity provider response is read.
const maxResponseBody = 1 << 20

// KeycloakConfig locates the realm and client used for token grants.
type KeycloakConfig struct {
	BaseURL  string
	Realm    string
	ClientID string
}

// KeycloakClient implements IdentityClient against a Keycloak realm.
type KeycloakClient struct {
	baseURL  string
	realm    string
	clientID string
	http     *retryablehttp.Client
	oauth    *oauth2.Config
	metrics  metrics.BusinessMetrics
	logger   *slog.Logger
}

// NewKeycloakClient creates a KeycloakClient. httpClient carries retries, timeouts
// and the optional Host override; probes in Ready bypass its retries.
func NewKeycloakClient(
	cfg KeycloakConfig,
	httpClient *retryablehttp.Client,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *KeycloakClient {
	k := &KeycloakClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		realm:    cfg.Realm,
		clientID: cfg.ClientID,
		http:     httpClient,
		metrics:  businessMetrics,
		logger:   logger,
	}
	k.oauth = &oauth2.Config{
		ClientID: cfg.ClientID,
		Endpoint: oauth2.Endpoint{
			TokenURL:  k.realmURL("protocol/openid-connect/token"),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	return k
}

func (k *KeycloakClient) realmURL(path string) string {
	return k.baseURL + "/realms/" + url.PathEscape(k.realm) + "/" + path
}

// Ready probes /health and the realm discovery document.
func (k *KeycloakClient) Ready(ctx context.Context) bool {
	for _, target := range []string{
		k.baseURL + "/health",
		k.realmURL(".well-known/openid-configuration"),
	} {
		if !k.probe(ctx, target) {
			return false
		}
	}
	return true
}

func (k *KeycloakClient) probe(ctx context.Context, target string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false
	}

	resp, err := k.http.HTTPClient.Do(req)
	if err != nil {
		k.logger.Debug("identity provider not ready", slog.String("url", target), slog.Any("error", err))
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))

	return resp.StatusCode == http.StatusOK
}

// Login exchanges username and password for a token.
func (k *KeycloakClient) Login(ctx context.Context, username, password string) (*authDomain.Token, error) {
	var tok *oauth2.Token
	err := k.timed(ctx, "login", func() (err error) {
		tok, err = k.oauth.PasswordCredentialsToken(k.oauthContext(ctx), username, password)
		return err
	})
	if err != nil {
		return nil, k.grantError("login", err, http.StatusUnauthorized, authDomain.ErrInvalidLogin)
	}
	return toToken(tok, ""), nil
}

// Refresh exchanges a refresh token for a new token.
func (k *KeycloakClient) Refresh(ctx context.Context, refreshToken string) (*authDomain.Token, error) {
	var tok *oauth2.Token
	err := k.timed(ctx, "refresh", func() (err error) {
		source := k.oauth.TokenSource(k.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
		tok, err = source.Token()
		return err
	})
	if err != nil {
		return nil, k.grantError("refresh", err, http.StatusBadRequest, authDomain.ErrInvalidRefreshToken)
	}
	return toToken(tok, refreshToken), nil
}

// Logout ends the session bound to refreshToken.
func (k *KeycloakClient) Logout(ctx context.Context, bearerToken, refreshToken string) error {
	form := url.Values{
		"client_id":     {k.clientID},
		"refresh_token": {refreshToken},
	}
	req, err := retryablehttp.NewRequestWithContext(
		ctx,
		http.MethodPost,
		k.realmURL("protocol/openid-connect/logout"),
		[]byte(form.Encode()),
	)
	if err != nil {
		return apperrors.WithCode(apperrors.CodeInternalServerError, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+bearerToken)

	status, body, err := k.do(ctx, "logout", req)
	if err != nil {
		return k.unexpected("logout", 0, nil, err)
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return k.unexpected("logout", status, body, nil)
	}
	return nil
}

// Authorize validates authorizationHeader with the userinfo endpoint.
func (k *KeycloakClient) Authorize(ctx context.Context, authorizationHeader string) error {
	status, body, err := k.userinfo(ctx, "authorize", authorizationHeader)
	if err != nil {
		return k.unexpected("authorize", 0, nil, err)
	}

	switch status {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return apperrors.Wrapf(authDomain.ErrInvalidBearerToken, "userinfo status %d", status)
	default:
		return k.unexpected("authorize", status, body, nil)
	}
}

// Party resolves the caller's party from the userinfo endpoint.
func (k *KeycloakClient) Party(ctx context.Context, authorizationHeader string) (authDomain.Party, error) {
	status, body, err := k.userinfo(ctx, "party", authorizationHeader)
	if err != nil {
		return authDomain.Party{}, k.unexpected("party", 0, nil, err)
	}
	if status != http.StatusOK {
		return authDomain.Party{}, apperrors.Wrapf(authDomain.ErrInvalidBearerToken, "userinfo status %d", status)
	}

	var info struct {
		PreferredUsername string   `json:"preferred_username"`
		Party             []string `json:"party"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return authDomain.Party{}, k.unexpected("party", status, body, err)
	}
	if info.PreferredUsername == "" {
		return authDomain.Party{}, k.unexpected("party", status, body, fmt.Errorf("missing %s", authDomain.UsernameClaim))
	}

	return authDomain.Party{
		Entity: map[string]authDomain.StringSet{
			authDomain.PartyClaim:    authDomain.NewStringSet(info.Party...),
			authDomain.UsernameClaim: authDomain.NewStringSet(info.PreferredUsername),
		},
		Access: map[string]authDomain.StringSet{},
	}, nil
}

func (k *KeycloakClient) userinfo(ctx context.Context, op, authorizationHeader string) (int, []byte, error) {
	req, err := retryablehttp.NewRequestWithContext(
		ctx,
		http.MethodGet,
		k.realmURL("protocol/openid-connect/userinfo"),
		nil,
	)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", authorizationHeader)
	req.Header.Set("Accept", "application/json")
	return k.do(ctx, op, req)
}

// do performs req and reads a bounded body. Only transport failures are errors.
func (k *KeycloakClient) do(ctx context.Context, op string, req *retryablehttp.Request) (int, []byte, error) {
	var (
		status int
		body   []byte
	)
	err := k.timed(ctx, op, func() error {
		resp, err := k.http.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		status = resp.StatusCode
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		return err
	})
	return status, body, err
}

// timed records the duration of one identity provider exchange.
func (k *KeycloakClient) timed(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	err := fn()

	status := "success"
	if err != nil {
		status = "error"
	}
	k.metrics.RecordDuration(ctx, "identity", op, time.Since(start), status)
	return err
}

func (k *KeycloakClient) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, k.http.StandardClient())
}

// grantError maps a failed token grant. Only rejectedStatus maps to rejected.
func (k *KeycloakClient) grantError(op string, err error, rejectedStatus int, rejected error) error {
	var retrieveErr *oauth2.RetrieveError
	if !apperrors.As(err, &retrieveErr) || retrieveErr.Response == nil {
		return k.unexpected(op, 0, nil, err)
	}

	status := retrieveErr.Response.StatusCode
	if status == rejectedStatus {
		return apperrors.Wrapf(rejected, "%s status %d", op, status)
	}
	return k.unexpected(op, status, retrieveErr.Body, nil)
}

// unexpected logs the upstream detail and returns an InternalServerError.
func (k *KeycloakClient) unexpected(op string, status int, body []byte, err error) error {
	attrs := []any{slog.String("operation", op)}
	if status != 0 {
		attrs = append(attrs, slog.Int("status", status), slog.String("body", string(body)))
	}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	k.logger.Error("unexpected identity provider response", attrs...)

	if err == nil {
		err = fmt.Errorf("%s: unexpected status %d", op, status)
	}
	return apperrors.WithCode(apperrors.CodeInternalServerError, apperrors.Wrap(err, "identity provider"))
}

// toToken converts a grant response. fallbackRefresh is kept when the response has none.
func toToken(tok *oauth2.Token, fallbackRefresh string) *authDomain.Token {
	refresh := tok.RefreshToken
	if refresh == "" {
		refresh = fallbackRefresh
	}
	return &authDomain.Token{
		AccessToken:  tok.AccessToken,
		ExpiresIn:    expiresIn(tok),
		RefreshToken: refresh,
	}
}

func expiresIn(tok *oauth2.Token) int {
	if tok.ExpiresIn > 0 {
		return int(tok.ExpiresIn)
	}
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return int(v)
	case string:
		var n int
		if _, err := fmt.Sscan(v, &n); err == nil {
			return n
		}
	}
	if !tok.Expiry.IsZero() {
		return int(time.Until(tok.Expiry).Round(time.Second).Seconds())
	}
	return 0
}
