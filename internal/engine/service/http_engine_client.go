package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tmaxmax/go-sse"

	engineDomain "github.com/allisson/iou/internal/engine/domain"
	"github.com/allisson/iou/internal/metrics"
)

const maxResponseBody = 1 << 20

// HTTPEngineClient implements EngineClient over the engine's HTTP/JSON API.
type HTTPEngineClient struct {
	baseURL string
	api     *retryablehttp.Client
	stream  *retryablehttp.Client
	metrics metrics.BusinessMetrics
	logger  *slog.Logger
}

// NewHTTPEngineClient creates an engine client. api serves request/response calls;
// stream serves the notification stream and must not carry a client timeout.
func NewHTTPEngineClient(
	baseURL string,
	api *retryablehttp.Client,
	stream *retryablehttp.Client,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *HTTPEngineClient {
	return &HTTPEngineClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		api:     api,
		stream:  stream,
		metrics: businessMetrics,
		logger:  logger,
	}
}

type createProtocolRequest struct {
	PrototypeID string               `json:"prototypeId"`
	Parties     []engineDomain.Party `json:"parties"`
	Arguments   []engineDomain.Value `json:"arguments"`
}

type selectActionRequest struct {
	Arguments []engineDomain.Value `json:"arguments"`
}

type resultResponse struct {
	Result engineDomain.Value `json:"result"`
}

type errorResponse struct {
	Message string `json:"message"`
	Origin  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"origin"`
}

// Ready probes the engine health endpoint without retries.
func (e *HTTPEngineClient) Ready(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/actuator/health", nil)
	if err != nil {
		return false
	}

	resp, err := e.api.HTTPClient.Do(req)
	if err != nil {
		e.logger.Debug("engine not ready", slog.Any("error", err))
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))

	return resp.StatusCode == http.StatusOK
}

// CreateProtocol instantiates prototypeID and returns the new protocol id.
func (e *HTTPEngineClient) CreateProtocol(
	ctx context.Context,
	prototypeID string,
	parties []engineDomain.Party,
	arguments []engineDomain.Value,
	auth engineDomain.AuthorizationProvider,
) (uuid.UUID, error) {
	body := createProtocolRequest{
		PrototypeID: prototypeID,
		Parties:     parties,
		Arguments:   nonNilValues(arguments),
	}

	var out resultResponse
	if err := e.call(ctx, "create_protocol", http.MethodPost, "/api/engine/protocols", body, auth, &out); err != nil {
		return uuid.Nil, err
	}

	id, err := out.Result.AsProtocolReference()
	if err != nil {
		return uuid.Nil, fmt.Errorf("create protocol %s: %w", prototypeID, err)
	}
	return id, nil
}

// SelectAction invokes action on protocol protocolID and returns the action result.
func (e *HTTPEngineClient) SelectAction(
	ctx context.Context,
	protocolID uuid.UUID,
	action string,
	arguments []engineDomain.Value,
	auth engineDomain.AuthorizationProvider,
) (engineDomain.Value, error) {
	path := "/api/engine/protocols/" + protocolID.String() + "/actions/" + url.PathEscape(action)

	var out resultResponse
	err := e.call(ctx, "select_action", http.MethodPost, path, selectActionRequest{Arguments: nonNilValues(arguments)}, auth, &out)
	if err != nil {
		return engineDomain.Value{}, err
	}
	return out.Result, nil
}

// GetProtocolState fetches the current state of protocol protocolID.
func (e *HTTPEngineClient) GetProtocolState(
	ctx context.Context,
	protocolID uuid.UUID,
	auth engineDomain.AuthorizationProvider,
) (*engineDomain.ProtocolState, error) {
	var state engineDomain.ProtocolState
	if err := e.call(ctx, "get_protocol", http.MethodGet, "/api/engine/protocols/"+protocolID.String(), nil, auth, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Notifications streams notifications after cursor from until the engine closes
// the stream, ctx is cancelled or fn fails.
func (e *HTTPEngineClient) Notifications(
	ctx context.Context,
	from int64,
	auth engineDomain.AuthorizationProvider,
	fn NotificationHandler,
) error {
	header, err := authorizationHeader(auth)
	if err != nil {
		return err
	}

	target := e.baseURL + "/api/streams/notifications?from=" + strconv.FormatInt(from, 10)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", header)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := e.stream.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("engine notifications: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		return e.failure("notifications", "/api/streams/notifications", resp.StatusCode, body)
	}

	err = readEvents(resp.Body, func(ev sse.Event) error {
		if ev.Data == "" {
			return nil
		}
		var n engineDomain.Notification
		if err := json.Unmarshal([]byte(ev.Data), &n); err != nil {
			e.logger.Warn("skipping undecodable notification",
				slog.String("id", ev.LastEventID),
				slog.String("event", ev.Type),
				slog.Any("error", err),
			)
			return nil
		}
		return fn(n)
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// call performs one JSON exchange and decodes a 2xx body into out.
func (e *HTTPEngineClient) call(
	ctx context.Context,
	op, method, path string,
	in any,
	auth engineDomain.AuthorizationProvider,
	out any,
) error {
	header, err := authorizationHeader(auth)
	if err != nil {
		return err
	}

	var payload []byte
	if in != nil {
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("engine %s: encode request: %w", op, err)
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, e.baseURL+path, bytesOrNil(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", header)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	status, body, err := e.do(req)
	result := "success"
	if err != nil || status/100 != 2 {
		result = "error"
	}
	e.metrics.RecordDuration(ctx, "engine", op, time.Since(start), result)

	if err != nil {
		return fmt.Errorf("engine %s: %w", op, err)
	}
	if status/100 != 2 {
		return e.failure(op, path, status, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("engine %s: decode response: %w", op, err)
	}
	return nil
}

func (e *HTTPEngineClient) do(req *retryablehttp.Request) (int, []byte, error) {
	resp, err := e.api.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	return resp.StatusCode, body, err
}

// failure maps a non-2xx engine response onto the typed engine errors.
func (e *HTTPEngineClient) failure(op, path string, status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &engineDomain.AuthorizationError{Status: status}
	case http.StatusNotFound:
		return &engineDomain.NoSuchItemError{Item: path}
	}

	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Origin != nil {
		return &engineDomain.RuntimeError{OriginCode: parsed.Origin.Code, Message: parsed.Origin.Message}
	}

	e.logger.Error("unexpected engine response",
		slog.String("operation", op),
		slog.Int("status", status),
		slog.String("body", string(body)),
	)
	return fmt.Errorf("engine %s: unexpected status %d", op, status)
}

func authorizationHeader(auth engineDomain.AuthorizationProvider) (string, error) {
	scheme, credential, err := auth.Authorization()
	if err != nil {
		return "", err
	}
	return scheme + " " + credential, nil
}

func nonNilValues(values []engineDomain.Value) []engineDomain.Value {
	if values == nil {
		return []engineDomain.Value{}
	}
	return values
}

// bytesOrNil keeps a nil body nil; retryablehttp treats a typed nil slice as a body.
func bytesOrNil(payload []byte) any {
	if payload == nil {
		return nil
	}
	return bytes.NewReader(payload)
}
