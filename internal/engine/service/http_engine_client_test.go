package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/iou/internal/auth/domain"
	engineDomain "github.com/allisson/iou/internal/engine/domain"
	"github.com/allisson/iou/internal/httpclient"
	"github.com/allisson/iou/internal/metrics"
)

func newTestEngineClient(t *testing.T, handler http.Handler) *HTTPEngineClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := httpclient.New(httpclient.Options{Name: "engine", Timeout: 5 * time.Second})
	stream := httpclient.New(httpclient.Options{Name: "engine-stream"})
	return NewHTTPEngineClient(server.URL, api, stream, metrics.NewNoOpBusinessMetrics(), logger)
}

func testCapability(t *testing.T) *authDomain.Capability {
	t.Helper()
	capability, err := authDomain.NewCapability("Bearer aToken")
	require.NoError(t, err)
	return capability
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestHTTPEngineClient_Ready(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		client := newTestEngineClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/actuator/health", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		assert.True(t, client.Ready(context.Background()))
	})

	t.Run("unhealthy", func(t *testing.T) {
		client := newTestEngineClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		assert.False(t, client.Ready(context.Background()))
	})
}

func TestHTTPEngineClient_CreateProtocol(t *testing.T) {
	id := uuid.New()
	client := newTestEngineClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/engine/protocols", r.URL.Path)
		assert.Equal(t, "Bearer aToken", r.Header.Get("Authorization"))

		var body createProtocolRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "/seed/Iou", body.PrototypeID)
		require.Len(t, body.Arguments, 1)
		amount, err := body.Arguments[0].AsNumber()
		require.NoError(t, err)
		assert.Equal(t, 10.0, amount)

		writeJSON(w, http.StatusOK, resultResponse{Result: engineDomain.ProtocolReference(id)})
	}))

	got, err := client.CreateProtocol(
		context.Background(),
		"/seed/Iou",
		[]engineDomain.Party{{Entity: map[string][]string{"party": {"issuer"}}}},
		[]engineDomain.Value{engineDomain.Number(10)},
		testCapability(t),
	)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestHTTPEngineClient_SelectAction(t *testing.T) {
	id := uuid.New()
	client := newTestEngineClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, fmt.Sprintf("/api/engine/protocols/%s/actions/getAmountOwed", id), r.URL.Path)

		var body selectActionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotNil(t, body.Arguments)
		assert.Empty(t, body.Arguments)

		writeJSON(w, http.StatusOK, resultResponse{Result: engineDomain.Number(7)})
	}))

	value, err := client.SelectAction(context.Background(), id, "getAmountOwed", nil, testCapability(t))
	require.NoError(t, err)
	amount, err := value.AsNumber()
	require.NoError(t, err)
	assert.Equal(t, 7.0, amount)
}

func TestHTTPEngineClient_GetProtocolState(t *testing.T) {
	id := uuid.New()
	client := newTestEngineClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		writeJSON(w, http.StatusOK, engineDomain.ProtocolState{
			ID:          id,
			PrototypeID: "/seed/Iou",
			Fields:      map[string]engineDomain.Value{"forAmount": engineDomain.Number(10)},
		})
	}))

	state, err := client.GetProtocolState(context.Background(), id, testCapability(t))
	require.NoError(t, err)
	assert.Equal(t, id, state.ID)
	amount, err := state.Fields["forAmount"].AsNumber()
	require.NoError(t, err)
	assert.Equal(t, 10.0, amount)
}

func TestHTTPEngineClient_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				var authErr *engineDomain.AuthorizationError
				require.ErrorAs(t, err, &authErr)
				assert.Equal(t, http.StatusUnauthorized, authErr.Status)
			},
		},
		{
			name:   "forbidden",
			status: http.StatusForbidden,
			check: func(t *testing.T, err error) {
				var authErr *engineDomain.AuthorizationError
				require.ErrorAs(t, err, &authErr)
			},
		},
		{
			name:   "not found",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				var notFound *engineDomain.NoSuchItemError
				require.ErrorAs(t, err, &notFound)
			},
		},
		{
			name:   "runtime error",
			status: http.StatusBadRequest,
			body:   `{"message":"claim","origin":{"code":37,"message":"invalid claim"}}`,
			check: func(t *testing.T, err error) {
				var runtimeErr *engineDomain.RuntimeError
				require.ErrorAs(t, err, &runtimeErr)
				assert.Equal(t, engineDomain.OriginCodeInvalidClaim, runtimeErr.OriginCode)
				assert.Equal(t, "invalid claim", runtimeErr.Message)
			},
		},
		{
			name:   "unexpected",
			status: http.StatusInternalServerError,
			body:   `oops`,
			check: func(t *testing.T, err error) {
				var runtimeErr *engineDomain.RuntimeError
				assert.Error(t, err)
				assert.False(t, errors.As(err, &runtimeErr))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestEngineClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))

			_, err := client.SelectAction(context.Background(), uuid.New(), "pay", nil, testCapability(t))
			tt.check(t, err)
		})
	}
}

func TestHTTPEngineClient_MalformedCapability(t *testing.T) {
	client := newTestEngineClient(t, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("engine must not be called")
	}))

	capability, err := authDomain.NewCapability("aToken")
	require.NoError(t, err)

	_, err = client.GetProtocolState(context.Background(), uuid.New(), capability)
	assert.ErrorIs(t, err, authDomain.ErrInvalidBearerToken)
}

func TestHTTPEngineClient_Notifications(t *testing.T) {
	t.Run("delivers in order", func(t *testing.T) {
		client := newTestEngineClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/streams/notifications", r.URL.Path)
			assert.Equal(t, "3", r.URL.Query().Get("from"))
			assert.Equal(t, "Bearer aToken", r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "text/event-stream")
			w.WriteHeader(http.StatusOK)
			for i := int64(4); i <= 6; i++ {
				raw, _ := json.Marshal(engineDomain.Notification{
					ID:      i,
					Payload: engineDomain.Payload{Name: "/seed/Payment"},
				})
				_, _ = fmt.Fprintf(w, "id: %d\nevent: notify\ndata: %s\n\n", i, raw)
			}
			_, _ = io.WriteString(w, "data: not-json\n\n")
		}))

		var ids []int64
		err := client.Notifications(context.Background(), 3, testCapability(t), func(n engineDomain.Notification) error {
			ids = append(ids, n.ID)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{4, 5, 6}, ids)
	})

	t.Run("rejected subscription", func(t *testing.T) {
		client := newTestEngineClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		err := client.Notifications(context.Background(), engineDomain.InitialCursor, testCapability(t),
			func(engineDomain.Notification) error { return nil })
		var authErr *engineDomain.AuthorizationError
		assert.ErrorAs(t, err, &authErr)
	})

	t.Run("oversized event ends the stream", func(t *testing.T) {
		client := newTestEngineClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			w.WriteHeader(http.StatusOK)
			_, _ = fmt.Fprintf(w, "id: 1\ndata: %s\n\n", strings.Repeat("x", maxEventSize+1))
			_, _ = io.WriteString(w, "id: 2\ndata: {\"id\":2}\n\n")
		}))

		calls := 0
		err := client.Notifications(context.Background(), engineDomain.InitialCursor, testCapability(t),
			func(engineDomain.Notification) error {
				calls++
				return nil
			})

		var formatErr *engineDomain.StreamFormatError
		assert.ErrorAs(t, err, &formatErr)
		assert.Zero(t, calls)
	})

	t.Run("cancelled context", func(t *testing.T) {
		release := make(chan struct{})
		client := newTestEngineClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			w.WriteHeader(http.StatusOK)
			w.(http.Flusher).Flush()
			select {
			case <-r.Context().Done():
			case <-release:
			}
		}))
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		err := client.Notifications(ctx, engineDomain.InitialCursor, testCapability(t),
			func(engineDomain.Notification) error { return nil })
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
