package http

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/allisson/iou/internal/config"
	apperrors "github.com/allisson/iou/internal/errors"
	"github.com/allisson/iou/internal/httputil"
)

// streamPlaceholder replaces bodies that are not buffered in memory.
const streamPlaceholder = "<<stream>>"

// maxLoggedBody caps the bytes of a body kept for the access log.
const maxLoggedBody = 64 << 10

// AccessLogMiddleware logs every request according to verbosity:
//   - "none": nothing
//   - "min": method and path on the way in, status on the way out
//   - "max": "min" plus request and response bodies
//
// Request bodies of unknown length and event-stream responses are logged as
// "<<stream>>" rather than read.
func AccessLogMiddleware(logger *slog.Logger, verbosity string) gin.HandlerFunc {
	switch verbosity {
	case config.AccessLogNone:
		return func(c *gin.Context) { c.Next() }
	case config.AccessLogMax:
		return accessLog(logger, true)
	default:
		return accessLog(logger, false)
	}
}

func accessLog(logger *slog.Logger, withBodies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		uri := c.Request.URL.RequestURI()
		requestID := requestid.Get(c)

		requestAttrs := []any{
			slog.String("request_id", requestID),
			slog.String("method", method),
			slog.String("uri", uri),
		}
		if withBodies {
			requestAttrs = append(requestAttrs, slog.String("body", captureRequestBody(c.Request)))
		}
		logger.Info("request", requestAttrs...)

		var recorder *bodyRecorder
		if withBodies {
			recorder = &bodyRecorder{ResponseWriter: c.Writer}
			c.Writer = recorder
		}

		c.Next()

		responseAttrs := []any{
			slog.String("request_id", requestID),
			slog.String("method", method),
			slog.String("uri", uri),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if recorder != nil {
			responseAttrs = append(responseAttrs, slog.String("body", recorder.logged()))
		}
		logger.Info("response", responseAttrs...)
	}
}

// captureRequestBody reads a body of known length and puts it back for the handler.
func captureRequestBody(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	if r.ContentLength < 0 || r.ContentLength > maxLoggedBody {
		return streamPlaceholder
	}

	body, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return fmt.Sprintf("<<unreadable: %v>>", err)
	}
	return string(body)
}

// bodyRecorder keeps a bounded copy of the response body. Event streams are
// passed through without being kept.
type bodyRecorder struct {
	gin.ResponseWriter
	body      bytes.Buffer
	truncated bool
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.keep(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.keep([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *bodyRecorder) keep(b []byte) {
	if w.streaming() {
		return
	}
	room := maxLoggedBody - w.body.Len()
	if len(b) > room {
		b = b[:room]
		w.truncated = true
	}
	w.body.Write(b)
}

func (w *bodyRecorder) streaming() bool {
	return strings.HasPrefix(w.Header().Get("Content-Type"), sse.ContentType)
}

func (w *bodyRecorder) logged() string {
	if w.streaming() {
		return streamPlaceholder
	}
	if w.truncated {
		return w.body.String() + "..."
	}
	return w.body.String()
}

// ErrorTranslationMiddleware is the single place where failures become responses.
// It renders the last error recorded on the context, recovers panics as 500 and
// turns an unmatched route into a RouteNotFound envelope. When debug is set,
// decode failures are logged with their detail and a stack trace.
func ErrorTranslationMiddleware(logger *slog.Logger, debugDecodeFailures bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			if recovered == http.ErrAbortHandler {
				panic(recovered)
			}

			logger.Error("panic recovered",
				slog.Any("panic", recovered),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.String("stack", string(debug.Stack())),
			)
			if !c.Writer.Written() {
				httputil.HandleErrorGin(c, fmt.Errorf("panic: %v", recovered), logger)
			}
		}()

		c.Next()

		if last := c.Errors.Last(); last != nil {
			if debugDecodeFailures && httputil.IsDecodeFailure(last.Err) {
				logger.Warn("request decode failure",
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
					slog.Any("error", last.Err),
					slog.String("stack", string(debug.Stack())),
				)
			}
			if c.Writer.Written() {
				logger.Error("error after response started", slog.Any("error", last.Err))
				return
			}
			httputil.HandleErrorGin(c, last.Err, logger)
			return
		}

		if c.Writer.Status() == http.StatusNotFound && !c.Writer.Written() {
			httputil.HandleErrorGin(c, apperrors.ErrRouteNotFound, logger)
		}
	}
}
