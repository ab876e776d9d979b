package http

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/allisson/iou/internal/config"
)

var (
	corsAllowHeaders = []string{
		"DNT",
		"Keep-Alive",
		"User-Agent",
		"X-Requested-With",
		"If-Modified-Since",
		"Cache-Control",
		"Content-Type",
		"Content-Range",
		"Range",
		"Authorization",
	}

	corsAllowMethods = []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodOptions,
		http.MethodTrace,
		http.MethodPatch,
		http.MethodConnect,
	}
)

// CORSMiddleware answers every request with CORS headers.
//
// When allowedOrigins is exactly ["*"] the gin-contrib/cors middleware runs in
// allow-all mode, and requests it leaves alone (no Origin, or a same-host one)
// still get "*". Otherwise a request Origin found in allowedOrigins is echoed
// back and any other origin, or none, gets fallbackOrigin. OPTIONS requests are
// answered with 200 without reaching the router in both modes.
func CORSMiddleware(allowedOrigins []string, fallbackOrigin string, logger *slog.Logger) gin.HandlerFunc {
	if len(allowedOrigins) == 1 && allowedOrigins[0] == config.AllowAllOrigins {
		logger.Info("CORS allows all origins")
		allowAll := cors.New(cors.Config{
			AllowAllOrigins:           true,
			AllowMethods:              corsAllowMethods,
			AllowHeaders:              corsAllowHeaders,
			ExposeHeaders:             []string{"X-Request-Id"},
			AllowCredentials:          true,
			OptionsResponseStatusCode: http.StatusOK,
		})

		return func(c *gin.Context) {
			allowAll(c)
			if c.IsAborted() {
				return
			}
			if c.Writer.Header().Get("Access-Control-Allow-Origin") == "" {
				setCORSHeaders(c.Writer.Header(), config.AllowAllOrigins)
			}
			answerCORS(c)
		}
	}

	logger.Info("CORS allow-list configured",
		slog.Int("origin_count", len(allowedOrigins)),
		slog.Any("origins", allowedOrigins),
		slog.String("fallback_origin", fallbackOrigin))

	return func(c *gin.Context) {
		header := c.Writer.Header()
		setCORSHeaders(header, allowedOrigin(c.GetHeader("Origin"), allowedOrigins, fallbackOrigin))
		header.Add("Vary", "Origin")
		answerCORS(c)
	}
}

var (
	corsAllowHeadersValue = strings.Join(corsAllowHeaders, ", ")
	corsAllowMethodsValue = strings.Join(corsAllowMethods, ", ")
)

func setCORSHeaders(header http.Header, origin string) {
	header.Set("Access-Control-Allow-Origin", origin)
	header.Set("Access-Control-Allow-Headers", corsAllowHeadersValue)
	header.Set("Access-Control-Allow-Methods", corsAllowMethodsValue)
	header.Set("Access-Control-Allow-Credentials", "true")
	header.Set("Access-Control-Expose-Headers", "X-Request-Id")
}

// answerCORS ends OPTIONS requests with 200 and passes everything else on.
func answerCORS(c *gin.Context) {
	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusOK)
		return
	}
	c.Next()
}

func allowedOrigin(origin string, allowedOrigins []string, fallbackOrigin string) string {
	if origin != "" && slices.Contains(allowedOrigins, origin) {
		return origin
	}
	return fallbackOrigin
}
