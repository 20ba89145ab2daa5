package router

import (
	"net/http"
	"time"

	"bedrockproxy"
	"bedrockproxy/generate"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// New builds the engine serving /health and /generate at the root
// and once more below every non-empty prefix (API Gateway stage paths).
func New(h *generate.Handler, prefixes ...string) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestID(), AccessLog())

	register(&engine.RouterGroup, h)
	seen := map[string]bool{"": true, "/": true}
	for _, prefix := range prefixes {
		if seen[prefix] {
			continue
		}
		seen[prefix] = true
		register(engine.Group(prefix), h)
	}
	return engine
}

func register(group *gin.RouterGroup, h *generate.Handler) {
	group.GET("/health", h.Health)
	group.POST("/generate", h.Generate)
}

// RequestID tags the request with the caller's X-Request-Id, the Lambda
// request id, or a fresh uuid, and echoes it in the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			if lc, ok := lambdacontext.FromContext(c.Request.Context()); ok {
				id = lc.AwsRequestID
			}
		}
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(generate.RequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// AccessLog writes one line per request through the shared Logger.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := bedrockproxy.LevelInfo
		if status >= http.StatusInternalServerError {
			level = bedrockproxy.LevelWarn
		}
		bedrockproxy.Logger.Log(c.Request.Context(), level, "Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"request_id", c.GetString(generate.RequestIDKey),
		)
	}
}
