package web

import (
	"context"
	"net/http"

	"github.com/danmuck/edgeconn/internal/auth"
	"github.com/danmuck/edgeconn/internal/connection"
	"github.com/danmuck/edgeconn/internal/protocol"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Server runs one connection over a raw channel.
type Server interface {
	Serve(ctx context.Context, scope protocol.Scope, receive connection.ReceiveFunc, send connection.SendFunc) error
}

// Handler returns a gin handler that hands every request to srv.
func Handler(srv Server, cfg Config) gin.HandlerFunc {
	cfg = cfg.withDefaults()
	validator := cfg.validator()
	return func(c *gin.Context) {
		r := c.Request
		id := requestID(r)
		scope := buildScope(r, cfg, id)
		ctx := r.Context()

		if scope.Type() == protocol.ProtocolWebSocket {
			if validator != nil {
				user, err := auth.Authenticate(r, validator)
				if err != nil {
					log.Debug().Err(err).Str("request_id", id).Msg("websocket auth rejected")
					c.Header("X-Request-Id", id)
					c.AbortWithStatus(http.StatusUnauthorized)
					return
				}
				scope["user"] = user
			}
			ex := newWSExchange(c.Writer, r, id, cfg)
			err := srv.Serve(ctx, scope, ex.receive, ex.send)
			ex.finish()
			if err != nil {
				log.Error().Err(err).Str("request_id", id).Msg("websocket connection failed")
			}
			return
		}

		ex := newHTTPExchange(c.Writer, r, id, cfg)
		if err := srv.Serve(ctx, scope, ex.receive, ex.send); err != nil {
			log.Error().Err(err).Str("request_id", id).Msg("http connection failed")
		}
		if !ex.started {
			c.Header("X-Request-Id", id)
			c.AbortWithStatus(http.StatusInternalServerError)
		}
	}
}
