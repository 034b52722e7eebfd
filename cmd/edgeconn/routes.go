package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danmuck/edgeconn/internal/connection"
	"github.com/danmuck/edgeconn/internal/protocol"
	"github.com/danmuck/edgeconn/internal/protocol/response"
	"github.com/danmuck/edgeconn/internal/routing"
)

func demoRoutes() []*routing.Route {
	return []*routing.Route{
		routing.NewRoute("/").GET(hello),
		routing.NewRoute("/echo").POST(echo),
		routing.NewRoute("/ws").WebSocket(socketEcho),
	}
}

func hello(ctx context.Context, conn connection.Connection) error {
	return conn.SendResponse(ctx, response.Text(http.StatusOK, "hello from edgeconn\n"))
}

// echo streams the reassembled request body back in its arrival chunks.
func echo(ctx context.Context, conn connection.Connection) error {
	hc, ok := conn.(*connection.HTTPConnection)
	if !ok {
		return fmt.Errorf("echo: unexpected connection %T", conn)
	}
	var chunks [][]byte
	for req, err := range hc.StreamRequests(ctx) {
		if err != nil {
			return err
		}
		if body := req.Body(); len(body) > 0 {
			chunks = append(chunks, body)
		}
	}
	headers := []protocol.HeaderPair{protocol.Header("content-type", "application/octet-stream")}
	return conn.SendResponse(ctx, response.NewStream(http.StatusOK, headers, response.ChunksOf(chunks...)))
}

func socketEcho(ctx context.Context, conn connection.Connection) error {
	for {
		req, err := conn.ReceiveRequest(ctx)
		if err != nil {
			return err
		}
		switch req.Type {
		case "connect":
			if err := conn.SendResponse(ctx, response.Accept{}); err != nil {
				return err
			}
		case "receive":
			var out response.Send
			if text, ok := req.Text(); ok {
				out = response.SendText(text)
			} else {
				out = response.SendBytes(req.Data.Bytes("bytes"))
			}
			if err := conn.SendResponse(ctx, out); err != nil {
				return err
			}
		case "disconnect":
			return nil
		}
	}
}
