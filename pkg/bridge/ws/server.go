// Package ws serves the latest Bridge Node reading over websocket.
package ws

import (
	"context"
	"io"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/humidistat/pkg/framework"
	"github.com/robotalks/humidistat/pkg/msgs"
)

// DefaultAddr is the default listening address.
const DefaultAddr = ":8502"

// ReadingPath is the websocket endpoint.
const ReadingPath = "/reading"

// Source provides the latest reading.
type Source interface {
	ReadReading() (msgs.Sample, bool)
}

// Reply is sent for every message received from a client.
type Reply struct {
	Valid bool `json:"valid"`
	msgs.Sample
}

// Server answers each client message with the current reading.
type Server struct {
	Addr   string
	Source Source
}

// Name implements framework.Named.
func (s *Server) Name() string {
	return "websocket"
}

// Handler returns the http.Handler serving ReadingPath.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(ReadingPath, websocket.Handler(s.serveConn))
	return mux
}

func (s *Server) serveConn(conn *websocket.Conn) {
	defer conn.Close()
	glog.V(2).Infof("ws: client %s connected", conn.Request().RemoteAddr)
	for {
		var req string
		if err := websocket.Message.Receive(conn, &req); err != nil {
			if err != io.EOF {
				glog.Warningf("ws: receive: %v", err)
			}
			return
		}
		var reply Reply
		reply.Sample, reply.Valid = s.Source.ReadReading()
		if err := websocket.JSON.Send(conn, &reply); err != nil {
			glog.Warningf("ws: send: %v", err)
			return
		}
	}
}

// Run implements framework.Runnable.
func (s *Server) Run(ctx context.Context) error {
	addr := s.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	glog.Infof("ws: listening on %s", addr)
	return fx.RunWithContextCancel(ctx, func() { srv.Close() }, srv.ListenAndServe)
}
