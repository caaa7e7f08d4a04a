package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yourusername/gridswitch/internal/command"
	"github.com/yourusername/gridswitch/internal/daemon"
	"github.com/yourusername/gridswitch/internal/logging"
	"github.com/yourusername/gridswitch/internal/switcher"
	"github.com/yourusername/gridswitch/internal/visualizer"
)

// StatusFunc supplies the current switcher state for the status method.
type StatusFunc func() switcher.Status

// Listener serves the control socket. It implements daemon.Source:
// decoded command requests flow into the dispatch sink, while the
// built-in methods (ping, status, subscribe) are answered in place.
type Listener struct {
	socketPath string
	status     StatusFunc
	meta       map[string]interface{}
	log        zerolog.Logger

	mu   sync.Mutex
	subs map[*conn]struct{}
}

// conn is one accepted client. Writes are serialized so pushed events
// never interleave with a response mid-line.
type conn struct {
	net.Conn
	wmu sync.Mutex
}

func (c *conn) writeEnvelope(env *MessageEnvelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return err
	}
	_, err = c.Write(data)
	return err
}

// NewListener creates a listener for the given socket path.
func NewListener(socketPath string, status StatusFunc) *Listener {
	return &Listener{
		socketPath: socketPath,
		status:     status,
		log:        logging.Logger.With().Str("component", "ipc").Logger(),
		subs:       make(map[*conn]struct{}),
	}
}

// SetMeta attaches an extra key to every status result. The daemon uses
// it to hand overlay clients their timing configuration. Must be called
// before Run.
func (l *Listener) SetMeta(key string, value interface{}) error {
	m, err := toMap(value)
	if err != nil {
		return err
	}
	if l.meta == nil {
		l.meta = make(map[string]interface{})
	}
	l.meta[key] = m
	return nil
}

// Run binds the socket and serves connections until ctx is cancelled.
func (l *Listener) Run(ctx context.Context, sink chan<- daemon.Dispatch) error {
	// A previous instance may have left the socket file behind; the
	// daemon's flock guarantees we are the only live instance.
	if err := os.Remove(l.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale socket %s: %w", l.socketPath, err)
	}

	ln, err := net.Listen("unix", l.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.socketPath, err)
	}
	l.log.Info().Str("socket", l.socketPath).Msg("control socket ready")

	go func() {
		<-ctx.Done()
		ln.Close()
		os.Remove(l.socketPath)
	}()

	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.log.Warn().Err(err).Msg("accept failed")
			continue
		}
		c := &conn{Conn: nc}
		go l.serve(ctx, c, sink)
	}
}

func (l *Listener) serve(ctx context.Context, c *conn, sink chan<- daemon.Dispatch) {
	defer func() {
		l.unsubscribe(c)
		c.Close()
	}()

	scanner := bufio.NewScanner(c)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var env MessageEnvelope
		if err := json.Unmarshal(line, &env); err != nil {
			l.log.Warn().Err(err).Msg("unparsable message, dropping connection")
			return
		}
		if env.Type != "request" || env.Request == nil {
			c.writeEnvelope(NewErrorResponse("", CodeBadRequest, "expected a request envelope"))
			continue
		}

		resp := l.handleRequest(ctx, c, env.Request, sink)
		if err := c.writeEnvelope(resp); err != nil {
			l.log.Debug().Err(err).Msg("write failed, dropping connection")
			return
		}
	}
}

func (l *Listener) handleRequest(ctx context.Context, c *conn, req *Request, sink chan<- daemon.Dispatch) *MessageEnvelope {
	l.log.Debug().Str("id", req.ID).Str("method", req.Method).Msg("request")

	switch req.Method {
	case "ping":
		return NewResponse(req.ID, map[string]interface{}{"pong": true})

	case "status":
		result, err := toMap(l.status())
		if err != nil {
			return NewErrorResponse(req.ID, CodeInternal, err.Error())
		}
		for k, v := range l.meta {
			result[k] = v
		}
		return NewResponse(req.ID, result)

	case "subscribe":
		l.subscribe(c)
		return NewResponse(req.ID, map[string]interface{}{"subscribed": true})
	}

	cmd, err := command.Decode(req.Method, req.Params)
	if err != nil {
		code := CodeBadRequest
		if errors.Is(err, command.ErrUnknownMethod) {
			code = CodeUnknownMethod
		}
		return NewErrorResponse(req.ID, code, err.Error())
	}

	reply := make(chan error, 1)
	select {
	case sink <- daemon.Dispatch{Cmd: cmd, Reply: reply}:
	case <-ctx.Done():
		return NewErrorResponse(req.ID, CodeInternal, "daemon shutting down")
	}

	select {
	case err := <-reply:
		if err != nil {
			return NewErrorResponse(req.ID, CodeInternal, err.Error())
		}
		return NewResponse(req.ID, map[string]interface{}{"ok": true})
	case <-ctx.Done():
		return NewErrorResponse(req.ID, CodeInternal, "daemon shutting down")
	}
}

func (l *Listener) subscribe(c *conn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subs[c] = struct{}{}
}

func (l *Listener) unsubscribe(c *conn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.subs, c)
}

// Broadcast pushes a visualizer event to every subscribed client. It is
// fire-and-forget: a client whose write fails is dropped from the
// subscription set.
func (l *Listener) Broadcast(ev visualizer.Event) {
	var data map[string]interface{}
	if ev.Payload != nil {
		m, err := toMap(ev.Payload)
		if err != nil {
			l.log.Warn().Err(err).Msg("failed to encode event payload")
			return
		}
		data = m
	}
	env := NewEvent(string(ev.Kind), data)

	l.mu.Lock()
	subs := make([]*conn, 0, len(l.subs))
	for c := range l.subs {
		subs = append(subs, c)
	}
	l.mu.Unlock()

	for _, c := range subs {
		if err := c.writeEnvelope(env); err != nil {
			l.log.Debug().Err(err).Msg("subscriber write failed, dropping")
			l.unsubscribe(c)
			c.Close()
		}
	}
}
