package live

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	outboundBuffer = 16
	maxMessageSize = 8 << 10
)

// Conn is the subset of *websocket.Conn a Session uses.
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	SetReadLimit(limit int64)
	Close() error
}

// Backend is everything a live session needs from the data collaborator.
type Backend interface {
	Subscriber
	Creator
	Remover
	List(ctx context.Context, userID string) ([]domain.Bookmark, error)
}

// Renderer turns the list into the HTML fragment pushed to the browser.
type Renderer interface {
	RenderList(items []domain.Bookmark, deleting map[string]bool) (string, error)
}

// Inbound operations.
const (
	OpCreate = "create"
	OpDelete = "delete"
)

// Command is an inbound frame.
type Command struct {
	Op    string `json:"op"`
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
	ID    string `json:"id,omitempty"`
}

// ListFrame carries the re-rendered list.
type ListFrame struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
	HTML  string `json:"html"`
}

// FormFrame carries the create form state.
type FormFrame struct {
	Type string `json:"type"`
	FormState
}

// Session is one open dashboard: a View, a Form and a Deleter bound to a websocket.
// Outbound frames are written by a single goroutine.
type Session struct {
	conn     Conn
	backend  Backend
	renderer Renderer
	identity domain.Identity
	logger   logger.Logger
	ping     time.Duration

	view    *View
	form    *Form
	deleter *Deleter

	out      chan any
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSession prepares a session; Run starts it.
func NewSession(conn Conn, be Backend, renderer Renderer, identity domain.Identity, log logger.Logger, pingInterval time.Duration) *Session {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	log = log.With(logger.String("user_id", identity.ID))
	return &Session{
		conn:     conn,
		backend:  be,
		renderer: renderer,
		identity: identity,
		logger:   log,
		ping:     pingInterval,
		form:     NewForm(),
		deleter:  NewDeleter(log),
		out:      make(chan any, outboundBuffer),
		stop:     make(chan struct{}),
	}
}

// Run seeds the list, activates the view and serves the connection until it
// closes or ctx ends. The feed subscription is released before Run returns.
func (s *Session) Run(ctx context.Context) error {
	defer func() { _ = s.conn.Close() }()

	seed, err := s.backend.List(ctx, s.identity.ID)
	if err != nil {
		return fmt.Errorf("seed live list: %w", err)
	}

	s.view = NewView(NewList(seed), s.backend, s.identity.ID, s.logger)
	s.view.OnChange = func(domain.ChangeEvent) { s.pushList() }
	if err := s.view.Activate(ctx); err != nil {
		return err
	}
	defer func() {
		if err := s.view.Deactivate(); err != nil {
			s.logger.Debug("failed to release feed subscription", logger.Error(err))
		}
	}()

	s.wg.Add(1)
	go s.writeLoop()

	// A closed context must unblock the pending read.
	go func() {
		select {
		case <-ctx.Done():
			_ = s.conn.Close()
		case <-s.stop:
		}
	}()

	s.pushList()
	s.pushForm()

	err = s.readLoop(ctx)

	s.shutdown()
	s.wg.Wait()
	return err
}

func (s *Session) shutdown() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Session) readLoop(ctx context.Context) error {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(2 * s.ping))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(2 * s.ping))
	})

	for {
		var cmd Command
		if err := s.conn.ReadJSON(&cmd); err != nil {
			var closed *websocket.CloseError
			if ctx.Err() != nil || errors.As(err, &closed) {
				return nil
			}
			return fmt.Errorf("read live command: %w", err)
		}
		s.handle(ctx, cmd)
	}
}

// handle dispatches a command. Writes and their frames run on their own goroutine,
// so reading never blocks on I/O or on a full outbound queue.
// They are detached from ctx: a write already issued is not cancelled.
func (s *Session) handle(ctx context.Context, cmd Command) {
	writeCtx := context.WithoutCancel(ctx)

	switch cmd.Op {
	case OpCreate:
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			// An ignored submit pushes nothing: a form frame would overwrite
			// what the user typed since.
			if !s.form.Submit(writeCtx, s.backend, s.identity.ID, cmd.URL, cmd.Title) {
				s.logger.Debug("create ignored, submission already pending")
				return
			}
			s.pushForm()
		}()

	case OpDelete:
		if !s.deleter.Begin(cmd.ID) {
			s.logger.Debug("delete ignored, already in flight", logger.String("bookmark_id", cmd.ID))
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.pushList()
			_ = s.deleter.run(writeCtx, s.backend, s.identity.ID, cmd.ID)
			s.pushList()
		}()

	default:
		s.logger.Warn("unknown live command", logger.String("op", cmd.Op))
	}
}

func (s *Session) writeLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.ping)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return

		case frame := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(frame); err != nil {
				s.logger.Debug("live write failed", logger.Error(err))
				_ = s.conn.Close()
				return
			}

		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				s.logger.Debug("live ping failed", logger.Error(err))
				_ = s.conn.Close()
				return
			}
		}
	}
}

func (s *Session) send(frame any) {
	select {
	case s.out <- frame:
	case <-s.stop:
	}
}

func (s *Session) pushList() {
	items := s.view.List().Items()

	deleting := make(map[string]bool)
	for _, id := range s.deleter.Pending() {
		deleting[id] = true
	}

	html, err := s.renderer.RenderList(items, deleting)
	if err != nil {
		s.logger.Error("failed to render live list", logger.Error(err))
		return
	}
	s.send(ListFrame{Type: "list", Count: len(items), HTML: html})
}

func (s *Session) pushForm() {
	s.send(FormFrame{Type: "form", FormState: s.form.Snapshot()})
}
