package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"seniorweb/internal/domain"
	"seniorweb/internal/security"
	"seniorweb/internal/service"
)

type wsAuthError struct {
	status int
	msg    string
}

func (e wsAuthError) Error() string {
	return e.msg
}

// Options tunes the websocket endpoint.
type Options struct {
	AllowedOrigins []string
	SendBuffer     int
	PingInterval   time.Duration
	PongTimeout    time.Duration
	// OpTimeout bounds each store operation triggered by a frame.
	OpTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 32
	}
	if o.PongTimeout <= 0 {
		o.PongTimeout = 60 * time.Second
	}
	if o.PingInterval <= 0 || o.PingInterval >= o.PongTimeout {
		o.PingInterval = o.PongTimeout * 9 / 10
	}
	if o.OpTimeout <= 0 {
		o.OpTimeout = 10 * time.Second
	}
	return o
}

func normalizeAllowedOrigins(origins []string) map[string]struct{} {
	res := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			res[o] = struct{}{}
		}
	}
	return res
}

func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := normalizeAllowedOrigins(allowedOrigins)
	if _, ok := allowed["*"]; ok {
		return func(r *http.Request) bool { return true }
	}
	if len(allowed) == 0 {
		return func(r *http.Request) bool {
			return false
		}
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" {
			return false
		}
		if _, ok := allowed[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		normalized := strings.ToLower(fmt.Sprintf("%s://%s", u.Scheme, u.Host))
		_, ok := allowed[normalized]
		return ok
	}
}

func extractTokenFromWSRequest(r *http.Request) (string, error) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		token := strings.TrimSpace(authHeader[len("Bearer "):])
		if token != "" {
			return token, nil
		}
	}

	protocolHeader := r.Header.Get("Sec-WebSocket-Protocol")
	if protocolHeader != "" {
		parts := strings.Split(protocolHeader, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) >= 2 && strings.EqualFold(parts[0], "bearer") {
			token := parts[1]
			if token != "" {
				return token, nil
			}
		}
	}

	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return token, nil
	}

	return "", wsAuthError{status: http.StatusUnauthorized, msg: "missing bearer token"}
}

// MakeHandler returns an HTTP handler for the /ws endpoint.
// Authenticates via Bearer token (Authorization header, Sec-WebSocket-Protocol
// or ?token=), then dispatches events:
//   - register-user -> join user:{id}
//   - join-chat     -> join pair:{lo}:{hi}
//   - leave-chat    -> leave pair:{lo}:{hi}
//   - send-message  -> store, then new-message / notify-message fan-out
//   - read-chat     -> read flip, then chat-read fan-out
//
// Fan-out itself goes through the services' Notifier, so frames produced here
// and frames produced by HTTP requests take the same path.
func MakeHandler(
	hub *Hub,
	tokens *security.TokenService,
	users domain.UserRepository,
	msgSvc *service.MessageService,
	opts Options,
	log *slog.Logger,
) http.HandlerFunc {
	opts = opts.withDefaults()
	checkOrigin := makeCheckOrigin(opts.AllowedOrigins)
	upgrader := websocket.Upgrader{
		CheckOrigin: checkOrigin,
		Subprotocols: []string{
			"bearer",
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if !checkOrigin(r) {
			http.Error(w, "origin not allowed", http.StatusForbidden)
			return
		}

		tokenStr, err := extractTokenFromWSRequest(r)
		if err != nil {
			var authErr wsAuthError
			if errors.As(err, &authErr) {
				http.Error(w, authErr.msg, authErr.status)
				return
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		userID, err := tokens.Subject(tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		user, err := users.GetByID(r.Context(), userID)
		if err != nil {
			http.Error(w, "user not found", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		client := newClient(user.ID, conn, opts.SendBuffer)
		go client.writePump(opts.PingInterval)

		s := &session{
			hub:    hub,
			client: client,
			msgSvc: msgSvc,
			// Writes started by this connection outlive it.
			ctx:       context.WithoutCancel(r.Context()),
			opTimeout: opts.OpTimeout,
			log:       log.With("user_id", user.ID, "conn_id", client.ID),
		}
		s.log.Debug("ws connected")
		client.readPump(opts.PongTimeout, s.handle)
		hub.Unregister(client)
		s.log.Debug("ws disconnected")
	}
}

// session is the per-connection state machine:
// connecting -> registered -> (joined pair)* -> disconnected.
type session struct {
	hub        *Hub
	client     *Client
	msgSvc     *service.MessageService
	ctx        context.Context
	opTimeout  time.Duration
	registered bool
	log        *slog.Logger
}

func (s *session) handle(f Frame) {
	switch f.Type {

	// ── registration ─────────────────────────────────────────────────────
	case EventRegisterUser:
		var p RegisterPayload
		if !s.decode(f, &p) {
			return
		}
		if p.UserID != "" && p.UserID != s.client.UserID {
			s.sendError("cannot register as another user")
			return
		}
		s.hub.Join(s.client, UserRoom(s.client.UserID))
		s.registered = true

	// ── pair rooms ───────────────────────────────────────────────────────
	case EventJoinChat, EventLeaveChat:
		var p PairPayload
		if !s.decode(f, &p) {
			return
		}
		if !s.ownPair(p) {
			return
		}
		room := PairRoom(s.client.UserID, p.Other)
		if f.Type == EventJoinChat {
			if !s.registered {
				s.sendError("register-user first")
				return
			}
			s.hub.Join(s.client, room)
		} else {
			s.hub.Leave(s.client, room)
		}

	// ── send message ─────────────────────────────────────────────────────
	case EventSendMessage:
		var p SendPayload
		if !s.decode(f, &p) {
			return
		}
		if p.SenderID != "" && p.SenderID != s.client.UserID {
			s.sendError("cannot send as another user")
			return
		}
		ctx, cancel := context.WithTimeout(s.ctx, s.opTimeout)
		defer cancel()
		if _, err := s.msgSvc.Send(ctx, service.SendInput{
			SenderID:   s.client.UserID,
			ReceiverID: p.ReceiverID,
			Content:    p.Content,
			ImageURL:   p.ImageURL,
			AudioURL:   p.AudioURL,
			Source:     p.Source,
		}); err != nil {
			s.log.Warn("ws: send message", "err", err)
			s.sendError(clientMessage(err, "failed to send message"))
		}

	// ── mark read ────────────────────────────────────────────────────────
	case EventReadChat:
		var p PairPayload
		if !s.decode(f, &p) {
			return
		}
		if !s.ownPair(p) {
			return
		}
		ctx, cancel := context.WithTimeout(s.ctx, s.opTimeout)
		defer cancel()
		if _, err := s.msgSvc.MarkRead(ctx, s.client.UserID, p.Other); err != nil {
			s.log.Warn("ws: read chat", "err", err)
			s.sendError(clientMessage(err, "failed to mark messages as read"))
		}

	default:
		s.log.Debug("ws: unknown event type", "type", f.Type)
		s.sendError("unknown event type")
	}
}

func (s *session) decode(f Frame, v any) bool {
	if len(f.Data) == 0 {
		s.sendError(f.Type + " requires data")
		return false
	}
	if err := json.Unmarshal(f.Data, v); err != nil {
		s.sendError("invalid " + f.Type + " payload")
		return false
	}
	return true
}

func (s *session) ownPair(p PairPayload) bool {
	if p.Me != "" && p.Me != s.client.UserID {
		s.sendError("cannot act for another user")
		return false
	}
	if p.Other == "" || p.Other == s.client.UserID {
		s.sendError("other user is required")
		return false
	}
	return true
}

func (s *session) sendError(msg string) {
	payload, err := encodeFrame(EventError, ErrorPayload{Message: msg})
	if err != nil {
		return
	}
	if !s.client.trySend(payload) {
		s.log.Debug("ws: error frame dropped", "err", ErrDeliveryDropped)
	}
}

func clientMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, domain.ErrInvalidOperation):
		return err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return "user not found"
	default:
		return fallback
	}
}
