package ws

import (
	"context"
	"errors"
	"log/slog"

	"seniorweb/internal/domain"
	"seniorweb/internal/service"
)

// ErrDeliveryDropped is logged when a frame is skipped because the client's
// send buffer is full. Frames are never queued or retried.
var ErrDeliveryDropped = errors.New("ws: delivery dropped")

type membership struct {
	client *Client
	room   string
}

type emission struct {
	rooms   []string
	payload []byte
}

type roomQuery struct {
	room  string
	reply chan int
}

// Hub owns the room membership tables. Only the Run goroutine touches them;
// connection handlers talk to it through channels.
type Hub struct {
	rooms  map[string]map[*Client]struct{}
	joined map[*Client]map[string]struct{}

	join       chan membership
	leave      chan membership
	unregister chan *Client
	emit       chan emission
	query      chan roomQuery
	done       chan struct{}

	log *slog.Logger
}

var _ service.Notifier = (*Hub)(nil)

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		joined:     make(map[*Client]map[string]struct{}),
		join:       make(chan membership),
		leave:      make(chan membership),
		unregister: make(chan *Client),
		emit:       make(chan emission, 256),
		query:      make(chan roomQuery),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run processes hub events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return

		case m := <-h.join:
			members, ok := h.rooms[m.room]
			if !ok {
				members = make(map[*Client]struct{})
				h.rooms[m.room] = members
			}
			members[m.client] = struct{}{}
			rooms, ok := h.joined[m.client]
			if !ok {
				rooms = make(map[string]struct{})
				h.joined[m.client] = rooms
			}
			rooms[m.room] = struct{}{}

		case m := <-h.leave:
			h.removeFromRoom(m.client, m.room)
			if rooms, ok := h.joined[m.client]; ok {
				delete(rooms, m.room)
			}

		case c := <-h.unregister:
			for room := range h.joined[c] {
				h.removeFromRoom(c, room)
			}
			delete(h.joined, c)
			c.close()

		case e := <-h.emit:
			h.deliver(e)

		case q := <-h.query:
			q.reply <- len(h.rooms[q.room])
		}
	}
}

func (h *Hub) removeFromRoom(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// deliver sends the payload once to every connection in any of the rooms.
func (h *Hub) deliver(e emission) {
	sent := make(map[*Client]struct{})
	for _, room := range e.rooms {
		for c := range h.rooms[room] {
			if _, ok := sent[c]; ok {
				continue
			}
			sent[c] = struct{}{}
			if !c.trySend(e.payload) {
				if h.log != nil {
					h.log.Debug("ws fan-out skipped", "err", ErrDeliveryDropped, "user_id", c.UserID, "conn_id", c.ID, "room", room)
				}
			}
		}
	}
}

// Join adds c to room.
func (h *Hub) Join(c *Client, room string) {
	select {
	case h.join <- membership{client: c, room: room}:
	case <-h.done:
	}
}

// Leave removes c from room.
func (h *Hub) Leave(c *Client, room string) {
	select {
	case h.leave <- membership{client: c, room: room}:
	case <-h.done:
	}
}

// Unregister removes c from every room and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
		c.close()
	}
}

// Broadcast queues a frame for every connection in rooms. A connection that
// belongs to several of the rooms receives it once.
func (h *Hub) Broadcast(eventType string, data any, rooms ...string) error {
	payload, err := encodeFrame(eventType, data)
	if err != nil {
		return err
	}
	select {
	case <-h.done:
		return ErrDeliveryDropped
	default:
	}
	select {
	case h.emit <- emission{rooms: rooms, payload: payload}:
		return nil
	case <-h.done:
		return ErrDeliveryDropped
	}
}

// RoomSize reports the number of connections in room. Absent rooms have
// size zero.
func (h *Hub) RoomSize(room string) int {
	q := roomQuery{room: room, reply: make(chan int, 1)}
	select {
	case h.query <- q:
		return <-q.reply
	case <-h.done:
		return 0
	}
}

// MessageCreated sends the full message to the pair room and a summary to
// both participants' user rooms.
func (h *Hub) MessageCreated(_ context.Context, m *domain.Message) error {
	if err := h.Broadcast(EventNewMessage, m, PairRoom(m.SenderID, m.ReceiverID)); err != nil {
		return err
	}
	return h.Broadcast(EventNotifyMessage, NotifyPayload{
		From:      m.SenderID,
		To:        m.ReceiverID,
		Content:   m.Preview(),
		CreatedAt: m.CreatedAt,
		Source:    m.Source,
	}, UserRoom(m.SenderID), UserRoom(m.ReceiverID))
}

// ConversationRead tells the pair room, the counterpart and the reader's
// other sessions that readerID has read otherID's messages.
func (h *Hub) ConversationRead(_ context.Context, readerID, otherID string) error {
	return h.Broadcast(EventChatRead, ChatReadPayload{Reader: readerID, Other: otherID},
		PairRoom(readerID, otherID), UserRoom(otherID), UserRoom(readerID))
}

// MutualMatch tells both users about their new match.
func (h *Hub) MutualMatch(_ context.Context, m *domain.Match) error {
	if err := h.Broadcast(EventNewMatch, MatchPayload{UserID: m.LikedID, MatchedAt: m.CreatedAt}, UserRoom(m.LikerID)); err != nil {
		return err
	}
	return h.Broadcast(EventNewMatch, MatchPayload{UserID: m.LikerID, MatchedAt: m.CreatedAt}, UserRoom(m.LikedID))
}
