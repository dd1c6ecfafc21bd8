package main

import (
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection. Its session ID is minted per
// connection: identity lives and dies with the socket.
type Client struct {
	conn    *websocket.Conn
	session string

	// room is only touched from this client's readPump goroutine.
	room *Room

	mu     sync.Mutex
	closed bool
	send   chan any
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn:    conn,
		session: uuid.NewString(),
		send:    make(chan any, 8),
	}
}

// trySend queues a message without blocking. A full or closed channel
// drops the message and reports false so callers can evict the client.
func (c *Client) trySend(msg any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once, ending the write pump.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (c *Client) readPump(cfg *Config, m *RoomManager) {
	defer func() {
		m.disconnect(cfg, c)
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "create":
			m.handleCreate(cfg, c, msg)
		case "start":
			m.handleStart(cfg, c, msg)
		case "next":
			m.handleNext(cfg, c, msg)
		case "join":
			m.handleJoin(cfg, c, msg)
		case "answer":
			m.handleAnswer(c, msg)
		default:
			// ignore unknown types
		}
	}
}

func (m *RoomManager) handleCreate(cfg *Config, c *Client, msg ClientMessage) {
	if c.room != nil {
		c.trySend(CreateResultMessage{Type: "create_result", Error: ErrAlreadyJoined.Error()})
		return
	}

	title, questions, err := loadPack(cfg.packsDir, msg.Pack)
	if err != nil {
		c.trySend(CreateResultMessage{Type: "create_result", Error: err.Error()})
		return
	}

	questions = selectQuestions(questions, msg.TotalQuestions)
	theme := loadTheme(cfg.themesDir, msg.Theme)
	durationSec := clampSeconds(msg.DurationSec, cfg.questionSeconds)
	public := msg.Public == nil || *msg.Public

	var room *Room
	for {
		code := m.newRoomCode()
		room = newRoom(code, title, questions, durationSec, cfg.revealDelay, theme, public, c.session, m.clock)
		if err := m.register(room); err == nil {
			break
		}
	}

	room.addMember(c)
	c.room = room

	logf(cfg, "ROOMS: Created room %s (%d questions, %ds) for %s", room.code, len(questions), durationSec, c.session)

	c.trySend(CreateResultMessage{
		Type:        "create_result",
		OK:          true,
		Code:        room.code,
		Title:       title,
		Count:       len(questions),
		DurationSec: durationSec,
		Theme:       theme.Name,
	})

	room.broadcastState()
	m.broadcastPublicRooms()
}

func (m *RoomManager) handleStart(cfg *Config, c *Client, msg ClientMessage) {
	room, ok := m.get(normalizeCode(msg.Code))
	if !ok {
		c.trySend(ActionResultMessage{Type: "start_result", Error: ErrRoomNotFound.Error()})
		return
	}

	if err := room.start(c.session); err != nil {
		c.trySend(ActionResultMessage{Type: "start_result", Error: err.Error()})
		return
	}

	logf(cfg, "ROOMS: Started room %s", room.code)

	c.trySend(ActionResultMessage{Type: "start_result", OK: true})
	m.broadcastPublicRooms()
}

func (m *RoomManager) handleNext(cfg *Config, c *Client, msg ClientMessage) {
	room, ok := m.get(normalizeCode(msg.Code))
	if !ok {
		c.trySend(ActionResultMessage{Type: "next_result", Error: ErrRoomNotFound.Error()})
		return
	}

	ended, err := room.advance(c.session)
	if err != nil {
		c.trySend(ActionResultMessage{Type: "next_result", Error: err.Error()})
		return
	}

	if ended {
		logf(cfg, "ROOMS: Room %s finished", room.code)
	}

	c.trySend(ActionResultMessage{Type: "next_result", OK: true, Ended: ended})
}

func (m *RoomManager) handleJoin(cfg *Config, c *Client, msg ClientMessage) {
	if c.room != nil {
		c.trySend(JoinResultMessage{Type: "join_result", Error: ErrAlreadyJoined.Error()})
		return
	}

	room, ok := m.get(normalizeCode(msg.Code))
	if !ok {
		c.trySend(JoinResultMessage{Type: "join_result", Error: ErrRoomNotFound.Error()})
		return
	}

	if err := room.join(c, msg.Name, msg.Avatar); err != nil {
		c.trySend(JoinResultMessage{Type: "join_result", Error: err.Error()})
		return
	}
	c.room = room

	logf(cfg, "ROOMS: Player %q joined %s", msg.Name, room.code)

	themeName := "classic"
	if room.theme != nil && room.theme.Name != "" {
		themeName = room.theme.Name
	}

	c.trySend(JoinResultMessage{
		Type: "join_result",
		OK:   true,
		Room: &RoomSummary{
			Code:  room.code,
			Title: room.title,
		},
		Theme: themeName,
	})

	m.broadcastPublicRooms()
}

func (m *RoomManager) handleAnswer(c *Client, msg ClientMessage) {
	room, ok := m.get(normalizeCode(msg.Code))
	if !ok {
		c.trySend(AnswerResultMessage{Type: "answer_result", Error: ErrRoomNotFound.Error()})
		return
	}

	if msg.ChoiceIndex == nil {
		c.trySend(AnswerResultMessage{Type: "answer_result", Error: ErrBadChoice.Error()})
		return
	}

	correct, err := room.submitAnswer(c.session, *msg.ChoiceIndex)
	if err != nil {
		c.trySend(AnswerResultMessage{Type: "answer_result", Error: err.Error()})
		return
	}

	c.trySend(AnswerResultMessage{Type: "answer_result", OK: true, Correct: correct})
}

// disconnect cleans up after a closed connection. A departing host takes
// the whole room down with it; a departing player just leaves.
func (m *RoomManager) disconnect(cfg *Config, c *Client) {
	m.removeClient(c)

	if room := c.room; room != nil {
		if room.isHost(c.session) {
			logf(cfg, "ROOMS: Host left, ending room %s", room.code)
			m.teardown(room)
		} else {
			room.leave(c)
			m.broadcastPublicRooms()
		}
	}

	c.closeSend()
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func serveWS(cfg *Config, m *RoomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		c := newClient(conn)
		m.addClient(c)

		go c.writePump()

		// New connections see the joinable rooms straight away.
		c.trySend(RoomListMessage{
			Type:  "room_list",
			Rooms: m.publicRooms(),
		})

		c.readPump(cfg, m)
	}
}
