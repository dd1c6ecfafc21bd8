package main

import (
	"crypto/rand"
	"sync"
	"time"
)

// Room codes are short enough to type and read aloud; the alphabet drops
// the characters that are easy to misread (0/O, 1/I).
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

// RoomManager owns the process-wide room table, plus the set of every
// connected client for the discovery broadcast.
type RoomManager struct {
	mu      sync.Mutex
	rooms   map[string]*Room
	clients map[*Client]bool

	clock scheduler
}

func newRoomManager(cfg *Config, clock scheduler) *RoomManager {
	m := &RoomManager{
		rooms:   make(map[string]*Room),
		clients: make(map[*Client]bool),
		clock:   clock,
	}
	if cfg != nil && cfg.sessionTimeout > 0 {
		m.scheduleReap(cfg, cfg.sessionTimeout)
	}
	return m
}

func (m *RoomManager) addClient(c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clients[c] = true
}

func (m *RoomManager) removeClient(c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.clients, c)
}

// register inserts a room, refusing a code already in use. Callers that
// generated the code via newRoomCode only hit the error if they raced
// another creation to the same code.
func (m *RoomManager) register(r *Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.rooms[r.code]; exists {
		return ErrCodeInUse
	}
	m.rooms[r.code] = r

	return nil
}

func (m *RoomManager) get(code string) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[code]
	return room, ok
}

func (m *RoomManager) remove(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.rooms, code)
}

// newRoomCode generates a crypto-random join code and ensures it doesn't
// collide with a live room.
func (m *RoomManager) newRoomCode() string {
	for {
		buf := make([]byte, codeLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, codeLength)
		for i := range out {
			out[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
		}
		code := string(out)

		m.mu.Lock()
		_, exists := m.rooms[code]
		m.mu.Unlock()

		if !exists {
			return code
		}
	}
}

// teardown ends a room for everyone: the host left, the reaper claimed
// it, or the process is shutting down.
func (m *RoomManager) teardown(r *Room) {
	r.shutdown()
	m.remove(r.code)
	m.broadcastPublicRooms()
}

// publicRooms lists joinable rooms: public visibility, still in lobby.
func (m *RoomManager) publicRooms() []PublicRoom {
	m.mu.Lock()
	defer m.mu.Unlock()

	listing := make([]PublicRoom, 0, len(m.rooms))
	for _, room := range m.rooms {
		room.mu.Lock()
		if room.public && room.phase == PhaseLobby {
			themeName := "classic"
			if room.theme != nil && room.theme.Name != "" {
				themeName = room.theme.Name
			}
			listing = append(listing, PublicRoom{
				Code:        room.code,
				Title:       room.title,
				PlayerCount: len(room.players),
				Theme:       themeName,
				CreatedAt:   room.createdAt,
			})
		}
		room.mu.Unlock()
	}

	return listing
}

// broadcastPublicRooms pushes the discovery listing to every connection,
// joined or not, whenever the listing may have changed.
func (m *RoomManager) broadcastPublicRooms() {
	msg := RoomListMessage{
		Type:  "room_list",
		Rooms: m.publicRooms(),
	}

	m.mu.Lock()
	clients := make([]*Client, 0, len(m.clients))
	for c := range m.clients {
		clients = append(clients, c)
	}
	m.mu.Unlock()

	for _, c := range clients {
		c.trySend(msg)
	}
}

// scheduleReap arms the next idle-room sweep on the injected scheduler,
// re-arming itself after every sweep.
func (m *RoomManager) scheduleReap(cfg *Config, idleTimeout time.Duration) {
	m.clock.AfterFunc(idleTimeout/2, func() {
		m.reapIdleRooms(cfg, idleTimeout)
		m.scheduleReap(cfg, idleTimeout)
	})
}

// reapIdleRooms tears down rooms that have been idle longer than the
// session timeout.
func (m *RoomManager) reapIdleRooms(cfg *Config, idleTimeout time.Duration) {
	cutoff := m.clock.Now().Add(-idleTimeout)

	m.mu.Lock()
	stale := make([]*Room, 0)
	for code, room := range m.rooms {
		if room.lastActiveAt().Before(cutoff) {
			delete(m.rooms, code)
			stale = append(stale, room)
		}
	}
	m.mu.Unlock()

	for _, room := range stale {
		logf(cfg, "ROOMS: Reaped idle room %s", room.code)
		room.shutdown()
	}

	if len(stale) > 0 {
		m.broadcastPublicRooms()
	}
}
