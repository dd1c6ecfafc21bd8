package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() (*RoomManager, *manualScheduler) {
	clock := newManualScheduler()
	// Nil config disables the reaper; reap behavior is covered via teardown.
	return newRoomManager(nil, clock), clock
}

func TestRoomCodeShape(t *testing.T) {
	m, _ := newTestManager()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code := m.newRoomCode()
		assert.Len(t, code, codeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected character %q in code %s", r, code)
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1, "codes should not repeat constantly")
}

func TestRegisterRejectsDuplicateCode(t *testing.T) {
	m, clock := newTestManager()

	first := newRoom("AAAAAA", "First", testQuestions(1), 30, 5*time.Second, nil, true, "h1", clock)
	second := newRoom("AAAAAA", "Second", testQuestions(1), 30, 5*time.Second, nil, true, "h2", clock)

	require.NoError(t, m.register(first))
	require.ErrorIs(t, m.register(second), ErrCodeInUse)

	got, ok := m.get("AAAAAA")
	require.True(t, ok)
	assert.Equal(t, "First", got.title)
}

func TestGetAndRemove(t *testing.T) {
	m, clock := newTestManager()

	room := newRoom("BBBBBB", "Pack", testQuestions(1), 30, 5*time.Second, nil, true, "h1", clock)
	require.NoError(t, m.register(room))

	_, ok := m.get("BBBBBB")
	assert.True(t, ok)

	m.remove("BBBBBB")
	_, ok = m.get("BBBBBB")
	assert.False(t, ok)
}

func TestPublicRoomsListsOnlyJoinableRooms(t *testing.T) {
	m, clock := newTestManager()

	open := newRoom("OPEN01", "Open", testQuestions(2), 30, 5*time.Second, &Theme{Name: "neon"}, true, "h1", clock)
	hidden := newRoom("HIDDEN", "Hidden", testQuestions(2), 30, 5*time.Second, nil, false, "h2", clock)
	running := newRoom("GOING1", "Going", testQuestions(2), 30, 5*time.Second, nil, true, "h3", clock)

	require.NoError(t, m.register(open))
	require.NoError(t, m.register(hidden))
	require.NoError(t, m.register(running))

	addTestPlayer(open, "p1", "Alice")
	addTestPlayer(open, "p2", "Bob")
	require.NoError(t, running.start("h3"))

	listing := m.publicRooms()
	require.Len(t, listing, 1)
	assert.Equal(t, "OPEN01", listing[0].Code)
	assert.Equal(t, "Open", listing[0].Title)
	assert.Equal(t, 2, listing[0].PlayerCount)
	assert.Equal(t, "neon", listing[0].Theme)
}

func TestTeardownEvictsAndDisconnects(t *testing.T) {
	m, clock := newTestManager()

	room := newRoom("GONE01", "Pack", testQuestions(2), 30, 5*time.Second, nil, true, "h1", clock)
	require.NoError(t, m.register(room))
	member := addTestPlayer(room, "p1", "Alice")
	require.NoError(t, room.start("h1"))

	m.teardown(room)

	_, ok := m.get("GONE01")
	assert.False(t, ok)
	assert.Equal(t, PhaseEnded, room.phase)

	msgs := drain(member)
	var ended bool
	for _, msg := range msgs {
		if _, ok := msg.(EndedMessage); ok {
			ended = true
		}
	}
	assert.True(t, ended, "members should be told the game ended")

	// Timers armed before teardown must stay dead.
	clock.advance(time.Minute)
	assert.Equal(t, 0, room.ix)
}

func TestReaperEvictsIdleRooms(t *testing.T) {
	clock := newManualScheduler()
	m := newRoomManager(&Config{sessionTimeout: 40 * time.Second}, clock)

	room := newRoom("IDLE01", "Pack", testQuestions(2), 30, 5*time.Second, nil, true, "h1", clock)
	require.NoError(t, m.register(room))
	member := addTestPlayer(room, "p1", "Alice")
	require.NoError(t, room.start("h1"))

	// Sweeps at 20s and 40s leave the room alone; nobody acts after the
	// start, so the sweep at 60s claims it mid-game.
	clock.advance(20 * time.Second)
	_, ok := m.get("IDLE01")
	require.True(t, ok)

	clock.advance(20 * time.Second)
	_, ok = m.get("IDLE01")
	require.True(t, ok)

	clock.advance(20 * time.Second)

	_, ok = m.get("IDLE01")
	assert.False(t, ok, "idle room should be evicted")
	assert.Equal(t, PhaseEnded, room.phase)

	var ended bool
	for _, msg := range drain(member) {
		if _, ok := msg.(EndedMessage); ok {
			ended = true
		}
	}
	assert.True(t, ended, "members should be told the game ended")

	// Timers armed before the reap must stay dead.
	ix := room.ix
	clock.advance(time.Minute)
	assert.Equal(t, ix, room.ix)
	assert.Equal(t, PhaseEnded, room.phase)
}

func TestActiveRoomsSurviveReaperSweeps(t *testing.T) {
	clock := newManualScheduler()
	m := newRoomManager(&Config{sessionTimeout: 40 * time.Second}, clock)

	room := newRoom("BUSY01", "Pack", testQuestions(8), 30, 5*time.Second, nil, true, "h1", clock)
	require.NoError(t, m.register(room))
	addTestPlayer(room, "p1", "Alice")
	require.NoError(t, room.start("h1"))

	// Keep answering so lastActive stays fresh across sweeps.
	for i := 0; i < 4; i++ {
		clock.advance(15 * time.Second)
		_, err := room.submitAnswer("p1", 1)
		require.NoError(t, err)
		_, err = room.advance("h1")
		require.NoError(t, err)
	}

	_, ok := m.get("BUSY01")
	assert.True(t, ok, "active room must not be reaped")
}

func TestHostDisconnectTearsDownRoom(t *testing.T) {
	m, clock := newTestManager()
	cfg := &Config{}

	host := &Client{session: "h1", send: make(chan any, 64)}
	m.addClient(host)

	room := newRoom("HOSTGO", "Pack", testQuestions(2), 30, 5*time.Second, nil, true, host.session, clock)
	require.NoError(t, m.register(room))
	room.addMember(host)
	host.room = room

	player := addTestPlayer(room, "p1", "Alice")

	m.disconnect(cfg, host)

	_, ok := m.get("HOSTGO")
	assert.False(t, ok, "host departure must evict the room")

	var ended bool
	for _, msg := range drain(player) {
		if _, ok := msg.(EndedMessage); ok {
			ended = true
		}
	}
	assert.True(t, ended)
}

func TestPlayerDisconnectOnlyRemovesPlayer(t *testing.T) {
	m, clock := newTestManager()
	cfg := &Config{}

	room := newRoom("STAYUP", "Pack", testQuestions(2), 30, 5*time.Second, nil, true, "h1", clock)
	require.NoError(t, m.register(room))

	player := addTestPlayer(room, "p1", "Alice")
	player.room = room
	addTestPlayer(room, "p2", "Bob")
	require.NoError(t, room.start("h1"))

	m.disconnect(cfg, player)

	got, ok := m.get("STAYUP")
	require.True(t, ok, "room must survive a player departure")
	assert.Equal(t, PhaseQuestion, got.phase)
	assert.NotContains(t, got.players, "p1")
	assert.Contains(t, got.players, "p2")
}
