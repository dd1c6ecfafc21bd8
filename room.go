// QuickQuiz room lifecycle.
//
// A room is one quiz session, identified by a short join code. The
// connection that creates a room becomes its host; everyone else joins as
// a player. The host paces the game (start, next), players race to answer.
//
// Lifecycle: lobby -> question -> reveal -> question ... -> ended.
// A question closes on the first correct answer, when every present player
// has answered, or when its timer fires. A revealed question auto-advances
// after a grace period unless the host advances it first.
//
// Every mutation of one room, timer callbacks included, is serialized by
// the room mutex. Timer callbacks capture the question index they were
// armed for and re-check both phase and index under the lock, so a stale
// timer that loses the cancellation race acts on nothing.

package main

import (
	"sort"
	"sync"
	"time"
)

const (
	PhaseLobby    = "lobby"
	PhaseQuestion = "question"
	PhaseReveal   = "reveal"
	PhaseEnded    = "ended"

	minQuestionSeconds = 5
	maxQuestionSeconds = 120
)

// Player holds one participant's session-scoped record.
type Player struct {
	Name   string
	Avatar string
	Score  int
	Streak int

	// answered is scoped to lastQ; a player has answered the active
	// question iff answered && lastQ == room.ix.
	answered bool
	lastQ    int
}

type Room struct {
	mu sync.Mutex

	code        string
	title       string
	items       []Question
	ix          int
	phase       string
	locked      bool
	endsAt      time.Time
	durationSec int
	revealDelay time.Duration

	players map[string]*Player // session ID -> player
	members map[*Client]bool   // connected clients, host included

	hostSession string
	theme       *Theme
	public      bool
	createdAt   time.Time
	lastActive  time.Time

	clock         scheduler
	questionTimer stopper
	revealTimer   stopper
}

func newRoom(code, title string, items []Question, durationSec int, revealDelay time.Duration, theme *Theme, public bool, hostSession string, clock scheduler) *Room {
	now := clock.Now()
	return &Room{
		code:        code,
		title:       title,
		items:       items,
		ix:          -1,
		phase:       PhaseLobby,
		durationSec: durationSec,
		revealDelay: revealDelay,
		players:     make(map[string]*Player),
		members:     make(map[*Client]bool),
		hostSession: hostSession,
		theme:       theme,
		public:      public,
		createdAt:   now,
		lastActive:  now,
		clock:       clock,
	}
}

func (r *Room) isHost(session string) bool {
	return session == r.hostSession
}

func (r *Room) addMember(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.members[c] = true
}

// join registers a player for this connection. Joining mid-game is
// allowed; the new player starts at zero with nothing answered. An
// ended room takes no new players.
func (r *Room) join(c *Client, name, avatar string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase == PhaseEnded {
		return ErrInvalidPhase
	}

	r.lastActive = r.clock.Now()

	if name == "" {
		name = "Player"
	}
	if avatar == "" {
		avatar = "😀"
	}

	r.members[c] = true
	r.players[c.session] = &Player{
		Name:   truncate(name, maxNameRunes),
		Avatar: truncate(avatar, maxAvatarRunes),
		lastQ:  -1,
	}

	r.broadcastStateLocked()

	return nil
}

// leave removes a departing non-host connection. Player departure only
// shrinks the scoreboard; it never changes phase, even if the departed
// player was the last one yet to answer.
func (r *Room) leave(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[c]; ok {
		delete(r.members, c)
	}

	if _, ok := r.players[c.session]; ok {
		delete(r.players, c.session)
		r.lastActive = r.clock.Now()
		r.broadcastStateLocked()
	}
}

// start opens the first question. Host only, lobby only.
func (r *Room) start(session string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isHost(session) {
		return ErrNotHost
	}
	if r.phase != PhaseLobby {
		return ErrInvalidPhase
	}

	r.lastActive = r.clock.Now()
	r.ix = 0
	r.openQuestionLocked()

	return nil
}

// advance moves to the next question, or ends the game past the last one.
// Host only. Legal from question as well as reveal, so a host can skip a
// question outright.
func (r *Room) advance(session string) (ended bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isHost(session) {
		return false, ErrNotHost
	}
	if r.phase != PhaseQuestion && r.phase != PhaseReveal {
		return false, ErrInvalidPhase
	}

	r.lastActive = r.clock.Now()

	return r.advanceLocked(), nil
}

// submitAnswer arbitrates one player's single attempt at the active
// question. The first correct answer wins the reveal; a wrong answer
// costs a point, and the last wrong answer closes the question with no
// winner. The returned flag feeds the immediate cue to the caller.
func (r *Room) submitAnswer(session string, choiceIndex int) (correct bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, ok := r.players[session]
	if !ok {
		return false, ErrPlayerNotFound
	}

	if r.phase != PhaseQuestion || r.locked {
		return false, ErrPhaseClosed
	}

	if player.answered && player.lastQ == r.ix {
		return false, ErrAlreadyAnswered
	}

	question := r.items[r.ix]
	if choiceIndex < 0 || choiceIndex >= len(question.Choices) {
		return false, ErrBadChoice
	}

	r.lastActive = r.clock.Now()

	player.answered = true
	player.lastQ = r.ix

	points, streak, correct := scoreAnswer(question, choiceIndex, player.Streak)
	player.Score += points
	player.Streak = streak

	if correct {
		winner := player.Name
		r.revealLocked(&winner)
		return true, nil
	}

	r.broadcastStateLocked()

	if r.allAnsweredLocked() {
		r.revealLocked(nil)
	}

	return false, nil
}

// shutdown tears the room down: timers canceled, members notified and
// disconnected. The registry removes the room separately.
func (r *Room) shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopTimersLocked()
	r.phase = PhaseEnded
	r.locked = true
	r.endsAt = time.Time{}

	r.broadcastLocked(EndedMessage{Type: "game_ended"})

	for c := range r.members {
		delete(r.members, c)
		c.closeSend()
	}
}

func (r *Room) broadcastState() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.broadcastStateLocked()
}

// timeUp is the question timer callback for question index ix.
func (r *Room) timeUp(ix int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseQuestion || r.ix != ix {
		return
	}

	r.revealLocked(nil)
}

// autoAdvance is the reveal timer callback for question index ix.
func (r *Room) autoAdvance(ix int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseReveal || r.ix != ix {
		return
	}

	r.advanceLocked()
}

func (r *Room) advanceLocked() (ended bool) {
	r.stopTimersLocked()

	// A host skipping straight past an open question still counts it as
	// missed for everyone who had not answered.
	if r.phase == PhaseQuestion {
		r.resetMissedStreaksLocked()
	}

	r.ix++

	if r.ix >= len(r.items) {
		r.phase = PhaseEnded
		r.locked = true
		r.endsAt = time.Time{}
		r.broadcastLocked(EndedMessage{Type: "game_ended"})
		r.broadcastStateLocked()
		return true
	}

	r.openQuestionLocked()
	return false
}

func (r *Room) openQuestionLocked() {
	r.stopTimersLocked()
	r.phase = PhaseQuestion
	r.locked = false

	for _, p := range r.players {
		p.answered = false
		p.lastQ = r.ix
	}

	duration := time.Duration(r.durationSec) * time.Second
	r.endsAt = r.clock.Now().Add(duration)

	ix := r.ix
	r.questionTimer = r.clock.AfterFunc(duration, func() {
		r.timeUp(ix)
	})

	question := r.items[r.ix]
	r.broadcastLocked(QuestionMessage{
		Type:  "question_new",
		Ix:    r.ix,
		Total: len(r.items),
		Question: QuestionView{
			Prompt:  question.Prompt,
			Choices: question.Choices,
		},
	})
	r.broadcastStateLocked()
}

// resetMissedStreaksLocked breaks the streak of every player who never
// answered the active question.
func (r *Room) resetMissedStreaksLocked() {
	for _, p := range r.players {
		if !p.answered || p.lastQ != r.ix {
			p.Streak = 0
		}
	}
}

func (r *Room) revealLocked(winner *string) {
	r.stopTimersLocked()
	r.resetMissedStreaksLocked()
	r.phase = PhaseReveal
	r.locked = true
	r.endsAt = time.Time{}

	r.broadcastLocked(RevealMessage{
		Type:         "question_reveal",
		CorrectIndex: r.items[r.ix].AnswerIndex,
		Winner:       winner,
	})
	r.broadcastStateLocked()

	ix := r.ix
	r.revealTimer = r.clock.AfterFunc(r.revealDelay, func() {
		r.autoAdvance(ix)
	})
}

func (r *Room) stopTimersLocked() {
	if r.questionTimer != nil {
		r.questionTimer.Stop()
		r.questionTimer = nil
	}
	if r.revealTimer != nil {
		r.revealTimer.Stop()
		r.revealTimer = nil
	}
}

func (r *Room) allAnsweredLocked() bool {
	if len(r.players) == 0 {
		return false
	}
	for _, p := range r.players {
		if !p.answered || p.lastQ != r.ix {
			return false
		}
	}
	return true
}

func (r *Room) broadcastStateLocked() {
	r.broadcastLocked(r.statePayloadLocked())
}

func (r *Room) statePayloadLocked() RoomStateMessage {
	players := make([]PlayerState, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, PlayerState{
			Name:   p.Name,
			Avatar: p.Avatar,
			Score:  p.Score,
			Streak: p.Streak,
		})
	}

	sort.Slice(players, func(i, j int) bool {
		if players[i].Score != players[j].Score {
			return players[i].Score > players[j].Score
		}
		return players[i].Name < players[j].Name
	})

	var endsAt int64
	if r.phase == PhaseQuestion {
		endsAt = r.endsAt.UnixMilli()
	}

	var theme *ThemeState
	if r.theme != nil {
		theme = &ThemeState{
			Name:    r.theme.Name,
			Vars:    r.theme.Vars,
			Effects: r.theme.Effects,
		}
		if theme.Name == "" {
			theme.Name = "classic"
		}
	}

	return RoomStateMessage{
		Type:        "room_update",
		Code:        r.code,
		Title:       r.title,
		Phase:       r.phase,
		Ix:          r.ix,
		Total:       len(r.items),
		DurationSec: r.durationSec,
		EndsAt:      endsAt,
		Players:     players,
		Theme:       theme,
	}
}

func (r *Room) broadcastLocked(msg any) {
	for c := range r.members {
		if !c.trySend(msg) {
			delete(r.members, c)
			c.closeSend()
		}
	}
}

func (r *Room) lastActiveAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lastActive
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
