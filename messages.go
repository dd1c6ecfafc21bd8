package main

import "time"

// Messages coming from clients
type ClientMessage struct {
	Type           string `json:"type"`                      // "create", "start", "next", "join", "answer"
	Code           string `json:"code,omitempty"`            // start / next / join / answer
	Pack           string `json:"pack,omitempty"`            // create
	DurationSec    int    `json:"duration_sec,omitempty"`    // create
	TotalQuestions int    `json:"total_questions,omitempty"` // create
	Theme          string `json:"theme,omitempty"`           // create
	Public         *bool  `json:"public,omitempty"`          // create
	Name           string `json:"name,omitempty"`            // join
	Avatar         string `json:"avatar,omitempty"`          // join
	ChoiceIndex    *int   `json:"choice_index,omitempty"`    // answer
}

// CreateResultMessage answers a "create" request on the issuing connection.
type CreateResultMessage struct {
	Type        string `json:"type"` // "create_result"
	OK          bool   `json:"ok"`
	Code        string `json:"code,omitempty"`
	Title       string `json:"title,omitempty"`
	Count       int    `json:"count,omitempty"`
	DurationSec int    `json:"duration_sec,omitempty"`
	Theme       string `json:"theme,omitempty"`
	Error       string `json:"error,omitempty"`
}

// ActionResultMessage answers host control actions ("start", "next").
type ActionResultMessage struct {
	Type  string `json:"type"` // "start_result" or "next_result"
	OK    bool   `json:"ok"`
	Ended bool   `json:"ended,omitempty"`
	Error string `json:"error,omitempty"`
}

type RoomSummary struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// JoinResultMessage answers a "join" request on the issuing connection.
type JoinResultMessage struct {
	Type  string       `json:"type"` // "join_result"
	OK    bool         `json:"ok"`
	Room  *RoomSummary `json:"room,omitempty"`
	Theme string       `json:"theme,omitempty"`
	Error string       `json:"error,omitempty"`
}

// AnswerResultMessage returns the immediate correctness cue to the one
// player who answered, ahead of the broadcast reveal.
type AnswerResultMessage struct {
	Type    string `json:"type"` // "answer_result"
	OK      bool   `json:"ok"`
	Correct bool   `json:"correct"`
	Error   string `json:"error,omitempty"`
}

type PlayerState struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Score  int    `json:"score"`
	Streak int    `json:"streak"`
}

type ThemeState struct {
	Name    string         `json:"name"`
	Vars    map[string]any `json:"vars"`
	Effects map[string]any `json:"effects"`
}

// RoomStateMessage is the full-state broadcast sent to all room members
// on every visible change. EndsAt is unix milliseconds, zero outside the
// question phase.
type RoomStateMessage struct {
	Type        string        `json:"type"` // "room_update"
	Code        string        `json:"code"`
	Title       string        `json:"title"`
	Phase       string        `json:"phase"`
	Ix          int           `json:"ix"`
	Total       int           `json:"total"`
	DurationSec int           `json:"duration_sec"`
	EndsAt      int64         `json:"ends_at"`
	Players     []PlayerState `json:"players"`
	Theme       *ThemeState   `json:"theme,omitempty"`
}

// QuestionView is the client-safe projection of a Question; the correct
// index is only ever disclosed by the reveal broadcast.
type QuestionView struct {
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
}

type QuestionMessage struct {
	Type     string       `json:"type"` // "question_new"
	Ix       int          `json:"ix"`
	Total    int          `json:"total"`
	Question QuestionView `json:"question"`
}

type RevealMessage struct {
	Type         string  `json:"type"` // "question_reveal"
	CorrectIndex int     `json:"correct_index"`
	Winner       *string `json:"winner"` // nil when nobody answered correctly
}

type EndedMessage struct {
	Type string `json:"type"` // "game_ended"
}

// PublicRoom is one entry in the discovery listing of joinable rooms.
type PublicRoom struct {
	Code        string    `json:"code"`
	Title       string    `json:"title"`
	PlayerCount int       `json:"player_count"`
	Theme       string    `json:"theme"`
	CreatedAt   time.Time `json:"created_at"`
}

type RoomListMessage struct {
	Type  string       `json:"type"` // "room_list"
	Rooms []PublicRoom `json:"rooms"`
}
