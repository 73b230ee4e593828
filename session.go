/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"slices"
	"strings"
)

const (
	adminName       = "admin"
	leaderboardSize = 3
)

// Player is keyed by Name while connected; ID tracks the latest connection.
type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Score   int    `json:"score"`
	IsAdmin bool   `json:"isAdmin"`
}

type Round struct {
	Row      int    `json:"row"`
	Column   int    `json:"column"`
	Age      int    `json:"age"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Session is the authoritative game state for the room.
type Session struct {
	Players      []*Player      `json:"players"`
	CurrentRound *Round         `json:"currentRound"`
	GameStarted  bool           `json:"gameStarted"`
	Guesses      map[string]int `json:"guesses"`
	CurrentImage *string        `json:"currentImage"`

	// Names of players who have guessed in the current round. Keyed by
	// name so a takeover connection inherits the earlier submission.
	submitted map[string]bool
}

func newSession() *Session {
	return &Session{
		Players:   []*Player{},
		Guesses:   make(map[string]int),
		submitted: make(map[string]bool),
	}
}

func isAdminName(name string) bool {
	return strings.ToLower(name) == adminName
}

func (s *Session) playerByName(name string) *Player {
	for _, p := range s.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (s *Session) playerByID(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// admin returns the first admin in join order, if any.
func (s *Session) admin() *Player {
	for _, p := range s.Players {
		if p.IsAdmin {
			return p
		}
	}
	return nil
}

// removeByID drops every player bound to id and reports how many were removed.
func (s *Session) removeByID(id string) int {
	before := len(s.Players)
	s.Players = slices.DeleteFunc(s.Players, func(p *Player) bool {
		return p.ID == id
	})
	return before - len(s.Players)
}

func (s *Session) roundActive() bool {
	return s.GameStarted && s.CurrentRound != nil
}

func (s *Session) startRound(r Round) {
	s.CurrentRound = &r
	s.GameStarted = true
	s.Guesses = make(map[string]int)
	s.submitted = make(map[string]bool)

	s.CurrentImage = nil
	if r.ImageURL != "" {
		img := r.ImageURL
		s.CurrentImage = &img
	}
}

// clearRound resets scores and round state but keeps the roster.
func (s *Session) clearRound() {
	for _, p := range s.Players {
		p.Score = 0
	}
	s.CurrentRound = nil
	s.GameStarted = false
	s.Guesses = make(map[string]int)
	s.submitted = make(map[string]bool)
	s.CurrentImage = nil
}

func (s *Session) players() []Player {
	out := make([]Player, 0, len(s.Players))
	for _, p := range s.Players {
		out = append(out, *p)
	}
	return out
}

// leaderboard returns the top non-admin players by score. Ties keep join order.
func (s *Session) leaderboard() []Player {
	board := make([]Player, 0, len(s.Players))
	for _, p := range s.Players {
		if p.IsAdmin {
			continue
		}
		board = append(board, *p)
	}

	slices.SortStableFunc(board, func(a, b Player) int {
		return b.Score - a.Score
	})

	if len(board) > leaderboardSize {
		board = board[:leaderboardSize]
	}
	return board
}

// snapshot returns a deep copy safe to hand to other goroutines.
func (s *Session) snapshot() *Session {
	out := &Session{
		Players:     make([]*Player, 0, len(s.Players)),
		GameStarted: s.GameStarted,
		Guesses:     make(map[string]int, len(s.Guesses)),
		submitted:   make(map[string]bool, len(s.submitted)),
	}
	for _, p := range s.Players {
		cp := *p
		out.Players = append(out.Players, &cp)
	}
	if s.CurrentRound != nil {
		r := *s.CurrentRound
		out.CurrentRound = &r
	}
	for k, v := range s.Guesses {
		out.Guesses[k] = v
	}
	for k, v := range s.submitted {
		out.submitted[k] = v
	}
	if s.CurrentImage != nil {
		img := *s.CurrentImage
		out.CurrentImage = &img
	}
	return out
}
