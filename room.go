/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"sync"
)

// Room applies player actions to the session and works out who hears
// about them. Every method runs to completion under mu.
type Room struct {
	cfg *Config

	mu      sync.Mutex
	session *Session
}

func newRoom(cfg *Config) *Room {
	return &Room{
		cfg:     cfg,
		session: newSession(),
	}
}

func (r *Room) rosterLocked() []Delivery {
	return []Delivery{
		toAll(eventPlayersUpdated, r.session.players()),
		toAll(eventLeaderboardUpdated, r.session.leaderboard()),
	}
}

// mayControlLocked reports whether connID may run admin actions.
func (r *Room) mayControlLocked(connID string) bool {
	if !r.cfg.enforceAdmin {
		return true
	}
	p := r.session.playerByID(connID)
	return p != nil && p.IsAdmin
}

// Join binds connID to the player called name, creating it if needed.
// The last connection to join with a name owns it.
func (r *Room) Join(connID, name string) []Delivery {
	if name == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	isAdmin := isAdminName(name)

	if p := r.session.playerByName(name); p != nil {
		p.ID = connID
		p.IsAdmin = isAdmin
		logf(r.cfg, "GAMES: Player %q rejoined as %s", name, connID)
	} else {
		r.session.Players = append(r.session.Players, &Player{
			ID:      connID,
			Name:    name,
			IsAdmin: isAdmin,
		})
		logf(r.cfg, "GAMES: Player %q joined as %s (admin: %t)", name, connID, isAdmin)
	}

	out := []Delivery{toConn(connID, eventGameState, r.session.snapshot())}
	return append(out, r.rosterLocked()...)
}

// StartRound replaces the current round and clears all guesses.
func (r *Room) StartRound(connID string, round Round) []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.mayControlLocked(connID) {
		logf(r.cfg, "GAMES: Ignored round start from non-admin %s", connID)
		return nil
	}

	r.session.startRound(round)

	logf(r.cfg, "GAMES: Round started (row %d, column %d)", round.Row, round.Column)

	return []Delivery{toAll(eventRoundStarted, round)}
}

// NextRound behaves exactly like StartRound; clients label it differently.
func (r *Room) NextRound(connID string, round Round) []Delivery {
	return r.StartRound(connID, round)
}

// SubmitGuess scores a guess against the current round. Guesses outside
// an active round, or from connections that never joined, are dropped.
func (r *Room) SubmitGuess(connID string, guess int) []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.session.roundActive() {
		return nil
	}

	player := r.session.playerByID(connID)
	if player == nil {
		return nil
	}

	guessedBefore := r.session.submitted[player.Name]

	correct := guess == r.session.CurrentRound.Age

	points := 0
	if correct && !(r.cfg.scoreOnce && guessedBefore) {
		points = 1
	}

	player.Score += points
	r.session.Guesses[connID] = guess
	r.session.submitted[player.Name] = true

	logf(r.cfg, "GAMES: %q guessed %d (correct: %t, +%d)", player.Name, guess, correct, points)

	var out []Delivery
	if admin := r.session.admin(); admin != nil {
		out = append(out, toConn(admin.ID, eventGuessSubmitted, GuessSubmittedData{
			PlayerID:   connID,
			PlayerName: player.Name,
			Guess:      guess,
			Score:      points,
			IsCorrect:  correct,
		}))
	}

	return append(out, r.rosterLocked()...)
}

// ResetGame zeroes scores and ends the round, keeping everyone joined.
func (r *Room) ResetGame(connID string) []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.mayControlLocked(connID) {
		logf(r.cfg, "GAMES: Ignored reset from non-admin %s", connID)
		return nil
	}

	r.session.clearRound()

	logf(r.cfg, "GAMES: Game reset")

	return []Delivery{
		toAll(eventGameReset, nil),
		toAll(eventLeaderboardUpdated, r.session.leaderboard()),
	}
}

// HardReset discards the whole session, roster included.
func (r *Room) HardReset(connID string) []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.mayControlLocked(connID) {
		logf(r.cfg, "GAMES: Ignored hard reset from non-admin %s", connID)
		return nil
	}

	r.session = newSession()

	logf(r.cfg, "GAMES: Hard reset")

	return []Delivery{toAll(eventHardReset, nil)}
}

// Disconnect removes whichever players are bound to connID.
func (r *Room) Disconnect(connID string) []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n := r.session.removeByID(connID); n > 0 {
		logf(r.cfg, "GAMES: Removed %d player(s) for %s", n, connID)
	}

	return r.rosterLocked()
}

// Snapshot returns a copy of the current session.
func (r *Room) Snapshot() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.session.snapshot()
}

// IsAdmin reports whether connID is currently bound to an admin player.
func (r *Room) IsAdmin(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.session.playerByID(connID)
	return p != nil && p.IsAdmin
}
