/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventTypes(out []Delivery) []string {
	types := make([]string, 0, len(out))
	for _, d := range out {
		types = append(types, d.Event.Type)
	}
	return types
}

func findDelivery(t *testing.T, out []Delivery, eventType string) Delivery {
	t.Helper()

	for _, d := range out {
		if d.Event.Type == eventType {
			return d
		}
	}
	require.Failf(t, "missing delivery", "no %s event in %v", eventType, eventTypes(out))
	return Delivery{}
}

func playerNamed(s *Session, name string) *Player {
	return s.playerByName(name)
}

// setupRound joins an admin and Alice, then starts a round with age 30.
func setupRound(t *testing.T, cfg *Config) *Room {
	t.Helper()

	r := newRoom(cfg)
	r.Join("c-admin", "admin")
	r.Join("c-alice", "Alice")
	r.StartRound("c-admin", Round{Row: 3, Column: 4, Age: 30})

	return r
}

func TestJoin(t *testing.T) {
	r := newRoom(&Config{})

	out := r.Join("c1", "Alice")

	assert.Equal(t, []string{eventGameState, eventPlayersUpdated, eventLeaderboardUpdated}, eventTypes(out))
	assert.Equal(t, "c1", out[0].To)
	assert.Empty(t, out[1].To)
	assert.Empty(t, out[2].To)

	state, ok := out[0].Event.Data.(*Session)
	require.True(t, ok)
	require.Len(t, state.Players, 1)
	assert.Equal(t, Player{ID: "c1", Name: "Alice"}, *state.Players[0])

	assert.Equal(t, []Player{{ID: "c1", Name: "Alice"}}, out[1].Event.Data)
	assert.Equal(t, []Player{{ID: "c1", Name: "Alice"}}, out[2].Event.Data)
}

func TestJoinEmptyNameIgnored(t *testing.T) {
	r := newRoom(&Config{})

	assert.Nil(t, r.Join("c1", ""))
	assert.Empty(t, r.Snapshot().Players)
}

func TestJoinSameNameKeepsOneRecord(t *testing.T) {
	r := newRoom(&Config{})

	r.Join("c1", "Alice")
	r.StartRound("c1", Round{Age: 30})
	r.SubmitGuess("c1", 30)

	r.Join("c2", "Alice")
	r.Join("c3", "Alice")

	s := r.Snapshot()
	require.Len(t, s.Players, 1)
	assert.Equal(t, Player{ID: "c3", Name: "Alice", Score: 1}, *s.Players[0])
}

func TestJoinAdminRoleIsCaseInsensitive(t *testing.T) {
	r := newRoom(&Config{})

	r.Join("c1", "ADMIN")
	r.Join("c2", "Admin")
	r.Join("c3", "bob")

	s := r.Snapshot()
	require.Len(t, s.Players, 3)
	assert.True(t, s.Players[0].IsAdmin)
	assert.True(t, s.Players[1].IsAdmin)
	assert.False(t, s.Players[2].IsAdmin)

	board := s.leaderboard()
	require.Len(t, board, 1)
	assert.Equal(t, "bob", board[0].Name)
}

func TestCorrectGuessScores(t *testing.T) {
	r := setupRound(t, &Config{})

	out := r.SubmitGuess("c-alice", 30)

	assert.Equal(t, []string{eventGuessSubmitted, eventPlayersUpdated, eventLeaderboardUpdated}, eventTypes(out))

	notice := out[0]
	assert.Equal(t, "c-admin", notice.To)
	assert.Equal(t, GuessSubmittedData{
		PlayerID:   "c-alice",
		PlayerName: "Alice",
		Guess:      30,
		Score:      1,
		IsCorrect:  true,
	}, notice.Event.Data)

	s := r.Snapshot()
	assert.Equal(t, 1, playerNamed(s, "Alice").Score)
	assert.Equal(t, map[string]int{"c-alice": 30}, s.Guesses)
	assert.Equal(t, []Player{{ID: "c-alice", Name: "Alice", Score: 1}}, s.leaderboard())
	assert.Equal(t, []Player{{ID: "c-alice", Name: "Alice", Score: 1}}, findDelivery(t, out, eventLeaderboardUpdated).Event.Data)
}

func TestWrongGuessScoresNothing(t *testing.T) {
	r := setupRound(t, &Config{})

	out := r.SubmitGuess("c-alice", 25)

	assert.Equal(t, GuessSubmittedData{
		PlayerID:   "c-alice",
		PlayerName: "Alice",
		Guess:      25,
		Score:      0,
		IsCorrect:  false,
	}, findDelivery(t, out, eventGuessSubmitted).Event.Data)

	s := r.Snapshot()
	assert.Equal(t, 0, playerNamed(s, "Alice").Score)
	assert.Equal(t, []Player{{ID: "c-alice", Name: "Alice", Score: 0}}, s.leaderboard())
}

func TestGuessWithoutRoundIgnored(t *testing.T) {
	r := newRoom(&Config{})
	r.Join("c-alice", "Alice")

	assert.Nil(t, r.SubmitGuess("c-alice", 30))

	s := r.Snapshot()
	assert.Equal(t, 0, playerNamed(s, "Alice").Score)
	assert.Empty(t, s.Guesses)
}

func TestGuessFromUnknownConnectionIgnored(t *testing.T) {
	r := setupRound(t, &Config{})

	assert.Nil(t, r.SubmitGuess("c-stranger", 30))
	assert.Empty(t, r.Snapshot().Guesses)
}

func TestGuessWithoutAdminSkipsNotice(t *testing.T) {
	r := newRoom(&Config{})
	r.Join("c-alice", "Alice")
	r.StartRound("c-alice", Round{Age: 30})

	out := r.SubmitGuess("c-alice", 30)

	assert.Equal(t, []string{eventPlayersUpdated, eventLeaderboardUpdated}, eventTypes(out))
}

func TestRepeatedGuessesEachScore(t *testing.T) {
	r := setupRound(t, &Config{})

	r.SubmitGuess("c-alice", 30)
	r.SubmitGuess("c-alice", 30)
	r.SubmitGuess("c-alice", 12)

	s := r.Snapshot()
	assert.Equal(t, 2, playerNamed(s, "Alice").Score)
	assert.Equal(t, 12, s.Guesses["c-alice"])
}

func TestScoreOncePerRound(t *testing.T) {
	r := setupRound(t, &Config{scoreOnce: true})

	r.SubmitGuess("c-alice", 30)
	out := r.SubmitGuess("c-alice", 30)

	notice := findDelivery(t, out, eventGuessSubmitted).Event.Data.(GuessSubmittedData)
	assert.Equal(t, 0, notice.Score)
	assert.True(t, notice.IsCorrect)
	assert.Equal(t, 1, playerNamed(r.Snapshot(), "Alice").Score)

	r.NextRound("c-admin", Round{Age: 40})
	r.SubmitGuess("c-alice", 40)
	assert.Equal(t, 2, playerNamed(r.Snapshot(), "Alice").Score)
}

func TestScoreOnceWrongThenRight(t *testing.T) {
	r := setupRound(t, &Config{scoreOnce: true})

	r.SubmitGuess("c-alice", 10)
	r.SubmitGuess("c-alice", 30)

	assert.Equal(t, 0, playerNamed(r.Snapshot(), "Alice").Score)
}

func TestScoreOnceSurvivesTakeover(t *testing.T) {
	r := setupRound(t, &Config{scoreOnce: true})

	r.SubmitGuess("c-alice", 30)
	r.Join("c-alice-tab2", "Alice")
	out := r.SubmitGuess("c-alice-tab2", 30)

	notice := findDelivery(t, out, eventGuessSubmitted).Event.Data.(GuessSubmittedData)
	assert.Equal(t, 0, notice.Score)
	assert.Equal(t, 1, playerNamed(r.Snapshot(), "Alice").Score)
}

func TestScoreOnceClearedByReset(t *testing.T) {
	r := setupRound(t, &Config{scoreOnce: true})

	r.SubmitGuess("c-alice", 30)
	r.ResetGame("c-admin")
	r.StartRound("c-admin", Round{Age: 30})
	r.SubmitGuess("c-alice", 30)

	assert.Equal(t, 1, playerNamed(r.Snapshot(), "Alice").Score)
}

func TestStartRound(t *testing.T) {
	r := newRoom(&Config{})
	r.Join("c-admin", "admin")

	out := r.StartRound("c-admin", Round{Row: 3, Column: 4, Age: 30, ImageURL: "/uploads/a.png"})

	require.Len(t, out, 1)
	assert.Empty(t, out[0].To)
	assert.Equal(t, eventRoundStarted, out[0].Event.Type)
	assert.Equal(t, Round{Row: 3, Column: 4, Age: 30, ImageURL: "/uploads/a.png"}, out[0].Event.Data)

	s := r.Snapshot()
	assert.True(t, s.GameStarted)
	require.NotNil(t, s.CurrentImage)
	assert.Equal(t, "/uploads/a.png", *s.CurrentImage)
}

func TestNextRoundClearsGuessesKeepsScores(t *testing.T) {
	r := setupRound(t, &Config{})
	r.SubmitGuess("c-alice", 30)

	out := r.NextRound("c-admin", Round{Row: 1, Column: 1, Age: 50})

	assert.Equal(t, []string{eventRoundStarted}, eventTypes(out))

	s := r.Snapshot()
	assert.Empty(t, s.Guesses)
	assert.Equal(t, 1, playerNamed(s, "Alice").Score)
	assert.Equal(t, 50, s.CurrentRound.Age)
}

func TestResetGame(t *testing.T) {
	r := setupRound(t, &Config{})
	r.SubmitGuess("c-alice", 30)

	out := r.ResetGame("c-admin")

	assert.Equal(t, []string{eventGameReset, eventLeaderboardUpdated}, eventTypes(out))
	assert.Nil(t, out[0].Event.Data)
	assert.Equal(t, []Player{{ID: "c-alice", Name: "Alice"}}, out[1].Event.Data)

	s := r.Snapshot()
	assert.Nil(t, s.CurrentRound)
	assert.False(t, s.GameStarted)
	assert.Empty(t, s.Guesses)
	assert.Nil(t, s.CurrentImage)

	require.Len(t, s.Players, 2)
	assert.Equal(t, "c-admin", s.Players[0].ID)
	assert.Equal(t, "c-alice", s.Players[1].ID)
	assert.Equal(t, 0, playerNamed(s, "Alice").Score)

	assert.Nil(t, r.SubmitGuess("c-alice", 30))
}

func TestHardReset(t *testing.T) {
	r := setupRound(t, &Config{})
	r.SubmitGuess("c-alice", 30)

	out := r.HardReset("c-admin")

	require.Len(t, out, 1)
	assert.Equal(t, eventHardReset, out[0].Event.Type)
	assert.Empty(t, out[0].To)

	assert.Equal(t, newSession(), r.Snapshot())
}

func TestDisconnect(t *testing.T) {
	r := newRoom(&Config{})
	r.Join("c1", "Alice")
	r.Join("c2", "Bob")
	r.Join("c3", "Carol")

	out := r.Disconnect("c2")

	assert.Equal(t, []string{eventPlayersUpdated, eventLeaderboardUpdated}, eventTypes(out))
	assert.Equal(t, []Player{
		{ID: "c1", Name: "Alice"},
		{ID: "c3", Name: "Carol"},
	}, out[0].Event.Data)

	out = r.Disconnect("c-unknown")
	assert.Len(t, r.Snapshot().Players, 2)
	assert.Equal(t, []string{eventPlayersUpdated, eventLeaderboardUpdated}, eventTypes(out))
}

func TestDisconnectAfterTakeoverKeepsPlayer(t *testing.T) {
	r := newRoom(&Config{})
	r.Join("old", "Alice")
	r.Join("new", "Alice")

	r.Disconnect("old")

	s := r.Snapshot()
	require.Len(t, s.Players, 1)
	assert.Equal(t, "new", s.Players[0].ID)
}

func TestRejoinAfterDisconnectStartsFresh(t *testing.T) {
	r := setupRound(t, &Config{})
	r.SubmitGuess("c-alice", 30)

	r.Disconnect("c-alice")
	r.Join("c-alice-2", "Alice")

	assert.Equal(t, 0, playerNamed(r.Snapshot(), "Alice").Score)
}

func TestEnforceAdmin(t *testing.T) {
	r := newRoom(&Config{enforceAdmin: true})
	r.Join("c-admin", "Admin")
	r.Join("c-alice", "Alice")

	assert.Nil(t, r.StartRound("c-alice", Round{Age: 30}))
	assert.Nil(t, r.NextRound("c-stranger", Round{Age: 30}))
	assert.False(t, r.Snapshot().GameStarted)

	require.NotNil(t, r.StartRound("c-admin", Round{Age: 30}))
	r.SubmitGuess("c-alice", 30)

	assert.Nil(t, r.ResetGame("c-alice"))
	assert.Nil(t, r.HardReset("c-alice"))
	assert.Equal(t, 1, playerNamed(r.Snapshot(), "Alice").Score)

	require.NotNil(t, r.ResetGame("c-admin"))
	assert.Equal(t, 0, playerNamed(r.Snapshot(), "Alice").Score)

	require.NotNil(t, r.HardReset("c-admin"))
	assert.Empty(t, r.Snapshot().Players)
}

func TestGuessNoticeGoesToFirstAdmin(t *testing.T) {
	r := newRoom(&Config{})
	r.Join("c-admin", "admin")
	r.Join("c-admin2", "ADMIN")
	r.Join("c-alice", "Alice")
	r.StartRound("c-admin", Round{Age: 30})

	out := r.SubmitGuess("c-alice", 30)

	assert.Equal(t, "c-admin", findDelivery(t, out, eventGuessSubmitted).To)
}

func TestIsAdmin(t *testing.T) {
	r := newRoom(&Config{})
	r.Join("c-admin", "admin")
	r.Join("c-alice", "Alice")

	assert.True(t, r.IsAdmin("c-admin"))
	assert.False(t, r.IsAdmin("c-alice"))
	assert.False(t, r.IsAdmin("c-unknown"))
}
