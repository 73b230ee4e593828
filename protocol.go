/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import "encoding/json"

// Client → server message types.
const (
	actionJoin        = "join"
	actionStartRound  = "startRound"
	actionNextRound   = "nextRound"
	actionSubmitGuess = "submitGuess"
	actionResetGame   = "resetGame"
	actionHardReset   = "hardReset"
)

// Server → client event types.
const (
	eventGameState          = "gameState"
	eventPlayersUpdated     = "playersUpdated"
	eventRoundStarted       = "roundStarted"
	eventGuessSubmitted     = "guessSubmitted"
	eventGameReset          = "gameReset"
	eventHardReset          = "hardReset"
	eventLeaderboardUpdated = "leaderboardUpdated"
)

// ClientMessage is the envelope read from a websocket. Data is decoded
// according to Type once the hub picks it up.
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type JoinData struct {
	Name string `json:"name"`
}

type RoundData struct {
	Row      int    `json:"row"`
	Column   int    `json:"column"`
	Age      int    `json:"age"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type GuessData struct {
	Guess int `json:"guess"`
}

// Event is the envelope written to a websocket.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// GuessSubmittedData is sent only to the admin. Score is what this
// submission earned, not the running total.
type GuessSubmittedData struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Guess      int    `json:"guess"`
	Score      int    `json:"score"`
	IsCorrect  bool   `json:"isCorrect"`
}

// Delivery pairs an event with its audience. An empty To means every
// live connection.
type Delivery struct {
	To    string
	Event Event
}

func toAll(eventType string, data any) Delivery {
	return Delivery{Event: Event{Type: eventType, Data: data}}
}

func toConn(id, eventType string, data any) Delivery {
	return Delivery{To: id, Event: Event{Type: eventType, Data: data}}
}

// decodeData unmarshals an optional payload. A missing payload leaves v zeroed.
func decodeData(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}
