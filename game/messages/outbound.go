package messages

import (
	"encoding/json"

	"github.com/wricardo/wordle-rooms/game/engine"
)

// Type is the outbound discriminator.
type Type string

const (
	TypePlayerJoined       Type = "PLAYER_JOINED"
	TypePlayerSet          Type = "PLAYER_SET"
	TypePlayerMovedForward Type = "PLAYER_MOVED_FORWARD"
	TypeGameCompleted      Type = "GAME_COMPLETED"
	TypePlayerLeft         Type = "PLAYER_LEFT"
	TypeScoreUpdated       Type = "SCORE_UPDATED"
	TypeGameOver           Type = "GAME_OVER"
	TypeGameInProgress     Type = "GAME_IN_PROGRESS"
	TypeError              Type = "ERROR"
)

// Outbound is the flat envelope pushed to clients: {type, ...payload}.
type Outbound struct {
	Type      Type             `json:"type"`
	Name      string           `json:"name,omitempty"`
	PlayerID  string           `json:"playerId,omitempty"`
	Game      *engine.Snapshot `json:"game,omitempty"`
	Message   string           `json:"message,omitempty"`
	ErrorType engine.ErrorKind `json:"errorType,omitempty"`
}

// Encode serializes the envelope.
func (o Outbound) Encode() ([]byte, error) {
	return json.Marshal(o)
}

func PlayerJoined(name string, game engine.Snapshot) Outbound {
	return Outbound{Type: TypePlayerJoined, Name: name, Game: &game}
}

func PlayerSet(playerID string) Outbound {
	return Outbound{Type: TypePlayerSet, PlayerID: playerID}
}

func PlayerMovedForward(name string, game engine.Snapshot) Outbound {
	return Outbound{Type: TypePlayerMovedForward, Name: name, Game: &game}
}

func GameCompleted(game engine.Snapshot) Outbound {
	return Outbound{Type: TypeGameCompleted, Game: &game}
}

func PlayerLeftNotice(name string, game engine.Snapshot) Outbound {
	return Outbound{Type: TypePlayerLeft, Name: name, Game: &game}
}

func ScoreUpdated(name string, game engine.Snapshot) Outbound {
	return Outbound{Type: TypeScoreUpdated, Name: name, Game: &game}
}

func GameOver() Outbound {
	return Outbound{Type: TypeGameOver, Message: "game is already over"}
}

func GameInProgress() Outbound {
	return Outbound{Type: TypeGameInProgress, Message: "game is already in progress"}
}

// Error converts err into an ERROR envelope. Internal failures carry a
// generic message only.
func Error(err error) Outbound {
	return Outbound{
		Type:      TypeError,
		Message:   engine.PublicMessage(err),
		ErrorType: engine.KindOf(err),
	}
}
