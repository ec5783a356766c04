package messages

// Kind is the inbound discriminator carried in the "type" field.
type Kind string

const (
	KindJoinRoom       Kind = "JOIN_ROOM"
	KindStartGame      Kind = "START_GAME"
	KindIncrementScore Kind = "INCREMENT_SCORE"
	KindPlayerLeft     Kind = "PLAYER_LEFT"

	// KindConnectionEstablished is raised by the transport when a
	// connection opens. Clients cannot send it.
	KindConnectionEstablished Kind = "CONNECTION_ESTABLISHED"
)

// Inbound is the closed set of messages the router handles. Every
// implementation lives in this package.
type Inbound interface {
	Kind() Kind
	// Origin is the connection id the message arrived on.
	Origin() string
	inbound()
}

// origin is embedded by every variant. The connection id is never read
// from the payload.
type origin struct {
	ConnectionID string `json:"-"`
}

func (o origin) Origin() string { return o.ConnectionID }
func (origin) inbound()         {}

// JoinRoom asks to seat the connection in a room.
type JoinRoom struct {
	origin
	RoomID     string `json:"roomId" validate:"required"`
	PlayerName string `json:"playerName" validate:"required"`
}

func (JoinRoom) Kind() Kind { return KindJoinRoom }

// StartGame moves a room to IN_PROGRESS.
type StartGame struct {
	origin
	RoomID string `json:"roomId" validate:"required"`
}

func (StartGame) Kind() Kind { return KindStartGame }

// IncrementScore reports the points earned in one round.
type IncrementScore struct {
	origin
	RoomID     string `json:"roomId" validate:"required"`
	PlayerName string `json:"playerName" validate:"required"`
	Score      *int   `json:"score" validate:"required,min=0"`
}

func (IncrementScore) Kind() Kind { return KindIncrementScore }

// Delta returns the score, zero when absent.
func (m IncrementScore) Delta() int {
	if m.Score == nil {
		return 0
	}
	return *m.Score
}

// PlayerLeft removes the connection from whatever room it is in.
type PlayerLeft struct {
	origin
}

func (PlayerLeft) Kind() Kind { return KindPlayerLeft }

// ConnectionEstablished acknowledges a freshly opened connection.
type ConnectionEstablished struct {
	origin
}

func (ConnectionEstablished) Kind() Kind { return KindConnectionEstablished }

// NewJoinRoom builds the implicit join raised when a connection opens.
func NewJoinRoom(connID, roomID, playerName string) JoinRoom {
	return JoinRoom{origin: origin{ConnectionID: connID}, RoomID: roomID, PlayerName: playerName}
}

func NewStartGame(connID, roomID string) StartGame {
	return StartGame{origin: origin{ConnectionID: connID}, RoomID: roomID}
}

func NewIncrementScore(connID, roomID, playerName string, score int) IncrementScore {
	return IncrementScore{
		origin:     origin{ConnectionID: connID},
		RoomID:     roomID,
		PlayerName: playerName,
		Score:      &score,
	}
}

func NewPlayerLeft(connID string) PlayerLeft {
	return PlayerLeft{origin: origin{ConnectionID: connID}}
}

func NewConnectionEstablished(connID string) ConnectionEstablished {
	return ConnectionEstablished{origin: origin{ConnectionID: connID}}
}
