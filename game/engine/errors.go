package engine

import "errors"

// ErrorKind is the client-visible classification of a failure. Its value is
// sent verbatim as the errorType field of an ERROR envelope.
type ErrorKind string

const (
	KindRoomNotFound         ErrorKind = "ROOM_NOT_FOUND"
	KindRoomFull             ErrorKind = "ROOM_FULL"
	KindPlayerNotFound       ErrorKind = "PLAYER_NOT_FOUND"
	KindInvalidState         ErrorKind = "INVALID_STATE"
	KindInvalidConfiguration ErrorKind = "INVALID_CONFIGURATION"
	KindUnknownMessageKind   ErrorKind = "UNKNOWN_MESSAGE_KIND"
	KindMalformedMessage     ErrorKind = "MALFORMED_MESSAGE"
	KindInternal             ErrorKind = "INTERNAL_ERROR"
)

var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomFull             = errors.New("room is full")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrInvalidState         = errors.New("invalid game state")
	ErrInvalidConfiguration = errors.New("invalid room configuration")
	ErrUnknownMessageKind   = errors.New("unknown message kind")
	ErrMalformedMessage     = errors.New("malformed message")
	ErrInternal             = errors.New("internal error")

	ErrNegativeScore = errors.New("score delta must not be negative")
	ErrEmptyName     = errors.New("player name must not be empty")
	ErrNameTooLong   = errors.New("player name too long")
)

var kinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrRoomNotFound, KindRoomNotFound},
	{ErrRoomFull, KindRoomFull},
	{ErrPlayerNotFound, KindPlayerNotFound},
	{ErrInvalidState, KindInvalidState},
	{ErrInvalidConfiguration, KindInvalidConfiguration},
	{ErrUnknownMessageKind, KindUnknownMessageKind},
	{ErrMalformedMessage, KindMalformedMessage},
	{ErrNegativeScore, KindMalformedMessage},
	{ErrEmptyName, KindMalformedMessage},
	{ErrNameTooLong, KindMalformedMessage},
	{ErrInternal, KindInternal},
}

// KindOf classifies err. Anything not wrapping a known sentinel is
// KindInternal.
func KindOf(err error) ErrorKind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// PublicMessage returns the text that may be shown to a client for err.
// Internal errors are collapsed to a generic message.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	if KindOf(err) == KindInternal {
		return ErrInternal.Error()
	}
	return err.Error()
}
