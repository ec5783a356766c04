package messages

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wricardo/wordle-rooms/game/engine"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeError is returned for payloads that cannot become an Inbound.
// The transport answers it with an ERROR envelope and then closes the
// connection with a policy-violation status carrying Reason.
type DecodeError struct {
	// Kind is the message kind as sent, possibly empty.
	Kind Kind
	// Fields lists missing or mistyped fields by their wire name.
	Fields []string
	err    error
}

func (e *DecodeError) Error() string {
	return e.Reason()
}

func (e *DecodeError) Unwrap() error { return e.err }

// Reason is the short human-readable close reason.
func (e *DecodeError) Reason() string {
	switch {
	case errors.Is(e.err, engine.ErrUnknownMessageKind):
		return fmt.Sprintf("Unknown message kind: %q", string(e.Kind))
	case len(e.Fields) > 0:
		return fmt.Sprintf("Missing or invalid field(s): %s", strings.Join(e.Fields, ", "))
	default:
		return "Malformed message"
	}
}

func malformed(kind Kind, fields ...string) *DecodeError {
	return &DecodeError{Kind: kind, Fields: fields, err: engine.ErrMalformedMessage}
}

// Decode parses a client payload that arrived on connID.
func Decode(connID string, data []byte) (Inbound, error) {
	var envelope struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, malformed("")
	}

	var msg Inbound
	switch envelope.Type {
	case KindJoinRoom:
		var m JoinRoom
		if err := decodeInto(data, &m); err != nil {
			return nil, err.withKind(envelope.Type)
		}
		m.ConnectionID = connID
		msg = m
	case KindStartGame:
		var m StartGame
		if err := decodeInto(data, &m); err != nil {
			return nil, err.withKind(envelope.Type)
		}
		m.ConnectionID = connID
		msg = m
	case KindIncrementScore:
		var m IncrementScore
		if err := decodeInto(data, &m); err != nil {
			return nil, err.withKind(envelope.Type)
		}
		m.ConnectionID = connID
		msg = m
	case KindPlayerLeft:
		msg = NewPlayerLeft(connID)
	case "":
		return nil, malformed("", "type")
	default:
		return nil, &DecodeError{Kind: envelope.Type, err: engine.ErrUnknownMessageKind}
	}
	return msg, nil
}

func (e *DecodeError) withKind(k Kind) *DecodeError {
	e.Kind = k
	return e
}

func decodeInto(data []byte, v any) *DecodeError {
	if err := json.Unmarshal(data, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return malformed("", typeErr.Field)
		}
		return malformed("")
	}

	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return malformed("")
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return malformed("", fields...)
	}
	return nil
}
