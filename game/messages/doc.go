// Package messages defines the JSON wire schema spoken over the room
// WebSocket.
//
// Inbound messages form a closed set implementing Inbound. Decode reads
// the "type" discriminator, unmarshals the matching variant and validates
// its required fields with go-playground/validator. Failures come back as
// *DecodeError, which wraps either engine.ErrMalformedMessage or
// engine.ErrUnknownMessageKind and names the offending fields or kind.
//
// Outbound messages share one flat envelope, {type, ...payload}, built by
// the constructors in outbound.go.
package messages
