// Package router turns inbound room messages into registry mutations and
// outbound fan-out.
//
// Each message kind has one handler, selected by an exhaustive type
// switch over messages.Inbound. Handlers take snapshots from the registry
// and only call the Sender after every room lock has been released.
// Errors and recovered panics are reported to the originating connection
// as an ERROR envelope; other connections never see them.
package router
