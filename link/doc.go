// Package link provides packet oriented request/reply communication over a byte
// stream medium such as a serial line or a socket.
//
// Outgoing payloads are framed with optional begin and end markers and a checksum.
// Incoming bytes are buffered and searched for frames, resynchronizing over noise and
// partially corrupt data. Each outstanding packet carries a wait time and a resend limit
// that the scheduler of the medium enforces.
//
// # Frames
//
// A frame is
//
//	[begin marker][payload][end marker]
//
// with the checksum bytes spliced in at a configurable position, by default after the
// end marker. Markers are 8, 16 or 32 bit scalars serialized in the configured byte
// order, or raw byte strings. The checksum is computed by package checksum over a
// configurable region of the frame without its checksum bytes.
//
// # Clients and Schedulers
//
// A Client is one logical endpoint. Clients assigned to media with the same name share
// one Scheduler, which must see an equal Format from every client. The scheduler runs a
// sender goroutine that transmits, resends and times out packets, and a receiver
// goroutine that hands completed packets back to their owners. A received frame is
// offered to the outstanding packets in send order; the first one whose owner accepts
// it as a reply completes. Frames nobody claims are broadcast to every client as
// notifications.
//
// # Resend Limit and Wait Time
//
// The resend limit of a packet is ResendNever (send once, expect nothing), 0 (expect
// one reply, never resend) or N (resend up to N times). The deadline of attempt k
// (counting from 0) is WaitTime*(k+1) after the previous transmission. ResendDefault
// and WaitDefault take the value of the client; ResendTransport and WaitTransport ask a
// medium implementing TransportDefaults.
//
// # Protocol Parsers
//
// Protocol specific behavior plugs in through a PacketParser implementing any of the
// capability interfaces (ReplyMatcher, Verifier, FrameParser, ...), or through the
// function fields of Hooks.
package link
