// Package protocol implements the binary wire protocol spoken by the
// hotel's game servers.
//
// The protocol is a big-endian, length-prefixed frame stream over raw TCP.
// Every message on the wire is framed as:
//
//	┌────────────────────┬──────────────┬──────────────────────────┐
//	│ Total Length       │ Header ID    │ Payload                  │
//	│ (4 bytes, BE)      │ (2 bytes BE) │ (Length - 2 bytes)       │
//	└────────────────────┴──────────────┴──────────────────────────┘
//
// The length covers the header ID plus the payload, never itself. Once a
// session's stream cipher is established, the [header][payload] region is
// enciphered byte-wise; the length prefix always travels in the clear.
//
// # Encoding
//
// Payload primitives are fixed-width and big-endian:
//
//   - byte: 1 byte
//   - short: 2 bytes (uint16)
//   - integer: 4 bytes (int32)
//   - boolean: 1 byte, 0x00 or 0x01
//   - string: 2-byte length prefix + UTF-8 bytes
//   - float: rendered as a decimal string and wire-encoded as a string
//
// Encoder appends to a growable buffer; Decoder consumes from a cursor and
// fails with io.ErrUnexpectedEOF when fewer bytes remain than a read needs,
// or ErrMalformedString when a string's declared length overruns the buffer.
// Neither ever reads or writes a partial multi-byte value.
//
// # Frame reassembly
//
// TCP gives no guarantee that one send equals one receive. Reassembler
// accepts arbitrary chunks of newly arrived bytes and extracts as many
// complete frame regions as are available, in arrival order, leaving any
// trailing partial frame buffered for the next call. A declared length
// above the configured ceiling is rejected with ErrOversizedFrame before
// any buffering happens, defending against corrupt or hostile length
// fields.
package protocol
