// Package ipc implements the abstract-namespace SOCK_SEQPACKET endpoint
// that exposes a headless terminal's screen and history contents to a
// client utility ("IPC wire format").
package ipc

import (
	"encoding/binary"
	"fmt"
)

// Opcode is the 2-byte little-endian message a client sends to open a
// request.
type Opcode uint16

const (
	// OpSnapshotHistory stores a snapshot of the current terminal
	// buffer to be retrieved later via OpGetSnapshot. No data reply.
	OpSnapshotHistory Opcode = 1
	// OpGetHistory replies with the current buffer (including
	// scrollback) as UTF-8 text.
	OpGetHistory Opcode = 2
	// OpGetSnapshot replies with the buffer captured by the most
	// recent OpSnapshotHistory.
	OpGetSnapshot Opcode = 3
	// OpPing triggers an identical reply, used to test the connection.
	OpPing Opcode = 4
	// OpGetCwd replies with the working directory of the foreground
	// child process.
	OpGetCwd Opcode = 5
	// OpSetTheme changes the active theme; the opcode is followed by a
	// second SEQPACKET message holding a null-terminated theme name.
	OpSetTheme Opcode = 6
)

func (o Opcode) String() string {
	switch o {
	case OpSnapshotHistory:
		return "SNAPSHOT_HISTORY"
	case OpGetHistory:
		return "GET_HISTORY"
	case OpGetSnapshot:
		return "GET_SNAPSHOT"
	case OpPing:
		return "PING"
	case OpGetCwd:
		return "GET_CWD"
	case OpSetTheme:
		return "SET_THEME"
	default:
		return fmt.Sprintf("Opcode(%d)", uint16(o))
	}
}

// Status is the 4-byte reply the server sends before any data, mirroring
// a process exit-status encoding (0 success, nonzero failure).
type Status int32

const (
	StatusOK    Status = 0
	StatusError Status = 1
)

// opcodeSize is the wire size of a Message opcode.
const opcodeSize = 2

// statusSize is the wire size of a Status reply.
const statusSize = 4

// MaxChunkSize is the largest single data packet the server sends or the
// client should expect per SEQPACKET record.
const MaxChunkSize = 64 * 1024

// encodeOpcode renders an Opcode as its 2-byte little-endian wire form.
func encodeOpcode(op Opcode) []byte {
	b := make([]byte, opcodeSize)
	binary.LittleEndian.PutUint16(b, uint16(op))
	return b
}

// decodeOpcode parses a client's initial request message. Any length other
// than exactly opcodeSize is a protocol error ("short" / "too long
// (truncated)" IPC message).
func decodeOpcode(b []byte) (Opcode, error) {
	if len(b) != opcodeSize {
		return 0, fmt.Errorf("ipc: bad opcode message length %d, want %d", len(b), opcodeSize)
	}
	return Opcode(binary.LittleEndian.Uint16(b)), nil
}

// encodeStatus renders a Status as its 4-byte little-endian wire form.
func encodeStatus(s Status) []byte {
	b := make([]byte, statusSize)
	binary.LittleEndian.PutUint32(b, uint32(int32(s)))
	return b
}

// encodeThemeName renders a theme name as the null-terminated payload the
// client sends as a second SEQPACKET message following OpSetTheme.
func encodeThemeName(name string) []byte {
	b := make([]byte, 0, len(name)+1)
	b = append(b, name...)
	b = append(b, 0)
	return b
}

// decodeThemeName strips the trailing NUL (and anything after it, though a
// well-behaved client never sends more) from a SET_THEME payload message.
func decodeThemeName(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// chunks splits data into pieces no larger than MaxChunkSize, in send
// order. An empty input yields no chunks.
func chunks(data []byte) [][]byte {
	if len(data) == 0 {
		return nil
	}
	var out [][]byte
	for len(data) > 0 {
		n := len(data)
		if n > MaxChunkSize {
			n = MaxChunkSize
		}
		out = append(out, data[:n])
		data = data[n:]
	}
	return out
}
