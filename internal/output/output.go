// Package output encodes pixel colors into protocol-specific datagrams
// and sends them to lighting controllers over UDP.
package output

import (
	"errors"
	"fmt"
)

// ErrEncoding indicates a body/index-buffer length mismatch during encode.
// An encode failure aborts only that packet for that tick.
var ErrEncoding = errors.New("protocol encoding error")

// Unmapped is the index-buffer sentinel for a channel group that has no
// backing point. Encoders write (0, 0, 0) for it instead of reading the
// color buffer.
const Unmapped int32 = -1

// Protocol identifies the wire protocol of a packet spec.
type Protocol int

const (
	ProtocolNone Protocol = iota
	ProtocolArtNet
	ProtocolSACN
	ProtocolOPC
	ProtocolDDP
	ProtocolKinet
)

// String returns the protocol's config/display name.
func (p Protocol) String() string {
	switch p {
	case ProtocolNone:
		return "none"
	case ProtocolArtNet:
		return "artnet"
	case ProtocolSACN:
		return "sacn"
	case ProtocolOPC:
		return "opc"
	case ProtocolDDP:
		return "ddp"
	case ProtocolKinet:
		return "kinet"
	}
	return fmt.Sprintf("protocol(%d)", int(p))
}

// ParseProtocol converts a config name into a Protocol.
func ParseProtocol(s string) (Protocol, error) {
	switch s {
	case "", "none":
		return ProtocolNone, nil
	case "artnet":
		return ProtocolArtNet, nil
	case "sacn", "e131":
		return ProtocolSACN, nil
	case "opc":
		return ProtocolOPC, nil
	case "ddp":
		return ProtocolDDP, nil
	case "kinet":
		return ProtocolKinet, nil
	}
	return ProtocolNone, fmt.Errorf("unknown protocol %q", s)
}

// DefaultPort returns the protocol's default UDP port.
func (p Protocol) DefaultPort() int {
	switch p {
	case ProtocolArtNet:
		return ArtNetPort
	case ProtocolSACN:
		return SACNPort
	case ProtocolOPC:
		return OPCPort
	case ProtocolDDP:
		return DDPPort
	case ProtocolKinet:
		return KinetPort
	}
	return 0
}

// ByteOrder is the order color channels are written to the wire.
type ByteOrder int

const (
	RGB ByteOrder = iota
	RBG
	GRB
	GBR
	BRG
	BGR
)

// offsets returns the byte offset of the red, green and blue channels
// within one channel group.
func (o ByteOrder) offsets() (r, g, b int) {
	switch o {
	case RBG:
		return 0, 2, 1
	case GRB:
		return 1, 0, 2
	case GBR:
		return 2, 0, 1
	case BRG:
		return 1, 2, 0
	case BGR:
		return 2, 1, 0
	default: // RGB
		return 0, 1, 2
	}
}

// IndexBuffer supplies the global point indices a packet spec encodes.
// Implementations must return a consistent snapshot on every call; the
// fixture layer swaps snapshots atomically across reindexing.
type IndexBuffer interface {
	Indices() []int32
}

// StaticIndexBuffer is a fixed index buffer.
type StaticIndexBuffer []int32

// Indices returns the buffer itself.
func (b StaticIndexBuffer) Indices() []int32 { return b }
