package output

import (
	"fmt"
	"net"
)

// PacketSpec is one protocol-specific datagram bound to an index buffer.
// The header bytes are built once at construction; Encode fills the color
// body in place each tick. A PacketSpec is not safe for concurrent Encode
// calls, but a single output loop driving all specs is.
type PacketSpec struct {
	Protocol Protocol
	Order    ByteOrder

	host string
	port int

	indices IndexBuffer
	buf     []byte
	// dataOffset is where the channel body starts within buf.
	dataOffset int

	kinetVersion KinetVersion

	addr *net.UDPAddr
}

// newPacketSpec allocates the packet buffer for a fixed-length protocol
// body. bodyLength is the full body size in bytes; the index buffer may
// cover less, in which case the remainder stays zero.
func newPacketSpec(protocol Protocol, indices IndexBuffer, headerLength, bodyLength int) (*PacketSpec, error) {
	if n := len(indices.Indices()) * 3; n > bodyLength {
		return nil, fmt.Errorf("%s: index buffer needs %d body bytes, have %d: %w",
			protocol, n, bodyLength, ErrEncoding)
	}
	return &PacketSpec{
		Protocol:   protocol,
		port:       protocol.DefaultPort(),
		indices:    indices,
		buf:        make([]byte, headerLength+bodyLength),
		dataOffset: headerLength,
	}, nil
}

// SetDestination sets the destination host and UDP port. A port of zero
// keeps the protocol default.
func (s *PacketSpec) SetDestination(host string, port int) *PacketSpec {
	s.host = host
	if port > 0 {
		s.port = port
	}
	s.addr = nil
	return s
}

// SetByteOrder sets the channel order written to the wire.
func (s *PacketSpec) SetByteOrder(order ByteOrder) *PacketSpec {
	s.Order = order
	return s
}

// Destination returns the destination as host:port.
func (s *PacketSpec) Destination() string {
	return fmt.Sprintf("%s:%d", s.host, s.port)
}

// UDPAddr resolves and caches the destination address.
func (s *PacketSpec) UDPAddr() (*net.UDPAddr, error) {
	if s.addr != nil {
		return s.addr, nil
	}
	addr, err := net.ResolveUDPAddr("udp", s.Destination())
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", s.Destination(), err)
	}
	s.addr = addr
	return addr, nil
}

// Length returns the total packet length in bytes.
func (s *PacketSpec) Length() int {
	return len(s.buf)
}

// Indices returns the current index buffer contents.
func (s *PacketSpec) Indices() []int32 {
	return s.indices.Indices()
}

// Encode writes one channel group per index into the packet body and
// returns the wire-ready packet. Unmapped indices write (0, 0, 0). The
// returned slice aliases the spec's internal buffer and is only valid
// until the next Encode call.
func (s *PacketSpec) Encode(colors []uint32) ([]byte, error) {
	indices := s.indices.Indices()
	body := s.buf[s.dataOffset:]
	if need := len(indices) * 3; need > len(body) {
		return nil, fmt.Errorf("%s: %d indices exceed %d-byte body: %w",
			s.Protocol, len(indices), len(body), ErrEncoding)
	}

	or, og, ob := s.Order.offsets()
	pos := 0
	for _, idx := range indices {
		var c uint32
		if idx >= 0 {
			if int(idx) >= len(colors) {
				return nil, fmt.Errorf("%s: index %d exceeds color buffer size %d: %w",
					s.Protocol, idx, len(colors), ErrEncoding)
			}
			c = colors[idx]
		}
		body[pos+or] = byte(c >> 16)
		body[pos+og] = byte(c >> 8)
		body[pos+ob] = byte(c)
		pos += 3
	}
	return s.buf, nil
}
