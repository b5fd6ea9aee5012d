package output

import (
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/lumigrid/lumigrid/internal/logger"
)

// Sender transmits encoded packets over UDP. Transmission is
// fire-and-forget: an encode or send failure is logged and dropped, and
// never blocks output for sibling packet specs or subsequent ticks.
type Sender struct {
	conn *net.UDPConn
	log  *zap.Logger
}

// NewSender opens the shared UDP socket. An empty bind uses an
// ephemeral port on all interfaces.
func NewSender(bind string) (*Sender, error) {
	laddr := &net.UDPAddr{}
	if bind != "" {
		var err error
		laddr, err = net.ResolveUDPAddr("udp", bind)
		if err != nil {
			return nil, fmt.Errorf("resolving bind address %q: %w", bind, err)
		}
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("opening output socket: %w", err)
	}
	return &Sender{
		conn: conn,
		log:  logger.Named("output"),
	}, nil
}

// Send encodes the spec against the color buffer and transmits it.
// Returns whether the packet was sent; failures are logged, not returned.
func (s *Sender) Send(spec *PacketSpec, colors []uint32) bool {
	packet, err := spec.Encode(colors)
	if err != nil {
		s.log.Warn("packet encode failed, dropping",
			zap.String("protocol", spec.Protocol.String()),
			zap.String("dest", spec.Destination()),
			zap.Error(err))
		return false
	}

	addr, err := spec.UDPAddr()
	if err != nil {
		s.log.Warn("destination unresolvable, dropping",
			zap.String("protocol", spec.Protocol.String()),
			zap.String("dest", spec.Destination()),
			zap.Error(err))
		return false
	}

	if _, err := s.conn.WriteToUDP(packet, addr); err != nil {
		s.log.Warn("packet send failed, dropping",
			zap.String("protocol", spec.Protocol.String()),
			zap.String("dest", spec.Destination()),
			zap.Error(err))
		return false
	}
	return true
}

// Close releases the UDP socket.
func (s *Sender) Close() error {
	return s.conn.Close()
}
