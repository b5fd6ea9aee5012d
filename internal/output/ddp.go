package output

// DDPPort is the default UDP port for Distributed Display Protocol.
const DDPPort = 4048

const (
	ddpHeaderLength = 10

	ddpFlagsVersion1 = 0x40
	ddpFlagsPush     = 0x01

	ddpDataTypeRGB8   = 0x01
	ddpDefaultDisplay = 0x01
)

// NewDDPPacket builds a DDP push packet writing the index buffer's
// channels at the given byte offset of the destination display.
func NewDDPPacket(indices IndexBuffer, dataOffset int) (*PacketSpec, error) {
	dataLength := len(indices.Indices()) * 3

	s, err := newPacketSpec(ProtocolDDP, indices, ddpHeaderLength, dataLength)
	if err != nil {
		return nil, err
	}

	s.buf[0] = ddpFlagsVersion1 | ddpFlagsPush
	s.buf[1] = 0x00 // sequence, unused
	s.buf[2] = ddpDataTypeRGB8
	s.buf[3] = ddpDefaultDisplay

	// Data offset, big-endian
	s.buf[4] = byte(dataOffset >> 24)
	s.buf[5] = byte(dataOffset >> 16)
	s.buf[6] = byte(dataOffset >> 8)
	s.buf[7] = byte(dataOffset)

	// Data length, big-endian
	s.buf[8] = byte(dataLength >> 8)
	s.buf[9] = byte(dataLength)

	return s, nil
}
