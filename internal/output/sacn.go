package output

// SACNPort is the default UDP port for E1.31 streaming ACN.
const SACNPort = 5568

const (
	sacnHeaderLength = 126
	sacnMaxChannels  = 512

	sacnRootOffset    = 16
	sacnFramingOffset = 38
	sacnDMPOffset     = 115
)

// acnPacketIdentifier is the fixed "ASC-E1.17" identifier in the root layer.
var acnPacketIdentifier = []byte{
	0x41, 0x53, 0x43, 0x2d, 0x45, 0x31, 0x2e, 0x31,
	0x37, 0x00, 0x00, 0x00,
}

// NewSACNPacket builds an E1.31 streaming ACN packet spec for one universe.
// cid is the sender's component identifier; a zero-value cid is permitted.
func NewSACNPacket(indices IndexBuffer, universe int, cid [16]byte) (*PacketSpec, error) {
	dataLength := len(indices.Indices()) * 3

	s, err := newPacketSpec(ProtocolSACN, indices, sacnHeaderLength, min(dataLength, sacnMaxChannels))
	if err != nil {
		return nil, err
	}
	packetLength := len(s.buf)

	// Root layer
	s.buf[0] = 0x00 // preamble size
	s.buf[1] = 0x10
	s.buf[2] = 0x00 // post-amble size
	s.buf[3] = 0x00
	copy(s.buf[4:16], acnPacketIdentifier)
	putFlagsAndLength(s.buf[16:], packetLength-sacnRootOffset)
	s.buf[18] = 0x00 // root vector: E1.31 data
	s.buf[19] = 0x00
	s.buf[20] = 0x00
	s.buf[21] = 0x04
	copy(s.buf[22:38], cid[:])

	// Framing layer
	putFlagsAndLength(s.buf[38:], packetLength-sacnFramingOffset)
	s.buf[40] = 0x00 // framing vector: DMX data
	s.buf[41] = 0x00
	s.buf[42] = 0x00
	s.buf[43] = 0x02
	copy(s.buf[44:108], []byte("lumigrid")) // source name, 64 bytes, zero padded
	s.buf[108] = 100                        // priority
	s.buf[109] = 0x00                       // sync address
	s.buf[110] = 0x00
	s.buf[111] = 0x00 // sequence
	s.buf[112] = 0x00 // options
	s.buf[113] = byte(universe >> 8)
	s.buf[114] = byte(universe)

	// DMP layer
	putFlagsAndLength(s.buf[115:], packetLength-sacnDMPOffset)
	s.buf[117] = 0x02 // DMP vector: set property
	s.buf[118] = 0xa1 // address/data type
	s.buf[119] = 0x00 // first property address
	s.buf[120] = 0x00
	s.buf[121] = 0x00 // address increment
	s.buf[122] = 0x01
	propertyCount := 1 + dataLength
	s.buf[123] = byte(propertyCount >> 8)
	s.buf[124] = byte(propertyCount)
	s.buf[125] = 0x00 // DMX start code

	return s, nil
}

// putFlagsAndLength writes an ACN flags+length field: top nibble 0x7,
// low 12 bits the layer length.
func putFlagsAndLength(b []byte, length int) {
	b[0] = byte(0x70 | (length>>8)&0x0f)
	b[1] = byte(length)
}
