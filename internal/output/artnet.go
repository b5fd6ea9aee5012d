package output

// ArtNetPort is the fixed UDP port mandated by the Art-Net spec.
const ArtNetPort = 6454

const (
	artNetHeaderLength = 18
	artNetMaxChannels  = 512

	artNetOpDMX           = 0x5000
	artNetProtocolVersion = 14
)

// NewArtNetPacket builds an ArtDMX packet spec for one universe. The body
// length is the index buffer's channel count; universes carry at most 512
// channels (170 RGB points).
func NewArtNetPacket(indices IndexBuffer, universe int) (*PacketSpec, error) {
	dataLength := len(indices.Indices()) * 3

	s, err := newPacketSpec(ProtocolArtNet, indices, artNetHeaderLength, min(dataLength, artNetMaxChannels))
	if err != nil {
		return nil, err
	}

	copy(s.buf[0:8], []byte("Art-Net\x00"))

	// OpCode, little-endian
	s.buf[8] = byte(artNetOpDMX & 0xff)
	s.buf[9] = byte(artNetOpDMX >> 8)

	// Protocol version, big-endian
	s.buf[10] = 0x00
	s.buf[11] = artNetProtocolVersion

	// Sequence (0 = disabled) and physical port
	s.buf[12] = 0x00
	s.buf[13] = 0x00

	// Universe, little-endian
	s.buf[14] = byte(universe)
	s.buf[15] = byte(universe >> 8)

	// Data length, big-endian
	s.buf[16] = byte(dataLength >> 8)
	s.buf[17] = byte(dataLength)

	return s, nil
}
