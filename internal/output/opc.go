package output

// OPCPort is the default port for Open Pixel Control servers.
const OPCPort = 7890

const (
	opcHeaderLength = 4

	opcSetPixelColors = 0x00
)

// NewOPCPacket builds an Open Pixel Control set-pixel-colors message for
// the given OPC channel (0 broadcasts to all channels).
func NewOPCPacket(indices IndexBuffer, channel int) (*PacketSpec, error) {
	dataLength := len(indices.Indices()) * 3

	s, err := newPacketSpec(ProtocolOPC, indices, opcHeaderLength, dataLength)
	if err != nil {
		return nil, err
	}

	s.buf[0] = byte(channel)
	s.buf[1] = opcSetPixelColors
	s.buf[2] = byte(dataLength >> 8)
	s.buf[3] = byte(dataLength)

	return s, nil
}
