package output

import "fmt"

// KiNET is the Color Kinetics supply protocol. Packets carry a fixed
// header followed by 512 bytes of channel data. The "kinet port" selects
// a physical output on the power supply and is unrelated to the UDP port.
const (
	// KinetPort is the default UDP port for KiNET controllers.
	KinetPort = 6038

	kinetDMXOutHeaderLength  = 21
	kinetPortOutHeaderLength = 24
	kinetDataLength          = 512

	// KinetMaxChannels is how many channel bytes fit in one packet.
	KinetMaxChannels = kinetDataLength
)

// KinetVersion selects the KiNET packet sub-format.
type KinetVersion int

const (
	// KinetPortOut addresses a specific physical output port.
	KinetPortOut KinetVersion = iota
	// KinetDMXOut is the older whole-supply format.
	KinetDMXOut
)

// NewKinetPacket builds a KiNET packet spec for the given physical output
// port on the power supply. The header layout is a legacy wire contract
// and must not change.
func NewKinetPacket(indices IndexBuffer, kinetPort int, version KinetVersion) (*PacketSpec, error) {
	headerLength := kinetPortOutHeaderLength
	if version == KinetDMXOut {
		headerLength = kinetDMXOutHeaderLength
	}

	s, err := newPacketSpec(ProtocolKinet, indices, headerLength, kinetDataLength)
	if err != nil {
		return nil, err
	}
	s.kinetVersion = version

	// Magic
	s.buf[0] = 0x04
	s.buf[1] = 0x01
	s.buf[2] = 0xdc
	s.buf[3] = 0x4a

	switch version {
	case KinetPortOut:
		s.buf[4] = 0x01
		s.buf[5] = 0x00
		s.buf[6] = 0x08
		s.buf[7] = 0x01

		// Sequence and universe fields, unused
		for i := 8; i < 12; i++ {
			s.buf[i] = 0x00
		}
		for i := 12; i < 16; i++ {
			s.buf[i] = 0xff
		}

		// Physical output port number
		s.buf[16] = byte(kinetPort)

		// Possibly a checksum, 0x00 works fine
		s.buf[17] = 0x00
		s.buf[18] = 0x00
		s.buf[19] = 0x00
		s.buf[20] = 0x00

		// Port count on controller, ignored by supplies
		s.buf[21] = 0x02

		s.buf[22] = 0x00
		s.buf[23] = 0x00

	case KinetDMXOut:
		s.buf[4] = 0x01
		s.buf[5] = 0x00

		// Type (DMXOUT)
		s.buf[6] = 0x01
		s.buf[7] = 0x01

		// Sequence number and unused header
		for i := 8; i < 16; i++ {
			s.buf[i] = 0x00
		}

		// Universe, fixed all-call
		for i := 16; i < 20; i++ {
			s.buf[i] = 0xff
		}

		// One byte to lead the data
		s.buf[20] = 0x00
	}

	return s, nil
}

// SetKinetPort rewrites the physical output port number in the header.
// Only valid for PORTOUT packets; DMXOUT has no port field.
func (s *PacketSpec) SetKinetPort(kinetPort int) error {
	if s.Protocol != ProtocolKinet || s.kinetVersion != KinetPortOut {
		return fmt.Errorf("kinet port is only settable on KiNET PORTOUT packets: %w", ErrEncoding)
	}
	s.buf[16] = byte(kinetPort)
	return nil
}
