package output

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSenderDeliversPacket(t *testing.T) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer listener.Close()

	sender, err := NewSender("")
	require.NoError(t, err)
	defer sender.Close()

	spec, err := NewOPCPacket(StaticIndexBuffer{0}, 0)
	require.NoError(t, err)
	spec.SetDestination("127.0.0.1", listener.LocalAddr().(*net.UDPAddr).Port)

	require.True(t, sender.Send(spec, []uint32{0xffaabbcc}))

	buf := make([]byte, 64)
	require.NoError(t, listener.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := listener.ReadFromUDP(buf)
	require.NoError(t, err)

	require.Equal(t, 7, n)
	assert.Equal(t, []byte{0xaa, 0xbb, 0xcc}, buf[4:7])
}

func TestSenderDropsEncodeFailure(t *testing.T) {
	sender, err := NewSender("")
	require.NoError(t, err)
	defer sender.Close()

	spec, err := NewOPCPacket(StaticIndexBuffer{3}, 0)
	require.NoError(t, err)
	spec.SetDestination("127.0.0.1", 0)

	// Index 3 is out of range for a 1-entry color buffer; the packet is
	// dropped without an error escaping the send path.
	assert.False(t, sender.Send(spec, []uint32{0}))
}
