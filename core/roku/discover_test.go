package roku

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSSDPResponse(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\n" +
		"Cache-Control: max-age=3600\r\n" +
		"ST: roku:ecp\r\n" +
		"Location: http://192.168.1.77:8060/\r\n" +
		"USN: uuid:roku:ecp:X00000AAAAAA\r\n\r\n")

	dev, ok := parseSSDPResponse(raw)
	require.True(t, ok)
	assert.Equal(t, "192.168.1.77:8060", dev.Addr)
	assert.Equal(t, "http://192.168.1.77:8060/", dev.Location)
	assert.Equal(t, "uuid:roku:ecp:X00000AAAAAA", dev.USN)

	_, ok = parseSSDPResponse([]byte("HTTP/1.1 200 OK\r\nST: upnp:rootdevice\r\nLocation: http://x/\r\n\r\n"))
	assert.False(t, ok, "non-roku responders are ignored")

	_, ok = parseSSDPResponse([]byte("HTTP/1.1 200 OK\r\n\r\n"))
	assert.False(t, ok, "a response without a Location is useless")
}

func TestDiscoverCancellationKeepsCollectedDevices(t *testing.T) {
	responder, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer responder.Close()

	orig := ssdpAddr
	ssdpAddr = responder.LocalAddr().String()
	defer func() { ssdpAddr = orig }()

	go func() {
		buf := make([]byte, 1024)
		n, from, err := responder.ReadFrom(buf)
		if err != nil || !strings.Contains(string(buf[:n]), "roku:ecp") {
			return
		}
		resp := "HTTP/1.1 200 OK\r\n" +
			"ST: roku:ecp\r\n" +
			"Location: http://192.168.1.77:8060/\r\n" +
			"USN: uuid:roku:ecp:X00000AAAAAA\r\n\r\n"
		responder.WriteTo([]byte(resp), from)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	devices, err := Discover(ctx, 10*time.Second)
	require.NoError(t, err, "a cut-short scan is not a failure")
	assert.Less(t, time.Since(start), 5*time.Second, "cancellation must end the window early")
	require.Len(t, devices, 1)
	assert.Equal(t, "192.168.1.77:8060", devices[0].Addr)
}
