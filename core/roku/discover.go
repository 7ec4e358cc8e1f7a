package roku

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"Blockbuster/logger"
)

// Device is a Roku found on the local network.
type Device struct {
	Addr     string `json:"addr"` // host:port of the ECP endpoint
	Location string `json:"location"`
	USN      string `json:"usn,omitempty"`
}

// ssdpAddr is a var so tests can point discovery at a local responder.
var ssdpAddr = "239.255.255.250:1900"

// Discover sends an SSDP M-SEARCH for roku:ecp and collects responses until
// wait elapses or ctx is cancelled. Duplicate responders are collapsed.
func Discover(ctx context.Context, wait time.Duration) ([]Device, error) {
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	dst, err := net.ResolveUDPAddr("udp4", ssdpAddr)
	if err != nil {
		return nil, err
	}

	search := "M-SEARCH * HTTP/1.1\r\n" +
		"HOST: " + ssdpAddr + "\r\n" +
		"MAN: \"ssdp:discover\"\r\n" +
		"ST: roku:ecp\r\n" +
		"MX: 2\r\n\r\n"
	if _, err := conn.WriteTo([]byte(search), dst); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(wait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetReadDeadline(deadline)

	// cancellation ends the collection window early; whatever answered by
	// then is still returned
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.SetReadDeadline(time.Now())
		case <-stop:
		}
	}()

	seen := make(map[string]bool)
	var devices []Device
	buf := make([]byte, 2048)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			// deadline expiry ends the collection window
			break
		}
		dev, ok := parseSSDPResponse(buf[:n])
		if !ok || seen[dev.Addr] {
			continue
		}
		seen[dev.Addr] = true
		devices = append(devices, dev)
		logger.Debug("discovered roku", logger.String("addr", dev.Addr))
	}
	return devices, nil
}

func parseSSDPResponse(raw []byte) (Device, bool) {
	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(raw)), nil)
	if err != nil {
		return Device{}, false
	}
	defer resp.Body.Close()
	location := resp.Header.Get("Location")
	if location == "" {
		return Device{}, false
	}
	u, err := url.Parse(location)
	if err != nil || u.Host == "" {
		return Device{}, false
	}
	st := resp.Header.Get("ST")
	if st != "" && !strings.Contains(st, "roku:ecp") {
		return Device{}, false
	}
	return Device{
		Addr:     u.Host,
		Location: location,
		USN:      resp.Header.Get("USN"),
	}, true
}
