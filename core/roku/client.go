// Package roku speaks the ECP-style HTTP control protocol of Roku players:
// app launch and key-press POSTs plus the read-only query endpoints. The
// protocol is fire and forget; a 2xx only means the device accepted the
// request, not that the screen changed.
package roku

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"Blockbuster/core/playback"
)

// DefaultPort is the ECP port every Roku listens on.
const DefaultPort = "8060"

// Client is a control-protocol client. One pooled HTTP client is shared across
// all callers; Client is safe for concurrent use.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client with a pooled transport and a request timeout.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// baseURL normalizes a device address into the ECP base URL. A bare host gets
// the default ECP port.
func baseURL(device string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(device, "http://"), "https://")
	host = strings.TrimSuffix(host, "/")
	if !strings.Contains(host, ":") {
		host = net.JoinHostPort(host, DefaultPort)
	}
	return "http://" + host
}

// Launch issues POST /launch/{channelID}[?params]. params is an ordered
// &-joined key=value list and is appended verbatim.
func (c *Client) Launch(ctx context.Context, device, channelID, params string) error {
	url := fmt.Sprintf("%s/launch/%s", baseURL(device), channelID)
	if params != "" {
		url += "?" + params
	}
	return c.post(ctx, device, url)
}

// Keypress issues POST /keypress/{key}. key is inserted into the path as-is so
// pre-escaped literals like Lit_%20 survive.
func (c *Client) Keypress(ctx context.Context, device, key string) error {
	url := fmt.Sprintf("%s/keypress/%s", baseURL(device), key)
	return c.post(ctx, device, url)
}

func (c *Client) post(ctx context.Context, device, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return &playback.DeviceError{Device: device, Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &playback.DeviceError{Device: device, Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &playback.DeviceError{Device: device, Status: resp.StatusCode}
	}
	return nil
}

// App is one installed channel as reported by /query/apps.
type App struct {
	ID      string `xml:"id,attr"`
	Type    string `xml:"type,attr"`
	Version string `xml:"version,attr"`
	Name    string `xml:",chardata"`
}

type appsResponse struct {
	XMLName xml.Name `xml:"apps"`
	Apps    []App    `xml:"app"`
}

// QueryApps returns the channels installed on the device.
func (c *Client) QueryApps(ctx context.Context, device string) ([]App, error) {
	var parsed appsResponse
	if err := c.get(ctx, device, "/query/apps", &parsed); err != nil {
		return nil, err
	}
	return parsed.Apps, nil
}

// DeviceInfo is the subset of /query/device-info this system cares about.
type DeviceInfo struct {
	XMLName      xml.Name `xml:"device-info" json:"-"`
	SerialNumber string   `xml:"serial-number" json:"serialNumber"`
	ModelName    string   `xml:"model-name" json:"modelName"`
	FriendlyName string   `xml:"user-device-name" json:"friendlyName"`
	PowerMode    string   `xml:"power-mode" json:"powerMode"`
}

// QueryDeviceInfo returns identity and power state of the device.
func (c *Client) QueryDeviceInfo(ctx context.Context, device string) (*DeviceInfo, error) {
	var parsed DeviceInfo
	if err := c.get(ctx, device, "/query/device-info", &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (c *Client) get(ctx context.Context, device, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL(device)+path, nil)
	if err != nil {
		return &playback.DeviceError{Device: device, Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &playback.DeviceError{Device: device, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &playback.DeviceError{Device: device, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &playback.DeviceError{Device: device, Err: err}
	}
	if err := xml.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse %s response from %s: %w", path, device, err)
	}
	return nil
}
