package roku

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Blockbuster/core/playback"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deviceAddr(ts *httptest.Server) string {
	return strings.TrimPrefix(ts.URL, "http://")
}

func TestBaseURLNormalization(t *testing.T) {
	assert.Equal(t, "http://192.168.1.50:8060", baseURL("192.168.1.50"))
	assert.Equal(t, "http://192.168.1.50:8060", baseURL("http://192.168.1.50/"))
	assert.Equal(t, "http://192.168.1.50:9999", baseURL("192.168.1.50:9999"))
}

func TestLaunchSendsPathAndParams(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		got = r.RequestURI
	}))
	defer ts.Close()

	client := NewClient()
	err := client.Launch(context.Background(), deviceAddr(ts), "12", "contentId=81444554&mediaType=movie")
	require.NoError(t, err)
	assert.Equal(t, "/launch/12?contentId=81444554&mediaType=movie", got)
}

func TestLaunchWithoutParams(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.RequestURI
	}))
	defer ts.Close()

	client := NewClient()
	require.NoError(t, client.Launch(context.Background(), deviceAddr(ts), "12", ""))
	assert.Equal(t, "/launch/12", got)
}

func TestKeypressPreservesEscapedLiterals(t *testing.T) {
	var got []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		got = append(got, r.RequestURI)
	}))
	defer ts.Close()

	client := NewClient()
	for _, key := range []string{"Play", "Lit_A", "Lit_%20"} {
		require.NoError(t, client.Keypress(context.Background(), deviceAddr(ts), key))
	}
	// Lit_%20 must hit the wire pre-escaped, not double-escaped or decoded
	assert.Equal(t, []string{"/keypress/Play", "/keypress/Lit_A", "/keypress/Lit_%20"}, got)
}

func TestErrorStatusBecomesDeviceError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	client := NewClient()
	err := client.Keypress(context.Background(), deviceAddr(ts), "Home")
	require.Error(t, err)

	var devErr *playback.DeviceError
	require.True(t, errors.As(err, &devErr))
	assert.Equal(t, http.StatusServiceUnavailable, devErr.Status)
	assert.False(t, devErr.Unreachable())
}

func TestUnreachableDevice(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := deviceAddr(ts)
	ts.Close()

	client := NewClient()
	err := client.Launch(context.Background(), addr, "12", "")
	require.Error(t, err)

	var devErr *playback.DeviceError
	require.True(t, errors.As(err, &devErr))
	assert.True(t, devErr.Unreachable())
}

func TestQueryApps(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query/apps", r.URL.Path)
		w.Write([]byte(`<apps>
			<app id="12" type="appl" version="4.1.218">Netflix</app>
			<app id="13" type="appl" version="5.0.0">Prime Video</app>
		</apps>`))
	}))
	defer ts.Close()

	client := NewClient()
	apps, err := client.QueryApps(context.Background(), deviceAddr(ts))
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "12", apps[0].ID)
	assert.Equal(t, "Netflix", apps[0].Name)
	assert.Equal(t, "Prime Video", apps[1].Name)
}

func TestQueryDeviceInfo(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query/device-info", r.URL.Path)
		w.Write([]byte(`<device-info>
			<serial-number>X00000AAAAAA</serial-number>
			<model-name>Roku Ultra</model-name>
			<user-device-name>Living Room</user-device-name>
			<power-mode>PowerOn</power-mode>
		</device-info>`))
	}))
	defer ts.Close()

	client := NewClient()
	info, err := client.QueryDeviceInfo(context.Background(), deviceAddr(ts))
	require.NoError(t, err)
	assert.Equal(t, "Living Room", info.FriendlyName)
	assert.Equal(t, "Roku Ultra", info.ModelName)
	assert.Equal(t, "PowerOn", info.PowerMode)
}
