package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUninitializedClientFailsClosed(t *testing.T) {
	// before InitMinio succeeds the server runs in degraded mode: uploads
	// and fetches error instead of panicking
	_, err := UploadCover(context.Background(), "some-entry", strings.NewReader("x"), 1, "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")

	_, err = FetchObject(context.Background(), "covers/some-entry.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}
