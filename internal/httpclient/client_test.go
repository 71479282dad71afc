package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig(0)
	assert.Equal(t, 10*time.Second, cfg.Timeout)

	cfg = DefaultConfig(3 * time.Second)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 3*time.Second, cfg.ResponseHeaderTimeout)
}

func TestNewHTTPClientTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := NewHTTPClient(DefaultConfig(50 * time.Millisecond))
	_, err := client.Get(srv.URL)
	require.Error(t, err)
}
