package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/actuallystonmai/campusconnect-recommendation/internal/testinfra"
)

func TestRunExitCodes(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")

	srv := testinfra.NewServer(t)
	assert.Equal(t, exitOK, run([]string{"-base-url", srv.URL}))

	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()
	assert.Equal(t, exitUnreachable, run([]string{"-base-url", downURL}))

	// liveness holds, every other endpoint 404s
	partial := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"service":"partial","status":"running","endpoints":[]}`))
	}))
	defer partial.Close()
	assert.Equal(t, exitFailed, run([]string{"-base-url", partial.URL}))
	assert.Equal(t, exitOK, run([]string{"-base-url", partial.URL, "-advisory"}))

	assert.Equal(t, exitFailed, run([]string{"-no-such-flag"}))
}
