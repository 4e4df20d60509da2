package carsome

import (
	"io"
	"os"
	"testing"
	"time"

	"carsome-scraper/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A cache-served query never uses the browser, so constructing and
// closing the discoverer must not announce a browser launch.
func TestNewDiscovererQuietUntilUsed(t *testing.T) {
	orig := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	d := NewDiscoverer(config.DefaultConfig())
	d.Close()

	os.Stdout = orig
	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)

	assert.Empty(t, string(out), "discoverer lifecycle must not log before Chrome is actually used")
}

func TestRenderWaitDerivedFromBrowserTimeout(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BrowserTimeout = 90 * time.Second
	assert.Equal(t, 30*time.Second, (&Discoverer{cfg: cfg}).renderWait())

	cfg.BrowserTimeout = 30 * time.Second
	assert.Equal(t, 10*time.Second, (&Discoverer{cfg: cfg}).renderWait())
}
