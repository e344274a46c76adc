package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flashdeck.log")

	log := New(path, true)
	log.Info("viewer started")
	_ = log.Sync() // stdout sync fails on pipes; the file core writes through

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"viewer started"`)
	assert.Contains(t, string(data), `"level":"INFO"`)
}

func TestNew_WithoutFile(t *testing.T) {
	log := New("", false)
	assert.NotNil(t, log)
	log.Debug("console only")
}
