package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	cases := []struct {
		level string
		want  []string
	}{
		{LevelDebug, []string{"debug", "verbose", "info", "warn", "error"}},
		{LevelVerbose, []string{"verbose", "info", "warn", "error"}},
		{LevelInfo, []string{"info", "warn", "error"}},
		{LevelWarn, []string{"warn", "error"}},
		{LevelError, []string{"error"}},
		{LevelSilent, nil},
	}
	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := New(&buf, tc.level, "json")
			require.NoError(t, err)

			log.Debug("debug", nil)
			log.Verbose("verbose", nil)
			log.Info("info", nil)
			log.Warn("warn", nil)
			log.Error("error", nil)

			var got []string
			dec := json.NewDecoder(&buf)
			for dec.More() {
				var line map[string]any
				require.NoError(t, dec.Decode(&line))
				got = append(got, line["msg"].(string))
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNew_Fields(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, LevelInfo, "text")
	require.NoError(t, err)

	log.Error("unresolved reference", map[string]any{"File": "users.js", "Line": 3})
	out := buf.String()
	assert.Contains(t, out, "level=error")
	assert.Contains(t, out, `msg="unresolved reference"`)
	assert.Contains(t, out, "File=users.js")
	assert.Contains(t, out, "Line=3")
	assert.NotContains(t, out, "time=")
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "loud", "text")
	assert.Error(t, err)
	_, err = New(&bytes.Buffer{}, LevelInfo, "xml")
	assert.Error(t, err)
}
