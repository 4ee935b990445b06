package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  string
	}{
		{name: "empty", value: "", want: "<not set>"},
		{name: "short values hidden entirely", value: "abcd1234", want: "<set>"},
		{name: "long values keep a preview", value: "pat-1234567890abcdef", want: "pat-...ef"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MaskSecret(tc.value))
		})
	}
}

func TestMaskSecretNeverLeaksFullValue(t *testing.T) {
	secret := "pat-1234567890abcdef"
	assert.NotContains(t, MaskSecret(secret), secret[4:len(secret)-2])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetupLogger(&buf, LevelWarn)
	t.Cleanup(func() { SetupLogger(&buf, LevelInfo) })

	Debug("debug line")
	Info("info line")
	Warn("warn line")
	Error("error line")

	out := buf.String()
	assert.NotContains(t, out, "debug line")
	assert.NotContains(t, out, "info line")
	assert.Contains(t, out, "warn line")
	assert.Contains(t, out, "error line")
}

func TestStructuredAttributes(t *testing.T) {
	var buf bytes.Buffer
	SetupLogger(&buf, LevelInfo)
	t.Cleanup(func() { SetupLogger(&buf, LevelInfo) })

	Info("import finished", "imported", 3, "skipped", 1)

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, "imported=3")
	assert.Contains(t, line, "skipped=1")
}
