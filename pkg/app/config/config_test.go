package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cfg := &C{Port: 8080}
	require.NoError(t, cfg.Validate())

	cfg.Port = 0
	require.Error(t, cfg.Validate())

	cfg = &C{Port: 8080, OwnerOnly: true}
	require.Error(t, cfg.Validate())

	cfg.OwnerPubkey = "nothex"
	require.Error(t, cfg.Validate())

	cfg.OwnerPubkey = strings.Repeat("ab", 32)
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Owner(), 32)
}

func TestOwnerNilWhenDisabled(t *testing.T) {
	cfg := &C{OwnerPubkey: strings.Repeat("ab", 32)}
	require.Nil(t, cfg.Owner())
}

func TestParseEnvFile(t *testing.T) {
	m := parseEnvFile(
		[]byte(
			"# comment\nRELAY_NAME=myrelay\n\nRELAY_PORT = 9000\nbroken line\n",
		),
	)
	require.Equal(t, "myrelay", m["RELAY_NAME"])
	require.Equal(t, "9000", m["RELAY_PORT"])
	require.NotContains(t, m, "broken line")
}

func TestPrintEnvSorted(t *testing.T) {
	cfg := &C{Name: "x", Port: 1234}
	var buf bytes.Buffer
	PrintEnv(cfg, &buf)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Greater(t, len(lines), 5)
	for i := 1; i < len(lines); i++ {
		require.LessOrEqual(t, lines[i-1], lines[i])
	}
	require.Contains(t, buf.String(), "RELAY_PORT=1234")
}
