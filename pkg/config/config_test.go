package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/mash-logic/pkg/bus"
	"github.com/mash-protocol/mash-logic/pkg/version"
)

const sample = `
version: "1.0"
runtime:
  data_dir: /tmp/logic
  max_rounds: 16
  shutdown_timeout: 2s
  trace_file: run.mtrace
bus:
  boards:
    - {address: 16, inputs: 4, outputs: 0}
    - {address: 17, inputs: 0, outputs: 2}
  backoff:
    initial: 50ms
    max: 1s
devices:
  - name: const1
    class: logic/constant
    params: {value: true}
  - name: inv1
    class: logic/inverter
  - name: relays
    class: hardware/relays
    params: {address: 17, channels: 2}
connections:
  - from: const1/out
    to: [inv1/in]
  - from: inv1/0
    to: relays/1
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/logic", cfg.Runtime.DataDir)
	assert.Equal(t, 16, cfg.Runtime.MaxRounds)
	assert.Equal(t, 2*time.Second, cfg.Runtime.ShutdownTimeout)
	assert.Equal(t, "run.mtrace", cfg.Runtime.TraceFile)
	assert.Equal(t, filepath.Join("/tmp/logic", DefaultStateFile), cfg.Runtime.StatePath())

	assert.Equal(t, BusSimulated, cfg.Bus.Kind, "boards imply a simulated bus")
	require.Len(t, cfg.Bus.Boards, 2)
	assert.Equal(t, bus.BoardSpec{Address: 16, Inputs: 4}, cfg.Bus.Boards[0])
	assert.Equal(t, 50*time.Millisecond, cfg.Bus.Backoff.Initial)
	assert.Equal(t, time.Second, cfg.Bus.Backoff.Max)

	require.Len(t, cfg.Devices, 3)
	assert.Equal(t, "logic/constant", cfg.Devices[0].Class)
	assert.Equal(t, true, cfg.Devices[0].Params["value"])
	assert.Nil(t, cfg.Devices[1].Params)

	require.Len(t, cfg.Connections, 2)
	assert.Equal(t, StringList{"inv1/in"}, cfg.Connections[0].To)
	assert.Equal(t, StringList{"relays/1"}, cfg.Connections[1].To, "scalar target becomes a list")
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("devices: []\n"))
	require.NoError(t, err)

	assert.Equal(t, version.Current, cfg.Version)
	assert.Equal(t, DefaultMaxRounds, cfg.Runtime.MaxRounds)
	assert.Equal(t, DefaultShutdownTimeout, cfg.Runtime.ShutdownTimeout)
	assert.Equal(t, BusNone, cfg.Bus.Kind)
	assert.Empty(t, cfg.Runtime.StatePath(), "no data dir disables retained state")
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("runtime:\n  max_round: 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_round")
}

func TestValidateAggregates(t *testing.T) {
	doc := `
runtime:
  max_rounds: -1
bus:
  kind: serial
devices:
  - name: a
    class: logic/constant
  - name: a
    class: logic/inverter
  - name: "b/c"
    class: logic/holder
  - name: d
connections:
  - from: a
    to: [zz/0]
  - from: a/0
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)

	msg := err.Error()
	for _, want := range []string{
		"max_rounds",
		`bus.kind "serial"`,
		`duplicate name "a"`,
		`"b/c" contains '/'`,
		"devices[3] (d): class is required",
		`connections[0].from: "a" names no signal`,
		`connections[1]: no targets for "a/0"`,
	} {
		assert.Contains(t, msg, want)
	}

	var joined interface{ Unwrap() []error }
	require.ErrorAs(t, err, &joined)
	assert.Len(t, joined.Unwrap(), 7)
	assert.NotContains(t, msg, "zz", "unknown devices are left to connection resolution")
}

func TestParseVersion(t *testing.T) {
	_, err := Parse([]byte("version: \"2.0\"\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.ErrorIs(t, err, version.ErrUnsupported)

	_, err = Parse([]byte("version: one\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid version")
}

func TestValidateDuplicateBoard(t *testing.T) {
	cfg := &Config{Bus: Bus{Kind: BusSimulated, Boards: []bus.BoardSpec{{Address: 1}, {Address: 1}}}}
	cfg.ApplyDefaults()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate address 0x01")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Devices, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	data, err := cfg.Marshal()
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestDecodeParams(t *testing.T) {
	type params struct {
		Address  uint8         `mapstructure:"address"`
		Channels int           `mapstructure:"channels"`
		Poll     time.Duration `mapstructure:"poll"`
		Labels   []string      `mapstructure:"labels"`
	}

	t.Run("Typed", func(t *testing.T) {
		var p params
		err := DecodeParams(map[string]any{
			"address":  17,
			"channels": "4",
			"poll":     "250ms",
			"labels":   "a,b",
		}, &p)
		require.NoError(t, err)
		assert.Equal(t, params{Address: 17, Channels: 4, Poll: 250 * time.Millisecond, Labels: []string{"a", "b"}}, p)
	})

	t.Run("Nil", func(t *testing.T) {
		p := params{Channels: 8}
		require.NoError(t, DecodeParams(nil, &p))
		assert.Equal(t, 8, p.Channels, "defaults survive empty params")
	})

	t.Run("UnknownKey", func(t *testing.T) {
		var p params
		err := DecodeParams(map[string]any{"chanels": 4}, &p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "chanels")
	})
}
