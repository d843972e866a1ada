package registry

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mash-protocol/mash-logic/pkg/config"
	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/devices/hardware"
	"github.com/mash-protocol/mash-logic/pkg/devices/logic"
)

// Default returns a registry with every built-in class.
func Default() *Registry {
	r := New()
	RegisterBuiltins(r)
	return r
}

// RegisterBuiltins adds the built-in classes to r.
func RegisterBuiltins(r *Registry) {
	r.Register(logic.ClassConstant, "state source with a settable value", buildConstant)
	r.Register(logic.ClassInverter, "negates a boolean state", buildInverter)
	r.Register(logic.ClassEdge, "emits rising/falling edge events", buildEdge)
	r.Register(logic.ClassCounter, "counts edge events", buildCounter)
	r.Register(logic.ClassHolder, "holds the latest message", buildHolder)
	r.Register(logic.ClassMessage, "emits messages on request", buildMessage)
	r.Register(logic.ClassLogger, "logs every value it receives", buildLogger)
	r.Register(logic.ClassRecorder, "records numbers to a CBOR file", buildRecorder)
	r.Register(logic.ClassTimer, "pulse, on-delay and off-delay timers", buildTimer)
	r.Register(logic.ClassFailsafe, "raises active when a fault persists", buildFailsafe)
	r.Register(hardware.ClassInputs, "digital input board", buildInputs)
	r.Register(hardware.ClassRelays, "relay output board", buildRelays)
}

type constantParams struct {
	Type  logic.ValueType `mapstructure:"type"`
	Value any             `mapstructure:"value"`
}

func buildConstant(_ Env, params map[string]any) (device.Device, error) {
	var p constantParams
	if err := config.DecodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Type == "" {
		t, err := logic.InferType(p.Value)
		if err != nil {
			return nil, err
		}
		p.Type = t
	}
	return logic.NewConstantOf(p.Type, p.Value)
}

func noParams(class string, params map[string]any) error {
	if len(params) > 0 {
		return fmt.Errorf("%s takes no params", class)
	}
	return nil
}

func buildInverter(_ Env, params map[string]any) (device.Device, error) {
	if err := noParams(logic.ClassInverter, params); err != nil {
		return nil, err
	}
	return logic.NewInverter(), nil
}

func buildEdge(_ Env, params map[string]any) (device.Device, error) {
	if err := noParams(logic.ClassEdge, params); err != nil {
		return nil, err
	}
	return logic.NewEdgeDetector(), nil
}

type counterParams struct {
	Count string `mapstructure:"count"`
}

func buildCounter(_ Env, params map[string]any) (device.Device, error) {
	var p counterParams
	if err := config.DecodeParams(params, &p); err != nil {
		return nil, err
	}
	mode, err := logic.ParseCountMode(p.Count)
	if err != nil {
		return nil, err
	}
	return logic.NewCounter(mode), nil
}

func buildHolder(_ Env, params map[string]any) (device.Device, error) {
	if err := noParams(logic.ClassHolder, params); err != nil {
		return nil, err
	}
	return logic.NewHolder(), nil
}

func buildMessage(_ Env, params map[string]any) (device.Device, error) {
	if err := noParams(logic.ClassMessage, params); err != nil {
		return nil, err
	}
	return logic.NewMessage(), nil
}

type loggerParams struct {
	Level string `mapstructure:"level"`
}

func buildLogger(env Env, params map[string]any) (device.Device, error) {
	p := loggerParams{Level: "info"}
	if err := config.DecodeParams(params, &p); err != nil {
		return nil, err
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(p.Level)); err != nil {
		return nil, err
	}
	return logic.NewLogger(env.Name, env.Logger, level), nil
}

type recorderParams struct {
	Path string `mapstructure:"path"`
}

func buildRecorder(env Env, params map[string]any) (device.Device, error) {
	var p recorderParams
	if err := config.DecodeParams(params, &p); err != nil {
		return nil, err
	}
	path := p.Path
	if path == "" {
		path = env.Name + logic.RecordExt
	}
	if !filepath.IsAbs(path) {
		if env.DataDir == "" {
			return nil, fmt.Errorf("relative record path %q needs runtime.data_dir", path)
		}
		path = filepath.Join(env.DataDir, path)
	}
	return logic.NewRecorder(path, env.Logger)
}

type timerParams struct {
	Mode     string        `mapstructure:"mode"`
	Duration time.Duration `mapstructure:"duration"`
	Channels int           `mapstructure:"channels"`
}

func buildTimer(_ Env, params map[string]any) (device.Device, error) {
	p := timerParams{Channels: 1}
	if err := config.DecodeParams(params, &p); err != nil {
		return nil, err
	}
	mode, err := logic.ParseTimerMode(p.Mode)
	if err != nil {
		return nil, err
	}
	return logic.NewTimer(mode, p.Duration, p.Channels)
}

type failsafeParams struct {
	Duration time.Duration `mapstructure:"duration"`
	Grace    time.Duration `mapstructure:"grace"`
}

func buildFailsafe(_ Env, params map[string]any) (device.Device, error) {
	var p failsafeParams
	if err := config.DecodeParams(params, &p); err != nil {
		return nil, err
	}
	return logic.NewFailsafe(p.Duration, p.Grace)
}

func buildInputs(env Env, params map[string]any) (device.Device, error) {
	var cfg hardware.InputsConfig
	if err := config.DecodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return hardware.NewInputs(env.Bus, cfg, env.Logger)
}

func buildRelays(env Env, params map[string]any) (device.Device, error) {
	var cfg hardware.RelaysConfig
	if err := config.DecodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return hardware.NewRelays(env.Bus, cfg, env.Logger)
}
