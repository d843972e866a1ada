package logic

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/signal"
)

// Logger inputs.
const (
	LoggerBool   signal.ID = 0
	LoggerNumber signal.ID = 1
)

// Logger writes every value it receives to a slog logger.
type Logger struct {
	device.Base
	bools   *signal.StateTargetQueued[bool]
	numbers *signal.StateTargetQueued[float64]

	name   string
	level  slog.Level
	logger *slog.Logger
	lines  atomic.Uint64
}

// NewLogger creates a logger device named name.
func NewLogger(name string, logger *slog.Logger, level slog.Level) *Logger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Logger{
		bools:   signal.NewStateTargetQueued[bool](),
		numbers: signal.NewStateTargetQueued[float64](),
		name:    name,
		level:   level,
		logger:  logger,
	}
}

func (l *Logger) Class() string { return ClassLogger }

func (l *Logger) Signals() signal.Map {
	return signal.Map{LoggerBool: l.bools, LoggerNumber: l.numbers}
}

func (l *Logger) SignalNames() map[signal.ID]string {
	return map[signal.ID]string{LoggerBool: "bool", LoggerNumber: "number"}
}

func (l *Logger) TargetsChanged() {
	ctx := context.Background()
	for _, v := range l.bools.TakePending() {
		l.logger.Log(ctx, l.level, "value", "device", l.name, "input", "bool", "value", v)
		l.lines.Add(1)
	}
	for _, v := range l.numbers.TakePending() {
		l.logger.Log(ctx, l.level, "value", "device", l.name, "input", "number", "value", v)
		l.lines.Add(1)
	}
}

func (l *Logger) Run(ctx context.Context) device.Exited {
	return device.Idle(ctx)
}

// Lines returns the number of values logged.
func (l *Logger) Lines() uint64 {
	return l.lines.Load()
}
