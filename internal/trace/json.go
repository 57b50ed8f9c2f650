package trace

import (
	"io"

	"stackvm/pkg/vm"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// JSON writes one structured record per step and one at halt
type JSON struct {
	log *zap.Logger
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("04:05.000")
	return cfg
}

// NewJSON opens a trace sink at path, which may also be "stdout" or "stderr"
func NewJSON(path string) (*JSON, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.EncoderConfig = encoderConfig()
	cfg.OutputPaths = []string{path}
	cfg.Sampling = nil
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return &JSON{log: l}, nil
}

// NewJSONWriter writes records to w without timestamps
func NewJSONWriter(w io.Writer) *JSON {
	cfg := encoderConfig()
	cfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.AddSync(w), zapcore.DebugLevel)

	return &JSON{log: zap.New(core)}
}

func (o *JSON) Step(t vm.StepTrace) {
	fields := []zap.Field{
		zap.String("fn", t.Function),
		zap.Int("pc", int(t.Counter)),
		zap.Int32s("stack", t.Stack),
	}

	if t.Implicit {
		o.log.Debug("implicit return", fields...)
		return
	}

	o.log.Debug("step", append(fields, zap.String("op", t.Instruction.String()))...)
}

func (o *JSON) Halt(t vm.HaltTrace) {
	o.log.Info("halt",
		zap.String("fn", t.Function),
		zap.Int("pc", int(t.Counter)),
		zap.Int32s("stack", t.Stack),
		zap.String("reason", t.Reason.String()),
	)
}

// Sync flushes buffered records
func (o *JSON) Sync() error {
	return o.log.Sync()
}
