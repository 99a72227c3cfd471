package logging

import (
	"io"
	"slices"
	"sync"

	"go.uber.org/zap/zapcore"
)

// Console writes record messages, one per line, to a stream.
//
// Records are passed through the console's processors first, so the message
// written may differ from the one logged. Context fields are never written.
// The accepted levels can be changed at any time through Filterable.
type Console struct {
	*LevelFilter

	out        zapcore.WriteSyncer
	enc        zapcore.Encoder
	mu         *sync.Mutex
	processors *[]Processor
	fields     []zapcore.Field
}

var (
	_ zapcore.Core = (*Console)(nil)
	_ Filterable   = (*Console)(nil)
)

// NewConsole creates a console destination accepting every level.
func NewConsole(w io.Writer) *Console {
	return &Console{
		LevelFilter: NewLevelFilter(),
		out:         zapcore.AddSync(w),
		enc: zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			MessageKey: "message",
			LineEnding: zapcore.DefaultLineEnding,
		}),
		mu:         &sync.Mutex{},
		processors: &[]Processor{},
	}
}

// AddProcessor appends processors; they run in the order added.
func (c *Console) AddProcessor(processors ...Processor) {
	c.mu.Lock()
	defer c.mu.Unlock()

	*c.processors = append(*c.processors, processors...)
}

// Process runs r through the console's processors.
func (c *Console) Process(r Record) Record {
	c.mu.Lock()
	processors := *c.processors
	c.mu.Unlock()

	for _, p := range processors {
		r = p(r)
	}

	return r
}

// With implements zapcore.Core. The clone shares filter, processors and
// output with c.
func (c *Console) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(slices.Clip(c.fields), fields...)

	return &clone
}

// Check implements zapcore.Core.
func (c *Console) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}

	return ce
}

// Write implements zapcore.Core.
func (c *Console) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	all := fields
	if len(c.fields) > 0 {
		all = append(slices.Clip(c.fields), fields...)
	}

	rec := c.Process(NewRecord(ent, all))
	ent.Message = rec.Message

	buf, err := c.enc.EncodeEntry(ent, nil)
	if err != nil {
		return err
	}
	defer buf.Free()

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err = c.out.Write(buf.Bytes())

	return err
}

// Sync implements zapcore.Core. Writes are unbuffered, and fsync on a
// terminal or pipe fails, so there is nothing to do.
func (c *Console) Sync() error {
	return nil
}
