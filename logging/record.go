package logging

import (
	"maps"
	"slices"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Context holds the auxiliary data attached to a record.
type Context map[string]any

// Fields converts the context to zap fields, sorted by key.
func (c Context) Fields() []zapcore.Field {
	keys := slices.Sorted(maps.Keys(c))

	fields := make([]zapcore.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, zap.Any(k, c[k]))
	}

	return fields
}

// Record is one log event as seen by processors and rules.
type Record struct {
	Time    time.Time
	Level   Level
	Channel string
	Message string
	Context Context
}

// Processor rewrites a record before a destination encodes it.
type Processor func(Record) Record

// Rule decides whether a destination keeps a record.
type Rule func(Record) bool

// NewRecord rebuilds a Record from a zap entry and its fields.
func NewRecord(ent zapcore.Entry, fields []zapcore.Field) Record {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}

	return Record{
		Time:    ent.Time,
		Level:   FromZap(ent.Level),
		Channel: ent.LoggerName,
		Message: ent.Message,
		Context: enc.Fields,
	}
}

// Has reports whether the context carries key.
func (r Record) Has(key string) bool {
	_, ok := r.Context[key]
	return ok
}

// Str returns the context value for key if it is a string.
func (r Record) Str(key string) string {
	s, _ := r.Context[key].(string)
	return s
}

// Int returns the context value for key as an int. Missing or non-numeric
// values yield 0.
func (r Record) Int(key string) int {
	switch v := r.Context[key].(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// With returns a copy of r whose context has key set to value. The original
// context is left untouched.
func (r Record) With(key string, value any) Record {
	ctx := make(Context, len(r.Context)+1)
	maps.Copy(ctx, r.Context)
	ctx[key] = value
	r.Context = ctx

	return r
}
