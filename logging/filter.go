package logging

import (
	"sync"

	"go.uber.org/zap/zapcore"
)

// Filterable is implemented by destinations whose accepted levels can be
// changed after construction.
type Filterable interface {
	// SetAcceptedLevels accepts exactly the given levels.
	SetAcceptedLevels(levels ...Level)

	// SetAcceptedRange accepts every level from minLevel to maxLevel inclusive.
	SetAcceptedRange(minLevel, maxLevel Level)

	// AcceptedLevels lists the accepted levels, lowest first.
	AcceptedLevels() []Level
}

// LevelFilter is a set of accepted levels. It implements zapcore.LevelEnabler
// and Filterable, and is safe for concurrent use.
type LevelFilter struct {
	mu       sync.RWMutex
	accepted [numLevels]bool
}

var _ Filterable = (*LevelFilter)(nil)

// NewLevelFilter accepts the given levels, or every level when none are given.
func NewLevelFilter(levels ...Level) *LevelFilter {
	f := &LevelFilter{}
	if len(levels) == 0 {
		f.SetAcceptedRange(DebugLevel, EmergencyLevel)
	} else {
		f.SetAcceptedLevels(levels...)
	}

	return f
}

// SetAcceptedLevels replaces the accepted set. Undefined levels are ignored.
func (f *LevelFilter) SetAcceptedLevels(levels ...Level) {
	var accepted [numLevels]bool

	for _, l := range levels {
		if l.Valid() {
			accepted[l-DebugLevel] = true
		}
	}

	f.mu.Lock()
	f.accepted = accepted
	f.mu.Unlock()
}

// SetAcceptedRange accepts minLevel through maxLevel. An inverted range accepts nothing.
func (f *LevelFilter) SetAcceptedRange(minLevel, maxLevel Level) {
	var accepted [numLevels]bool

	for l := DebugLevel; l <= EmergencyLevel; l++ {
		accepted[l-DebugLevel] = l >= minLevel && l <= maxLevel
	}

	f.mu.Lock()
	f.accepted = accepted
	f.mu.Unlock()
}

// AcceptedLevels lists the accepted levels, lowest first.
func (f *LevelFilter) AcceptedLevels() []Level {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var levels []Level

	for i, ok := range f.accepted {
		if ok {
			levels = append(levels, Level(i)+DebugLevel)
		}
	}

	return levels
}

// Accepts reports whether l passes the filter.
func (f *LevelFilter) Accepts(l Level) bool {
	if !l.Valid() {
		return false
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.accepted[l-DebugLevel]
}

// Enabled implements zapcore.LevelEnabler.
func (f *LevelFilter) Enabled(l zapcore.Level) bool {
	return f.Accepts(FromZap(l))
}

// AtLeast is a zapcore.LevelEnabler accepting min and everything above it.
type AtLeast Level

// Enabled implements zapcore.LevelEnabler.
func (a AtLeast) Enabled(l zapcore.Level) bool {
	lvl := FromZap(l)
	return lvl.Valid() && lvl >= Level(a)
}
