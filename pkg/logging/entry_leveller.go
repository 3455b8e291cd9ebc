package logging

import (
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
)

// EntryLeveller is a zapcore.Core that filters log entries by logger name, walking up the dotted name
// (`notices.cache` then `notices`) until a configured level is found.
type EntryLeveller struct {
	zapcore.Core

	levels sync.Map // map[string]zapcore.Level
}

func NewEntryLeveller(core zapcore.Core, levels map[string]zapcore.Level) *EntryLeveller {
	el := &EntryLeveller{Core: core}
	for k, v := range levels {
		el.levels.Store(k, v)
	}
	return el
}

func (el *EntryLeveller) With(f []zapcore.Field) zapcore.Core {
	next := &EntryLeveller{
		Core: el.Core.With(f),
	}
	el.levels.Range(func(k, v interface{}) bool {
		next.levels.Store(k, v)
		return true
	})
	return next
}

func (el *EntryLeveller) levelFor(name string) (zapcore.Level, bool) {
	for {
		if level, ok := el.levels.Load(name); ok {
			return level.(zapcore.Level), true
		}
		if name == "" {
			return 0, false
		}
		idx := strings.LastIndex(name, ".")
		if idx < 0 {
			name = ""
		} else {
			name = name[:idx]
		}
	}
}

func (el *EntryLeveller) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	level, ok := el.levelFor(e.LoggerName)
	if !ok {
		return el.Core.Check(e, ce)
	}
	if e.LoggerName != "" {
		// cache the resolved level so the next lookup for this logger is direct
		el.levels.Store(e.LoggerName, level)
	}
	if e.Level < level {
		return ce
	}
	return ce.AddCore(e, el)
}
