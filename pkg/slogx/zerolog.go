package slogx

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"

	"github.com/rs/zerolog"
)

// ZerologHandler is a slog.Handler that emits records through a zerolog
// logger. Group names become dotted key prefixes.
type ZerologHandler struct {
	zl        zerolog.Logger
	level     slog.Leveler
	addSource bool
	prefix    string
	attrs     []prefixedAttr
}

type prefixedAttr struct {
	prefix string
	attr   slog.Attr
}

// NewZerologHandler wraps zl. A nil opts logs at Info and above.
func NewZerologHandler(zl zerolog.Logger, opts *slog.HandlerOptions) *ZerologHandler {
	h := &ZerologHandler{zl: zl, level: slog.LevelInfo}
	if opts != nil {
		if opts.Level != nil {
			h.level = opts.Level
		}
		h.addSource = opts.AddSource
	}
	return h
}

func (h *ZerologHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *ZerologHandler) Handle(_ context.Context, r slog.Record) error {
	ev := h.zl.WithLevel(zerologLevel(r.Level))
	if ev == nil {
		return nil
	}

	if !r.Time.IsZero() {
		ev = ev.Time(zerolog.TimestampFieldName, r.Time)
	}
	if h.addSource && r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := frames.Next()
		ev = ev.Str("source", fmt.Sprintf("%s:%d", f.File, f.Line))
	}

	for _, pa := range h.attrs {
		ev = appendAttr(ev, pa.prefix, pa.attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		ev = appendAttr(ev, h.prefix, a)
		return true
	})

	ev.Msg(r.Message)
	return nil
}

func (h *ZerologHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	cp := *h
	cp.attrs = slices.Clone(h.attrs)
	for _, a := range attrs {
		cp.attrs = append(cp.attrs, prefixedAttr{prefix: h.prefix, attr: a})
	}
	return &cp
}

func (h *ZerologHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	cp := *h
	cp.prefix = h.prefix + name + "."
	return &cp
}

func appendAttr(ev *zerolog.Event, prefix string, a slog.Attr) *zerolog.Event {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return ev
	}
	key := prefix + a.Key

	switch a.Value.Kind() {
	case slog.KindString:
		return ev.Str(key, a.Value.String())
	case slog.KindInt64:
		return ev.Int64(key, a.Value.Int64())
	case slog.KindUint64:
		return ev.Uint64(key, a.Value.Uint64())
	case slog.KindFloat64:
		return ev.Float64(key, a.Value.Float64())
	case slog.KindBool:
		return ev.Bool(key, a.Value.Bool())
	case slog.KindDuration:
		return ev.Dur(key, a.Value.Duration())
	case slog.KindTime:
		return ev.Time(key, a.Value.Time())
	case slog.KindGroup:
		// Inline groups (empty key) keep the current prefix.
		p := prefix
		if a.Key != "" {
			p = key + "."
		}
		for _, ga := range a.Value.Group() {
			ev = appendAttr(ev, p, ga)
		}
		return ev
	default:
		if err, ok := a.Value.Any().(error); ok {
			return ev.AnErr(key, err)
		}
		return ev.Interface(key, a.Value.Any())
	}
}

func zerologLevel(l slog.Level) zerolog.Level {
	switch {
	case l < slog.LevelInfo:
		return zerolog.DebugLevel
	case l < slog.LevelWarn:
		return zerolog.InfoLevel
	case l < slog.LevelError:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
