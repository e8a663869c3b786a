package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// PassKey is the attribute that tags records with the indexing pass they
// belong to. The human handler prints it as a line prefix rather than as a
// trailing key=value pair.
const PassKey = "pass"

// passPrefixLen is how much of a pass id the human handler prints.
const passPrefixLen = 8

// sink is the writer shared by a handler and everything derived from it.
type sink struct {
	mu sync.Mutex
	w  io.Writer
}

// Handler is a slog handler that writes one line per record:
//
//	2026-10-19T09:12:03Z [info] (pass 1f0c2a9e) Pass indexed | nodes=6 lanes=4
type Handler struct {
	out    *sink
	level  slog.Leveler
	pass   string
	prefix string // group path, "a.b." when non-empty
	attrs  []byte // pre-rendered " k=v" pairs
}

// NewHandler creates a human handler writing to w.
func NewHandler(w io.Writer, opts *slog.HandlerOptions) *Handler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &Handler{out: &sink{w: w}, level: level}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	pass := h.pass
	pairs := h.attrs[:len(h.attrs):len(h.attrs)]
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == PassKey && h.prefix == "" {
			pass = shortPass(a.Value.String())
			return true
		}
		pairs = appendAttr(pairs, h.prefix, a)
		return true
	})

	buf := make([]byte, 0, 128+len(pairs))
	buf = r.Time.UTC().AppendFormat(buf, time.RFC3339)
	buf = append(buf, " ["...)
	buf = append(buf, levelString(r.Level)...)
	buf = append(buf, "] "...)
	if pass != "" {
		buf = append(buf, "(pass "...)
		buf = append(buf, pass...)
		buf = append(buf, ") "...)
	}
	buf = append(buf, r.Message...)
	if len(pairs) > 0 {
		buf = append(buf, " |"...)
		buf = append(buf, pairs...)
	}
	buf = append(buf, '\n')

	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	_, err := h.out.w.Write(buf)
	return err
}

// WithAttrs renders attrs once so that records only format their own.
// A top-level PassKey attribute sets the pass prefix, here or on a record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]byte(nil), h.attrs...)
	for _, a := range attrs {
		if a.Key == PassKey && h.prefix == "" {
			next.pass = shortPass(a.Value.String())
			continue
		}
		next.attrs = appendAttr(next.attrs, h.prefix, a)
	}
	return &next
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func shortPass(id string) string {
	if len(id) > passPrefixLen {
		return id[:passPrefixLen]
	}
	return id
}

func appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}
	if a.Value.Kind() == slog.KindGroup {
		sub := prefix
		if a.Key != "" {
			sub = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			buf = appendAttr(buf, sub, ga)
		}
		return buf
	}
	buf = append(buf, ' ')
	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	buf = append(buf, '=')
	return appendValue(buf, a.Value)
}

func appendValue(buf []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindString:
		return append(buf, v.String()...)
	case slog.KindInt64:
		return strconv.AppendInt(buf, v.Int64(), 10)
	case slog.KindBool:
		return strconv.AppendBool(buf, v.Bool())
	case slog.KindDuration:
		return append(buf, v.Duration().String()...)
	case slog.KindTime:
		return v.Time().AppendFormat(buf, time.RFC3339)
	default:
		return fmt.Append(buf, v.Any())
	}
}

func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "debug"
	case level < slog.LevelWarn:
		return "info"
	case level < slog.LevelError:
		return "warn"
	default:
		return "error"
	}
}
