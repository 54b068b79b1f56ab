package logger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeLayout = "2006-01-02T15:04:05.000Z07:00"
)

var errNoWriter = errors.New("logger: writer not initialized")

type handlerOptions struct {
	level    slog.Leveler
	out      *asyncWriter
	format   logFormat
	keyOrder []string
}

type field struct {
	key string
	val any
}

// handler renders records as one flat line. Groups become dotted key prefixes.
type handler struct {
	opts   handlerOptions
	preset []field
	prefix string
}

func newHandler(opts handlerOptions) *handler {
	if opts.level == nil {
		opts.level = slog.LevelInfo
	}
	if opts.keyOrder == nil {
		opts.keyOrder = append([]string(nil), defaultKeyOrder...)
	}
	return &handler{opts: opts}
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.preset = slices.Clone(h.preset)
	for _, a := range attrs {
		c.preset = appendAttr(c.preset, h.prefix, a)
	}
	return &c
}

func (h *handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = joinKey(h.prefix, name)
	return &c
}

func (h *handler) Handle(ctx context.Context, r slog.Record) error {
	if h.opts.out == nil {
		return errNoWriter
	}
	jsonOut := h.opts.format == formatJSON

	fields := make(map[string]any, 16+len(h.preset))
	ts := r.Time.UTC()
	fields["ts"] = ts.Truncate(time.Millisecond).Format(timeLayout)
	fields["level"] = levelName(r.Level)
	if jsonOut {
		fields["ts_unix_nano"] = ts.UnixNano()
	}
	for _, f := range h.preset {
		fields[f.key] = f.val
	}
	var recAttrs []field
	r.Attrs(func(a slog.Attr) bool {
		recAttrs = appendAttr(recAttrs, h.prefix, a)
		return true
	})
	for _, f := range recAttrs {
		fields[f.key] = f.val
	}
	addContextFields(ctx, fields)
	finalize(fields, r.Message, jsonOut)

	var line []byte
	if jsonOut {
		var err error
		if line, err = encodeJSON(fields, h.opts.keyOrder); err != nil {
			return err
		}
	} else {
		line = encodeKV(fields, h.opts.keyOrder)
	}
	return h.opts.out.Write(r.Level, append(line, '\n'))
}

// finalize fills event and component defaults, shortens the rid and drops empty values.
func finalize(fields map[string]any, msg string, keepFullRID bool) {
	if rid, ok := fields["rid"].(string); ok && rid != "" {
		if short := CompactRID(rid); short != rid {
			if _, set := fields["rid_full"]; keepFullRID && !set {
				fields["rid_full"] = rid
			}
			fields["rid"] = short
		}
	}
	if ev, _ := fields["event"].(string); ev == "" {
		if msg == "" {
			msg = "unknown"
		}
		fields["event"] = msg
	}
	if comp, _ := fields["component"].(string); comp == "" {
		fields["component"] = "app"
	}
	if st, ok := fields["status"].(string); ok {
		fields["status"] = normalizeStatus(st)
	}
	for k, v := range fields {
		if s, ok := v.(string); (ok && s == "") || v == nil {
			delete(fields, k)
		}
	}
}

func addContextFields(ctx context.Context, fields map[string]any) {
	if ctx == nil {
		return
	}
	setDefault := func(k string, v any, present bool) {
		if _, ok := fields[k]; !ok && present {
			fields[k] = v
		}
	}
	rid := RIDFrom(ctx)
	setDefault("rid", rid, rid != "")
	m := metaFrom(ctx)
	setDefault("update_id", m.updateID, m.updateID != 0)
	setDefault("user_id", m.userID, m.userID != 0)
	setDefault("chat_id", m.chatID, m.chatID != 0)
	h := HandlerFrom(ctx)
	setDefault("handler", h, h != "")
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	}
	return prefix + "." + key
}

// appendAttr flattens a into dst, normalizing values on the way.
func appendAttr(dst []field, prefix string, a slog.Attr) []field {
	v := a.Value.Resolve()
	key := joinKey(prefix, a.Key)
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			dst = appendAttr(dst, key, child)
		}
		return dst
	}
	if key == "" {
		return dst
	}
	if k, val, ok := normalizeValue(key, v); ok {
		dst = append(dst, field{key: k, val: val})
	}
	return dst
}

// msKey renames a duration key so the unit is visible: took -> took_ms.
func msKey(key string) string {
	switch {
	case key == "duration":
		return "duration_ms"
	case strings.HasSuffix(key, "_ms"):
		return key
	}
	return key + "_ms"
}

func normalizeValue(key string, v slog.Value) (string, any, bool) {
	switch v.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(v.String()), true
	case slog.KindBool:
		return key, v.Bool(), true
	case slog.KindInt64:
		return key, v.Int64(), true
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, v.Uint64(), true
	case slog.KindFloat64:
		return key, v.Float64(), true
	case slog.KindDuration:
		return msKey(key), RoundMS(v.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano), true
	}
	switch x := v.Any().(type) {
	case nil:
		return key, nil, false
	case error:
		return key, x.Error(), true
	case time.Duration:
		return msKey(key), RoundMS(x).Milliseconds(), true
	case fmt.Stringer:
		return key, x.String(), true
	case string:
		return key, strings.TrimSpace(x), true
	default:
		return key, fmt.Sprint(x), true
	}
}

// orderedKeys lists order first, then the remaining keys alphabetically.
func orderedKeys(fields map[string]any, order []string) []string {
	keys := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(order))
	for _, k := range order {
		if _, ok := fields[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	rest := make([]string, 0, len(fields)-len(keys))
	for k := range fields {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func encodeJSON(fields map[string]any, order []string) ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range orderedKeys(fields, order) {
		data, err := json.Marshal(fields[k])
		if err != nil {
			return nil, fmt.Errorf("logger: encode %s: %w", k, err)
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte(':')
		b.Write(data)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func encodeKV(fields map[string]any, order []string) []byte {
	var b strings.Builder
	for i, k := range orderedKeys(fields, order) {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(kvValue(fields[k]))
	}
	return []byte(b.String())
}

func kvValue(v any) string {
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	if strings.IndexFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) >= 0 {
		return strconv.Quote(s)
	}
	return s
}
