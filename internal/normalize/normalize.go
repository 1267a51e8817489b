// Package normalize turns loosely shaped JSON from the automation platform
// and its tabular store into the canonical models. Nothing here returns an
// error for a bad shape: unusable values fall back to defaults.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// maxUnwrap bounds the unwrap loop; real payloads nest two or three levels.
const maxUnwrap = 16

// Unwrap applies the value rules until the result passes through unchanged.
// The second return is false when the caller should use its fallback.
//
//   - missing or null            -> fallback
//   - {"state": "error", ...}    -> fallback
//   - {"value": v, ...}          -> v, fallback if v is falsy
//   - [v, ...]                   -> v, fallback if empty
//   - anything else              -> itself
func Unwrap(raw gjson.Result) (gjson.Result, bool) {
	cur := raw
	for i := 0; i < maxUnwrap; i++ {
		if !cur.Exists() || cur.Type == gjson.Null {
			return gjson.Result{}, false
		}
		switch {
		case cur.IsObject():
			if strings.EqualFold(cur.Get("state").String(), "error") {
				return gjson.Result{}, false
			}
			v := cur.Get("value")
			if !v.Exists() {
				return cur, true
			}
			if falsy(v) {
				return gjson.Result{}, false
			}
			cur = v
		case cur.IsArray():
			first := cur.Get("0")
			if !first.Exists() {
				return gjson.Result{}, false
			}
			cur = first
		default:
			return cur, true
		}
	}
	return gjson.Result{}, false
}

func falsy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null, gjson.False:
		return true
	case gjson.String:
		return v.Str == ""
	case gjson.Number:
		return v.Num == 0
	}
	return false
}

// String returns the unwrapped value as trimmed text, or fallback.
func String(raw gjson.Result, fallback string) string {
	v, ok := Unwrap(raw)
	if !ok || v.IsObject() || v.IsArray() {
		return fallback
	}
	s := strings.TrimSpace(v.String())
	if s == "" {
		return fallback
	}
	return s
}

// Number casts the unwrapped value to a float. Anything that does not cast
// cleanly, including NaN and infinities, is 0.
func Number(raw gjson.Result) float64 {
	v, ok := Unwrap(raw)
	if !ok {
		return 0
	}
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Num
	case gjson.True:
		f = 1
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Int is Number truncated toward zero.
func Int(raw gjson.Result) int {
	return int(Number(raw))
}

// Flag accepts the literal true or the string "true".
func Flag(raw gjson.Result) bool {
	v, ok := Unwrap(raw)
	if !ok {
		return false
	}
	if v.Type == gjson.True {
		return true
	}
	return v.Type == gjson.String && strings.EqualFold(strings.TrimSpace(v.Str), "true")
}

// Time reads an RFC3339 string or epoch milliseconds. Zero time on failure.
func Time(raw gjson.Result) time.Time {
	v, ok := Unwrap(raw)
	if !ok {
		return time.Time{}
	}
	switch v.Type {
	case gjson.Number:
		return time.UnixMilli(v.Int()).UTC()
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC()
		}
	}
	return time.Time{}
}
