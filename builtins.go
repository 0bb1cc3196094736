package jsoner

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"
)

// TimePath is the name time.Time is registered under unless
// Options.DisableBuiltins is set.
const TimePath = "time.Time"

func registerBuiltins(s *Serializer) error {
	_, err := RegisterFuncs[time.Time](s, TimePath, encodeTime, decodeTime)
	return err
}

// encodeTime writes {"epoch": seconds, "tz": name, "offset": seconds}.
// Local times carry a null tz and come back in the local zone.
func encodeTime(t time.Time) (any, error) {
	epoch := float64(t.Unix()) + float64(t.Nanosecond())/1e9
	var tz any
	if loc := t.Location(); loc != time.Local {
		tz = loc.String()
	}
	_, offset := t.Zone()
	return map[string]any{"epoch": epoch, "tz": tz, "offset": offset}, nil
}

func decodeTime(payload any, _ reflect.Type) (time.Time, error) {
	m, ok := payload.(map[string]any)
	if !ok {
		return time.Time{}, fmt.Errorf("time payload is %T, want object", payload)
	}
	raw, ok := m["epoch"]
	if !ok {
		raw, ok = m["timestamp"]
	}
	if !ok {
		return time.Time{}, fmt.Errorf("time payload has no epoch")
	}
	epoch, ok := toFloat(raw)
	if !ok {
		return time.Time{}, fmt.Errorf("time epoch is %T, want number", raw)
	}
	sec := math.Floor(epoch)
	usec := math.Round((epoch - sec) * 1e6)
	t := time.Unix(int64(sec), int64(usec)*int64(time.Microsecond))

	switch tz := m["tz"].(type) {
	case nil:
		return t.In(time.Local), nil
	case string:
		if loc, err := time.LoadLocation(tz); err == nil {
			return t.In(loc), nil
		}
		off, ok := toFloat(m["offset"])
		if !ok {
			return time.Time{}, fmt.Errorf("unknown time zone %q", tz)
		}
		return t.In(time.FixedZone(tz, int(off))), nil
	default:
		return time.Time{}, fmt.Errorf("time zone is %T, want string", tz)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}
