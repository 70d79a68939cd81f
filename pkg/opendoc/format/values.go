package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc/props"
)

// OnOff maps a boolean-ish value to the "on"/"off" token. Values outside
// the recognized sets report false and emit nothing.
func OnOff(v any) (string, bool) {
	switch b := v.(type) {
	case nil:
		return "", false
	case bool:
		if b {
			return "on", true
		}
		return "off", true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "on", "true", "yes", "1":
			return "on", true
		case "off", "false", "no", "0":
			return "off", true
		}
		return "", false
	}
	if f, ok := toFloat(v); ok {
		switch f {
		case 1:
			return "on", true
		case 0:
			return "off", true
		}
	}
	return "", false
}

// toFloat converts numeric values and numeric strings.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// leadingFloat parses the numeric prefix of s ("12.5pt" -> 12.5).
func leadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || ((c == '-' || c == '+') && end == 0) {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// stringValue renders a scalar as an attribute value. Nil yields "".
func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		tok, _ := OnOff(s)
		return tok
	case float32, float64:
		f, _ := toFloat(s)
		if f == math.Trunc(f) {
			return strconv.FormatInt(int64(f), 10)
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func asStore(v any) (*props.Store, bool) {
	s, ok := v.(*props.Store)
	return s, ok && s != nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
