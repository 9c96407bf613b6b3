package option

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// YesNoAsk is a three-way policy value such as the autoreload option.
type YesNoAsk uint8

const (
	// No never performs the action.
	No YesNoAsk = iota
	// Yes always performs the action without asking.
	Yes
	// Ask prompts the user before acting.
	Ask
)

// String returns the canonical token for the policy.
func (v YesNoAsk) String() string {
	switch v {
	case Yes:
		return "yes"
	case No:
		return "no"
	case Ask:
		return "ask"
	default:
		return fmt.Sprintf("unknown(%d)", v)
	}
}

// ParseYesNoAsk parses a policy token.
// "always" and "never" are accepted as synonyms for yes and no.
func ParseYesNoAsk(s string) (YesNoAsk, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "always", "true":
		return Yes, nil
	case "no", "never", "false":
		return No, nil
	case "ask":
		return Ask, nil
	default:
		return No, fmt.Errorf("invalid yes/no/ask value %q: %w", s, ErrTypeMismatch)
	}
}

// Option is a dynamically typed option value.
//
// The zero Option holds no value; it is what a mutable lookup materializes
// for a name no scope declares.
type Option struct {
	value any
}

// New returns an Option holding v.
func New(v any) Option {
	return Option{value: v}
}

// Value returns the raw stored value.
func (o Option) Value() any {
	return o.value
}

// IsSet reports whether the option holds a value.
func (o Option) IsSet() bool {
	return o.value != nil
}

// Set replaces the stored value.
func (o *Option) Set(v any) {
	o.value = v
}

// String renders the value for display.
func (o Option) String() string {
	if o.value == nil {
		return ""
	}
	return fmt.Sprint(o.value)
}

// Str returns the value as a string.
func (o Option) Str() (string, error) {
	switch v := o.value.(type) {
	case string:
		return v, nil
	case YesNoAsk:
		return v.String(), nil
	default:
		return "", &TypeError{Expected: "string", Actual: typeName(o.value)}
	}
}

// Int returns the value as an int.
// Integral floats and numeric strings are converted.
func (o Option) Int() (int, error) {
	switch v := o.value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v == math.Trunc(v) {
			return int(v), nil
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, nil
		}
	}
	return 0, &TypeError{Expected: "int", Actual: typeName(o.value)}
}

// Bool returns the value as a bool.
func (o Option) Bool() (bool, error) {
	switch v := o.value.(type) {
	case bool:
		return v, nil
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b, nil
		}
	}
	return false, &TypeError{Expected: "bool", Actual: typeName(o.value)}
}

// YesNoAsk returns the value as a policy.
// Strings are parsed with ParseYesNoAsk and booleans map to yes/no.
func (o Option) YesNoAsk() (YesNoAsk, error) {
	switch v := o.value.(type) {
	case YesNoAsk:
		return v, nil
	case bool:
		if v {
			return Yes, nil
		}
		return No, nil
	case string:
		p, err := ParseYesNoAsk(v)
		if err != nil {
			return No, &TypeError{Expected: "yes/no/ask", Actual: strconv.Quote(v)}
		}
		return p, nil
	}
	return No, &TypeError{Expected: "yes/no/ask", Actual: typeName(o.value)}
}

func typeName(v any) string {
	if v == nil {
		return "unset"
	}
	return fmt.Sprintf("%T", v)
}
