package scan

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// NumberType is the representation selected for a numeric literal.
type NumberType uint8

const (
	Int NumberType = iota
	Uint
	Long
	Ulong
	Short
	Ushort
	Byte
	Float
	Double
	Decimal
	Hex
)

var numberTypeNames = [...]string{
	Int:     "int",
	Uint:    "uint",
	Long:    "long",
	Ulong:   "ulong",
	Short:   "short",
	Ushort:  "ushort",
	Byte:    "byte",
	Float:   "float",
	Double:  "double",
	Decimal: "decimal",
	Hex:     "hex",
}

func (t NumberType) String() string {
	if int(t) < len(numberTypeNames) {
		return numberTypeNames[t]
	}
	return "NumberType(" + strconv.Itoa(int(t)) + ")"
}

var (
	ErrInvalidNumber      = errors.New("invalid number")
	ErrUnrecognizedSuffix = errors.New("unrecognized number suffix")
	ErrDisallowedType     = errors.New("number type not allowed")
)

// DetectNumberType works out which representation a literal selects and
// returns the literal with its suffix removed.
//
// A leading 0x/0X selects Hex. Otherwise a trailing letter is a type suffix:
// f (float), d (double), m (decimal), b (byte), u (unsigned int), l (long),
// s (short); a 'u' before l or s makes them unsigned. Without a suffix a
// literal holding '.', 'e' or 'E' is a Double and anything else an Int.
func DetectNumberType(text string) (NumberType, string, error) {
	if text == "" {
		return 0, "", ErrInvalidNumber
	}
	unsigned := strings.TrimLeft(text, "+-")
	if strings.HasPrefix(unsigned, "0x") || strings.HasPrefix(unsigned, "0X") {
		return Hex, text, nil
	}
	last := text[len(text)-1]
	if !isLetter(last) {
		if strings.ContainsAny(text, ".eE") {
			return Double, text, nil
		}
		return Int, text, nil
	}
	body := text[:len(text)-1]
	var t NumberType
	switch lower(last) {
	case 'f':
		t = Float
	case 'd':
		t = Double
	case 'm':
		t = Decimal
	case 'b':
		t = Byte
	case 'u':
		t = Uint
	case 'l', 's':
		t = Long
		if lower(last) == 's' {
			t = Short
		}
		if body != "" && lower(body[len(body)-1]) == 'u' {
			body = body[:len(body)-1]
			t++ // Long -> Ulong, Short -> Ushort
		}
	default:
		return 0, "", fmt.Errorf("%w %q in %q", ErrUnrecognizedSuffix, last, text)
	}
	if body == "" {
		return 0, "", fmt.Errorf("%w %q", ErrInvalidNumber, text)
	}
	return t, body, nil
}

// ParseTypedNumber parses a numeric literal into the Go type matching its
// suffix: int, uint, int64, uint64, int16, uint16, uint8, float32, float64
// or decimal.Decimal. Hex literals produce an int. When allowed is non-empty
// the detected type must be one of its entries.
func ParseTypedNumber(text string, allowed ...NumberType) (any, error) {
	t, body, err := DetectNumberType(text)
	if err != nil {
		return nil, err
	}
	if len(allowed) > 0 && !slices.Contains(allowed, t) {
		return nil, fmt.Errorf("%w: %s (%q)", ErrDisallowedType, t, text)
	}
	v, err := convertNumber(t, body)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidNumber, text, err)
	}
	return v, nil
}

func convertNumber(t NumberType, body string) (any, error) {
	switch t {
	case Int:
		i, err := strconv.ParseInt(body, 10, strconv.IntSize)
		return int(i), err
	case Hex:
		neg := strings.HasPrefix(body, "-")
		digits := strings.TrimLeft(body, "+-")[2:]
		u, err := strconv.ParseUint(digits, 16, strconv.IntSize)
		if err != nil {
			return nil, err
		}
		limit := uint64(math.MaxInt)
		if neg {
			limit++
		}
		if u > limit {
			return nil, strconv.ErrRange
		}
		if neg {
			return -int(u), nil
		}
		return int(u), nil
	case Uint:
		u, err := strconv.ParseUint(body, 10, strconv.IntSize)
		return uint(u), err
	case Long:
		return strconv.ParseInt(body, 10, 64)
	case Ulong:
		return strconv.ParseUint(body, 10, 64)
	case Short:
		i, err := strconv.ParseInt(body, 10, 16)
		return int16(i), err
	case Ushort:
		u, err := strconv.ParseUint(body, 10, 16)
		return uint16(u), err
	case Byte:
		u, err := strconv.ParseUint(body, 10, 8)
		return uint8(u), err
	case Float:
		f, err := strconv.ParseFloat(body, 32)
		return float32(f), err
	case Double:
		return strconv.ParseFloat(body, 64)
	case Decimal:
		return decimal.NewFromString(body)
	}
	return nil, fmt.Errorf("unknown number type %s", t)
}

func isLetter(c byte) bool {
	c = lower(c)
	return 'a' <= c && c <= 'z'
}
