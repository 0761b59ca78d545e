package convert

import (
	"fmt"
	"math"
	"reflect"

	"github.com/spf13/cast"
)

// Func is an AttributeConverter built from a pair of typed transform functions.
// Its declared types are taken from the functions themselves.
type Func[D, R any] struct {
	to   func(D) (R, error)
	from func(R) (D, error)
}

// New creates a converter from typed transform functions
func New[D, R any](to func(D) (R, error), from func(R) (D, error)) *Func[D, R] {
	return &Func[D, R]{to: to, from: from}
}

// DomainType implements AttributeConverter
func (f *Func[D, R]) DomainType() reflect.Type {
	return reflect.TypeOf((*D)(nil)).Elem()
}

// RelationalType implements AttributeConverter
func (f *Func[D, R]) RelationalType() reflect.Type {
	return reflect.TypeOf((*R)(nil)).Elem()
}

// ToRelational implements AttributeConverter
func (f *Func[D, R]) ToRelational(v any) (any, error) {
	d, err := coerce[D](v)
	if err != nil {
		return nil, err
	}
	return f.to(d)
}

// ToDomain implements AttributeConverter. Drivers rarely hand back the exact
// relational type (int64 for an int32 column, []byte for text), so convertible
// values are accepted.
func (f *Func[D, R]) ToDomain(v any) (any, error) {
	r, err := coerce[R](v)
	if err != nil {
		return nil, err
	}
	return f.from(r)
}

// coerce returns v as a T, converting between numeric kinds and between string
// and []byte where Go allows it. Numeric conversions must be exact.
func coerce[T any](v any) (T, error) {
	var zero T
	if t, ok := v.(T); ok {
		return t, nil
	}

	target := reflect.TypeOf((*T)(nil)).Elem()
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return zero, fmt.Errorf("%w: nil is not a %s", ErrConversion, target)
	}
	if !convertible(rv.Type(), target) {
		return zero, fmt.Errorf("%w: %T is not a %s", ErrConversion, v, target)
	}
	if isNumeric(rv.Kind()) {
		if err := exactNumber(rv, target); err != nil {
			return zero, err
		}
	}
	return rv.Convert(target).Interface().(T), nil
}

// exactNumber fails unless rv converts to target without wrapping, truncation
// or overflow
func exactNumber(rv reflect.Value, target reflect.Type) error {
	out := reflect.New(target).Elem()
	switch {
	case isInt(rv.Kind()):
		n := rv.Int()
		switch {
		case isInt(target.Kind()):
			if out.OverflowInt(n) {
				return fmt.Errorf("%w: %d overflows %s", ErrConversion, n, target)
			}
		case isUint(target.Kind()):
			if n < 0 || out.OverflowUint(uint64(n)) {
				return fmt.Errorf("%w: %d overflows %s", ErrConversion, n, target)
			}
		default:
			if int64(rv.Convert(target).Float()) != n {
				return fmt.Errorf("%w: %d is not exact as %s", ErrConversion, n, target)
			}
		}

	case isUint(rv.Kind()):
		n := rv.Uint()
		switch {
		case isInt(target.Kind()):
			if n > math.MaxInt64 || out.OverflowInt(int64(n)) {
				return fmt.Errorf("%w: %d overflows %s", ErrConversion, n, target)
			}
		case isUint(target.Kind()):
			if out.OverflowUint(n) {
				return fmt.Errorf("%w: %d overflows %s", ErrConversion, n, target)
			}
		default:
			if uint64(rv.Convert(target).Float()) != n {
				return fmt.Errorf("%w: %d is not exact as %s", ErrConversion, n, target)
			}
		}

	default:
		f := rv.Float()
		if isInt(target.Kind()) || isUint(target.Kind()) {
			if _, err := exactInt(f); err != nil {
				return err
			}
			if isInt(target.Kind()) && out.OverflowInt(int64(f)) {
				return fmt.Errorf("%w: %v overflows %s", ErrConversion, f, target)
			}
			if isUint(target.Kind()) && (f < 0 || out.OverflowUint(uint64(f))) {
				return fmt.Errorf("%w: %v overflows %s", ErrConversion, f, target)
			}
			return nil
		}
		if out.OverflowFloat(f) {
			return fmt.Errorf("%w: %v overflows %s", ErrConversion, f, target)
		}
	}
	return nil
}

// exactInt returns f as an int64 when it is a whole number in range
func exactInt(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %v is not a whole number", ErrConversion, f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %v overflows int64", ErrConversion, f)
	}
	return int64(f), nil
}

// toInt64 reads an integer from a driver value. Whole floats and numeric
// strings are accepted; fractions are not.
func toInt64(v any) (int64, error) {
	switch f := v.(type) {
	case float64:
		return exactInt(f)
	case float32:
		return exactInt(float64(f))
	case uint64:
		if f > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d overflows int64", ErrConversion, f)
		}
	case uint:
		if uint64(f) > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d overflows int64", ErrConversion, f)
		}
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return n, nil
}

func convertible(from, to reflect.Type) bool {
	if !from.ConvertibleTo(to) {
		return false
	}
	switch {
	case isNumeric(from.Kind()) && isNumeric(to.Kind()):
		return true
	case from.Kind() == reflect.Slice && from.Elem().Kind() == reflect.Uint8 && to.Kind() == reflect.String:
		return true
	case from.Kind() == reflect.String && to.Kind() == reflect.Slice:
		return true
	default:
		return false
	}
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

func isNumeric(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || k == reflect.Float32 || k == reflect.Float64
}
