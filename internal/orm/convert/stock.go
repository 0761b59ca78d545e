package convert

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stock converter references
const (
	YesNo          = "yes_no"
	TrueFalse      = "true_false"
	NumericBoolean = "numeric_boolean"
	UUIDText       = "uuid_text"
	UnixSeconds    = "unix_seconds"
)

// RegisterStock registers the stock converters under their references
func RegisterStock(r *Registry) error {
	stock := map[string]Factory{
		YesNo:          func() (AttributeConverter, error) { return charBoolean("Y", "N"), nil },
		TrueFalse:      func() (AttributeConverter, error) { return charBoolean("T", "F"), nil },
		NumericBoolean: func() (AttributeConverter, error) { return numericBoolean(), nil },
		UUIDText:       func() (AttributeConverter, error) { return uuidText(), nil },
		UnixSeconds:    func() (AttributeConverter, error) { return unixSeconds(), nil },
	}

	for ref, factory := range stock {
		if err := r.Register(ref, Registration{Factory: factory}); err != nil {
			return err
		}
	}
	return nil
}

func charBoolean(yes, no string) AttributeConverter {
	return New(
		func(b bool) (string, error) {
			if b {
				return yes, nil
			}
			return no, nil
		},
		func(s string) (bool, error) {
			switch s {
			case yes:
				return true, nil
			case no:
				return false, nil
			default:
				return false, fmt.Errorf("%w: expected %q or %q, got %q", ErrConversion, yes, no, s)
			}
		},
	)
}

func numericBoolean() AttributeConverter {
	return New(
		func(b bool) (int32, error) {
			if b {
				return 1, nil
			}
			return 0, nil
		},
		func(n int32) (bool, error) {
			switch n {
			case 1:
				return true, nil
			case 0:
				return false, nil
			default:
				return false, fmt.Errorf("%w: expected 0 or 1, got %d", ErrConversion, n)
			}
		},
	)
}

func uuidText() AttributeConverter {
	return New(
		func(id uuid.UUID) (string, error) { return id.String(), nil },
		func(s string) (uuid.UUID, error) { return uuid.Parse(s) },
	)
}

func unixSeconds() AttributeConverter {
	return New(
		func(t time.Time) (int64, error) { return t.Unix(), nil },
		func(n int64) (time.Time, error) { return time.Unix(n, 0).UTC(), nil },
	)
}
