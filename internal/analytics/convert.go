package analytics

import "fmt"

const convertOp = "convert"

// numericKind is the source width of a converted element
type numericKind int

const (
	kindNone numericKind = iota
	kindInt32
	kindInt64
	kindFloat32
	kindFloat64
)

func (k numericKind) String() string {
	switch k {
	case kindInt32:
		return "int32"
	case kindInt64:
		return "int64"
	case kindFloat32:
		return "float32"
	case kindFloat64:
		return "float64"
	default:
		return "none"
	}
}

// ToFloat64 converts a single supported numeric value to float64.
// Supports: int32, int64, float32, float64 (int is accepted as int64).
// A nil value yields ErrInvalidInput, anything else ErrUnsupportedType.
func ToFloat64(v interface{}) (float64, error) {
	f, _, err := toFloat64(v)
	return f, err
}

func toFloat64(v interface{}) (float64, numericKind, error) {
	if v == nil {
		return 0, kindNone, Errorf(convertOp, ErrInvalidInput, "missing value")
	}

	switch val := v.(type) {
	case float64:
		return val, kindFloat64, nil
	case float32:
		return float64(val), kindFloat32, nil
	case int64:
		return float64(val), kindInt64, nil
	case int:
		return float64(val), kindInt64, nil
	case int32:
		return float64(val), kindInt32, nil
	default:
		return 0, kindNone, Errorf(convertOp, ErrUnsupportedType,
			"%T is not one of int32/int64/float32/float64", v)
	}
}

// ToSequence normalizes a numeric sequence into float64 values, same length
// and order. Accepted inputs are []float64, []float32, []int64, []int32, []int,
// pointer slices of those (a nil element is a missing value) and []interface{}
// whose elements all share one supported kind.
func ToSequence(v interface{}) ([]float64, error) {
	var (
		out []float64
		err error
	)

	switch vals := v.(type) {
	case nil:
		return nil, Errorf(convertOp, ErrInvalidInput, "sequence is null")
	case []float64:
		out = make([]float64, len(vals))
		copy(out, vals)
	case []float32:
		out = convertSlice(vals)
	case []int64:
		out = convertSlice(vals)
	case []int32:
		out = convertSlice(vals)
	case []int:
		out = convertSlice(vals)
	case []*float64:
		out, err = convertPointers(vals)
	case []*float32:
		out, err = convertPointers(vals)
	case []*int64:
		out, err = convertPointers(vals)
	case []*int32:
		out, err = convertPointers(vals)
	case []interface{}:
		out, err = convertInterfaces(vals)
	default:
		return nil, Errorf(convertOp, ErrUnsupportedType, "unsupported sequence type %T", v)
	}
	if err != nil {
		return nil, err
	}

	if len(out) == 0 {
		return nil, Errorf(convertOp, ErrInsufficientData, "empty sequence")
	}
	return out, nil
}

type number interface {
	~float64 | ~float32 | ~int64 | ~int32 | ~int
}

func convertSlice[T number](vals []T) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = float64(v)
	}
	return out
}

func convertPointers[T number](vals []*T) ([]float64, error) {
	out := make([]float64, len(vals))
	for i, v := range vals {
		if v == nil {
			return nil, Errorf(convertOp, ErrInvalidInput, "null value at index %d", i)
		}
		out[i] = float64(*v)
	}
	return out, nil
}

func convertInterfaces(vals []interface{}) ([]float64, error) {
	out := make([]float64, len(vals))
	seen := kindNone
	for i, v := range vals {
		f, kind, err := toFloat64(v)
		if err != nil {
			return nil, indexed(err, i)
		}
		if seen != kindNone && kind != seen {
			return nil, Errorf(convertOp, ErrUnsupportedType,
				"mixed element types: %s at index %d after %s", kind, i, seen)
		}
		seen = kind
		out[i] = f
	}
	return out, nil
}

// indexed rewrites a conversion error so the message names the element index.
func indexed(err error, i int) error {
	e, ok := err.(*Error)
	if !ok {
		return err
	}
	return &Error{
		Op:   e.Op,
		Kind: e.Kind,
		Msg:  fmt.Sprintf("%s at index %d", e.Msg, i),
	}
}
