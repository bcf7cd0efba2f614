package command

import (
	"errors"
	"fmt"
	"math"
	"reflect"
)

var (
	ErrUnknownKind  = errors.New("unknown command kind")
	ErrShape        = errors.New("unexpected payload shape")
	ErrNotNumber    = errors.New("value is not a number")
	ErrChannelRange = errors.New("color channel out of range [0,255]")
	ErrCoordRange   = errors.New("coordinate out of int32 range")
)

// DecodeError reports where in a payload decoding failed.
type DecodeError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("decode %s at %s: %v", e.Kind, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode turns a loosely typed host value into a typed command.
//
// Payload shapes:
//
//	set_color  [r, g, b]
//	set_pixel  [x, y, [r, g, b]]
//	draw_rect  [[x1, y1], [x2, y2]]
//	draw_line  [[x1, y1], [x2, y2]]
//	flush      ignored
//	new_frame  ignored
//
// Numbers may be of any Go integer or float type; fractions truncate
// toward zero.
func Decode(kind string, payload any) (Command, error) {
	k := Kind(kind)
	d := decoder{kind: k}
	switch k {
	case KindSetColor:
		c, err := d.color(payload, "")
		if err != nil {
			return nil, err
		}
		return SetColor{Color: c}, nil
	case KindSetPixel:
		items, err := d.list(payload, "", 3)
		if err != nil {
			return nil, err
		}
		x, err := d.coord(items[0], "[0]")
		if err != nil {
			return nil, err
		}
		y, err := d.coord(items[1], "[1]")
		if err != nil {
			return nil, err
		}
		c, err := d.color(items[2], "[2]")
		if err != nil {
			return nil, err
		}
		return SetPixel{At: Pt(x, y), Color: c}, nil
	case KindDrawRect:
		from, to, err := d.segment(payload)
		if err != nil {
			return nil, err
		}
		return DrawRect{From: from, To: to}, nil
	case KindDrawLine:
		from, to, err := d.segment(payload)
		if err != nil {
			return nil, err
		}
		return DrawLine{From: from, To: to}, nil
	case KindFlush:
		return Flush{}, nil
	case KindNewFrame:
		return NewFrame{}, nil
	default:
		return nil, &DecodeError{Kind: k, Err: ErrUnknownKind}
	}
}

type decoder struct {
	kind Kind
}

func (d decoder) fail(path string, err error) error {
	return &DecodeError{Kind: d.kind, Path: path, Err: err}
}

func (d decoder) list(v any, path string, n int) ([]any, error) {
	if v == nil {
		return nil, d.fail(path, fmt.Errorf("%w: want list of %d, got nil", ErrShape, n))
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, d.fail(path, fmt.Errorf("%w: want list of %d, got %T", ErrShape, n, v))
	}
	if rv.Len() != n {
		return nil, d.fail(path, fmt.Errorf("%w: want list of %d, got %d items", ErrShape, n, rv.Len()))
	}
	out := make([]any, n)
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

func (d decoder) segment(v any) (Point, Point, error) {
	items, err := d.list(v, "", 2)
	if err != nil {
		return Point{}, Point{}, err
	}
	from, err := d.point(items[0], "[0]")
	if err != nil {
		return Point{}, Point{}, err
	}
	to, err := d.point(items[1], "[1]")
	if err != nil {
		return Point{}, Point{}, err
	}
	return from, to, nil
}

func (d decoder) point(v any, path string) (Point, error) {
	items, err := d.list(v, path, 2)
	if err != nil {
		return Point{}, err
	}
	x, err := d.coord(items[0], path+"[0]")
	if err != nil {
		return Point{}, err
	}
	y, err := d.coord(items[1], path+"[1]")
	if err != nil {
		return Point{}, err
	}
	return Pt(x, y), nil
}

func (d decoder) coord(v any, path string) (int, error) {
	f, err := d.number(v, path)
	if err != nil {
		return 0, err
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, d.fail(path, fmt.Errorf("%w: coordinate %v overflows", ErrShape, f))
	}
	return int(f), nil
}

func (d decoder) color(v any, path string) (Color, error) {
	items, err := d.list(v, path, 3)
	if err != nil {
		return Color{}, err
	}
	var ch [3]uint8
	for i, item := range items {
		p := fmt.Sprintf("%s[%d]", path, i)
		f, err := d.number(item, p)
		if err != nil {
			return Color{}, err
		}
		f = math.Trunc(f)
		if f < 0 || f > 255 {
			return Color{}, d.fail(p, fmt.Errorf("%w: %v", ErrChannelRange, f))
		}
		ch[i] = uint8(f)
	}
	return Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}

func (d decoder) number(v any, path string) (float64, error) {
	f, err := Float(v)
	if err != nil {
		return 0, d.fail(path, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, d.fail(path, fmt.Errorf("%w: %v", ErrNotNumber, f))
	}
	return math.Trunc(f), nil
}

// Float converts any Go integer or float value to float64. NaN and
// infinities pass through unchanged.
func Float(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return 0, fmt.Errorf("%w: %T", ErrNotNumber, v)
}
