package ecs

import (
	"fmt"
	"math"
	"reflect"
	"unicode"
	"unicode/utf8"
)

var (
	worldType  = reflect.TypeOf((*World)(nil))
	configType = reflect.TypeOf(Config(nil))
	slotType   = reflect.TypeOf((*Slot)(nil))
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
)

// CallSystem invokes method on the first configured instance whose kind name
// or "instance" alias equals name, passing that instance's configuration and
// slot followed by args.
//
// Kinds implementing Caller receive the call directly. Otherwise method is
// resolved as an exported Go method (the first letter is upper-cased) with
// the signature func(*World, Config, *Slot, args...) returning at most a
// value and an error.
func (w *World) CallSystem(name, method string, args ...any) (result any, err error) {
	i := w.find(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSystem, name)
	}
	cfg, kind, ok := w.lookup(i)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not installed", ErrUnknownSystem, cfg.Name())
	}
	slot := w.rt.slot(i)

	err = protect(func() error {
		var callErr error
		if c, ok := kind.(Caller); ok {
			result, callErr = c.Call(w, cfg, slot, method, args...)
		} else {
			result, callErr = callMethod(kind, method, w, cfg, slot, args)
		}
		return callErr
	})
	return result, err
}

func exportedName(method string) string {
	r, size := utf8.DecodeRuneInString(method)
	if r == utf8.RuneError {
		return method
	}
	return string(unicode.ToUpper(r)) + method[size:]
}

func callMethod(kind SystemKind, method string, w *World, cfg Config, slot *Slot, args []any) (any, error) {
	m := reflect.ValueOf(kind).MethodByName(exportedName(method))
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: %s has no method %q", ErrUnknownMethod, cfg.Name(), method)
	}

	mt := m.Type()
	in, err := buildArgs(mt, w, cfg, slot, args)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", cfg.Name(), method, err)
	}

	out := m.Call(in)
	return splitResults(out)
}

func buildArgs(mt reflect.Type, w *World, cfg Config, slot *Slot, args []any) ([]reflect.Value, error) {
	const fixed = 3

	n := mt.NumIn()
	if n < fixed || mt.In(0) != worldType || mt.In(1) != configType || mt.In(2) != slotType {
		return nil, fmt.Errorf("%w: method must accept (*World, Config, *Slot, ...)", ErrBadArguments)
	}

	want := n - fixed
	if mt.IsVariadic() {
		if len(args) < want-1 {
			return nil, fmt.Errorf("%w: want at least %d arguments, got %d", ErrBadArguments, want-1, len(args))
		}
	} else if len(args) != want {
		return nil, fmt.Errorf("%w: want %d arguments, got %d", ErrBadArguments, want, len(args))
	}

	in := make([]reflect.Value, 0, fixed+len(args))
	in = append(in, reflect.ValueOf(w), reflect.ValueOf(cfg), reflect.ValueOf(slot))
	for j, arg := range args {
		var pt reflect.Type
		if mt.IsVariadic() && fixed+j >= n-1 {
			pt = mt.In(n - 1).Elem()
		} else {
			pt = mt.In(fixed + j)
		}

		v, err := convertArg(arg, pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", j, err)
		}
		in = append(in, v)
	}
	return in, nil
}

func convertArg(arg any, pt reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch pt.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(pt), nil
		}
		return reflect.Value{}, fmt.Errorf("%w: nil is not a valid %s", ErrBadArguments, pt)
	}

	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(pt) {
		return v, nil
	}
	if isNumeric(v.Kind()) && isNumeric(pt.Kind()) {
		return convertNumber(v, pt)
	}
	return reflect.Value{}, fmt.Errorf("%w: %s is not assignable to %s", ErrBadArguments, v.Type(), pt)
}

// convertNumber converts v to pt. Integer targets reject values out of
// range and floats with a fractional part.
func convertNumber(v reflect.Value, pt reflect.Type) (reflect.Value, error) {
	out := reflect.New(pt).Elem()
	bad := func() (reflect.Value, error) {
		return reflect.Value{}, fmt.Errorf("%w: %v does not fit %s", ErrBadArguments, v.Interface(), pt)
	}

	switch {
	case out.CanFloat():
		var f float64
		switch {
		case v.CanInt():
			f = float64(v.Int())
		case v.CanUint():
			f = float64(v.Uint())
		default:
			f = v.Float()
		}
		if out.OverflowFloat(f) {
			return bad()
		}
		out.SetFloat(f)

	case out.CanInt():
		switch {
		case v.CanInt():
			if out.OverflowInt(v.Int()) {
				return bad()
			}
			out.SetInt(v.Int())
		case v.CanUint():
			if v.Uint() > math.MaxInt64 || out.OverflowInt(int64(v.Uint())) {
				return bad()
			}
			out.SetInt(int64(v.Uint()))
		default:
			f := v.Float()
			if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 || out.OverflowInt(int64(f)) {
				return bad()
			}
			out.SetInt(int64(f))
		}

	case out.CanUint():
		switch {
		case v.CanInt():
			if v.Int() < 0 || out.OverflowUint(uint64(v.Int())) {
				return bad()
			}
			out.SetUint(uint64(v.Int()))
		case v.CanUint():
			if out.OverflowUint(v.Uint()) {
				return bad()
			}
			out.SetUint(v.Uint())
		default:
			f := v.Float()
			if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 || out.OverflowUint(uint64(f)) {
				return bad()
			}
			out.SetUint(uint64(f))
		}
	}
	return out, nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func splitResults(out []reflect.Value) (any, error) {
	var (
		result any
		err    error
	)
	for _, v := range out {
		if v.Type() == errorType {
			if !v.IsNil() {
				err = v.Interface().(error)
			}
			continue
		}
		if result == nil {
			result = v.Interface()
		}
	}
	return result, err
}
