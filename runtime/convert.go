package runtime

import (
	"fmt"
	"reflect"
)

// convertObject marshals an Object into a host value of type t. It
// returns false on any mismatch; constructor resolution and AsOpt build
// on it. Arithmetic targets accept any arithmetic-coercible source with a
// C-style conversion; everything else requires an exact type match. A
// pointer target aliases the object's storage.
func convertObject(o Object, t reflect.Type) (reflect.Value, bool) {
	if o.base == nil {
		return reflect.Value{}, false
	}
	switch s := o.base.(type) {
	case *hostStorage:
		if t == s.val.Type() {
			out := reflect.New(t).Elem()
			out.Set(s.val)
			return out, true
		}
		if t.Kind() == reflect.Pointer && t.Elem() == s.val.Type() && s.val.CanAddr() {
			return s.val.Addr(), true
		}
		if f, ok := numericOf(s.val); ok {
			out := reflect.New(t).Elem()
			if isNumeric(t.Kind()) {
				setNumeric(out, f)
				return out, true
			}
			if t.Kind() == reflect.Bool {
				out.SetBool(f != 0)
				return out, true
			}
		}
		return reflect.Value{}, false
	case *pointerStorage:
		if t == s.val.Type() {
			out := reflect.New(t).Elem()
			out.Set(s.val)
			return out, true
		}
		return reflect.Value{}, false
	default:
		return reflect.Value{}, false
	}
}

// AsOpt converts an Object to a host value; the second result is false
// on mismatch. It never fails any other way.
func AsOpt[T any](o Object) (T, bool) {
	var zero T
	t := reflect.TypeOf(&zero).Elem()
	v, ok := convertObject(o, t)
	if !ok {
		return zero, false
	}
	return v.Interface().(T), true
}

// As converts an Object to a host value and fails exactly when AsOpt
// would be empty.
func As[T any](o Object) (T, error) {
	v, ok := AsOpt[T](o)
	if !ok {
		var zero T
		if o.base == nil {
			return zero, fmt.Errorf("cannot convert void to type %q", reflect.TypeOf(&zero).Elem())
		}
		return zero, fmt.Errorf("cannot convert type %q to type %q", o.base.typeName(), reflect.TypeOf(&zero).Elem())
	}
	return v, nil
}

// Truthy reads the object as a condition, C-style.
func (o Object) Truthy() (bool, error) {
	if o.base == nil {
		return false, fmt.Errorf("void used as a condition")
	}
	if h, ok := o.base.(*hostStorage); ok {
		if h.val.Kind() == reflect.Bool {
			return h.val.Bool(), nil
		}
		if f, ok := numericOf(h.val); ok {
			return f != 0, nil
		}
	}
	return false, fmt.Errorf("type %q cannot be used as a condition", o.base.typeName())
}
