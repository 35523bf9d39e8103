package llc

import (
	"fmt"

	"github.com/wicstas/llc/runtime"
)

// Proxy navigates a program's variables, members, methods and functions
// from the host side. Errors stick to the proxy and surface when the
// value is finally read.
type Proxy struct {
	p      *Program
	name   string
	obj    runtime.Object
	hasObj bool
	fn     runtime.Function
	err    error
}

// Err returns the first error encountered along the navigation chain.
func (px *Proxy) Err() error { return px.err }

// Object returns the underlying Object. It aliases program storage, so
// assigning through it mutates the program.
func (px *Proxy) Object() (runtime.Object, error) {
	if px.err != nil {
		return runtime.Object{}, px.err
	}
	if !px.hasObj {
		return runtime.Object{}, fmt.Errorf("%q is not a value", px.name)
	}
	return px.obj, nil
}

// Index navigates to a member or method of the proxied value.
func (px *Proxy) Index(name string) *Proxy {
	if px.err != nil {
		return px
	}
	if !px.hasObj {
		return &Proxy{p: px.p, name: name, err: fmt.Errorf("%q is not a value", px.name)}
	}
	if member, err := px.obj.Member(name); err == nil {
		return &Proxy{p: px.p, name: name, obj: member, hasObj: true}
	}
	fn, err := px.obj.Method(name)
	if err != nil {
		return &Proxy{p: px.p, name: name, err: err}
	}
	return &Proxy{p: px.p, name: name, fn: fn}
}

// Call invokes the proxied function or method with host values. The
// result proxy is void for void functions.
func (px *Proxy) Call(args ...any) *Proxy {
	if px.err != nil {
		return px
	}
	if !px.fn.IsValid() {
		return &Proxy{p: px.p, name: px.name, err: fmt.Errorf("%q is not callable", px.name)}
	}
	objs := make([]runtime.Object, len(args))
	for i, arg := range args {
		obj, err := px.p.reg.Wrap(arg)
		if err != nil {
			return &Proxy{p: px.p, name: px.name, err: fmt.Errorf("argument %d: %w", i+1, err)}
		}
		objs[i] = obj
	}
	v, has, err := px.fn.Call(objs)
	if err != nil {
		return &Proxy{p: px.p, name: px.name, err: err}
	}
	return &Proxy{p: px.p, name: px.name, obj: v, hasObj: has}
}

// Assign writes a host value into the proxied variable or member.
func (px *Proxy) Assign(value any) error {
	obj, err := px.Object()
	if err != nil {
		return err
	}
	rhs, err := px.p.reg.Wrap(value)
	if err != nil {
		return err
	}
	return obj.Assign(rhs)
}

// As reads the proxied value as a host type; pointer types alias the
// program's storage.
func As[T any](px *Proxy) (T, error) {
	obj, err := px.Object()
	if err != nil {
		var zero T
		return zero, err
	}
	return runtime.As[T](obj)
}

// MustAs is As for tests and examples where the conversion is known to
// succeed.
func MustAs[T any](px *Proxy) T {
	v, err := As[T](px)
	if err != nil {
		panic(err)
	}
	return v
}
