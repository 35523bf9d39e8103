package runtime

import (
	"fmt"
	"reflect"

	"github.com/wicstas/llc/token"
)

// hostStorage wraps one concrete host value. val is always addressable,
// either owning storage allocated at wrap time or a reference view into a
// parent object (field accessors, slice elements, pointees).
type hostStorage struct {
	info *TypeInfo
	val  reflect.Value
}

func (h *hostStorage) typeName() string { return h.info.name }

func (h *hostStorage) clone() storage {
	fresh := reflect.New(h.info.typ).Elem()
	fresh.Set(h.val)
	return &hostStorage{info: h.info, val: fresh}
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

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// numericOf reads any arithmetic-coercible value (the sized integers,
// float, double, bool) as a float64, C-style.
func numericOf(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.Bool:
		if v.Bool() {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// setNumeric stores a float64 into a numeric destination with a C-style
// truncating conversion.
func setNumeric(dst reflect.Value, f float64) {
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		dst.SetInt(int64(f))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		dst.SetUint(uint64(int64(f)))
	case reflect.Float32, reflect.Float64:
		dst.SetFloat(f)
	default:
		check(false, "destination is numeric")
	}
}

func (h *hostStorage) opError(op string) error {
	return fmt.Errorf("type %q does not have operator %q", h.info.name, op)
}

func (h *hostStorage) arith(op byte, rhs storage) error {
	allowed := false
	switch op {
	case '+':
		allowed = h.info.ops.add
	case '-':
		allowed = h.info.ops.sub
	case '*':
		allowed = h.info.ops.mul
	case '/':
		allowed = h.info.ops.div
	}
	if !allowed {
		return h.opError(string(op))
	}
	r, ok := rhs.(*hostStorage)
	if !ok {
		return fmt.Errorf("cannot apply operator %q between %q and %q", string(op), h.info.name, rhs.typeName())
	}

	if h.val.Kind() == reflect.String {
		if r.val.Kind() != reflect.String {
			return fmt.Errorf("cannot apply operator %q between %q and %q", string(op), h.info.name, r.info.name)
		}
		h.val.SetString(h.val.String() + r.val.String())
		return nil
	}

	rf, ok := numericOf(r.val)
	if !ok {
		return fmt.Errorf("cannot apply operator %q between %q and %q", string(op), h.info.name, r.info.name)
	}

	if isFloat(h.val.Kind()) {
		lf := h.val.Float()
		switch op {
		case '+':
			lf += rf
		case '-':
			lf -= rf
		case '*':
			lf *= rf
		case '/':
			lf /= rf
		}
		h.val.SetFloat(lf)
		return nil
	}

	// integer lhs: C-style integer arithmetic
	li, _ := numericOf(h.val)
	l, r64 := int64(li), int64(rf)
	switch op {
	case '+':
		l += r64
	case '-':
		l -= r64
	case '*':
		l *= r64
	case '/':
		if r64 == 0 {
			return fmt.Errorf("division by zero")
		}
		l /= r64
	}
	setNumeric(h.val, float64(l))
	return nil
}

func (h *hostStorage) compare(op token.Kind, rhs storage) (bool, error) {
	ordered := op&(token.LessThan|token.LessEqual|token.GreaterThan|token.GreaterEqual) != 0
	if ordered && !h.info.ops.ord {
		return false, h.opError(op.String())
	}
	if !ordered && !h.info.ops.eq {
		return false, h.opError(op.String())
	}
	r, ok := rhs.(*hostStorage)
	if !ok {
		return false, fmt.Errorf("cannot compare %q with %q", h.info.name, rhs.typeName())
	}

	if h.val.Kind() == reflect.String && r.val.Kind() == reflect.String {
		return compareOrdered(op, h.val.String(), r.val.String()), nil
	}
	if lf, ok := numericOf(h.val); ok {
		rf, ok := numericOf(r.val)
		if !ok {
			return false, fmt.Errorf("cannot compare %q with %q", h.info.name, r.info.name)
		}
		return compareOrdered(op, lf, rf), nil
	}
	if h.info.typ != r.info.typ {
		return false, fmt.Errorf("cannot compare %q with %q", h.info.name, r.info.name)
	}
	eq := h.val.Interface() == r.val.Interface()
	switch op {
	case token.Equal:
		return eq, nil
	case token.NotEqual:
		return !eq, nil
	}
	return false, h.opError(op.String())
}

func compareOrdered[T string | float64](op token.Kind, l, r T) bool {
	switch op {
	case token.LessThan:
		return l < r
	case token.LessEqual:
		return l <= r
	case token.GreaterThan:
		return l > r
	case token.GreaterEqual:
		return l >= r
	case token.Equal:
		return l == r
	case token.NotEqual:
		return l != r
	}
	check(false, "op is a comparison")
	return false
}

func (h *hostStorage) negate() (storage, error) {
	if !h.info.ops.neg {
		return nil, h.opError("-")
	}
	fresh := reflect.New(h.info.typ).Elem()
	if isFloat(h.val.Kind()) {
		fresh.SetFloat(-h.val.Float())
	} else {
		f, _ := numericOf(h.val)
		setNumeric(fresh, -f)
	}
	return &hostStorage{info: h.info, val: fresh}, nil
}

func (h *hostStorage) incDec(delta int, post bool) (storage, error) {
	if !h.info.ops.incDec {
		op := "++"
		if delta < 0 {
			op = "--"
		}
		return nil, h.opError(op)
	}
	old := h.clone()
	if isFloat(h.val.Kind()) {
		h.val.SetFloat(h.val.Float() + float64(delta))
	} else {
		f, _ := numericOf(h.val)
		setNumeric(h.val, f+float64(delta))
	}
	if post {
		return old, nil
	}
	return h.clone(), nil
}

func (h *hostStorage) length() int {
	return h.val.Len()
}

func (h *hostStorage) element(index int) (Object, error) {
	if !h.info.ops.index {
		return Object{}, h.opError("[]")
	}
	n := h.length()
	if index < 0 || index >= n {
		return Object{}, fmt.Errorf("array index %d out of range [0, %d)", index, n)
	}
	if h.val.Kind() == reflect.String {
		b := h.val.String()[index]
		return h.info.reg.Wrap(b)
	}
	return h.info.reg.wrapValue(h.val.Index(index))
}

func (h *hostStorage) setElement(index int, v Object) error {
	if !h.info.ops.index {
		return h.opError("[]")
	}
	if h.val.Kind() == reflect.String {
		return fmt.Errorf("cannot assign into an element of %q", h.info.name)
	}
	elem, err := h.element(index)
	if err != nil {
		return err
	}
	return elem.Assign(v)
}

func (h *hostStorage) member(name string) (Object, error) {
	acc, ok := h.info.fields[name]
	if !ok {
		return Object{}, fmt.Errorf("type %q has no member %q", h.info.name, name)
	}
	return h.info.reg.wrapValue(h.val.FieldByIndex(acc.index))
}

func (h *hostStorage) method(name string) (Function, bool) {
	m, ok := h.info.methods[name]
	if !ok {
		return Function{}, false
	}
	check(h.val.CanAddr(), "host storage is addressable")
	return Function{base: &hostFunction{reg: h.info.reg, fn: m.Func, recv: h.val.Addr()}}, true
}

func (h *hostStorage) assign(src storage) error {
	r, ok := src.(*hostStorage)
	if !ok {
		return fmt.Errorf("cannot assign type %q to type %q", src.typeName(), h.info.name)
	}
	if r.info.typ == h.info.typ {
		h.val.Set(r.val)
		return nil
	}
	if f, ok := numericOf(r.val); ok && isNumeric(h.val.Kind()) {
		setNumeric(h.val, f)
		return nil
	}
	return fmt.Errorf("cannot assign type %q to type %q", r.info.name, h.info.name)
}

func (h *hostStorage) alloc() (storage, error) {
	ptr := reflect.New(h.info.typ)
	ptr.Elem().Set(h.val)
	holder := reflect.New(ptr.Type()).Elem()
	holder.Set(ptr)
	return &pointerStorage{name: h.info.name + "*", elem: h.info, val: holder}, nil
}

func (h *hostStorage) construct(args []Object) (Object, error) {
	for _, c := range h.info.ctors {
		if len(c.params) != len(args) {
			continue
		}
		in := make([]reflect.Value, len(args))
		viable := true
		for i, arg := range args {
			v, ok := convertObject(arg, c.params[i])
			if !ok {
				viable = false
				break
			}
			in[i] = v
		}
		if !viable {
			continue
		}
		out := c.fn.Call(in)
		return h.info.reg.Wrap(out[0].Interface())
	}
	return Object{}, fmt.Errorf("no viable constructor for type %q with %d argument(s)", h.info.name, len(args))
}

// pointerStorage holds a single-level pointer produced by the new
// operator. Member and method access go through the pointee; further
// allocation is rejected.
type pointerStorage struct {
	name string
	elem *TypeInfo
	val  reflect.Value // addressable value of kind pointer
}

func (p *pointerStorage) typeName() string { return p.name }

func (p *pointerStorage) clone() storage {
	fresh := reflect.New(p.val.Type()).Elem()
	fresh.Set(p.val)
	return &pointerStorage{name: p.name, elem: p.elem, val: fresh}
}

func (p *pointerStorage) assign(src storage) error {
	r, ok := src.(*pointerStorage)
	if !ok || r.name != p.name {
		return fmt.Errorf("cannot assign type %q to type %q", src.typeName(), p.name)
	}
	p.val.Set(r.val)
	return nil
}

func (p *pointerStorage) deref() *hostStorage {
	check(!p.val.IsNil(), "pointer is not nil")
	return &hostStorage{info: p.elem, val: p.val.Elem()}
}

func (p *pointerStorage) arith(op byte, rhs storage) error {
	return fmt.Errorf("type %q does not have operator %q", p.name, string(op))
}

func (p *pointerStorage) compare(op token.Kind, rhs storage) (bool, error) {
	r, ok := rhs.(*pointerStorage)
	if !ok || r.name != p.name {
		return false, fmt.Errorf("cannot compare %q with %q", p.name, rhs.typeName())
	}
	switch op {
	case token.Equal:
		return p.val.Pointer() == r.val.Pointer(), nil
	case token.NotEqual:
		return p.val.Pointer() != r.val.Pointer(), nil
	}
	return false, fmt.Errorf("type %q does not have operator %q", p.name, op)
}

func (p *pointerStorage) negate() (storage, error) {
	return nil, fmt.Errorf("type %q does not have operator \"-\"", p.name)
}

func (p *pointerStorage) incDec(delta int, post bool) (storage, error) {
	return nil, fmt.Errorf("type %q does not have operator \"++\"", p.name)
}

func (p *pointerStorage) element(index int) (Object, error) {
	return p.deref().element(index)
}

func (p *pointerStorage) setElement(index int, v Object) error {
	return p.deref().setElement(index, v)
}

func (p *pointerStorage) member(name string) (Object, error) {
	return p.deref().member(name)
}

func (p *pointerStorage) method(name string) (Function, bool) {
	return p.deref().method(name)
}

func (p *pointerStorage) alloc() (storage, error) {
	return nil, fmt.Errorf("multi-level indirection is not supported")
}

func (p *pointerStorage) construct(args []Object) (Object, error) {
	return Object{}, fmt.Errorf("cannot construct type %q", p.name)
}
