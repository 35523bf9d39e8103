package runtime

import (
	"fmt"

	"github.com/wicstas/llc/token"
)

// Object is a handle over exactly one storage, or void. Copying an Object
// shares the storage (accessor-returned members and variable references
// alias into their parent); Clone produces a copy with its own storage.
type Object struct {
	base storage
}

// storage is the type-erased operation set every value implements. It has
// two cases: hostStorage wraps a concrete host value and dispatches
// operators picked at bind time; scriptStorage is a member map with
// member-wise operators.
type storage interface {
	typeName() string
	clone() storage
	assign(src storage) error
	arith(op byte, rhs storage) error // mutating '+', '-', '*', '/'
	compare(op token.Kind, rhs storage) (bool, error)
	negate() (storage, error)
	incDec(delta int, post bool) (storage, error)
	element(index int) (Object, error)
	setElement(index int, v Object) error
	member(name string) (Object, error)
	method(name string) (Function, bool)
	alloc() (storage, error)
	construct(args []Object) (Object, error)
}

// Void returns the void Object.
func Void() Object { return Object{} }

// IsVoid reports whether the handle owns no storage.
func (o Object) IsVoid() bool { return o.base == nil }

// TypeName returns the runtime type name. Void objects have none.
func (o Object) TypeName() string {
	check(o.base != nil, "object is not void")
	return o.base.typeName()
}

// Clone returns a copy with its own storage. A host value is copied one
// level deep, the way Go assigns it: slices, maps and pointers inside it
// still share their backing data, and a pointer Object's clone shares its
// pointee. Script objects clone each member. For host-backed objects the
// bound methods of the clone operate on the clone's storage.
func (o Object) Clone() Object {
	if o.base == nil {
		return Object{}
	}
	return Object{base: o.base.clone()}
}

// Assign adopts the contents of rhs into this object's storage.
func (o Object) Assign(rhs Object) error {
	if o.base == nil || rhs.base == nil {
		return fmt.Errorf("cannot assign with a void value")
	}
	return o.base.assign(rhs.base)
}

func (o Object) binaryArith(op byte, rhs Object) (Object, error) {
	if o.base == nil || rhs.base == nil {
		return Object{}, fmt.Errorf("operator %q needs two values", string(op))
	}
	result := o.Clone()
	if err := result.base.arith(op, rhs.base); err != nil {
		return Object{}, err
	}
	return result, nil
}

// Add returns o + rhs without mutating either side.
func (o Object) Add(rhs Object) (Object, error) { return o.binaryArith('+', rhs) }

// Sub returns o - rhs.
func (o Object) Sub(rhs Object) (Object, error) { return o.binaryArith('-', rhs) }

// Mul returns o * rhs.
func (o Object) Mul(rhs Object) (Object, error) { return o.binaryArith('*', rhs) }

// Div returns o / rhs.
func (o Object) Div(rhs Object) (Object, error) { return o.binaryArith('/', rhs) }

// ArithAssign applies a compound operator (+= -= *= /=) in place.
func (o Object) ArithAssign(op byte, rhs Object) error {
	if o.base == nil || rhs.base == nil {
		return fmt.Errorf("operator %q= needs two values", string(op))
	}
	return o.base.arith(op, rhs.base)
}

// Compare applies one of the six comparisons and returns a bool Object.
func (o Object) Compare(reg *Registry, op token.Kind, rhs Object) (Object, error) {
	if o.base == nil || rhs.base == nil {
		return Object{}, fmt.Errorf("operator %q needs two values", op)
	}
	result, err := o.base.compare(op, rhs.base)
	if err != nil {
		return Object{}, err
	}
	return reg.Bool(result), nil
}

// Negate returns -o.
func (o Object) Negate() (Object, error) {
	if o.base == nil {
		return Object{}, fmt.Errorf("operator \"-\" needs a value")
	}
	neg, err := o.base.negate()
	if err != nil {
		return Object{}, err
	}
	return Object{base: neg}, nil
}

// Increment applies ++ in place. Post-increment returns the prior value,
// pre-increment the new one.
func (o Object) Increment(post bool) (Object, error) {
	if o.base == nil {
		return Object{}, fmt.Errorf("operator \"++\" needs a value")
	}
	result, err := o.base.incDec(1, post)
	if err != nil {
		return Object{}, err
	}
	return Object{base: result}, nil
}

// Decrement applies -- in place, mirroring Increment.
func (o Object) Decrement(post bool) (Object, error) {
	if o.base == nil {
		return Object{}, fmt.Errorf("operator \"--\" needs a value")
	}
	result, err := o.base.incDec(-1, post)
	if err != nil {
		return Object{}, err
	}
	return Object{base: result}, nil
}

// Element returns the index'th element as a reference view; a string's
// element is a copy of its byte.
func (o Object) Element(index int) (Object, error) {
	if o.base == nil {
		return Object{}, fmt.Errorf("operator \"[]\" needs a value")
	}
	return o.base.element(index)
}

// SetElement writes the index'th element.
func (o Object) SetElement(index int, v Object) error {
	if o.base == nil {
		return fmt.Errorf("operator \"[]\" needs a value")
	}
	return o.base.setElement(index, v)
}

// Member returns the named member as a reference view into this object's
// storage: assigning through it mutates the parent.
func (o Object) Member(name string) (Object, error) {
	if o.base == nil {
		return Object{}, fmt.Errorf("cannot access member %q of a void value", name)
	}
	return o.base.member(name)
}

// Method returns the named method bound to this object's storage.
func (o Object) Method(name string) (Function, error) {
	if o.base == nil {
		return Function{}, fmt.Errorf("cannot call method %q on a void value", name)
	}
	fn, ok := o.base.method(name)
	if !ok {
		return Function{}, fmt.Errorf("type %q has no method %q", o.base.typeName(), name)
	}
	return fn, nil
}

// Alloc implements the single-level new operator: it returns an Object
// holding a pointer to a fresh copy of this value.
func (o Object) Alloc() (Object, error) {
	if o.base == nil {
		return Object{}, fmt.Errorf("cannot allocate a void value")
	}
	ptr, err := o.base.alloc()
	if err != nil {
		return Object{}, err
	}
	return Object{base: ptr}, nil
}

// Construct runs the first registered constructor whose arity and
// argument coercions match.
func (o Object) Construct(args []Object) (Object, error) {
	if o.base == nil {
		return Object{}, fmt.Errorf("cannot construct a void value")
	}
	return o.base.construct(args)
}

// String renders the value for diagnostics and the REPL.
func (o Object) String() string {
	if o.base == nil {
		return "void"
	}
	switch s := o.base.(type) {
	case *hostStorage:
		return fmt.Sprintf("%v", s.val.Interface())
	case *scriptStorage:
		out := s.name + "{"
		for i, name := range s.order {
			if i > 0 {
				out += ", "
			}
			out += name + ": " + s.members[name].String()
		}
		return out + "}"
	case *pointerStorage:
		return fmt.Sprintf("%s(%v)", s.name, s.val.Interface())
	}
	return o.base.typeName()
}
