package runtime

import (
	"github.com/wicstas/llc/token"
)

// Base precedences. Higher binds tighter; parenthesis lifting adds
// depth multiples of (maxPrecedence + 1) on top.
const (
	precAssign   = 0
	precCompare  = 2
	precCompound = 3
	precAdditive = 4
	precMultiply = 5
	precUnary    = 8
	precPostfix  = 10
	precMember   = 11
)

// Operand is a node of the flat list that makes up an unparsed
// expression. Collapse absorbs neighbours and reports their indices; the
// survivors form the expression tree.
type Operand interface {
	Loc() token.Location
	Precedence() int
	SetPrecedence(int)
	Collapse(ops []Operand, index int) ([]int, error)
	Evaluate(s *Scope) (Object, error)
}

// lvalue is implemented by operands that designate storage: variables,
// member accesses and array elements. Original returns an aliasing
// reference for in-place mutation.
type lvalue interface {
	Original(s *Scope) (Object, error)
	AssignTo(s *Scope, v Object) (Object, error)
}

// maybeEvaluator is implemented by call-like operands whose result may be
// void. Only the root of an expression statement may evaluate to void.
type maybeEvaluator interface {
	evaluateMaybe(s *Scope) (Object, bool, error)
}

// locate attaches a source location to an error that does not carry one.
func locate(err error, loc token.Location) error {
	if err == nil {
		return nil
	}
	if lerr, ok := err.(*token.Error); ok {
		return lerr
	}
	return &token.Error{Msg: err.Error(), Loc: loc}
}

type operandBase struct {
	prec int
	loc  token.Location
}

func (b *operandBase) Precedence() int     { return b.prec }
func (b *operandBase) SetPrecedence(p int) { b.prec = p }
func (b *operandBase) Loc() token.Location { return b.loc }

func (b *operandBase) Collapse(ops []Operand, index int) ([]int, error) {
	return nil, nil
}

// binaryBase absorbs its two neighbours.
type binaryBase struct {
	operandBase
	a, b Operand
}

func (b *binaryBase) Collapse(ops []Operand, index int) ([]int, error) {
	// a child must already be a collapsed subtree: the left one may share
	// this precedence (left associativity), the right one must exceed it
	if index-1 < 0 || ops[index-1].Precedence() < b.prec {
		return nil, token.Errorf(b.loc, "syntax error: missing lhs")
	}
	if index+1 >= len(ops) || ops[index+1].Precedence() <= b.prec {
		return nil, token.Errorf(b.loc, "syntax error: missing rhs")
	}
	b.a = ops[index-1]
	b.b = ops[index+1]
	return []int{index - 1, index + 1}, nil
}

// prefixBase absorbs the operand to its right.
type prefixBase struct {
	operandBase
	operand Operand
}

func (p *prefixBase) Collapse(ops []Operand, index int) ([]int, error) {
	if index+1 >= len(ops) || ops[index+1].Precedence() <= p.prec {
		return nil, token.Errorf(p.loc, "syntax error: missing rhs")
	}
	p.operand = ops[index+1]
	return []int{index + 1}, nil
}

// marker is a positional parenthesis or bracket. Markers only exist
// before the parenthesis lift; collapsing or evaluating one is an
// internal error.
type marker struct {
	operandBase
	open    bool
	bracket bool
}

func (m *marker) symbol() string {
	switch {
	case m.open && m.bracket:
		return "["
	case m.open:
		return "("
	case m.bracket:
		return "]"
	default:
		return ")"
	}
}

func (m *marker) Collapse(ops []Operand, index int) ([]int, error) {
	check(false, "markers are removed before collapse")
	return nil, nil
}

func (m *marker) Evaluate(s *Scope) (Object, error) {
	check(false, "markers are removed before evaluation")
	return Object{}, nil
}

// NewLeftParen returns the "(" marker operand.
func NewLeftParen(loc token.Location) Operand { return &marker{operandBase{0, loc}, true, false} }

// NewRightParen returns the ")" marker operand.
func NewRightParen(loc token.Location) Operand { return &marker{operandBase{0, loc}, false, false} }

// NewLeftBracket returns the "[" marker operand.
func NewLeftBracket(loc token.Location) Operand { return &marker{operandBase{0, loc}, true, true} }

// NewRightBracket returns the "]" marker operand.
func NewRightBracket(loc token.Location) Operand { return &marker{operandBase{0, loc}, false, true} }

// literalOp yields a fresh clone of its template on every evaluation.
type literalOp struct {
	operandBase
	template Object
}

// NewLiteral returns a literal operand for an already-wrapped value.
func NewLiteral(v Object, loc token.Location) Operand {
	return &literalOp{operandBase{precPostfix, loc}, v}
}

func (l *literalOp) Evaluate(s *Scope) (Object, error) {
	return l.template.Clone(), nil
}

// variableOp evaluates to the variable's stored Object, aliasing the
// scope's storage.
type variableOp struct {
	operandBase
	name string
}

// NewVariable returns an operand naming a declared variable.
func NewVariable(name string, loc token.Location) Operand {
	return &variableOp{operandBase{precPostfix, loc}, name}
}

func (v *variableOp) Evaluate(s *Scope) (Object, error) {
	obj, ok := s.FindVariable(v.name)
	if !ok {
		return Object{}, token.Errorf(v.loc, "cannot find variable %q", v.name)
	}
	return obj, nil
}

func (v *variableOp) Original(s *Scope) (Object, error) {
	return v.Evaluate(s)
}

func (v *variableOp) AssignTo(s *Scope, val Object) (Object, error) {
	obj, err := v.Original(s)
	if err != nil {
		return Object{}, err
	}
	if err := obj.Assign(val); err != nil {
		return Object{}, locate(err, v.loc)
	}
	return obj, nil
}

// typeOp evaluates to the type's exemplar, usable for construction.
type typeOp struct {
	operandBase
	name     string
	exemplar Object
}

// NewType returns an operand for a type name in expression position.
func NewType(name string, exemplar Object, loc token.Location) Operand {
	return &typeOp{operandBase{precPostfix, loc}, name, exemplar}
}

func (t *typeOp) Evaluate(s *Scope) (Object, error) {
	return t.exemplar, nil
}

// memberNameOp is the bare identifier to the right of a dot. It is
// consumed by memberAccessOp and never evaluates on its own.
type memberNameOp struct {
	operandBase
	name string
}

// NewMemberName returns the operand for a member name after a dot.
func NewMemberName(name string, loc token.Location) Operand {
	return &memberNameOp{operandBase{precPostfix, loc}, name}
}

func (m *memberNameOp) Evaluate(s *Scope) (Object, error) {
	return Object{}, token.Errorf(m.loc, "member %q cannot appear without an object", m.name)
}

// methodCallOp is the call to the right of a dot: a name plus argument
// expressions. It is consumed by memberAccessOp.
type methodCallOp struct {
	operandBase
	name string
	args []*Expression
}

// NewMethodCall returns the operand for a method call after a dot.
func NewMethodCall(name string, args []*Expression, loc token.Location) Operand {
	return &methodCallOp{operandBase{precPostfix, loc}, name, args}
}

func (m *methodCallOp) Evaluate(s *Scope) (Object, error) {
	return Object{}, token.Errorf(m.loc, "method %q cannot be called without an object", m.name)
}

// memberAccessOp is the dot operator. The left side must designate
// storage (member access on a temporary would dangle); the right side is
// a member name or a method call.
type memberAccessOp struct {
	binaryBase
}

// NewMemberAccess returns the dot operand.
func NewMemberAccess(loc token.Location) Operand {
	return &memberAccessOp{binaryBase{operandBase: operandBase{precMember, loc}}}
}

// Collapse absorbs the receiver and the member name. The dot outranks
// its leaf children, so the binary precedence guard does not apply; the
// right side is checked to be a member name or method call instead.
func (m *memberAccessOp) Collapse(ops []Operand, index int) ([]int, error) {
	if index-1 < 0 {
		return nil, token.Errorf(m.loc, "syntax error: missing lhs")
	}
	if index+1 >= len(ops) {
		return nil, token.Errorf(m.loc, "syntax error: missing rhs")
	}
	switch ops[index+1].(type) {
	case *memberNameOp, *methodCallOp:
	default:
		return nil, token.Errorf(ops[index+1].Loc(), "syntax error: expect a member name after \".\"")
	}
	m.a = ops[index-1]
	m.b = ops[index+1]
	return []int{index - 1, index + 1}, nil
}

func (m *memberAccessOp) receiver(s *Scope) (Object, error) {
	lv, ok := m.a.(lvalue)
	if !ok {
		return Object{}, token.Errorf(m.a.Loc(), "cannot access a member of a temporary value")
	}
	return lv.Original(s)
}

func (m *memberAccessOp) Evaluate(s *Scope) (Object, error) {
	v, has, err := m.evaluateMaybe(s)
	if err != nil {
		return Object{}, err
	}
	if !has {
		return Object{}, token.Errorf(m.loc, "method returns void, which cannot appear in an expression")
	}
	return v, nil
}

func (m *memberAccessOp) evaluateMaybe(s *Scope) (Object, bool, error) {
	obj, err := m.receiver(s)
	if err != nil {
		return Object{}, false, err
	}
	switch rhs := m.b.(type) {
	case *memberNameOp:
		member, err := obj.Member(rhs.name)
		if err != nil {
			return Object{}, false, locate(err, rhs.loc)
		}
		return member, true, nil
	case *methodCallOp:
		fn, err := obj.Method(rhs.name)
		if err != nil {
			return Object{}, false, locate(err, rhs.loc)
		}
		v, has, err := fn.Run(s, rhs.args)
		if err != nil {
			return Object{}, false, locate(err, rhs.loc)
		}
		return v, has, nil
	default:
		return Object{}, false, token.Errorf(m.b.Loc(), "syntax error: expect a member name after \".\"")
	}
}

func (m *memberAccessOp) Original(s *Scope) (Object, error) {
	obj, err := m.receiver(s)
	if err != nil {
		return Object{}, err
	}
	name, ok := m.b.(*memberNameOp)
	if !ok {
		return Object{}, token.Errorf(m.b.Loc(), "expression is not assignable")
	}
	member, err := obj.Member(name.name)
	if err != nil {
		return Object{}, locate(err, name.loc)
	}
	return member, nil
}

func (m *memberAccessOp) AssignTo(s *Scope, v Object) (Object, error) {
	member, err := m.Original(s)
	if err != nil {
		return Object{}, err
	}
	if err := member.Assign(v); err != nil {
		return Object{}, locate(err, m.loc)
	}
	return member, nil
}

// indexOp is the array subscript: its left side is the indexed value,
// its right side the lifted index expression. It sits on the member
// tier so chains like a[0].x collapse left-to-right with the dot.
type indexOp struct {
	binaryBase
}

// NewIndex returns the subscript operand emitted between a value and its
// bracketed index.
func NewIndex(loc token.Location) Operand {
	return &indexOp{binaryBase{operandBase: operandBase{precMember, loc}}}
}

// Collapse absorbs the indexed value and the lifted index expression.
// Like the dot, the subscript outranks its left child, so only the
// right side carries a precedence guard.
func (x *indexOp) Collapse(ops []Operand, index int) ([]int, error) {
	if index-1 < 0 {
		return nil, token.Errorf(x.loc, "syntax error: missing lhs")
	}
	if index+1 >= len(ops) || ops[index+1].Precedence() <= x.prec {
		return nil, token.Errorf(x.loc, "syntax error: missing index")
	}
	x.a = ops[index-1]
	x.b = ops[index+1]
	return []int{index - 1, index + 1}, nil
}

func (x *indexOp) target(s *Scope) (Object, error) {
	if lv, ok := x.a.(lvalue); ok {
		return lv.Original(s)
	}
	return x.a.Evaluate(s)
}

func (x *indexOp) index(s *Scope) (int, error) {
	idx, err := x.b.Evaluate(s)
	if err != nil {
		return 0, err
	}
	i, ok := AsOpt[int](idx)
	if !ok {
		return 0, token.Errorf(x.b.Loc(), "array index must be numeric, got %q", idx.TypeName())
	}
	return i, nil
}

func (x *indexOp) Evaluate(s *Scope) (Object, error) {
	obj, err := x.target(s)
	if err != nil {
		return Object{}, err
	}
	i, err := x.index(s)
	if err != nil {
		return Object{}, err
	}
	elem, err := obj.Element(i)
	if err != nil {
		return Object{}, locate(err, x.loc)
	}
	return elem, nil
}

func (x *indexOp) Original(s *Scope) (Object, error) {
	return x.Evaluate(s)
}

func (x *indexOp) AssignTo(s *Scope, v Object) (Object, error) {
	obj, err := x.target(s)
	if err != nil {
		return Object{}, err
	}
	i, err := x.index(s)
	if err != nil {
		return Object{}, err
	}
	if err := obj.SetElement(i, v); err != nil {
		return Object{}, locate(err, x.loc)
	}
	return obj.Element(i)
}

// callOp is a resolved free-function call.
type callOp struct {
	operandBase
	name string
	fn   Function
	args []*Expression
}

// NewCall returns the operand for a call to a named function.
func NewCall(name string, fn Function, args []*Expression, loc token.Location) Operand {
	return &callOp{operandBase{precPostfix, loc}, name, fn, args}
}

func (c *callOp) Evaluate(s *Scope) (Object, error) {
	v, has, err := c.evaluateMaybe(s)
	if err != nil {
		return Object{}, err
	}
	if !has {
		return Object{}, token.Errorf(c.loc, "function %q returns void, which cannot appear in an expression", c.name)
	}
	return v, nil
}

func (c *callOp) evaluateMaybe(s *Scope) (Object, bool, error) {
	v, has, err := c.fn.Run(s, c.args)
	if err != nil {
		return Object{}, false, locate(err, c.loc)
	}
	return v, has, nil
}

// constructOp builds a host value through a registered constructor.
type constructOp struct {
	operandBase
	typeName string
	exemplar Object
	args     []*Expression
}

// NewConstruct returns the operand for Type(args...).
func NewConstruct(typeName string, exemplar Object, args []*Expression, loc token.Location) Operand {
	return &constructOp{operandBase{precPostfix, loc}, typeName, exemplar, args}
}

func (c *constructOp) Evaluate(s *Scope) (Object, error) {
	args := make([]Object, len(c.args))
	for i, e := range c.args {
		v, has, err := e.Evaluate(s)
		if err != nil {
			return Object{}, err
		}
		if !has {
			return Object{}, token.Errorf(c.loc, "argument %d is void", i+1)
		}
		args[i] = v
	}
	v, err := c.exemplar.Construct(args)
	if err != nil {
		return Object{}, locate(err, c.loc)
	}
	return v, nil
}

// assignOp is plain assignment. Its collapse rejects a chained
// assignment: the left-to-right rule would bind a = b = 1 as (a = b) = 1.
type assignOp struct {
	binaryBase
}

// NewAssign returns the "=" operand.
func NewAssign(loc token.Location) Operand {
	return &assignOp{binaryBase{operandBase: operandBase{precAssign, loc}}}
}

func (a *assignOp) Collapse(ops []Operand, index int) ([]int, error) {
	if index-1 >= 0 {
		if _, chained := ops[index-1].(*assignOp); chained {
			return nil, token.Errorf(a.loc, "chained assignment is not supported")
		}
	}
	return a.binaryBase.Collapse(ops, index)
}

func (a *assignOp) Evaluate(s *Scope) (Object, error) {
	lv, ok := a.a.(lvalue)
	if !ok {
		return Object{}, token.Errorf(a.a.Loc(), "expression is not assignable")
	}
	v, err := a.b.Evaluate(s)
	if err != nil {
		return Object{}, err
	}
	return lv.AssignTo(s, v)
}

// compoundOp is one of += -= *= /=, mutating its target in place.
type compoundOp struct {
	binaryBase
	op byte
}

// NewCompound returns a compound-assignment operand for op, one of
// '+', '-', '*', '/'.
func NewCompound(op byte, loc token.Location) Operand {
	return &compoundOp{binaryBase{operandBase: operandBase{precCompound, loc}}, op}
}

func (c *compoundOp) Evaluate(s *Scope) (Object, error) {
	lv, ok := c.a.(lvalue)
	if !ok {
		return Object{}, token.Errorf(c.a.Loc(), "expression is not assignable")
	}
	orig, err := lv.Original(s)
	if err != nil {
		return Object{}, err
	}
	v, err := c.b.Evaluate(s)
	if err != nil {
		return Object{}, err
	}
	if err := orig.ArithAssign(c.op, v); err != nil {
		return Object{}, locate(err, c.loc)
	}
	return orig, nil
}

// arithOp is one of the four binary arithmetic operators.
type arithOp struct {
	binaryBase
	op byte
}

// NewArith returns a binary arithmetic operand for op, one of
// '+', '-', '*', '/'. Additive operators bind looser than
// multiplicative ones.
func NewArith(op byte, loc token.Location) Operand {
	prec := precAdditive
	if op == '*' || op == '/' {
		prec = precMultiply
	}
	return &arithOp{binaryBase{operandBase: operandBase{prec, loc}}, op}
}

func (a *arithOp) Evaluate(s *Scope) (Object, error) {
	l, err := a.a.Evaluate(s)
	if err != nil {
		return Object{}, err
	}
	r, err := a.b.Evaluate(s)
	if err != nil {
		return Object{}, err
	}
	var v Object
	switch a.op {
	case '+':
		v, err = l.Add(r)
	case '-':
		v, err = l.Sub(r)
	case '*':
		v, err = l.Mul(r)
	case '/':
		v, err = l.Div(r)
	}
	if err != nil {
		return Object{}, locate(err, a.loc)
	}
	return v, nil
}

// compareOp is one of the six comparisons; it yields a bool Object.
type compareOp struct {
	binaryBase
	reg *Registry
	op  token.Kind
}

// NewCompare returns a comparison operand.
func NewCompare(reg *Registry, op token.Kind, loc token.Location) Operand {
	return &compareOp{binaryBase{operandBase: operandBase{precCompare, loc}}, reg, op}
}

func (c *compareOp) Evaluate(s *Scope) (Object, error) {
	l, err := c.a.Evaluate(s)
	if err != nil {
		return Object{}, err
	}
	r, err := c.b.Evaluate(s)
	if err != nil {
		return Object{}, err
	}
	v, err := l.Compare(c.reg, c.op, r)
	if err != nil {
		return Object{}, locate(err, c.loc)
	}
	return v, nil
}

// negateOp is unary minus.
type negateOp struct {
	prefixBase
}

// NewNegate returns the unary minus operand.
func NewNegate(loc token.Location) Operand {
	return &negateOp{prefixBase{operandBase: operandBase{precUnary, loc}}}
}

func (n *negateOp) Evaluate(s *Scope) (Object, error) {
	v, err := n.operand.Evaluate(s)
	if err != nil {
		return Object{}, err
	}
	out, err := v.Negate()
	if err != nil {
		return Object{}, locate(err, n.loc)
	}
	return out, nil
}

// identityOp is unary plus.
type identityOp struct {
	prefixBase
}

// NewIdentity returns the unary plus operand.
func NewIdentity(loc token.Location) Operand {
	return &identityOp{prefixBase{operandBase: operandBase{precUnary, loc}}}
}

func (n *identityOp) Evaluate(s *Scope) (Object, error) {
	return n.operand.Evaluate(s)
}

// incDecOp is ++ or --; post-fix absorbs its left neighbour, prefix its
// right one.
type incDecOp struct {
	operandBase
	dec     bool
	post    bool
	operand Operand
}

// NewIncDec returns an increment/decrement operand. The parser decides
// prefix versus postfix from the preceding token.
func NewIncDec(dec, post bool, loc token.Location) Operand {
	return &incDecOp{operandBase: operandBase{precUnary, loc}, dec: dec, post: post}
}

func (x *incDecOp) name() string {
	if x.dec {
		return "--"
	}
	return "++"
}

func (x *incDecOp) Collapse(ops []Operand, index int) ([]int, error) {
	if x.post {
		if index-1 < 0 || ops[index-1].Precedence() < x.prec {
			return nil, token.Errorf(x.loc, "syntax error: missing operand for %q", x.name())
		}
		x.operand = ops[index-1]
		return []int{index - 1}, nil
	}
	if index+1 >= len(ops) || ops[index+1].Precedence() <= x.prec {
		return nil, token.Errorf(x.loc, "syntax error: missing operand for %q", x.name())
	}
	x.operand = ops[index+1]
	return []int{index + 1}, nil
}

func (x *incDecOp) Evaluate(s *Scope) (Object, error) {
	lv, ok := x.operand.(lvalue)
	if !ok {
		return Object{}, token.Errorf(x.operand.Loc(), "operator %q needs a variable", x.name())
	}
	orig, err := lv.Original(s)
	if err != nil {
		return Object{}, err
	}
	var v Object
	if x.dec {
		v, err = orig.Decrement(x.post)
	} else {
		v, err = orig.Increment(x.post)
	}
	if err != nil {
		return Object{}, locate(err, x.loc)
	}
	return v, nil
}

// newOp is the allocation operator: new T yields a T*.
type newOp struct {
	prefixBase
}

// NewAlloc returns the "new" operand.
func NewAlloc(loc token.Location) Operand {
	return &newOp{prefixBase{operandBase: operandBase{precUnary, loc}}}
}

func (n *newOp) Evaluate(s *Scope) (Object, error) {
	v, err := n.operand.Evaluate(s)
	if err != nil {
		return Object{}, err
	}
	out, err := v.Alloc()
	if err != nil {
		return Object{}, locate(err, n.loc)
	}
	return out, nil
}
