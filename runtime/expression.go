package runtime

import (
	"sort"

	"github.com/wicstas/llc/token"
)

// Expression holds a flat operand sequence before Collapse and the single
// tree root (or nothing) afterwards.
type Expression struct {
	operands  []Operand
	collapsed bool
}

// NewExpression returns an empty expression.
func NewExpression() *Expression {
	return &Expression{}
}

// Append adds the next operand of the flat sequence.
func (e *Expression) Append(op Operand) {
	check(!e.collapsed, "expression is not collapsed yet")
	e.operands = append(e.operands, op)
}

// Empty reports whether the expression has no operands.
func (e *Expression) Empty() bool {
	return len(e.operands) == 0
}

// Root returns the collapsed tree root, or nil for the empty expression.
func (e *Expression) Root() Operand {
	check(e.collapsed, "expression is collapsed")
	if len(e.operands) == 0 {
		return nil
	}
	return e.operands[0]
}

// Collapse reduces the flat sequence to a single root: first the
// parenthesis lift rewrites precedences and erases the markers, then a
// precedence-descending left-to-right scan lets each operand absorb its
// children.
func (e *Expression) Collapse() error {
	if err := e.applyParentheses(); err != nil {
		return err
	}

	maxPrec := 0
	for _, op := range e.operands {
		if op.Precedence() > maxPrec {
			maxPrec = op.Precedence()
		}
	}
	ops := e.operands
	for prec := maxPrec; prec >= 0; prec-- {
		for i := 0; i < len(ops); i++ {
			if ops[i].Precedence() != prec {
				continue
			}
			removed, err := ops[i].Collapse(ops, i)
			if err != nil {
				return err
			}
			sort.Sort(sort.Reverse(sort.IntSlice(removed)))
			for _, idx := range removed {
				ops = append(ops[:idx], ops[idx+1:]...)
				if idx <= i {
					i--
				}
			}
		}
	}
	if len(ops) > 1 {
		return token.Errorf(ops[1].Loc(), "syntax error: expect an operator")
	}
	e.operands = ops
	e.collapsed = true
	return nil
}

// applyParentheses lifts the precedence of every operand inside
// parentheses or brackets by depth multiples of one-plus-the-maximum base
// precedence, then erases the markers. A depth mismatch is fatal.
func (e *Expression) applyParentheses() error {
	maxBase := 0
	for _, op := range e.operands {
		if op.Precedence() > maxBase {
			maxBase = op.Precedence()
		}
	}
	lift := maxBase + 1

	depth := 0
	var lastOpen *marker
	out := e.operands[:0]
	for _, op := range e.operands {
		if m, ok := op.(*marker); ok {
			if m.open {
				depth++
				lastOpen = m
			} else {
				depth--
				if depth < 0 {
					return token.Errorf(m.loc, "unmatched %q", m.symbol())
				}
			}
			continue
		}
		op.SetPrecedence(op.Precedence() + depth*lift)
		out = append(out, op)
	}
	if depth != 0 {
		loc := token.Location{}
		if lastOpen != nil {
			loc = lastOpen.loc
		}
		return token.Errorf(loc, "unmatched %q", lastOpen.symbol())
	}
	e.operands = out
	return nil
}

// Evaluate runs the collapsed expression against a scope. The bool result
// is false for the empty expression and for a void-returning call in root
// position.
func (e *Expression) Evaluate(s *Scope) (Object, bool, error) {
	check(e.collapsed, "expression is collapsed")
	if len(e.operands) == 0 {
		return Object{}, false, nil
	}
	root := e.operands[0]
	if m, ok := root.(maybeEvaluator); ok {
		return m.evaluateMaybe(s)
	}
	v, err := root.Evaluate(s)
	if err != nil {
		return Object{}, false, err
	}
	return v, true, nil
}

// AsCallStatement converts an expression whose root is a plain function
// call into the dedicated call statement, so statement-level calls run
// without the void-in-expression restriction.
func AsCallStatement(e *Expression) (Statement, bool) {
	check(e.collapsed, "expression is collapsed")
	if len(e.operands) != 1 {
		return nil, false
	}
	root, ok := e.operands[0].(*callOp)
	if !ok {
		return nil, false
	}
	return NewCallStatement(root.fn, root.args, root.loc), true
}

// run makes an expression usable as a statement; the produced value is
// discarded.
func (e *Expression) run(s *Scope) (result, error) {
	if _, _, err := e.Evaluate(s); err != nil {
		return result{}, err
	}
	return result{}, nil
}
