package parser

import (
	"fmt"

	"github.com/wicstas/llc/runtime"
	"github.com/wicstas/llc/token"
)

func check(cond bool, predicate string) {
	if !cond {
		panic(fmt.Sprintf("internal error: check %q failed", predicate))
	}
}

// operandEnders are the token kinds after which + and - are binary.
// ++/-- are postfix only after an identifier or a closing bracket.
const operandEnders = token.Number | token.String | token.Char |
	token.Identifier | token.RightParen | token.RightBracket

// buildExpression collects a flat operand sequence and collapses it. It
// stops, without consuming, at a semicolon, an unbalanced closing
// parenthesis or bracket, or (when stopOnComma) a top-level comma.
func (p *Parser) buildExpression(scope *runtime.Scope, stopOnComma bool) (*runtime.Expression, error) {
	expr := runtime.NewExpression()
	if err := p.buildExpressionInto(expr, scope, stopOnComma); err != nil {
		return nil, err
	}
	if err := expr.Collapse(); err != nil {
		return nil, err
	}
	return expr, nil
}

// buildExpressionInto appends operands to expr without collapsing, so a
// declaration can prepend its variable and assignment operands.
func (p *Parser) buildExpressionInto(expr *runtime.Expression, scope *runtime.Scope, stopOnComma bool) error {
	depth := 0
	prev := token.Token{Kind: token.Invalid}

	for {
		tok := p.advance()
		switch tok.Kind {
		case token.EOF:
			return nil

		case token.Semicolon, token.LeftBrace, token.RightBrace:
			p.putback()
			return nil

		case token.Comma:
			if depth == 0 && stopOnComma {
				p.putback()
				return nil
			}
			return token.Errorf(tok.Loc, "syntax error: unexpected \",\"")

		case token.Number:
			expr.Append(runtime.NewLiteral(p.reg.Float(tok.Value), tok.Loc))
		case token.String:
			obj, err := p.reg.Wrap(tok.Text)
			check(err == nil, "string is registered")
			expr.Append(runtime.NewLiteral(obj, tok.Loc))
		case token.Char:
			obj, err := p.reg.Wrap(tok.Ch)
			check(err == nil, "uint8_t is registered")
			expr.Append(runtime.NewLiteral(obj, tok.Loc))

		case token.Assign:
			expr.Append(runtime.NewAssign(tok.Loc))
		case token.PlusEqual:
			expr.Append(runtime.NewCompound('+', tok.Loc))
		case token.MinusEqual:
			expr.Append(runtime.NewCompound('-', tok.Loc))
		case token.StarEqual:
			expr.Append(runtime.NewCompound('*', tok.Loc))
		case token.SlashEqual:
			expr.Append(runtime.NewCompound('/', tok.Loc))

		case token.Plus:
			if prev.Is(operandEnders) {
				expr.Append(runtime.NewArith('+', tok.Loc))
			} else {
				expr.Append(runtime.NewIdentity(tok.Loc))
			}
		case token.Minus:
			if prev.Is(operandEnders) {
				expr.Append(runtime.NewArith('-', tok.Loc))
			} else {
				expr.Append(runtime.NewNegate(tok.Loc))
			}
		case token.Star:
			expr.Append(runtime.NewArith('*', tok.Loc))
		case token.Slash:
			expr.Append(runtime.NewArith('/', tok.Loc))

		case token.LessThan, token.LessEqual, token.GreaterThan, token.GreaterEqual,
			token.Equal, token.NotEqual:
			expr.Append(runtime.NewCompare(p.reg, tok.Kind, tok.Loc))

		case token.Increment, token.Decrement:
			post := prev.Is(token.Identifier | token.RightBracket)
			expr.Append(runtime.NewIncDec(tok.Kind == token.Decrement, post, tok.Loc))

		case token.Dot:
			expr.Append(runtime.NewMemberAccess(tok.Loc))
			nameTok, err := p.mustMatch(token.Identifier)
			if err != nil {
				return err
			}
			if _, ok := p.match(token.LeftParen); ok {
				args, err := p.parseArgs(scope)
				if err != nil {
					return err
				}
				expr.Append(runtime.NewMethodCall(nameTok.Text, args, nameTok.Loc))
				prev = token.Token{Kind: token.RightParen}
				continue
			}
			expr.Append(runtime.NewMemberName(nameTok.Text, nameTok.Loc))
			prev = nameTok
			continue

		case token.LeftParen:
			depth++
			expr.Append(runtime.NewLeftParen(tok.Loc))
		case token.RightParen:
			if depth == 0 {
				p.putback()
				return nil
			}
			depth--
			expr.Append(runtime.NewRightParen(tok.Loc))

		case token.LeftBracket:
			if !prev.Is(token.Identifier | token.String | token.RightParen | token.RightBracket) {
				return token.Errorf(tok.Loc, "syntax error: unexpected \"[\"")
			}
			expr.Append(runtime.NewIndex(tok.Loc))
			depth++
			expr.Append(runtime.NewLeftBracket(tok.Loc))
		case token.RightBracket:
			if depth == 0 {
				p.putback()
				return nil
			}
			depth--
			expr.Append(runtime.NewRightBracket(tok.Loc))

		case token.Identifier:
			op, err := p.identifierOperand(scope, tok)
			if err != nil {
				return err
			}
			expr.Append(op)

		default:
			return token.Errorf(tok.Loc, "syntax error: unexpected %q", tok.Kind.String())
		}
		prev = tok
	}
}

// identifierOperand resolves an identifier in expression position: a
// declared variable, a function call, a type (bare or constructed), or
// the new operator.
func (p *Parser) identifierOperand(scope *runtime.Scope, tok token.Token) (runtime.Operand, error) {
	if tok.Text == "new" {
		return runtime.NewAlloc(tok.Loc), nil
	}
	if _, ok := scope.FindVariable(tok.Text); ok {
		return runtime.NewVariable(tok.Text, tok.Loc), nil
	}
	if fn, ok := scope.FindFunction(tok.Text); ok {
		if _, err := p.mustMatch(token.LeftParen); err != nil {
			return nil, err
		}
		args, err := p.parseArgs(scope)
		if err != nil {
			return nil, err
		}
		return runtime.NewCall(tok.Text, fn, args, tok.Loc), nil
	}
	if exemplar, ok := scope.FindType(tok.Text); ok {
		if _, isCall := p.match(token.LeftParen); isCall {
			args, err := p.parseArgs(scope)
			if err != nil {
				return nil, err
			}
			return runtime.NewConstruct(tok.Text, exemplar, args, tok.Loc), nil
		}
		return runtime.NewType(tok.Text, exemplar, tok.Loc), nil
	}
	return nil, token.Errorf(tok.Loc, "cannot find identifier %q", tok.Text)
}

// parseArgs parses a comma-separated argument list; the opening
// parenthesis is already consumed and the closing one is consumed here.
func (p *Parser) parseArgs(scope *runtime.Scope) ([]*runtime.Expression, error) {
	var args []*runtime.Expression
	for !p.peek().Is(token.RightParen) {
		arg, err := p.buildExpression(scope, true)
		if err != nil {
			return nil, err
		}
		if arg.Empty() {
			return nil, token.Errorf(p.peek().Loc, "syntax error: expect an argument")
		}
		args = append(args, arg)
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	if _, err := p.mustMatch(token.RightParen); err != nil {
		return nil, err
	}
	return args, nil
}
