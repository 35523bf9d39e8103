// Package parser turns a token stream into executable scopes: it feeds
// declarations, expressions and control flow into runtime scopes and
// drives expression collapse.
package parser

import (
	"github.com/wicstas/llc/lexer"
	"github.com/wicstas/llc/runtime"
	"github.com/wicstas/llc/token"
)

// Parser consumes one token stream. It is single-use.
type Parser struct {
	source string
	tokens []token.Token
	pos    int
	reg    *runtime.Registry
}

// Parse lexes source and fills root with its statements and
// declarations. root is expected to be pre-seeded with the host's
// registered types, functions and variables.
func Parse(file, source string, reg *runtime.Registry, root *runtime.Scope) error {
	tokens, err := lexer.Tokenize(file, source)
	if err != nil {
		return err
	}
	p := &Parser{source: source, tokens: tokens, reg: reg}
	return p.parseInto(root, token.EOF)
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) advance() token.Token {
	t := p.tokens[p.pos]
	if t.Kind != token.EOF {
		p.pos++
	}
	return t
}

func (p *Parser) putback() {
	check(p.pos > 0, "putback follows an advance")
	p.pos--
}

func (p *Parser) match(mask token.Kind) (token.Token, bool) {
	if p.peek().Is(mask) {
		return p.advance(), true
	}
	return token.Token{}, false
}

func (p *Parser) mustMatch(mask token.Kind) (token.Token, error) {
	t, ok := p.match(mask)
	if !ok {
		got := p.peek()
		return token.Token{}, token.Errorf(got.Loc, "syntax error: expect %q, got %q", mask.String(), got.Kind.String())
	}
	return t, nil
}

// parseInto fills scope with statements until the stop kind is reached;
// the stop token is not consumed.
func (p *Parser) parseInto(scope *runtime.Scope, stop token.Kind) error {
	for !p.peek().Is(stop) {
		if err := p.parseStatement(scope); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseStatement(scope *runtime.Scope) error {
	tok := p.peek()
	switch {
	case tok.Kind == token.Semicolon:
		p.advance()
		empty := runtime.NewExpression()
		if err := empty.Collapse(); err != nil {
			return err
		}
		scope.Append(empty)
		return nil

	case tok.Kind == token.LeftBrace:
		p.advance()
		sub := runtime.NewScope(scope)
		if err := p.parseInto(sub, token.RightBrace); err != nil {
			return err
		}
		if _, err := p.mustMatch(token.RightBrace); err != nil {
			return err
		}
		scope.Append(sub)
		return nil

	case tok.Kind == token.Identifier:
		switch tok.Text {
		case "struct":
			return p.parseStruct(scope)
		case "if":
			return p.parseIf(scope)
		case "for":
			return p.parseFor(scope)
		case "while":
			return p.parseWhile(scope)
		case "return":
			return p.parseReturn(scope)
		case "break":
			p.advance()
			scope.Append(runtime.NewBreak(tok.Loc))
			_, err := p.mustMatch(token.Semicolon)
			return err
		case "void":
			return p.parseFunction(scope)
		}
		if _, isType := scope.FindType(tok.Text); isType {
			return p.parseTypeLead(scope)
		}
		return p.parseExpressionStatement(scope)

	default:
		return p.parseExpressionStatement(scope)
	}
}

// parseTypeLead handles a statement that begins with a type name: a
// variable declaration, a function definition, or a construction used as
// an expression.
func (p *Parser) parseTypeLead(scope *runtime.Scope) error {
	p.advance() // the type name
	next := p.peek()
	if next.Kind == token.Identifier {
		// T name ( ... ) { ... } is a function definition, anything
		// else is a variable declaration
		p.advance()
		after := p.peek()
		p.putback()
		p.putback()
		if after.Kind == token.LeftParen {
			return p.parseFunction(scope)
		}
		return p.parseDeclaration(scope)
	}
	// T(args): a construction in expression position
	p.putback()
	return p.parseExpressionStatement(scope)
}

// parseDeclaration parses "T name;" or "T name = expr;".
func (p *Parser) parseDeclaration(scope *runtime.Scope) error {
	typeTok := p.advance()
	exemplar, ok := scope.FindType(typeTok.Text)
	check(ok, "declaration starts with a known type")
	nameTok, err := p.mustMatch(token.Identifier)
	if err != nil {
		return err
	}
	if err := scope.DeclareVariable(nameTok.Text, exemplar); err != nil {
		return token.Errorf(nameTok.Loc, "%s", err.Error())
	}
	if assignTok, ok := p.match(token.Assign); ok {
		expr := runtime.NewExpression()
		expr.Append(runtime.NewVariable(nameTok.Text, nameTok.Loc))
		expr.Append(runtime.NewAssign(assignTok.Loc))
		if err := p.buildExpressionInto(expr, scope, false); err != nil {
			return err
		}
		if err := expr.Collapse(); err != nil {
			return err
		}
		scope.Append(expr)
	}
	_, err = p.mustMatch(token.Semicolon)
	return err
}

// parseFunction parses "T name(params) { body }" with T a type name or
// void, and declares the function in scope before parsing its body so
// recursive calls resolve.
func (p *Parser) parseFunction(scope *runtime.Scope) error {
	retTok := p.advance()
	returnType := runtime.Void()
	if retTok.Text != "void" {
		exemplar, ok := scope.FindType(retTok.Text)
		check(ok, "function definition starts with a known type or void")
		returnType = exemplar
	}
	nameTok, err := p.mustMatch(token.Identifier)
	if err != nil {
		return err
	}
	if _, err := p.mustMatch(token.LeftParen); err != nil {
		return err
	}

	def := runtime.NewScope(scope)
	var params []runtime.Param
	for !p.peek().Is(token.RightParen) {
		ptypeTok, err := p.mustMatch(token.Identifier)
		if err != nil {
			return err
		}
		ptype, ok := scope.FindType(ptypeTok.Text)
		if !ok {
			return token.Errorf(ptypeTok.Loc, "cannot find type %q", ptypeTok.Text)
		}
		pnameTok, err := p.mustMatch(token.Identifier)
		if err != nil {
			return err
		}
		if err := def.DeclareVariable(pnameTok.Text, ptype); err != nil {
			return token.Errorf(pnameTok.Loc, "%s", err.Error())
		}
		params = append(params, runtime.Param{Name: pnameTok.Text, Type: ptype})
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	if _, err := p.mustMatch(token.RightParen); err != nil {
		return err
	}

	fn := runtime.NewScriptFunction(nameTok.Text, returnType, params, def)
	if err := scope.DeclareFunction(nameTok.Text, fn.AsFunction()); err != nil {
		return token.Errorf(nameTok.Loc, "%s", err.Error())
	}

	if _, err := p.mustMatch(token.LeftBrace); err != nil {
		return err
	}
	if err := p.parseInto(def, token.RightBrace); err != nil {
		return err
	}
	_, err = p.mustMatch(token.RightBrace)
	return err
}

// parseStruct parses a struct declaration with members and methods. The
// member declarations are collected in a pre-scan so methods may use
// members declared after them.
func (p *Parser) parseStruct(scope *runtime.Scope) error {
	p.advance() // struct
	nameTok, err := p.mustMatch(token.Identifier)
	if err != nil {
		return err
	}
	if _, err := p.mustMatch(token.LeftBrace); err != nil {
		return err
	}

	inner := runtime.NewScope(scope)
	st := runtime.NewScriptType(p.reg, nameTok.Text)

	// pre-scan: declare every "T name;" member before parsing bodies
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		t := p.tokens[i]
		if t.Kind == token.LeftBrace {
			depth++
			continue
		}
		if t.Kind == token.RightBrace {
			if depth == 0 {
				break
			}
			depth--
			continue
		}
		if depth != 0 || t.Kind != token.Identifier {
			continue
		}
		if i+2 < len(p.tokens) &&
			p.tokens[i+1].Kind == token.Identifier &&
			p.tokens[i+2].Kind == token.Semicolon {
			exemplar, ok := scope.FindType(t.Text)
			if !ok {
				return token.Errorf(t.Loc, "cannot find type %q", t.Text)
			}
			memberTok := p.tokens[i+1]
			if err := st.AddMember(memberTok.Text, exemplar); err != nil {
				return token.Errorf(memberTok.Loc, "%s", err.Error())
			}
			if err := inner.DeclareVariable(memberTok.Text, exemplar); err != nil {
				return token.Errorf(memberTok.Loc, "%s", err.Error())
			}
		}
	}

	for !p.peek().Is(token.RightBrace) {
		t := p.peek()
		if t.Kind != token.Identifier {
			return token.Errorf(t.Loc, "syntax error: expect a member or method declaration")
		}
		// "T name;" is a member, already declared in the pre-scan
		if p.pos+2 < len(p.tokens) &&
			p.tokens[p.pos+1].Kind == token.Identifier &&
			p.tokens[p.pos+2].Kind == token.Semicolon {
			p.advance()
			p.advance()
			p.advance()
			continue
		}
		if err := p.parseMethod(scope, runtime.NewScope(inner), st); err != nil {
			return err
		}
	}
	if _, err := p.mustMatch(token.RightBrace); err != nil {
		return err
	}
	if _, err := p.mustMatch(token.Semicolon); err != nil {
		return err
	}
	if err := scope.DeclareType(nameTok.Text, st.Exemplar()); err != nil {
		return token.Errorf(nameTok.Loc, "%s", err.Error())
	}
	return nil
}

// parseMethod parses one method inside a struct body into its own scope
// and registers it on the script type.
func (p *Parser) parseMethod(outer, def *runtime.Scope, st *runtime.ScriptType) error {
	retTok := p.advance()
	returnType := runtime.Void()
	if retTok.Text != "void" {
		exemplar, ok := outer.FindType(retTok.Text)
		if !ok {
			return token.Errorf(retTok.Loc, "cannot find type %q", retTok.Text)
		}
		returnType = exemplar
	}
	nameTok, err := p.mustMatch(token.Identifier)
	if err != nil {
		return err
	}
	if _, err := p.mustMatch(token.LeftParen); err != nil {
		return err
	}
	var params []runtime.Param
	for !p.peek().Is(token.RightParen) {
		ptypeTok, err := p.mustMatch(token.Identifier)
		if err != nil {
			return err
		}
		ptype, ok := outer.FindType(ptypeTok.Text)
		if !ok {
			return token.Errorf(ptypeTok.Loc, "cannot find type %q", ptypeTok.Text)
		}
		pnameTok, err := p.mustMatch(token.Identifier)
		if err != nil {
			return err
		}
		if err := def.DeclareVariable(pnameTok.Text, ptype); err != nil {
			return token.Errorf(pnameTok.Loc, "%s", err.Error())
		}
		params = append(params, runtime.Param{Name: pnameTok.Text, Type: ptype})
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	if _, err := p.mustMatch(token.RightParen); err != nil {
		return err
	}
	fn := runtime.NewScriptFunction(nameTok.Text, returnType, params, def)
	if err := st.AddMethod(nameTok.Text, fn); err != nil {
		return token.Errorf(nameTok.Loc, "%s", err.Error())
	}
	if _, err := p.mustMatch(token.LeftBrace); err != nil {
		return err
	}
	if err := p.parseInto(def, token.RightBrace); err != nil {
		return err
	}
	_, err = p.mustMatch(token.RightBrace)
	return err
}

// parseBody parses a control-flow body: a braced scope, or a single
// inline statement wrapped in its own scope.
func (p *Parser) parseBody(scope *runtime.Scope) (*runtime.Scope, error) {
	sub := runtime.NewScope(scope)
	if _, ok := p.match(token.LeftBrace); ok {
		if err := p.parseInto(sub, token.RightBrace); err != nil {
			return nil, err
		}
		if _, err := p.mustMatch(token.RightBrace); err != nil {
			return nil, err
		}
		return sub, nil
	}
	if err := p.parseStatement(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (p *Parser) parseIf(scope *runtime.Scope) error {
	p.advance() // if
	var conditions []*runtime.Expression
	var actions []*runtime.Scope

	parseArm := func() error {
		if _, err := p.mustMatch(token.LeftParen); err != nil {
			return err
		}
		cond, err := p.buildExpression(scope, false)
		if err != nil {
			return err
		}
		if _, err := p.mustMatch(token.RightParen); err != nil {
			return err
		}
		action, err := p.parseBody(scope)
		if err != nil {
			return err
		}
		conditions = append(conditions, cond)
		actions = append(actions, action)
		return nil
	}
	if err := parseArm(); err != nil {
		return err
	}
	for {
		elseTok := p.peek()
		if elseTok.Kind != token.Identifier || elseTok.Text != "else" {
			break
		}
		p.advance()
		ifTok := p.peek()
		if ifTok.Kind == token.Identifier && ifTok.Text == "if" {
			p.advance()
			if err := parseArm(); err != nil {
				return err
			}
			continue
		}
		action, err := p.parseBody(scope)
		if err != nil {
			return err
		}
		actions = append(actions, action)
		break
	}
	scope.Append(runtime.NewIfElseChain(conditions, actions))
	return nil
}

func (p *Parser) parseFor(scope *runtime.Scope) error {
	p.advance() // for
	if _, err := p.mustMatch(token.LeftParen); err != nil {
		return err
	}
	internal := runtime.NewScope(scope)

	init := runtime.NewExpression()
	first := p.peek()
	if first.Kind == token.Identifier {
		if exemplar, isType := scope.FindType(first.Text); isType {
			p.advance()
			nameTok, err := p.mustMatch(token.Identifier)
			if err != nil {
				return err
			}
			if err := internal.DeclareVariable(nameTok.Text, exemplar); err != nil {
				return token.Errorf(nameTok.Loc, "%s", err.Error())
			}
			if assignTok, ok := p.match(token.Assign); ok {
				init.Append(runtime.NewVariable(nameTok.Text, nameTok.Loc))
				init.Append(runtime.NewAssign(assignTok.Loc))
				if err := p.buildExpressionInto(init, internal, false); err != nil {
					return err
				}
			}
		} else {
			if err := p.buildExpressionInto(init, internal, false); err != nil {
				return err
			}
		}
	} else if first.Kind != token.Semicolon {
		if err := p.buildExpressionInto(init, internal, false); err != nil {
			return err
		}
	}
	if err := init.Collapse(); err != nil {
		return err
	}
	if _, err := p.mustMatch(token.Semicolon); err != nil {
		return err
	}

	cond, err := p.buildExpression(internal, false)
	if err != nil {
		return err
	}
	if _, err := p.mustMatch(token.Semicolon); err != nil {
		return err
	}
	upd, err := p.buildExpression(internal, false)
	if err != nil {
		return err
	}
	if _, err := p.mustMatch(token.RightParen); err != nil {
		return err
	}

	action, err := p.parseBody(internal)
	if err != nil {
		return err
	}
	scope.Append(runtime.NewFor(internal, init, cond, upd, action))
	return nil
}

func (p *Parser) parseWhile(scope *runtime.Scope) error {
	p.advance() // while
	if _, err := p.mustMatch(token.LeftParen); err != nil {
		return err
	}
	cond, err := p.buildExpression(scope, false)
	if err != nil {
		return err
	}
	if _, err := p.mustMatch(token.RightParen); err != nil {
		return err
	}
	action, err := p.parseBody(scope)
	if err != nil {
		return err
	}
	scope.Append(runtime.NewWhile(cond, action))
	return nil
}

func (p *Parser) parseReturn(scope *runtime.Scope) error {
	retTok := p.advance()
	expr, err := p.buildExpression(scope, false)
	if err != nil {
		return err
	}
	if _, err := p.mustMatch(token.Semicolon); err != nil {
		return err
	}
	scope.Append(runtime.NewReturn(expr, retTok.Loc))
	return nil
}

func (p *Parser) parseExpressionStatement(scope *runtime.Scope) error {
	expr, err := p.buildExpression(scope, false)
	if err != nil {
		return err
	}
	if _, err := p.mustMatch(token.Semicolon); err != nil {
		return err
	}
	if call, ok := runtime.AsCallStatement(expr); ok {
		scope.Append(call)
		return nil
	}
	scope.Append(expr)
	return nil
}
