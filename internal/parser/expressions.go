package parser

import (
	"github.com/liva-lang/livac-sub000/internal/ast"
	"github.com/liva-lang/livac-sub000/internal/diag"
	"github.com/liva-lang/livac-sub000/internal/lexer"
)

// parseExpr is the entry of the precedence ladder. Ternary and range live
// at the loosest level and associate to the right; everything below
// associates to the left.
func (p *Parser) parseExpr() (ast.Expr, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	switch p.cur().Kind {
	case lexer.QUESTION:
		p.next()
		then, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON); err != nil {
			return nil, err
		}
		els, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.NewTernaryExpr(left, then, els, mergeSpan(left.Span(), els.Span())), nil
	case lexer.DOTDOT:
		p.next()
		high, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.NewRangeExpr(left, high, mergeSpan(left.Span(), high.Span())), nil
	}
	return left, nil
}

// binaryLevel builds one left-associative rung of the ladder: it parses the
// tighter level once, then loops while the current token is one of ops.
func (p *Parser) binaryLevel(tighter func() (ast.Expr, error), ops ...lexer.Kind) (ast.Expr, error) {
	left, err := tighter()
	if err != nil {
		return nil, err
	}
	for {
		matched := false
		for _, op := range ops {
			if p.at(op) {
				matched = true
				break
			}
		}
		if !matched {
			return left, nil
		}
		opTok := p.next()
		right, err := tighter()
		if err != nil {
			return nil, err
		}
		left = ast.NewInfixExpr(opTok.Kind, left, right, mergeSpan(left.Span(), right.Span()))
	}
}

func (p *Parser) parseOr() (ast.Expr, error) {
	return p.binaryLevel(p.parseAnd, lexer.OR)
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	return p.binaryLevel(p.parseEquality, lexer.AND)
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	return p.binaryLevel(p.parseComparison, lexer.EQ, lexer.NOT_EQ)
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	return p.binaryLevel(p.parseAdditive, lexer.LT, lexer.LE, lexer.GT, lexer.GE)
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	return p.binaryLevel(p.parseMultiplicative, lexer.PLUS, lexer.MINUS)
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	return p.binaryLevel(p.parseUnary, lexer.STAR, lexer.SLASH, lexer.PERCENT)
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.cur().Kind {
	case lexer.MINUS, lexer.BANG:
		opTok := p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewPrefixExpr(opTok.Kind, operand, mergeSpan(opTok.Span, operand.Span())), nil
	case lexer.AWAIT:
		kw := p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewAwaitExpr(operand, mergeSpan(kw.Span, operand.Span())), nil
	case lexer.ASYNC, lexer.PAR, lexer.TASK, lexer.FIRE:
		return p.parsePolicyCall()
	default:
		return p.parsePostfix()
	}
}

// parsePolicyCall parses an execution-policy modifier and the call it must
// immediately precede. Policies attach to calls only; stacking two policies
// or modifying a non-call is an error.
func (p *Parser) parsePolicyCall() (ast.Expr, error) {
	kw := p.next()
	var policy ast.ExecPolicy
	switch kw.Kind {
	case lexer.ASYNC:
		policy = ast.PolicyAsync
	case lexer.PAR:
		policy = ast.PolicyPar
	case lexer.TASK, lexer.FIRE:
		mode := p.cur()
		switch mode.Kind {
		case lexer.ASYNC:
			if kw.Kind == lexer.TASK {
				policy = ast.PolicyTaskAsync
			} else {
				policy = ast.PolicyFireAsync
			}
		case lexer.PAR:
			if kw.Kind == lexer.TASK {
				policy = ast.PolicyTaskPar
			} else {
				policy = ast.PolicyFirePar
			}
		default:
			return nil, p.errorf(diag.CodeParseBadPolicy, mode.Span,
				"%s must be followed by async or par", kw.Value)
		}
		p.next()
	}

	if lexer.IsPolicyKeyword(p.cur().Kind) {
		return nil, p.errorf(diag.CodeParseBadPolicy, p.cur().Span,
			"a call takes exactly one execution policy")
	}

	expr, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		return nil, p.errorf(diag.CodeParseBadPolicy, kw.Span,
			"execution policy %q must immediately precede a call", policy)
	}
	call.Policy = policy
	return call, nil
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Kind {
		case lexer.LPAREN:
			p.next()
			var args []ast.Expr
			for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if !p.accept(lexer.COMMA) {
					break
				}
			}
			close, err := p.expect(lexer.RPAREN)
			if err != nil {
				return nil, err
			}
			expr = ast.NewCallExpr(expr, args, ast.PolicyNormal, mergeSpan(expr.Span(), close.Span))
		case lexer.DOT:
			p.next()
			fieldTok, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			field := ast.NewIdent(fieldTok.Value, fieldTok.Vis, fieldTok.Span)
			expr = ast.NewMemberExpr(expr, field, mergeSpan(expr.Span(), fieldTok.Span))
		case lexer.LBRACKET:
			p.next()
			index, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			close, err := p.expect(lexer.RBRACKET)
			if err != nil {
				return nil, err
			}
			expr = ast.NewIndexExpr(expr, index, mergeSpan(expr.Span(), close.Span))
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Kind {
	case lexer.INT:
		p.next()
		return ast.NewIntegerLit(tok.Value, tok.Span), nil
	case lexer.FLOAT:
		p.next()
		return ast.NewFloatLit(tok.Value, tok.Span), nil
	case lexer.STRING:
		p.next()
		return ast.NewStringLit(tok.Value, tok.Span), nil
	case lexer.TEMPLATE:
		p.next()
		return p.parseTemplate(tok)
	case lexer.CHAR:
		p.next()
		value := ' '
		for _, r := range tok.Value {
			value = r
			break
		}
		return ast.NewCharLit(value, tok.Span), nil
	case lexer.TRUE:
		p.next()
		return ast.NewBoolLit(true, tok.Span), nil
	case lexer.FALSE:
		p.next()
		return ast.NewBoolLit(false, tok.Span), nil
	case lexer.NULL:
		p.next()
		return ast.NewNullLit(tok.Span), nil
	case lexer.IDENT:
		// Bare-identifier lambda: x => x * 2, optionally x: number => x * 2.
		if p.peek().Kind == lexer.ARROW || p.bareLambdaAhead() {
			return p.parseLambda()
		}
		p.next()
		ident := ast.NewIdent(tok.Value, tok.Vis, tok.Span)
		// A brace after a capitalized identifier opens a struct literal;
		// anything else leaves the brace for the enclosing construct.
		if p.at(lexer.LBRACE) && isCapitalized(tok.Value) {
			return p.parseStructLit(ident)
		}
		return ident, nil
	case lexer.LPAREN:
		if p.lambdaAhead() {
			return p.parseLambda()
		}
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil
	case lexer.LBRACKET:
		return p.parseArrayLit()
	case lexer.LBRACE:
		return p.parseObjectLit()
	default:
		return nil, p.errorf(diag.CodeParseUnexpectedToken, tok.Span,
			"expected an expression, found %q", describeToken(tok))
	}
}

// lambdaAhead reports whether the parenthesized group at the cursor is a
// lambda parameter list. It scans past the balanced group (tracking nesting
// depth), optionally past a : type annotation, and checks for =>. The scan
// never commits: the cursor is untouched.
func (p *Parser) lambdaAhead() bool {
	i := p.pos
	if p.toks[i].Kind != lexer.LPAREN {
		return false
	}
	depth := 0
	for ; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case lexer.LPAREN:
			depth++
		case lexer.RPAREN:
			depth--
			if depth == 0 {
				i++
				goto afterGroup
			}
		case lexer.EOF:
			return false
		}
	}
	return false

afterGroup:
	if p.toks[i].Kind == lexer.COLON {
		i++
		i = p.skipTypeAhead(i)
	}
	return p.toks[i].Kind == lexer.ARROW
}

// bareLambdaAhead reports whether the identifier at the cursor opens an
// annotated bare-parameter lambda: IDENT : type =>. Like lambdaAhead, the
// scan never commits.
func (p *Parser) bareLambdaAhead() bool {
	i := p.pos + 1
	if p.toks[i].Kind != lexer.COLON {
		return false
	}
	i = p.skipTypeAhead(i + 1)
	return p.toks[i].Kind == lexer.ARROW
}

// skipTypeAhead advances the scan index past one type annotation:
// an identifier followed by any number of [] and ? suffixes.
func (p *Parser) skipTypeAhead(i int) int {
	if p.toks[i].Kind != lexer.IDENT {
		return i
	}
	i++
	for {
		if p.toks[i].Kind == lexer.LBRACKET && p.toks[i+1].Kind == lexer.RBRACKET {
			i += 2
			continue
		}
		if p.toks[i].Kind == lexer.QUESTION {
			i++
			continue
		}
		return i
	}
}

func (p *Parser) parseLambda() (ast.Expr, error) {
	start := p.cur().Span

	var params []*ast.Param
	var ret ast.TypeExpr
	if p.at(lexer.IDENT) {
		// Bare form: the annotation, when present, types the parameter;
		// there is no return-type position without parentheses.
		tok := p.next()
		name := ast.NewIdent(tok.Value, tok.Vis, tok.Span)
		var typ ast.TypeExpr
		if p.accept(lexer.COLON) {
			var err error
			typ, err = p.parseType()
			if err != nil {
				return nil, err
			}
		}
		params = append(params, ast.NewParam(name, typ, nil, tok.Span))
	} else {
		var err error
		params, err = p.parseParamList()
		if err != nil {
			return nil, err
		}
		if p.accept(lexer.COLON) {
			ret, err = p.parseType()
			if err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(lexer.ARROW); err != nil {
		return nil, err
	}

	if p.at(lexer.LBRACE) {
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return ast.NewLambdaExpr(params, ret, nil, body, mergeSpan(start, body.Span())), nil
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewLambdaExpr(params, ret, body, nil, mergeSpan(start, body.Span())), nil
}

func (p *Parser) parseArrayLit() (ast.Expr, error) {
	open := p.next() // [
	var elems []ast.Expr
	for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	close, err := p.expect(lexer.RBRACKET)
	if err != nil {
		return nil, err
	}
	return ast.NewArrayLit(elems, mergeSpan(open.Span, close.Span)), nil
}

func (p *Parser) parseObjectLit() (ast.Expr, error) {
	open := p.next() // {
	fields, err := p.parseObjectFields()
	if err != nil {
		return nil, err
	}
	close, err := p.expect(lexer.RBRACE)
	if err != nil {
		return nil, err
	}
	return ast.NewObjectLit(fields, mergeSpan(open.Span, close.Span)), nil
}

func (p *Parser) parseStructLit(name *ast.Ident) (ast.Expr, error) {
	p.next() // {
	fields, err := p.parseObjectFields()
	if err != nil {
		return nil, err
	}
	close, err := p.expect(lexer.RBRACE)
	if err != nil {
		return nil, err
	}
	return ast.NewStructLit(name, fields, mergeSpan(name.Span(), close.Span)), nil
}

func (p *Parser) parseObjectFields() ([]*ast.ObjectField, error) {
	var fields []*ast.ObjectField
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		nameTok, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		name := ast.NewIdent(nameTok.Value, nameTok.Vis, nameTok.Span)
		fields = append(fields, ast.NewObjectField(name, value, mergeSpan(nameTok.Span, value.Span())))
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	return fields, nil
}
