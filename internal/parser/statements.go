package parser

import (
	"github.com/liva-lang/livac-sub000/internal/ast"
	"github.com/liva-lang/livac-sub000/internal/diag"
	"github.com/liva-lang/livac-sub000/internal/lexer"
)

func (p *Parser) parseBlock() (*ast.BlockStmt, error) {
	open, err := p.expect(lexer.LBRACE)
	if err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		if p.accept(lexer.SEMICOLON) {
			continue
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	close, err := p.expect(lexer.RBRACE)
	if err != nil {
		return nil, err
	}
	return ast.NewBlockStmt(stmts, mergeSpan(open.Span, close.Span)), nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.cur().Kind {
	case lexer.LET, lexer.CONST:
		return p.parseLetStmt()
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.FAIL:
		return p.parseFailStmt()
	case lexer.BREAK:
		tok := p.next()
		return ast.NewBreakStmt(tok.Span), nil
	case lexer.CONTINUE:
		tok := p.next()
		return ast.NewContinueStmt(tok.Span), nil
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseLetStmt() (ast.Stmt, error) {
	kw := p.next() // let or const
	isConst := kw.Kind == lexer.CONST

	nameTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	name := ast.NewIdent(nameTok.Value, nameTok.Vis, nameTok.Span)

	var typ ast.TypeExpr
	if p.accept(lexer.COLON) {
		typ, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewLetStmt(isConst, name, typ, value, mergeSpan(kw.Span, value.Span())), nil
}

func (p *Parser) parseIfStmt() (ast.Stmt, error) {
	kw := p.next() // if
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	span := mergeSpan(kw.Span, then.Span())

	var els ast.Stmt
	if p.accept(lexer.ELSE) {
		if p.at(lexer.IF) {
			els, err = p.parseIfStmt()
		} else {
			var block *ast.BlockStmt
			block, err = p.parseBlock()
			els = block
		}
		if err != nil {
			return nil, err
		}
		span = mergeSpan(span, els.Span())
	}
	return ast.NewIfStmt(cond, then, els, span), nil
}

func (p *Parser) parseWhileStmt() (ast.Stmt, error) {
	kw := p.next() // while
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewWhileStmt(cond, body, mergeSpan(kw.Span, body.Span())), nil
}

// parseForStmt parses for x in iterable, with an optional data-parallel
// policy between the iterable and the body:
//
//	for x in xs par(ordered, chunk = 64) { ... }
func (p *Parser) parseForStmt() (ast.Stmt, error) {
	kw := p.next() // for
	varTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	loopVar := ast.NewIdent(varTok.Value, varTok.Vis, varTok.Span)
	if _, err := p.expect(lexer.IN); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	var policy *ast.LoopPolicy
	if p.at(lexer.PAR) {
		policy, err = p.parseLoopPolicy()
		if err != nil {
			return nil, err
		}
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewForStmt(loopVar, iterable, policy, body, mergeSpan(kw.Span, body.Span())), nil
}

// Accepted loop policy sub-options. The values flow through the IR to the
// generator, which forwards what the target runtime can express.
var loopOptionNames = map[string]bool{
	"ordered":  true,
	"chunk":    true,
	"threads":  true,
	"simd":     true,
	"reduce":   true,
	"schedule": true,
}

func (p *Parser) parseLoopPolicy() (*ast.LoopPolicy, error) {
	kw := p.next() // par
	span := kw.Span
	var options []*ast.LoopOption
	if p.at(lexer.LPAREN) {
		p.next()
		for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
			nameTok, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			if !loopOptionNames[nameTok.Value] {
				return nil, p.errorf(diag.CodeParseUnexpectedToken, nameTok.Span,
					"unknown loop policy option %q", nameTok.Value)
			}
			optSpan := nameTok.Span
			var value ast.Expr
			if p.accept(lexer.ASSIGN) {
				value, err = p.parseExpr()
				if err != nil {
					return nil, err
				}
				optSpan = mergeSpan(optSpan, value.Span())
			}
			options = append(options, ast.NewLoopOption(nameTok.Value, value, optSpan))
			if !p.accept(lexer.COMMA) {
				break
			}
		}
		close, err := p.expect(lexer.RPAREN)
		if err != nil {
			return nil, err
		}
		span = mergeSpan(span, close.Span)
	}
	return ast.NewLoopPolicy(options, span), nil
}

func (p *Parser) parseReturnStmt() (ast.Stmt, error) {
	kw := p.next() // return
	if p.at(lexer.RBRACE) || p.at(lexer.SEMICOLON) || p.at(lexer.EOF) {
		return ast.NewReturnStmt(nil, kw.Span), nil
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewReturnStmt(value, mergeSpan(kw.Span, value.Span())), nil
}

func (p *Parser) parseFailStmt() (ast.Stmt, error) {
	kw := p.next() // fail
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewFailStmt(value, mergeSpan(kw.Span, value.Span())), nil
}

func (p *Parser) parseExprStmt() (ast.Stmt, error) {
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.ASSIGN) {
		p.next()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		assign := ast.NewAssignExpr(expr, value, mergeSpan(expr.Span(), value.Span()))
		return ast.NewExprStmt(assign, assign.Span()), nil
	}
	return ast.NewExprStmt(expr, expr.Span()), nil
}
