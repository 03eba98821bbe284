package parser

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/liva-lang/livac-sub000/internal/ast"
	"github.com/liva-lang/livac-sub000/internal/diag"
	"github.com/liva-lang/livac-sub000/internal/lexer"
)

// Error is a fatal parse error. The parser stops at the first failure; there
// is no recovery or multi-error aggregation.
type Error struct {
	Code    diag.Code
	Message string
	Span    lexer.Span
}

func (e *Error) Error() string { return e.Message }

// ToDiagnostic converts the error into the shared diagnostic structure.
func (e *Error) ToDiagnostic(filename string, table *diag.LineTable) diag.Diagnostic {
	span := diag.Span{Filename: filename, Start: e.Span.Start, End: e.Span.End}
	var srcLine string
	if table != nil {
		span, srcLine = table.Resolve(span)
	}
	return diag.New(diag.StageParser, e.Code, "parse error", e.Message, span).
		WithSourceLine(srcLine)
}

// Parser is a recursive descent parser over a fully tokenized input. A
// single cursor index is the only parse state; lookahead scans read ahead of
// the cursor without a pushback buffer.
type Parser struct {
	toks []lexer.Token
	pos  int
}

// New constructs a parser over a token slice. The slice must end with EOF,
// as produced by lexer.Tokenize.
func New(toks []lexer.Token) *Parser {
	return &Parser{toks: toks}
}

// Parse tokenizes and parses a complete program.
func Parse(src string) (*ast.Program, error) {
	toks, lerr := lexer.Tokenize(src)
	if lerr != nil {
		return nil, lerr
	}
	return New(toks).ParseProgram()
}

func (p *Parser) cur() lexer.Token { return p.toks[p.pos] }

func (p *Parser) peek() lexer.Token {
	if p.pos+1 >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+1]
}

func (p *Parser) next() lexer.Token {
	tok := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) at(kind lexer.Kind) bool { return p.cur().Kind == kind }

func (p *Parser) accept(kind lexer.Kind) bool {
	if p.at(kind) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(kind lexer.Kind) (lexer.Token, error) {
	if !p.at(kind) {
		return lexer.Token{}, p.errorf(diag.CodeParseUnexpectedToken, p.cur().Span,
			"expected %q, found %q", string(kind), describeToken(p.cur()))
	}
	return p.next(), nil
}

func (p *Parser) errorf(code diag.Code, span lexer.Span, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Span: span}
}

func describeToken(tok lexer.Token) string {
	if tok.Kind == lexer.EOF {
		return "end of input"
	}
	if tok.Raw != "" {
		return tok.Raw
	}
	return string(tok.Kind)
}

func mergeSpan(a, b lexer.Span) lexer.Span {
	out := a
	if b.End > out.End {
		out.End = b.End
	}
	return out
}

func isCapitalized(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// ParseProgram parses the token stream into a program node.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	start := p.cur().Span
	var decls []ast.Decl
	for !p.at(lexer.EOF) {
		if p.accept(lexer.SEMICOLON) {
			continue
		}
		decl, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	end := p.cur().Span
	if len(decls) > 0 {
		start = decls[0].Span()
		end = decls[len(decls)-1].Span()
	}
	return ast.NewProgram(decls, mergeSpan(start, end)), nil
}

func (p *Parser) parseDecl() (ast.Decl, error) {
	switch p.cur().Kind {
	case lexer.IMPORT:
		return p.parseImportDecl()
	case lexer.EXTERN:
		return p.parseExternDecl()
	case lexer.TYPE:
		return p.parseTypeDecl()
	case lexer.CLASS:
		return p.parseClassDecl()
	case lexer.TEST:
		return p.parseTestDecl()
	case lexer.ASYNC:
		if p.peek().Kind == lexer.IDENT {
			asyncTok := p.next()
			fn, err := p.parseFnDecl(true)
			if err != nil {
				return nil, err
			}
			return ast.NewFnDecl(fn.Name, fn.Params, fn.ReturnType, fn.ExprBody, fn.Body, true,
				mergeSpan(asyncTok.Span, fn.Span())), nil
		}
		return nil, p.errorf(diag.CodeParseUnexpectedToken, p.cur().Span,
			"async must be followed by a function declaration at top level")
	case lexer.IDENT:
		return p.parseFnDecl(false)
	default:
		return nil, p.errorf(diag.CodeParseUnexpectedToken, p.cur().Span,
			"expected a top-level declaration, found %q", describeToken(p.cur()))
	}
}

func (p *Parser) parseImportDecl() (ast.Decl, error) {
	start := p.next().Span // import
	if _, err := p.expect(lexer.STAR); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.FROM); err != nil {
		return nil, err
	}
	path, err := p.expect(lexer.STRING)
	if err != nil {
		return nil, err
	}
	return ast.NewImportDecl(path.Value, mergeSpan(start, path.Span)), nil
}

func (p *Parser) parseExternDecl() (ast.Decl, error) {
	start := p.next().Span // extern
	name, err := p.expect(lexer.STRING)
	if err != nil {
		return nil, err
	}
	span := mergeSpan(start, name.Span)
	var alias *ast.Ident
	if p.accept(lexer.AS) {
		tok, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		alias = ast.NewIdent(tok.Value, tok.Vis, tok.Span)
		span = mergeSpan(span, tok.Span)
	}
	return ast.NewExternDecl(name.Value, alias, span), nil
}

func (p *Parser) parseTypeDecl() (ast.Decl, error) {
	start := p.next().Span // type
	nameTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	name := ast.NewIdent(nameTok.Value, nameTok.Vis, nameTok.Span)
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	fields, err := p.parseFieldList()
	if err != nil {
		return nil, err
	}
	close, err := p.expect(lexer.RBRACE)
	if err != nil {
		return nil, err
	}
	return ast.NewTypeDecl(name, fields, mergeSpan(start, close.Span)), nil
}

func (p *Parser) parseFieldList() ([]*ast.FieldDef, error) {
	var fields []*ast.FieldDef
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		nameTok, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		name := ast.NewIdent(nameTok.Value, nameTok.Vis, nameTok.Span)
		fields = append(fields, ast.NewFieldDef(name, typ, mergeSpan(nameTok.Span, typ.Span())))
		if !p.accept(lexer.COMMA) {
			p.accept(lexer.SEMICOLON)
		}
	}
	return fields, nil
}

func (p *Parser) parseClassDecl() (ast.Decl, error) {
	start := p.next().Span // class
	nameTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	name := ast.NewIdent(nameTok.Value, nameTok.Vis, nameTok.Span)

	var base *ast.Ident
	if p.accept(lexer.COLON) {
		baseTok, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		base = ast.NewIdent(baseTok.Value, baseTok.Vis, baseTok.Span)
	}

	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}

	var fields []*ast.FieldDef
	var methods []*ast.FnDecl
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		if p.accept(lexer.SEMICOLON) {
			continue
		}
		declaredAsync := false
		if p.at(lexer.ASYNC) && p.peek().Kind == lexer.IDENT {
			p.next()
			declaredAsync = true
		}
		memberTok := p.cur()
		if memberTok.Kind != lexer.IDENT {
			return nil, p.errorf(diag.CodeParseUnexpectedToken, memberTok.Span,
				"expected a class member, found %q", describeToken(memberTok))
		}
		if p.peek().Kind == lexer.LPAREN || declaredAsync {
			method, err := p.parseFnDecl(declaredAsync)
			if err != nil {
				return nil, err
			}
			methods = append(methods, method)
			continue
		}
		// field: name: type
		p.next()
		if _, err := p.expect(lexer.COLON); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fname := ast.NewIdent(memberTok.Value, memberTok.Vis, memberTok.Span)
		fields = append(fields, ast.NewFieldDef(fname, typ, mergeSpan(memberTok.Span, typ.Span())))
		if !p.accept(lexer.COMMA) {
			p.accept(lexer.SEMICOLON)
		}
	}
	close, err := p.expect(lexer.RBRACE)
	if err != nil {
		return nil, err
	}
	return ast.NewClassDecl(name, base, fields, methods, mergeSpan(start, close.Span)), nil
}

func (p *Parser) parseTestDecl() (ast.Decl, error) {
	start := p.next().Span // test
	name, err := p.expect(lexer.STRING)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewTestDecl(name.Value, body, mergeSpan(start, body.Span())), nil
}

// parseFnDecl parses name(params)(: ret)? followed by exactly one of the
// two body forms: a one-liner introduced by = or =>, or a brace block.
func (p *Parser) parseFnDecl(declaredAsync bool) (*ast.FnDecl, error) {
	nameTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	name := ast.NewIdent(nameTok.Value, nameTok.Vis, nameTok.Span)

	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}

	var ret ast.TypeExpr
	if p.accept(lexer.COLON) {
		ret, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}

	switch p.cur().Kind {
	case lexer.ASSIGN, lexer.ARROW:
		p.next()
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.NewFnDecl(name, params, ret, body, nil, declaredAsync,
			mergeSpan(nameTok.Span, body.Span())), nil
	case lexer.LBRACE:
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return ast.NewFnDecl(name, params, ret, nil, block, declaredAsync,
			mergeSpan(nameTok.Span, block.Span())), nil
	default:
		return nil, p.errorf(diag.CodeParseUnexpectedToken, p.cur().Span,
			"function %s needs a body: one-liner (= or =>) or block", name.Name)
	}
}

func (p *Parser) parseParamList() ([]*ast.Param, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	var params []*ast.Param
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		nameTok, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		name := ast.NewIdent(nameTok.Value, nameTok.Vis, nameTok.Span)
		span := nameTok.Span

		var typ ast.TypeExpr
		if p.accept(lexer.COLON) {
			typ, err = p.parseType()
			if err != nil {
				return nil, err
			}
			span = mergeSpan(span, typ.Span())
		}
		var def ast.Expr
		if p.accept(lexer.ASSIGN) {
			def, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
			span = mergeSpan(span, def.Span())
		}
		params = append(params, ast.NewParam(name, typ, def, span))
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseType() (ast.TypeExpr, error) {
	nameTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	var typ ast.TypeExpr = ast.NewNamedType(
		ast.NewIdent(nameTok.Value, nameTok.Vis, nameTok.Span), nameTok.Span)
	for {
		switch {
		case p.at(lexer.LBRACKET) && p.peek().Kind == lexer.RBRACKET:
			p.next()
			close := p.next()
			typ = ast.NewArrayType(typ, mergeSpan(typ.Span(), close.Span))
		case p.at(lexer.QUESTION):
			q := p.next()
			typ = ast.NewOptionalType(typ, mergeSpan(typ.Span(), q.Span))
		default:
			return typ, nil
		}
	}
}
