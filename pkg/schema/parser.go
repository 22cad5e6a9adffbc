package schema

import (
	"fmt"
	"strconv"
)

// Parser parses XDR interface-description source into a list of Defns.
type Parser struct {
	lexer    *Lexer
	current  Token
	previous Token
	errors   []ParseError
}

// ParseError represents a recoverable parsing error. Parse collects these
// across the whole input so one malformed definition doesn't prevent
// diagnostics about the rest; the caller (cmd/xdrgen) reports the first one
// as the fatal *GenError, since no partial output is ever written regardless
// of how many parse errors are collected here.
type ParseError struct {
	Position Position
	Message  string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Position, e.Message)
}

// NewParser creates a new parser for the given input.
func NewParser(filename, input string) *Parser {
	p := &Parser{lexer: NewLexer(filename, input)}
	p.advance()
	return p
}

// Parse parses the entire input as a sequence of top-level definitions.
func (p *Parser) Parse() ([]Defn, []ParseError) {
	var defns []Defn
	for !p.check(TokenEOF) {
		switch {
		case p.check(TokenComment), p.check(TokenDocComment):
			p.advance()
		case p.check(TokenConst):
			d, err := p.parseConstDef()
			if err != nil {
				p.errors = append(p.errors, *err)
				p.synchronize()
				continue
			}
			defns = append(defns, d)
		case p.check(TokenTypedef):
			d, err := p.parseTypedef()
			if err != nil {
				p.errors = append(p.errors, *err)
				p.synchronize()
				continue
			}
			defns = append(defns, d)
		case p.check(TokenEnum):
			d, err := p.parseEnumDef()
			if err != nil {
				p.errors = append(p.errors, *err)
				p.synchronize()
				continue
			}
			defns = append(defns, d)
		case p.check(TokenStruct):
			d, err := p.parseStructDef()
			if err != nil {
				p.errors = append(p.errors, *err)
				p.synchronize()
				continue
			}
			defns = append(defns, d)
		case p.check(TokenUnion):
			d, err := p.parseUnionDef()
			if err != nil {
				p.errors = append(p.errors, *err)
				p.synchronize()
				continue
			}
			defns = append(defns, d)
		case p.check(TokenProgram):
			d, err := p.parseProgramDef()
			if err != nil {
				p.errors = append(p.errors, *err)
				p.synchronize()
				continue
			}
			defns = append(defns, d)
		default:
			p.errors = append(p.errors, ParseError{
				Position: p.current.Position,
				Message:  fmt.Sprintf("unexpected token: %s", p.current.Type),
			})
			p.advance()
		}
	}
	return defns, p.errors
}

// parseConstDef parses: "const" identifier "=" constant ";"
func (p *Parser) parseConstDef() (*ConstDefn, *ParseError) {
	p.advance() // consume 'const'
	if !p.check(TokenIdent) {
		return nil, p.error("expected identifier after 'const'")
	}
	name := p.current.Value
	p.advance()
	if !p.consume(TokenEquals, "expected '=' in const definition") {
		return nil, p.error("expected '='")
	}
	val, err := p.parseConstant()
	if err != nil {
		return nil, err
	}
	if !p.consume(TokenSemicolon, "expected ';' after const definition") {
		return nil, p.error("expected ';'")
	}
	return &ConstDefn{Name: name, Value: int64(val)}, nil
}

// parseTypedef parses: "typedef" declaration ";"
// The declared name becomes a Typesyn bound to the declaration's type.
func (p *Parser) parseTypedef() (Defn, *ParseError) {
	p.advance() // consume 'typedef'
	decl, err := p.parseDeclaration()
	if err != nil {
		return nil, err
	}
	if !p.consume(TokenSemicolon, "expected ';' after typedef") {
		return nil, p.error("expected ';'")
	}
	if decl.Void {
		return nil, p.error("typedef cannot declare void")
	}
	// An array/flex typedef needs its own pack/unpack implementation, so it
	// is registered as a Typespec
	// (owning structure, wrapper + codec) rather than a bare Typesyn
	// (pure alias, no codec of its own, inherits the runtime's blanket
	// implementation for the aliased type).
	switch decl.Type.(type) {
	case *ArrayType, *FlexType:
		return &TypespecDefn{Name: decl.Name, Type: decl.Type}, nil
	default:
		return &TypesynDefn{Name: decl.Name, Type: decl.Type}, nil
	}
}

// parseEnumDef parses: "enum" identifier enum_body ";"
func (p *Parser) parseEnumDef() (*TypespecDefn, *ParseError) {
	p.advance() // consume 'enum'
	if !p.check(TokenIdent) {
		return nil, p.error("expected enum name")
	}
	name := p.current.Value
	p.advance()
	enum, err := p.parseEnumBody()
	if err != nil {
		return nil, err
	}
	if !p.consume(TokenSemicolon, "expected ';' after enum definition") {
		return nil, p.error("expected ';'")
	}
	return &TypespecDefn{Name: name, Type: enum}, nil
}

// parseEnumBody parses: "{" (identifier "=" value ",")* identifier "=" value "}"
// A member may also omit its value, defaulting to one more than the
// previous member's, which the grammar denotes by leaving off "= value".
func (p *Parser) parseEnumBody() (*EnumType, *ParseError) {
	if !p.consume(TokenLBrace, "expected '{' to start enum body") {
		return nil, p.error("expected '{'")
	}
	var members []EnumDefn
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		var comment *Comment
		for p.check(TokenDocComment) {
			comment = &Comment{Position: p.current.Position, Text: p.current.Value}
			p.advance()
		}
		if !p.check(TokenIdent) {
			return nil, p.error("expected enum member name")
		}
		memberName := p.current.Value
		p.advance()
		var val Value
		if p.check(TokenEquals) {
			p.advance()
			v, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			val = v
		}
		members = append(members, EnumDefn{Name: memberName, Value: val, Comment: comment})
		if p.check(TokenComma) {
			p.advance()
		} else {
			break
		}
	}
	if !p.consume(TokenRBrace, "expected '}' to close enum body") {
		return nil, p.error("expected '}'")
	}
	return &EnumType{Members: members}, nil
}

// parseStructDef parses: "struct" identifier struct_body ";"
func (p *Parser) parseStructDef() (*TypespecDefn, *ParseError) {
	p.advance() // consume 'struct'
	if !p.check(TokenIdent) {
		return nil, p.error("expected struct name")
	}
	name := p.current.Value
	p.advance()
	st, err := p.parseStructBody()
	if err != nil {
		return nil, err
	}
	if !p.consume(TokenSemicolon, "expected ';' after struct definition") {
		return nil, p.error("expected ';'")
	}
	return &TypespecDefn{Name: name, Type: st}, nil
}

// parseStructBody parses: "{" (declaration ";")* "}"
func (p *Parser) parseStructBody() (*StructType, *ParseError) {
	if !p.consume(TokenLBrace, "expected '{' to start struct body") {
		return nil, p.error("expected '{'")
	}
	var fields []Decl
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		var comment *Comment
		for p.check(TokenDocComment) {
			comment = &Comment{Position: p.current.Position, Text: p.current.Value}
			p.advance()
		}
		decl, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		decl.Comment = comment
		if !p.consume(TokenSemicolon, "expected ';' after field declaration") {
			return nil, p.error("expected ';'")
		}
		fields = append(fields, decl)
	}
	if !p.consume(TokenRBrace, "expected '}' to close struct body") {
		return nil, p.error("expected '}'")
	}
	return &StructType{Fields: fields}, nil
}

// parseUnionDef parses:
// "union" identifier "switch" "(" declaration ")" "{"
//
//	("case" value ":")+ declaration ";" ...
//	["default" ":" declaration ";"]
//
// "}" ";"
func (p *Parser) parseUnionDef() (*TypespecDefn, *ParseError) {
	p.advance() // consume 'union'
	if !p.check(TokenIdent) {
		return nil, p.error("expected union name")
	}
	name := p.current.Value
	p.advance()
	if !p.consume(TokenSwitch, "expected 'switch' in union definition") {
		return nil, p.error("expected 'switch'")
	}
	if !p.consume(TokenLParen, "expected '(' after 'switch'") {
		return nil, p.error("expected '('")
	}
	selector, err := p.parseDeclaration()
	if err != nil {
		return nil, err
	}
	if !p.consume(TokenRParen, "expected ')' after switch selector") {
		return nil, p.error("expected ')'")
	}
	if !p.consume(TokenLBrace, "expected '{' to start union body") {
		return nil, p.error("expected '{'")
	}

	var cases []UnionCase
	var def *Decl
	for p.check(TokenCase) || p.check(TokenDefault) {
		if p.check(TokenDefault) {
			p.advance()
			if !p.consume(TokenColon, "expected ':' after 'default'") {
				return nil, p.error("expected ':'")
			}
			decl, derr := p.parseDeclaration()
			if derr != nil {
				return nil, derr
			}
			if !p.consume(TokenSemicolon, "expected ';' after default case") {
				return nil, p.error("expected ';'")
			}
			def = &decl
			continue
		}
		// One or more "case value :" labels sharing one declaration.
		var labels []Value
		for p.check(TokenCase) {
			p.advance()
			v, verr := p.parseValue()
			if verr != nil {
				return nil, verr
			}
			if !p.consume(TokenColon, "expected ':' after case value") {
				return nil, p.error("expected ':'")
			}
			labels = append(labels, v)
		}
		decl, derr := p.parseDeclaration()
		if derr != nil {
			return nil, derr
		}
		if !p.consume(TokenSemicolon, "expected ';' after case declaration") {
			return nil, p.error("expected ';'")
		}
		for _, lbl := range labels {
			cases = append(cases, UnionCase{Case: lbl, Decl: decl})
		}
	}
	if !p.consume(TokenRBrace, "expected '}' to close union body") {
		return nil, p.error("expected '}'")
	}
	if !p.consume(TokenSemicolon, "expected ';' after union definition") {
		return nil, p.error("expected ';'")
	}
	return &TypespecDefn{Name: name, Type: &UnionType{Selector: selector, Cases: cases, Default: def}}, nil
}

// parseProgramDef parses an RPC program/version/procedure block. Its
// contents are parsed only enough to skip them correctly (balanced braces):
// procedural semantics are never type-checked or emitted, only kept from
// corrupting the surrounding parse.
func (p *Parser) parseProgramDef() (*ProcedureDefn, *ParseError) {
	p.advance() // consume 'program'
	if !p.check(TokenIdent) {
		return nil, p.error("expected program name")
	}
	name := p.current.Value
	p.advance()
	if err := p.skipBalanced(); err != nil {
		return nil, err
	}
	if !p.consume(TokenEquals, "expected '=' after program body") {
		return nil, p.error("expected '='")
	}
	if _, err := p.parseConstant(); err != nil {
		return nil, err
	}
	if !p.consume(TokenSemicolon, "expected ';' after program definition") {
		return nil, p.error("expected ';'")
	}
	return &ProcedureDefn{Name: name}, nil
}

// skipBalanced consumes a "{" ... "}" block, tracking nesting depth so
// inner version/procedure "{"/"}" pairs don't terminate early.
func (p *Parser) skipBalanced() *ParseError {
	if !p.consume(TokenLBrace, "expected '{'") {
		return p.error("expected '{'")
	}
	depth := 1
	for depth > 0 {
		if p.check(TokenEOF) {
			return p.error("unexpected end of input inside block")
		}
		if p.check(TokenLBrace) {
			depth++
		} else if p.check(TokenRBrace) {
			depth--
		}
		p.advance()
	}
	return nil
}

// parseDeclaration parses one `declaration` production (struct field,
// union selector/case payload, or typedef body).
func (p *Parser) parseDeclaration() (Decl, *ParseError) {
	if p.check(TokenVoid) {
		p.advance()
		return Decl{Void: true}, nil
	}

	if p.check(TokenOpaque) {
		p.advance()
		if !p.check(TokenIdent) {
			return Decl{}, p.error("expected identifier after 'opaque'")
		}
		name := p.current.Value
		p.advance()
		return p.parseOpaqueSuffix(name)
	}
	if p.check(TokenString) {
		p.advance()
		if !p.check(TokenIdent) {
			return Decl{}, p.error("expected identifier after 'string'")
		}
		name := p.current.Value
		p.advance()
		if !p.consume(TokenLAngle, "expected '<' after string field name") {
			return Decl{}, p.error("expected '<'")
		}
		max, err := p.parseOptionalFlexMax()
		if err != nil {
			return Decl{}, err
		}
		return Decl{Name: name, Type: &FlexType{Inner: TString, Max: max}}, nil
	}

	ty, terr := p.parseTypeSpecifier()
	if terr != nil {
		return Decl{}, terr
	}

	if p.check(TokenStar) {
		p.advance()
		if !p.check(TokenIdent) {
			return Decl{}, p.error("expected identifier after '*'")
		}
		name := p.current.Value
		p.advance()
		return Decl{Name: name, Type: &OptionType{Inner: ty}}, nil
	}

	if !p.check(TokenIdent) {
		return Decl{}, p.error("expected identifier in declaration")
	}
	name := p.current.Value
	p.advance()

	switch {
	case p.check(TokenLBracket):
		p.advance()
		length, lerr := p.parseValue()
		if lerr != nil {
			return Decl{}, lerr
		}
		if !p.consume(TokenRBracket, "expected ']' after array length") {
			return Decl{}, p.error("expected ']'")
		}
		return Decl{Name: name, Type: &ArrayType{Inner: ty, Length: length}}, nil
	case p.check(TokenLAngle):
		p.advance()
		max, merr := p.parseOptionalFlexMax()
		if merr != nil {
			return Decl{}, merr
		}
		return Decl{Name: name, Type: &FlexType{Inner: ty, Max: max}}, nil
	default:
		return Decl{Name: name, Type: ty}, nil
	}
}

// parseOpaqueSuffix handles "opaque name [len]" / "opaque name <max?>".
func (p *Parser) parseOpaqueSuffix(name string) (Decl, *ParseError) {
	switch {
	case p.check(TokenLBracket):
		p.advance()
		length, err := p.parseValue()
		if err != nil {
			return Decl{}, err
		}
		if !p.consume(TokenRBracket, "expected ']' after opaque length") {
			return Decl{}, p.error("expected ']'")
		}
		return Decl{Name: name, Type: &ArrayType{Inner: TOpaque, Length: length}}, nil
	case p.check(TokenLAngle):
		p.advance()
		max, err := p.parseOptionalFlexMax()
		if err != nil {
			return Decl{}, err
		}
		return Decl{Name: name, Type: &FlexType{Inner: TOpaque, Max: max}}, nil
	default:
		return Decl{}, p.error("expected '[' or '<' after opaque field name")
	}
}

// parseOptionalFlexMax parses the ">" terminator of a flex declarator,
// optionally preceded by a bound value: "<" [value] ">".
func (p *Parser) parseOptionalFlexMax() (Value, *ParseError) {
	if p.check(TokenRAngle) {
		p.advance()
		return nil, nil
	}
	max, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if !p.consume(TokenRAngle, "expected '>' to close flex bound") {
		return nil, p.error("expected '>'")
	}
	return max, nil
}

// parseTypeSpecifier parses a scalar type_specifier: [unsigned] int/hyper,
// float, double, quadruple, bool, or an identifier reference.
func (p *Parser) parseTypeSpecifier() (Type, *ParseError) {
	if p.check(TokenUnsigned) {
		p.advance()
		switch {
		case p.check(TokenInt_):
			p.advance()
			return TUInt, nil
		case p.check(TokenHyper):
			p.advance()
			return TUHyper, nil
		default:
			return nil, p.error("expected 'int' or 'hyper' after 'unsigned'")
		}
	}
	switch {
	case p.check(TokenInt_):
		p.advance()
		return TInt, nil
	case p.check(TokenHyper):
		p.advance()
		return THyper, nil
	case p.check(TokenFloat):
		p.advance()
		return TFloat, nil
	case p.check(TokenDouble):
		p.advance()
		return TDouble, nil
	case p.check(TokenQuadruple):
		p.advance()
		return TQuadruple, nil
	case p.check(TokenBool):
		p.advance()
		return TBool, nil
	case p.check(TokenEnum), p.check(TokenStruct), p.check(TokenUnion):
		return nil, p.error("anonymous compound type specifiers are not supported; give it a name with a separate definition")
	case p.check(TokenIdent):
		name := p.current.Value
		p.advance()
		return &IdentType{Name: name}, nil
	default:
		return nil, p.error(fmt.Sprintf("expected a type specifier, got %s", p.current.Type))
	}
}

// parseValue parses a Value: a literal constant or an identifier reference
// (TRUE/FALSE are lexed as keywords but are valid Value identifiers).
func (p *Parser) parseValue() (Value, *ParseError) {
	switch {
	case p.check(TokenTrue):
		p.advance()
		return IdentValue("TRUE"), nil
	case p.check(TokenFalse):
		p.advance()
		return IdentValue("FALSE"), nil
	case p.check(TokenIdent):
		name := p.current.Value
		p.advance()
		return IdentValue(name), nil
	default:
		return p.parseConstant()
	}
}

// parseConstant parses a decimal, 0x-hex, or 0-octal integer literal.
func (p *Parser) parseConstant() (ConstValue, *ParseError) {
	tok := p.current
	switch tok.Type {
	case TokenInt:
		n, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return 0, p.error(fmt.Sprintf("invalid integer literal %q: %v", tok.Value, err))
		}
		p.advance()
		return ConstValue(n), nil
	case TokenHexInt:
		n, err := strconv.ParseUint(tok.Value[2:], 16, 64)
		if err != nil {
			return 0, p.error(fmt.Sprintf("invalid hex literal %q: %v", tok.Value, err))
		}
		p.advance()
		return ConstValue(int64(n)), nil
	case TokenOctalInt:
		n, err := strconv.ParseUint(tok.Value, 8, 64)
		if err != nil {
			return 0, p.error(fmt.Sprintf("invalid octal literal %q: %v", tok.Value, err))
		}
		p.advance()
		return ConstValue(int64(n)), nil
	default:
		return 0, p.error(fmt.Sprintf("expected a constant, got %s", tok.Type))
	}
}

// Helper methods, mirroring the recursive-descent idiom.

func (p *Parser) advance() {
	p.previous = p.current
	p.current = p.lexer.Next()
	for p.current.Type == TokenComment {
		p.current = p.lexer.Next()
	}
}

func (p *Parser) check(typ TokenType) bool { return p.current.Type == typ }

func (p *Parser) consume(typ TokenType, _ string) bool {
	if p.check(typ) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) error(msg string) *ParseError {
	return &ParseError{Position: p.current.Position, Message: msg}
}

// synchronize skips tokens until a likely top-level definition boundary.
func (p *Parser) synchronize() {
	for !p.check(TokenEOF) {
		if p.previous.Type == TokenSemicolon {
			return
		}
		switch p.current.Type {
		case TokenConst, TokenTypedef, TokenEnum, TokenStruct, TokenUnion, TokenProgram:
			return
		}
		p.advance()
	}
}

// ParseFile is a convenience function that parses XDR source into Defns.
func ParseFile(filename, input string) ([]Defn, []ParseError) {
	parser := NewParser(filename, input)
	return parser.Parse()
}
