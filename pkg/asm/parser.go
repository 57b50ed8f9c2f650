package asm

import (
	"fmt"
	"strconv"

	"stackvm/pkg/color"
	"stackvm/pkg/vm"
)

type operand int

const (
	noOperand operand = iota
	valueOperand
	depthOperand
	offsetOperand
	nameOperand
)

type mnemonic struct {
	operand operand
	build   func(arg int, name string) vm.Symbolic
}

var mnemonics = map[string]mnemonic{
	"push": {valueOperand, func(arg int, _ string) vm.Symbolic { return vm.Push(vm.Literal(arg)) }},
	"pop":  {noOperand, func(int, string) vm.Symbolic { return vm.Pop() }},
	"dup":  {noOperand, func(int, string) vm.Symbolic { return vm.Dup() }},
	"swap": {depthOperand, func(arg int, _ string) vm.Symbolic { return vm.Swap(arg) }},
	"jmp":  {offsetOperand, func(arg int, _ string) vm.Symbolic { return vm.Jump(arg) }},
	"call": {nameOperand, func(_ int, name string) vm.Symbolic { return vm.Call(name) }},
	"ret":  {noOperand, func(int, string) vm.Symbolic { return vm.Return() }},
}

func init() {
	for _, op := range []vm.Operation{vm.Add, vm.Sub, vm.Mul, vm.Div, vm.Mod} {
		op := op
		mnemonics[op.String()] = mnemonic{noOperand, func(int, string) vm.Symbolic { return vm.BinOp(op) }}
	}

	conds := []vm.Condition{vm.Equal, vm.NotEqual, vm.GreaterThan, vm.LessThan, vm.GreaterEqual, vm.LessEqual}
	for _, cond := range conds {
		cond := cond
		mnemonics[cond.String()] = mnemonic{offsetOperand, func(arg int, _ string) vm.Symbolic { return vm.Branch(cond, arg) }}
	}
}

// fixup is a jump or branch whose offset names a label
type fixup struct {
	at    int
	label string
	pos   Position
}

type function struct {
	name   string
	code   []vm.Symbolic
	labels map[string]int
	fixups []fixup
}

type Parser struct {
	lexer        *Lexer
	currentToken Token
	defs         []vm.Definition
	errors       []string
}

// NewParser creates a new parser instance
func NewParser(l *Lexer) *Parser {
	p := &Parser{lexer: l}
	p.nextToken()

	return p
}

// Parse reads every function of the input
func (p *Parser) Parse() {
	for p.currentToken.Type != EOF {
		if p.currentToken.Type != FUNC {
			p.addError(fmt.Sprintf("Expected 'func', found '%s'", p.currentToken.Lexeme))
			p.skipToFunc()
			continue
		}

		p.parseFunction()
	}
}

// Definitions returns the parsed functions in source order
func (p *Parser) Definitions() []vm.Definition {
	return p.defs
}

// Errors returns the list of parsing errors
func (p *Parser) Errors() []string {
	return p.errors
}

// Parse assembles src into definitions ready for linking
func Parse(src string) ([]vm.Definition, error) {
	p := NewParser(NewLexer(src))
	p.Parse()

	if errs := p.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("assembly failed with %d errors: %s", len(errs), errs[0])
	}

	return p.Definitions(), nil
}

func (p *Parser) parseFunction() {
	p.nextToken() // func

	if p.currentToken.Type != ID {
		p.addError("Expected function name")
		p.skipToFunc()
		return
	}

	fn := &function{name: p.currentToken.Lexeme, labels: make(map[string]int)}
	p.nextToken()

	for p.currentToken.Type != END {
		switch p.currentToken.Type {
		case EOF, FUNC:
			p.addError(fmt.Sprintf("Missing 'end' for function '%s'", fn.name))
			p.finish(fn)
			return

		case ID:
			if p.lexer.Peek().Type == COLON {
				p.parseLabel(fn)
			} else {
				p.parseInstruction(fn)
			}

		default:
			p.addError(fmt.Sprintf("Unexpected token '%s'", p.currentToken.Lexeme))
			p.nextToken()
		}
	}

	p.nextToken() // end
	p.finish(fn)
}

func (p *Parser) parseLabel(fn *function) {
	name := p.currentToken.Lexeme
	if _, dup := fn.labels[name]; dup {
		p.addError(fmt.Sprintf("Duplicate label '%s'", name))
	}
	fn.labels[name] = len(fn.code)

	p.nextToken() // label
	p.nextToken() // :
}

func (p *Parser) parseInstruction(fn *function) {
	tok := p.currentToken
	m, ok := mnemonics[tok.Lexeme]
	p.nextToken()

	if !ok {
		p.addErrorAt(tok.Pos, fmt.Sprintf("Unknown instruction '%s'", tok.Lexeme))
		return
	}

	arg, name := 0, ""
	switch m.operand {
	case valueOperand:
		v, ok := p.parseNumber(32)
		if !ok {
			return
		}
		arg = v

	case depthOperand:
		v, ok := p.parseNumber(strconv.IntSize)
		if !ok {
			return
		}
		if v < 0 {
			p.addErrorAt(tok.Pos, "Swap depth must not be negative")
			return
		}
		arg = v

	case offsetOperand:
		if p.currentToken.Type == ID {
			fn.fixups = append(fn.fixups, fixup{at: len(fn.code), label: p.currentToken.Lexeme, pos: p.currentToken.Pos})
			p.nextToken()
			break
		}
		v, ok := p.parseNumber(strconv.IntSize)
		if !ok {
			return
		}
		arg = v

	case nameOperand:
		if p.currentToken.Type != ID {
			p.addError("Expected function name")
			return
		}
		name = p.currentToken.Lexeme
		p.nextToken()
	}

	fn.code = append(fn.code, m.build(arg, name))
}

func (p *Parser) parseNumber(bits int) (int, bool) {
	tok := p.currentToken
	if tok.Type != NUM {
		p.addError("Expected number")
		return 0, false
	}
	p.nextToken()

	v, err := strconv.ParseInt(tok.Lexeme, 10, bits)
	if err != nil {
		p.addErrorAt(tok.Pos, fmt.Sprintf("Number out of range '%s'", tok.Lexeme))
		return 0, false
	}

	return int(v), true
}

// finish resolves label offsets and records the definition
func (p *Parser) finish(fn *function) {
	for _, f := range fn.fixups {
		target, ok := fn.labels[f.label]
		if !ok {
			p.addErrorAt(f.pos, fmt.Sprintf("Undefined label '%s'", f.label))
			continue
		}
		fn.code[f.at].Offset = target - f.at
	}

	p.defs = append(p.defs, vm.Def(fn.name, fn.code...))
}

func (p *Parser) skipToFunc() {
	for p.currentToken.Type != FUNC && p.currentToken.Type != EOF {
		p.nextToken()
	}
}

func (p *Parser) nextToken() {
	p.currentToken = p.lexer.NextToken()
}

func (p *Parser) addError(msg string) {
	p.addErrorAt(p.currentToken.Pos, msg)
}

func (p *Parser) addErrorAt(pos Position, msg string) {
	p.errors = append(p.errors, color.ErrorAt(pos.Line, pos.Column, msg))
}
