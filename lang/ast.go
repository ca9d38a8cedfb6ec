package lang

import (
	"iter"
	"slices"
	"strconv"
)

// Program is a parsed source file: a set of functions with unique names.
type Program struct {
	Functions map[string]*Function
	order     []string
}

// NewProgram returns an empty program.
func NewProgram() *Program {
	return &Program{Functions: make(map[string]*Function)}
}

// Define adds fn to the program, replacing any function with the same name.
// It reports whether a function of that name already existed.
func (p *Program) Define(fn *Function) (replaced bool) {
	if p.Functions == nil {
		p.Functions = make(map[string]*Function)
	}

	if _, replaced = p.Functions[fn.Name]; !replaced {
		p.order = append(p.order, fn.Name)
	}

	p.Functions[fn.Name] = fn

	return replaced
}

// Clone returns a program sharing p's function nodes but with its own
// function table, so functions can be defined without affecting p.
func (p *Program) Clone() *Program {
	c := NewProgram()

	for fn := range p.All() {
		c.Define(fn)
	}

	return c
}

// Function returns the function named name.
func (p *Program) Function(name string) (*Function, bool) {
	fn, ok := p.Functions[name]

	return fn, ok
}

// Names returns the function names in the order they were defined. Functions
// added to the map directly, bypassing [Program.Define], follow in sorted
// order.
func (p *Program) Names() []string {
	names := make([]string, 0, len(p.Functions))
	seen := make(map[string]struct{}, len(p.Functions))

	for _, name := range p.order {
		if _, ok := p.Functions[name]; ok {
			names = append(names, name)
			seen[name] = struct{}{}
		}
	}

	var rest []string

	for name := range p.Functions {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}

	slices.Sort(rest)

	return append(names, rest...)
}

// All returns an iterator over the program's functions in definition order.
func (p *Program) All() iter.Seq[*Function] {
	return func(yield func(*Function) bool) {
		for _, name := range p.Names() {
			if !yield(p.Functions[name]) {
				return
			}
		}
	}
}

// Type is a declared parameter or result type.
type Type int

const (
	TypeNone Type = iota
	TypeI32
	TypeBool
	TypeString
)

// Kind returns the value kind a declaration of this type holds.
func (t Type) Kind() Kind {
	switch t {
	case TypeI32:
		return KindI32
	case TypeBool:
		return KindBool
	case TypeString:
		return KindString
	default:
		return KindUnit
	}
}

// String returns the type's source spelling.
func (t Type) String() string {
	switch t {
	case TypeI32:
		return "i32"
	case TypeBool:
		return "bool"
	case TypeString:
		return "String"
	default:
		return ""
	}
}

// Function is a user-defined function.
type Function struct {
	Name   string
	Params []Param
	Result Type // TypeNone when no result type was declared
	Body   *Block
	Span   Span
}

// Arity returns the number of declared parameters.
func (f *Function) Arity() int { return len(f.Params) }

// Param is a declared parameter. Value holds the absent placeholder of the
// declared type until a call binds it.
type Param struct {
	Name  string
	Type  Type
	Value Value
}

// Block is a sequence of statements followed by the expression whose value
// the block produces.
type Block struct {
	Stmts []Stmt
	Expr  Expr
}

// Stmt is a statement within a block.
type Stmt interface {
	Span() Span
	stmtNode()
}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	X Expr
}

// AssignStmt binds the value of X to Name in the local environment.
type AssignStmt struct {
	Name string
	X    Expr
	Pos  Span
}

func (s *ExprStmt) Span() Span   { return s.X.Span() }
func (s *AssignStmt) Span() Span { return s.Pos }

func (*ExprStmt) stmtNode()   {}
func (*AssignStmt) stmtNode() {}

// Expr is an expression node.
type Expr interface {
	Span() Span
	exprNode()
}

// VarExpr references a variable.
type VarExpr struct {
	Name string
	Pos  Span
}

// LiteralExpr is a constant value.
type LiteralExpr struct {
	Value Value
	Pos   Span
}

// BinaryExpr applies Op to the values of Left and Right.
type BinaryExpr struct {
	Left  Expr
	Op    Opcode
	Right Expr
	Pos   Span
}

// CallExpr calls the native or user function Name.
type CallExpr struct {
	Name string
	Args []Expr
	Pos  Span
}

// IfExpr evaluates Then when Cond is true and Else otherwise.
type IfExpr struct {
	Cond Expr
	Then *Block
	Else Else
	Pos  Span
}

func (e *VarExpr) Span() Span     { return e.Pos }
func (e *LiteralExpr) Span() Span { return e.Pos }
func (e *BinaryExpr) Span() Span  { return e.Pos }
func (e *CallExpr) Span() Span    { return e.Pos }
func (e *IfExpr) Span() Span      { return e.Pos }

func (*VarExpr) exprNode()     {}
func (*LiteralExpr) exprNode() {}
func (*BinaryExpr) exprNode()  {}
func (*CallExpr) exprNode()    {}
func (*IfExpr) exprNode()      {}

// ElseKind tags the form of an if-expression's else branch.
type ElseKind int

const (
	ElseNone  ElseKind = iota // no else branch; evaluates to unit
	ElseBlock                 // else { ... }
	ElseIf                    // else if ...
)

// Else is the else branch of an [IfExpr]. Exactly one of Block and If is set
// according to Kind.
type Else struct {
	Kind  ElseKind
	Block *Block
	If    *IfExpr
}

// Opcode is a binary operator.
type Opcode int

const (
	OpMul Opcode = iota
	OpDiv
	OpMod
	OpAdd
	OpSub
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

var opcodeText = [...]string{
	OpMul: "*",
	OpDiv: "/",
	OpMod: "%",
	OpAdd: "+",
	OpSub: "-",
	OpEq:  "==",
	OpNe:  "!=",
	OpLt:  "<",
	OpLe:  "<=",
	OpGt:  ">",
	OpGe:  ">=",
	OpAnd: "&&",
	OpOr:  "||",
}

// String returns the operator's source spelling.
func (op Opcode) String() string {
	if op < 0 || int(op) >= len(opcodeText) {
		return "Opcode(" + strconv.Itoa(int(op)) + ")"
	}

	return opcodeText[op]
}

// Precedence levels, lowest first.
const (
	precOr = iota + 1
	precAnd
	precEq
	precRel
	precAdd
	precMul
)

// precedence returns the binding strength of op; higher binds tighter.
func (op Opcode) precedence() int {
	switch op {
	case OpOr:
		return precOr
	case OpAnd:
		return precAnd
	case OpEq, OpNe:
		return precEq
	case OpLt, OpLe, OpGt, OpGe:
		return precRel
	case OpAdd, OpSub:
		return precAdd
	default:
		return precMul
	}
}

// Arithmetic reports whether op is one of + - * / %.
func (op Opcode) Arithmetic() bool {
	return op == OpAdd || op == OpSub || op == OpMul || op == OpDiv || op == OpMod
}

// Equality reports whether op is == or !=.
func (op Opcode) Equality() bool { return op == OpEq || op == OpNe }

// Relational reports whether op is one of < <= > >=.
func (op Opcode) Relational() bool {
	return op == OpLt || op == OpLe || op == OpGt || op == OpGe
}

// Logical reports whether op is && or ||.
func (op Opcode) Logical() bool { return op == OpAnd || op == OpOr }
