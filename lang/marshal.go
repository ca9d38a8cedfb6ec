package lang

import (
	"encoding/json"
)

// MarshalJSON implements json.Marshaler for Program.
func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}

// ToMap converts the program to a native Go map keyed by function name.
func (p *Program) ToMap() map[string]any {
	result := make(map[string]any, len(p.Functions))

	for fn := range p.All() {
		result[fn.Name] = fn.ToMap()
	}

	return result
}

// ToMap converts the function to a native Go map.
func (f *Function) ToMap() map[string]any {
	params := make([]any, len(f.Params))
	for i, param := range f.Params {
		params[i] = map[string]any{
			"name": param.Name,
			"type": param.Type.String(),
		}
	}

	m := map[string]any{
		"params": params,
		"body":   blockToNative(f.Body),
	}

	if f.Result != TypeNone {
		m["result"] = f.Result.String()
	}

	return m
}

func blockToNative(b *Block) map[string]any {
	stmts := make([]any, len(b.Stmts))

	for i, stmt := range b.Stmts {
		switch s := stmt.(type) {
		case *AssignStmt:
			stmts[i] = map[string]any{
				"assign": map[string]any{
					"name":  s.Name,
					"value": exprToNative(s.X),
				},
			}
		case *ExprStmt:
			stmts[i] = map[string]any{"expr": exprToNative(s.X)}
		}
	}

	m := map[string]any{"stmts": stmts}
	if b.Expr != nil {
		m["value"] = exprToNative(b.Expr)
	}

	return m
}

// exprToNative converts an expression to nested maps with one key naming the
// node shape.
func exprToNative(x Expr) any {
	switch x := x.(type) {
	case *LiteralExpr:
		return map[string]any{"literal": x.Value.Native()}

	case *VarExpr:
		return map[string]any{"var": x.Name}

	case *BinaryExpr:
		return map[string]any{
			"binary": map[string]any{
				"op":    x.Op.String(),
				"left":  exprToNative(x.Left),
				"right": exprToNative(x.Right),
			},
		}

	case *CallExpr:
		args := make([]any, len(x.Args))
		for i, arg := range x.Args {
			args[i] = exprToNative(arg)
		}

		return map[string]any{
			"call": map[string]any{"name": x.Name, "args": args},
		}

	case *IfExpr:
		m := map[string]any{
			"cond": exprToNative(x.Cond),
			"then": blockToNative(x.Then),
		}

		switch x.Else.Kind {
		case ElseBlock:
			m["else"] = blockToNative(x.Else.Block)
		case ElseIf:
			m["else"] = exprToNative(x.Else.If)
		}

		return map[string]any{"if": m}
	}

	return nil
}
