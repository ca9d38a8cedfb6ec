// Package lang implements fnscript, a small imperative language of typed
// functions over 32-bit integers, booleans and strings. It provides a lexer,
// a hand-written recursive descent parser producing an AST, and a tree-walking
// evaluator that calls into host-supplied native functions.
//
// # Grammar
//
// Informal EBNF, binary operators listed from loosest to tightest binding.
// All binary operators are left-associative.
//
//	Program    → Function*
//	Function   → 'fn' Ident '(' (Param (',' Param)*)? ')' ('=>' Type)? '{' Block '}'
//	Param      → Ident ':' Type
//	Type       → 'i32' | 'bool' | 'String'
//	Block      → Stmt* Expr
//	Stmt       → Ident '=' Expr ';' | Expr ';'
//	Expr       → And ('||' And)*
//	And        → Eq ('&&' Eq)*
//	Eq         → Rel (('==' | '!=') Rel)*
//	Rel        → Add (('<' | '<=' | '>' | '>=') Add)*
//	Add        → Mul (('+' | '-') Mul)*
//	Mul        → Primary (('*' | '/' | '%') Primary)*
//	Primary    → Int | String | 'true' | 'false' | Ident | Call | If | '(' Expr ')'
//	Call       → Ident '(' (Expr (',' Expr)*)? ')'
//	If         → 'if' Expr '{' Block '}' ('else' ('{' Block '}' | If))?
//
// Line comments start with // and run to the end of the line. String
// literals are delimited by double quotes and have no escape sequences.
//
// # Example
//
//	// Recursion is the only form of repetition.
//	fn fact(n: i32) => i32 {
//	    if n <= 1 { 1 } else { n * fact(n - 1) }
//	}
//
//	fn main() {
//	    x = fact(5);
//	    print("5! = ", x);
//	    x
//	}
//
// # Evaluation
//
// [Execute] calls main with no arguments. Types are checked only at run time:
// declared parameter and result types are recorded but not enforced.
//
// Every function call allocates a fresh map of locals, and assignment only
// ever writes to it. Globals supplied by the host are read-only and take
// precedence over locals of the same name. Calls resolve to host natives
// before user functions.
//
// Both operands of a binary operator are always evaluated, left first; && and
// || do not short-circuit. Integer arithmetic that overflows int32 and
// division or remainder by zero fail with typed runtime errors.
//
// Errors come from three separate families: [*LexError], [*ParseError] and
// [*RuntimeError]. The package itself never prints.
package lang
