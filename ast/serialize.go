package ast

// Serialize renders a debug byte form of the tree: the same s-expression
// ToString produces, as bytes. Unlike compiler's bytecode format this is
// not a stable wire format — it exists for logging and golden-file tests,
// not cross-process exchange.
func (a *AST) Serialize() []byte {
	return []byte(a.ToString())
}
