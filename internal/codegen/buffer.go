package codegen

import (
	"fmt"
	"strings"
)

// Stmt is one buffered source line at a nesting depth. Empty Text renders as
// a blank line.
type Stmt struct {
	Depth int
	Text  string
}

// Buffer accumulates statements and renders them once with a fixed indent
// unit. Backends decide what the statements say; the buffer owns layout.
type Buffer struct {
	indent string
	depth  int
	stmts  []Stmt
}

func NewBuffer(indent string) *Buffer {
	return &Buffer{indent: indent}
}

func (b *Buffer) Line(text string) {
	b.stmts = append(b.stmts, Stmt{Depth: b.depth, Text: text})
}

func (b *Buffer) Linef(format string, args ...any) {
	b.Line(fmt.Sprintf(format, args...))
}

func (b *Buffer) Blank() {
	b.stmts = append(b.stmts, Stmt{})
}

// Open writes head (when non-empty) followed by an opening brace on its own
// line and nests subsequent statements one level deeper.
func (b *Buffer) Open(head string) {
	if head != "" {
		b.Line(head)
	}
	b.Line("{")
	b.depth++
}

// Close ends the innermost Open block. suffix follows the brace, as in "};".
func (b *Buffer) Close(suffix string) {
	if b.depth > 0 {
		b.depth--
	}
	b.Line("}" + suffix)
}

// Indent nests following statements without emitting a brace.
func (b *Buffer) Indent() { b.depth++ }

func (b *Buffer) Dedent() {
	if b.depth > 0 {
		b.depth--
	}
}

func (b *Buffer) Statements() []Stmt { return b.stmts }

func (b *Buffer) Len() int { return len(b.stmts) }

// Render joins every statement with a trailing newline.
func (b *Buffer) Render() string {
	var sb strings.Builder
	for _, s := range b.stmts {
		if s.Text != "" {
			sb.WriteString(strings.Repeat(b.indent, s.Depth))
			sb.WriteString(s.Text)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
