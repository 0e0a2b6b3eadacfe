package loader

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// markdownToText renders a markdown document down to its plain text by
// walking the parsed AST and collecting text segments.
func markdownToText(src []byte) (string, error) {
	root := goldmark.New().Parser().Parse(text.NewReader(src))
	var buf bytes.Buffer
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				buf.Write(node.Segment.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteByte('\n')
				}
			}
		case *ast.String:
			if entering {
				buf.Write(node.Value)
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					buf.Write(seg.Value(src))
				}
			}
		case *ast.AutoLink:
			if entering {
				buf.Write(node.URL(src))
			}
		}
		if !entering && n.Type() == ast.TypeBlock {
			buf.WriteByte('\n')
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
