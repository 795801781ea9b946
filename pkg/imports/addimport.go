package imports

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
)

// AddImport inserts an import of path into src. The import goes into the
// last parenthesized import block, else after the last single import, else
// into a new block after the package clause. It reports false when src has
// no parsable package clause. A path that is already imported leaves src
// unchanged.
func AddImport(src []byte, path string) ([]byte, bool) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "", src, parser.ImportsOnly)
	if f == nil || f.Name == nil || (err != nil && !f.Package.IsValid()) {
		return src, false
	}

	for _, spec := range f.Imports {
		if p, err := strconv.Unquote(spec.Path.Value); err == nil && p == path {
			return src, true
		}
	}

	tf := fset.File(f.Package)
	quoted := strconv.Quote(path)

	var lastGroup, lastSingle *ast.GenDecl
	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.IMPORT {
			continue
		}
		if gen.Lparen.IsValid() {
			lastGroup = gen
		} else {
			lastSingle = gen
		}
	}

	switch {
	case lastGroup != nil:
		rparen := tf.Offset(lastGroup.Rparen)
		if tf.Line(lastGroup.Lparen) == tf.Line(lastGroup.Rparen) {
			return insert(src, rparen, "\n\t"+quoted+"\n"), true
		}
		return insert(src, lineStart(src, rparen), "\t"+quoted+"\n"), true

	case lastSingle != nil:
		off, eof := nextLine(src, tf.Offset(lastSingle.End()))
		text := "import " + quoted + "\n"
		if eof {
			text = "\n" + text
		}
		return insert(src, off, text), true

	default:
		off, eof := nextLine(src, tf.Offset(f.Name.End()))
		text := "\nimport (\n\t" + quoted + "\n)\n"
		if eof {
			text = "\n" + text
		}
		return insert(src, off, text), true
	}
}

func insert(src []byte, off int, text string) []byte {
	out := make([]byte, 0, len(src)+len(text))
	out = append(out, src[:off]...)
	out = append(out, text...)
	return append(out, src[off:]...)
}

func lineStart(src []byte, off int) int {
	return bytes.LastIndexByte(src[:off], '\n') + 1
}

// nextLine returns the offset of the line after off. eof is set when off
// is on the last line and that line has no newline.
func nextLine(src []byte, off int) (int, bool) {
	i := bytes.IndexByte(src[off:], '\n')
	if i < 0 {
		return len(src), true
	}
	return off + i + 1, false
}
