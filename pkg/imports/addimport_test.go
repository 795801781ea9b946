package imports

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddImport(t *testing.T) {
	tests := []struct {
		name string
		src  string
		path string
		want string
	}{
		{
			name: "last grouped block",
			src:  "package main\n\nimport (\n\t\"fmt\"\n)\n\nimport (\n\t\"os\"\n)\n\nfunc main() {}\n",
			path: "strings",
			want: "package main\n\nimport (\n\t\"fmt\"\n)\n\nimport (\n\t\"os\"\n\t\"strings\"\n)\n\nfunc main() {}\n",
		},
		{
			name: "grouped block preferred over singles",
			src:  "package main\n\nimport (\n\t\"fmt\"\n)\nimport \"os\"\n",
			path: "io",
			want: "package main\n\nimport (\n\t\"fmt\"\n\t\"io\"\n)\nimport \"os\"\n",
		},
		{
			name: "after last single import",
			src:  "package main\n\nimport \"fmt\"\nimport \"os\"\n\nfunc main() {}\n",
			path: "io",
			want: "package main\n\nimport \"fmt\"\nimport \"os\"\nimport \"io\"\n\nfunc main() {}\n",
		},
		{
			name: "new block after package clause",
			src:  "package main\n\nfunc main() {}\n",
			path: "fmt",
			want: "package main\n\nimport (\n\t\"fmt\"\n)\n\nfunc main() {}\n",
		},
		{
			name: "package clause without trailing newline",
			src:  "package main",
			path: "fmt",
			want: "package main\n\nimport (\n\t\"fmt\"\n)\n",
		},
		{
			name: "one-line group",
			src:  "package main\n\nimport (\"fmt\")\n",
			path: "os",
			want: "package main\n\nimport (\"fmt\"\n\t\"os\"\n)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AddImport([]byte(tt.src), tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.want, string(got))

			_, err := parser.ParseFile(token.NewFileSet(), "", got, parser.ImportsOnly)
			assert.NoError(t, err)
		})
	}
}

func TestAddImport_AlreadyImported(t *testing.T) {
	src := "package main\n\nimport (\n\tstr \"strings\"\n)\n"
	got, ok := AddImport([]byte(src), "strings")
	assert.True(t, ok)
	assert.Equal(t, src, string(got))
}

func TestAddImport_NoPackageClause(t *testing.T) {
	src := "func main() {}\n"
	got, ok := AddImport([]byte(src), "fmt")
	assert.False(t, ok)
	assert.Equal(t, src, string(got))
}
