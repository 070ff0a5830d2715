package parser

import (
	"context"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"codeatlas/internal/model"
)

// GenericTree is the handle for a tree-sitter parse (ShapeGeneric).
type GenericTree struct {
	Tree     *sitter.Tree
	Source   []byte
	Language string
}

// RootNode returns the tree root.
func (g *GenericTree) RootNode() *sitter.Node {
	return g.Tree.RootNode()
}

// sitterBackend wraps one tree-sitter grammar. Native parsers are not
// reentrant, so each backend keeps a pool and no parser instance is ever
// shared between concurrent workers.
type sitterBackend struct {
	language string
	exts     []string
	lang     *sitter.Language
	pool     sync.Pool
}

func newSitterBackend(language string, lang *sitter.Language, exts ...string) *sitterBackend {
	b := &sitterBackend{language: language, exts: exts, lang: lang}
	b.pool.New = func() any {
		p := sitter.NewParser()
		p.SetLanguage(lang)
		return p
	}
	return b
}

func (b *sitterBackend) Name() string     { return "tree-sitter-" + b.language }
func (b *sitterBackend) Language() string { return b.language }
func (b *sitterBackend) Shape() Shape     { return ShapeGeneric }

func (b *sitterBackend) CanParse(ext string) bool {
	return hasExt(b.exts, ext)
}

func (b *sitterBackend) Parse(ctx context.Context, content []byte, path string) Outcome {
	p := b.pool.Get().(*sitter.Parser)
	defer b.pool.Put(p)

	tree, err := p.ParseCtx(ctx, nil, content)
	if err != nil {
		return Outcome{
			Language: b.language,
			Backend:  b.Name(),
			Err:      &model.ParseError{Path: path, Backend: b.Name(), Message: err.Error()},
		}
	}
	return Outcome{
		OK:       true,
		Shape:    ShapeGeneric,
		Language: b.language,
		Backend:  b.Name(),
		Generic:  &GenericTree{Tree: tree, Source: content, Language: b.language},
	}
}

// sitterBackends returns one backend per bundled grammar, in registration
// order. TypeScript gets the full grammar treatment; JavaScript goes through
// the ESTree backend instead.
func sitterBackends() []Backend {
	return []Backend{
		newSitterBackend("typescript", typescript.GetLanguage(), ".ts", ".mts", ".cts"),
		newSitterBackend("tsx", tsx.GetLanguage(), ".tsx"),
		newSitterBackend("python", python.GetLanguage(), ".py", ".pyw"),
		newSitterBackend("ruby", ruby.GetLanguage(), ".rb", ".rake"),
		newSitterBackend("java", java.GetLanguage(), ".java"),
		newSitterBackend("rust", rust.GetLanguage(), ".rs"),
		newSitterBackend("c", c.GetLanguage(), ".c", ".h"),
		newSitterBackend("cpp", cpp.GetLanguage(), ".cpp", ".cc", ".cxx", ".hpp", ".hh"),
		newSitterBackend("csharp", csharp.GetLanguage(), ".cs"),
	}
}
