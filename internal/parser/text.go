package parser

import "context"

const textBackendName = "text"

// textBackend accepts every extension and produces a ShapeNone outcome,
// signaling the extractor to run its regex baseline. It is always registered
// last so dispatch can never come up empty.
type textBackend struct{}

func newTextBackend() *textBackend { return &textBackend{} }

func (b *textBackend) Name() string             { return textBackendName }
func (b *textBackend) Language() string         { return "text" }
func (b *textBackend) Shape() Shape             { return ShapeNone }
func (b *textBackend) CanParse(ext string) bool { return true }

func (b *textBackend) Parse(ctx context.Context, content []byte, path string) Outcome {
	return Outcome{OK: true, Shape: ShapeNone, Language: b.Language(), Backend: b.Name()}
}
