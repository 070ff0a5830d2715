package extractor

import (
	"regexp"
	"strings"

	"codeatlas/internal/model"
)

// The fallback baseline: five independent line-oriented patterns that work
// on any text regardless of grammar availability. All symbols it produces
// have global scope and no signature or docstring.

var (
	fallbackFuncRe = regexp.MustCompile(
		`(?m)^[ \t]*(?:export[ \t]+)?(?:pub[ \t]+)?(?:static[ \t]+)?(?:async[ \t]+)?(?:function|func|def|fn|sub)[ \t]+([A-Za-z_$][A-Za-z0-9_$]*)`)
	fallbackTypeRe = regexp.MustCompile(
		`(?m)^[ \t]*(?:export[ \t]+)?(?:pub[ \t]+)?(?:abstract[ \t]+)?(class|interface|struct|enum|trait)[ \t]+([A-Za-z_$][A-Za-z0-9_$]*)`)
	fallbackVarRe = regexp.MustCompile(
		`(?m)^[ \t]*(?:export[ \t]+)?(?:let|const|var|val|final)[ \t]+([A-Za-z_$][A-Za-z0-9_$]*)`)
	fallbackImportRe = regexp.MustCompile(
		`(?m)^[ \t]*(?:import|from|require|use|include)\b[ \t]*(.*)$`)
	fallbackExportRe = regexp.MustCompile(
		`(?m)^[ \t]*(?:export|module\.exports)\b[ \t]*[=.{]?[ \t]*(.*)$`)

	identRe = regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$./-]*`)
)

var fallbackTypeCategories = map[string]model.Category{
	"class":     model.CategoryClass,
	"interface": model.CategoryInterface,
	"struct":    model.CategoryClass,
	"enum":      model.CategoryEnum,
	"trait":     model.CategoryInterface,
}

// fallbackExtract is the lowest common denominator all symbol extraction
// degrades to. It never fails; at worst it returns no symbols.
func fallbackExtract(content string) []model.SymbolInfo {
	if content == "" {
		return nil
	}
	offsets := lineOffsets(content)
	var symbols []model.SymbolInfo

	for _, m := range fallbackFuncRe.FindAllStringSubmatchIndex(content, -1) {
		symbols = append(symbols, fallbackSymbol(content, offsets, m[2], m[3], model.CategoryFunction))
	}
	for _, m := range fallbackTypeRe.FindAllStringSubmatchIndex(content, -1) {
		keyword := content[m[2]:m[3]]
		cat := fallbackTypeCategories[keyword]
		symbols = append(symbols, fallbackSymbol(content, offsets, m[4], m[5], cat))
	}
	for _, m := range fallbackVarRe.FindAllStringSubmatchIndex(content, -1) {
		symbols = append(symbols, fallbackSymbol(content, offsets, m[2], m[3], model.CategoryVariable))
	}
	for _, m := range fallbackImportRe.FindAllStringSubmatchIndex(content, -1) {
		rest := content[m[2]:m[3]]
		name := firstIdentifier(rest)
		if name == "" {
			continue
		}
		sym := fallbackSymbol(content, offsets, m[2], m[3], model.CategoryImport)
		sym.Name = name
		sym.Imported = true
		symbols = append(symbols, sym)
	}
	for _, m := range fallbackExportRe.FindAllStringSubmatchIndex(content, -1) {
		rest := content[m[2]:m[3]]
		name := firstIdentifier(rest)
		if name == "" {
			continue
		}
		sym := fallbackSymbol(content, offsets, m[2], m[3], model.CategoryExport)
		sym.Name = name
		sym.Exported = true
		symbols = append(symbols, sym)
	}
	return symbols
}

func fallbackSymbol(content string, offsets []int, start, end int, cat model.Category) model.SymbolInfo {
	line, col := offsetPosition(offsets, start)
	endCol := col + (end - start) - 1
	if endCol < col {
		endCol = col
	}
	return model.SymbolInfo{
		Name:        content[start:end],
		Category:    cat,
		Scope:       model.ScopeGlobal,
		StartLine:   line,
		EndLine:     line,
		StartColumn: col,
		EndColumn:   endCol,
	}
}

func offsetPosition(offsets []int, idx int) (int, int) {
	line := 1
	for line < len(offsets) && offsets[line] <= idx {
		line++
	}
	return line, idx - offsets[line-1]
}

// Declaration keywords that may sit between an export marker and the name.
var skipTokens = map[string]bool{
	"default": true, "function": true, "class": true, "interface": true,
	"const": true, "let": true, "var": true, "async": true, "type": true,
	"abstract": true, "enum": true,
}

// firstIdentifier pulls the leading identifier-ish token out of the rest of
// an import/export line, skipping punctuation, quotes and keywords.
func firstIdentifier(rest string) string {
	rest = strings.TrimSpace(rest)
	rest = strings.TrimLeft(rest, "{('\"`")
	for i := 0; i < 4; i++ {
		tok := identRe.FindString(rest)
		if !skipTokens[tok] {
			return tok
		}
		rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), tok))
	}
	return identRe.FindString(rest)
}
