package astindex

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/drodil/depspector/pkg/logger"
)

// Parser provides the single shared entry point parse(code, timeout_ms)
// for every file analyzer. A per-worker instance is reused across files to
// amortize grammar loading, grounded on the teacher's Parser in
// internal/analysis/ast/parser.go.
type Parser struct {
	jsParser  *sitter.Parser
	tsParser  *sitter.Parser
	tsxParser *sitter.Parser
	log       *logger.Logger
}

// NewParser constructs a Parser with its three tree-sitter sub-parsers
// initialized once.
func NewParser(log *logger.Logger) *Parser {
	p := &Parser{log: log}

	p.jsParser = sitter.NewParser()
	p.jsParser.SetLanguage(javascript.GetLanguage())

	p.tsParser = sitter.NewParser()
	p.tsParser.SetLanguage(typescript.GetLanguage())

	p.tsxParser = sitter.NewParser()
	p.tsxParser.SetLanguage(tsx.GetLanguage())

	return p
}

// Close releases the underlying tree-sitter parsers.
func (p *Parser) Close() {
	if p.jsParser != nil {
		p.jsParser.Close()
	}
	if p.tsParser != nil {
		p.tsParser.Close()
	}
	if p.tsxParser != nil {
		p.tsxParser.Close()
	}
}

func (p *Parser) parserForFile(filePath string) (string, *sitter.Parser) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return "javascript", p.jsParser
	case ".ts":
		return "typescript", p.tsParser
	case ".tsx":
		return "tsx", p.tsxParser
	default:
		return "", nil
	}
}

// IsSupported reports whether filePath has a parseable extension.
func (p *Parser) IsSupported(filePath string) bool {
	_, parser := p.parserForFile(filePath)
	return parser != nil
}

// Parse is the single shared entry point. timeoutMs of 0 means no limit.
// Exceeding the cooperative timeout returns (nil, nil) and logs a
// diagnostic, matching the "returns none" contract in SPEC_FULL.md §4.2.
func (p *Parser) Parse(ctx context.Context, filePath string, content []byte, timeoutMs int) (*ParsedAst, error) {
	language, sp := p.parserForFile(filePath)
	if sp == nil {
		return nil, fmt.Errorf("astindex: unsupported file type: %s", filePath)
	}

	parseCtx := ctx
	var cancel context.CancelFunc
	if timeoutMs > 0 {
		parseCtx, cancel = context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
		defer cancel()
	}

	tree, err := sp.ParseCtx(parseCtx, nil, content)
	if err != nil {
		if parseCtx.Err() != nil {
			if p.log != nil {
				p.log.WithFields(map[string]interface{}{"file": filePath}).Debug("astindex: parse timed out")
			}
			return nil, nil
		}
		if p.log != nil {
			p.log.WithFields(map[string]interface{}{"file": filePath, "error": err.Error()}).Debug("astindex: parse failed")
		}
		return nil, nil
	}
	if tree == nil {
		return nil, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	ast := &ParsedAst{
		FilePath:        filePath,
		Language:        language,
		Variables:       newVariableMap(),
		HasSyntaxErrors: root.HasError(),
	}

	walkNode(root, content, ast)
	resolveVariableMap(ast)

	return ast, nil
}
