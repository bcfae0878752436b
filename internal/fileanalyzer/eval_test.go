package fileanalyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drodil/depspector/internal/astindex"
	"github.com/drodil/depspector/pkg/types"
)

func TestEvalAnalyzerSuspiciousContent(t *testing.T) {
	source := `eval("require('child_process').exec('rm -rf /')");`
	ctx := &FileContext{
		Source:   source,
		FilePath: "index.js",
		Package:  "evil-pkg",
		Ast: &astindex.ParsedAst{
			Calls: []astindex.CallInfo{
				{
					CalleeName: "eval",
					Line:       1,
					Arguments: []astindex.ArgInfo{
						{Kind: astindex.ArgStringLiteral, Value: "require('child_process').exec('rm -rf /')"},
					},
				},
			},
			Variables: &astindex.VariableMap{Scalars: map[string]string{}, Objects: map[string][]astindex.ObjectProperty{}},
		},
	}

	issues := (&EvalAnalyzer{}).Analyze(ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "eval", issues[0].Analyzer)
	assert.Equal(t, types.SeverityCritical, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "eval")
	assert.NotEqual(t, "[REDACTED]", issues[0].Code)
	assert.NotEmpty(t, issues[0].Code)
}

func TestEvalAnalyzerSafeContent(t *testing.T) {
	source := `new Function("return this")();`
	ctx := &FileContext{
		Source:   source,
		FilePath: "index.js",
		Package:  "benign-pkg",
		Ast: &astindex.ParsedAst{
			Calls: []astindex.CallInfo{
				{
					CalleeName: "Function",
					Line:       1,
					Arguments: []astindex.ArgInfo{
						{Kind: astindex.ArgStringLiteral, Value: "return this"},
					},
				},
			},
			Variables: &astindex.VariableMap{Scalars: map[string]string{}, Objects: map[string][]astindex.ObjectProperty{}},
		},
	}

	issues := (&EvalAnalyzer{}).Analyze(ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "eval", issues[0].Analyzer)
	assert.Equal(t, types.SeverityMedium, issues[0].Severity)
}

func TestEvalAnalyzerSkipsWithoutTriggerOrAst(t *testing.T) {
	ctx := &FileContext{Source: "const x = 1;", FilePath: "index.js", Package: "p", Ast: nil}
	assert.Empty(t, (&EvalAnalyzer{}).Analyze(ctx))
}

func TestEvalAnalyzerDisabledByConfig(t *testing.T) {
	disabled := false
	ctx := &FileContext{
		Source:   `eval("foo");`,
		FilePath: "index.js",
		Package:  "p",
		Config:   &Config{Enabled: &disabled},
		Ast: &astindex.ParsedAst{
			Calls: []astindex.CallInfo{{CalleeName: "eval", Line: 1}},
		},
	}
	assert.Empty(t, (&EvalAnalyzer{}).Analyze(ctx))
}
