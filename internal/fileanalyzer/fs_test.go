package fileanalyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drodil/depspector/internal/astindex"
	"github.com/drodil/depspector/pkg/types"
)

func TestFsAnalyzerDangerousPathViaVariable(t *testing.T) {
	source := "const path = '/etc/passwd';\nfs.readFile(path, callback);"
	ctx := &FileContext{
		Source:   source,
		FilePath: "index.js",
		Package:  "evil-pkg",
		Ast: &astindex.ParsedAst{
			Calls: []astindex.CallInfo{
				{
					ObjectName: "fs",
					CalleeName: "readFile",
					Line:       2,
					Arguments: []astindex.ArgInfo{
						{Kind: astindex.ArgIdentifier, Value: "path"},
					},
				},
			},
			Variables: &astindex.VariableMap{
				Scalars: map[string]string{"path": "/etc/passwd"},
				Objects: map[string][]astindex.ObjectProperty{},
			},
		},
	}

	issues := (&FsAnalyzer{}).Analyze(ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "fs", issues[0].Analyzer)
	assert.Equal(t, types.SeverityHigh, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "/etc/passwd")
}

func TestFsAnalyzerWriteMethod(t *testing.T) {
	ctx := &FileContext{
		Source:   "fs.writeFileSync('out.txt', data);",
		FilePath: "index.js",
		Package:  "pkg",
		Ast: &astindex.ParsedAst{
			Calls: []astindex.CallInfo{
				{ObjectName: "fs", CalleeName: "writeFileSync", Line: 1,
					Arguments: []astindex.ArgInfo{{Kind: astindex.ArgStringLiteral, Value: "out.txt"}}},
			},
			Variables: &astindex.VariableMap{Scalars: map[string]string{}, Objects: map[string][]astindex.ObjectProperty{}},
		},
	}

	issues := (&FsAnalyzer{}).Analyze(ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, types.SeverityMedium, issues[0].Severity)
}

func TestFsAnalyzerAdditionalDangerPaths(t *testing.T) {
	ctx := &FileContext{
		Source:   "fs.readFileSync('/custom/secret');",
		FilePath: "index.js",
		Package:  "pkg",
		Config:   &Config{AdditionalDangerPaths: []string{"/custom/secret"}},
		Ast: &astindex.ParsedAst{
			Calls: []astindex.CallInfo{
				{ObjectName: "fs", CalleeName: "readFileSync", Line: 1,
					Arguments: []astindex.ArgInfo{{Kind: astindex.ArgStringLiteral, Value: "/custom/secret"}}},
			},
			Variables: &astindex.VariableMap{Scalars: map[string]string{}, Objects: map[string][]astindex.ObjectProperty{}},
		},
	}

	issues := (&FsAnalyzer{}).Analyze(ctx)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "/custom/secret")
}
