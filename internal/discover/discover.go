// Package discover walks a package directory to find the source files
// file analyzers should run against, applying the exclusion rules of
// SPEC_FULL.md §4.8 (step 4b).
package discover

import (
	"os"
	"path/filepath"
	"strings"
)

var alwaysSkipDirs = map[string]bool{
	".bin": true, "test": true, "tests": true, "__tests__": true, "e2e-test": true,
	"example": true, "examples": true, "dist": true, "build": true, "dist-types": true,
	".yarn": true,
}

var includeExtensions = map[string]bool{
	".js": true, ".mjs": true, ".cjs": true, ".ts": true,
}

var testFileSuffixes = []string{
	".test.js", ".test.ts", ".test.mjs", ".test.cjs",
	".spec.js", ".spec.ts", ".spec.mjs", ".spec.cjs",
	".tests.js", ".tests.ts", ".specs.js", ".specs.ts",
	"_test.js", "_test.ts", "_spec.js", "_spec.ts",
	"-test.js", "-test.ts", "-spec.js", "-spec.ts",
}

var testFileStems = map[string]bool{
	"test": true, "tests": true, "spec": true, "specs": true,
	"test-helper": true, "test-helpers": true, "test-utils": true, "test-setup": true,
	"setup-tests": true, "jest.config": true, "jest.setup": true,
	"vitest.config": true, "vitest.setup": true, "mocha.opts": true, "karma.conf": true,
}

// IsTestFile applies the naming rule of §4.8: a filename is a test if its
// lowercased form ends in a known test suffix, or its stem (filename
// without extension) matches a known test-tooling name.
func IsTestFile(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range testFileSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	stem := strings.TrimSuffix(lower, filepath.Ext(lower))
	return testFileStems[stem]
}

// Options controls Walk's exclusion behavior.
type Options struct {
	IsRootPackage       bool
	WorkspaceDirs       map[string]bool // absolute package directories to skip when IsRootPackage
	Exclude             []string        // directory names to skip
	ExcludePaths        []string        // substrings of relative path to skip
	IncludeTests        bool
}

// Walk returns every source file under root eligible for file analysis,
// never following symlinks.
func Walk(root string, opts Options) ([]string, error) {
	excludeDirs := make(map[string]bool, len(opts.Exclude))
	for _, e := range opts.Exclude {
		excludeDirs[e] = true
	}

	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			name := info.Name()
			if path != root {
				if alwaysSkipDirs[name] || excludeDirs[name] {
					return filepath.SkipDir
				}
				if opts.IsRootPackage && (name == "node_modules" || opts.WorkspaceDirs[path]) {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !includeExtensions[filepath.Ext(path)] {
			return nil
		}
		if strings.HasSuffix(path, ".d.ts") {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr == nil {
			for _, sub := range opts.ExcludePaths {
				if sub != "" && strings.Contains(filepath.ToSlash(rel), sub) {
					return nil
				}
			}
		}

		if !opts.IncludeTests && IsTestFile(info.Name()) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
