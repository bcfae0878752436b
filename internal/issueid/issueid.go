// Package issueid derives stable, short issue identifiers from an
// analyzer name, package, file path, line number and message — stable
// across worker reordering, minor code movement, and equivalent source
// emitted into multiple distribution subdirectories (see SPEC_FULL.md C1).
package issueid

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// distPrefixes are stripped from a normalized relative path before hashing,
// so the same source emitted into different build output directories
// collapses to the same issue ID.
var distPrefixes = []string{
	"dist-node/", "dist-src/", "dist-web/", "dist-cjs/", "dist-esm/",
	"dist-types/", "dist/", "lib/", "build/", "cjs/", "esm/", "umd/",
}

const lineBucketSize = 20

// PackagePrefix computes the package-prefix component of an issue ID: the
// leading scope character stripped, separators replaced with hyphens,
// truncated to 8 characters. Returns "unknown" for an empty name.
func PackagePrefix(pkgName string) string {
	name := strings.TrimSpace(pkgName)
	if name == "" {
		return "unknown"
	}
	if strings.HasPrefix(name, "@") {
		name = name[1:]
	}
	name = strings.NewReplacer("/", "-", "_", "-", ".", "-").Replace(name)
	if len(name) > 8 {
		name = name[:8]
	}
	if name == "" {
		return "unknown"
	}
	return name
}

// NormalizePath strips the path prefix up to and including the last
// node_modules/<pkg> segment (two segments for a scoped package name, one
// otherwise), then strips known distribution-directory prefixes.
func NormalizePath(filePath, pkgName string) string {
	path := filepath_ToSlash(filePath)
	if idx := strings.LastIndex(path, "node_modules/"); idx >= 0 {
		rest := path[idx+len("node_modules/"):]
		segments := strings.Split(rest, "/")
		skip := 1
		if strings.HasPrefix(pkgName, "@") || (len(segments) > 0 && strings.HasPrefix(segments[0], "@")) {
			skip = 2
		}
		if len(segments) > skip {
			path = strings.Join(segments[skip:], "/")
		} else if len(segments) > 0 {
			path = segments[len(segments)-1]
		}
	} else {
		// No node_modules structure: use the basename.
		if idx := strings.LastIndex(path, "/"); idx >= 0 {
			path = path[idx+1:]
		}
	}
	for _, prefix := range distPrefixes {
		if strings.HasPrefix(path, prefix) {
			path = path[len(prefix):]
			break
		}
	}
	return path
}

func filepath_ToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// LineBucket floors a 1-based line number to a 20-line bucket so small line
// drifts between equivalent builds collapse to the same ID.
func LineBucket(line int) int {
	if line <= 0 {
		return 0
	}
	return (line / lineBucketSize) * lineBucketSize
}

// MessageSignature takes the first four whitespace-separated tokens of a
// message, joined by single spaces, truncated to 40 characters.
func MessageSignature(message string) string {
	fields := strings.Fields(message)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	sig := strings.Join(fields, " ")
	if len(sig) > 40 {
		sig = sig[:40]
	}
	return sig
}

// Generate produces the final stable issue ID.
func Generate(analyzer, pkgName, filePath string, line int, message string) string {
	prefix := PackagePrefix(pkgName)
	normPath := NormalizePath(filePath, pkgName)
	bucket := LineBucket(line)
	sig := MessageSignature(message)

	h := sha256.Sum256([]byte(normPath + ":" + itoa(bucket) + ":" + sig))
	hash6 := hex.EncodeToString(h[:])[:6]

	id := strings.ToUpper(prefix + "-" + analyzer + "-" + hash6)
	for strings.Contains(id, "--") {
		id = strings.ReplaceAll(id, "--", "-")
	}
	return id
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// MatchesIgnore reports whether id matches an ignore pattern either by
// exact equality, or by equal prefixes when both are split on the
// rightmost hyphen (so a logical issue can be pinned independent of its
// hash suffix).
func MatchesIgnore(id, pattern string) bool {
	if id == pattern {
		return true
	}
	idPrefix, idOK := splitRightmostHyphen(id)
	patPrefix, patOK := splitRightmostHyphen(pattern)
	if !idOK || !patOK {
		return false
	}
	return idPrefix == patPrefix
}

func splitRightmostHyphen(s string) (prefix string, ok bool) {
	idx := strings.LastIndex(s, "-")
	if idx < 0 {
		return "", false
	}
	return s[:idx], true
}
