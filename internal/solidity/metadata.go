// Package solidity pulls deploy-relevant metadata out of Solidity source
// without compiling it.
package solidity

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/crypto/sha3"
)

// ErrNoPragma is returned by Allows when the source declares no compiler pragma.
var ErrNoPragma = errors.New("source has no pragma solidity")

var (
	rePragma   = regexp.MustCompile(`pragma\s+solidity\s*(.*?);`)
	reContract = regexp.MustCompile(`\bcontract\s+(\w+)`)
	reLicense  = regexp.MustCompile(`SPDX-License-Identifier:\s*(.*)`)
	reLibrary  = regexp.MustCompile(`\blibrary\s+(\w+)`)
	reImport   = regexp.MustCompile(`import\s+["'](.+?)["'];`)
	reImportAs = regexp.MustCompile(`import\s+\{[^}]*\}\s+from\s+["'](.+?)["'];`)
	reFunction = regexp.MustCompile(`\bfunction\s+(\w+)\s*\(([^)]*)\)`)

	reLineComment  = regexp.MustCompile(`(?m)//.*$`)
	reBlockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// Function is a function declared in the source.
type Function struct {
	Name      string
	Signature string // canonical, e.g. transfer(address,uint256)
	Selector  string // 0x-prefixed first 4 bytes of keccak256(Signature)
}

// Metadata describes a Solidity source file.
type Metadata struct {
	Pragma       string
	ContractName string
	Optimized    bool
	License      string
	Libraries    []string
	Imports      []string
	Functions    []Function
}

// Extract reads metadata from source. Missing items are left empty.
func Extract(source string) Metadata {
	var md Metadata

	if m := reLicense.FindStringSubmatch(source); m != nil {
		md.License = strings.TrimSpace(m[1])
	}
	for _, re := range []*regexp.Regexp{reImport, reImportAs} {
		for _, m := range re.FindAllStringSubmatch(source, -1) {
			md.Imports = append(md.Imports, m[1])
		}
	}
	md.Optimized = strings.Contains(source, "optimizer") ||
		strings.Contains(source, "optimization") ||
		strings.Contains(source, "optimized")

	code := stripComments(source)
	if m := rePragma.FindStringSubmatch(code); m != nil {
		md.Pragma = strings.TrimSpace(m[1])
	}
	if m := reContract.FindStringSubmatch(code); m != nil {
		md.ContractName = m[1]
	}
	for _, m := range reLibrary.FindAllStringSubmatch(code, -1) {
		md.Libraries = append(md.Libraries, m[1])
	}
	for _, m := range reFunction.FindAllStringSubmatch(code, -1) {
		sig := m[1] + "(" + canonicalParams(m[2]) + ")"
		md.Functions = append(md.Functions, Function{Name: m[1], Signature: sig, Selector: Selector(sig)})
	}
	return md
}

// Allows reports whether compiler version satisfies the source pragma.
func (m Metadata) Allows(version string) (bool, error) {
	if m.Pragma == "" {
		return false, ErrNoPragma
	}
	c, err := semver.NewConstraint(m.Pragma)
	if err != nil {
		return false, fmt.Errorf("pragma %q: %w", m.Pragma, err)
	}
	v, err := semver.NewVersion(strings.TrimPrefix(version, "v"))
	if err != nil {
		return false, fmt.Errorf("compiler version %q: %w", version, err)
	}
	return c.Check(v), nil
}

// Selector returns the 4-byte selector of a canonical signature.
func Selector(signature string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

// canonicalParams drops parameter names and data locations.
// "address to, uint amount" → "address,uint256"
func canonicalParams(params string) string {
	params = strings.TrimSpace(params)
	if params == "" {
		return ""
	}
	parts := strings.Split(params, ",")
	types := make([]string, 0, len(parts))
	for _, p := range parts {
		fields := strings.Fields(p)
		if len(fields) == 0 {
			continue
		}
		types = append(types, canonicalType(fields[0]))
	}
	return strings.Join(types, ",")
}

func canonicalType(t string) string {
	base, suffix := t, ""
	if i := strings.Index(t, "["); i >= 0 {
		base, suffix = t[:i], t[i:]
	}
	switch base {
	case "uint":
		base = "uint256"
	case "int":
		base = "int256"
	case "byte":
		base = "bytes1"
	}
	return base + suffix
}

func stripComments(src string) string {
	src = reBlockComment.ReplaceAllString(src, "")
	return reLineComment.ReplaceAllString(src, "")
}
