package fileanalyzer

import (
	"net"
	"regexp"

	"github.com/drodil/depspector/internal/astindex"
	"github.com/drodil/depspector/pkg/types"
)

var ipv4Pattern = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)

// cgnBlock is the Carrier-Grade NAT range 100.64.0.0/10.
var cgnBlock = mustParseCIDR("100.64.0.0/10")

func mustParseCIDR(s string) *net.IPNet {
	_, n, err := net.ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	return n
}

// isPublicIPv4 reports whether ip is a publicly routable address: not
// loopback, private, link-local, CGN, multicast, or broadcast/zero.
func isPublicIPv4(ip net.IP) bool {
	if ip == nil || ip.To4() == nil {
		return false
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsMulticast() || ip.IsUnspecified() {
		return false
	}
	if ip.Equal(net.IPv4bcast) {
		return false
	}
	if cgnBlock.Contains(ip) {
		return false
	}
	return true
}

// IPAnalyzer walks string literals looking for hardcoded public IPv4
// addresses, a common indicator of a hardcoded C2 endpoint.
type IPAnalyzer struct{}

func (a *IPAnalyzer) Name() string                   { return "ip" }
func (a *IPAnalyzer) UsesAST() bool                   { return true }
func (a *IPAnalyzer) RequiresNetwork() bool           { return false }
func (a *IPAnalyzer) Interest() astindex.NodeInterest { return astindex.InterestStringLiterals }

func (a *IPAnalyzer) Analyze(ctx *FileContext) []types.Issue {
	if !ctx.Config.isEnabled() || ctx.Ast == nil {
		return nil
	}
	allowed := map[string]bool{}
	if ctx.Config != nil {
		for _, ip := range ctx.Config.AllowedIPs {
			allowed[ip] = true
		}
	}

	var issues []types.Issue
	for _, lit := range ctx.Ast.StringLiterals {
		if !ipv4Pattern.MatchString(lit.Value) || lit.Value != ipv4Pattern.FindString(lit.Value) {
			continue
		}
		ip := net.ParseIP(lit.Value)
		if ip == nil || !isPublicIPv4(ip) || allowed[lit.Value] {
			continue
		}
		issues = append(issues, newIssue(ctx, a.Name(), "ip", lit.Line,
			"Hardcoded public IP address: "+lit.Value, types.SeverityMedium, lit.Value))
	}
	return issues
}
