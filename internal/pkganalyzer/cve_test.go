package pkganalyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drodil/depspector/internal/prefetch"
	"github.com/drodil/depspector/pkg/types"
)

type fakePrefetched struct {
	metadata map[string]*prefetch.RegistryMetadata
	vulns    map[string][]prefetch.VulnerabilityInfo
}

func (f *fakePrefetched) GetMetadata(name, version string) (*prefetch.RegistryMetadata, bool) {
	m, ok := f.metadata[name]
	return m, ok
}

func (f *fakePrefetched) GetVulnerabilities(name, version string) ([]prefetch.VulnerabilityInfo, bool) {
	v, ok := f.vulns[name+"@"+version]
	return v, ok
}

func TestCVEAnalyzerCVSSSeverityMapping(t *testing.T) {
	pf := &fakePrefetched{
		vulns: map[string][]prefetch.VulnerabilityInfo{
			"leftpad@1.0.0": {
				{ID: "CVE-2021-1234", Summary: "regex DoS", SeverityType: "cvss3", Score: 7.5},
			},
		},
	}
	ctx := &PackageContext{Name: "leftpad", Version: "1.0.0", Prefetched: pf}

	issues := (&CVEAnalyzer{}).Analyze(ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, types.SeverityHigh, issues[0].Severity)
	assert.Equal(t, "https://nvd.nist.gov/vuln/detail/CVE-2021-1234", issues[0].URL)
}

func TestCVEAnalyzerSkipsWhenOfflineOrLocal(t *testing.T) {
	pf := &fakePrefetched{vulns: map[string][]prefetch.VulnerabilityInfo{
		"leftpad@1.0.0": {{ID: "CVE-1", SeverityType: "cvss3", Score: 9.8}},
	}}
	assert.Empty(t, (&CVEAnalyzer{}).Analyze(&PackageContext{Name: "leftpad", Version: "1.0.0", Prefetched: pf, Offline: true}))
	assert.Empty(t, (&CVEAnalyzer{}).Analyze(&PackageContext{Name: "leftpad", Version: "1.0.0", Prefetched: pf, IsLocal: true}))
	assert.Empty(t, (&CVEAnalyzer{}).Analyze(&PackageContext{Name: "leftpad", Version: "1.0.0", Prefetched: nil}))
}

func TestCVEAnalyzerQualitativeSeverityFallback(t *testing.T) {
	pf := &fakePrefetched{vulns: map[string][]prefetch.VulnerabilityInfo{
		"chalk@2.0.0": {{ID: "GHSA-xxxx-yyyy-zzzz", Summary: "prototype pollution", DatabaseSeverity: "moderate"}},
	}}
	ctx := &PackageContext{Name: "chalk", Version: "2.0.0", Prefetched: pf}

	issues := (&CVEAnalyzer{}).Analyze(ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, types.SeverityMedium, issues[0].Severity)
	assert.Equal(t, "https://github.com/advisories/GHSA-xxxx-yyyy-zzzz", issues[0].URL)
}
