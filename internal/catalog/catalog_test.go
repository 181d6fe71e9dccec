package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalogResolvesBUCPDT(t *testing.T) {
	c := Default()
	def := c.TestByCode("BUCP-DT")
	if def == nil {
		t.Fatalf("expected BUCP-DT in default catalog")
	}
	if got := strings.Join(def.BrainRegionCodes, ","); got != "PFC,ACC" {
		t.Fatalf("regions = %q, want PFC,ACC", got)
	}
	if c.TestByCode("missing") != nil {
		t.Fatalf("expected nil for unknown test")
	}
	if def := c.TestByCode("TTF-INTRO"); def == nil || len(def.BrainRegionCodes) != 0 {
		t.Fatalf("TTF-INTRO should exist with no regions, got %+v", def)
	}
}

func TestRegionByCode(t *testing.T) {
	c := Default()
	r := c.RegionByCode("PFC")
	if r == nil || r.Name != "Prefrontal Cortex" || r.Color == "" {
		t.Fatalf("unexpected PFC region: %+v", r)
	}
	if c.RegionByCode("unknown-region") != nil {
		t.Fatalf("expected nil for unknown region")
	}
}

func TestTestByCodeReturnsCopy(t *testing.T) {
	c := Default()
	def := c.TestByCode("BUCP-DT")
	def.BrainRegionCodes[0] = "XXX"
	if again := c.TestByCode("BUCP-DT"); again.BrainRegionCodes[0] != "PFC" {
		t.Fatalf("catalog mutated through returned definition: %v", again.BrainRegionCodes)
	}
}

func TestListingsAreSorted(t *testing.T) {
	c := Default()
	tests := c.Tests()
	for i := 1; i < len(tests); i++ {
		if tests[i-1].Code > tests[i].Code {
			t.Fatalf("tests not sorted at %d: %q > %q", i, tests[i-1].Code, tests[i].Code)
		}
	}
	regions := c.Regions()
	if len(regions) == 0 {
		t.Fatalf("expected regions")
	}
	for i := 1; i < len(regions); i++ {
		if regions[i-1].Code > regions[i].Code {
			t.Fatalf("regions not sorted at %d", i)
		}
	}
}

func TestParseRejectsUnknownRegion(t *testing.T) {
	_, err := Parse([]byte(`
brain_regions:
  - code: PFC
    name: Prefrontal Cortex
tests:
  - code: T1
    brain_regions: [PFC, NOPE]
`))
	if err == nil || !strings.Contains(err.Error(), "NOPE") {
		t.Fatalf("expected unknown region error, got %v", err)
	}
}

func TestParseRejectsDuplicates(t *testing.T) {
	_, err := Parse([]byte(`
brain_regions:
  - code: PFC
  - code: PFC
`))
	if err == nil {
		t.Fatalf("expected duplicate region error")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := []byte(`
brain_regions:
  - code: V1
    name: Primary Visual Cortex
    color: "#000000"
tests:
  - code: VIS
    brain_regions: [V1]
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	c, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile returned error: %v", err)
	}
	if def := c.TestByCode("VIS"); def == nil || def.BrainRegionCodes[0] != "V1" {
		t.Fatalf("unexpected VIS definition: %+v", def)
	}
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
