// Package catalog holds the read-only reference tables: tests and the brain
// regions they activate. The default tables are embedded; a YAML file with the
// same layout can replace them at startup.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// BrainRegion is a simulated physiological target area.
type BrainRegion struct {
	Code        string `yaml:"code" json:"code"`
	Name        string `yaml:"name" json:"name"`
	Color       string `yaml:"color" json:"color"`
	Description string `yaml:"description" json:"description,omitempty"`
}

// TestDefinition describes a catalog test and the regions it affects.
type TestDefinition struct {
	Code             string   `yaml:"code" json:"code"`
	Name             string   `yaml:"name" json:"name"`
	Framework        string   `yaml:"framework" json:"framework,omitempty"`
	BrainRegionCodes []string `yaml:"brain_regions" json:"brainRegionCodes"`
}

type document struct {
	BrainRegions []BrainRegion    `yaml:"brain_regions"`
	Tests        []TestDefinition `yaml:"tests"`
}

// Catalog is immutable after construction and safe for concurrent readers.
type Catalog struct {
	regions map[string]BrainRegion
	tests   map[string]TestDefinition
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// LoadFromFile reads a catalog from path.
func LoadFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog and checks that every test only references
// known regions.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	c := &Catalog{
		regions: make(map[string]BrainRegion, len(doc.BrainRegions)),
		tests:   make(map[string]TestDefinition, len(doc.Tests)),
	}
	for _, r := range doc.BrainRegions {
		r.Code = strings.TrimSpace(r.Code)
		if r.Code == "" {
			return nil, fmt.Errorf("brain region without code")
		}
		if _, dup := c.regions[r.Code]; dup {
			return nil, fmt.Errorf("duplicate brain region %q", r.Code)
		}
		c.regions[r.Code] = r
	}
	for _, t := range doc.Tests {
		t.Code = strings.TrimSpace(t.Code)
		if t.Code == "" {
			return nil, fmt.Errorf("test without code")
		}
		if _, dup := c.tests[t.Code]; dup {
			return nil, fmt.Errorf("duplicate test %q", t.Code)
		}
		seen := make(map[string]struct{}, len(t.BrainRegionCodes))
		for _, rc := range t.BrainRegionCodes {
			if _, ok := c.regions[rc]; !ok {
				return nil, fmt.Errorf("test %q references unknown brain region %q", t.Code, rc)
			}
			if _, dup := seen[rc]; dup {
				return nil, fmt.Errorf("test %q lists brain region %q twice", t.Code, rc)
			}
			seen[rc] = struct{}{}
		}
		c.tests[t.Code] = t
	}
	return c, nil
}

// TestByCode returns the test definition for code, or nil.
func (c *Catalog) TestByCode(code string) *TestDefinition {
	t, ok := c.tests[code]
	if !ok {
		return nil
	}
	t.BrainRegionCodes = append([]string(nil), t.BrainRegionCodes...)
	return &t
}

// RegionByCode returns the brain region for code, or nil.
func (c *Catalog) RegionByCode(code string) *BrainRegion {
	r, ok := c.regions[code]
	if !ok {
		return nil
	}
	return &r
}

// Tests lists every test ordered by code.
func (c *Catalog) Tests() []TestDefinition {
	out := make([]TestDefinition, 0, len(c.tests))
	for _, t := range c.tests {
		t.BrainRegionCodes = append([]string(nil), t.BrainRegionCodes...)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Regions lists every brain region ordered by code.
func (c *Catalog) Regions() []BrainRegion {
	out := make([]BrainRegion, 0, len(c.regions))
	for _, r := range c.regions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
