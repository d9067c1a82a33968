// Package catalog holds the fixed choice sets offered by the bot: languages,
// regions and salary bands. The sets are configuration data loaded from YAML.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Kind classifies a callback payload by the choice set it belongs to.
type Kind int

const (
	// KindUnknown marks payloads outside every set.
	KindUnknown Kind = iota
	// KindLanguage marks a language/specialization value.
	KindLanguage
	// KindSalary marks a salary band label.
	KindSalary
	// KindRegion marks a region value, the remote sentinel included.
	KindRegion
)

func (k Kind) String() string {
	switch k {
	case KindLanguage:
		return "language"
	case KindSalary:
		return "salary"
	case KindRegion:
		return "region"
	default:
		return "unknown"
	}
}

// SalaryBand is a named half-open range [Min, Max).
type SalaryBand struct {
	Label string `yaml:"label"`
	Min   int64  `yaml:"min"`
	Max   int64  `yaml:"max"`
}

// MinParam renders the lower bound in the textual form stored in postings.
func (b SalaryBand) MinParam() string { return strconv.FormatInt(b.Min, 10) }

// MaxParam renders the upper bound in the textual form stored in postings.
func (b SalaryBand) MaxParam() string { return strconv.FormatInt(b.Max, 10) }

// Catalog is immutable after Parse.
type Catalog struct {
	Languages    []string     `yaml:"languages"`
	Regions      []string     `yaml:"regions"`
	RemoteRegion string       `yaml:"remote_region"`
	SalaryBands  []SalaryBand `yaml:"salary_bands"`

	kinds map[string]Kind
	bands map[string]SalaryBand
}

// Default returns the catalog shipped with the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded catalog invalid: %v", err))
	}
	return c
}

// Load reads a catalog from path, or returns Default when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	if err := c.build(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) build() error {
	if len(c.Languages) == 0 || len(c.Regions) == 0 || len(c.SalaryBands) == 0 {
		return fmt.Errorf("catalog: languages, regions and salary_bands must be non-empty")
	}

	c.kinds = make(map[string]Kind, len(c.Languages)+len(c.Regions)+len(c.SalaryBands))
	c.bands = make(map[string]SalaryBand, len(c.SalaryBands))
	add := func(value string, kind Kind) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("catalog: empty %s value", kind)
		}
		if prev, ok := c.kinds[value]; ok {
			return fmt.Errorf("catalog: %q listed as both %s and %s", value, prev, kind)
		}
		c.kinds[value] = kind
		return nil
	}

	for _, l := range c.Languages {
		if err := add(l, KindLanguage); err != nil {
			return err
		}
	}
	for _, r := range c.Regions {
		if err := add(r, KindRegion); err != nil {
			return err
		}
	}
	for _, b := range c.SalaryBands {
		if err := add(b.Label, KindSalary); err != nil {
			return err
		}
		if b.Min < 0 || b.Min >= b.Max {
			return fmt.Errorf("catalog: band %q needs 0 <= min < max, got [%d, %d)", b.Label, b.Min, b.Max)
		}
		c.bands[b.Label] = b
	}

	sorted := append([]SalaryBand(nil), c.SalaryBands...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Min < sorted[i-1].Max {
			return fmt.Errorf("catalog: bands %q and %q overlap", sorted[i-1].Label, sorted[i].Label)
		}
	}

	if c.kinds[c.RemoteRegion] != KindRegion {
		return fmt.Errorf("catalog: remote_region %q must be one of the regions", c.RemoteRegion)
	}
	return nil
}

// Classify reports which choice set payload belongs to. Matching is exact.
func (c *Catalog) Classify(payload string) Kind {
	return c.kinds[payload]
}

// Band resolves a salary band by label.
func (c *Catalog) Band(label string) (SalaryBand, bool) {
	b, ok := c.bands[label]
	return b, ok
}

// IsRemote reports whether region is the remote-work sentinel.
func (c *Catalog) IsRemote(region string) bool {
	return region == c.RemoteRegion
}

// BandLabels lists salary band labels in catalog order.
func (c *Catalog) BandLabels() []string {
	out := make([]string, len(c.SalaryBands))
	for i, b := range c.SalaryBands {
		out[i] = b.Label
	}
	return out
}
