package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	assert.Len(t, c.Languages, 19)
	assert.Equal(t, []string{"MO", "Москва", "Питер", "Удаленная работа"}, c.Regions)
	assert.True(t, c.IsRemote("Удаленная работа"))
	assert.False(t, c.IsRemote("Москва"))

	band, ok := c.Band("от 150k")
	require.True(t, ok)
	assert.Equal(t, "150000", band.MinParam())
	assert.Equal(t, "200000", band.MaxParam())

	// Cyrillic "к" in the upper bands is distinct from the Latin "k".
	_, ok = c.Band("от 200k")
	assert.False(t, ok)
	_, ok = c.Band("от 200к")
	assert.True(t, ok)
}

func TestClassify(t *testing.T) {
	c := Default()
	cases := map[string]Kind{
		"python":           KindLanguage,
		"c#":               KindLanguage,
		"help desk":        KindLanguage,
		"от 100k":          KindSalary,
		"от 300к":          KindSalary,
		"Питер":            KindRegion,
		"Удаленная работа": KindRegion,
		"xyz123":           KindUnknown,
		"PYTHON":           KindUnknown,
		"":                 KindUnknown,
	}
	for payload, want := range cases {
		assert.Equalf(t, want, c.Classify(payload), "payload %q", payload)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty sets": `languages: [go]`,
		"overlap across sets": `
languages: [go, Москва]
regions: [Москва]
remote_region: Москва
salary_bands: [{label: a, min: 1, max: 2}]`,
		"inverted band": `
languages: [go]
regions: [Москва]
remote_region: Москва
salary_bands: [{label: a, min: 5, max: 5}]`,
		"overlapping bands": `
languages: [go]
regions: [Москва]
remote_region: Москва
salary_bands: [{label: a, min: 1, max: 10}, {label: b, min: 9, max: 20}]`,
		"remote not a region": `
languages: [go]
regions: [Москва]
remote_region: Remote
salary_bands: [{label: a, min: 1, max: 2}]`,
	}
	for name, body := range cases {
		body := body
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	body := `
languages: [go]
regions: [Берлин, Remote]
remote_region: Remote
salary_bands:
  - {label: low, min: 0, max: 100}
  - {label: high, min: 100, max: 200}
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"low", "high"}, c.BandLabels())
	assert.Equal(t, KindRegion, c.Classify("Берлин"))

	c, err = Load("")
	require.NoError(t, err)
	assert.Len(t, c.SalaryBands, 4)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
