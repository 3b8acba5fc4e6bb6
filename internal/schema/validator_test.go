package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fishSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "weight_kg"],
  "properties": {
    "name": {"type": "string"},
    "weight_kg": {"type": "number"},
    "habitats": {
      "type": "array",
      "items": {"type": "string"}
    }
  }
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func loadSchema(t *testing.T, doc string) *Validator {
	t.Helper()
	v, err := Load(writeFile(t, t.TempDir(), "fish_schema.json", doc))
	require.NoError(t, err)
	return v
}

func loadFishSchema(t *testing.T) *Validator {
	t.Helper()
	return loadSchema(t, fishSchema)
}

func decode(t *testing.T, doc string) any {
	t.Helper()
	v, err := Decode(strings.NewReader(doc), "inline")
	require.NoError(t, err)
	return v
}

func TestValidate_Valid(t *testing.T) {
	v := loadFishSchema(t)

	errs := v.Validate(decode(t, `{"name": "Bass", "weight_kg": 1.2}`))
	assert.Empty(t, errs)
}

func TestValidate_MissingRequired(t *testing.T) {
	v := loadFishSchema(t)

	errs := v.Validate(decode(t, `{"name": "Trout"}`))
	require.Len(t, errs, 1)
	assert.Equal(t, Path{}, errs[0].Path)
	assert.Equal(t, "required", errs[0].Keyword)
	assert.Contains(t, errs[0].Message, "weight_kg")
}

func TestValidate_EachMissingPropertyReported(t *testing.T) {
	v := loadFishSchema(t)

	errs := v.Validate(decode(t, `{}`))
	require.Len(t, errs, 2)
	for _, e := range errs {
		assert.Equal(t, Path{}, e.Path)
		assert.Equal(t, "required", e.Keyword)
	}
	assert.Contains(t, errs[0].Message, "'name'")
	assert.NotContains(t, errs[0].Message, "weight_kg")
	assert.Contains(t, errs[1].Message, "'weight_kg'")
	assert.NotContains(t, errs[1].Message, "name")
}

func TestValidate_EachDependentRequiredReported(t *testing.T) {
	v := loadSchema(t, `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "dependentRequired": {"habitats": ["depth_m", "water_type"]}
}`)

	errs := v.Validate(decode(t, `{"habitats": ["reef"]}`))
	require.Len(t, errs, 2)
	assert.Equal(t, "dependentRequired", errs[0].Keyword)
	assert.Contains(t, errs[0].Message, "depth_m")
	assert.NotContains(t, errs[0].Message, "water_type")
	assert.Contains(t, errs[1].Message, "water_type")
	assert.NotContains(t, errs[1].Message, "depth_m")
}

func TestValidate_AnyOfIncludesClosestAlternative(t *testing.T) {
	v := loadSchema(t, `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "length_cm": {
      "anyOf": [
        {"type": "number", "minimum": 0, "multipleOf": 2},
        {"type": "integer", "minimum": 10}
      ]
    }
  }
}`)

	errs := v.Validate(decode(t, `{"length_cm": -3}`))
	require.Len(t, errs, 1)
	assert.Equal(t, Path{KeySegment("length_cm")}, errs[0].Path)
	assert.Equal(t, "anyOf", errs[0].Keyword)
	assert.Contains(t, errs[0].Message, "anyOf")
	assert.Contains(t, errs[0].Message, "10")
}

func TestValidate_WrongType(t *testing.T) {
	v := loadFishSchema(t)

	errs := v.Validate(decode(t, `{"name": "Pike", "weight_kg": "heavy"}`))
	require.Len(t, errs, 1)
	assert.Equal(t, Path{KeySegment("weight_kg")}, errs[0].Path)
	assert.Equal(t, "type", errs[0].Keyword)
	assert.Contains(t, errs[0].Message, "number")
}

func TestValidate_AllErrorsSortedByPath(t *testing.T) {
	v := loadFishSchema(t)

	errs := v.Validate(decode(t, `{"name": 3, "habitats": ["reef", 2, 1]}`))

	var paths []string
	for _, e := range errs {
		paths = append(paths, e.Path.String())
	}
	assert.Equal(t, []string{
		"[]",
		"['habitats', 1]",
		"['habitats', 2]",
		"['name']",
	}, paths)
}

func TestValidate_Deterministic(t *testing.T) {
	v := loadFishSchema(t)
	doc := decode(t, `{"weight_kg": "x", "name": 3, "habitats": [1, 2]}`)

	first := v.Validate(doc)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, v.Validate(doc))
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "nope.json")},
		{"malformed json", writeFile(t, dir, "broken.json", `{"type": `)},
		{"invalid schema", writeFile(t, dir, "invalid.json", `{"type": 12}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Load(tt.path)
			assert.Error(t, err)
			assert.Nil(t, v)
		})
	}
}

func TestLoad_Location(t *testing.T) {
	p := writeFile(t, t.TempDir(), "fish_schema.json", fishSchema)

	v, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, p, v.Location())
}

func TestDecode_Malformed(t *testing.T) {
	tests := []string{
		`{"name": `,
		`not json`,
		`{"a": 1} trailing`,
	}
	for _, doc := range tests {
		_, err := Decode(strings.NewReader(doc), "inline")
		assert.Error(t, err, doc)
	}
}

func TestDecodeFile_Missing(t *testing.T) {
	_, err := DecodeFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
