// Package schema binds species documents to a JSON Schema (draft 2020-12)
// and reports every violation with its structural path.
package schema

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ValidationError is a single violation reported by the engine.
type ValidationError struct {
	Path    Path
	Keyword string
	Message string
}

// Validator holds a compiled schema. It is immutable once loaded.
type Validator struct {
	location string
	schema   *jsonschema.Schema
	printer  *message.Printer
}

// Load reads the schema document at path and compiles it with draft 2020-12
// semantics. Missing files, malformed JSON and invalid schemas are errors.
func Load(path string) (*Validator, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve schema path %s", path)
	}

	doc, err := DecodeFile(abs)
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft2020)
	if err := compiler.AddResource(abs, doc); err != nil {
		return nil, errors.Wrapf(err, "register schema %s", abs)
	}
	sch, err := compiler.Compile(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "compile schema %s", abs)
	}

	return &Validator{
		location: abs,
		schema:   sch,
		printer:  message.NewPrinter(language.English),
	}, nil
}

// Location returns the absolute path the schema was loaded from.
func (v *Validator) Location() string {
	return v.location
}

// Validate checks a decoded instance and returns all violations sorted by path.
// A nil result means the instance conforms.
func (v *Validator) Validate(instance any) []ValidationError {
	err := v.schema.Validate(instance)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		// Non-validation failures (e.g. an undecodable value) are reported at the root.
		return []ValidationError{{Path: Path{}, Message: err.Error()}}
	}

	var out []ValidationError
	v.collect(instance, verr, &out)
	slices.SortStableFunc(out, byPath)
	return out
}

func byPath(a, b ValidationError) int {
	return a.Path.Compare(b.Path)
}

// collect flattens the engine's cause tree into leaf violations. A required
// or dependentRequired failure yields one violation per missing property.
// anyOf and oneOf failures are reported once, at their own location.
func (v *Validator) collect(instance any, node *jsonschema.ValidationError, out *[]ValidationError) {
	keyword := keywordOf(node.ErrorKind)
	path := resolvePath(instance, node.InstanceLocation)

	switch k := node.ErrorKind.(type) {
	case *kind.Required:
		for _, name := range k.Missing {
			*out = append(*out, ValidationError{
				Path:    path,
				Keyword: keyword,
				Message: (&kind.Required{Missing: []string{name}}).LocalizedString(v.printer),
			})
		}
		return
	case *kind.DependentRequired:
		for _, name := range k.Missing {
			*out = append(*out, ValidationError{
				Path:    path,
				Keyword: keyword,
				Message: (&kind.DependentRequired{Prop: k.Prop, Missing: []string{name}}).LocalizedString(v.printer),
			})
		}
		return
	}

	if len(node.Causes) == 0 || keyword == "anyOf" || keyword == "oneOf" {
		msg := "validation failed"
		if node.ErrorKind != nil {
			msg = node.ErrorKind.LocalizedString(v.printer)
		}
		if best, ok := v.bestMatch(instance, node.Causes); ok {
			msg = fmt.Sprintf("%s: %s", msg, best.Message)
		}
		*out = append(*out, ValidationError{
			Path:    path,
			Keyword: keyword,
			Message: msg,
		})
		return
	}
	for _, cause := range node.Causes {
		v.collect(instance, cause, out)
	}
}

// bestMatch picks the alternative that came closest to matching: the one
// with the fewest violations, earliest on ties. Its shallowest violation is
// returned.
func (v *Validator) bestMatch(instance any, causes []*jsonschema.ValidationError) (ValidationError, bool) {
	var best []ValidationError
	for _, cause := range causes {
		var leaves []ValidationError
		v.collect(instance, cause, &leaves)
		if len(leaves) == 0 {
			continue
		}
		if best == nil || len(leaves) < len(best) {
			best = leaves
		}
	}
	if len(best) == 0 {
		return ValidationError{}, false
	}
	slices.SortStableFunc(best, byPath)
	return best[0], true
}

func keywordOf(ek jsonschema.ErrorKind) string {
	if ek == nil {
		return ""
	}
	kp := ek.KeywordPath()
	if len(kp) == 0 {
		return ""
	}
	return kp[0]
}

// DecodeFile reads and decodes a JSON document. Numbers are kept exact so the
// engine sees the same values that are on disk.
func DecodeFile(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return Decode(f, path)
}

// Decode reads a single JSON document from r. name is used in error messages.
func Decode(r io.Reader, name string) (any, error) {
	doc, err := jsonschema.UnmarshalJSON(r)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", name)
	}
	return doc, nil
}
