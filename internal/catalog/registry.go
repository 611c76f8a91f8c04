package catalog

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrNotFound is returned when a collection, item or lesson does not exist.
var ErrNotFound = errors.New("catalog: not found")

const schemaFile = "collection.schema.json"

//go:embed data/*.json
var builtin embed.FS

// Registry holds the available collections.
type Registry struct {
	collections []*Collection
	byID        map[string]*Collection
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
	defaultErr  error
)

// Default returns the registry of built-in collections. The embedded data is
// parsed and validated once.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(builtin, "data")
		if err != nil {
			defaultErr = err
			return
		}
		defaultReg, defaultErr = Load(sub)
	})
	return defaultReg, defaultErr
}

// Load reads every *.json file in fsys except the schema itself, validates it
// against collection.schema.json (which must also live in fsys) and checks
// cross references. All problems are reported together.
func Load(fsys fs.FS) (*Registry, error) {
	schema, err := compileSchema(fsys)
	if err != nil {
		return nil, err
	}

	names, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	reg := &Registry{byID: make(map[string]*Collection)}
	var errs []error
	for _, name := range names {
		if name == schemaFile {
			continue
		}
		c, err := loadCollection(fsys, name, schema)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := reg.byID[c.ID]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate collection ID %q", name, c.ID))
			continue
		}
		reg.byID[c.ID] = c
		reg.collections = append(reg.collections, c)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	sort.Slice(reg.collections, func(i, j int) bool {
		return reg.collections[i].ID < reg.collections[j].ID
	})
	return reg, nil
}

func compileSchema(fsys fs.FS) (*jsonschema.Schema, error) {
	raw, err := fs.ReadFile(fsys, schemaFile)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := "schema://" + schemaFile
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

func loadCollection(fsys fs.FS, name string, schema *jsonschema.Schema) (*Collection, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: invalid JSON: %w", name, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%s: schema validation failed: %w", name, err)
	}

	var c Collection
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", name, err)
	}
	if want := strings.TrimSuffix(path.Base(name), ".json"); c.ID != want {
		return nil, fmt.Errorf("%s: collection ID %q does not match file name", name, c.ID)
	}
	if err := validateCollection(&c); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	c.index()
	return &c, nil
}

// validateCollection checks what the schema cannot: unique IDs and category
// references.
func validateCollection(c *Collection) error {
	var errs []string

	cats := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if cats[cat.ID] {
			errs = append(errs, fmt.Sprintf("duplicate category ID %q", cat.ID))
		}
		cats[cat.ID] = true
	}

	ids := make(map[string]bool, len(c.Items))
	for _, it := range c.Items {
		if ids[it.ID] {
			errs = append(errs, fmt.Sprintf("duplicate item ID %q", it.ID))
		}
		ids[it.ID] = true
		if !cats[it.Category] {
			errs = append(errs, fmt.Sprintf("item %q references unknown category %q", it.ID, it.Category))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid collection %s:\n  %s", c.ID, strings.Join(errs, "\n  "))
	}
	return nil
}

// List returns every collection ordered by ID.
func (r *Registry) List() []*Collection {
	return slices.Clone(r.collections)
}

// Get returns the collection with the given ID.
func (r *Registry) Get(id string) (*Collection, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("collection %q: %w", id, ErrNotFound)
	}
	return c, nil
}

// ForLanguage returns the collections for a language code.
func (r *Registry) ForLanguage(code string) []*Collection {
	var out []*Collection
	for _, c := range r.collections {
		if c.LanguageCode == code {
			out = append(out, c)
		}
	}
	return out
}

// Languages returns the distinct language codes, sorted.
func (r *Registry) Languages() []string {
	var codes []string
	for _, c := range r.collections {
		if !slices.Contains(codes, c.LanguageCode) {
			codes = append(codes, c.LanguageCode)
		}
	}
	slices.Sort(codes)
	return codes
}
