package assertion

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"netintent/internal/domain"
)

// Entry declares one test class and the parameter sets it runs with
type Entry struct {
	TestClass string          `yaml:"test_class" json:"test_class" validate:"required,testclass"`
	Label     string          `yaml:"label,omitempty" json:"label,omitempty"`
	TestData  []domain.Params `yaml:"test_data" json:"test_data" validate:"required,min=1"`
}

// Catalog is an ordered list of test entries
type Catalog struct {
	Entries []Entry `validate:"dive"`
}

// LoadCatalog reads and validates a catalog file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog YAML
func ParseCatalog(data []byte) (*Catalog, error) {
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	cat := &Catalog{Entries: entries}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

// Validate checks classes, hosts and explicit check lists
func (c *Catalog) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("testclass", func(fl validator.FieldLevel) bool {
		_, ok := LookupClass(fl.Field().String())
		return ok
	}); err != nil {
		return fmt.Errorf("register catalog validation: %w", err)
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}

	for i, entry := range c.Entries {
		class, _ := LookupClass(entry.TestClass)
		for j, p := range entry.TestData {
			if p.Host() == "" {
				return fmt.Errorf("invalid catalog: entry %d (%s) test_data %d: host is required", i, entry.TestClass, j)
			}
			if _, err := class.Select(p); err != nil {
				return fmt.Errorf("invalid catalog: entry %d (%s) test_data %d: %w", i, entry.TestClass, j, err)
			}
		}
	}
	return nil
}

// Count returns the number of parameter sets across all entries
func (c *Catalog) Count() int {
	n := 0
	for _, e := range c.Entries {
		n += len(e.TestData)
	}
	return n
}
