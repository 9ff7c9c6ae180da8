// Package catalog holds the canonical product table: display name to ERP
// model code plus the sizing attributes the recommendation pipeline needs.
// A Catalog is immutable after construction and safe for concurrent reads.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

type Catalog struct {
	entries []Entry
	byName  map[string]Entry
}

// New validates entries and builds a catalog preserving their order.
func New(entries []Entry) (*Catalog, error) {
	if err := Validate(entries); err != nil {
		return nil, err
	}
	c := &Catalog{
		entries: append([]Entry(nil), entries...),
		byName:  make(map[string]Entry, len(entries)),
	}
	for _, e := range entries {
		c.byName[e.Name] = e
	}
	return c, nil
}

// Default returns the built-in product table.
func Default() *Catalog {
	c, err := New(defaultEntries)
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid built-in table: %v", err))
	}
	return c
}

// Load reads a catalog file. An empty path yields the built-in table.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(f.Products)
}

// ReadFile decodes a catalog file without validating it.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return &f, nil
}

// Validate checks names and codes are unique and that every code's suffix
// agrees with its circuit (D for direct, I for indirect).
func Validate(entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("catalog is empty")
	}
	names := make(map[string]bool, len(entries))
	codes := make(map[string]bool, len(entries))
	var problems []string

	for i, e := range entries {
		switch {
		case strings.TrimSpace(e.Name) == "":
			problems = append(problems, fmt.Sprintf("entry %d: name is required", i))
			continue
		case names[e.Name]:
			problems = append(problems, fmt.Sprintf("duplicate name %q", e.Name))
		}
		names[e.Name] = true

		if e.Code == "" {
			problems = append(problems, fmt.Sprintf("%q: code is required", e.Name))
		} else if codes[e.Code] {
			problems = append(problems, fmt.Sprintf("duplicate code %q", e.Code))
		}
		codes[e.Code] = true

		if e.TankLiters <= 0 {
			problems = append(problems, fmt.Sprintf("%q: tankLiters must be positive", e.Name))
		}

		switch e.Circuit {
		case CircuitDirect:
			if !strings.HasSuffix(e.Code, "D") {
				problems = append(problems, fmt.Sprintf("%q: direct system code %q must end in D", e.Name, e.Code))
			}
		case CircuitIndirect:
			if !strings.HasSuffix(e.Code, "I") {
				problems = append(problems, fmt.Sprintf("%q: indirect system code %q must end in I", e.Name, e.Code))
			}
		default:
			problems = append(problems, fmt.Sprintf("%q: circuit must be %s or %s", e.Name, CircuitDirect, CircuitIndirect))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid catalog: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Lookup finds an entry by its exact display name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	e, ok := c.byName[name]
	return e, ok
}

func (c *Catalog) Contains(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Entries returns a copy in catalog order.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

// Table renders "name: code" lines in catalog order for prompts.
func (c *Catalog) Table() string {
	var b strings.Builder
	for _, e := range c.entries {
		fmt.Fprintf(&b, "- %s: %s\n", e.Name, e.Code)
	}
	return b.String()
}

// Select picks the smallest system whose tank holds at least liters. With
// preferIndirect set, indirect systems win ties and are tried first. When
// nothing is large enough the largest system is returned.
func (c *Catalog) Select(liters float64, preferIndirect bool) Entry {
	sorted := c.Entries()
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TankLiters != sorted[j].TankLiters {
			return sorted[i].TankLiters < sorted[j].TankLiters
		}
		if preferIndirect {
			return sorted[i].Circuit == CircuitIndirect && sorted[j].Circuit != CircuitIndirect
		}
		return sorted[i].Circuit == CircuitDirect && sorted[j].Circuit != CircuitDirect
	})

	if preferIndirect {
		for _, e := range sorted {
			if e.Circuit == CircuitIndirect && float64(e.TankLiters) >= liters {
				return e
			}
		}
	}
	for _, e := range sorted {
		if float64(e.TankLiters) >= liters {
			return e
		}
	}
	return sorted[len(sorted)-1]
}

// Alternatives returns up to n entries other than primary, nearest in tank
// size first.
func (c *Catalog) Alternatives(primary Entry, n int) []Entry {
	others := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if e.Name != primary.Name {
			others = append(others, e)
		}
	}
	sort.SliceStable(others, func(i, j int) bool {
		return abs(others[i].TankLiters-primary.TankLiters) < abs(others[j].TankLiters-primary.TankLiters)
	})
	if len(others) > n {
		others = others[:n]
	}
	return others
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
