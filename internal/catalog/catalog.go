package catalog

import (
	"errors"
	"fmt"
	"sync"
)

// Sources recorded on entries for listing. They do not affect lookup.
const (
	SourceBuiltin = "built-in"
	SourceGlobal  = "global"
	SourceProject = "project"
	SourceConfig  = "config"
	SourceAPI     = "api"
)

// ErrDuplicateName is returned when registering a name that already exists.
var ErrDuplicateName = errors.New("template already exists")

// Entry is a single named template.
type Entry struct {
	Name        string `json:"name"`
	Body        string `json:"-"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
}

// Catalog is a concurrency-safe, append-only mapping of template names to bodies.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]Entry
	order   []string
}

// New returns a catalog seeded with the built-in templates.
func New() *Catalog {
	c := NewEmpty()
	for _, entry := range builtinEntries() {
		// Embedded file names are unique, so seeding cannot collide.
		_ = c.RegisterEntry(entry)
	}
	return c
}

// NewEmpty returns a catalog with no entries.
func NewEmpty() *Catalog {
	return &Catalog{entries: make(map[string]Entry)}
}

// Register adds a template under name. It fails with ErrDuplicateName, and
// leaves the catalog untouched, if name is already registered.
func (c *Catalog) Register(name, body string) error {
	return c.RegisterEntry(Entry{Name: name, Body: body, Source: SourceAPI})
}

// RegisterEntry adds a template together with its listing metadata.
func (c *Catalog) RegisterEntry(entry Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[entry.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, entry.Name)
	}
	c.entries[entry.Name] = entry
	c.order = append(c.order, entry.Name)
	return nil
}

// Lookup returns the body registered under name.
func (c *Catalog) Lookup(name string) (string, bool) {
	entry, ok := c.Entry(name)
	return entry.Body, ok
}

// Entry returns the full entry registered under name.
func (c *Catalog) Entry(name string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[name]
	return entry, ok
}

// Names returns registered names in insertion order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

// Entries returns all entries in insertion order.
func (c *Catalog) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]Entry, 0, len(c.order))
	for _, name := range c.order {
		entries = append(entries, c.entries[name])
	}
	return entries
}

// Len returns the number of registered templates.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
