// Package catalog holds the named chat template registry.
//
// A Catalog maps a template name to its body. New seeds the catalog with the
// built-in templates embedded in the binary; further templates are added with
// Register, RegisterEntry or LoadDir. The catalog is append-only: a name can
// be registered once and is never replaced or removed.
//
// Template bodies are opaque. The catalog never parses or validates the
// templating language inside them.
package catalog
