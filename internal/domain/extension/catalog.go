package extension

import (
	"fmt"
	"slices"
)

// Catalog aggregates the contents of loaded extensions. Descriptor names must
// be unique across extensions; contents keep load order.
type Catalog struct {
	order        []string
	extensions   map[string]Extension
	signalTypes  []SignalType
	contentTypes []ContentType
	apis         []ExchangeAPI
	owners       map[string]string
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		extensions: make(map[string]Extension),
		owners:     make(map[string]string),
	}
}

// Add records ext under id. It fails with *ModuleExistsError if id is already
// present, or *ConflictError if any descriptor name is already provided by
// another extension. A nil descriptor fails with ErrNilDescriptor. Nothing is
// recorded on failure.
func (c *Catalog) Add(id string, ext Extension) error {
	if ext == nil {
		return ErrNilModule
	}
	if _, exists := c.extensions[id]; exists {
		return &ModuleExistsError{ID: id}
	}
	if detail := nilDescriptor(ext); detail != "" {
		return fmt.Errorf("%w: %s: %s", ErrNilDescriptor, id, detail)
	}

	signalTypes := ext.SignalTypes()
	contentTypes := ext.ContentTypes()
	apis := ext.APIs()

	claimed := make(map[string]struct{})
	claim := func(kind, name string) error {
		key := ownerKey(kind, name)
		if owner, taken := c.owners[key]; taken {
			return &ConflictError{Kind: kind, Name: name, Existing: owner, Incoming: id}
		}
		if _, dup := claimed[key]; dup {
			return &ConflictError{Kind: kind, Name: name, Existing: id, Incoming: id}
		}
		claimed[key] = struct{}{}
		return nil
	}

	for _, st := range signalTypes {
		if err := claim("signal type", st.Name()); err != nil {
			return err
		}
	}
	for _, ct := range contentTypes {
		if err := claim("content type", ct.Name()); err != nil {
			return err
		}
	}
	for _, api := range apis {
		if err := claim("api", api.Name()); err != nil {
			return err
		}
	}

	for key := range claimed {
		c.owners[key] = id
	}
	c.order = append(c.order, id)
	c.extensions[id] = ext
	c.signalTypes = append(c.signalTypes, signalTypes...)
	c.contentTypes = append(c.contentTypes, contentTypes...)
	c.apis = append(c.apis, apis...)
	return nil
}

// Get returns the extension recorded under id.
func (c *Catalog) Get(id string) (Extension, bool) {
	ext, ok := c.extensions[id]
	return ext, ok
}

// Extensions returns the recorded identifiers in the order they were added.
func (c *Catalog) Extensions() []string {
	return slices.Clone(c.order)
}

// SignalTypes returns every recorded signal type.
func (c *Catalog) SignalTypes() []SignalType {
	return slices.Clone(c.signalTypes)
}

// ContentTypes returns every recorded content type.
func (c *Catalog) ContentTypes() []ContentType {
	return slices.Clone(c.contentTypes)
}

// APIs returns every recorded exchange API.
func (c *Catalog) APIs() []ExchangeAPI {
	return slices.Clone(c.apis)
}

// Owner returns the extension that provides the named descriptor.
// kind is one of "signal type", "content type" or "api".
func (c *Catalog) Owner(kind, name string) (string, bool) {
	owner, ok := c.owners[ownerKey(kind, name)]
	return owner, ok
}

func ownerKey(kind, name string) string {
	return fmt.Sprintf("%s/%s", kind, name)
}
