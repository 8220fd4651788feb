package catalog

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/muurk/reccaster/internal/protocol"
)

// ErrInvalidRecord is returned when a record or property cannot be uploaded
var ErrInvalidRecord = errors.New("catalog: invalid record")

// Record is one named, typed entity advertised to the server
type Record struct {
	Name       string
	Type       string
	Alias      string // empty when the record has no alias
	Properties map[string]string
}

// NewRecord creates a record with no alias and no properties
func NewRecord(name, recordType string) Record {
	return Record{Name: name, Type: recordType}
}

// HasAlias reports whether the record carries an alias name
func (r Record) HasAlias() bool {
	return r.Alias != ""
}

// PropertyKeys returns the property keys in upload order (sorted)
func (r Record) PropertyKeys() []string {
	var keys []string
	for k := range r.Properties {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Validate checks that the record can be encoded on the wire
func (r Record) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRecord)
	}
	if r.Type == "" {
		return fmt.Errorf("%w: %s: type is required", ErrInvalidRecord, r.Name)
	}
	if len(r.Name) > protocol.MaxLongString {
		return fmt.Errorf("%w: name is %d bytes (max %d)", ErrInvalidRecord, len(r.Name), protocol.MaxLongString)
	}
	if len(r.Type) > protocol.MaxShortString {
		return fmt.Errorf("%w: %s: type is %d bytes (max %d)", ErrInvalidRecord, r.Name, len(r.Type), protocol.MaxShortString)
	}
	if len(r.Alias) > protocol.MaxLongString {
		return fmt.Errorf("%w: %s: alias is %d bytes (max %d)", ErrInvalidRecord, r.Name, len(r.Alias), protocol.MaxLongString)
	}
	if err := validateProperties(r.Properties); err != nil {
		return fmt.Errorf("%s: %w", r.Name, err)
	}
	return nil
}

func validateProperties(props map[string]string) error {
	for k, v := range props {
		if k == "" {
			return fmt.Errorf("%w: empty property key", ErrInvalidRecord)
		}
		if len(k) > protocol.MaxShortString {
			return fmt.Errorf("%w: property key %q is %d bytes (max %d)", ErrInvalidRecord, k[:16], len(k), protocol.MaxShortString)
		}
		if len(v) > protocol.MaxLongString {
			return fmt.Errorf("%w: property %s value is %d bytes (max %d)", ErrInvalidRecord, k, len(v), protocol.MaxLongString)
		}
	}
	return nil
}

// Catalog is the ordered, read-only set of records uploaded each session,
// plus optional client-level properties that describe the reccaster itself.
//
// A Catalog is immutable after New and safe for concurrent reads.
type Catalog struct {
	records    []Record
	properties map[string]string
}

// New validates records and properties and returns a catalog holding private
// copies of both. Record order is preserved.
func New(records []Record, properties map[string]string) (*Catalog, error) {
	c := &Catalog{
		records:    make([]Record, 0, len(records)),
		properties: maps.Clone(properties),
	}

	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		r.Properties = maps.Clone(r.Properties)
		c.records = append(c.records, r)
	}

	if err := validateProperties(properties); err != nil {
		return nil, fmt.Errorf("client properties: %w", err)
	}

	return c, nil
}

// Records returns the records in catalog order
func (c *Catalog) Records() []Record {
	return slices.Clone(c.records)
}

// Len returns the number of records
func (c *Catalog) Len() int {
	return len(c.records)
}

// Properties returns a copy of the client-level properties
func (c *Catalog) Properties() map[string]string {
	return maps.Clone(c.properties)
}

// PropertyKeys returns the client-level property keys in upload order (sorted)
func (c *Catalog) PropertyKeys() []string {
	var keys []string
	for k := range c.properties {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Property returns a client-level property value
func (c *Catalog) Property(key string) (string, bool) {
	v, ok := c.properties[key]
	return v, ok
}
