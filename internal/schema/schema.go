// Package schema represents record shapes as data: each field is a
// plain descriptor value (type, constraints, default, export
// formatting, fake generator) composed into a Definition at startup.
// The same descriptors drive the JSON schema endpoint, the CSV export
// header and formatting, and fake record generation for seeding.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Type enumerates the wire types a field can take.
type Type string

const (
	String Type = "string"
	Number Type = "number"
	Date   Type = "date"
	Ref    Type = "ref"
	Object Type = "object"
	Map    Type = "map"
)

// Export configures how a field renders into a CSV export column.
type Export struct {
	Header  string
	Order   int
	Default string
	// Format renders the field value into its display form. When nil
	// the value is rendered verbatim.
	Format func(v interface{}) string
}

// Field is the declarative descriptor of a single record field.
type Field struct {
	Name       string
	Type       Type
	Required   bool
	Trim       bool
	Uppercase  bool
	Index      bool
	Unique     bool
	Searchable bool
	Taggable   bool
	// Ref names the predefine namespace a reference field points into.
	Ref     string
	Default interface{}
	Export  *Export
	// Fake produces a plausible sample value for seeding and fixtures.
	Fake func() interface{}
	// Fields holds the sub-record shape for Object fields.
	Fields []Field
}

// Definition is an ordered composition of field descriptors.
type Definition struct {
	Name   string
	Fields []Field
}

// Define builds a record definition from field descriptors.
func Define(name string, fields ...Field) *Definition {
	return &Definition{Name: name, Fields: fields}
}

// Field looks a descriptor up by dotted path, e.g. "victim.gender".
func (d *Definition) Field(path string) (*Field, bool) {
	parts := strings.Split(path, ".")
	fields := d.Fields
	for i, part := range parts {
		found := false
		for j := range fields {
			if fields[j].Name != part {
				continue
			}
			if i == len(parts)-1 {
				return &fields[j], true
			}
			fields = fields[j].Fields
			found = true
			break
		}
		if !found {
			return nil, false
		}
	}
	return nil, false
}

// JSONSchema renders the machine-readable shape of the record for
// client-side form generation.
func (d *Definition) JSONSchema() map[string]interface{} {
	properties, required := jsonProperties(d.Fields)
	doc := map[string]interface{}{
		"title":      d.Name,
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

func jsonProperties(fields []Field) (map[string]interface{}, []string) {
	properties := make(map[string]interface{}, len(fields))
	var required []string
	for _, f := range fields {
		properties[f.Name] = jsonProperty(f)
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return properties, required
}

func jsonProperty(f Field) map[string]interface{} {
	prop := map[string]interface{}{}
	switch f.Type {
	case String:
		prop["type"] = "string"
	case Number:
		prop["type"] = "number"
	case Date:
		prop["type"] = "string"
		prop["format"] = "date-time"
	case Ref:
		prop["type"] = "string"
		prop["format"] = "uuid"
		prop["ref"] = f.Ref
	case Map:
		prop["type"] = "object"
		prop["additionalProperties"] = true
	case Object:
		sub, subRequired := jsonProperties(f.Fields)
		prop["type"] = "object"
		prop["properties"] = sub
		if len(subRequired) > 0 {
			prop["required"] = subRequired
		}
	}
	if f.Index {
		prop["index"] = true
	}
	if f.Unique {
		prop["unique"] = true
	}
	if f.Searchable {
		prop["searchable"] = true
	}
	if f.Default != nil {
		prop["default"] = f.Default
	}
	return prop
}

// Column is a single CSV export column: the dotted field path, its
// header and the rendering rules.
type Column struct {
	Path   string
	Header string
	Export Export
}

// ExportColumns flattens the exportable fields into ordered CSV
// columns. Fields without export options are skipped; sub-record
// fields get dotted paths and inherit their own export options.
func (d *Definition) ExportColumns() []Column {
	var cols []Column
	collectColumns(&cols, "", d.Fields)
	sort.SliceStable(cols, func(i, j int) bool {
		return cols[i].Export.Order < cols[j].Export.Order
	})
	return cols
}

func collectColumns(cols *[]Column, prefix string, fields []Field) {
	for _, f := range fields {
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}
		if f.Type == Object {
			collectColumns(cols, path, f.Fields)
			continue
		}
		if f.Export == nil {
			continue
		}
		header := f.Export.Header
		if header == "" {
			header = titleCase(f.Name)
		}
		*cols = append(*cols, Column{Path: path, Header: header, Export: *f.Export})
	}
}

// RenderValue renders a field value through its export formatter,
// falling back to the column default when the value is absent.
func (c Column) RenderValue(v interface{}) string {
	if v == nil {
		return c.Export.Default
	}
	if c.Export.Format != nil {
		if s := c.Export.Format(v); s != "" {
			return s
		}
		return c.Export.Default
	}
	if s, ok := v.(string); ok {
		if s == "" {
			return c.Export.Default
		}
		return s
	}
	return defaultRender(v)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func defaultRender(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// FakeRecord generates a sample record from the field fake generators.
func (d *Definition) FakeRecord() map[string]interface{} {
	return fakeFields(d.Fields)
}

func fakeFields(fields []Field) map[string]interface{} {
	record := make(map[string]interface{})
	for _, f := range fields {
		switch {
		case f.Type == Object:
			record[f.Name] = fakeFields(f.Fields)
		case f.Fake != nil:
			record[f.Name] = f.Fake()
		}
	}
	return record
}
