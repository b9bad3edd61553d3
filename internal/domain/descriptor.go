package domain

// ColumnType is the declared type of a resource column. It drives JSON
// coercion, CSV parsing, and database scanning.
type ColumnType string

const (
	TypeString  ColumnType = "string"
	TypeInteger ColumnType = "integer"
	TypeNumber  ColumnType = "number"
	TypeBoolean ColumnType = "boolean"
	TypeDate    ColumnType = "date"
)

// Column describes one attribute of a resource: its storage key, CSV header,
// type, and the field-level constraints the validator enforces.
type Column struct {
	Key      string
	Header   string
	Type     ColumnType
	Required bool
	// Min/Max bound numeric values when non-nil.
	Min *float64
	Max *float64
	// MaxLen caps string length when > 0.
	MaxLen int
	// Enum restricts string values when non-empty.
	Enum []string
	// URL requires the value to parse as an absolute URL when present.
	URL bool
	// Filterable allows the column in list-endpoint filters.
	Filterable bool
}

// Descriptor is the per-resource configuration that drives the generic CRUD
// engine: table name, column schema, validation hook, and capability set.
type Descriptor struct {
	// Name is the API path segment, e.g. "coupons".
	Name string
	// Table is the backing table name.
	Table string
	// Capability is the permission prefix, e.g. "COUPON" for COUPON_CREATE.
	Capability string
	// Owned resources carry created_by and sit behind the auth middleware.
	Owned bool
	// BusinessID names the unique business identifier column, if any.
	BusinessID string
	// StatusColumn feeds analytics distributions, if any.
	StatusColumn string
	Columns      []Column
	// CrossCheck runs resource-specific cross-field validation on a full
	// candidate record and returns field -> message for any violations.
	CrossCheck func(Record) map[string]string
}

// Column returns the schema entry for key.
func (d *Descriptor) Column(key string) (Column, bool) {
	for _, c := range d.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnKeys returns the schema keys in declaration order.
func (d *Descriptor) ColumnKeys() []string {
	keys := make([]string, 0, len(d.Columns))
	for _, c := range d.Columns {
		keys = append(keys, c.Key)
	}
	return keys
}

// Filterable returns the allow-list of filterable column keys.
func (d *Descriptor) Filterable() map[string]Column {
	out := make(map[string]Column)
	for _, c := range d.Columns {
		if c.Filterable {
			out[c.Key] = c
		}
	}
	return out
}

// NumericColumns returns integer and number columns, used by analytics.
func (d *Descriptor) NumericColumns() []Column {
	var out []Column
	for _, c := range d.Columns {
		if c.Type == TypeInteger || c.Type == TypeNumber {
			out = append(out, c)
		}
	}
	return out
}
