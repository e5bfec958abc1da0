package scanner

import "reflect"

// Column is the subset of *sql.ColumnType every source can describe.
type Column interface {
	Name() string
	Length() (length int64, ok bool)
	DecimalSize() (precision, scale int64, ok bool)
	ScanType() reflect.Type
	Nullable() (nullable, ok bool)
	DatabaseTypeName() string
}

// staticColumn describes a column of in-memory data.
type staticColumn struct {
	index    int
	name     string
	typeName string
	scanType reflect.Type
	nullable bool
}

func (c *staticColumn) Index() int {
	return c.index
}

func (c *staticColumn) Name() string {
	return c.name
}

func (c *staticColumn) Length() (length int64, ok bool) {
	return 0, false
}

func (c *staticColumn) DecimalSize() (precision, scale int64, ok bool) {
	return 0, 0, false
}

func (c *staticColumn) ScanType() reflect.Type {
	return c.scanType
}

func (c *staticColumn) Nullable() (nullable, ok bool) {
	return c.nullable, true
}

func (c *staticColumn) DatabaseTypeName() string {
	return c.typeName
}
