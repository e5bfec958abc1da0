package scanner

import (
	"context"
	"reflect"
	"strings"

	"github.com/beltran/gohive"
)

type hiveRows struct {
	ctx    context.Context
	cursor *gohive.Cursor
	cols   []Column
	values []any
	ptrs   []any
	closed bool
}

// FromHiveCursor wraps a gohive cursor on which a query has been executed.
// Close closes the cursor but not its connection.
func FromHiveCursor(ctx context.Context, cursor *gohive.Cursor) Rows {
	return &hiveRows{ctx: ctx, cursor: cursor}
}

func (h *hiveRows) Next() bool {
	if h.closed || h.cursor.Err != nil {
		return false
	}
	return h.cursor.HasMore(h.ctx)
}

func (h *hiveRows) ScanRow() ([]any, error) {
	if h.cols == nil {
		if _, err := h.Columns(); err != nil {
			return nil, err
		}
	}
	if h.values == nil {
		h.values = make([]any, len(h.cols))
		h.ptrs = make([]any, len(h.cols))
		for i := range h.values {
			h.ptrs[i] = &h.values[i]
		}
	}
	h.cursor.FetchOne(h.ctx, h.ptrs...)
	if h.cursor.Err != nil {
		return nil, h.cursor.Err
	}
	return h.values, nil
}

// Columns reads the result description. Hive prefixes names with the table
// ("t.id") and suffixes types with "_TYPE"; both are dropped.
func (h *hiveRows) Columns() ([]Column, error) {
	if h.cols != nil {
		return h.cols, nil
	}
	desc := h.cursor.Description()
	if h.cursor.Err != nil {
		return nil, h.cursor.Err
	}
	cols := make([]Column, 0, len(desc))
	for _, d := range desc {
		if len(d) == 0 {
			continue
		}
		c := &hiveColumn{index: len(cols), name: d[0]}
		if len(d) > 1 {
			c.hiveType = strings.TrimSuffix(d[1], "_TYPE")
		}
		if _, name, ok := strings.Cut(c.name, "."); ok {
			c.name = name
		}
		cols = append(cols, c)
	}
	h.cols = cols
	return h.cols, nil
}

func (h *hiveRows) Driver() string {
	return "gohive"
}

func (h *hiveRows) Err() error {
	return h.cursor.Error()
}

func (h *hiveRows) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.cursor.Close()
	return h.cursor.Error()
}

type hiveColumn struct {
	index    int
	name     string
	hiveType string
}

func (c *hiveColumn) Index() int {
	return c.index
}

func (c *hiveColumn) Name() string {
	return c.name
}

func (c *hiveColumn) Length() (length int64, ok bool) {
	return 0, false
}

func (c *hiveColumn) DecimalSize() (precision, scale int64, ok bool) {
	return 0, 0, false
}

func (c *hiveColumn) ScanType() reflect.Type {
	return nil
}

func (c *hiveColumn) Nullable() (nullable, ok bool) {
	return true, false
}

func (c *hiveColumn) DatabaseTypeName() string {
	return c.hiveType
}
