// Package types contains the display contract shared by the API, the CLI and
// the websocket feed.
package types

// Header names one column of a table.
type Header struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Row holds one table row keyed by header key. Rows may carry extra keys used
// for sorting that have no header.
type Row map[string]any

// Table is a titled, ordered set of rows.
type Table struct {
	Title   string   `json:"title,omitempty"`
	Headers []Header `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// Cells returns the row's values in header order.
func (t Table) Cells(r Row) []any {
	out := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		out[i] = r[h.Key]
	}
	return out
}

// HeaderNames returns the display names of the columns.
func (t Table) HeaderNames() []string {
	out := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		out[i] = h.Name
	}
	return out
}
