package store

import (
	"fmt"
	"strings"
)

// Result holds the rows of one statement.
type Result struct {
	Columns []string
	Rows    [][]any
}

func (r *Result) Empty() bool {
	return r == nil || len(r.Rows) == 0
}

// String renders the rows as "col=value" lines for a prompt.
func (r *Result) String() string {
	if r.Empty() {
		return ""
	}
	var b strings.Builder
	for i, row := range r.Rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, v := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", r.Columns[j], v)
		}
	}
	return b.String()
}
