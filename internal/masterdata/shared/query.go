package shared

import (
	"strconv"
	"strings"
)

// Where accumulates SQL conditions with positional arguments.
type Where struct {
	conds []string
	args  []any
}

// Add appends a condition. Each "?" in cond is replaced by the next
// positional placeholder and consumes one value from vals.
func (w *Where) Add(cond string, vals ...any) {
	var b strings.Builder
	i := 0
	for _, r := range cond {
		if r == '?' && i < len(vals) {
			w.args = append(w.args, vals[i])
			b.WriteString("$" + strconv.Itoa(len(w.args)))
			i++
			continue
		}
		b.WriteRune(r)
	}
	w.conds = append(w.conds, b.String())
}

// Search adds an ILIKE match of term against any of columns.
func (w *Where) Search(term string, columns ...string) {
	if term == "" || len(columns) == 0 {
		return
	}
	w.args = append(w.args, "%"+term+"%")
	ph := "$" + strconv.Itoa(len(w.args))
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = c + " ILIKE " + ph
	}
	w.conds = append(w.conds, "("+strings.Join(parts, " OR ")+")")
}

// SQL renders the WHERE clause, or an empty string without conditions.
func (w *Where) SQL() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// Args returns the accumulated arguments.
func (w *Where) Args() []any {
	return w.args
}

// Page appends LIMIT/OFFSET placeholders and returns the SQL fragment with
// the full argument list.
func (w *Where) Page(limit, offset int) (string, []any) {
	args := append(append([]any{}, w.args...), limit, offset)
	n := len(w.args)
	return " LIMIT $" + strconv.Itoa(n+1) + " OFFSET $" + strconv.Itoa(n+2), args
}

// OrderBy resolves sortBy against allowed columns, falling back to def.
func OrderBy(sortBy, sortDir string, allowed map[string]string, def string) string {
	dir := "ASC"
	if sortDir == SortDesc {
		dir = "DESC"
	}
	col, ok := allowed[sortBy]
	if !ok {
		col = def
	}
	return " ORDER BY " + col + " " + dir + ", id " + dir
}
