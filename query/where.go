package query

import "strconv"

// whereBuilder accumulates AND-joined predicates and their positional
// arguments, since pgx uses $1/$2/... placeholders and the query
// contracts here have a variable number of optional filters.
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

// bind appends v as the next positional argument and returns its
// placeholder token ("$3", etc.) for use inside a clause string.
func (w *whereBuilder) bind(v interface{}) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

// add appends a fully-formed clause (already containing bind() tokens).
func (w *whereBuilder) add(clause string) {
	w.clauses = append(w.clauses, clause)
}

// SQL renders "WHERE c1 AND c2 AND ..." or "" if no clauses were added.
func (w *whereBuilder) SQL() string {
	if len(w.clauses) == 0 {
		return ""
	}
	out := "WHERE "
	for i, c := range w.clauses {
		if i > 0 {
			out += " AND "
		}
		out += c
	}
	return out
}

func (w *whereBuilder) Args() []interface{} { return w.args }
func (w *whereBuilder) Empty() bool         { return len(w.clauses) == 0 }
