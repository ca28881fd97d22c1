package postgres

import (
	"fmt"
	"strings"

	"github.com/rosterhq/roster-api/internal/store"
)

// renderFilter turns a criteria filter into a SQL WHERE clause with
// positional placeholders starting at $startArg, plus the matching
// argument slice. An empty filter yields an empty clause.
//
// Column names in conditions come from this codebase's own filter
// builders, never from request input, so they are interpolated
// directly; only values travel as parameters.
func renderFilter(f *store.Filter, startArg int) (string, []any) {
	conds := f.Conditions()
	if len(conds) == 0 {
		return "", nil
	}

	var clauses []string
	var args []any
	arg := startArg

	for _, c := range conds {
		switch c.Op {
		case store.OpContainsFold:
			clauses = append(clauses,
				fmt.Sprintf("%s ILIKE '%%' || $%d || '%%'", c.Column, arg))
			args = append(args, escapeLike(fmt.Sprint(c.Value)))
			arg++
		case store.OpEq:
			clauses = append(clauses, fmt.Sprintf("%s = $%d", c.Column, arg))
			args = append(args, c.Value)
			arg++
		case store.OpGte:
			clauses = append(clauses, fmt.Sprintf("%s >= $%d", c.Column, arg))
			args = append(args, c.Value)
			arg++
		case store.OpLte:
			clauses = append(clauses, fmt.Sprintf("%s <= $%d", c.Column, arg))
			args = append(args, c.Value)
			arg++
		case store.OpBetween:
			clauses = append(clauses,
				fmt.Sprintf("%s BETWEEN $%d AND $%d", c.Column, arg, arg+1))
			args = append(args, c.Value, c.Upper)
			arg += 2
		}
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// escapeLike escapes LIKE metacharacters so a substring search matches
// them literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
