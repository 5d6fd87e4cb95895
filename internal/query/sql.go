package query

import (
	"fmt"
	"strings"
)

// ToSQL renders an expression tree as a SQL condition with positional
// placeholders. argOffset is the number of placeholders already used by the
// caller, so the first placeholder emitted here is $argOffset+1. The caller
// is expected to AND the fragment with its own owner scope.
func ToSQL(e Expr, argOffset int) (string, []any) {
	var sb strings.Builder
	args := make([]any, 0, 4)
	writeExpr(&sb, e, argOffset, &args)
	return sb.String(), args
}

func writeExpr(sb *strings.Builder, e Expr, argOffset int, args *[]any) {
	switch n := e.(type) {
	case Pred:
		*args = append(*args, n.Value)
		fmt.Fprintf(sb, "%s %s $%d", n.Field, n.Op, argOffset+len(*args))
	case And:
		writeGroup(sb, n.Exprs, " AND ", argOffset, args)
	case Or:
		writeGroup(sb, n.Exprs, " OR ", argOffset, args)
	}
}

func writeGroup(sb *strings.Builder, exprs []Expr, sep string, argOffset int, args *[]any) {
	sb.WriteString("(")
	for i, e := range exprs {
		if i > 0 {
			sb.WriteString(sep)
		}
		writeExpr(sb, e, argOffset, args)
	}
	sb.WriteString(")")
}

// OrderBy renders the sort directive as an ORDER BY expression. Name
// ordering goes through lower(name) so it is case-insensitive, matching the
// collation the listing endpoints promise.
func OrderBy(s Sort) string {
	col := string(s.Key)
	if s.Key == SortByName {
		col = "lower(name)"
	}
	if s.Desc {
		return col + " DESC"
	}
	return col + " ASC"
}
