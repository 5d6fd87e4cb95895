// Package query builds store-level filter queries for payments. Filter
// parameters become a tagged expression tree (And/Or/Pred) so the
// combination rules can be tested without a database, then the tree is
// rendered to SQL by ToSQL.
package query

import "time"

// Field identifies a filterable payment column.
type Field string

const (
	FieldDueDate  Field = "due_date"
	FieldPriority Field = "priority"
)

// Op is a comparison operator on a Pred.
type Op string

const (
	OpEq Op = "="
	OpLt Op = "<"
	OpGt Op = ">"
)

// Expr is a node in the filter expression tree.
type Expr interface {
	isExpr()
}

// Pred is a single field comparison.
type Pred struct {
	Field Field
	Op    Op
	Value any
}

// And is the conjunction of its children.
type And struct {
	Exprs []Expr
}

// Or is the disjunction of its children.
type Or struct {
	Exprs []Expr
}

func (Pred) isExpr() {}
func (And) isExpr()  {}
func (Or) isExpr()   {}

// SortKey selects the single column a result set is ordered by.
type SortKey string

const (
	SortByDueDate SortKey = "due_date"
	SortByCost    SortKey = "cost"
	SortByName    SortKey = "name"
)

// Sort is the order directive attached to a filtered query.
type Sort struct {
	Key  SortKey
	Desc bool
}

// dayStart truncates t to the start of its day.
func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
