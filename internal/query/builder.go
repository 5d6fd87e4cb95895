package query

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidFilter is returned for any out-of-enum filter or sort value.
// No partial query is built.
var ErrInvalidFilter = errors.New("invalid filter")

// Params are the raw, user-supplied filter parameters. Date and Priority
// keep repeated query values; CostSort and WordSort are single-valued.
type Params struct {
	Date     []string
	Priority []string
	CostSort string
	WordSort string
}

// Empty reports whether no filter or sort parameter is present at all, in
// which case callers should fall back to the unfiltered listing.
func (p Params) Empty() bool {
	return len(p.Date) == 0 && len(p.Priority) == 0 && p.CostSort == "" && p.WordSort == ""
}

// Builder turns Params into an expression tree plus a sort directive. The
// clock is injectable because date buckets are computed against "now".
type Builder struct {
	now func() time.Time
}

func NewBuilder(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{now: now}
}

// Build validates p and produces the filter expression and sort. The
// returned Expr is nil when only sort directives were supplied.
//
// Combination rules: a single date or priority value becomes a bare
// predicate; multiple values become an Or of predicates; when both a date
// and a priority filter are present the two parts combine under an And, so
// "(bucket A OR bucket B) AND (priority X OR priority Y)" never collapses
// into one flat disjunction.
func (b *Builder) Build(p Params) (Expr, Sort, error) {
	today := dayStart(b.now())
	tomorrow := today.AddDate(0, 0, 1)

	var parts []Expr

	if len(p.Date) > 0 {
		preds := make([]Expr, 0, len(p.Date))
		for _, bucket := range p.Date {
			pred, err := datePred(bucket, today, tomorrow)
			if err != nil {
				return nil, Sort{}, err
			}
			preds = append(preds, pred)
		}
		if len(preds) == 1 {
			parts = append(parts, preds[0])
		} else {
			parts = append(parts, Or{Exprs: preds})
		}
	}

	if len(p.Priority) > 0 {
		preds := make([]Expr, 0, len(p.Priority))
		for _, v := range p.Priority {
			pred, err := priorityPred(v)
			if err != nil {
				return nil, Sort{}, err
			}
			preds = append(preds, pred)
		}
		if len(preds) == 1 {
			parts = append(parts, preds[0])
		} else {
			parts = append(parts, Or{Exprs: preds})
		}
	}

	sort, err := buildSort(p.CostSort, p.WordSort)
	if err != nil {
		return nil, Sort{}, err
	}

	switch len(parts) {
	case 0:
		return nil, sort, nil
	case 1:
		return parts[0], sort, nil
	default:
		return And{Exprs: parts}, sort, nil
	}
}

// datePred maps a bucket name to its due-date predicate. Buckets compare
// the day-truncated due date against today / tomorrow.
func datePred(bucket string, today, tomorrow time.Time) (Pred, error) {
	switch strings.ToLower(bucket) {
	case "overdue":
		return Pred{Field: FieldDueDate, Op: OpLt, Value: today}, nil
	case "today":
		return Pred{Field: FieldDueDate, Op: OpEq, Value: today}, nil
	case "tomorrow":
		return Pred{Field: FieldDueDate, Op: OpEq, Value: tomorrow}, nil
	case "later":
		return Pred{Field: FieldDueDate, Op: OpGt, Value: tomorrow}, nil
	default:
		return Pred{}, ErrInvalidFilter
	}
}

func priorityPred(v string) (Pred, error) {
	switch p := strings.ToLower(v); p {
	case "low", "normal", "high":
		return Pred{Field: FieldPriority, Op: OpEq, Value: p}, nil
	default:
		return Pred{}, ErrInvalidFilter
	}
}

// buildSort resolves the sort directive. The cost directive wins when both
// cost and word sorts are supplied; with neither, results order by
// ascending due date.
func buildSort(costSort, wordSort string) (Sort, error) {
	var word *Sort
	switch strings.ToLower(wordSort) {
	case "":
	case "a-z":
		word = &Sort{Key: SortByName}
	case "z-a":
		word = &Sort{Key: SortByName, Desc: true}
	default:
		return Sort{}, ErrInvalidFilter
	}

	switch strings.ToLower(costSort) {
	case "":
	case "lowest":
		return Sort{Key: SortByCost}, nil
	case "highest":
		return Sort{Key: SortByCost, Desc: true}, nil
	default:
		return Sort{}, ErrInvalidFilter
	}

	if word != nil {
		return *word, nil
	}
	return Sort{Key: SortByDueDate}, nil
}
