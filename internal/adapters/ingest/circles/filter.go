package circles

// Filter is one node of the circles_query predicate tree
// leaves carry FilterType, Column and Value; conjunctions carry ConjunctionType and Predicates
type Filter struct {
	Type            string   `json:"Type"`
	FilterType      string   `json:"FilterType,omitempty"`
	Column          string   `json:"Column,omitempty"`
	Value           any      `json:"Value,omitempty"`
	ConjunctionType string   `json:"ConjunctionType,omitempty"`
	Predicates      []Filter `json:"Predicates,omitempty"`
}

// Order sorts a query by one column
type Order struct {
	Column    string `json:"Column"`
	SortOrder string `json:"SortOrder"`
}

const (
	typePredicate   = "FilterPredicate"
	typeConjunction = "Conjunction"
)

func leaf(kind, col string, v any) Filter {
	return Filter{Type: typePredicate, FilterType: kind, Column: col, Value: v}
}

func conj(kind string, fs []Filter) Filter {
	return Filter{Type: typeConjunction, ConjunctionType: kind, Predicates: fs}
}

// Equals matches col == v
func Equals(col string, v any) Filter { return leaf("Equals", col, v) }

// NotEquals matches col != v
func NotEquals(col string, v any) Filter { return leaf("NotEquals", col, v) }

// GreaterThan matches col > v
func GreaterThan(col string, v any) Filter { return leaf("GreaterThan", col, v) }

// LessThan matches col < v
func LessThan(col string, v any) Filter { return leaf("LessThan", col, v) }

// IsNull matches rows where col has no value
func IsNull(col string) Filter { return leaf("IsNull", col, nil) }

// IsNotNull matches rows where col has a value
func IsNotNull(col string) Filter { return leaf("IsNotNull", col, nil) }

// And requires every predicate
func And(fs ...Filter) Filter { return conj("And", fs) }

// Or requires any predicate
func Or(fs ...Filter) Filter { return conj("Or", fs) }

// Position columns of every indexed event row
const (
	ColBlock = "blockNumber"
	ColTx    = "transactionIndex"
	ColLog   = "logIndex"
)

// CursorFilter selects rows strictly older than c under the descending position order
func CursorFilter(c Cursor) Filter {
	return Or(
		LessThan(ColBlock, c.BlockNumber),
		And(Equals(ColBlock, c.BlockNumber), LessThan(ColTx, c.TransactionIndex)),
		And(Equals(ColBlock, c.BlockNumber), Equals(ColTx, c.TransactionIndex), LessThan(ColLog, c.LogIndex)),
	)
}

// NewestFirst orders by position, most recent event first
func NewestFirst() []Order {
	return []Order{
		{Column: ColBlock, SortOrder: "DESC"},
		{Column: ColTx, SortOrder: "DESC"},
		{Column: ColLog, SortOrder: "DESC"},
	}
}
