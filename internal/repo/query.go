package repo

import (
	"fmt"
	"regexp"
)

type (
	QueryField     string
	ComparisonOp   string
	OrderDirection string
)

const (
	Equal       ComparisonOp = "="
	NotEqual    ComparisonOp = "!="
	GreaterThan ComparisonOp = ">"
	LessThan    ComparisonOp = "<"

	Desc OrderDirection = "desc"
	Asc  OrderDirection = "asc"

	IDField          QueryField = "id"
	SlugField        QueryField = "slug"
	NameField        QueryField = "name"
	EmailField       QueryField = "email"
	StatusField      QueryField = "status"
	RoleField        QueryField = "role"
	IsActiveField    QueryField = "is_active"
	TrialEndsAtField QueryField = "trial_ends_at"
	ServiceIDField   QueryField = "service_id"
	StaffIDField     QueryField = "staff_id"
	StartsAtField    QueryField = "starts_at"
	EndsAtField      QueryField = "ends_at"
	CreatedField     QueryField = "created_at"
)

// validFieldName guards against arbitrary strings reaching the SQL layer as
// column names; values always travel as bind parameters.
var validFieldName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func (f QueryField) Validate() error {
	if !validFieldName.MatchString(string(f)) {
		return fmt.Errorf("%w: %q", ErrInvalidFieldName, string(f))
	}

	return nil
}

// Condition is one field comparison in a query; conditions combine with AND.
type Condition struct {
	Field QueryField
	Op    ComparisonOp
	Value any
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s '%v'", c.Field, c.Op, c.Value)
}

// Query collects conditions, ordering and pagination for repository calls.
type Query struct {
	conditions []Condition
	limit      int
	offset     int
	orderBy    QueryField
	orderDir   OrderDirection
}

// NewQuery creates a Query with the default page size.
func NewQuery() *Query {
	return &Query{limit: DefaultLimit}
}

// Where adds an equality condition.
func (q *Query) Where(field QueryField, value any) *Query {
	return q.WhereOp(field, Equal, value)
}

// WhereOp adds a condition with an explicit comparison operator.
func (q *Query) WhereOp(field QueryField, op ComparisonOp, value any) *Query {
	q.conditions = append(q.conditions, Condition{Field: field, Op: op, Value: value})
	return q
}

// SetLimit overrides the page size; zero disables the limit.
func (q *Query) SetLimit(limit int) *Query {
	q.limit = limit
	return q
}

func (q *Query) SetOffset(offset int) *Query {
	q.offset = offset
	return q
}

func (q *Query) OrderBy(field QueryField, dir OrderDirection) *Query {
	q.orderBy = field
	q.orderDir = dir

	return q
}

func (q *Query) Conditions() []Condition     { return q.conditions }
func (q *Query) Limit() int                  { return q.limit }
func (q *Query) Offset() int                 { return q.offset }
func (q *Query) Order() (QueryField, OrderDirection) { return q.orderBy, q.orderDir }

// Validate checks every referenced field name.
func (q *Query) Validate() error {
	for _, cond := range q.conditions {
		err := cond.Field.Validate()
		if err != nil {
			return err
		}
	}

	if q.orderBy != "" {
		return q.orderBy.Validate()
	}

	return nil
}
