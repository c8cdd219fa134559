package mock

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/reasyhq/platform/internal/errs"
	"github.com/reasyhq/platform/internal/repo"
)

// uniqueColumns mirrors the unique indexes of the real schema so tests hit
// the same constraint errors the SQL layer produces.
var uniqueColumns = map[string][]string{
	"public.tenants":               {"id", "slug"},
	"public.platform_users":        {"id", "email"},
	"public.plans":                 {"id", "slug"},
	"public.registration_requests": {"id", "email"},
}

// InMemoryDB holds the rows of a single schema, keyed by table name. Rows
// are stored as struct values so callers never share memory with the store.
type InMemoryDB struct {
	mu     sync.RWMutex
	tables map[string][]reflect.Value
}

// NewInMemoryDB creates and returns a new instance of InMemoryDB.
func NewInMemoryDB() *InMemoryDB {
	return &InMemoryDB{
		tables: map[string][]reflect.Value{},
	}
}

// Insert stores a copy of the resource, enforcing the table's unique columns.
func (db *InMemoryDB) Insert(resource repo.Resource) error {
	if resource == nil {
		return ErrResourceIsNil
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	table := resource.TableName()
	row := structValue(resource)

	for _, column := range append([]string{"id"}, uniqueColumns[table]...) {
		value, ok := fieldByColumn(row, column)
		if !ok || value.IsZero() {
			continue
		}

		for _, existing := range db.tables[table] {
			existingValue, _ := fieldByColumn(existing, column)
			if equalValues(existingValue, value.Interface()) {
				return errs.Wrapf(repo.ErrUniqueConstraint, fmt.Sprintf("duplicate %s on %s", column, table))
			}
		}
	}

	db.tables[table] = append(db.tables[table], copyValue(row))

	return nil
}

// Find returns copies of all rows matching the query conditions plus, when
// set, the resource's own id field, along with the total match count before
// offset and limit are applied. Order, offset and limit are honoured.
func (db *InMemoryDB) Find(resource repo.Resource, query repo.Query) ([]reflect.Value, int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	conditions, err := allConditions(resource, query)
	if err != nil {
		return nil, 0, err
	}

	var matched []reflect.Value

	for _, row := range db.tables[resource.TableName()] {
		ok, err := matches(row, conditions)
		if err != nil {
			return nil, 0, err
		}

		if ok {
			matched = append(matched, copyValue(row))
		}
	}

	total := len(matched)

	orderBy, orderDir := query.Order()
	if orderBy != "" {
		sortRows(matched, string(orderBy), orderDir == repo.Desc)
	}

	if query.Offset() > 0 {
		if query.Offset() >= len(matched) {
			matched = nil
		} else {
			matched = matched[query.Offset():]
		}
	}

	if query.Limit() > 0 && len(matched) > query.Limit() {
		matched = matched[:query.Limit()]
	}

	return matched, total, nil
}

// Update merges the non-zero fields of resource into every matching row and
// returns the number of rows touched.
func (db *InMemoryDB) Update(resource repo.Resource, query repo.Query) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	conditions, err := allConditions(resource, query)
	if err != nil {
		return 0, err
	}

	src := structValue(resource)
	table := resource.TableName()
	updated := 0

	for i, row := range db.tables[table] {
		ok, err := matches(row, conditions)
		if err != nil {
			return 0, err
		}

		if !ok {
			continue
		}

		merged := copyValue(row)
		mergeNonZero(merged, src)
		db.tables[table][i] = merged
		updated++
	}

	return updated, nil
}

// Remove deletes every matching row and returns the number removed.
func (db *InMemoryDB) Remove(resource repo.Resource, query repo.Query) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	conditions, err := allConditions(resource, query)
	if err != nil {
		return 0, err
	}

	table := resource.TableName()
	kept := db.tables[table][:0]
	removed := 0

	for _, row := range db.tables[table] {
		ok, err := matches(row, conditions)
		if err != nil {
			return 0, err
		}

		if ok {
			removed++
			continue
		}

		kept = append(kept, row)
	}

	db.tables[table] = kept

	return removed, nil
}

// allConditions combines the explicit query conditions with the resource's
// non-zero id field, matching how the SQL layer treats primary keys.
func allConditions(resource repo.Resource, query repo.Query) ([]repo.Condition, error) {
	err := query.Validate()
	if err != nil {
		return nil, err
	}

	conditions := query.Conditions()

	id, ok := fieldByColumn(structValue(resource), "id")
	if ok && !id.IsZero() {
		conditions = append(conditions, repo.Condition{
			Field: repo.IDField,
			Op:    repo.Equal,
			Value: id.Interface(),
		})
	}

	return conditions, nil
}

func matches(row reflect.Value, conditions []repo.Condition) (bool, error) {
	for _, cond := range conditions {
		field, ok := fieldByColumn(row, string(cond.Field))
		if !ok {
			return false, errs.Wrapf(ErrUnknownColumn, string(cond.Field))
		}

		ok, err := compare(field, cond.Op, cond.Value)
		if err != nil {
			return false, err
		}

		if !ok {
			return false, nil
		}
	}

	return true, nil
}

func compare(field reflect.Value, op repo.ComparisonOp, want any) (bool, error) {
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			switch op {
			case repo.Equal:
				return want == nil, nil
			case repo.NotEqual:
				return want != nil, nil
			default:
				return false, nil
			}
		}

		field = field.Elem()
	}

	switch op {
	case repo.Equal:
		return equalValues(field, want), nil
	case repo.NotEqual:
		return !equalValues(field, want), nil
	case repo.GreaterThan, repo.LessThan:
		return compareOrdered(field, op, want)
	default:
		return false, errs.Wrapf(ErrUncomparableValue, fmt.Sprintf("operator %q", op))
	}
}

func equalValues(field reflect.Value, want any) bool {
	if !field.IsValid() {
		return false
	}

	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return want == nil
		}

		field = field.Elem()
	}

	if t, ok := field.Interface().(time.Time); ok {
		wt, ok := want.(time.Time)
		return ok && t.Equal(wt)
	}

	return fmt.Sprint(field.Interface()) == fmt.Sprint(want)
}

func compareOrdered(field reflect.Value, op repo.ComparisonOp, want any) (bool, error) {
	if t, ok := field.Interface().(time.Time); ok {
		wt, ok := want.(time.Time)
		if !ok {
			return false, errs.Wrapf(ErrUncomparableValue, fmt.Sprintf("%v against time", want))
		}

		if op == repo.GreaterThan {
			return t.After(wt), nil
		}

		return t.Before(wt), nil
	}

	got, ok := toFloat(field.Interface())
	if !ok {
		return false, errs.Wrapf(ErrUncomparableValue, fmt.Sprint(field.Interface()))
	}

	wf, ok := toFloat(want)
	if !ok {
		return false, errs.Wrapf(ErrUncomparableValue, fmt.Sprint(want))
	}

	if op == repo.GreaterThan {
		return got > wf, nil
	}

	return got < wf, nil
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// fieldByColumn resolves a snake_case column name to a struct field. Fields
// declared on the struct itself shadow promoted fields from embedded types.
func fieldByColumn(row reflect.Value, column string) (reflect.Value, bool) {
	t := row.Type()

	for i := range t.NumField() {
		f := t.Field(i)
		if f.Anonymous || !f.IsExported() {
			continue
		}

		if toSnake(f.Name) == column {
			return row.Field(i), true
		}
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.Anonymous || f.Type.Kind() != reflect.Struct {
			continue
		}

		if value, ok := fieldByColumn(row.Field(i), column); ok {
			return value, true
		}
	}

	return reflect.Value{}, false
}

func toSnake(name string) string {
	var b strings.Builder

	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && (name[i-1] < 'A' || name[i-1] > 'Z') {
				b.WriteByte('_')
			}

			b.WriteRune(r - 'A' + 'a')

			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

func mergeNonZero(dst, src reflect.Value) {
	t := src.Type()

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			mergeNonZero(dst.Field(i), src.Field(i))
			continue
		}

		if !src.Field(i).IsZero() {
			dst.Field(i).Set(src.Field(i))
		}
	}
}

func sortRows(rows []reflect.Value, column string, desc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, _ := fieldByColumn(rows[i], column)
		b, _ := fieldByColumn(rows[j], column)

		less, err := compareOrdered(a, repo.LessThan, derefInterface(b))
		if err != nil {
			less = fmt.Sprint(derefInterface(a)) < fmt.Sprint(derefInterface(b))
		}

		if desc {
			return !less
		}

		return less
	})
}

func derefInterface(v reflect.Value) any {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}

		v = v.Elem()
	}

	return v.Interface()
}

func structValue(resource repo.Resource) reflect.Value {
	v := reflect.ValueOf(resource)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	return v
}

func copyValue(v reflect.Value) reflect.Value {
	c := reflect.New(v.Type()).Elem()
	c.Set(v)

	return c
}
