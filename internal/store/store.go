// Package store is the data contract to the backend table store: named
// collections read with equality and inclusive range predicates, plus
// single-row insert, update and delete.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dshills/kitchencheck/internal/config"
	"github.com/dshills/kitchencheck/internal/logging"
)

// Collection names.
const (
	Temperatures = "temperature_logs"
	Cleaning     = "cleaning_logs"
	Hygiene      = "hygiene_checks"
	Cooling      = "cooling_logs"

	Incidents       = "hms_incidents"
	Followups       = "hms_followup"
	RiskAssessments = "hms_risk_assessments"

	FireResponsible      = "hms_fire_responsible"
	FireEquipment        = "hms_fire_equipment"
	FireInspections      = "hms_fire_inspections"
	FirstAidResponsible  = "hms_first_aid_responsible"
	FirstAidEquipment    = "hms_first_aid_equipment"
	FirstAidInspections  = "hms_first_aid_inspections"
	Training             = "hms_training"
	TrainingAttendees    = "hms_training_attendees"
	Employees            = "hms_employees"
	SafetyRepresentative = "hms_safety_representative"
	EnvironmentWaste     = "hms_environment_waste"
	EnvironmentGoals     = "hms_environment_goals"
	EnvironmentFryingOil = "hms_environment_frying_oil"

	Analyses = "hms_ai_analysis"
	Reports  = "compliance_reports"
)

// CompanyColumn is the tenant partition column present on every collection.
const CompanyColumn = "company_id"

// TimestampLayout stores instants as fixed-width UTC text so that string
// order is time order.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Timestamp formats t with TimestampLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

var (
	// ErrNotFound is returned when a keyed row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrUnknownCollection is returned for collection names the backend does not hold.
	ErrUnknownCollection = errors.New("store: unknown collection")
)

// Row is one record as the backend returns it.
type Row map[string]any

// Op is a predicate operator.
type Op int

const (
	OpEq Op = iota
	OpBetween
)

// Predicate is one filter term. Between is inclusive on both ends.
type Predicate struct {
	Column string
	Op     Op
	Value  any
	Upper  any
}

// Eq matches rows whose column equals v.
func Eq(column string, v any) Predicate {
	return Predicate{Column: column, Op: OpEq, Value: v}
}

// Between matches rows whose column lies in [lo, hi].
func Between(column string, lo, hi any) Predicate {
	return Predicate{Column: column, Op: OpBetween, Value: lo, Upper: hi}
}

// Query is a conjunction of predicates with optional ordering and limit.
type Query struct {
	Where   []Predicate
	OrderBy string
	Desc    bool
	Limit   int
}

// Where starts a query from predicates.
func Where(preds ...Predicate) Query {
	return Query{Where: preds}
}

// And returns a copy of q with more predicates.
func (q Query) And(preds ...Predicate) Query {
	where := make([]Predicate, 0, len(q.Where)+len(preds))
	where = append(where, q.Where...)
	q.Where = append(where, preds...)
	return q
}

// Order returns a copy of q sorted by column.
func (q Query) Order(column string, desc bool) Query {
	q.OrderBy = column
	q.Desc = desc
	return q
}

// Backend is implemented by every table store.
type Backend interface {
	Select(ctx context.Context, collection string, q Query) ([]Row, error)
	Insert(ctx context.Context, collection string, row Row) error
	Update(ctx context.Context, collection, id string, fields Row) error
	Delete(ctx context.Context, collection, id string) error
	Close() error
}

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// validIdent guards column and table names that end up in SQL text.
func validIdent(s string) error {
	if !identRe.MatchString(s) {
		return fmt.Errorf("store: invalid identifier %q", s)
	}
	return nil
}

// Open returns the backend selected by settings.
func Open(s config.DatabaseSettings, log logging.Logger) (Backend, error) {
	if log == nil {
		log = logging.Discard()
	}
	switch s.Driver {
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(s.SQLite.Path, s.SlowQuery, log)
	case "mysql":
		return OpenMySQL(s.MySQL.DSN(), s.SlowQuery, log)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", s.Driver)
	}
}
