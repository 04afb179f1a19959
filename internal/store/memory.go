package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"
)

// Memory is an in-process Backend. It accepts any collection name and is
// used by tests and by the demo command.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]Row
	// failing makes Select on the named collections return an error.
	failing map[string]error
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{data: map[string][]Row{}, failing: map[string]error{}}
}

// FailSelect makes subsequent reads of collection fail with err. A nil err
// clears it.
func (m *Memory) FailSelect(collection string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failing, collection)
		return
	}
	m.failing[collection] = err
}

func (m *Memory) Select(ctx context.Context, collection string, q Query) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err, ok := m.failing[collection]; ok {
		return nil, fmt.Errorf("store: select %s: %w", collection, err)
	}

	var out []Row
	for _, r := range m.data[collection] {
		if matches(r, q.Where) {
			out = append(out, copyRow(r))
		}
	}
	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			c := compare(out[i][q.OrderBy], out[j][q.OrderBy])
			if q.Desc {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, collection string, row Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[collection] = append(m.data[collection], copyRow(row))
	return nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, fields Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.data[collection] {
		if fmt.Sprint(r["id"]) == id {
			for k, v := range fields {
				r[k] = v
			}
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.data[collection]
	for i, r := range rows {
		if fmt.Sprint(r["id"]) == id {
			m.data[collection] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) Close() error { return nil }

func copyRow(r Row) Row {
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

func matches(r Row, preds []Predicate) bool {
	for _, p := range preds {
		v, ok := r[p.Column]
		if !ok {
			return false
		}
		switch p.Op {
		case OpEq:
			if compare(v, p.Value) != 0 {
				return false
			}
		case OpBetween:
			if compare(v, p.Value) < 0 || compare(v, p.Upper) > 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compare orders two scalar values: numerically when both are numbers,
// otherwise by their string form. Times compare as calendar dates when the
// other side is a date string.
func compare(a, b any) int {
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	sa, sb := scalar(a), scalar(b)
	if len(sa) != len(sb) {
		if t, ok := a.(time.Time); ok && len(sb) == 10 {
			sa = t.Format("2006-01-02")
		}
		if t, ok := b.(time.Time); ok && len(sa) == 10 {
			sb = t.Format("2006-01-02")
		}
	}
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

func scalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return Timestamp(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
