package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMemory(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory()
	ctx := context.Background()
	rows := []Row{
		{"id": "1", "company_id": "a", "log_date": "2024-03-01", "temperature": 3.0},
		{"id": "2", "company_id": "a", "log_date": "2024-03-02", "temperature": -20.0},
		{"id": "3", "company_id": "a", "log_date": "2024-03-05", "temperature": 70.0},
		{"id": "4", "company_id": "b", "log_date": "2024-03-02", "temperature": 1.0},
	}
	for _, r := range rows {
		require.NoError(t, m.Insert(ctx, Temperatures, r))
	}
	return m
}

func TestMemory_Select(t *testing.T) {
	m := seedMemory(t)
	ctx := context.Background()

	tests := []struct {
		name string
		q    Query
		ids  []string
	}{
		{"eq tenant", Where(Eq("company_id", "a")), []string{"1", "2", "3"}},
		{"between inclusive", Where(Eq("company_id", "a"), Between("log_date", "2024-03-01", "2024-03-02")), []string{"1", "2"}},
		{"eq date", Where(Eq("log_date", "2024-03-02")), []string{"2", "4"}},
		{"missing column", Where(Eq("zone", "x")), nil},
		{"ordered desc", Where(Eq("company_id", "a")).Order("temperature", true), []string{"3", "1", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := m.Select(ctx, Temperatures, tt.q)
			require.NoError(t, err)
			var ids []string
			for _, r := range rows {
				ids = append(ids, r.Text("id"))
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestMemory_Limit(t *testing.T) {
	m := seedMemory(t)
	q := Where(Eq("company_id", "a")).Order("log_date", false)
	q.Limit = 2
	rows, err := m.Select(context.Background(), Temperatures, q)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "2024-03-01", rows[0].Text("log_date"))
}

func TestMemory_UpdateDelete(t *testing.T) {
	m := seedMemory(t)
	ctx := context.Background()

	require.NoError(t, m.Update(ctx, Temperatures, "1", Row{"temperature": 9.0}))
	rows, err := m.Select(ctx, Temperatures, Where(Eq("id", "1")))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 9.0, *rows[0].Float("temperature"))

	require.NoError(t, m.Delete(ctx, Temperatures, "1"))
	assert.ErrorIs(t, m.Delete(ctx, Temperatures, "1"), ErrNotFound)
	assert.ErrorIs(t, m.Update(ctx, Temperatures, "nope", Row{}), ErrNotFound)
}

func TestMemory_SelectReturnsCopies(t *testing.T) {
	m := seedMemory(t)
	ctx := context.Background()
	rows, err := m.Select(ctx, Temperatures, Where(Eq("id", "1")))
	require.NoError(t, err)
	rows[0]["temperature"] = 100.0

	again, err := m.Select(ctx, Temperatures, Where(Eq("id", "1")))
	require.NoError(t, err)
	assert.Equal(t, 3.0, *again[0].Float("temperature"))
}

func TestMemory_FailSelect(t *testing.T) {
	m := seedMemory(t)
	boom := errors.New("unreachable")
	m.FailSelect(Temperatures, boom)

	_, err := m.Select(context.Background(), Temperatures, Query{})
	assert.ErrorIs(t, err, boom)

	m.FailSelect(Temperatures, nil)
	_, err = m.Select(context.Background(), Temperatures, Query{})
	assert.NoError(t, err)
}

func TestRowDecoding(t *testing.T) {
	r := Row{
		"f_str":  "4.5",
		"f_int":  int64(3),
		"b_int":  int64(1),
		"b_str":  "false",
		"d_str":  "2024-03-01T00:00:00Z",
		"d_bad":  "yesterday",
		"bytes":  []byte("hello"),
		"nil":    nil,
		"b_junk": "maybe",
	}
	assert.Equal(t, 4.5, *r.Float("f_str"))
	assert.Equal(t, 3.0, *r.Float("f_int"))
	assert.True(t, *r.Bool("b_int"))
	assert.False(t, *r.Bool("b_str"))
	assert.Nil(t, r.Bool("b_junk"))
	assert.Nil(t, r.Float("nil"))
	assert.Equal(t, "2024-03-01", r.Date("d_str").Format("2006-01-02"))
	assert.Nil(t, r.DatePtr("d_bad"))
	assert.Equal(t, "hello", r.Text("bytes"))
	assert.Equal(t, "", r.Text("missing"))
}
