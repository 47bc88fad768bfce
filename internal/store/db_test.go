package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"alertsmis/pkg/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type recordedQuery struct {
	sql  string
	args []any
}

// recordingDB captures the statements a repository sends. Exec reports
// rowsAffected rows and QueryRow scans scanID into the first destination,
// failing with the next queued rowErrs entry when there is one. Query hands
// out the queued results in order and empty rows once they run out.
type recordingDB struct {
	mu           sync.Mutex
	queries      []recordedQuery
	rowsAffected int64
	scanID       int64
	err          error
	rowErrs      []error
	results      []*stubRows
}

func (d *recordingDB) record(sql string, args []any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queries = append(d.queries, recordedQuery{sql: sql, args: args})
}

func (d *recordingDB) last() recordedQuery {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queries[len(d.queries)-1]
}

func (d *recordingDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	d.record(sql, args)
	if d.err != nil {
		return pgconn.CommandTag{}, d.err
	}
	return pgconn.NewCommandTag(fmt.Sprintf("UPDATE %d", d.rowsAffected)), nil
}

func (d *recordingDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	d.record(sql, args)
	if d.err != nil {
		return nil, d.err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.results) == 0 {
		return &stubRows{}, nil
	}
	rows := d.results[0]
	d.results = d.results[1:]
	return rows, nil
}

func (d *recordingDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	d.record(sql, args)

	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.err
	if len(d.rowErrs) > 0 {
		err = d.rowErrs[0]
		d.rowErrs = d.rowErrs[1:]
	}
	return scalarRow{value: d.scanID, err: err}
}

// stubRows is a pgx.Rows over in-memory values, one value per column.
type stubRows struct {
	columns []string
	values  [][]any
	pos     int
}

func newStubRows(columns ...string) *stubRows {
	return &stubRows{columns: columns}
}

func (r *stubRows) add(values ...any) *stubRows {
	r.values = append(r.values, values)
	return r
}

func (r *stubRows) Close()     {}
func (r *stubRows) Err() error { return nil }

func (r *stubRows) CommandTag() pgconn.CommandTag {
	return pgconn.NewCommandTag(fmt.Sprintf("SELECT %d", len(r.values)))
}

func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription {
	fields := make([]pgconn.FieldDescription, len(r.columns))
	for i, c := range r.columns {
		fields[i] = pgconn.FieldDescription{Name: c}
	}
	return fields
}

func (r *stubRows) Next() bool {
	if r.pos >= len(r.values) {
		return false
	}
	r.pos++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	row := r.values[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("stubRows: %d destinations for %d columns", len(dest), len(row))
	}

	for i, d := range dest {
		target := reflect.ValueOf(d)
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return fmt.Errorf("stubRows: destination %d is not a pointer", i)
		}

		elem := target.Elem()
		if row[i] == nil {
			elem.SetZero()
			continue
		}

		value := reflect.ValueOf(row[i])
		if !value.Type().AssignableTo(elem.Type()) {
			return fmt.Errorf("stubRows: cannot scan %T into %s", row[i], elem.Type())
		}
		elem.Set(value)
	}
	return nil
}

func (r *stubRows) Values() ([]any, error) { return r.values[r.pos-1], nil }
func (r *stubRows) RawValues() [][]byte    { return nil }
func (r *stubRows) Conn() *pgx.Conn        { return nil }

type scalarRow struct {
	value int64
	err   error
}

func (r scalarRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != 1 {
		return fmt.Errorf("scalarRow: expected 1 destination, got %d", len(dest))
	}
	p, ok := dest[0].(*int64)
	if !ok {
		return fmt.Errorf("scalarRow: unsupported destination %T", dest[0])
	}
	*p = r.value
	return nil
}

// tokenTable emulates the conditional consume UPDATE: a token row can be
// matched while unused exactly once.
type tokenTable struct {
	mu   sync.Mutex
	used map[string]bool
}

func (t *tokenTable) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	// args: used, used_at, alert_id, token, used[, expires_at]
	key := fmt.Sprintf("%v/%v", args[2], args[3])

	t.mu.Lock()
	defer t.mu.Unlock()

	used, exists := t.used[key]
	if !exists || used {
		return pgconn.NewCommandTag("UPDATE 0"), nil
	}
	t.used[key] = true
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (t *tokenTable) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("tokenTable: Query not supported")
}

func (t *tokenTable) QueryRow(context.Context, string, ...any) pgx.Row {
	return scalarRow{err: errors.New("tokenTable: QueryRow not supported")}
}

// unusedTokenTable emulates the partial unique index on unused tokens for a
// single alert: an insert conflicting with the unused row returns no row and
// reads see that row.
type unusedTokenTable struct {
	mu       sync.Mutex
	unused   *types.VerificationToken
	inserted int
}

func (t *unusedTokenTable) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("unusedTokenTable: Exec not supported")
}

func (t *unusedTokenTable) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	// args: alert_id, token, used, expires_at, created_at[, now]
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.unused != nil {
		return scalarRow{err: pgx.ErrNoRows}
	}

	t.inserted++
	t.unused = &types.VerificationToken{
		ID:        int64(t.inserted),
		AlertID:   args[0].(int64),
		Token:     args[1].(string),
		ExpiresAt: args[3].(*time.Time),
		CreatedAt: args[4].(time.Time),
	}
	return scalarRow{value: t.unused.ID}
}

func (t *unusedTokenTable) Query(context.Context, string, ...any) (pgx.Rows, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := newStubRows(tokenColumns...)
	if u := t.unused; u != nil {
		rows.add(u.ID, u.AlertID, u.Token, u.Used, u.UsedAt, u.ExpiresAt, u.CreatedAt)
	}
	return rows, nil
}
