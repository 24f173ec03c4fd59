package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
)

// QueryParams narrows and orders the rows a DataReader returns.
type QueryParams struct {
	// Where is a condition without the WHERE keyword, such as "Time > ?".
	Where string
	Args  []any

	// OrderBy is a column list without the ORDER BY keywords.
	OrderBy string
}

// DataReader reads back the tables written by a DataRecorder.
type DataReader interface {
	// MapTable tells the reader which struct the rows of a table decode
	// into. A table must be mapped before it is queried.
	MapTable(tableName string, sampleEntry any)

	// Query returns one pointer to the mapped struct per matching row.
	Query(ctx context.Context, tableName string, params QueryParams) (
		[]any,
		error,
	)

	Close() error
}

type sqliteReader struct {
	*sql.DB

	entryTypes map[string]reflect.Type
}

// NewReader opens dbFilename for reading.
func NewReader(dbFilename string) DataReader {
	db, err := sql.Open("sqlite3", dbFilename)
	if err != nil {
		panic(err)
	}

	return NewReaderWithDB(db)
}

// NewReaderWithDB creates a DataReader on an already opened database.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{
		DB:         db,
		entryTypes: make(map[string]reflect.Type),
	}
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	r.entryTypes[tableName] = reflect.TypeOf(sampleEntry)
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, error) {
	entryType, ok := r.entryTypes[tableName]
	if !ok {
		return nil, fmt.Errorf("table %s is not mapped", tableName)
	}

	rows, err := r.DB.QueryContext(ctx,
		selectStatement(tableName, params), params.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return decodeRows(rows, entryType)
}

func selectStatement(tableName string, params QueryParams) string {
	var b strings.Builder

	fmt.Fprintf(&b, "SELECT * FROM %s", tableName)

	if params.Where != "" {
		b.WriteString(" WHERE " + params.Where)
	}

	if params.OrderBy != "" {
		b.WriteString(" ORDER BY " + params.OrderBy)
	}

	return b.String()
}

// decodeRows fills one entry per row, matching columns to fields by name.
// Columns without a field are read and dropped.
func decodeRows(rows *sql.Rows, entryType reflect.Type) ([]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	fieldIndex := make([]int, len(columns))
	for i, col := range columns {
		fieldIndex[i] = -1
		if f, ok := entryType.FieldByName(col); ok && len(f.Index) == 1 {
			fieldIndex[i] = f.Index[0]
		}
	}

	var entries []any

	for rows.Next() {
		entry := reflect.New(entryType)
		targets := make([]any, len(columns))

		for i, idx := range fieldIndex {
			if idx < 0 {
				targets[i] = new(any)
				continue
			}

			targets[i] = entry.Elem().Field(idx).Addr().Interface()
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		entries = append(entries, entry.Interface())
	}

	return entries, rows.Err()
}

func (r *sqliteReader) Close() error {
	return r.DB.Close()
}
