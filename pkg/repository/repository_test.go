package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

type record struct {
	ID   int
	Name string
}

func scanRecord(s Scanner) (record, error) {
	var r record
	err := s.Scan(&r.ID, &r.Name)
	return r, err
}

func TestQueryOne(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, name FROM records").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "alpha"))

	got, err := QueryOne(context.Background(), db, "SELECT id, name FROM records WHERE id = $1", []any{1}, scanRecord)
	if err != nil {
		t.Fatalf("QueryOne: %v", err)
	}
	if got.ID != 1 || got.Name != "alpha" {
		t.Errorf("got %+v", got)
	}
}

func TestQueryOneNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, name FROM records").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	_, err = QueryOne(context.Background(), db, "SELECT id, name FROM records WHERE id = $1", []any{1}, scanRecord)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestQueryMany(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, name FROM records").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "alpha").
			AddRow(2, "beta"))

	got, err := QueryMany(context.Background(), db, "SELECT id, name FROM records", nil, scanRecord)
	if err != nil {
		t.Fatalf("QueryMany: %v", err)
	}
	if len(got) != 2 || got[1].Name != "beta" {
		t.Errorf("got %+v", got)
	}
}

func TestExecExpectOne(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{"one row", 1, nil},
		{"no rows", 0, sql.ErrNoRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock: %v", err)
			}
			defer db.Close()

			mock.ExpectExec("DELETE FROM records").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err = ExecExpectOne(context.Background(), db, "DELETE FROM records WHERE id = $1", 1)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestWithTxCommit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE records").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := WithTx(context.Background(), db, func(tx *sql.Tx) (int64, error) {
		return Exec(context.Background(), tx, "UPDATE records SET name = $1", "gamma")
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if got != 1 {
		t.Errorf("affected = %d, want 1", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestWithTxRollback(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err = WithTx(context.Background(), db, func(tx *sql.Tx) (int, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil passes through", nil, nil},
		{"no rows maps to not found", sql.ErrNoRows, errNotFound},
		{"unique violation maps to duplicate", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"other pg error passes through", &pgconn.PgError{Code: "23503"}, nil},
		{"unrelated error passes through", errors.New("disk full"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err, errNotFound, errDuplicate)

			if tt.want != nil {
				if !errors.Is(got, tt.want) {
					t.Errorf("MapError = %v, want %v", got, tt.want)
				}
				return
			}
			if got != tt.err {
				t.Errorf("MapError = %v, want original %v", got, tt.err)
			}
		})
	}
}
