package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect identifies the SQL flavour behind a connection.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DialectOf returns the dialect of an open connection based on its driver name.
func DialectOf(db sqlx.ExtContext) Dialect {
	return Dialect(db.DriverName())
}

// LockingRead returns the suffix that turns a SELECT into a row-locking read.
// SQLite has no row locks; its single writer connection serializes transactions instead.
func (d Dialect) LockingRead() string {
	if d == SQLite {
		return ""
	}
	return " FOR UPDATE"
}

// UpsertClause returns the conflict clause of an INSERT that updates the given columns
// when a row with the same conflictColumns already exists.
// Each entry of assignments maps a column to an expression that may reference
// the existing row as the table name and the proposed row through Excluded.
func (d Dialect) UpsertClause(conflictColumns []string, assignments []Assignment) string {
	var b strings.Builder
	if d == MySQL {
		b.WriteString(" ON DUPLICATE KEY UPDATE ")
	} else {
		b.WriteString(" ON CONFLICT (")
		b.WriteString(strings.Join(conflictColumns, ", "))
		b.WriteString(") DO UPDATE SET ")
	}
	for i, a := range assignments {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.Column)
		b.WriteString(" = ")
		b.WriteString(strings.ReplaceAll(a.Expression, "{new}", d.excluded(a.Column)))
	}
	return b.String()
}

func (d Dialect) excluded(column string) string {
	if d == MySQL {
		return "VALUES(" + column + ")"
	}
	return "excluded." + column
}

// Assignment is a single column update of an upsert.
// The placeholder {new} in Expression stands for the proposed value of Column.
type Assignment struct {
	Column     string
	Expression string
}

// Set returns an assignment that overwrites column with the proposed value.
func Set(column string) Assignment {
	return Assignment{Column: column, Expression: "{new}"}
}

// IsUniqueViolation reports whether err comes from a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// InsertReturningID executes an INSERT written with ? placeholders and returns the generated id.
// PostgreSQL has no LastInsertId, so the id is read back with RETURNING there.
func InsertReturningID(ctx context.Context, db sqlx.ExtContext, query string, args ...any) (int64, error) {
	query = db.Rebind(query)
	if DialectOf(db) == Postgres {
		var id int64
		if err := sqlx.GetContext(ctx, db, &id, query+" RETURNING id", args...); err != nil {
			return 0, err
		}
		return id, nil
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("result.LastInsertId() > %w", err)
	}
	return id, nil
}
