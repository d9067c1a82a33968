package search

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	// CodeStoreConnection marks failures to reach the database.
	CodeStoreConnection = "STORE_CONNECTION"
	// CodeStoreQuery marks failures while executing a statement.
	CodeStoreQuery = "STORE_QUERY"
)

// QueryError wraps a store failure with the operation that hit it.
type QueryError struct {
	Op   string
	code string
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("search: %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Code returns CodeStoreConnection or CodeStoreQuery.
func (e *QueryError) Code() string { return e.code }

// Connection reports whether the database could not be reached.
func (e *QueryError) Connection() bool { return e.code == CodeStoreConnection }

func wrapStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	code := CodeStoreQuery
	if isConnectionError(err) {
		code = CodeStoreConnection
	}
	return &QueryError{Op: op, code: code, Err: err}
}

// isConnectionError recognizes transport failures from either driver:
// SQLSTATE class 08, dial errors, broken connections and timeouts.
func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "08"
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08"
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
