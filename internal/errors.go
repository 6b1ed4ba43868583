package internal

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"github.com/uptrace/bun/driver/pgdriver"
	"io"
	"net"
	"strings"
	"syscall"
)

// ConnectivityError is a failure to reach or keep talking to the database.
// Waiting gives the server time to recover, so it is retried with long delays.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: connectivity: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

func (e *ConnectivityError) Is(target error) bool {
	var t *ConnectivityError
	ok := errors.As(target, &t)
	return ok
}

// TaskError is any other failure while materializing a page.
type TaskError struct {
	Op  string
	Err error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

func (e *TaskError) Is(target error) bool {
	var t *TaskError
	ok := errors.As(target, &t)
	return ok
}

func IsConnectivity(err error) bool {
	var c *ConnectivityError
	return errors.As(err, &c)
}

// Classify tags err as a ConnectivityError or a TaskError. Already tagged and
// context errors pass through unchanged.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var c *ConnectivityError
	var t *TaskError
	if errors.As(err, &c) || errors.As(err, &t) {
		return err
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	if isConnectionFailure(err) {
		return &ConnectivityError{Op: op, Err: err}
	}

	return &TaskError{Op: op, Err: err}
}

// postgres sqlstates that mean the session is gone or cannot be opened
var connectionStates = []string{
	"53300", // too_many_connections
	"57P01", // admin_shutdown
	"57P02", // crash_shutdown
	"57P03", // cannot_connect_now
}

func isConnectionFailure(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		state := pgErr.Field('C')
		// class 08: connection_exception
		if strings.HasPrefix(state, "08") {
			return true
		}
		for _, s := range connectionStates {
			if state == s {
				return true
			}
		}
	}

	return false
}
