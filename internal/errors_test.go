package internal

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"github.com/stretchr/testify/assert"
	"io"
	"net"
	"syscall"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		connectivity bool
	}{
		{"bad connection", driver.ErrBadConn, true},
		{"connection done", sql.ErrConnDone, true},
		{"eof", io.EOF, true},
		{"wrapped unexpected eof", fmt.Errorf("reading: %w", io.ErrUnexpectedEOF), true},
		{"refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, true},
		{"reset", syscall.ECONNRESET, true},
		{"dns", &net.DNSError{Err: "no such host", Name: "db"}, true},
		{"no rows", sql.ErrNoRows, false},
		{"anything else", errors.New("column does not exist"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify("op", tt.err)

			assert.Equal(t, tt.connectivity, IsConnectivity(err))
			assert.ErrorIs(t, err, tt.err)
			if !tt.connectivity {
				assert.ErrorIs(t, err, &TaskError{})
			}
		})
	}
}

func TestClassify_PassThrough(t *testing.T) {
	assert.NoError(t, Classify("op", nil))

	tagged := &TaskError{Op: "compose", Err: errors.New("boom")}
	assert.Same(t, tagged, Classify("upsert", tagged))

	connectivity := fmt.Errorf("wrapped: %w", &ConnectivityError{Op: "ping", Err: io.EOF})
	assert.Equal(t, connectivity, Classify("upsert", connectivity))

	assert.Equal(t, context.Canceled, Classify("upsert", context.Canceled))
	assert.False(t, IsConnectivity(Classify("upsert", context.DeadlineExceeded)))
}

func TestErrorMessages(t *testing.T) {
	assert.EqualError(t, &ConnectivityError{Op: "ping", Err: io.EOF}, "ping: connectivity: EOF")
	assert.EqualError(t, &TaskError{Op: "upsert", Err: errors.New("boom")}, "upsert: boom")
}
