// Package id generates the trace ids keying ledger events and custody
// transfers.
package id

import (
	"github.com/gofrs/uuid"
)

// GenTraceID returns a fresh random trace id.
func GenTraceID() string {
	return uuid.Must(uuid.NewV4()).String()
}
