// Package services contains the server-side business logic shared by the
// HTTP API and the admin CLI. Services receive an explicit repomanager.Manager
// and never hold global state.
package services

import "time"

// now is a seam for tests. Timestamps are truncated to microseconds, the
// precision PostgreSQL keeps.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
