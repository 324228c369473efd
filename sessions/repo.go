package sessions

import "context"

// Repo stores one Record per browser id. Implementations expire records after
// a period of inactivity; every Get and Put counts as activity.
type Repo interface {
	// Get returns the record for browserID. A missing or expired record is an empty Record and no error.
	Get(ctx context.Context, browserID string) (Record, error)

	// Put replaces the record for browserID. Putting an empty Record deletes it.
	Put(ctx context.Context, browserID string, record Record) error

	// Delete removes the record for browserID. Deleting a missing record is not an error.
	Delete(ctx context.Context, browserID string) error
}
