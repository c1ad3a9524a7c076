package settlement

import (
	"context"

	"vendorbook/internal/core/id"
)

// SessionStore keeps in-progress sessions between requests.
// Save fails with a concurrent-modification error when the stored version
// differs from s.Version, and bumps s.Version on success.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, businessID, sessionID id.ID) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, businessID, sessionID id.ID) error
}

// RecordSink persists submitted records. Saving a record whose SubmissionID is
// already stored returns the stored record instead of creating another.
type RecordSink interface {
	SaveRecord(ctx context.Context, rec *DailySalesRecord) (*DailySalesRecord, bool, error)

	// FindBySubmission returns the record stored for a submission, or a not-found error.
	FindBySubmission(ctx context.Context, submissionID id.ID) (*DailySalesRecord, error)
}
