// Package directory defines the persistence contract for profiles and
// connection records, with a gorm/postgres implementation for production and
// an in-memory one for tests.
package directory

import (
	"context"

	"proconnect/backend/internal/models"
)

// Directory is the narrow persistence interface the conversation engine and
// connection manager depend on. Absent records are returned as nil, not as
// errors; errors signal infrastructure failure only.
type Directory interface {
	UserExists(ctx context.Context, id uint) (bool, error)
	GetProfile(ctx context.Context, id uint) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	CreateProfile(ctx context.Context, profile *models.Profile) error
	// UpdateProfile applies a partial update and returns the updated profile,
	// or nil when the profile does not exist.
	UpdateProfile(ctx context.Context, id uint, fields map[string]any) (*models.Profile, error)
	SearchProfiles(ctx context.Context, query string, limit, offset int) ([]models.Profile, int64, error)

	SaveFeedback(ctx context.Context, feedback *models.Feedback) error

	InsertConnection(ctx context.Context, conn *models.Connection) error
	// GetConnectionByPair looks up the record for the unordered pair {a,b}
	// in any status, regardless of direction. Nil when no record exists.
	GetConnectionByPair(ctx context.Context, a, b uint) (*models.Connection, error)
	// TransitionConnection atomically moves the record matching the exact
	// direction (requester, receiver) from status `from` to `to`. Returns the
	// updated record, or nil when no record matched the predicate — the
	// benign outcome a losing racer observes.
	TransitionConnection(ctx context.Context, requesterID, receiverID uint, from, to models.ConnectionStatus) (*models.Connection, error)
	// DeleteConnectionByPair removes the pair's record in any status and
	// reports whether a record existed.
	DeleteConnectionByPair(ctx context.Context, a, b uint) (bool, error)
	// ListPendingReceived returns pending requests where userID is the
	// receiver, newest first, with the requester profile populated.
	ListPendingReceived(ctx context.Context, userID uint, limit, offset int) ([]models.Connection, error)
	// ListAccepted returns accepted connections touching userID, most
	// recently updated first, with both profiles populated.
	ListAccepted(ctx context.Context, userID uint, limit, offset int) ([]models.Connection, error)
	// AcceptedPartnerIDs returns the ids of every user with an accepted
	// connection to userID, in either direction.
	AcceptedPartnerIDs(ctx context.Context, userID uint) ([]uint, error)
	CountPendingSent(ctx context.Context, userID uint) (int64, error)
	CountPendingReceived(ctx context.Context, userID uint) (int64, error)
	CountAccepted(ctx context.Context, userID uint) (int64, error)
}
