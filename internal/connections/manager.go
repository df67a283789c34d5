// Package connections owns the connection-request lifecycle: a directed edge
// per unordered pair of users moving through pending → accepted/declined,
// with an outgoing-request quota and derived views.
package connections

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"proconnect/backend/internal/cache"
	"proconnect/backend/internal/directory"
	"proconnect/backend/internal/models"
)

// MaxPendingOutgoing caps how many pending requests a user may have open as
// requester.
const MaxPendingOutgoing = 10

var (
	// ErrNotFound means one of the users does not exist.
	ErrNotFound = errors.New("user not found")

	// ErrSelfRequest means a user tried to connect with themselves.
	ErrSelfRequest = errors.New("cannot connect with yourself")

	// ErrAlreadyExists means a record for the pair exists in any status.
	// Note: a declined record also blocks re-requesting; the pair has no
	// path back to pending.
	ErrAlreadyExists = errors.New("connection already exists")

	// ErrQuotaExceeded means the requester is at MaxPendingOutgoing.
	ErrQuotaExceeded = errors.New("too many pending requests")

	// ErrPrivacyDenied means the receiver does not accept connections.
	ErrPrivacyDenied = errors.New("user does not accept connection requests")
)

// PendingRequest is a pending record joined with the requester's public
// summary.
type PendingRequest struct {
	Connection models.Connection `json:"connection"`
	Requester  models.Summary    `json:"requester"`
}

// ConnectionView is an accepted record normalized to "the other party" from
// the viewer's perspective.
type ConnectionView struct {
	Connection models.Connection `json:"connection"`
	Partner    models.Summary    `json:"partner"`
}

// Manager enforces the lifecycle rules on top of the directory.
type Manager struct {
	dir   directory.Directory
	cache *cache.Cache
}

// NewManager wires a manager to its directory and cache.
func NewManager(dir directory.Directory, c *cache.Cache) *Manager {
	return &Manager{dir: dir, cache: c}
}

// CreateRequest opens a pending connection from requester to receiver.
func (m *Manager) CreateRequest(ctx context.Context, requesterID, receiverID uint) (*models.Connection, error) {
	if requesterID == receiverID {
		return nil, ErrSelfRequest
	}

	for _, id := range []uint{requesterID, receiverID} {
		exists, err := m.dir.UserExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrNotFound
		}
	}

	receiver, err := m.dir.GetProfile(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrNotFound
	}
	if !receiver.AllowConnections {
		return nil, ErrPrivacyDenied
	}

	existing, err := m.dir.GetConnectionByPair(ctx, requesterID, receiverID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}

	pending, err := m.dir.CountPendingSent(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if pending >= MaxPendingOutgoing {
		return nil, ErrQuotaExceeded
	}

	conn := &models.Connection{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      models.StatusPending,
	}
	if err := m.dir.InsertConnection(ctx, conn); err != nil {
		return nil, err
	}
	m.invalidateCounts(requesterID, receiverID)
	return conn, nil
}

// Accept transitions the pending request from requesterID to receiverID to
// accepted. Only the original receiver's direction matches. Returns nil (not
// an error) when no matching pending record exists: already handled, or
// never there.
func (m *Manager) Accept(ctx context.Context, requesterID, receiverID uint) (*models.Connection, error) {
	conn, err := m.dir.TransitionConnection(ctx, requesterID, receiverID, models.StatusPending, models.StatusAccepted)
	if err != nil {
		return nil, err
	}
	if conn != nil {
		m.invalidateCounts(requesterID, receiverID)
	}
	return conn, nil
}

// Decline transitions the pending request to declined; same contract as
// Accept.
func (m *Manager) Decline(ctx context.Context, requesterID, receiverID uint) (*models.Connection, error) {
	conn, err := m.dir.TransitionConnection(ctx, requesterID, receiverID, models.StatusPending, models.StatusDeclined)
	if err != nil {
		return nil, err
	}
	if conn != nil {
		m.invalidateCounts(requesterID, receiverID)
	}
	return conn, nil
}

// Get returns the record for the unordered pair {a,b} in any status, or nil.
func (m *Manager) Get(ctx context.Context, a, b uint) (*models.Connection, error) {
	return m.dir.GetConnectionByPair(ctx, a, b)
}

// Remove hard-deletes the pair's record regardless of status and reports
// whether one existed. Idempotent.
func (m *Manager) Remove(ctx context.Context, a, b uint) (bool, error) {
	removed, err := m.dir.DeleteConnectionByPair(ctx, a, b)
	if err != nil {
		return false, err
	}
	if removed {
		m.invalidateCounts(a, b)
	}
	return removed, nil
}

// PendingRequests lists requests awaiting userID's answer, newest first.
func (m *Manager) PendingRequests(ctx context.Context, userID uint, limit, offset int) ([]PendingRequest, error) {
	conns, err := m.dir.ListPendingReceived(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	requests := make([]PendingRequest, 0, len(conns))
	for i := range conns {
		requests = append(requests, PendingRequest{
			Connection: conns[i],
			Requester:  conns[i].Requester.Summary(),
		})
	}
	return requests, nil
}

// Connections lists userID's accepted connections, most recently updated
// first, normalized to the other party.
func (m *Manager) Connections(ctx context.Context, userID uint, limit, offset int) ([]ConnectionView, error) {
	conns, err := m.dir.ListAccepted(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	views := make([]ConnectionView, 0, len(conns))
	for i := range conns {
		views = append(views, ConnectionView{
			Connection: conns[i],
			Partner:    conns[i].OtherProfile(userID).Summary(),
		})
	}
	return views, nil
}

// MutualConnections returns the users with an accepted connection to both a
// and b, in either direction.
func (m *Manager) MutualConnections(ctx context.Context, a, b uint) ([]models.Summary, error) {
	aPartners, err := m.dir.AcceptedPartnerIDs(ctx, a)
	if err != nil {
		return nil, err
	}
	bPartners, err := m.dir.AcceptedPartnerIDs(ctx, b)
	if err != nil {
		return nil, err
	}

	inA := make(map[uint]bool, len(aPartners))
	for _, id := range aPartners {
		inA[id] = true
	}

	mutual := make([]models.Summary, 0)
	for _, id := range bPartners {
		if !inA[id] || id == a || id == b {
			continue
		}
		inA[id] = false // each mutual user once
		profile, err := m.dir.GetProfile(ctx, id)
		if err != nil {
			return nil, err
		}
		if profile != nil {
			mutual = append(mutual, profile.Summary())
		}
	}
	return mutual, nil
}

// PendingCount returns how many requests await userID's answer.
func (m *Manager) PendingCount(ctx context.Context, userID uint) (int64, error) {
	key := fmt.Sprintf("pending-count:%d", userID)
	if v, ok := m.cache.Get(key); ok {
		return v.(int64), nil
	}
	count, err := m.dir.CountPendingReceived(ctx, userID)
	if err != nil {
		return 0, err
	}
	m.cache.Set(key, count, 0)
	return count, nil
}

// ConnectionsCount returns how many accepted connections touch userID.
func (m *Manager) ConnectionsCount(ctx context.Context, userID uint) (int64, error) {
	key := fmt.Sprintf("connections-count:%d", userID)
	if v, ok := m.cache.Get(key); ok {
		return v.(int64), nil
	}
	count, err := m.dir.CountAccepted(ctx, userID)
	if err != nil {
		return 0, err
	}
	m.cache.Set(key, count, 0)
	return count, nil
}

func (m *Manager) invalidateCounts(a, b uint) {
	for _, id := range []uint{a, b} {
		m.cache.Delete(fmt.Sprintf("pending-count:%d", id))
		m.cache.Delete(fmt.Sprintf("connections-count:%d", id))
	}
}
