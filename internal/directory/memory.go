package directory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"proconnect/backend/internal/models"
)

// Memory is an in-memory Directory. It is thread-safe and exists for tests
// and local development; production uses Gorm.
type Memory struct {
	mu          sync.RWMutex
	profiles    map[uint]*models.Profile
	connections map[string]*models.Connection
	feedback    []*models.Feedback
	nextID      uint

	now func() time.Time
}

// NewMemory creates an empty in-memory directory.
func NewMemory() *Memory {
	return &Memory{
		profiles:    make(map[uint]*models.Profile),
		connections: make(map[string]*models.Connection),
		nextID:      1,
		now:         time.Now,
	}
}

func (m *Memory) UserExists(_ context.Context, id uint) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.profiles[id]
	return ok, nil
}

func (m *Memory) GetProfile(_ context.Context, id uint) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	profile, ok := m.profiles[id]
	if !ok {
		return nil, nil
	}
	copied := *profile
	return &copied, nil
}

func (m *Memory) GetByUsername(_ context.Context, username string) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, profile := range m.profiles {
		if profile.Username == username {
			copied := *profile
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *Memory) CreateProfile(_ context.Context, profile *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if profile.ID == 0 {
		profile.ID = m.nextID
	}
	if profile.ID >= m.nextID {
		m.nextID = profile.ID + 1
	}
	profile.CreatedAt = m.now()
	profile.UpdatedAt = profile.CreatedAt
	copied := *profile
	m.profiles[profile.ID] = &copied
	return nil
}

func (m *Memory) UpdateProfile(_ context.Context, id uint, fields map[string]any) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile, ok := m.profiles[id]
	if !ok {
		return nil, nil
	}

	for column, value := range fields {
		switch column {
		case "name":
			profile.Name = value.(string)
		case "title":
			profile.Title = value.(string)
		case "description":
			profile.Description = value.(string)
		case "github":
			profile.Github = value.(string)
		case "linkedin":
			profile.Linkedin = value.(string)
		case "website":
			profile.Website = value.(string)
		case "world_id":
			profile.WorldID = value.(string)
		case "allow_connections":
			profile.AllowConnections = value.(bool)
		case "allow_search":
			profile.AllowSearch = value.(bool)
		}
	}
	profile.UpdatedAt = m.now()

	copied := *profile
	return &copied, nil
}

func (m *Memory) SearchProfiles(_ context.Context, query string, limit, offset int) ([]models.Profile, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []models.Profile
	lowered := strings.ToLower(query)
	for _, profile := range m.profiles {
		if !profile.AllowSearch {
			continue
		}
		if query == "" ||
			strings.Contains(strings.ToLower(profile.Username), lowered) ||
			strings.Contains(strings.ToLower(profile.Name), lowered) ||
			strings.Contains(strings.ToLower(profile.Title), lowered) {
			matched = append(matched, *profile)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	matched = page(matched, limit, offset)
	return matched, total, nil
}

func (m *Memory) SaveFeedback(_ context.Context, feedback *models.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	feedback.ID = uint(len(m.feedback) + 1)
	feedback.CreatedAt = m.now()
	copied := *feedback
	m.feedback = append(m.feedback, &copied)
	return nil
}

// Feedback returns all stored feedback entries.
func (m *Memory) Feedback() []*models.Feedback {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*models.Feedback(nil), m.feedback...)
}

func (m *Memory) InsertConnection(_ context.Context, conn *models.Connection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conn.ID == "" {
		conn.ID = uuid.NewString()
	}
	conn.CreatedAt = m.now()
	conn.UpdatedAt = conn.CreatedAt
	copied := *conn
	m.connections[conn.ID] = &copied
	return nil
}

func (m *Memory) GetConnectionByPair(_ context.Context, a, b uint) (*models.Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conn := m.pairLocked(a, b)
	if conn == nil {
		return nil, nil
	}
	copied := *conn
	return &copied, nil
}

func (m *Memory) TransitionConnection(_ context.Context, requesterID, receiverID uint, from, to models.ConnectionStatus) (*models.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, conn := range m.connections {
		if conn.RequesterID == requesterID && conn.ReceiverID == receiverID && conn.Status == from {
			conn.Status = to
			conn.UpdatedAt = m.now()
			copied := *conn
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *Memory) DeleteConnectionByPair(_ context.Context, a, b uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn := m.pairLocked(a, b)
	if conn == nil {
		return false, nil
	}
	delete(m.connections, conn.ID)
	return true, nil
}

func (m *Memory) ListPendingReceived(_ context.Context, userID uint, limit, offset int) ([]models.Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var conns []models.Connection
	for _, conn := range m.connections {
		if conn.ReceiverID == userID && conn.Status == models.StatusPending {
			copied := *conn
			if requester, ok := m.profiles[conn.RequesterID]; ok {
				copied.Requester = *requester
			}
			conns = append(conns, copied)
		}
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].CreatedAt.After(conns[j].CreatedAt) })
	return page(conns, limit, offset), nil
}

func (m *Memory) ListAccepted(_ context.Context, userID uint, limit, offset int) ([]models.Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var conns []models.Connection
	for _, conn := range m.connections {
		if conn.Status != models.StatusAccepted {
			continue
		}
		if conn.RequesterID != userID && conn.ReceiverID != userID {
			continue
		}
		copied := *conn
		if requester, ok := m.profiles[conn.RequesterID]; ok {
			copied.Requester = *requester
		}
		if receiver, ok := m.profiles[conn.ReceiverID]; ok {
			copied.Receiver = *receiver
		}
		conns = append(conns, copied)
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].UpdatedAt.After(conns[j].UpdatedAt) })
	return page(conns, limit, offset), nil
}

func (m *Memory) AcceptedPartnerIDs(_ context.Context, userID uint) ([]uint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var partners []uint
	for _, conn := range m.connections {
		if conn.Status != models.StatusAccepted {
			continue
		}
		if conn.RequesterID == userID {
			partners = append(partners, conn.ReceiverID)
		} else if conn.ReceiverID == userID {
			partners = append(partners, conn.RequesterID)
		}
	}
	return partners, nil
}

func (m *Memory) CountPendingSent(_ context.Context, userID uint) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, conn := range m.connections {
		if conn.RequesterID == userID && conn.Status == models.StatusPending {
			count++
		}
	}
	return count, nil
}

func (m *Memory) CountPendingReceived(_ context.Context, userID uint) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, conn := range m.connections {
		if conn.ReceiverID == userID && conn.Status == models.StatusPending {
			count++
		}
	}
	return count, nil
}

func (m *Memory) CountAccepted(_ context.Context, userID uint) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, conn := range m.connections {
		if conn.Status != models.StatusAccepted {
			continue
		}
		if conn.RequesterID == userID || conn.ReceiverID == userID {
			count++
		}
	}
	return count, nil
}

// pairLocked finds the connection for the unordered pair {a,b}. Caller must
// hold at least a read lock.
func (m *Memory) pairLocked(a, b uint) *models.Connection {
	for _, conn := range m.connections {
		if (conn.RequesterID == a && conn.ReceiverID == b) ||
			(conn.RequesterID == b && conn.ReceiverID == a) {
			return conn
		}
	}
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
