package directory

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"proconnect/backend/internal/models"
)

// Gorm is the postgres-backed Directory.
type Gorm struct {
	db *gorm.DB
}

// NewGorm wraps an open gorm handle.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) UserExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (g *Gorm) GetProfile(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	err := g.db.WithContext(ctx).First(&profile, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (g *Gorm) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var profile models.Profile
	err := g.db.WithContext(ctx).Where("username = ?", username).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (g *Gorm) CreateProfile(ctx context.Context, profile *models.Profile) error {
	return g.db.WithContext(ctx).Create(profile).Error
}

func (g *Gorm) UpdateProfile(ctx context.Context, id uint, fields map[string]any) (*models.Profile, error) {
	result := g.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return g.GetProfile(ctx, id)
}

func (g *Gorm) SearchProfiles(ctx context.Context, query string, limit, offset int) ([]models.Profile, int64, error) {
	q := g.db.WithContext(ctx).Model(&models.Profile{}).Where("allow_search = ?", true)
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where("username ILIKE ? OR name ILIKE ? OR title ILIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []models.Profile
	if err := q.Limit(limit).Offset(offset).Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (g *Gorm) SaveFeedback(ctx context.Context, feedback *models.Feedback) error {
	return g.db.WithContext(ctx).Create(feedback).Error
}

func (g *Gorm) InsertConnection(ctx context.Context, conn *models.Connection) error {
	return g.db.WithContext(ctx).Create(conn).Error
}

func (g *Gorm) GetConnectionByPair(ctx context.Context, a, b uint) (*models.Connection, error) {
	var conn models.Connection
	err := g.db.WithContext(ctx).
		Where("(requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?)", a, b, b, a).
		First(&conn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (g *Gorm) TransitionConnection(ctx context.Context, requesterID, receiverID uint, from, to models.ConnectionStatus) (*models.Connection, error) {
	// Single conditional UPDATE: of two racing accept/decline calls only one
	// matches the status predicate; the other sees zero rows.
	result := g.db.WithContext(ctx).Model(&models.Connection{}).
		Where("requester_id = ? AND receiver_id = ? AND status = ?", requesterID, receiverID, from).
		Update("status", to)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	var conn models.Connection
	err := g.db.WithContext(ctx).
		Where("requester_id = ? AND receiver_id = ?", requesterID, receiverID).
		First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (g *Gorm) DeleteConnectionByPair(ctx context.Context, a, b uint) (bool, error) {
	result := g.db.WithContext(ctx).
		Where("(requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?)", a, b, b, a).
		Delete(&models.Connection{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (g *Gorm) ListPendingReceived(ctx context.Context, userID uint, limit, offset int) ([]models.Connection, error) {
	var conns []models.Connection
	err := g.db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", userID, models.StatusPending).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Preload("Requester").
		Find(&conns).Error
	return conns, err
}

func (g *Gorm) ListAccepted(ctx context.Context, userID uint, limit, offset int) ([]models.Connection, error) {
	var conns []models.Connection
	err := g.db.WithContext(ctx).
		Where("(requester_id = ? OR receiver_id = ?) AND status = ?", userID, userID, models.StatusAccepted).
		Order("updated_at DESC").
		Limit(limit).Offset(offset).
		Preload("Requester").Preload("Receiver").
		Find(&conns).Error
	return conns, err
}

func (g *Gorm) AcceptedPartnerIDs(ctx context.Context, userID uint) ([]uint, error) {
	var conns []models.Connection
	err := g.db.WithContext(ctx).
		Select("requester_id", "receiver_id").
		Where("(requester_id = ? OR receiver_id = ?) AND status = ?", userID, userID, models.StatusAccepted).
		Find(&conns).Error
	if err != nil {
		return nil, err
	}

	partners := make([]uint, 0, len(conns))
	for i := range conns {
		partners = append(partners, conns[i].Other(userID))
	}
	return partners, nil
}

func (g *Gorm) CountPendingSent(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&models.Connection{}).
		Where("requester_id = ? AND status = ?", userID, models.StatusPending).
		Count(&count).Error
	return count, err
}

func (g *Gorm) CountPendingReceived(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&models.Connection{}).
		Where("receiver_id = ? AND status = ?", userID, models.StatusPending).
		Count(&count).Error
	return count, err
}

func (g *Gorm) CountAccepted(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&models.Connection{}).
		Where("(requester_id = ? OR receiver_id = ?) AND status = ?", userID, userID, models.StatusAccepted).
		Count(&count).Error
	return count, err
}
