package upload

import (
	"context"
	"errors"

	"github.com/talkincode/storebuilder/internal/domain"
	"gorm.io/gorm"
)

// ErrProductNotFound is returned when no record matches the id in the session.
var ErrProductNotFound = errors.New("upload: product not found")

// ProductRepository stores uploaded products per session
type ProductRepository interface {
	// Create inserts a new record
	Create(ctx context.Context, p *domain.UploadProduct) error

	// Update replaces an existing record in place
	Update(ctx context.Context, p *domain.UploadProduct) error

	// Get retrieves a record by id within a session
	Get(ctx context.Context, sessionID string, id int64) (*domain.UploadProduct, error)

	// Delete removes a record by id within a session
	Delete(ctx context.Context, sessionID string, id int64) error

	// Count returns the number of records of a session
	Count(ctx context.Context, sessionID string) (int64, error)

	// List returns records of a session in creation order
	List(ctx context.Context, sessionID string, offset, limit int) ([]domain.UploadProduct, error)

	// DeleteSession removes every record of a session
	DeleteSession(ctx context.Context, sessionID string) error
}

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	DB *gorm.DB
}

// NewGormProductRepository creates a new GORM-based repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{DB: db}
}

func (r *GormProductRepository) Create(ctx context.Context, p *domain.UploadProduct) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormProductRepository) Update(ctx context.Context, p *domain.UploadProduct) error {
	res := r.DB.WithContext(ctx).
		Model(&domain.UploadProduct{}).
		Where("id = ? AND session_id = ?", p.ID, p.SessionID).
		Select("name", "price", "image", "description", "stock", "supplier", "variations", "updated_at").
		Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *GormProductRepository) Get(ctx context.Context, sessionID string, id int64) (*domain.UploadProduct, error) {
	var p domain.UploadProduct
	err := r.DB.WithContext(ctx).Where("id = ? AND session_id = ?", id, sessionID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepository) Delete(ctx context.Context, sessionID string, id int64) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND session_id = ?", id, sessionID).Delete(&domain.UploadProduct{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *GormProductRepository) Count(ctx context.Context, sessionID string) (int64, error) {
	var total int64
	err := r.DB.WithContext(ctx).Model(&domain.UploadProduct{}).Where("session_id = ?", sessionID).Count(&total).Error
	return total, err
}

func (r *GormProductRepository) List(ctx context.Context, sessionID string, offset, limit int) ([]domain.UploadProduct, error) {
	var rows []domain.UploadProduct
	err := r.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *GormProductRepository) DeleteSession(ctx context.Context, sessionID string) error {
	return r.DB.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&domain.UploadProduct{}).Error
}
