package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/leadintake/internal/models"
	"github.com/yoockh/leadintake/internal/utils"
	"gorm.io/gorm"
)

type ApplicationRepository interface {
	Insert(ctx context.Context, a *models.JobApplication) error
	GetByID(ctx context.Context, tenantID, id string) (*models.JobApplication, error)
	List(ctx context.Context, tenantID string, status models.ApplicationStatus, limit int) ([]models.JobApplication, error)
	UpdateReview(ctx context.Context, tenantID, id string, upd models.ReviewUpdate, at time.Time) (*models.JobApplication, error)
}

type applicationRepo struct {
	db *gorm.DB
}

func NewApplicationRepo(db *gorm.DB) ApplicationRepository {
	return &applicationRepo{db: db}
}

func (r *applicationRepo) Insert(ctx context.Context, a *models.JobApplication) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *applicationRepo) GetByID(ctx context.Context, tenantID, id string) (*models.JobApplication, error) {
	var row models.JobApplication
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *applicationRepo) List(ctx context.Context, tenantID string, status models.ApplicationStatus, limit int) ([]models.JobApplication, error) {
	if limit <= 0 {
		limit = 100
	}

	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var rows []models.JobApplication
	err := q.Order("received_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

// UpdateReview writes only the fields present in upd and always stamps
// updated_at. Empty assignedTo/notes are stored as NULL.
func (r *applicationRepo) UpdateReview(ctx context.Context, tenantID, id string, upd models.ReviewUpdate, at time.Time) (*models.JobApplication, error) {
	cols := map[string]any{"updated_at": at}
	if upd.Status != nil {
		cols["status"] = string(*upd.Status)
	}
	if upd.AssignedTo != nil {
		cols["assigned_to"] = nullIfEmpty(*upd.AssignedTo)
	}
	if upd.Notes != nil {
		cols["notes"] = nullIfEmpty(*upd.Notes)
	}

	var out *models.JobApplication
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.JobApplication{}).
			Where("tenant_id = ? AND id = ?", tenantID, id).
			Updates(cols)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ErrNotFound
		}

		var row models.JobApplication
		if err := tx.Where("tenant_id = ? AND id = ?", tenantID, id).Take(&row).Error; err != nil {
			return err
		}
		out = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
