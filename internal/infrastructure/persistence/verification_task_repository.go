package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/verification"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// openTaskStatuses are the statuses a task can hold while it still needs
// verifier attention
var openTaskStatuses = []verification.TaskStatus{
	verification.TaskStatusPending,
	verification.TaskStatusAssigned,
	verification.TaskStatusInProgress,
}

// GormVerificationTaskRepository implements TaskRepository using GORM
type GormVerificationTaskRepository struct {
	db *gorm.DB
}

// NewGormVerificationTaskRepository creates a new GormVerificationTaskRepository
func NewGormVerificationTaskRepository(db *gorm.DB) *GormVerificationTaskRepository {
	return &GormVerificationTaskRepository{db: db}
}

// FindByID finds a task by its ID, loading its findings
func (r *GormVerificationTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*verification.VerificationTask, error) {
	var task verification.VerificationTask
	if err := r.db.WithContext(ctx).
		Preload("Findings").
		First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// FindByProperty finds all tasks for a property, newest first
func (r *GormVerificationTaskRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]*verification.VerificationTask, error) {
	var tasks []*verification.VerificationTask
	if err := r.db.WithContext(ctx).
		Preload("Findings").
		Where("property_id = ?", propertyID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindOpenByProperty returns non-terminal tasks for a property
func (r *GormVerificationTaskRepository) FindOpenByProperty(ctx context.Context, propertyID uuid.UUID) ([]*verification.VerificationTask, error) {
	var tasks []*verification.VerificationTask
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND status IN ?", propertyID, openTaskStatuses).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountOpenByVerifierAndProperty counts non-terminal tasks held by the
// verifier for the property
func (r *GormVerificationTaskRepository) CountOpenByVerifierAndProperty(ctx context.Context, verifierID, propertyID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&verification.VerificationTask{}).
		Where("verifier_id = ? AND property_id = ? AND status IN ?", verifierID, propertyID, openTaskStatuses).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindPending returns unassigned tasks oldest first
func (r *GormVerificationTaskRepository) FindPending(ctx context.Context, limit int) ([]*verification.VerificationTask, error) {
	var tasks []*verification.VerificationTask
	if err := r.db.WithContext(ctx).
		Where("status = ?", verification.TaskStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Save creates or updates a task and its findings
func (r *GormVerificationTaskRepository) Save(ctx context.Context, task *verification.VerificationTask) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Findings").Save(task).Error; err != nil {
			return err
		}
		return saveFindings(tx, task)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormVerificationTaskRepository) SaveWithLock(ctx context.Context, task *verification.VerificationTask) error {
	loadedVersion := task.Version
	task.Version++
	task.UpdatedAt = time.Now()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&verification.VerificationTask{}).
			Where("id = ? AND version = ?", task.ID, loadedVersion).
			Updates(map[string]interface{}{
				"verifier_id":      task.VerifierID,
				"status":           task.Status,
				"quality_score":    task.QualityScore,
				"assigned_at":      task.AssignedAt,
				"started_at":       task.StartedAt,
				"completed_at":     task.CompletedAt,
				"rejection_reason": task.RejectionReason,
				"version":          task.Version,
				"updated_at":       task.UpdatedAt,
			})

		if result.Error != nil {
			task.Version = loadedVersion
			return result.Error
		}
		if result.RowsAffected == 0 {
			task.Version = loadedVersion
			return shared.ErrConcurrencyConflict
		}

		return saveFindings(tx, task)
	})
}

// saveFindings replaces the findings rows with the aggregate's current set
func saveFindings(tx *gorm.DB, task *verification.VerificationTask) error {
	currentIDs := make([]uuid.UUID, len(task.Findings))
	for i, f := range task.Findings {
		currentIDs[i] = f.ID
	}

	if len(currentIDs) > 0 {
		if err := tx.Where("task_id = ? AND id NOT IN ?", task.ID, currentIDs).
			Delete(&verification.Finding{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("task_id = ?", task.ID).
			Delete(&verification.Finding{}).Error; err != nil {
			return err
		}
	}

	for i := range task.Findings {
		task.Findings[i].TaskID = task.ID
		if err := tx.Save(&task.Findings[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Ensure GormVerificationTaskRepository implements TaskRepository
var _ verification.TaskRepository = (*GormVerificationTaskRepository)(nil)
