package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recipebox/internal/model"
)

// TagRepository defines tag persistence operations. Every query is scoped
// to the owning user; a tag owned by someone else is indistinguishable
// from an absent one.
type TagRepository interface {
	GetOrCreate(ctx context.Context, ownerID uint, name string) (*model.Tag, error)
	FindByOwnerAndID(ctx context.Context, ownerID, id uint) (*model.Tag, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]model.Tag, error)
	Update(ctx context.Context, tag *model.Tag) error
	Delete(ctx context.Context, tag *model.Tag) error
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository builds a GORM-backed repository.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// GetOrCreate returns the tag named name owned by ownerID, creating it if
// absent. The insert is conflict-tolerant against idx_tags_user_name, so
// concurrent calls with the same arguments never produce duplicates.
func (r *tagRepository) GetOrCreate(ctx context.Context, ownerID uint, name string) (*model.Tag, error) {
	tag := model.Tag{UserID: ownerID, Name: name}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&tag).Error; err != nil {
		return nil, err
	}

	// Read back with a locking read: under REPEATABLE READ a plain SELECT
	// can miss a row committed after this transaction's snapshot, which is
	// exactly the row the insert just conflicted with.
	var existing model.Tag
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND name = ?", ownerID, name).
		First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *tagRepository) FindByOwnerAndID(ctx context.Context, ownerID, id uint) (*model.Tag, error) {
	var tag model.Tag
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// ListByOwner returns the owner's tags ordered by name descending.
func (r *tagRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.Tag, error) {
	var tags []model.Tag
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("name DESC").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *tagRepository) Update(ctx context.Context, tag *model.Tag) error {
	return r.db.WithContext(ctx).Model(tag).Update("name", tag.Name).Error
}

// Delete removes a tag and its recipe associations. Recipes themselves are
// untouched.
func (r *tagRepository) Delete(ctx context.Context, tag *model.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM recipe_tags WHERE tag_id = ?", tag.ID).Error; err != nil {
			return err
		}
		return tx.Delete(tag).Error
	})
}
