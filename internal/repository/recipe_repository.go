package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recipebox/internal/model"
)

// RecipeRepository defines recipe persistence operations, all scoped to the
// owning user.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *model.Recipe) error
	Update(ctx context.Context, recipe *model.Recipe) error
	FindByOwnerAndID(ctx context.Context, ownerID, id uint) (*model.Recipe, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]model.Recipe, error)
	Delete(ctx context.Context, recipe *model.Recipe) error
	ReplaceTags(ctx context.Context, recipe *model.Recipe, tags []model.Tag) error
	// WithTransaction runs fn against transaction-scoped recipe and tag
	// repositories so a recipe and its tag associations persist atomically.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, recipes RecipeRepository, tags TagRepository) error) error
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository builds a GORM-backed repository.
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// Create persists a new recipe row. Tag associations are written separately
// via ReplaceTags.
func (r *recipeRepository) Create(ctx context.Context, recipe *model.Recipe) error {
	return r.db.WithContext(ctx).Omit("Tags").Create(recipe).Error
}

// Update overwrites the recipe's scalar fields. UserID is never written, so
// the owner set at creation is immutable here.
func (r *recipeRepository) Update(ctx context.Context, recipe *model.Recipe) error {
	return r.db.WithContext(ctx).Model(recipe).
		Updates(map[string]interface{}{
			"title":        recipe.Title,
			"description":  recipe.Description,
			"time_minutes": recipe.TimeMinutes,
			"price":        recipe.Price,
			"link":         recipe.Link,
		}).Error
}

func (r *recipeRepository) FindByOwnerAndID(ctx context.Context, ownerID, id uint) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := r.db.WithContext(ctx).Preload("Tags").
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ListByOwner returns the owner's recipes newest first.
func (r *recipeRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.Recipe, error) {
	var recipes []model.Recipe
	if err := r.db.WithContext(ctx).Preload("Tags").
		Where("user_id = ?", ownerID).
		Order("id DESC").
		Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// Delete removes the recipe together with its tag associations.
func (r *recipeRepository) Delete(ctx context.Context, recipe *model.Recipe) error {
	return r.db.WithContext(ctx).Select(clause.Associations).Delete(recipe).Error
}

// ReplaceTags swaps the recipe's tag set for tags.
func (r *recipeRepository) ReplaceTags(ctx context.Context, recipe *model.Recipe, tags []model.Tag) error {
	if err := r.db.WithContext(ctx).Model(recipe).
		Association("Tags").Replace(tags); err != nil {
		return err
	}
	recipe.Tags = tags
	return nil
}

func (r *recipeRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, recipes RecipeRepository, tags TagRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &recipeRepository{db: tx}, &tagRepository{db: tx})
	})
}
