package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"recipebox/internal/errors"
	"recipebox/internal/model"
	"recipebox/internal/repository"
)

const recipeCacheTTL = 5 * time.Minute

// RecipeInput carries the full field set for create and full-replace
// operations. A nil Tags pointer means the tags key was absent: the tag
// set is left untouched on replace and empty on create. A non-nil pointer
// replaces the whole set, even when empty.
type RecipeInput struct {
	Title       string
	Description string
	TimeMinutes int
	Price       decimal.Decimal
	Link        string
	Tags        *[]string
}

// RecipePatch carries a partial update. Nil fields are left untouched;
// a non-nil Tags pointer replaces the entire tag set, even when empty.
type RecipePatch struct {
	Title       *string
	Description *string
	TimeMinutes *int
	Price       *decimal.Decimal
	Link        *string
	Tags        *[]string
}

// RecipeService exposes recipe operations scoped to the calling user. The
// owner is always the authenticated caller; it is set once at creation and
// never taken from request payloads.
type RecipeService interface {
	Create(ctx context.Context, ownerID uint, in RecipeInput) (*model.Recipe, error)
	List(ctx context.Context, ownerID uint) ([]model.Recipe, error)
	Get(ctx context.Context, ownerID, id uint) (*model.Recipe, error)
	Replace(ctx context.Context, ownerID, id uint, in RecipeInput) (*model.Recipe, error)
	Patch(ctx context.Context, ownerID, id uint, p RecipePatch) (*model.Recipe, error)
	Delete(ctx context.Context, ownerID, id uint) error
}

// Cache is the subset of the cache client the services use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

type recipeService struct {
	recipeRepo repository.RecipeRepository
	cache      Cache
}

// NewRecipeService builds a RecipeService with repository and cache.
func NewRecipeService(recipeRepo repository.RecipeRepository, cache Cache) RecipeService {
	return &recipeService{recipeRepo: recipeRepo, cache: cache}
}

func recipeCachePrefix(ownerID uint) string {
	return fmt.Sprintf("recipe:%d:", ownerID)
}

func recipeCacheKey(ownerID, id uint) string {
	return fmt.Sprintf("%s%d", recipeCachePrefix(ownerID), id)
}

// resolveTags maps tag names to owned tags, creating missing ones. The
// owner is the authenticated caller, never the recipe's nominal owner.
func resolveTags(ctx context.Context, tags repository.TagRepository, ownerID uint, names []string) ([]model.Tag, error) {
	resolved := make([]model.Tag, 0, len(names))
	for _, name := range names {
		tag, err := tags.GetOrCreate(ctx, ownerID, name)
		if err != nil {
			return nil, fmt.Errorf("resolve tag %q: %w", name, err)
		}
		resolved = append(resolved, *tag)
	}
	return resolved, nil
}

// Create persists a recipe and its tag associations atomically.
func (s *recipeService) Create(ctx context.Context, ownerID uint, in RecipeInput) (*model.Recipe, error) {
	var created *model.Recipe
	err := s.recipeRepo.WithTransaction(ctx, func(ctx context.Context, recipes repository.RecipeRepository, tags repository.TagRepository) error {
		recipe := &model.Recipe{
			UserID:      ownerID,
			Title:       in.Title,
			Description: in.Description,
			TimeMinutes: in.TimeMinutes,
			Price:       in.Price,
			Link:        in.Link,
		}
		if err := recipes.Create(ctx, recipe); err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		if in.Tags != nil {
			resolved, err := resolveTags(ctx, tags, ownerID, *in.Tags)
			if err != nil {
				return err
			}
			if err := recipes.ReplaceTags(ctx, recipe, resolved); err != nil {
				return fmt.Errorf("attach tags: %w", err)
			}
		}
		created = recipe
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *recipeService) List(ctx context.Context, ownerID uint) ([]model.Recipe, error) {
	return s.recipeRepo.ListByOwner(ctx, ownerID)
}

func (s *recipeService) Get(ctx context.Context, ownerID, id uint) (*model.Recipe, error) {
	if s.cache != nil {
		if data, _ := s.cache.Get(ctx, recipeCacheKey(ownerID, id)); data != nil {
			var cached model.Recipe
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	recipe, err := s.recipeRepo.FindByOwnerAndID(ctx, ownerID, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrRecipeNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(recipe); err == nil {
			_ = s.cache.Set(ctx, recipeCacheKey(ownerID, id), payload, recipeCacheTTL)
		}
	}
	return recipe, nil
}

func (s *recipeService) invalidate(ctx context.Context, ownerID, id uint) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, recipeCacheKey(ownerID, id))
	}
}

// Replace applies full-update semantics: every scalar field is
// overwritten. The tag set is replaced only when the tags key was present
// in the request; an absent key leaves the associations alone.
func (s *recipeService) Replace(ctx context.Context, ownerID, id uint, in RecipeInput) (*model.Recipe, error) {
	var updated *model.Recipe
	err := s.recipeRepo.WithTransaction(ctx, func(ctx context.Context, recipes repository.RecipeRepository, tags repository.TagRepository) error {
		recipe, err := recipes.FindByOwnerAndID(ctx, ownerID, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrRecipeNotFound
			}
			return err
		}

		recipe.Title = in.Title
		recipe.Description = in.Description
		recipe.TimeMinutes = in.TimeMinutes
		recipe.Price = in.Price
		recipe.Link = in.Link
		if err := recipes.Update(ctx, recipe); err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}

		if in.Tags != nil {
			resolved, err := resolveTags(ctx, tags, ownerID, *in.Tags)
			if err != nil {
				return err
			}
			if err := recipes.ReplaceTags(ctx, recipe, resolved); err != nil {
				return fmt.Errorf("replace tags: %w", err)
			}
		}
		updated = recipe
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID, id)
	return updated, nil
}

// Patch applies partial-update semantics: only non-nil fields change. The
// tag set is replaced only when the tags key was present in the request.
func (s *recipeService) Patch(ctx context.Context, ownerID, id uint, p RecipePatch) (*model.Recipe, error) {
	var updated *model.Recipe
	err := s.recipeRepo.WithTransaction(ctx, func(ctx context.Context, recipes repository.RecipeRepository, tags repository.TagRepository) error {
		recipe, err := recipes.FindByOwnerAndID(ctx, ownerID, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrRecipeNotFound
			}
			return err
		}

		if p.Title != nil {
			recipe.Title = *p.Title
		}
		if p.Description != nil {
			recipe.Description = *p.Description
		}
		if p.TimeMinutes != nil {
			recipe.TimeMinutes = *p.TimeMinutes
		}
		if p.Price != nil {
			recipe.Price = *p.Price
		}
		if p.Link != nil {
			recipe.Link = *p.Link
		}
		if err := recipes.Update(ctx, recipe); err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}

		if p.Tags != nil {
			resolved, err := resolveTags(ctx, tags, ownerID, *p.Tags)
			if err != nil {
				return err
			}
			if err := recipes.ReplaceTags(ctx, recipe, resolved); err != nil {
				return fmt.Errorf("replace tags: %w", err)
			}
		}
		updated = recipe
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID, id)
	return updated, nil
}

func (s *recipeService) Delete(ctx context.Context, ownerID, id uint) error {
	recipe, err := s.recipeRepo.FindByOwnerAndID(ctx, ownerID, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrRecipeNotFound
		}
		return err
	}
	if err := s.recipeRepo.Delete(ctx, recipe); err != nil {
		return err
	}
	s.invalidate(ctx, ownerID, id)
	return nil
}
