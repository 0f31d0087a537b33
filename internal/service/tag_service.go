package service

import (
	"context"

	"gorm.io/gorm"

	"recipebox/internal/errors"
	"recipebox/internal/model"
	"recipebox/internal/repository"
)

// TagService exposes tag operations scoped to the calling user.
type TagService interface {
	List(ctx context.Context, ownerID uint) ([]model.Tag, error)
	Update(ctx context.Context, ownerID, id uint, name string) (*model.Tag, error)
	Delete(ctx context.Context, ownerID, id uint) error
}

type tagService struct {
	tagRepo repository.TagRepository
	cache   Cache
}

// NewTagService builds a TagService. Tag mutations drop the owner's cached
// recipe details, since those embed tag names.
func NewTagService(tagRepo repository.TagRepository, cache Cache) TagService {
	return &tagService{tagRepo: tagRepo, cache: cache}
}

func (s *tagService) List(ctx context.Context, ownerID uint) ([]model.Tag, error) {
	return s.tagRepo.ListByOwner(ctx, ownerID)
}

func (s *tagService) Update(ctx context.Context, ownerID, id uint, name string) (*model.Tag, error) {
	tag, err := s.tagRepo.FindByOwnerAndID(ctx, ownerID, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrTagNotFound
		}
		return nil, err
	}
	tag.Name = name
	if err := s.tagRepo.Update(ctx, tag); err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, errors.ErrTagNameTaken
		}
		return nil, err
	}
	s.invalidateRecipes(ctx, ownerID)
	return tag, nil
}

func (s *tagService) Delete(ctx context.Context, ownerID, id uint) error {
	tag, err := s.tagRepo.FindByOwnerAndID(ctx, ownerID, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrTagNotFound
		}
		return err
	}
	if err := s.tagRepo.Delete(ctx, tag); err != nil {
		return err
	}
	s.invalidateRecipes(ctx, ownerID)
	return nil
}

func (s *tagService) invalidateRecipes(ctx context.Context, ownerID uint) {
	if s.cache != nil {
		_ = s.cache.DeleteByPrefix(ctx, recipeCachePrefix(ownerID))
	}
}
