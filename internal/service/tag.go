package service

import (
	"fmt"

	"github.com/platefull/platefull-api/internal/config"
	"github.com/platefull/platefull-api/internal/models"
	"github.com/platefull/platefull-api/internal/repository"
)

// TagService is the read-only business logic layer for the tag catalog.
type TagService struct {
	Cfg  *config.Config
	Repo repository.TagRepo
}

// NewTagService is the constructor function for initializing a new TagService.
func NewTagService(cfg *config.Config, repo repository.TagRepo) *TagService {
	return &TagService{
		Cfg:  cfg,
		Repo: repo,
	}
}

// ListTags returns every tag in the catalog.
func (s *TagService) ListTags() ([]TagResponse, error) {
	tags, err := s.Repo.ListTags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return toTagResponses(tags), nil
}

// GetTagByID fetches a tag by its ID.
func (s *TagService) GetTagByID(tagID uint) (*TagResponse, error) {
	tag, err := s.Repo.GetTagByID(tagID)
	if err != nil {
		return nil, err
	}
	return &TagResponse{ID: tag.ID, Name: tag.Name, Color: tag.Color, Slug: tag.Slug}, nil
}

func toTagResponses(tags []models.Tag) []TagResponse {
	responses := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		responses = append(responses, TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug})
	}
	return responses
}
