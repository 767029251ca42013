package repository

import (
	"errors"

	"github.com/platefull/platefull-api/internal/models"
	"gorm.io/gorm"
)

// TagRepository is a repository for the tag catalog.
type TagRepository struct {
	DB *gorm.DB
}

// NewTagRepository creates a new TagRepository.
func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{DB: db}
}

// ListTags returns all tags ordered by ID.
func (r *TagRepository) ListTags() ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.DB.Order("id ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// GetTagByID retrieves a tag by its ID.
func (r *TagRepository) GetTagByID(tagID uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.DB.First(&tag, tagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("tag not found")
		}
		return nil, err
	}
	return &tag, nil
}

// GetTagsByIDs retrieves the tags for a list of IDs. Missing IDs are simply
// absent from the result; the caller compares lengths.
func (r *TagRepository) GetTagsByIDs(tagIDs []uint) ([]models.Tag, error) {
	var tags []models.Tag
	if len(tagIDs) == 0 {
		return tags, nil
	}
	if err := r.DB.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// FindOrCreateTag creates the tag unless one with the same name, slug and
// color already exists. It reports whether a row was created.
func (r *TagRepository) FindOrCreateTag(tag *models.Tag) (bool, error) {
	var existing models.Tag
	err := r.DB.Where("name = ? AND slug = ? AND color = ?", tag.Name, tag.Slug, tag.Color).
		First(&existing).Error
	if err == nil {
		*tag = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if err := r.DB.Create(tag).Error; err != nil {
		if isUniqueViolation(err) {
			return false, NewConflictError("tag name, color and slug must all be unique")
		}
		return false, err
	}
	return true, nil
}
