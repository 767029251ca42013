package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/platefull/platefull-api/internal/logger"
	"github.com/platefull/platefull-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserRepository is a repository for interacting with users and the
// subscription graph.
type UserRepository struct {
	DB *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// CreateUser creates a new user.
func (r *UserRepository) CreateUser(user *models.User) (*models.User, error) {
	if err := r.DB.Create(user).Error; err != nil {
		// Check for unique constraints
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			if strings.Contains(pgErr.Error(), "username") {
				return nil, NewConflictError("username already in use")
			} else if strings.Contains(pgErr.Error(), "email") {
				return nil, NewConflictError("email already in use")
			}
		}
		if isUniqueViolation(err) {
			return nil, NewConflictError("username or email already in use")
		}
		return nil, err
	}

	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := r.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("user not found")
		}
		return nil, err
	}

	return &user, nil
}

// GetUserByEmail retrieves a user by their email address, the login
// identifier.
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("user not found")
		}
		return nil, err
	}

	return &user, nil
}

// ListUsers returns a page of users ordered by ID, with the total count.
func (r *UserRepository) ListUsers(page, pageSize int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	if err := r.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.DB.Order("id ASC").
		Scopes(paginate(page, pageSize)).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// UsernameExists checks whether a username is already taken.
func (r *UserRepository) UsernameExists(username string) (bool, error) {
	var count int64
	err := r.DB.Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error
	return count > 0, err
}

// EmailExists checks whether an email is already registered.
func (r *UserRepository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.DB.Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

// CreateSubscription creates a follower edge from userID to authorID.
// A duplicate edge surfaces as a ConflictError even when two requests
// race, because the unique index catches what the existence check missed.
func (r *UserRepository) CreateSubscription(userID, authorID uint) error {
	sub := models.Subscription{UserID: userID, AuthorID: authorID}
	if err := r.DB.Create(&sub).Error; err != nil {
		if isUniqueViolation(err) {
			return NewConflictError("already subscribed to this user")
		}
		logger.Get().Error("failed to create subscription",
			zap.Uint("user_id", userID), zap.Uint("author_id", authorID), zap.Error(err))
		return err
	}
	return nil
}

// DeleteSubscription removes the follower edge from userID to authorID.
// Removing an edge that does not exist is an error, not a no-op.
func (r *UserRepository) DeleteSubscription(userID, authorID uint) error {
	// Hard delete: a soft-deleted edge would still occupy the unique index
	// and block re-subscribing.
	result := r.DB.Unscoped().
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError("subscription not found")
	}
	return nil
}

// IsSubscribed checks whether userID follows authorID.
func (r *UserRepository) IsSubscribed(userID, authorID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	return count > 0, err
}

// GetSubscribedAuthors returns a page of the authors the user follows,
// with the total count.
func (r *UserRepository) GetSubscribedAuthors(userID uint, page, pageSize int) ([]models.User, int64, error) {
	base := r.DB.Model(&models.User{}).
		Where("id IN (?)", r.DB.Model(&models.Subscription{}).
			Select("author_id").
			Where("user_id = ?", userID)).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	err := base.Order("id ASC").
		Scopes(paginate(page, pageSize)).
		Find(&authors).Error
	if err != nil {
		return nil, 0, err
	}

	return authors, total, nil
}
