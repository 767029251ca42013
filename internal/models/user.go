package models

import (
	"errors"

	"gorm.io/gorm"
)

// User is the model for a user. Email is the login identifier.
type User struct {
	gorm.Model
	Email          string `gorm:"unique;index;size:254"`
	Username       string `gorm:"unique;index;size:150"`
	FirstName      string `gorm:"size:150"`
	LastName       string `gorm:"size:150"`
	HashedPassword string `json:"-"`
	IsStaff        bool   `gorm:"default:false"`
}

// Subscription is the model for a follower edge between two users.
// UserID is the follower, AuthorID is the followee.
type Subscription struct {
	gorm.Model
	UserID   uint  `gorm:"uniqueIndex:idx_subscription_user_author;not null"`
	User     *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	AuthorID uint  `gorm:"uniqueIndex:idx_subscription_user_author;not null;check:chk_no_self_subscription,user_id <> author_id"`
	Author   *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate is a GORM hook that runs before creating a new Subscription.
// The check constraint enforces the same rule, this just fails earlier.
func (s *Subscription) BeforeCreate(tx *gorm.DB) (err error) {
	if s.UserID == s.AuthorID {
		return errors.New("users cannot subscribe to themselves")
	}

	return nil
}
