package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	goaway "github.com/TwiN/go-away"
	"github.com/asaskevich/govalidator"
	"github.com/platefull/platefull-api/internal/config"
	"github.com/platefull/platefull-api/internal/models"
	"github.com/platefull/platefull-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// UserService is the business logic layer for user-related operations and
// the subscription graph.
type UserService struct {
	Cfg     *config.Config
	Repo    repository.UserRepo
	Recipes repository.RecipeRepo
}

// UserResponse is the response object for user-related operations.
// IsSubscribed is relative to the viewer making the request.
type UserResponse struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// SubscriptionResponse is a UserResponse extended with the author's recipes,
// returned by the subscription endpoints.
type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeShortResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

// NewUserService is the constructor function for initializing a new UserService
func NewUserService(cfg *config.Config, repo repository.UserRepo, recipes repository.RecipeRepo) *UserService {
	return &UserService{
		Cfg:     cfg,
		Repo:    repo,
		Recipes: recipes,
	}
}

// CreateUser creates a new user. The caller is expected to have validated
// the fields first.
func (s *UserService) CreateUser(email, username, firstName, lastName, password string) (*models.User, error) {
	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %v", err)
	}

	user := &models.User{
		Email:          email,
		Username:       username,
		FirstName:      firstName,
		LastName:       lastName,
		HashedPassword: string(hashedPassword),
	}

	user, err = s.Repo.CreateUser(user)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// LoginUser logs in a user. Email is the login identifier.
func (s *UserService) LoginUser(email, password string) (*models.User, error) {
	user, err := s.Repo.GetUserByEmail(email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	return user, nil
}

// GetUserByID gets a user by their ID.
func (s *UserService) GetUserByID(userID uint) (*models.User, error) {
	return s.Repo.GetUserByID(userID)
}

// BuildUserResponse converts a User to a UserResponse, resolving the
// subscription flag relative to the viewer. An anonymous viewer always sees
// is_subscribed false.
func (s *UserService) BuildUserResponse(viewer *models.User, user *models.User) (*UserResponse, error) {
	resp := &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}

	if viewer != nil && viewer.ID != user.ID {
		subscribed, err := s.Repo.IsSubscribed(viewer.ID, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check subscription: %w", err)
		}
		resp.IsSubscribed = subscribed
	}

	return resp, nil
}

// ListUsers returns a page of users with subscription flags resolved for
// the viewer, and the total count.
func (s *UserService) ListUsers(viewer *models.User, page, pageSize int) ([]UserResponse, int64, error) {
	users, total, err := s.Repo.ListUsers(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		resp, err := s.BuildUserResponse(viewer, &users[i])
		if err != nil {
			return nil, 0, err
		}
		responses = append(responses, *resp)
	}

	return responses, total, nil
}

// Subscribe creates a follower edge from user to the author and returns the
// author with their recipes. recipesLimit truncates the embedded recipe
// list; zero means no truncation.
func (s *UserService) Subscribe(user *models.User, authorID uint, recipesLimit int) (*SubscriptionResponse, error) {
	if user.ID == authorID {
		return nil, ErrSelfSubscription
	}

	author, err := s.Repo.GetUserByID(authorID)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.CreateSubscription(user.ID, authorID); err != nil {
		return nil, err
	}

	return s.buildSubscriptionResponse(author, recipesLimit)
}

// Unsubscribe removes the follower edge from user to the author.
// Unsubscribing from someone never followed is an error.
func (s *UserService) Unsubscribe(user *models.User, authorID uint) error {
	if _, err := s.Repo.GetUserByID(authorID); err != nil {
		return err
	}

	if err := s.Repo.DeleteSubscription(user.ID, authorID); err != nil {
		// The author exists, so a missing row can only mean the edge was
		// never there.
		var notFound repository.NotFoundError
		if errors.As(err, &notFound) {
			return ErrNotSubscribed
		}
		return err
	}

	return nil
}

// GetSubscriptions returns a page of the authors the user follows, each with
// their recipes embedded, and the total count.
func (s *UserService) GetSubscriptions(user *models.User, page, pageSize, recipesLimit int) ([]SubscriptionResponse, int64, error) {
	authors, total, err := s.Repo.GetSubscribedAuthors(user.ID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get subscriptions: %w", err)
	}

	responses := make([]SubscriptionResponse, 0, len(authors))
	for i := range authors {
		resp, err := s.buildSubscriptionResponse(&authors[i], recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		responses = append(responses, *resp)
	}

	return responses, total, nil
}

// buildSubscriptionResponse builds the author response with embedded
// recipes. The author is by construction subscribed-to by the caller.
func (s *UserService) buildSubscriptionResponse(author *models.User, recipesLimit int) (*SubscriptionResponse, error) {
	recipes, err := s.Recipes.GetAuthorRecipes(author.ID, recipesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get author recipes: %w", err)
	}

	count, err := s.Recipes.CountAuthorRecipes(author.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count author recipes: %w", err)
	}

	shorts := make([]RecipeShortResponse, 0, len(recipes))
	for i := range recipes {
		shorts = append(shorts, toRecipeShortResponse(&recipes[i]))
	}

	return &SubscriptionResponse{
		UserResponse: UserResponse{
			ID:           author.ID,
			Email:        author.Email,
			Username:     author.Username,
			FirstName:    author.FirstName,
			LastName:     author.LastName,
			IsSubscribed: true,
		},
		Recipes:      shorts,
		RecipesCount: count,
	}, nil
}

// ValidateUsername validates a username against a set of rules.
func (s *UserService) ValidateUsername(username string) error {
	// Check if the username already exists.
	// This is also caught as a known error in the repository.
	exists, err := s.Repo.UsernameExists(username)
	if err != nil {
		return fmt.Errorf("error checking username: %v", err)
	}
	if exists {
		return fmt.Errorf("username is already taken")
	}

	// Check if the username is long enough
	minLength := 3
	if len(username) < minLength {
		return fmt.Errorf("username must be at least %d characters", minLength)
	}
	if len(username) > 150 {
		return fmt.Errorf("username must be at most 150 characters")
	}

	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters, digits and @/./+/-/_ characters")
	}

	// Check if the username is in the forbidden list
	lowercaseUsername := strings.ToLower(username)
	for _, forbiddenUsername := range forbiddenUsernames {
		if strings.EqualFold(lowercaseUsername, forbiddenUsername) {
			return fmt.Errorf("username '%s' is not allowed", username)
		}
	}

	// Profanity check
	profanityDetector := goaway.NewProfanityDetector().WithSanitizeLeetSpeak(true).WithSanitizeSpecialCharacters(true).WithSanitizeAccents(false)
	if profanityDetector.IsProfane(username) {
		return fmt.Errorf("username contains inappropriate language")
	}

	// If we've passed all checks, the username is valid.
	return nil
}

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// forbiddenUsernames are reserved names that would collide with routes or
// impersonate the service.
var forbiddenUsernames = []string{
	"admin",
	"administrator",
	"root",
	"sys",
	"sysadmin",
	"system",
	"test",
	"testuser",
	"test-user",
	"test_user",
	"login",
	"logout",
	"register",
	"password",
	"user",
	"newuser",
	"me",
	"support",
	"help",
	"faq",
	"platefull",
	"platefull_admin",
	"platefull-admin",
	"platefull_root",
	"platefull-root",
}

// ValidateEmail validates an email address against a set of rules.
func (s *UserService) ValidateEmail(email string) error {
	if !govalidator.IsEmail(email) {
		return fmt.Errorf("invalid email format")
	}
	if len(email) > 254 {
		return fmt.Errorf("email must be at most 254 characters")
	}
	return nil
}

// ValidatePassword validates a password against a set of rules.
func (s *UserService) ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	hasUppercase, _ := regexp.MatchString(`[A-Z]`, password)
	if !hasUppercase {
		return errors.New("password must contain at least one uppercase letter")
	}
	hasLowercase, _ := regexp.MatchString(`[a-z]`, password)
	if !hasLowercase {
		return errors.New("password must contain at least one lowercase letter")
	}
	hasNumber, _ := regexp.MatchString(`\d`, password)
	if !hasNumber {
		return errors.New("password must contain at least one digit")
	}
	return nil
}
