package service

// ValidationError is a recoverable input error: the caller corrects the
// input and retries. Code is a stable machine-readable identifier, Message
// is the human-readable text returned to the client.
type ValidationError struct {
	Code    string
	Message string
}

// Error returns the error message.
func (e ValidationError) Error() string {
	return e.Message
}

// Recipe write validation failures, in the order they are checked.
var (
	ErrMissingImage        = ValidationError{Code: "no_image", Message: "image is required"}
	ErrInvalidImage        = ValidationError{Code: "invalid_image", Message: "image payload could not be decoded"}
	ErrNoIngredients       = ValidationError{Code: "no_ingredients", Message: "recipe must contain at least 1 ingredient"}
	ErrUnknownIngredient   = ValidationError{Code: "ingredient_doesnt_exist", Message: "this ingredient does not exist"}
	ErrDuplicateIngredient = ValidationError{Code: "unique_ingredients", Message: "ingredients of the recipe must be unique"}
	ErrInvalidAmount       = ValidationError{Code: "invalid_amount", Message: "invalid ingredient amount"}
	ErrNoTags              = ValidationError{Code: "no_tags", Message: "recipe must contain at least 1 tag"}
	ErrDuplicateTag        = ValidationError{Code: "unique_tags", Message: "recipe tags must be unique"}
	ErrUnknownTag          = ValidationError{Code: "incorrect_tag", Message: "incorrect tag is provided"}
	ErrInvalidCookingTime  = ValidationError{Code: "invalid_cooking_time", Message: "cooking time must be between 1 and 1440 minutes"}
)

// Relation-graph validation failures. Removing an edge that does not exist
// is reported as a validation error, not a missing resource: the recipe or
// author itself was found.
var (
	ErrSelfSubscription = ValidationError{Code: "subscribe_to_self", Message: "you cannot subscribe to yourself"}
	ErrNotSubscribed    = ValidationError{Code: "not_subscribed", Message: "you are not subscribed to this user"}
	ErrRecipeNotInList  = ValidationError{Code: "not_in_list", Message: "recipe is not in the list"}
)

// PermissionError is returned when an authenticated user attempts an
// operation on a resource they do not own.
type PermissionError struct {
	Message string
}

// Error returns the error message.
func (e PermissionError) Error() string {
	return e.Message
}

// ErrNotRecipeAuthor is returned when a non-author, non-staff user tries to
// modify or delete a recipe.
var ErrNotRecipeAuthor = PermissionError{Message: "you can only modify your own recipes"}
