package domain

// Kind classifies a domain failure. The HTTP boundary maps each kind to a
// status code; nothing below the boundary knows about HTTP.
type Kind int

const (
	KindInternal Kind = iota
	KindFieldRequired
	KindFormatInvalid
	KindDuplicate
	KindAuthenticationInvalid
	KindTokenInvalid
	KindCredentialsInvalid
	KindNotFound
	KindInsufficientFunds
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindFieldRequired:
		return "field_required"
	case KindFormatInvalid:
		return "format_invalid"
	case KindDuplicate:
		return "duplicate"
	case KindAuthenticationInvalid:
		return "authentication_invalid"
	case KindTokenInvalid:
		return "token_invalid"
	case KindCredentialsInvalid:
		return "credentials_invalid"
	case KindNotFound:
		return "not_found"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a typed domain failure. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Registration and login.
var (
	ErrFullnameRequired      = newError(KindFieldRequired, "fullname is required")
	ErrUsernameRequired      = newError(KindFieldRequired, "username is required")
	ErrEmailRequired         = newError(KindFieldRequired, "email is required")
	ErrPasswordRequired      = newError(KindFieldRequired, "password is required")
	ErrProfileImageRequired  = newError(KindFieldRequired, "profile image is required")
	ErrPasswordLengthInvalid = newError(KindFormatInvalid, "password length is invalid")
	ErrEmailFormatInvalid    = newError(KindFormatInvalid, "email format is invalid")
	ErrUserAlreadyRegistered = newError(KindDuplicate, "user already registered")
	ErrEmailNotRegistered    = newError(KindNotFound, "email not registered")
	ErrPasswordInvalid       = newError(KindCredentialsInvalid, "password invalid")
)

// Authentication gate.
var (
	ErrAuthenticationInvalid = newError(KindAuthenticationInvalid, "authentication invalid")
	ErrTokenInvalid          = newError(KindTokenInvalid, "token invalid")
)

// Ledger.
var (
	ErrAmountRequired      = newError(KindFieldRequired, "amount is required")
	ErrAmountInvalid       = newError(KindFormatInvalid, "amount is invalid")
	ErrTargetUserRequired  = newError(KindFieldRequired, "user not found")
	ErrSelfDonation        = newError(KindFormatInvalid, "cannot donate to yourself")
	ErrInsufficientBalance = newError(KindInsufficientFunds, "insufficient balance")
	ErrUserNotFound        = newError(KindNotFound, "user not found")

	ErrIdempotencyKeyReused     = newError(KindConflict, "idempotency key was used for a different request")
	ErrIdempotencyKeyInProgress = newError(KindConflict, "request with this idempotency key is still in progress")
)

// Recipes and posts.
var (
	ErrRecipeNameRequired         = newError(KindFieldRequired, "name is required")
	ErrRecipeIngredientsRequired  = newError(KindFieldRequired, "ingredients is required")
	ErrRecipeInstructionsRequired = newError(KindFieldRequired, "instructions is required")
	ErrRecipeImageRequired        = newError(KindFieldRequired, "recipe image is required")
	ErrRecipeNotFound             = newError(KindNotFound, "recipe not found")
	ErrPostImageRequired          = newError(KindFieldRequired, "post image is required")
	ErrImageAlreadyAttached       = newError(KindConflict, "image already attached")
)
