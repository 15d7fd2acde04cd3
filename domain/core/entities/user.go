package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"mathtree-backend/domain/events"
	pkgerrors "mathtree-backend/pkg/errors"
)

// User is a registered account. Only the bcrypt hash of the password ever
// reaches this entity; hashing and comparison live in pkg/auth.
type User struct {
	id           string
	email        string
	displayName  string
	passwordHash string
	createdAt    time.Time

	events []events.DomainEvent
}

// NewUser creates a new user account from an already-hashed password.
func NewUser(email, displayName, passwordHash string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, pkgerrors.NewValidationError("email cannot be empty")
	}
	if passwordHash == "" {
		return nil, pkgerrors.NewValidationError("password hash cannot be empty")
	}
	if displayName == "" {
		displayName = email[:strings.Index(email+"@", "@")]
	}

	now := time.Now().UTC()
	user := &User{
		id:           uuid.New().String(),
		email:        email,
		displayName:  displayName,
		passwordHash: passwordHash,
		createdAt:    now,
		events:       []events.DomainEvent{},
	}

	user.addEvent(events.NewUserRegistered(user.id, email, now))

	return user, nil
}

// ReconstructUser rebuilds a user from repository data
func ReconstructUser(id, email, displayName, passwordHash string, createdAt time.Time) (*User, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("user ID cannot be empty")
	}
	if email == "" {
		return nil, pkgerrors.NewValidationError("email cannot be empty")
	}

	return &User{
		id:           id,
		email:        email,
		displayName:  displayName,
		passwordHash: passwordHash,
		createdAt:    createdAt,
		events:       []events.DomainEvent{},
	}, nil
}

// ID returns the user's unique identifier
func (u *User) ID() string {
	return u.id
}

// Email returns the user's email address (lowercased)
func (u *User) Email() string {
	return u.email
}

// DisplayName returns the user's display name
func (u *User) DisplayName() string {
	return u.displayName
}

// PasswordHash returns the stored bcrypt hash
func (u *User) PasswordHash() string {
	return u.passwordHash
}

// CreatedAt returns when the account was created
func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

// GetUncommittedEvents returns all uncommitted domain events
func (u *User) GetUncommittedEvents() []events.DomainEvent {
	return u.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (u *User) MarkEventsAsCommitted() {
	u.events = []events.DomainEvent{}
}

func (u *User) addEvent(event events.DomainEvent) {
	u.events = append(u.events, event)
}
