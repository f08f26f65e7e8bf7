package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/polinaozhigova/eqmon-be/internal/database"
	"github.com/polinaozhigova/eqmon-be/internal/models"
	"github.com/rs/zerolog/log"
)

// validate checks individual request fields, most importantly email syntax.
var validate = validator.New()

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByEmail(email string) (models.User, error)
	CreateUser(email string) (models.User, error)
	FindOrCreateUser(email string) (models.User, error)
}

// UserService provides business logic for user management.
type UserService struct {
	db       *sql.DB
	eventSvc EventServiceProvider
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, eventSvc EventServiceProvider) *UserService {
	return &UserService{db: db, eventSvc: eventSvc}
}

// GetUserByEmail retrieves a single user by their email. The match is exact;
// a miss is reported as ErrNotFound.
func (s *UserService) GetUserByEmail(email string) (models.User, error) {
	return getUserByEmail(s.db, email)
}

// CreateUser registers a new user. The email must be syntactically valid and
// not yet taken; a duplicate is reported as ErrConflict.
func (s *UserService) CreateUser(email string) (models.User, error) {
	if err := validate.Var(email, "required,email"); err != nil {
		return models.User{}, fmt.Errorf("%w: invalid email %q", ErrValidation, email)
	}

	user, err := createUser(s.db, email)
	if err != nil {
		return models.User{}, err
	}

	if s.eventSvc != nil {
		if evErr := s.eventSvc.Record("user.created", "info", fmt.Sprintf("User %s registered.", user.Email), nil); evErr != nil {
			log.Warn().Err(evErr).Str("email", user.Email).Msg("Failed to record user event")
		}
	}
	return user, nil
}

// FindOrCreateUser looks a user up by email and registers one on a miss.
// A create that collides with a concurrent insert is treated as "someone
// else just created it" and resolved by re-fetching the row, so the caller
// never sees a conflict.
func (s *UserService) FindOrCreateUser(email string) (models.User, error) {
	return findOrCreateUser(s.db, email)
}

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so the
// user lookups below can run standalone or inside an upload transaction.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

func getUserByEmail(q querier, email string) (models.User, error) {
	var user models.User
	row := q.QueryRow("SELECT id, email, created_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, fmt.Errorf("%w: user with email %s", ErrNotFound, email)
		}
		return models.User{}, err
	}
	return user, nil
}

func createUser(q querier, email string) (models.User, error) {
	res, err := q.Exec("INSERT INTO users(email) VALUES(?)", email)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.User{}, fmt.Errorf("%w: user with email %s already exists", ErrConflict, email)
		}
		return models.User{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	return getUserByID(q, id)
}

func getUserByID(q querier, id int64) (models.User, error) {
	var user models.User
	row := q.QueryRow("SELECT id, email, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, fmt.Errorf("%w: user with id %d", ErrNotFound, id)
		}
		return models.User{}, err
	}
	return user, nil
}

func findOrCreateUser(q querier, email string) (models.User, error) {
	user, err := getUserByEmail(q, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.User{}, err
	}

	user, err = createUser(q, email)
	if err == nil {
		return user, nil
	}
	if errors.Is(err, ErrConflict) {
		// Lost a race with a concurrent insert; the row exists now.
		return getUserByEmail(q, email)
	}
	return models.User{}, err
}
