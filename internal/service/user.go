package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipe-app/backend/internal/apperr"
	"github.com/pageza/recipe-app/backend/internal/auth"
	"github.com/pageza/recipe-app/backend/internal/database"
	"github.com/pageza/recipe-app/backend/internal/models"
)

// Password length bounds accepted on create and update. bcrypt only hashes
// the first 72 bytes.
const (
	MinPasswordLength = 5
	MaxPasswordBytes  = 72
)

const msgBadCredentials = "unable to authenticate with provided credentials"

// UserFields carries the optional attributes set when creating a user.
type UserFields struct {
	Name string
}

// UserUpdate is a change to the authenticated user; nil fields are left
// untouched.
type UserUpdate struct {
	Email    *string
	Name     *string
	Password *string
}

// UserService manages accounts and credentials.
type UserService struct {
	db         *gorm.DB
	bcryptCost int
}

// NewUserService creates a UserService. A zero cost means bcrypt.DefaultCost.
func NewUserService(db *gorm.DB, bcryptCost int) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{db: db, bcryptCost: bcryptCost}
}

// CreateUser creates an active user with a normalized email and a hashed
// password. An empty email fails with a validation error and nothing is saved.
func (s *UserService) CreateUser(ctx context.Context, email, password string, extra UserFields) (*models.User, error) {
	return s.create(ctx, email, password, extra, false)
}

// CreateSuperuser creates a user with staff and superuser flags set.
func (s *UserService) CreateSuperuser(ctx context.Context, email, password string) (*models.User, error) {
	return s.create(ctx, email, password, UserFields{}, true)
}

func (s *UserService) create(ctx context.Context, email, password string, extra UserFields, super bool) (*models.User, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, apperr.FieldError("email", "users must have an email address")
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(extra.Name),
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      super,
		IsSuperuser:  super,
	}

	if taken, err := s.emailTaken(ctx, email, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, errEmailTaken()
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errEmailTaken()
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate checks credentials and returns the matching active user.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	fields := apperr.Fields{}
	if email == "" {
		fields["email"] = "is required"
	}
	if password == "" {
		fields["password"] = "is required"
	}
	if len(fields) > 0 {
		return nil, apperr.Validation("validation failed", fields)
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.FieldError(apperr.NonFieldErrors, msgBadCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !CheckPassword(&user, password) || !user.IsActive {
		return nil, apperr.FieldError(apperr.NonFieldErrors, msgBadCredentials)
	}
	return &user, nil
}

// GetUser loads a user by id.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// Principal resolves a user id to a principal; unknown or inactive users are
// unauthorized.
func (s *UserService) Principal(ctx context.Context, id uint) (auth.Principal, error) {
	user, err := s.GetUser(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return auth.Principal{}, apperr.Unauthorized("user not found")
	}
	if err != nil {
		return auth.Principal{}, err
	}
	if !user.IsActive {
		return auth.Principal{}, apperr.Unauthorized("user inactive or deleted")
	}
	return auth.FromUser(user), nil
}

// UpdateUser applies upd to the principal's own account.
func (s *UserService) UpdateUser(ctx context.Context, p auth.Principal, upd UserUpdate) (*models.User, error) {
	user, err := s.GetUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if upd.Email != nil {
		email := models.NormalizeEmail(*upd.Email)
		if email == "" {
			return nil, apperr.FieldError("email", "may not be blank")
		}
		if email != user.Email {
			taken, err := s.emailTaken(ctx, email, user.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, errEmailTaken()
			}
			changes["email"] = email
		}
	}
	if upd.Name != nil {
		changes["name"] = strings.TrimSpace(*upd.Name)
	}
	if upd.Password != nil {
		if err := checkPassword(*upd.Password); err != nil {
			return nil, err
		}
		hash, err := s.hash(*upd.Password)
		if err != nil {
			return nil, err
		}
		changes["password_hash"] = hash
	}

	if len(changes) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(changes).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return nil, errEmailTaken()
			}
			return nil, fmt.Errorf("update user: %w", err)
		}
	}
	return s.GetUser(ctx, user.ID)
}

// DeleteUser removes a user; their tags, ingredients and recipes go with it.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

// CheckPassword reports whether password matches the user's stored hash.
func CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

func (s *UserService) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *UserService) emailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return count > 0, nil
}

func checkPassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperr.FieldError("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordBytes {
		return apperr.FieldError("password", fmt.Sprintf("ensure this field has no more than %d bytes", MaxPasswordBytes))
	}
	return nil
}

func errEmailTaken() error {
	return apperr.FieldError("email", "user with this email already exists")
}
