package services

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/MediExpress/auth_service/internal/domain"
	"github.com/MediExpress/auth_service/internal/dto"
	"github.com/MediExpress/auth_service/internal/helper"
	"github.com/MediExpress/auth_service/internal/helper/utils"
	"github.com/MediExpress/auth_service/internal/interfaces"
	"github.com/MediExpress/auth_service/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(input dto.RegisterRequest) (*domain.User, string, error)
	Login(input dto.UserLogin) (*domain.User, string, error)
	GoogleLogin(input dto.GoogleLoginRequest) (*domain.User, string, error)
	ForgotPassword(email string) error
	ResetPassword(input dto.ResetPasswordRequest) error
	Logout(tokenID string) error
	RefreshToken(userID uint, email, tokenID string) (string, error)
	GetProfile(userID uint) (*domain.User, error)
}

type authService struct {
	repo   repository.UserRepository
	tokens repository.TokenRepository
	auth   helper.Auth

	// messaging
	producer interfaces.ProducerHandler
}

func NewAuthService(
	repo repository.UserRepository,
	tokens repository.TokenRepository,
	producer interfaces.ProducerHandler,
	auth helper.Auth,
) AuthService {
	return &authService{
		repo:     repo,
		tokens:   tokens,
		producer: producer,
		auth:     auth,
	}
}

func (u *authService) Register(input dto.RegisterRequest) (*domain.User, string, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)

	// duplicate email pre-check; the unique index still backstops races
	existing, err := u.repo.FindUserByEmail(email)
	if err == nil && existing != nil && existing.ID != 0 {
		return nil, "", emailTakenError()
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", errors.New("failed to hash password")
	}

	var phone *string
	if input.Phone != nil && strings.TrimSpace(*input.Phone) != "" {
		p := strings.TrimSpace(*input.Phone)
		phone = &p
	}

	newUser := &domain.User{
		Name:         firstName + " " + lastName,
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Phone:        phone,
	}

	usr, err := u.repo.CreateUser(newUser)
	if err != nil {
		if helper.IsDuplicateEmail(err) {
			return nil, "", emailTakenError()
		}
		return nil, "", errors.New("failed to create user")
	}
	if usr == nil || usr.ID == 0 {
		return nil, "", errors.New("failed to create user")
	}

	token, err := u.issueToken(usr)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

func (u *authService) Login(input dto.UserLogin) (*domain.User, string, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)

	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := u.repo.FindUserByEmail(email)
	if err != nil || user == nil || user.ID == 0 {
		return nil, "", ErrInvalidCredentials
	}

	if err := u.auth.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	// prior tokens stay valid; concurrent sessions are allowed
	token, err := u.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (u *authService) GoogleLogin(input dto.GoogleLoginRequest) (*domain.User, string, error) {
	// the id token is trusted as-is after shape validation; verification
	// against Google's certs is not wired yet
	info := input.UserInfo
	email := strings.TrimSpace(strings.ToLower(info.Email))

	user, err := u.repo.FindUserByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	if user == nil || user.ID == 0 {
		// first federated login creates the account with an unusable
		// random password; email counts as verified by the provider
		random, err := utils.RandomToken(24)
		if err != nil {
			return nil, "", errors.New("failed to generate password")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(random), bcrypt.DefaultCost)
		if err != nil {
			return nil, "", errors.New("failed to hash password")
		}

		now := time.Now()
		var googleID *string
		if info.ID != "" {
			id := info.ID
			googleID = &id
		}

		user = &domain.User{
			Name:            info.GivenName + " " + info.FamilyName,
			FirstName:       info.GivenName,
			LastName:        info.FamilyName,
			Email:           email,
			PasswordHash:    string(hashed),
			EmailVerifiedAt: &now,
			GoogleID:        googleID,
		}

		user, err = u.repo.CreateUser(user)
		if err != nil {
			return nil, "", errors.New("failed to create user")
		}
	}

	token, err := u.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (u *authService) ForgotPassword(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := u.repo.FindUserByEmail(email)
	if err != nil || user == nil || user.ID == 0 {
		return ErrEmailNotFound
	}

	plain, err := utils.RandomToken(32)
	if err != nil {
		return errors.New("failed to generate reset token")
	}

	hash := utils.Sha256Hex(plain)
	exp := time.Now().Add(30 * time.Minute)

	user.ResetTokenHash = hash
	user.ResetTokenExpiresAt = &exp
	if err := u.repo.SaveUser(user); err != nil {
		return errors.New("failed to save user")
	}

	if u.producer == nil {
		return ErrResetDispatch
	}

	payload, err := json.Marshal(dto.ResetPasswordEvent{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     plain,
		ExpiresAt: exp.Format(time.RFC3339),
	})
	if err != nil {
		return ErrResetDispatch
	}

	if err := u.producer.PublishMessage([]byte("user.reset_password"), payload); err != nil {
		log.Printf("reset link publish error: %v", err)
		return ErrResetDispatch
	}

	return nil
}

func (u *authService) ResetPassword(input dto.ResetPasswordRequest) error {
	token := strings.TrimSpace(input.Token)
	newPassword := strings.TrimSpace(input.Password)

	if token == "" || newPassword == "" || len(newPassword) < 6 {
		return ErrInvalidResetToken
	}

	hash := utils.Sha256Hex(token)
	user, err := u.repo.FindUserByResetToken(hash)
	if err != nil || user == nil {
		return ErrInvalidResetToken
	}

	if user.ResetTokenExpiresAt == nil || time.Now().After(*user.ResetTokenExpiresAt) {
		return ErrInvalidResetToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash password")
	}

	user.PasswordHash = string(hashedPassword)
	user.ResetTokenHash = ""
	user.ResetTokenExpiresAt = nil

	return u.repo.SaveUser(user)
}

// Logout revokes exactly the presented token. Other sessions of the same
// user keep working.
func (u *authService) Logout(tokenID string) error {
	if tokenID == "" {
		return errors.New("missing token id")
	}
	return u.tokens.DeleteToken(tokenID)
}

// RefreshToken rotates the presented token: the old row is revoked and a
// fresh token is issued for the same user.
func (u *authService) RefreshToken(userID uint, email, tokenID string) (string, error) {
	if userID == 0 || tokenID == "" {
		return "", errors.New("invalid token")
	}

	if err := u.tokens.DeleteToken(tokenID); err != nil {
		return "", err
	}

	jti := uuid.NewString()
	signed, err := u.auth.GenerateToken(userID, email, jti)
	if err != nil {
		return "", err
	}
	if err := u.tokens.CreateToken(&domain.AccessToken{ID: jti, UserID: userID}); err != nil {
		return "", err
	}

	return signed, nil
}

func (u *authService) GetProfile(userID uint) (*domain.User, error) {
	if userID == 0 {
		return nil, ErrUserNotFound
	}

	user, err := u.repo.FindUserById(userID)
	if err != nil || user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

func (u *authService) issueToken(user *domain.User) (string, error) {
	jti := uuid.NewString()

	signed, err := u.auth.GenerateToken(user.ID, user.Email, jti)
	if err != nil {
		return "", err
	}

	if err := u.tokens.CreateToken(&domain.AccessToken{ID: jti, UserID: user.ID}); err != nil {
		return "", err
	}

	return signed, nil
}

func emailTakenError() helper.FieldErrors {
	return helper.FieldErrors{
		"email": {"The email has already been taken."},
	}
}
