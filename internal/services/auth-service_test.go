package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/MediExpress/auth_service/internal/domain"
	"github.com/MediExpress/auth_service/internal/dto"
	"github.com/MediExpress/auth_service/internal/helper"
	"github.com/MediExpress/auth_service/internal/helper/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// --- fakes ---

type fakeUserRepo struct {
	users  map[uint]*domain.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*domain.User{}, nextID: 1}
}

func (f *fakeUserRepo) CreateUser(user *domain.User) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == user.Email {
			return nil, errors.New("duplicate key value violates unique constraint")
		}
	}
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	f.nextID++
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) FindUserByEmail(email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindUserById(userID uint) (*domain.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) FindUserByResetToken(hash string) (*domain.User, error) {
	for _, u := range f.users {
		if u.ResetTokenHash != "" && u.ResetTokenHash == hash {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) SaveUser(user *domain.User) error {
	f.users[user.ID] = user
	return nil
}

type fakeTokenRepo struct {
	tokens map[string]*domain.AccessToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[string]*domain.AccessToken{}}
}

func (f *fakeTokenRepo) CreateToken(token *domain.AccessToken) error {
	f.tokens[token.ID] = token
	return nil
}

func (f *fakeTokenRepo) FindTokenById(tokenID string) (*domain.AccessToken, error) {
	tok, ok := f.tokens[tokenID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return tok, nil
}

func (f *fakeTokenRepo) DeleteToken(tokenID string) error {
	delete(f.tokens, tokenID)
	return nil
}

type fakeProducer struct {
	keys   []string
	values [][]byte
	err    error
}

func (f *fakeProducer) PublishMessage(key, value []byte) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, string(key))
	f.values = append(f.values, value)
	return nil
}

type testEnv struct {
	svc      AuthService
	users    *fakeUserRepo
	tokens   *fakeTokenRepo
	producer *fakeProducer
	auth     helper.Auth
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		users:    newFakeUserRepo(),
		tokens:   newFakeTokenRepo(),
		producer: &fakeProducer{},
		auth:     helper.SetupAuth("test-secret"),
	}
	env.svc = NewAuthService(env.users, env.tokens, env.producer, env.auth)
	return env
}

func registerInput() dto.RegisterRequest {
	return dto.RegisterRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@x.com",
		Password:  "secret1",
	}
}

// --- tests ---

func TestRegister_Success(t *testing.T) {
	env := newTestEnv(t)

	user, token, err := env.svc.Register(registerInput())
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Equal(t, "Jane Doe", user.Name)
	assert.Equal(t, "jane@x.com", user.Email)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	claims, err := env.auth.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, err = env.tokens.FindTokenById(claims.TokenID)
	assert.NoError(t, err)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.svc.Register(registerInput())
	require.NoError(t, err)

	_, _, err = env.svc.Register(registerInput())
	require.Error(t, err)

	var fieldErrs helper.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "email")
	assert.Len(t, env.users.users, 1)
}

func TestRegister_NormalizesEmail(t *testing.T) {
	env := newTestEnv(t)

	in := registerInput()
	in.Email = "  Jane@X.Com "
	user, _, err := env.svc.Register(in)
	require.NoError(t, err)
	assert.Equal(t, "jane@x.com", user.Email)
}

func TestLogin_FreshTokenEachTime(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.svc.Register(registerInput())
	require.NoError(t, err)

	login := dto.UserLogin{Email: "jane@x.com", Password: "secret1"}

	_, t1, err := env.svc.Login(login)
	require.NoError(t, err)
	_, t2, err := env.svc.Login(login)
	require.NoError(t, err)

	assert.NotEqual(t, t1, t2)
	assert.Len(t, env.tokens.tokens, 3) // register + two logins, none revoked
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.svc.Register(registerInput())
	require.NoError(t, err)

	_, _, err = env.svc.Login(dto.UserLogin{Email: "jane@x.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = env.svc.Login(dto.UserLogin{Email: "nobody@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGoogleLogin_CreatesUserOnce(t *testing.T) {
	env := newTestEnv(t)

	input := dto.GoogleLoginRequest{
		GoogleToken: "opaque-id-token",
		UserInfo: dto.GoogleUserInfo{
			Email:      "jane@x.com",
			GivenName:  "Jane",
			FamilyName: "Doe",
			ID:         "google-sub-1",
		},
	}

	user1, token1, err := env.svc.GoogleLogin(input)
	require.NoError(t, err)
	require.NotNil(t, user1)
	assert.NotEmpty(t, token1)
	assert.Equal(t, "Jane Doe", user1.Name)
	assert.NotNil(t, user1.EmailVerifiedAt)
	require.NotNil(t, user1.GoogleID)
	assert.Equal(t, "google-sub-1", *user1.GoogleID)
	assert.Len(t, env.users.users, 1)

	user2, token2, err := env.svc.GoogleLogin(input)
	require.NoError(t, err)
	assert.Equal(t, user1.ID, user2.ID)
	assert.NotEqual(t, token1, token2)
	assert.Len(t, env.users.users, 1)
}

func TestGoogleLogin_PasswordIsUnusable(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.svc.GoogleLogin(dto.GoogleLoginRequest{
		GoogleToken: "opaque-id-token",
		UserInfo: dto.GoogleUserInfo{
			Email:      "jane@x.com",
			GivenName:  "Jane",
			FamilyName: "Doe",
		},
	})
	require.NoError(t, err)

	_, _, err = env.svc.Login(dto.UserLogin{Email: "jane@x.com", Password: ""})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	err := env.svc.ForgotPassword("nobody@x.com")
	assert.ErrorIs(t, err, ErrEmailNotFound)
	assert.Empty(t, env.producer.keys)
}

func TestForgotPassword_PublishesEvent(t *testing.T) {
	env := newTestEnv(t)
	user, _, err := env.svc.Register(registerInput())
	require.NoError(t, err)

	require.NoError(t, env.svc.ForgotPassword("jane@x.com"))
	require.Len(t, env.producer.values, 1)
	assert.Equal(t, "user.reset_password", env.producer.keys[0])

	var event dto.ResetPasswordEvent
	require.NoError(t, json.Unmarshal(env.producer.values[0], &event))
	assert.Equal(t, user.ID, event.UserID)
	assert.Equal(t, "jane@x.com", event.Email)
	require.NotEmpty(t, event.Token)

	// the stored hash must match the dispatched plain token
	stored := env.users.users[user.ID]
	assert.Equal(t, utils.Sha256Hex(event.Token), stored.ResetTokenHash)
	require.NotNil(t, stored.ResetTokenExpiresAt)
	assert.True(t, stored.ResetTokenExpiresAt.After(time.Now()))
}

func TestForgotPassword_DispatchFailure(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.svc.Register(registerInput())
	require.NoError(t, err)

	env.producer.err = errors.New("broker down")
	err = env.svc.ForgotPassword("jane@x.com")
	assert.ErrorIs(t, err, ErrResetDispatch)
}

func TestResetPassword_Success(t *testing.T) {
	env := newTestEnv(t)
	user, _, err := env.svc.Register(registerInput())
	require.NoError(t, err)

	require.NoError(t, env.svc.ForgotPassword("jane@x.com"))

	var event dto.ResetPasswordEvent
	require.NoError(t, json.Unmarshal(env.producer.values[0], &event))

	err = env.svc.ResetPassword(dto.ResetPasswordRequest{
		Token:    event.Token,
		Password: "newsecret",
	})
	require.NoError(t, err)

	stored := env.users.users[user.ID]
	assert.Empty(t, stored.ResetTokenHash)
	assert.Nil(t, stored.ResetTokenExpiresAt)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(stored.PasswordHash), []byte("newsecret")))

	// single use
	err = env.svc.ResetPassword(dto.ResetPasswordRequest{
		Token:    event.Token,
		Password: "another1",
	})
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetPassword_Expired(t *testing.T) {
	env := newTestEnv(t)
	user, _, err := env.svc.Register(registerInput())
	require.NoError(t, err)

	plain, err := utils.RandomToken(32)
	require.NoError(t, err)

	past := time.Now().Add(-time.Minute)
	stored := env.users.users[user.ID]
	stored.ResetTokenHash = utils.Sha256Hex(plain)
	stored.ResetTokenExpiresAt = &past

	err = env.svc.ResetPassword(dto.ResetPasswordRequest{
		Token:    plain,
		Password: "newsecret",
	})
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestLogout_RevokesOnlyPresentedToken(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.svc.Register(registerInput())
	require.NoError(t, err)

	login := dto.UserLogin{Email: "jane@x.com", Password: "secret1"}
	_, t1, err := env.svc.Login(login)
	require.NoError(t, err)
	_, t2, err := env.svc.Login(login)
	require.NoError(t, err)

	claims1, err := env.auth.VerifyToken(t1)
	require.NoError(t, err)
	claims2, err := env.auth.VerifyToken(t2)
	require.NoError(t, err)

	require.NoError(t, env.svc.Logout(claims1.TokenID))

	_, err = env.tokens.FindTokenById(claims1.TokenID)
	assert.Error(t, err)
	_, err = env.tokens.FindTokenById(claims2.TokenID)
	assert.NoError(t, err)
}

func TestRefreshToken_Rotates(t *testing.T) {
	env := newTestEnv(t)
	user, token, err := env.svc.Register(registerInput())
	require.NoError(t, err)

	claims, err := env.auth.VerifyToken(token)
	require.NoError(t, err)

	fresh, err := env.svc.RefreshToken(user.ID, user.Email, claims.TokenID)
	require.NoError(t, err)
	require.NotEmpty(t, fresh)
	assert.NotEqual(t, token, fresh)

	_, err = env.tokens.FindTokenById(claims.TokenID)
	assert.Error(t, err)

	freshClaims, err := env.auth.VerifyToken(fresh)
	require.NoError(t, err)
	_, err = env.tokens.FindTokenById(freshClaims.TokenID)
	assert.NoError(t, err)
}

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)
	user, _, err := env.svc.Register(registerInput())
	require.NoError(t, err)

	got, err := env.svc.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = env.svc.GetProfile(999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
