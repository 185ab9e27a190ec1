package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"lms/internal/domain/model"
	"lms/internal/repository"
	auth "lms/internal/usecase/auth_usecase"
)

// =====================
// Mocks
// =====================

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) FindByID(ctx context.Context, userID string) (model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Create(ctx context.Context, user model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) Update(ctx context.Context, user model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) UpdateLastLogin(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *UserRepoMock) UpdatePassword(ctx context.Context, userID string, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

func (m *UserRepoMock) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *UserRepoMock) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	us, _ := args.Get(0).([]model.User)
	return us, args.Error(1)
}

type OTPRepoMock struct{ mock.Mock }

func (m *OTPRepoMock) Upsert(ctx context.Context, otp model.PasswordResetOTP) error {
	args := m.Called(ctx, otp)
	return args.Error(0)
}

func (m *OTPRepoMock) FindByEmail(ctx context.Context, email string) (model.PasswordResetOTP, error) {
	args := m.Called(ctx, email)
	otp, _ := args.Get(0).(model.PasswordResetOTP)
	return otp, args.Error(1)
}

func (m *OTPRepoMock) Delete(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *OTPRepoMock) DeleteExpired(ctx context.Context, now time.Time) error {
	args := m.Called(ctx, now)
	return args.Error(0)
}

type captureSender struct {
	email string
	code  string
}

func (s *captureSender) Send(ctx context.Context, email string, code string) error {
	s.email = email
	s.code = code
	return nil
}

type stubIDGen struct{}

func (stubIDGen) NewID() string { return "fixed-id" }

type stubClock struct{ t time.Time }

func (c stubClock) Now() time.Time { return c.t }

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// =====================
// Register
// =====================

func validRegisterInput() auth.RegisterUserInput {
	return auth.RegisterUserInput{
		Name:     "Taro",
		Email:    "taro@example.com",
		Password: "correct-horse-battery",
		DOB:      time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		Path:     model.PathWebDev,
	}
}

func TestRegisterUserUsecase_WeakPassword(t *testing.T) {
	uc := auth.NewRegisterUserUsecase(new(UserRepoMock), auth.NewBcryptPasswordHasher(4), stubIDGen{}, stubClock{t: testNow})

	in := validRegisterInput()
	in.Password = "password123"

	_, err := uc.Execute(context.Background(), in)
	assert.ErrorIs(t, err, auth.ErrWeakPassword)
}

func TestRegisterUserUsecase_InvalidPath(t *testing.T) {
	uc := auth.NewRegisterUserUsecase(new(UserRepoMock), auth.NewBcryptPasswordHasher(4), stubIDGen{}, stubClock{t: testNow})

	in := validRegisterInput()
	in.Path = "Astrology"

	_, err := uc.Execute(context.Background(), in)
	assert.ErrorIs(t, err, auth.ErrInvalidPath)
}

func TestRegisterUserUsecase_DuplicateEmail(t *testing.T) {
	users := new(UserRepoMock)
	uc := auth.NewRegisterUserUsecase(users, auth.NewBcryptPasswordHasher(4), stubIDGen{}, stubClock{t: testNow})

	users.On("FindByEmail", mock.Anything, "taro@example.com").
		Return(model.User{ID: "existing"}, nil)

	_, err := uc.Execute(context.Background(), validRegisterInput())
	assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterUserUsecase_Success(t *testing.T) {
	users := new(UserRepoMock)
	uc := auth.NewRegisterUserUsecase(users, auth.NewBcryptPasswordHasher(4), stubIDGen{}, stubClock{t: testNow})

	users.On("FindByEmail", mock.Anything, "taro@example.com").
		Return(model.User{}, repository.ErrNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		// 平文は保存しない、roleの初期値はSTUDENT
		return u.PasswordHash != "" && u.PasswordHash != "correct-horse-battery" &&
			u.Role == model.RoleStudent
	})).Return(nil)

	out, err := uc.Execute(context.Background(), validRegisterInput())
	assert.NoError(t, err)
	assert.Equal(t, "fixed-id", out.User.ID)
	assert.Empty(t, out.User.PasswordHash)
}

// =====================
// Login
// =====================

func TestLoginUsecase_WrongPassword(t *testing.T) {
	users := new(UserRepoMock)
	hasher := auth.NewBcryptPasswordHasher(4)
	hash, _ := hasher.Hash("right-password")

	uc := auth.NewLoginUsecase(users, auth.NewBcryptPasswordVerifier(),
		auth.NewJWTAccessTokenIssuer("secret"), stubClock{t: testNow})

	users.On("FindByEmail", mock.Anything, "taro@example.com").
		Return(model.User{ID: "user-1", PasswordHash: hash}, nil)

	_, err := uc.Execute(context.Background(), auth.LoginInput{
		Email:    "taro@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginUsecase_UnknownEmail(t *testing.T) {
	users := new(UserRepoMock)
	uc := auth.NewLoginUsecase(users, auth.NewBcryptPasswordVerifier(),
		auth.NewJWTAccessTokenIssuer("secret"), stubClock{t: testNow})

	users.On("FindByEmail", mock.Anything, "nobody@example.com").
		Return(model.User{}, repository.ErrNotFound)

	_, err := uc.Execute(context.Background(), auth.LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginUsecase_Success(t *testing.T) {
	users := new(UserRepoMock)
	hasher := auth.NewBcryptPasswordHasher(4)
	hash, _ := hasher.Hash("right-password")

	uc := auth.NewLoginUsecase(users, auth.NewBcryptPasswordVerifier(),
		auth.NewJWTAccessTokenIssuer("secret"), stubClock{t: testNow})

	users.On("FindByEmail", mock.Anything, "taro@example.com").
		Return(model.User{ID: "user-1", Email: "taro@example.com", PasswordHash: hash, Role: model.RoleStudent}, nil)
	users.On("UpdateLastLogin", mock.Anything, "user-1").Return(nil)

	out, err := uc.Execute(context.Background(), auth.LoginInput{
		Email:    "taro@example.com",
		Password: "right-password",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, out.Token.AccessToken)
	assert.Empty(t, out.User.PasswordHash)
	assert.Equal(t, int((24 * time.Hour).Seconds()), out.Token.ExpiresIn)
}

// =====================
// Password reset
// =====================

func TestPasswordResetUsecase_RequestHidesUnknownEmail(t *testing.T) {
	users := new(UserRepoMock)
	otps := new(OTPRepoMock)
	sender := &captureSender{}

	uc := auth.NewPasswordResetUsecase(users, otps, auth.NewBcryptPasswordHasher(4),
		auth.NewBcryptPasswordVerifier(), sender, stubClock{t: testNow})

	users.On("FindByEmail", mock.Anything, "nobody@example.com").
		Return(model.User{}, repository.ErrNotFound)

	// 登録有無を漏らさないのでエラーにならない
	err := uc.RequestReset(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Empty(t, sender.code)
	otps.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestPasswordResetUsecase_FullFlow(t *testing.T) {
	users := new(UserRepoMock)
	otps := new(OTPRepoMock)
	sender := &captureSender{}
	hasher := auth.NewBcryptPasswordHasher(4)
	verifier := auth.NewBcryptPasswordVerifier()

	uc := auth.NewPasswordResetUsecase(users, otps, hasher, verifier, sender, stubClock{t: testNow})

	users.On("FindByEmail", mock.Anything, "taro@example.com").
		Return(model.User{ID: "user-1", Email: "taro@example.com"}, nil)

	var stored model.PasswordResetOTP
	otps.On("DeleteExpired", mock.Anything, testNow).Return(nil)
	otps.On("Upsert", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(model.PasswordResetOTP)
		}).Return(nil)

	err := uc.RequestReset(context.Background(), "taro@example.com")
	assert.NoError(t, err)
	assert.Len(t, sender.code, 6)
	assert.Equal(t, testNow.Add(10*time.Minute), stored.ExpiresAt)
	// DBに入るのはハッシュ
	assert.NotEqual(t, sender.code, stored.CodeHash)
	// 発行のたびに期限切れ行を掃く
	otps.AssertCalled(t, "DeleteExpired", mock.Anything, testNow)

	// 届いたコードで再設定
	otps.On("FindByEmail", mock.Anything, "taro@example.com").Return(stored, nil)
	users.On("UpdatePassword", mock.Anything, "user-1", mock.Anything).Return(nil)
	otps.On("Delete", mock.Anything, "taro@example.com").Return(nil)

	err = uc.VerifyReset(context.Background(), "taro@example.com", sender.code, "brand-new-password")
	assert.NoError(t, err)
	otps.AssertCalled(t, "Delete", mock.Anything, "taro@example.com")
}

func TestPasswordResetUsecase_ExpiredCode(t *testing.T) {
	users := new(UserRepoMock)
	otps := new(OTPRepoMock)
	hasher := auth.NewBcryptPasswordHasher(4)

	uc := auth.NewPasswordResetUsecase(users, otps, hasher,
		auth.NewBcryptPasswordVerifier(), &captureSender{}, stubClock{t: testNow})

	hash, _ := hasher.Hash("123456")
	otps.On("FindByEmail", mock.Anything, "taro@example.com").Return(model.PasswordResetOTP{
		Email:     "taro@example.com",
		CodeHash:  hash,
		ExpiresAt: testNow.Add(-time.Minute),
	}, nil)
	otps.On("Delete", mock.Anything, "taro@example.com").Return(nil)

	err := uc.VerifyReset(context.Background(), "taro@example.com", "123456", "brand-new-password")
	assert.ErrorIs(t, err, auth.ErrInvalidOTP)
	users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestPasswordResetUsecase_WrongCode(t *testing.T) {
	users := new(UserRepoMock)
	otps := new(OTPRepoMock)
	hasher := auth.NewBcryptPasswordHasher(4)

	uc := auth.NewPasswordResetUsecase(users, otps, hasher,
		auth.NewBcryptPasswordVerifier(), &captureSender{}, stubClock{t: testNow})

	hash, _ := hasher.Hash("123456")
	otps.On("FindByEmail", mock.Anything, "taro@example.com").Return(model.PasswordResetOTP{
		Email:     "taro@example.com",
		CodeHash:  hash,
		ExpiresAt: testNow.Add(5 * time.Minute),
	}, nil)

	err := uc.VerifyReset(context.Background(), "taro@example.com", "654321", "brand-new-password")
	assert.ErrorIs(t, err, auth.ErrInvalidOTP)
	users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

// =====================
// Change password
// =====================

func TestChangePasswordUsecase_WrongCurrentPassword(t *testing.T) {
	users := new(UserRepoMock)
	hasher := auth.NewBcryptPasswordHasher(4)
	hash, _ := hasher.Hash("right-password")

	uc := auth.NewChangePasswordUsecase(users, hasher, auth.NewBcryptPasswordVerifier())

	users.On("FindByID", mock.Anything, "user-1").
		Return(model.User{ID: "user-1", PasswordHash: hash}, nil)

	err := uc.Execute(context.Background(), "user-1", "wrong-password", "brand-new-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePasswordUsecase_WeakNewPassword(t *testing.T) {
	users := new(UserRepoMock)
	hasher := auth.NewBcryptPasswordHasher(4)

	uc := auth.NewChangePasswordUsecase(users, hasher, auth.NewBcryptPasswordVerifier())

	err := uc.Execute(context.Background(), "user-1", "right-password", "password123")
	assert.ErrorIs(t, err, auth.ErrWeakPassword)
	users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestChangePasswordUsecase_Success(t *testing.T) {
	users := new(UserRepoMock)
	hasher := auth.NewBcryptPasswordHasher(4)
	verifier := auth.NewBcryptPasswordVerifier()
	hash, _ := hasher.Hash("right-password")

	uc := auth.NewChangePasswordUsecase(users, hasher, verifier)

	users.On("FindByID", mock.Anything, "user-1").
		Return(model.User{ID: "user-1", PasswordHash: hash}, nil)

	var newHash string
	users.On("UpdatePassword", mock.Anything, "user-1", mock.Anything).
		Run(func(args mock.Arguments) {
			newHash = args.Get(2).(string)
		}).Return(nil)

	err := uc.Execute(context.Background(), "user-1", "right-password", "brand-new-password")
	assert.NoError(t, err)
	// 新パスワードのハッシュに置き換わる（平文は保存しない）
	assert.NotEqual(t, "brand-new-password", newHash)
	assert.True(t, verifier.Verify("brand-new-password", newHash))
}
