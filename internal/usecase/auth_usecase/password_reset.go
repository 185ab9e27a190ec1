package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"lms/internal/domain/model"
	"lms/internal/repository"
)

// ワンタイムコードの有効期限
const otpTTL = 10 * time.Minute

var (
	// コードが違う・期限切れ・未発行
	ErrInvalidOTP = errors.New("invalid or expired code")
)

// コードをメール等でユーザーに届ける約束。
// 実装は送信手段（SMTP等）を持つ側で用意する。
type OTPSender interface {
	Send(ctx context.Context, email string, code string) error
}

// PasswordResetUsecase はワンタイムコードによるパスワード再設定。
// コードはDBにハッシュで置く（平文は送信にだけ使う）。
type PasswordResetUsecase struct {
	userRepo repository.UserRepository
	otpRepo  repository.OTPRepository
	hasher   PasswordHasher
	verifier PasswordVerifier
	sender   OTPSender
	clock    Clock
}

func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	otpRepo repository.OTPRepository,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	sender OTPSender,
	clock Clock,
) *PasswordResetUsecase {
	return &PasswordResetUsecase{
		userRepo: userRepo,
		otpRepo:  otpRepo,
		hasher:   hasher,
		verifier: verifier,
		sender:   sender,
		clock:    clock,
	}
}

// RequestReset はコードを発行して送る。
// 未登録のemailでもエラーにしない（登録有無を外に漏らさない）。
func (u *PasswordResetUsecase) RequestReset(ctx context.Context, email string) error {
	if !isValidEmailFormat(email) {
		return ErrInvalidEmailFormat
	}

	_, err := u.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	code, err := generateOTPCode()
	if err != nil {
		return err
	}

	codeHash, err := u.hasher.Hash(code)
	if err != nil {
		return err
	}

	now := u.clock.Now()

	// 発行ついでに期限切れの行を掃く（失敗しても発行は続ける）
	_ = u.otpRepo.DeleteExpired(ctx, now)

	if err := u.otpRepo.Upsert(ctx, model.PasswordResetOTP{
		Email:     email,
		CodeHash:  codeHash,
		ExpiresAt: now.Add(otpTTL),
		CreatedAt: now,
	}); err != nil {
		return err
	}

	return u.sender.Send(ctx, email, code)
}

// VerifyReset はコードを照合してパスワードを更新する。
// 成功したらコード行を消す（1回限り）。
func (u *PasswordResetUsecase) VerifyReset(ctx context.Context, email string, code string, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrPasswordTooShort
	}
	if isWeakPassword(newPassword) {
		return ErrWeakPassword
	}

	otp, err := u.otpRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidOTP
	}
	if err != nil {
		return err
	}

	if u.clock.Now().After(otp.ExpiresAt) {
		_ = u.otpRepo.Delete(ctx, email)
		return ErrInvalidOTP
	}

	if !u.verifier.Verify(code, otp.CodeHash) {
		return ErrInvalidOTP
	}

	user, err := u.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidOTP
	}
	if err != nil {
		return err
	}

	newHash, err := u.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := u.userRepo.UpdatePassword(ctx, user.ID, newHash); err != nil {
		return err
	}

	return u.otpRepo.Delete(ctx, email)
}

// 6桁のコードを作る（OSが持つ安全な乱数）
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
