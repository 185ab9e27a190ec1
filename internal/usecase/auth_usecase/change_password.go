package auth

import (
	"context"
	"errors"

	"lms/internal/repository"
)

// ChangePasswordUsecase はログイン済みユーザーのパスワード変更。
// 現在のパスワードを照合してから新しいハッシュに置き換える。
type ChangePasswordUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	verifier PasswordVerifier
}

func NewChangePasswordUsecase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	verifier PasswordVerifier,
) *ChangePasswordUsecase {
	return &ChangePasswordUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		verifier: verifier,
	}
}

func (u *ChangePasswordUsecase) Execute(ctx context.Context, userID string, currentPassword string, newPassword string) error {
	// 新パスワードの条件は会員登録と同じ
	if len(newPassword) < 8 {
		return ErrPasswordTooShort
	}
	if isWeakPassword(newPassword) {
		return ErrWeakPassword
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}

	if ok := u.verifier.Verify(currentPassword, user.PasswordHash); !ok {
		return ErrInvalidCredentials
	}

	newHash, err := u.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	return u.userRepo.UpdatePassword(ctx, user.ID, newHash)
}
