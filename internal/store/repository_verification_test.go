package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/models"
)

func newTestVerificationRepo(t *testing.T) (*verificationCodeRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := newTestDB(t)
	repo := &verificationCodeRepository{
		db:     db,
		logger: logger.Nop(),
	}
	return repo, mock
}

func TestVerificationCreate_InvalidatesPreviousCodes(t *testing.T) {
	repo, mock := newTestVerificationRepo(t)

	now := time.Now()
	code := models.VerificationCode{
		UserID:    1,
		Purpose:   models.PurposeVerifyEmail,
		CodeHash:  "code-hash",
		CreatedAt: now,
		ExpiresAt: now.Add(15 * time.Minute),
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE verification_codes SET used_at").
		WithArgs(code.CreatedAt, code.UserID, code.Purpose).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery("INSERT INTO verification_codes").
		WithArgs(code.UserID, code.Purpose, code.CodeHash, code.CreatedAt, code.ExpiresAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectCommit()

	created, err := repo.Create(context.Background(), code)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != 9 {
		t.Errorf("expected ID=9, got %d", created.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestVerificationCreate_InsertFailureRollsBack(t *testing.T) {
	repo, mock := newTestVerificationRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE verification_codes SET used_at").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("INSERT INTO verification_codes").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), models.VerificationCode{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestVerificationConsume_Success(t *testing.T) {
	repo, mock := newTestVerificationRepo(t)

	now := time.Now()
	mock.ExpectExec("UPDATE verification_codes SET used_at").
		WithArgs(now, int64(1), models.PurposeResetPassword, "code-hash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Consume(context.Background(), 1, models.PurposeResetPassword, "code-hash", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerificationConsume_ExpiredOrWrongCode(t *testing.T) {
	repo, mock := newTestVerificationRepo(t)

	now := time.Now()
	mock.ExpectExec("UPDATE verification_codes SET used_at").
		WithArgs(now, int64(1), models.PurposeResetPassword, "wrong-hash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Consume(context.Background(), 1, models.PurposeResetPassword, "wrong-hash", now)
	if !errors.Is(err, ErrVerificationCodeNotFound) {
		t.Fatalf("expected ErrVerificationCodeNotFound, got %v", err)
	}
}

func TestVerificationDeleteExpired(t *testing.T) {
	repo, mock := newTestVerificationRepo(t)

	cutoff := time.Now()
	mock.ExpectExec("DELETE FROM verification_codes").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	deleted, err := repo.DeleteExpired(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 4 {
		t.Errorf("expected 4 deleted, got %d", deleted)
	}
}
