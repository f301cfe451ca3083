package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v2"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/domain"
)

func categoryArgs(userID string) []any {
	var args []any
	for _, tmpl := range domain.StarterCategories() {
		args = append(args, pgxmock.AnyArg(), userID, tmpl.Name, tmpl.Icon, tmpl.Color, string(tmpl.Type))
	}
	return args
}

func TestOnboardingRepositoryProvisionDefaults(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewOnboardingRepository(mock)
	user := domain.User{ID: "user-1", Currency: "EUR"}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO categories \(id,user_id,name,icon,color,type\)`).
		WithArgs(categoryArgs("user-1")...).
		WillReturnResult(pgxmock.NewResult("INSERT", int64(len(domain.StarterCategories()))))
	mock.ExpectExec(`INSERT INTO wallets`).
		WithArgs(pgxmock.AnyArg(), "user-1", domain.DefaultWalletName, domain.DefaultWalletType, int64(0), "EUR").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	if err := repo.ProvisionDefaults(context.Background(), user); err != nil {
		t.Fatalf("ProvisionDefaults returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTxManagerSharesTransactionWithRepositories(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock: %v", err)
	}
	defer mock.Close()

	repos := NewRepositories(mock)
	user := domain.User{ID: "user-1", Email: "a@x.com", Currency: "USD"}

	// One Begin covers the user insert and the nested provisioning call.
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO categories`).
		WithArgs(categoryArgs("user-1")...).
		WillReturnError(errors.New("constraint violated"))
	mock.ExpectRollback()

	err = repos.Tx.WithinTx(context.Background(), func(ctx context.Context) error {
		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}
		return repos.Onboarding.ProvisionDefaults(ctx, user)
	})
	if err == nil {
		t.Fatalf("expected transaction to fail")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
