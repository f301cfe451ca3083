package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/domain"
	"github.com/Emmakaranja1/Finance-Tracker/internal/core/port"
)

// OnboardingRepository provisions the default wallet and starter categories.
type OnboardingRepository struct {
	db      DB
	builder squirrel.StatementBuilderType
}

// NewOnboardingRepository wires a PostgreSQL-backed account provisioner.
func NewOnboardingRepository(db DB) *OnboardingRepository {
	return &OnboardingRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ProvisionDefaults inserts the starter categories and the default wallet for user.
func (r *OnboardingRepository) ProvisionDefaults(ctx context.Context, user domain.User) error {
	categories := r.builder.Insert("categories").
		Columns("id", "user_id", "name", "icon", "color", "type")
	for _, tmpl := range domain.StarterCategories() {
		categories = categories.Values(uuid.NewString(), user.ID, tmpl.Name, tmpl.Icon, tmpl.Color, string(tmpl.Type))
	}
	categoriesSQL, categoriesArgs, err := categories.ToSql()
	if err != nil {
		return fmt.Errorf("build insert categories sql: %w", err)
	}

	wallet := domain.DefaultWallet(user)
	walletSQL, walletArgs, err := r.builder.Insert("wallets").
		Columns("id", "user_id", "name", "type", "balance", "currency").
		Values(uuid.NewString(), wallet.UserID, wallet.Name, wallet.Type, wallet.Balance, wallet.Currency).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert wallet sql: %w", err)
	}

	return inTx(ctx, r.db, func(ctx context.Context, exec pgExecutor) error {
		if _, err := exec.Exec(ctx, categoriesSQL, categoriesArgs...); err != nil {
			return fmt.Errorf("insert starter categories: %w", err)
		}
		if _, err := exec.Exec(ctx, walletSQL, walletArgs...); err != nil {
			return fmt.Errorf("insert default wallet: %w", err)
		}
		return nil
	})
}

var _ port.AccountProvisioner = (*OnboardingRepository)(nil)
