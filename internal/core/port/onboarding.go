package port

import (
	"context"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/domain"
)

// AccountProvisioner creates the default wallet and starter categories of a new user.
type AccountProvisioner interface {
	ProvisionDefaults(ctx context.Context, user domain.User) error
}
