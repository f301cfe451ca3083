package postgres

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users          *UserRepository
	PasswordResets *PasswordResetRepository
	Onboarding     *OnboardingRepository
	Tx             *TxManager
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(db DB) *Repositories {
	return &Repositories{
		Users:          NewUserRepository(db),
		PasswordResets: NewPasswordResetRepository(db),
		Onboarding:     NewOnboardingRepository(db),
		Tx:             NewTxManager(db),
	}
}
