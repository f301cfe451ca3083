package domain

// CategoryType separates income from expense categories.
type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

// Category is a user-owned transaction category.
type Category struct {
	ID     string
	UserID string
	Name   string
	Icon   string
	Color  string
	Type   CategoryType
}

// Wallet is a user-owned balance holder.
type Wallet struct {
	ID       string
	UserID   string
	Name     string
	Type     string
	Balance  int64
	Currency string
}

const (
	DefaultWalletName = "Main Wallet"
	DefaultWalletType = "bank"
)

// CategoryTemplate describes a starter category before it is owned by a user.
type CategoryTemplate struct {
	Name  string
	Icon  string
	Color string
	Type  CategoryType
}

// StarterCategories returns the categories provisioned for every new account.
func StarterCategories() []CategoryTemplate {
	return []CategoryTemplate{
		{Name: "Food & Dining", Icon: "🍔", Color: "#FF6B6B", Type: CategoryExpense},
		{Name: "Shopping", Icon: "🛍️", Color: "#4ECDC4", Type: CategoryExpense},
		{Name: "Transportation", Icon: "🚗", Color: "#45B7D1", Type: CategoryExpense},
		{Name: "Bills & Utilities", Icon: "💡", Color: "#FFA07A", Type: CategoryExpense},
		{Name: "Entertainment", Icon: "🎬", Color: "#98D8C8", Type: CategoryExpense},
		{Name: "Healthcare", Icon: "🏥", Color: "#F7DC6F", Type: CategoryExpense},
		{Name: "Salary", Icon: "💰", Color: "#52BE80", Type: CategoryIncome},
		{Name: "Freelance", Icon: "💼", Color: "#5DADE2", Type: CategoryIncome},
		{Name: "Investment", Icon: "📈", Color: "#58D68D", Type: CategoryIncome},
	}
}

// DefaultWallet returns the zero-balance wallet created at signup.
func DefaultWallet(user User) Wallet {
	currency := user.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	return Wallet{
		UserID:   user.ID,
		Name:     DefaultWalletName,
		Type:     DefaultWalletType,
		Currency: currency,
	}
}
