package account

// DefaultTypes is the account type reference data loaded at startup.
var DefaultTypes = []AccountType{
	{ID: "checking", Name: "Checking"},
	{ID: "savings", Name: "Savings"},
	{ID: "credit", Name: "Credit Card"},
	{ID: "cash", Name: "Cash"},
	{ID: "investment", Name: "Investment"},
	{ID: "loan", Name: "Loan"},
	{ID: "mortgage", Name: "Mortgage"},
}

// DefaultInstitutions is the institution reference data loaded at startup.
var DefaultInstitutions = []Institution{
	{ID: "chase", Name: "Chase"},
	{ID: "bofa", Name: "Bank of America"},
	{ID: "wells", Name: "Wells Fargo"},
	{ID: "citi", Name: "Citibank"},
	{ID: "amex", Name: "American Express"},
	{ID: "discover", Name: "Discover"},
	{ID: "capital_one", Name: "Capital One"},
	{ID: "ally", Name: "Ally Bank"},
	{ID: "vanguard", Name: "Vanguard"},
	{ID: "fidelity", Name: "Fidelity"},
	{ID: "schwab", Name: "Charles Schwab"},
	{ID: "other", Name: "Other"},
}

// SampleAccounts are inserted when a fresh store is seeded.
var SampleAccounts = []CreateParams{
	{ID: "acc-001", Name: "Primary Checking", Type: "checking", Institution: "chase", Balance: 2500.75, Currency: DefaultCurrency, Notes: "Main checking account"},
	{ID: "acc-002", Name: "Savings Account", Type: "savings", Institution: "bofa", Balance: 10000.00, Currency: DefaultCurrency, Notes: "Emergency fund"},
	{ID: "acc-003", Name: "Credit Card", Type: "credit", Institution: "citi", Balance: -450.25, Currency: DefaultCurrency, Notes: "Rewards card"},
	{ID: "acc-004", Name: "Cash", Type: "cash", Institution: "other", Balance: 3500.00, Currency: DefaultCurrency, Notes: "Cash on hand"},
	{ID: "acc-005", Name: "Investment Portfolio", Type: "investment", Institution: "vanguard", Balance: 45000.00, Currency: DefaultCurrency, Notes: "Retirement savings"},
}
