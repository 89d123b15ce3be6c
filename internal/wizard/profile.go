// Package wizard implements the financial-awareness questionnaire: a
// short branching flow that asks how well the user tracks their money
// and produces a profile record compared later against the real budget
// numbers.
package wizard

import "github.com/elishgi/moneyPlusMinus/internal/core"

// Profile is the answer record produced by the flow. Estimate fields
// stay strings so partially typed input round-trips untouched; the two
// awareness answers are tri-state (nil means not asked yet).
type Profile struct {
	UserName              string `json:"userName"`
	IsAware               *bool  `json:"isAware"`
	IncomeEstimate        string `json:"incomeEstimate"`
	FixedExpensesEstimate string `json:"fixedExpensesEstimate"`
	CreditCardEstimate    string `json:"creditCardEstimate"`
	DebitCardEstimate     string `json:"debitCardEstimate"`
	DeepAware             *bool  `json:"deepAware"`
	FuelEstimate          string `json:"fuelEstimate"`
	GroceriesEstimate     string `json:"groceriesEstimate"`
	TreatsEstimate        string `json:"treatsEstimate"`
	Completed             bool   `json:"completed"`
}

// Question is one estimate prompt. Key matches the profile JSON field
// it fills.
type Question struct {
	Key         string
	Title       string
	Helper      string
	Placeholder string
}

// PrimaryQuestions are asked after the user claims general awareness.
var PrimaryQuestions = []Question{
	{
		Key:         "incomeEstimate",
		Title:       "Do you know how much you earn per month?",
		Helper:      "Salaries and all recurring income",
		Placeholder: "e.g. 12000",
	},
	{
		Key:         "fixedExpensesEstimate",
		Title:       "Do you know how much you spend on fixed expenses?",
		Helper:      "Bills, subscriptions, rent, daycare",
		Placeholder: "e.g. 4200",
	},
	{
		Key:         "creditCardEstimate",
		Title:       "Do you know your monthly deferred credit card charges?",
		Helper:      "The deferred-billing card total",
		Placeholder: "e.g. 2300",
	},
	{
		Key:         "debitCardEstimate",
		Title:       "Can you estimate your monthly immediate-debit card spending?",
		Helper:      "Debit / immediate-charge transactions",
		Placeholder: "e.g. 1200",
	},
}

// DetailQuestions are asked after the user claims detailed awareness.
var DetailQuestions = []Question{
	{
		Key:         "fuelEstimate",
		Title:       "Do you know how much you spend on fuel?",
		Placeholder: "e.g. 600",
	},
	{
		Key:         "groceriesEstimate",
		Title:       "Do you know how much you spend on groceries?",
		Placeholder: "e.g. 2000",
	},
	{
		Key:         "treatsEstimate",
		Title:       "How much goes to treats?",
		Placeholder: "e.g. 500",
	},
}

func (p *Profile) field(key string) *string {
	switch key {
	case "incomeEstimate":
		return &p.IncomeEstimate
	case "fixedExpensesEstimate":
		return &p.FixedExpensesEstimate
	case "creditCardEstimate":
		return &p.CreditCardEstimate
	case "debitCardEstimate":
		return &p.DebitCardEstimate
	case "fuelEstimate":
		return &p.FuelEstimate
	case "groceriesEstimate":
		return &p.GroceriesEstimate
	case "treatsEstimate":
		return &p.TreatsEstimate
	}
	return nil
}

// Answer returns the stored value for a question key.
func (p Profile) Answer(key string) string {
	if f := p.field(key); f != nil {
		return *f
	}
	return ""
}

// Insights is the derived report shown on the terminal screen.
type Insights struct {
	Income            float64
	EstimatedExpenses float64
	EstimatedBalance  float64
	FullyAnswered     bool
	Tone              string
	BalanceMessage    string
}

// Insights derives the report from whatever has been answered so far.
// The expense total sums the six spending estimates; income is kept
// separate for the balance.
func (p Profile) Insights() Insights {
	income := core.ParseAmount(p.IncomeEstimate)
	expenses := core.ParseAmount(p.FixedExpensesEstimate) +
		core.ParseAmount(p.CreditCardEstimate) +
		core.ParseAmount(p.DebitCardEstimate) +
		core.ParseAmount(p.FuelEstimate) +
		core.ParseAmount(p.GroceriesEstimate) +
		core.ParseAmount(p.TreatsEstimate)
	balance := income - expenses

	fully := isTrue(p.IsAware) && isTrue(p.DeepAware)
	if fully {
		for _, q := range PrimaryQuestions {
			if core.ParseAmount(p.Answer(q.Key)) <= 0 {
				fully = false
				break
			}
		}
	}
	if fully {
		for _, q := range DetailQuestions {
			if core.ParseAmount(p.Answer(q.Key)) <= 0 {
				fully = false
				break
			}
		}
	}

	tone := "We'll help you sort things out"
	switch {
	case isTrue(p.IsAware) && isTrue(p.DeepAware):
		tone = "High level of awareness!"
	case isTrue(p.IsAware):
		tone = "A solid baseline"
	}

	var message string
	switch {
	case balance < 0:
		message = "By your own estimates, spending exceeds income. We're here to find where the money leaks and fix it."
	case balance >= 1000:
		message = "Well done! You have a nice positive margin. We'll help you keep it and grow it."
	default:
		message = "Things look roughly balanced; still worth checking where a little more can be trimmed or saved."
	}

	return Insights{
		Income:            income,
		EstimatedExpenses: expenses,
		EstimatedBalance:  balance,
		FullyAnswered:     fully,
		Tone:              tone,
		BalanceMessage:    message,
	}
}

func isTrue(b *bool) bool { return b != nil && *b }

func boolPtr(v bool) *bool { return &v }
