package calculator

import (
	"fmt"

	"github.com/mmynk/tripsplit/internal/models"
)

// Validation is the outcome of a zero-sum check.
type Validation struct {
	Valid    bool
	Residual float64
	Message  string
}

// Validate checks that participant balances sum to zero within Tolerance.
// Expenses with no split targets are skipped and do not unbalance the ledger.
func Validate(participants []models.Participant, expenses []models.Expense) Validation {
	balances, _ := ParticipantBalances(participants, expenses)
	return validateBalances(balances)
}

func validateBalances(balances Balances) Validation {
	residual := balances.Sum()
	if IsZero(residual) {
		return Validation{Valid: true, Residual: residual, Message: "balanced"}
	}
	return Validation{
		Valid:    false,
		Residual: residual,
		Message:  fmt.Sprintf("unbalanced, residual %.2f", residual),
	}
}
