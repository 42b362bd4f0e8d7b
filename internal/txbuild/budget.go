// internal/txbuild/budget.go
package txbuild

import (
	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
)

// Budget holds the compute budget for one transaction.
type Budget struct {
	// PriorityFee is the compute unit price in micro-lamports.
	PriorityFee uint64
	// ComputeUnits is the compute unit limit.
	ComputeUnits uint32
}

// Augment returns a new batch with the two compute budget instructions
// prepended: unit price first, then unit limit, ahead of every
// caller-supplied instruction. Pure prepend, no side effects.
func Augment(batch []solana.Instruction, budget Budget) []solana.Instruction {
	augmented := make([]solana.Instruction, 0, len(batch)+2)
	augmented = append(augmented,
		computebudget.NewSetComputeUnitPriceInstruction(budget.PriorityFee).Build(),
		computebudget.NewSetComputeUnitLimitInstruction(budget.ComputeUnits).Build(),
	)
	return append(augmented, batch...)
}
