package flow

import "github.com/MrJamesThe3rd/kontoflyt/internal/transaction"

// Signed is an amount with the aggregation flags its flow implies.
type Signed struct {
	Amount     int64
	IsTransfer bool
	IsExcluded bool
}

// NormalizeSign forces the amount sign to agree with the flow type. It is
// idempotent: normalizing an already normalized amount returns it unchanged.
func NormalizeSign(flow transaction.FlowType, amount int64) Signed {
	switch flow {
	case transaction.FlowExpense:
		return Signed{Amount: -abs(amount)}
	case transaction.FlowIncome:
		return Signed{Amount: abs(amount)}
	case transaction.FlowTransfer:
		return Signed{Amount: amount, IsTransfer: true, IsExcluded: true}
	}

	return Signed{Amount: amount}
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
