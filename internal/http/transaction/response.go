package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

type transactionResponse struct {
	ID          uuid.UUID              `json:"id"`
	Date        string                 `json:"date"`
	Description string                 `json:"description"`
	Merchant    string                 `json:"merchant,omitempty"`
	Amount      int64                  `json:"amount"`
	Currency    string                 `json:"currency"`
	Status      transaction.Status     `json:"status"`
	Source      transaction.SourceType `json:"source_type"`
	FlowType    transaction.FlowType   `json:"flow_type"`
	IsTransfer  bool                   `json:"is_transfer"`
	IsExcluded  bool                   `json:"is_excluded"`
	Metadata    metadataResponse       `json:"metadata"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   *time.Time             `json:"updated_at,omitempty"`
}

type metadataResponse struct {
	Category         string   `json:"category,omitempty"`
	Tags             []string `json:"tags"`
	MerchantOverride string   `json:"merchant_override,omitempty"`
	Notes            string   `json:"notes,omitempty"`
	IsRecurring      bool     `json:"is_recurring"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	tags := tx.Metadata.Tags
	if tags == nil {
		tags = []string{}
	}

	return transactionResponse{
		ID:          tx.ID,
		Date:        tx.Date.Format(time.DateOnly),
		Description: tx.Description,
		Merchant:    tx.Merchant,
		Amount:      tx.Amount,
		Currency:    tx.Currency,
		Status:      tx.Status,
		Source:      tx.Source,
		FlowType:    tx.FlowType,
		IsTransfer:  tx.IsTransfer,
		IsExcluded:  tx.IsExcluded,
		Metadata: metadataResponse{
			Category:         tx.Metadata.Category,
			Tags:             tags,
			MerchantOverride: tx.Metadata.MerchantOverride,
			Notes:            tx.Metadata.Notes,
			IsRecurring:      tx.Metadata.IsRecurring,
		},
		CreatedAt: tx.CreatedAt,
		UpdatedAt: tx.UpdatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
