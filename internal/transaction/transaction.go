package transaction

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("transaction not found")

// FlowType classifies a transaction for sign convention and aggregation.
type FlowType string

const (
	FlowExpense  FlowType = "expense"
	FlowIncome   FlowType = "income"
	FlowTransfer FlowType = "transfer"
	FlowUnknown  FlowType = "unknown"
)

func (f FlowType) Valid() bool {
	switch f {
	case FlowExpense, FlowIncome, FlowTransfer, FlowUnknown:
		return true
	}

	return false
}

// Status is the booking state reported by the bank.
type Status string

const (
	StatusPending Status = "pending"
	StatusBooked  Status = "booked"
)

// SourceType identifies which export format a transaction came from.
type SourceType string

const (
	SourcePDF  SourceType = "pdf"
	SourceXLSX SourceType = "xlsx"
)

func (s SourceType) Valid() bool {
	return s == SourcePDF || s == SourceXLSX
}

// Candidate is a parsed statement line before classification.
type Candidate struct {
	Date        time.Time
	Description string
	Amount      int64 // Amount in øre, signed as printed
	Status      Status
	RawLine     string
}

// Classified is a candidate with its flow decision applied.
type Classified struct {
	Candidate
	Merchant     string
	Currency     string
	Source       SourceType
	FlowType     FlowType
	IsTransfer   bool
	IsExcluded   bool
	Reason       string
	SectionLabel string
}

// Metadata is the rule-managed annotation of a stored transaction.
type Metadata struct {
	Category         string
	Tags             []string
	MerchantOverride string
	Notes            string
	IsRecurring      bool
}

// Transaction represents a persisted, classified transaction.
type Transaction struct {
	ID           uuid.UUID
	Date         time.Time
	Description  string
	Merchant     string
	Amount       int64 // Amount in øre, negative for expenses
	Currency     string
	Status       Status
	Source       SourceType
	FlowType     FlowType
	IsTransfer   bool
	IsExcluded   bool
	DedupHash    string
	DocumentHash string
	Metadata     Metadata
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// DedupHash identifies a transaction across uploads by date, normalized
// description, final signed amount and source.
func DedupHash(date time.Time, description string, amount int64, source SourceType) string {
	h := sha256.New()
	h.Write([]byte(date.Format(time.DateOnly)))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(strings.TrimSpace(description))))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(amount, 10)))
	h.Write([]byte{0})
	h.Write([]byte(source))

	return hex.EncodeToString(h.Sum(nil))
}
