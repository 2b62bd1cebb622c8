package flow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/kontoflyt/internal/flow"
	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

func TestClassify(t *testing.T) {
	type args struct {
		source      transaction.SourceType
		description string
		amount      int64
		context     string
	}

	type testCase struct {
		name       string
		args       args
		wantFlow   transaction.FlowType
		wantReason string
	}

	tests := []testCase{
		{
			name:       "Straksbetaling incoming is income",
			args:       args{transaction.SourcePDF, "Straksbetaling fra Ola Nordmann", 50000, ""},
			wantFlow:   transaction.FlowIncome,
			wantReason: flow.ReasonInstantPayment,
		},
		{
			name:       "Straksbetaling outgoing with transfer noise is expense",
			args:       args{transaction.SourcePDF, "Straksbetaling overføring til konto 1234", -50000, ""},
			wantFlow:   transaction.FlowExpense,
			wantReason: flow.ReasonInstantPayment,
		},
		{
			name:       "Felleskonto with overføring is expense",
			args:       args{transaction.SourcePDF, "Overføring Felleskonto", 300000, ""},
			wantFlow:   transaction.FlowExpense,
			wantReason: flow.ReasonSharedAccount,
		},
		{
			name:       "Own account transfer",
			args:       args{transaction.SourcePDF, "Overføring mellom egne kontoer", -100000, ""},
			wantFlow:   transaction.FlowTransfer,
			wantReason: flow.ReasonTransfer,
		},
		{
			name:       "English transfer phrase",
			args:       args{transaction.SourcePDF, "Transfer to account 9710.05.12345", -100000, ""},
			wantFlow:   transaction.FlowTransfer,
			wantReason: flow.ReasonTransfer,
		},
		{
			name:       "Giro payment is transfer",
			args:       args{transaction.SourcePDF, "Innbetaling giro", 250000, ""},
			wantFlow:   transaction.FlowTransfer,
			wantReason: flow.ReasonTransfer,
		},
		{
			name:       "Purchase section context",
			args:       args{transaction.SourceXLSX, "Lønn feil", 1000, `{"section":"Kjøp/uttak"}`},
			wantFlow:   transaction.FlowExpense,
			wantReason: flow.ReasonSection,
		},
		{
			name:       "Positive refund",
			args:       args{transaction.SourcePDF, "Retur Elkjøp", 49900, ""},
			wantFlow:   transaction.FlowIncome,
			wantReason: flow.ReasonRefund,
		},
		{
			name:       "Salary keyword",
			args:       args{transaction.SourcePDF, "LØNN ACME AS", 4200000, ""},
			wantFlow:   transaction.FlowIncome,
			wantReason: flow.ReasonIncome,
		},
		{
			name:       "Negative refund word still income",
			args:       args{transaction.SourcePDF, "Refusjon tannlege", -120000, ""},
			wantFlow:   transaction.FlowIncome,
			wantReason: flow.ReasonIncome,
		},
		{
			name:       "Card purchase marker",
			args:       args{transaction.SourcePDF, "VISA 100021 ELKJOP.NO", 99900, ""},
			wantFlow:   transaction.FlowExpense,
			wantReason: flow.ReasonPurchaseToken,
		},
		{
			name:       "Brand star pattern",
			args:       args{transaction.SourcePDF, "PAYPAL *STEAM GAMES", 19900, ""},
			wantFlow:   transaction.FlowExpense,
			wantReason: flow.ReasonPurchaseToken,
		},
		{
			name:       "Curated merchant",
			args:       args{transaction.SourcePDF, "REMA 1000 TORGET", 12550, ""},
			wantFlow:   transaction.FlowExpense,
			wantReason: flow.ReasonPurchaseToken,
		},
		{
			name:       "Positive merchant label safety net",
			args:       args{transaction.SourcePDF, "Baker Brun Bryggen", 8900, ""},
			wantFlow:   transaction.FlowExpense,
			wantReason: flow.ReasonMerchantLabel,
		},
		{
			name:       "Positive with origin prefix is not a merchant",
			args:       args{transaction.SourcePDF, "Fra Kari Nordmann", 8900, ""},
			wantFlow:   transaction.FlowUnknown,
			wantReason: flow.ReasonNoSignal,
		},
		{
			name:       "Negative fallback",
			args:       args{transaction.SourcePDF, "1234 5678", -5000, ""},
			wantFlow:   transaction.FlowExpense,
			wantReason: flow.ReasonNegative,
		},
		{
			name:       "Positive digits only is unknown",
			args:       args{transaction.SourcePDF, "1234 5678", 5000, ""},
			wantFlow:   transaction.FlowUnknown,
			wantReason: flow.ReasonNoSignal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := flow.Classify(tt.args.source, tt.args.description, tt.args.amount, tt.args.context)
			assert.Equal(t, tt.wantFlow, got.Flow)
			assert.Equal(t, tt.wantReason, got.Reason)
		})
	}
}

func TestIsTransfer_PolicyVetoes(t *testing.T) {
	assert.True(t, flow.IsTransfer("Overføring til sparekonto"))
	assert.False(t, flow.IsTransfer("Straksbetaling overføring"))
	assert.False(t, flow.IsTransfer("Overføring Felleskonto"))
	assert.False(t, flow.IsTransfer("REMA 1000"))
}

func TestExtractSection(t *testing.T) {
	tests := []struct {
		context string
		want    flow.Section
	}{
		{`{"section":"Kjøp/uttak"}`, flow.SectionPurchase},
		{`{"Seksjon":"Innbetalinger"}`, flow.SectionPayment},
		{"Purchases and withdrawals", flow.SectionPurchase},
		{"Payments", flow.SectionPayment},
		{`{"section":"Annet"}`, flow.SectionNone},
		{"", flow.SectionNone},
		{"{not json kjøp", flow.SectionPurchase},
	}

	for _, tt := range tests {
		t.Run(tt.context, func(t *testing.T) {
			got, _ := flow.ExtractSection(tt.context)
			assert.Equal(t, tt.want, got)
		})
	}
}
