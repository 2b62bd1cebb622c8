package merchant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/kontoflyt/internal/merchant"
)

func TestNormalize(t *testing.T) {
	type testCase struct {
		name         string
		raw          string
		wantMerchant string
		wantKind     merchant.Kind
	}

	tests := []testCase{
		{
			name:         "Reference code and domain collapse to brand",
			raw:          "100021 ELKJOP.NO",
			wantMerchant: "ELKJOP",
			wantKind:     merchant.KindName,
		},
		{
			name:         "Trailing currency symbol stripped",
			raw:          "NETFLIX.COM 129,00 €",
			wantMerchant: "Netflix",
			wantKind:     merchant.KindName,
		},
		{
			name:         "Numeric plus currency is code",
			raw:          "100022 NOK",
			wantMerchant: merchant.Unknown,
			wantKind:     merchant.KindCode,
		},
		{
			name:         "Card prefix stripped before brand lookup",
			raw:          "VISA   100021  ELKJOP.NO",
			wantMerchant: "ELKJOP",
			wantKind:     merchant.KindName,
		},
		{
			name:         "Currency only is code",
			raw:          "NOK",
			wantMerchant: merchant.Unknown,
			wantKind:     merchant.KindCode,
		},
		{
			name:         "Currency then amount is code",
			raw:          "kr 250,00",
			wantMerchant: merchant.Unknown,
			wantKind:     merchant.KindCode,
		},
		{
			name:         "Empty is unknown",
			raw:          "   ",
			wantMerchant: merchant.Unknown,
			wantKind:     merchant.KindUnknown,
		},
		{
			name:         "Bare payment rail is unknown",
			raw:          "VISA",
			wantMerchant: merchant.Unknown,
			wantKind:     merchant.KindUnknown,
		},
		{
			name:         "Lower case name is title cased",
			raw:          "baker brun bryggen",
			wantMerchant: "Baker Brun Bryggen",
			wantKind:     merchant.KindName,
		},
		{
			name:         "All caps name is kept",
			raw:          "SOME SHOP AS 123,45 NOK",
			wantMerchant: "SOME SHOP AS",
			wantKind:     merchant.KindName,
		},
		{
			name:         "Purchase prefix and date stripped",
			raw:          "Varekjøp 12.03 kaffebrenneriet",
			wantMerchant: "Kaffebrenneriet",
			wantKind:     merchant.KindName,
		},
		{
			name:         "Chain branch collapses",
			raw:          "KIWI 505 MAJORSTUEN",
			wantMerchant: "KIWI",
			wantKind:     merchant.KindName,
		},
		{
			name:         "Unknown domain keeps host",
			raw:          "dinside.no",
			wantMerchant: "Dinside",
			wantKind:     merchant.KindName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := merchant.Normalize(tt.raw)
			assert.Equal(t, tt.wantMerchant, got.Merchant)
			assert.Equal(t, tt.wantKind, got.Kind)
		})
	}
}

func TestNormalize_CodeLikeNeverName(t *testing.T) {
	codeLike := []string{
		"12345", "100022 NOK", "NOK 100", "1 234,50", "KR", "*1234",
		"$ 12", "12,00 €", "-€5", "£", "kr 250", "1.299 ¥",
	}

	for _, raw := range codeLike {
		got := merchant.Normalize(raw)
		assert.NotEqual(t, merchant.KindName, got.Kind, raw)
		assert.Equal(t, merchant.Unknown, got.Merchant, raw)
	}
}

func TestNormalize_Fallback(t *testing.T) {
	t.Run("Promotes named fallback", func(t *testing.T) {
		got := merchant.Normalize("100022 NOK", "Spotify P3A1B2")
		assert.Equal(t, "Spotify", got.Merchant)
		assert.Equal(t, merchant.KindName, got.Kind)
		assert.Equal(t, "100022 NOK", got.Raw)
	})

	t.Run("Code fallback is not promoted", func(t *testing.T) {
		got := merchant.Normalize("12345", "999 NOK")
		assert.Equal(t, merchant.Unknown, got.Merchant)
		assert.Equal(t, merchant.KindCode, got.Kind)
	})

	t.Run("Named raw ignores fallback", func(t *testing.T) {
		got := merchant.Normalize("Rema 1000 Torget", "Spotify")
		assert.Equal(t, "REMA 1000", got.Merchant)
	})
}
