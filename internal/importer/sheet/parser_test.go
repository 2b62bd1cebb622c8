package sheet_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/kontoflyt/internal/importer/sheet"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParser_Kredittkort(t *testing.T) {
	csv := `Kontoutskrift kredittkort;;;;;
Periode;01.03.2026 - 31.03.2026;;;;

Dato;Beskrivelse;Brukersted;Beløp;Valuta;Seksjon
12.03.2026;Varekjøp;KIWI 505 MAJORSTUEN;129,50;nok;Kjøp/uttak
14.03.2026;Innbetaling kredittkort;;5 000,00;NOK;Innbetalinger
;;;;;
Sum;;;5 129,50;;
`

	p := sheet.NewParser()
	res, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)

	assert.Equal(t, "kredittkort", res.Profile)
	assert.Equal(t, "UTF-8", res.Charset)
	assert.Empty(t, res.Invalid)

	assert.Equal(t, date(2026, 3, 12), res.Rows[0].Date)
	assert.Equal(t, "Varekjøp", res.Rows[0].Description)
	assert.Equal(t, "KIWI 505 MAJORSTUEN", res.Rows[0].Merchant)
	assert.Equal(t, int64(12950), res.Rows[0].Amount)
	assert.Equal(t, "NOK", res.Rows[0].Currency)
	assert.JSONEq(t, `{"section":"Kjøp/uttak"}`, res.Rows[0].Context)
	assert.Equal(t, 5, res.Rows[0].LineNumber)

	assert.Equal(t, int64(500000), res.Rows[1].Amount)
	assert.JSONEq(t, `{"section":"Innbetalinger"}`, res.Rows[1].Context)
}

func TestParser_SplitColumns(t *testing.T) {
	csv := `Bokføringsdato;Rentedato;Arkivref;Type;Tekst;Ut av konto;Inn på konto
13.03.2026;13.03.2026;123;VARER;Rema 1000 Torget;1 234,50;
11.03.2026;11.03.2026;124;LØNN;Lønn ACME AS;;42 000,00
`

	p := sheet.NewParser()
	res, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)

	assert.Equal(t, "bokforing", res.Profile)
	assert.Equal(t, int64(-123450), res.Rows[0].Amount)
	assert.JSONEq(t, `{"type":"VARER"}`, res.Rows[0].Context)
	assert.Equal(t, int64(4200000), res.Rows[1].Amount)
}

func TestParser_Forklaring(t *testing.T) {
	csv := "Dato\tForklaring\tRentedato\tUt fra konto\tInn på konto\n" +
		"01.02.2026\tSpotify P3A1B2\t01.02.2026\t119,00\t\n"

	p := sheet.NewParser()
	res, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	assert.Equal(t, "forklaring", res.Profile)
	assert.Equal(t, int64(-11900), res.Rows[0].Amount)
	assert.Empty(t, res.Rows[0].Context)
}

func TestParser_InvalidRows(t *testing.T) {
	csv := `Dato;Tekst;Beløp
31.02.2026;Ugyldig dato;-10,00
12.03.2026;Ugyldig beløp;abc
12.03.2026;Tomt beløp;
12.03.2026;;-10,00
12.03.2026;Gyldig;-10,00
`

	p := sheet.NewParser()
	res, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Len(t, res.Invalid, 4)

	assert.Equal(t, 2, res.Invalid[0].LineNumber)
	assert.Contains(t, res.Invalid[0].Err, "date")
	assert.Contains(t, res.Invalid[1].Err, "amount")
	assert.Contains(t, res.Invalid[3].Err, "description")
}

func TestParser_Latin1Encoding(t *testing.T) {
	utf8CSV := "Dato;Tekst;Beløp\n30.01.2026;PÅFYLLING ØRE;-10,00\n"

	latin1Bytes, err := charmap.Windows1252.NewEncoder().Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	p := sheet.NewParser()
	res, err := p.Parse(bytes.NewReader(latin1Bytes))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	assert.Equal(t, "PÅFYLLING ØRE", res.Rows[0].Description)
}

func TestParser_DifferentColumnOrderAndCase(t *testing.T) {
	csv := `Random;MetaData
BELØP;tekst;dato;Ignored
-10,00;TEST_ORDER;2026-01-30;XXX
`

	p := sheet.NewParser()
	res, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	assert.Equal(t, "TEST_ORDER", res.Rows[0].Description)
	assert.Equal(t, int64(-1000), res.Rows[0].Amount)
	assert.Equal(t, date(2026, 1, 30), res.Rows[0].Date)
}

func TestParser_EmptyFile(t *testing.T) {
	p := sheet.NewParser()
	_, err := p.Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, sheet.ErrNoProfile)
}

func TestParser_HeaderOnly(t *testing.T) {
	p := sheet.NewParser()
	res, err := p.Parse(strings.NewReader("Dato;Tekst;Beløp"))
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
}

func TestParser_Amounts(t *testing.T) {
	tests := []struct {
		cell string
		want int64
	}{
		{"-1.234.567,89", -123456789},
		{"1 234,56", 123456},
		{"1\u00a0234,56", 123456},
		{"−588,74", -58874},
		{"129,50 kr", 12950},
		{"119.00", 11900},
		{"45", 4500},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			csv := "Dato;Tekst;Beløp\n30.01.2026;X;" + tt.cell + "\n"

			res, err := sheet.NewParser().Parse(strings.NewReader(csv))
			require.NoError(t, err)
			require.Len(t, res.Rows, 1)
			assert.Equal(t, tt.want, res.Rows[0].Amount)
		})
	}
}
