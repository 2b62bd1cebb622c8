package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

func params(desc string, amount int64, date time.Time) transaction.CreateParams {
	return transaction.CreateParams{
		Classified: transaction.Classified{
			Candidate: transaction.Candidate{
				Date:        date,
				Description: desc,
				Amount:      amount,
				Status:      transaction.StatusBooked,
			},
			Currency: "NOK",
			Source:   transaction.SourcePDF,
			FlowType: transaction.FlowExpense,
		},
		DocumentHash: "doc",
	}
}

func TestService_List(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *transaction.MockRepository)
		wantLen   int
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					ListTransactions(gomock.Any(), transaction.ListFilter{}).
					Return([]*transaction.Transaction{{ID: uuid.New()}, {ID: uuid.New()}}, nil)
			},
			wantLen: 2,
		},
		{
			name: "Error",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					ListTransactions(gomock.Any(), transaction.ListFilter{}).
					Return(nil, errors.New("list error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := transaction.NewService(repo)
			got, err := svc.List(context.Background(), transaction.ListFilter{})

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestService_ImportBatch_NoDuplicates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	svc := transaction.NewService(repo)

	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	batch := []transaction.CreateParams{params("REMA 1000", -12550, date)}

	repo.EXPECT().BeginImport(gomock.Any(), date, date).Return(itx, nil)
	itx.EXPECT().ExistingHashes(gomock.Any(), []string{batch[0].DedupHash()}).Return(map[string]bool{}, nil)
	itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Len(1)).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, result.Imported, 1)
	assert.Empty(t, result.Duplicates)
	assert.Equal(t, batch[0].DedupHash(), result.Imported[0].DedupHash)
	assert.Equal(t, int64(-12550), result.Imported[0].Amount)
	assert.Equal(t, "doc", result.Imported[0].DocumentHash)
}

func TestService_ImportBatch_SkipsStoredAndRepeatedRows(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	svc := transaction.NewService(repo)

	d1 := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	batch := []transaction.CreateParams{
		params("REMA 1000", -12550, d1),
		params("Kiwi", -4000, d2),
		params("  kiwi ", -4000, d2),
	}

	repo.EXPECT().BeginImport(gomock.Any(), d1, d2).Return(itx, nil)
	itx.EXPECT().ExistingHashes(gomock.Any(), gomock.Len(3)).
		Return(map[string]bool{batch[0].DedupHash(): true}, nil)
	itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Len(1)).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), batch)
	require.NoError(t, err)
	assert.Len(t, result.Imported, 1)
	assert.Len(t, result.Duplicates, 2)
	assert.Equal(t, "Kiwi", result.Imported[0].Description)
}

func TestService_ImportBatch_AllDuplicatesDoesNotCommit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	svc := transaction.NewService(repo)

	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	batch := []transaction.CreateParams{params("REMA 1000", -12550, date)}

	repo.EXPECT().BeginImport(gomock.Any(), date, date).Return(itx, nil)
	itx.EXPECT().ExistingHashes(gomock.Any(), gomock.Any()).
		Return(map[string]bool{batch[0].DedupHash(): true}, nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), batch)
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Len(t, result.Duplicates, 1)
}

func TestService_ImportBatch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := transaction.NewService(transaction.NewMockRepository(ctrl))

	result, err := svc.ImportBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Empty(t, result.Duplicates)
}

func TestService_ImportBatch_BeginError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	repo.EXPECT().BeginImport(gomock.Any(), date, date).Return(nil, errors.New("db down"))

	_, err := svc.ImportBatch(context.Background(), []transaction.CreateParams{params("X", -1, date)})
	assert.ErrorContains(t, err, "begin import")
}

func TestDedupHash_NormalizesDescription(t *testing.T) {
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	a := transaction.DedupHash(date, "  REMA 1000 Torget ", -100, transaction.SourcePDF)
	b := transaction.DedupHash(date, "rema 1000 torget", -100, transaction.SourcePDF)
	c := transaction.DedupHash(date, "rema 1000 torget", -100, transaction.SourceXLSX)
	d := transaction.DedupHash(date, "rema 1000 torget", 100, transaction.SourcePDF)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
}
