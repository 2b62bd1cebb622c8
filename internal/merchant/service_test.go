package merchant_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/kontoflyt/internal/merchant"
)

func TestService_Resolve(t *testing.T) {
	type testCase struct {
		name       string
		raw        string
		setupMocks func(repo *merchant.MockRepository)
		want       merchant.Result
		wantErr    bool
	}

	tests := []testCase{
		{
			name: "No alias keeps normalized name",
			raw:  "100021 ELKJOP.NO",
			setupMocks: func(repo *merchant.MockRepository) {
				repo.EXPECT().FindAlias(gomock.Any(), "100021 ELKJOP.NO").Return("", nil)
			},
			want: merchant.Result{Merchant: "ELKJOP", Raw: "100021 ELKJOP.NO", Kind: merchant.KindName},
		},
		{
			name: "Alias rescues code",
			raw:  "100022  NOK",
			setupMocks: func(repo *merchant.MockRepository) {
				repo.EXPECT().FindAlias(gomock.Any(), "100022 NOK").Return("Barnehagen", nil)
			},
			want: merchant.Result{Merchant: "Barnehagen", Raw: "100022 NOK", Kind: merchant.KindName},
		},
		{
			name: "Repository error",
			raw:  "Kiwi",
			setupMocks: func(repo *merchant.MockRepository) {
				repo.EXPECT().FindAlias(gomock.Any(), "Kiwi").Return("", errors.New("db down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := merchant.NewMockRepository(ctrl)
			tt.setupMocks(repo)

			got, err := merchant.NewService(repo).Resolve(context.Background(), tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Learn(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := merchant.NewMockRepository(ctrl)
	repo.EXPECT().CreateAlias(gomock.Any(), "100022", "Barnehagen").Return(nil)

	svc := merchant.NewService(repo)

	require.NoError(t, svc.Learn(context.Background(), " 100022 ", "Barnehagen"))
	assert.Error(t, svc.Learn(context.Background(), "", "Barnehagen"))
}
