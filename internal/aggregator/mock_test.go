package aggregator

import (
	"context"

	"github.com/stretchr/testify/mock"

	"arbscan/internal/market"
)

// MockProvider is a testify mock of provider.RatesProvider with a fixed id.
type MockProvider struct {
	mock.Mock
	id string
}

func NewMockProvider(id string) *MockProvider {
	return &MockProvider{id: id}
}

func (m *MockProvider) ID() string { return m.id }

func (m *MockProvider) FetchRates(ctx context.Context, assets, currencies []string) (*market.RateTable, error) {
	args := m.Called(ctx, assets, currencies)
	if table := args.Get(0); table != nil {
		return table.(*market.RateTable), args.Error(1)
	}
	return nil, args.Error(1)
}
