package ports

import (
	"context"

	"nbu-currency/internal/domain/model"

	"github.com/shopspring/decimal"
)

type BankService interface {
	UpdateFromDocument(ctx context.Context, doc []byte) error
	UpdateFromSource(ctx context.Context, source string) error
	RefreshRates(ctx context.Context) error
	Convert(amount int64, from, to string) (int64, error)
	Rate(from, to string) (decimal.Decimal, error)
	// Snapshot carries the table together with the metadata of the same update.
	Snapshot() model.Snapshot
}
