package service_interfaces

import (
	"context"

	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
)

type AccountService interface {
	// CreateAccount opens a zero-balance account in the given currency under
	// a freshly allocated random id.
	CreateAccount(ctx context.Context, currency string) (domain.Account, error)

	GetAccount(ctx context.Context, id int64) (domain.Account, error)
}
