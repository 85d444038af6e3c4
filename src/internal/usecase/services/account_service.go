package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/ledgerworks/funds-transfer-service/src/internal/adapter/repository/repo_interfaces"
	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
	"github.com/ledgerworks/funds-transfer-service/src/internal/logger"
	"github.com/ledgerworks/funds-transfer-service/src/internal/usecase/service_interfaces"
)

// Verify that AccountService implements the service_interfaces.AccountService interface
var _ service_interfaces.AccountService = (*AccountService)(nil)

// maxIDAllocationAttempts bounds how often a fresh random id is drawn when
// the previous draw collided with an existing account.
const maxIDAllocationAttempts = 100

type AccountService struct {
	store repo_interfaces.AccountStore
}

func NewAccountService(store repo_interfaces.AccountStore) *AccountService {
	return &AccountService{store: store}
}

func (s *AccountService) CreateAccount(ctx context.Context, currency string) (domain.Account, error) {
	logger.Info("account service create account request", logger.Fields{
		"currency": currency,
	})

	for attempt := 1; attempt <= maxIDAllocationAttempts; attempt++ {
		id, err := randomAccountID()
		if err != nil {
			return domain.Account{}, fmt.Errorf("allocate account id: %w", err)
		}

		exists, err := s.store.Exists(ctx, id)
		if err != nil {
			return domain.Account{}, fmt.Errorf("check account id: %w", err)
		}
		if exists {
			continue
		}

		account, err := s.store.Create(ctx, domain.Account{
			ID:       id,
			Currency: currency,
			Balance:  decimal.Zero,
		})
		if err != nil {
			// Another request may have taken the id between the existence
			// check and the insert; draw again.
			if errors.Is(err, domain.ErrDuplicateAccount) {
				continue
			}
			return domain.Account{}, err
		}

		logger.Info("account service create account success", logger.Fields{
			"accountId": domain.FormatAccountID(account.ID),
			"currency":  account.Currency,
		})

		return account, nil
	}

	return domain.Account{}, fmt.Errorf("allocate account id: no free id after %d attempts", maxIDAllocationAttempts)
}

func (s *AccountService) GetAccount(ctx context.Context, id int64) (domain.Account, error) {
	return s.store.GetByID(ctx, id)
}

// randomAccountID draws a uniform id in [1, domain.MaxAccountID].
func randomAccountID() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(domain.MaxAccountID))
	if err != nil {
		return 0, err
	}
	return n.Int64() + 1, nil
}
