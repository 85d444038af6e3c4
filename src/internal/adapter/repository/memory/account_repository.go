package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ledgerworks/funds-transfer-service/src/internal/adapter/repository/repo_interfaces"
	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
)

// Verify that AccountRepository implements the store contract
var _ repo_interfaces.AccountStore = (*AccountRepository)(nil)

// defaultLockWait bounds how long a unit of work blocks on a contended row
// before the wait is reported as a conflict, mirroring how the database
// engine turns lock waits gone wrong into retryable errors.
const defaultLockWait = 5 * time.Second

// AccountRepository is an in-memory account store with the same locking and
// version-token semantics as the postgres one: an exclusive per-row lock held
// for the unit of work, a version bump on lock acquisition and on save, and
// staged writes that only become visible at commit.
type AccountRepository struct {
	mu       sync.Mutex
	accounts map[int64]*accountRecord
	lockWait time.Duration
}

type accountRecord struct {
	lock    chan struct{}
	account domain.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[int64]*accountRecord),
		lockWait: defaultLockWait,
	}
}

func (r *AccountRepository) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.ID]; ok {
		return domain.Account{}, fmt.Errorf("create account %d: %w", account.ID, domain.ErrDuplicateAccount)
	}

	now := time.Now().UTC()
	account.Version = 0
	account.CreatedAt = now
	account.UpdatedAt = now

	r.accounts[account.ID] = &accountRecord{
		lock:    make(chan struct{}, 1),
		account: account,
	}

	return account, nil
}

func (r *AccountRepository) GetByID(_ context.Context, id int64) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return record.account, nil
}

func (r *AccountRepository) Exists(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.accounts[id]
	return ok, nil
}

func (r *AccountRepository) Transact(ctx context.Context, fn func(tx repo_interfaces.AccountTx) error) error {
	tx := &accountTx{
		repo:   r,
		locked: make(map[int64]*accountRecord),
		staged: make(map[int64]domain.Account),
	}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}

	tx.commit()
	return nil
}

type accountTx struct {
	repo   *AccountRepository
	locked map[int64]*accountRecord
	staged map[int64]domain.Account
}

func (t *accountTx) GetForUpdate(ctx context.Context, id int64) (domain.Account, error) {
	if _, ok := t.locked[id]; ok {
		staged := t.staged[id]
		staged.Version++
		t.staged[id] = staged
		return staged, nil
	}

	t.repo.mu.Lock()
	record, ok := t.repo.accounts[id]
	t.repo.mu.Unlock()
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	select {
	case record.lock <- struct{}{}:
	case <-time.After(t.repo.lockWait):
		return domain.Account{}, fmt.Errorf("lock account %d: wait exceeded %s: %w",
			id, t.repo.lockWait, domain.ErrConflict)
	case <-ctx.Done():
		return domain.Account{}, ctx.Err()
	}

	t.locked[id] = record

	// Forced version advance on lock acquisition, committed with the rest
	// of the unit of work.
	t.repo.mu.Lock()
	staged := record.account
	t.repo.mu.Unlock()
	staged.Version++
	t.staged[id] = staged

	return staged, nil
}

func (t *accountTx) Save(_ context.Context, account domain.Account) (domain.Account, error) {
	if _, ok := t.locked[account.ID]; !ok {
		return domain.Account{}, fmt.Errorf("save account %d: row not locked in this unit of work", account.ID)
	}

	if current := t.staged[account.ID]; account.Version != current.Version {
		return domain.Account{}, fmt.Errorf("save account %d: version %d no longer current: %w",
			account.ID, account.Version, domain.ErrConflict)
	}

	account.Version++
	account.UpdatedAt = time.Now().UTC()
	t.staged[account.ID] = account

	return account, nil
}

func (t *accountTx) commit() {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()

	for id, record := range t.locked {
		record.account = t.staged[id]
	}
}

func (t *accountTx) release() {
	for id, record := range t.locked {
		<-record.lock
		delete(t.locked, id)
	}
}
