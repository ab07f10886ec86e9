// Package ledger is the authoritative owner of customer accounts.
// Every mutating operation runs under one bounded-wait lock covering
// the accounts and the affected terminal store, so each operation is
// all-or-nothing: failure paths leave zero partial state.
package ledger

import (
	"time"

	"github.com/juju/errors"

	"github.com/ManuelRisco/CajeroAutomatico/currency"
	"github.com/ManuelRisco/CajeroAutomatico/helpers"
	"github.com/ManuelRisco/CajeroAutomatico/internal/account"
	"github.com/ManuelRisco/CajeroAutomatico/internal/terminal"
	"github.com/ManuelRisco/CajeroAutomatico/log2"
)

var (
	ErrAuth               = errors.New("Unknown account or wrong password")
	ErrAmountInvalid      = errors.New("Amount must be positive")
	ErrInsufficientFunds  = errors.New("Not enough balance in the account")
	ErrNoTerminal         = errors.New("No terminal selected")
	ErrNotDispensable     = errors.New("Terminal notes cannot compose this amount")
	ErrUnknownDestination = errors.New("Destination account not found")
	ErrSameAccount        = errors.New("Transfer to the same account")
	ErrAccountExists      = errors.New("Account id already registered")
	ErrServiceInvalid     = errors.New("Service name must not be empty or numeric")
	ErrBusy               = errors.New("Ledger is busy, try again")
)

// Info is a read snapshot of one account for reporting.
type Info struct {
	ID      string
	Balance currency.Amount
}

type Ledger struct {
	Log *log2.Log

	lk       helpers.TimedMutex
	lockWait time.Duration
	hasher   account.Hasher
	accounts map[string]*account.Account
	order    []string // registration order, keeps reporting deterministic
	registry *terminal.Registry
}

func New(log *log2.Log, hasher account.Hasher, lockWait time.Duration, registry *terminal.Registry) *Ledger {
	return &Ledger{
		Log:      log,
		lockWait: lockWait,
		hasher:   hasher,
		accounts: make(map[string]*account.Account),
		registry: registry,
	}
}

func (l *Ledger) Terminals() *terminal.Registry { return l.registry }

// lock acquires the operation lock within the configured wait.
func (l *Ledger) lock() error {
	if !l.lk.LockWait(l.lockWait) {
		return errors.Annotatef(ErrBusy, "wait=%s", l.lockWait)
	}
	return nil
}

func (l *Ledger) RegisterAccount(id string, secret string, initial currency.Amount) error {
	hash, err := l.hasher.Hash(secret)
	if err != nil {
		return errors.Annotatef(err, "account=%s", id)
	}
	if err = l.lock(); err != nil {
		return err
	}
	defer l.lk.Unlock()
	if _, ok := l.accounts[id]; ok {
		return errors.Annotatef(ErrAccountExists, "account=%s", id)
	}
	a, err := account.New(id, hash, initial)
	if err != nil {
		return err
	}
	l.accounts[id] = a
	l.order = append(l.order, id)
	l.Log.Debugf("account registered id=%s balance=%s", id, initial.Format100I())
	return nil
}

// authenticate must be called with the operation lock held.
// Unknown id and wrong password are deliberately indistinguishable.
func (l *Ledger) authenticate(id string, secret string) (*account.Account, error) {
	a, ok := l.accounts[id]
	if !ok || !l.hasher.Verify(a.Hash(), secret) {
		return nil, errors.Annotatef(ErrAuth, "account=%s", id)
	}
	return a, nil
}

func (l *Ledger) Authenticate(id string, secret string) error {
	if err := l.lock(); err != nil {
		return err
	}
	defer l.lk.Unlock()
	_, err := l.authenticate(id, secret)
	return err
}

func (l *Ledger) Balance(id string, secret string) (currency.Amount, error) {
	if err := l.lock(); err != nil {
		return 0, err
	}
	defer l.lk.Unlock()
	a, err := l.authenticate(id, secret)
	if err != nil {
		return 0, err
	}
	return a.Balance(), nil
}

// Movements returns the chronological movement log, read-only.
func (l *Ledger) Movements(id string, secret string) ([]account.Movement, error) {
	if err := l.lock(); err != nil {
		return nil, err
	}
	defer l.lk.Unlock()
	a, err := l.authenticate(id, secret)
	if err != nil {
		return nil, err
	}
	return a.Movements(), nil
}

// Accounts returns a reporting snapshot in registration order.
func (l *Ledger) Accounts() ([]Info, error) {
	if err := l.lock(); err != nil {
		return nil, err
	}
	defer l.lk.Unlock()
	infos := make([]Info, 0, len(l.order))
	for _, id := range l.order {
		infos = append(infos, Info{ID: id, Balance: l.accounts[id].Balance()})
	}
	return infos, nil
}
