// Package account holds customer accounts: balance, credential hash
// and the append-only movement log. Accounts are owned by the ledger
// and must only be mutated under its operation lock.
package account

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/juju/errors"

	"github.com/ManuelRisco/CajeroAutomatico/currency"
)

var ErrIDInvalid = errors.New("Account id must not be empty or start with '-'")

// Movement is one recorded balance-affecting event.
// Immutable once appended, insertion order = chronological order.
type Movement struct {
	ID    uuid.UUID
	Time  time.Time
	Delta int64 // minor units, signed
	Note  string
}

func (m Movement) String() string {
	return fmt.Sprintf("%s - %s", m.Time.Format("2006-01-02 15:04:05"), m.Note)
}

type Account struct {
	ID        string
	hash      string
	balance   currency.Amount
	movements []Movement
}

// ValidateID checks the registration rule for account ids.
func ValidateID(id string) error {
	if id == "" || strings.HasPrefix(id, "-") {
		return errors.Annotatef(ErrIDInvalid, "id=%s", id)
	}
	return nil
}

func New(id string, hash string, initial currency.Amount) (*Account, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	return &Account{ID: id, hash: hash, balance: initial}, nil
}

func (a *Account) Hash() string              { return a.hash }
func (a *Account) Balance() currency.Amount  { return a.balance }
func (a *Account) CanDebit(x currency.Amount) bool { return a.balance >= x }

// Debit lowers the balance and appends a movement. The caller must
// have verified funds; going negative is a programmer error.
func (a *Account) Debit(x currency.Amount, note string) Movement {
	if x > a.balance {
		panic(fmt.Sprintf("code error account.Debit id=%s balance=%d debit=%d", a.ID, a.balance, x))
	}
	a.balance -= x
	return a.append(-int64(x), note)
}

func (a *Account) Credit(x currency.Amount, note string) Movement {
	a.balance += x
	return a.append(int64(x), note)
}

func (a *Account) append(delta int64, note string) Movement {
	m := Movement{
		ID:    uuid.New(),
		Time:  time.Now(),
		Delta: delta,
		Note:  note,
	}
	a.movements = append(a.movements, m)
	return m
}

// Movements returns a chronological copy of the movement log.
func (a *Account) Movements() []Movement {
	ms := make([]Movement, len(a.movements))
	copy(ms, a.movements)
	return ms
}
