// Package terminal models one cash-dispensing unit: its note
// inventory, location and append-only transaction history.
package terminal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/juju/errors"

	"github.com/ManuelRisco/CajeroAutomatico/currency"
)

var ErrCountNegative = errors.New("Note count must not be negative")

// Kind tags a history record with the operation that produced it.
type Kind string

const (
	KindWithdrawal  Kind = "withdrawal"
	KindDeposit     Kind = "deposit"
	KindTransfer    Kind = "transfer"
	KindBillPayment Kind = "bill-payment"
)

// Record is one line of terminal history. Immutable once appended.
type Record struct {
	ID        uuid.UUID
	Time      time.Time
	Kind      Kind
	Amount    currency.Amount
	AccountID string
	Service   string // bill payments only
}

func (r Record) String() string {
	s := fmt.Sprintf("%s - %s amount=%s account=%s",
		r.Time.Format("2006-01-02 15:04:05"), r.Kind, r.Amount.Format100I(), r.AccountID)
	if r.Service != "" {
		s += " service=" + r.Service
	}
	return s
}

// Terminal mutation (store, history) must happen under the ledger
// operation lock; the registry mutex only guards membership.
type Terminal struct {
	ID       uint32
	Location string
	store    *currency.NominalGroup
	history  []Record
}

// Total is always recomputed from the store, never cached.
func (t *Terminal) Total() currency.Amount { return t.store.Total() }

// Store returns a snapshot copy for planning and reporting.
func (t *Terminal) Store() *currency.NominalGroup { return t.store.Copy() }

// Dispense removes a whole breakdown from the inventory,
// all-or-nothing.
func (t *Terminal) Dispense(b *currency.NominalGroup) error {
	return errors.Annotatef(t.store.TakeGroup(b), "terminal=%d %s", t.ID, t.Location)
}

// Accept adds deposited notes to the inventory, all-or-nothing.
func (t *Terminal) Accept(b *currency.NominalGroup) error {
	return errors.Annotatef(t.store.AddGroup(b), "terminal=%d %s", t.ID, t.Location)
}

func (t *Terminal) Replenish(n currency.Nominal, count int) error {
	if count < 0 {
		return errors.Annotatef(ErrCountNegative, "terminal=%d nominal=%s count=%d", t.ID, currency.Amount(n).Format100I(), count)
	}
	return errors.Annotatef(t.store.Add(n, uint(count)), "terminal=%d", t.ID)
}

func (t *Terminal) Record(kind Kind, amount currency.Amount, accountID string, service string) Record {
	r := Record{
		ID:        uuid.New(),
		Time:      time.Now(),
		Kind:      kind,
		Amount:    amount,
		AccountID: accountID,
		Service:   service,
	}
	t.history = append(t.history, r)
	return r
}

// History returns a chronological copy, never reordered or pruned.
func (t *Terminal) History() []Record {
	hs := make([]Record, len(t.history))
	copy(hs, t.history)
	return hs
}
