package ledger

import (
	"fmt"
	"strings"

	"github.com/juju/errors"

	"github.com/ManuelRisco/CajeroAutomatico/currency"
	"github.com/ManuelRisco/CajeroAutomatico/internal/terminal"
)

// Withdraw dispenses amount in cash at trm and debits the account.
// Returns the dispensed note breakdown. Checks run strictly before
// mutations: store debit, balance debit and both history appends
// happen together or not at all.
func (l *Ledger) Withdraw(id string, secret string, amount currency.Amount, trm *terminal.Terminal) (*currency.NominalGroup, error) {
	if err := l.lock(); err != nil {
		return nil, err
	}
	defer l.lk.Unlock()

	a, err := l.authenticate(id, secret)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, errors.Annotatef(ErrAmountInvalid, "withdraw account=%s", id)
	}
	if trm == nil {
		return nil, errors.Annotatef(ErrNoTerminal, "withdraw account=%s", id)
	}
	if !a.CanDebit(amount) {
		return nil, errors.Annotatef(ErrInsufficientFunds, "withdraw account=%s amount=%s balance=%s", id, amount.Format100I(), a.Balance().Format100I())
	}
	plan, err := currency.Breakdown(trm.Store(), amount)
	if err != nil {
		return nil, errors.Annotatef(ErrNotDispensable, "terminal=%d %s amount=%s", trm.ID, trm.Location, amount.Format100I())
	}
	// plan came from a snapshot taken under the operation lock,
	// Dispense cannot run short here
	if err = trm.Dispense(plan); err != nil {
		return nil, err
	}

	a.Debit(amount, fmt.Sprintf("Retiro: -S/.%s", amount.Format100I()))
	trm.Record(terminal.KindWithdrawal, amount, id, "")
	l.Log.Infof("withdraw account=%s amount=%s terminal=%d notes=%s", id, amount.Format100I(), trm.ID, plan.String())
	return plan, nil
}

// Deposit accepts notes at trm and credits the account by
// their total value.
func (l *Ledger) Deposit(id string, secret string, notes *currency.NominalGroup, trm *terminal.Terminal) (currency.Amount, error) {
	if err := l.lock(); err != nil {
		return 0, err
	}
	defer l.lk.Unlock()

	a, err := l.authenticate(id, secret)
	if err != nil {
		return 0, err
	}
	if trm == nil {
		return 0, errors.Annotatef(ErrNoTerminal, "deposit account=%s", id)
	}
	total := notes.Total()
	if total == 0 {
		return 0, errors.Annotatef(ErrAmountInvalid, "deposit account=%s", id)
	}
	// Accept is all-or-nothing, an unknown nominal rejects the
	// whole deposit before any mutation
	if err = trm.Accept(notes); err != nil {
		return 0, err
	}

	a.Credit(total, fmt.Sprintf("Deposito: +S/.%s", total.Format100I()))
	trm.Record(terminal.KindDeposit, total, id, "")
	l.Log.Infof("deposit account=%s total=%s terminal=%d", id, total.Format100I(), trm.ID)
	return total, nil
}

// Transfer moves amount between accounts. No physical cash moves;
// trm may be nil, then no terminal record is written.
func (l *Ledger) Transfer(srcID string, secret string, dstID string, amount currency.Amount, trm *terminal.Terminal) error {
	if err := l.lock(); err != nil {
		return err
	}
	defer l.lk.Unlock()

	src, err := l.authenticate(srcID, secret)
	if err != nil {
		return err
	}
	dst, ok := l.accounts[dstID]
	if !ok {
		return errors.Annotatef(ErrUnknownDestination, "transfer dest=%s", dstID)
	}
	if srcID == dstID {
		return errors.Annotatef(ErrSameAccount, "transfer account=%s", srcID)
	}
	if amount == 0 {
		return errors.Annotatef(ErrAmountInvalid, "transfer account=%s", srcID)
	}
	if !src.CanDebit(amount) {
		return errors.Annotatef(ErrInsufficientFunds, "transfer account=%s amount=%s balance=%s", srcID, amount.Format100I(), src.Balance().Format100I())
	}

	src.Debit(amount, fmt.Sprintf("Transferencia a %s: -S/.%s", dstID, amount.Format100I()))
	dst.Credit(amount, fmt.Sprintf("Transferencia de %s: +S/.%s", srcID, amount.Format100I()))
	if trm != nil {
		trm.Record(terminal.KindTransfer, amount, srcID, "")
	}
	l.Log.Infof("transfer src=%s dst=%s amount=%s", srcID, dstID, amount.Format100I())
	return nil
}

// PayService debits amount for a named service, no cash dispensed.
// trm may be nil, then no terminal record is written.
func (l *Ledger) PayService(id string, secret string, amount currency.Amount, service string, trm *terminal.Terminal) error {
	if err := l.lock(); err != nil {
		return err
	}
	defer l.lk.Unlock()

	a, err := l.authenticate(id, secret)
	if err != nil {
		return err
	}
	if err = validateService(service); err != nil {
		return err
	}
	if amount == 0 {
		return errors.Annotatef(ErrAmountInvalid, "pay account=%s service=%s", id, service)
	}
	if !a.CanDebit(amount) {
		return errors.Annotatef(ErrInsufficientFunds, "pay account=%s amount=%s balance=%s", id, amount.Format100I(), a.Balance().Format100I())
	}

	a.Debit(amount, fmt.Sprintf("Pago de servicio '%s': -S/.%s", service, amount.Format100I()))
	if trm != nil {
		trm.Record(terminal.KindBillPayment, amount, id, service)
	}
	l.Log.Infof("pay account=%s service=%s amount=%s", id, service, amount.Format100I())
	return nil
}

// Replenish adds count notes of nominal n to a terminal's store.
func (l *Ledger) Replenish(terminalID uint32, n currency.Nominal, count int) error {
	if err := l.lock(); err != nil {
		return err
	}
	defer l.lk.Unlock()

	trm, err := l.registry.Get(terminalID)
	if err != nil {
		return err
	}
	if err = trm.Replenish(n, count); err != nil {
		return err
	}
	l.Log.Infof("replenish terminal=%d nominal=%s count=%d total=%s", trm.ID, currency.Amount(n).Format100I(), count, trm.Total().Format100I())
	return nil
}

func validateService(service string) error {
	s := strings.TrimSpace(service)
	if s == "" {
		return errors.Annotatef(ErrServiceInvalid, "service=%q", service)
	}
	numeric := true
	for _, r := range s {
		if r < '0' || r > '9' {
			numeric = false
			break
		}
	}
	if numeric {
		return errors.Annotatef(ErrServiceInvalid, "service=%q", service)
	}
	return nil
}
