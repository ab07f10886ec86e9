package currency

import (
	"fmt"
	"sort"
	"strings"

	"github.com/juju/errors"
	"github.com/shopspring/decimal"
)

// Amount is integer counting lowest currency unit, e.g. S/.1.20 = 120
type Amount uint32

func (self Amount) Format100I() string { return fmt.Sprint(float32(self) / 100) }

func (self Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(self), -2)
}

// ParseAmount accepts a decimal string with at most two fraction
// digits, e.g. "120" or "99.50". Negative amounts are rejected.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Annotatef(err, "ParseAmount input=%s", s)
	}
	if d.IsNegative() {
		return 0, errors.Errorf("ParseAmount input=%s negative", s)
	}
	if d.Exponent() < -2 {
		return 0, errors.Errorf("ParseAmount input=%s more than 2 fraction digits", s)
	}
	cents := d.Shift(2)
	if !cents.IsInteger() || cents.Cmp(decimal.NewFromInt(int64(^Amount(0)))) > 0 {
		return 0, errors.Errorf("ParseAmount input=%s out of range", s)
	}
	return Amount(cents.IntPart()), nil
}

// Nominal is value of one note
type Nominal Amount

var (
	ErrNominalInvalid = errors.New("Nominal is not valid for this group")
	ErrNominalCount   = errors.New("Not enough nominals for this amount")
)

// NominalGroup counts money comprised of multiple note values.
// note20 : 3
// note50 : 1
// note100: 4
// total  : 510
type NominalGroup struct {
	values map[Nominal]uint
}

func NewNominalGroup(valid []Nominal) *NominalGroup {
	ng := &NominalGroup{}
	ng.SetValid(valid)
	return ng
}

func (self *NominalGroup) Copy() *NominalGroup {
	ng2 := &NominalGroup{
		values: make(map[Nominal]uint, len(self.values)),
	}
	for k, v := range self.values {
		ng2.values[k] = v
	}
	return ng2
}

func (self *NominalGroup) SetValid(valid []Nominal) {
	self.values = make(map[Nominal]uint, len(valid))
	for _, n := range valid {
		if n != 0 {
			self.values[n] = 0
		}
	}
}

func (self *NominalGroup) Valid() []Nominal {
	ns := make([]Nominal, 0, len(self.values))
	for n := range self.values {
		ns = append(ns, n)
	}
	sort.Slice(ns, func(i, j int) bool { return ns[i] > ns[j] })
	return ns
}

func (self *NominalGroup) Clear() {
	for n := range self.values {
		self.values[n] = 0
	}
}

func (self *NominalGroup) Get(n Nominal) (uint, error) {
	stored, ok := self.values[n]
	if !ok {
		return 0, ErrNominalInvalid
	}
	return stored, nil
}

// Has answers whether count notes of n could be paid out right now.
func (self *NominalGroup) Has(n Nominal, count uint) bool {
	return self.values[n] >= count
}

func (self *NominalGroup) Add(n Nominal, count uint) error {
	if _, ok := self.values[n]; !ok {
		return errors.Annotatef(ErrNominalInvalid, "Add(n=%s, c=%d)", Amount(n).Format100I(), count)
	}
	self.values[n] += count
	return nil
}

func (self *NominalGroup) Take(n Nominal, count uint) error {
	if _, ok := self.values[n]; !ok {
		return errors.Annotatef(ErrNominalInvalid, "Take(n=%s, c=%d)", Amount(n).Format100I(), count)
	}
	if self.values[n] < count {
		return errors.Annotatef(ErrNominalCount, "Take(n=%s, c=%d) stored=%d", Amount(n).Format100I(), count, self.values[n])
	}
	self.values[n] -= count
	return nil
}

// AddGroup credits every line of b, all-or-nothing: either all
// nominals of b are valid here and get added, or nothing changes.
func (self *NominalGroup) AddGroup(b *NominalGroup) error {
	for n := range b.values {
		if _, ok := self.values[n]; !ok {
			return errors.Annotatef(ErrNominalInvalid, "AddGroup(n=%s)", Amount(n).Format100I())
		}
	}
	for n, c := range b.values {
		self.values[n] += c
	}
	return nil
}

// TakeGroup debits every line of b, all-or-nothing: if any nominal
// of b is unknown or short, nothing changes.
func (self *NominalGroup) TakeGroup(b *NominalGroup) error {
	for n, c := range b.values {
		if _, ok := self.values[n]; !ok {
			return errors.Annotatef(ErrNominalInvalid, "TakeGroup(n=%s)", Amount(n).Format100I())
		}
		if self.values[n] < c {
			return errors.Annotatef(ErrNominalCount, "TakeGroup(n=%s, c=%d) stored=%d", Amount(n).Format100I(), c, self.values[n])
		}
	}
	for n, c := range b.values {
		self.values[n] -= c
	}
	return nil
}

func (self *NominalGroup) Iter(f func(nominal Nominal, count uint) error) error {
	for nominal, count := range self.values {
		if err := f(nominal, count); err != nil {
			return err
		}
	}
	return nil
}

func (self *NominalGroup) Total() Amount {
	sum := Amount(0)
	for nominal, count := range self.values {
		sum += Amount(nominal) * Amount(count)
	}
	return sum
}

func (self *NominalGroup) String() string {
	parts := make([]string, 0, len(self.values)+1)
	sum := Amount(0)
	for nominal, count := range self.values {
		if count > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", Amount(nominal).Format100I(), count))
			sum += Amount(nominal) * Amount(count)
		}
	}
	sort.Strings(parts)
	parts = append(parts, fmt.Sprintf("total:%s", sum.Format100I()))
	return strings.Join(parts, ",")
}
