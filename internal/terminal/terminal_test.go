package terminal

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelRisco/CajeroAutomatico/currency"
	"github.com/ManuelRisco/CajeroAutomatico/log2"
)

var testSeed = Seed{Counts: map[currency.Nominal]uint{200: 8, 100: 10, 50: 6, 20: 10}}

func newTestRegistry(t testing.TB) *Registry {
	return NewRegistry(log2.NewTest(t, log2.LDebug), testSeed)
}

func TestValidateLocation(t *testing.T) {
	t.Parallel()
	cases := []struct {
		location string
		ok       bool
	}{
		{"Chorrillos", true},
		{"Los Olivos", true},
		{"Zona 7", true},
		{"", false},
		{"   ", false},
		{"1234", false},
		{"Surco@", false},
		{"Surco!", false},
	}
	for _, c := range cases {
		err := ValidateLocation(c.location)
		if c.ok {
			assert.NoError(t, err, "location=%q", c.location)
		} else {
			assert.Equal(t, ErrLocationInvalid, errors.Cause(err), "location=%q", c.location)
		}
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)

	t1, err := r.Register("Chorrillos")
	require.NoError(t, err)
	assert.EqualValues(t, 1, t1.ID)
	assert.EqualValues(t, 8*200+10*100+6*50+10*20, t1.Total())

	_, err = r.Register("chorrillos")
	assert.Equal(t, ErrLocationExists, errors.Cause(err), "duplicate check is case-insensitive")

	_, err = r.Register("@nope")
	assert.Equal(t, ErrLocationInvalid, errors.Cause(err))

	t2, err := r.Register("Los Olivos")
	require.NoError(t, err)
	assert.EqualValues(t, 2, t2.ID)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, t1.ID, list[0].ID)
	assert.Equal(t, t2.ID, list[1].ID)

	got, err := r.Get(t2.ID)
	require.NoError(t, err)
	assert.Equal(t, t2, got)
	_, err = r.Get(99)
	assert.True(t, errors.IsNotFound(err))

	found, err := r.FindByLocation("LOS olivos")
	require.NoError(t, err)
	assert.Equal(t, t2, found)
	_, err = r.FindByLocation("Surco")
	assert.True(t, errors.IsNotFound(err))
}

func TestReplenish(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)
	trm, err := r.Register("Surco")
	require.NoError(t, err)
	before := trm.Total()

	require.NoError(t, trm.Replenish(50, 4))
	assert.Equal(t, before+4*50, trm.Total())

	err = trm.Replenish(50, -1)
	assert.Equal(t, ErrCountNegative, errors.Cause(err))
	err = trm.Replenish(13, 1)
	assert.Equal(t, currency.ErrNominalInvalid, errors.Cause(err))
	assert.Equal(t, before+4*50, trm.Total(), "failed replenish must not mutate")
}

func TestDispenseAcceptHistory(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t)
	trm, err := r.Register("Barranco")
	require.NoError(t, err)

	total0 := trm.Total()
	snapshot := trm.Store()
	plan, err := currency.Breakdown(snapshot, 250)
	require.NoError(t, err)
	require.NoError(t, trm.Dispense(plan))
	assert.Equal(t, total0-250, trm.Total())

	// Store() is a copy, mutating it must not touch the terminal
	require.NoError(t, snapshot.Take(200, 1))
	assert.Equal(t, total0-250, trm.Total())

	require.NoError(t, trm.Accept(plan))
	assert.Equal(t, total0, trm.Total())

	r1 := trm.Record(KindWithdrawal, 250, "manuel", "")
	r2 := trm.Record(KindBillPayment, 100, "jesus", "luz")
	hs := trm.History()
	require.Len(t, hs, 2)
	assert.Equal(t, r1.ID, hs[0].ID)
	assert.Equal(t, r2.ID, hs[1].ID)
	assert.Contains(t, hs[1].String(), "service=luz")
}
