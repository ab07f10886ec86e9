package state

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelRisco/CajeroAutomatico/log2"
)

func TestReadConfig(t *testing.T) {
	t.Parallel()

	type Case struct {
		name      string
		input     string
		check     func(t testing.TB, ctx context.Context)
		expectErr string
	}
	cases := []Case{
		{"empty", "", func(t testing.TB, ctx context.Context) {
			g := GetGlobal(ctx)
			assert.Equal(t, 100, g.Config.Money.Scale)
			assert.Equal(t, []int{200, 100, 50, 20}, g.Config.Money.Nominals)
			assert.Equal(t, 500, g.Config.Ledger.LockWaitMs)
			assert.Empty(t, g.Ledger.Terminals().List())
		}, ""},

		{"scale",
			`money { scale = 1 } ledger { lock_wait_ms = 100 }`,
			func(t testing.TB, ctx context.Context) {
				g := GetGlobal(ctx)
				assert.EqualValues(t, 2000, g.Config.ScaleI(2000))
			},
			"",
		},

		{"terminals-and-accounts", `
money { scale = 1 }
terminal "Chorrillos" {
	notes {
		"200" = 10
		"100" = 17
		"50" = 15
		"20" = 20
	}
}
terminal "Los Olivos" {}
ledger {
	account "manuel" { password = "123" balance = 2000 }
	account "wilbert" { password = "345" balance = 800 }
}`,
			func(t testing.TB, ctx context.Context) {
				g := GetGlobal(ctx)
				list := g.Ledger.Terminals().List()
				require.Len(t, list, 2)
				assert.Equal(t, "Chorrillos", list[0].Location)
				assert.EqualValues(t, 10*200+17*100+15*50+20*20, list[0].Total())
				// second terminal falls back to the default seed
				assert.EqualValues(t, 8*200+10*100+6*50+10*20, list[1].Total())

				require.NoError(t, g.Ledger.Authenticate("manuel", "123"))
				balance, err := g.Ledger.Balance("wilbert", "345")
				require.NoError(t, err)
				assert.EqualValues(t, 800, balance)
			},
			"",
		},

		{"bcrypt-scheme", `
money { scale = 1 }
ledger {
	password_scheme = "bcrypt"
	account "ana" { password = "s3cret" balance = 10 }
}`,
			func(t testing.TB, ctx context.Context) {
				g := GetGlobal(ctx)
				require.NoError(t, g.Ledger.Authenticate("ana", "s3cret"))
				assert.Error(t, g.Ledger.Authenticate("ana", "wrong"))
			},
			"",
		},

		{"bad-scheme",
			`ledger { password_scheme = "md5" }`,
			nil,
			"password scheme=md5 not valid",
		},

		{"bad-seed-nominal",
			"terminal \"Surco\" {\n\tnotes {\n\t\t\"13\" = 2\n\t}\n}",
			nil,
			`seed nominal="13" not in money.nominals`,
		},

		{"duplicate-location",
			`terminal "Surco" {} terminal "surco" {}`,
			nil,
			"Another terminal already uses this location",
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			if c.expectErr == "" {
				ctx, _ := NewTestContext(t, c.input)
				c.check(t, ctx)
				return
			}
			fs := NewMockFullReader(map[string]string{"test-inline": c.input})
			log := log2.NewTest(t, log2.LDebug)
			cfg, err := ReadConfig(log, fs, "test-inline")
			require.NoError(t, err, "these cases fail at init, not parse")
			_, g := NewContext(log)
			err = g.Init(context.Background(), cfg)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), c.expectErr),
				"error=%v expected substring %q", err, c.expectErr)
		})
	}
}

func TestReadConfigInclude(t *testing.T) {
	t.Parallel()
	fs := NewMockFullReader(map[string]string{
		"main": `include "extra" {} money { scale = 1 }`,
		"extra": `ledger { account "jesus" { password = "456" balance = 500 } }`,
	})
	log := log2.NewTest(t, log2.LDebug)
	cfg, err := ReadConfig(log, fs, "main")
	require.NoError(t, err)
	require.Len(t, cfg.Ledger.Accounts, 1)
	assert.Equal(t, "jesus", cfg.Ledger.Accounts[0].ID)

	_, err = ReadConfig(log, NewMockFullReader(map[string]string{"main": `include "missing" {}`}), "main")
	require.Error(t, err)
}
