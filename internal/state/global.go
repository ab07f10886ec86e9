package state

import (
	"context"
	"fmt"

	"github.com/juju/errors"

	"github.com/ManuelRisco/CajeroAutomatico/internal/account"
	"github.com/ManuelRisco/CajeroAutomatico/internal/ledger"
	"github.com/ManuelRisco/CajeroAutomatico/internal/terminal"
	"github.com/ManuelRisco/CajeroAutomatico/log2"
)

const ContextKey = "run/state-global"

// Global wires the configured core together: one ledger, one
// terminal registry, shared log.
type Global struct {
	BuildVersion string
	Config       *Config
	Log          *log2.Log
	Ledger       *ledger.Ledger
}

func NewContext(log *log2.Log) (context.Context, *Global) {
	if log == nil {
		panic("code error state.NewContext() log=nil")
	}
	g := &Global{Log: log}
	ctx := context.Background()
	ctx = context.WithValue(ctx, log2.ContextKey, log)
	ctx = context.WithValue(ctx, ContextKey, g)
	return ctx, g
}

func GetGlobal(ctx context.Context) *Global {
	v := ctx.Value(ContextKey)
	if v == nil {
		panic(fmt.Sprintf("context['%s'] is nil", ContextKey))
	}
	if g, ok := v.(*Global); ok {
		return g
	}
	panic(fmt.Sprintf("context['%s'] expected type *Global", ContextKey))
}

// Init builds the ledger and seeds terminals and accounts from
// config. Registration failures abort init, the config is wrong.
func (g *Global) Init(ctx context.Context, cfg *Config) error {
	g.Config = cfg

	hasher, err := account.NewHasher(cfg.Ledger.PasswordScheme)
	if err != nil {
		return errors.Annotate(err, "config ledger")
	}
	defaultSeed, err := cfg.TerminalSeed(cfg.Seed)
	if err != nil {
		return errors.Annotate(err, "config seed")
	}
	registry := terminal.NewRegistry(g.Log, defaultSeed)
	g.Ledger = ledger.New(g.Log, hasher, cfg.LockWait(), registry)

	for _, tc := range cfg.Terminals {
		seed := defaultSeed
		if len(tc.Notes) > 0 {
			if seed, err = cfg.TerminalSeed(tc.Notes); err != nil {
				return errors.Annotatef(err, "config terminal=%s", tc.Location)
			}
		}
		if _, err = registry.RegisterSeed(tc.Location, seed); err != nil {
			return errors.Annotatef(err, "config terminal=%s", tc.Location)
		}
	}
	for _, ac := range cfg.Ledger.Accounts {
		if err = g.Ledger.RegisterAccount(ac.ID, ac.Password, cfg.ScaleI(ac.Balance)); err != nil {
			return errors.Annotatef(err, "config account=%s", ac.ID)
		}
	}
	g.Log.Debugf("init terminals=%d accounts=%d", len(cfg.Terminals), len(cfg.Ledger.Accounts))
	return nil
}

func (g *Global) MustInit(ctx context.Context, cfg *Config) {
	if err := g.Init(ctx, cfg); err != nil {
		g.Log.Fatal(errors.ErrorStack(err))
	}
}
