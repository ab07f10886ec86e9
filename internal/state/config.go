package state

import (
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"

	"github.com/ManuelRisco/CajeroAutomatico/currency"
	"github.com/ManuelRisco/CajeroAutomatico/helpers"
	"github.com/ManuelRisco/CajeroAutomatico/internal/terminal"
	"github.com/ManuelRisco/CajeroAutomatico/log2"
)

type Config struct {
	// includeSeen contains absolute paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []ConfigSource `hcl:"include"`

	Money struct {
		// Scale multiplies config money values into Amount minor
		// units, e.g. scale=100 and balance=2000 is S/.2000.00
		Scale int `hcl:"scale"`
		// Nominals is the note set new terminals accept, in
		// config units before scaling
		Nominals []int `hcl:"nominals"`
	} `hcl:"money"`

	Ledger struct {
		LockWaitMs     int             `hcl:"lock_wait_ms"`
		PasswordScheme string          `hcl:"password_scheme"`
		Accounts       []AccountConfig `hcl:"account"`
	} `hcl:"ledger"`

	Terminals []TerminalConfig `hcl:"terminal"`
	// Seed is the note inventory for terminals registered without
	// explicit notes, keyed by nominal in config units
	Seed map[string]int `hcl:"seed"`

	_copy_guard sync.Mutex //nolint:unused
}

type ConfigSource struct {
	Name     string `hcl:"name,key"`
	Optional bool   `hcl:"optional"`
}

type AccountConfig struct {
	ID       string `hcl:"id,key"`
	Password string `hcl:"password"`
	Balance  int    `hcl:"balance"`
}

type TerminalConfig struct {
	Location string `hcl:"location,key"`
	Notes    map[string]int `hcl:"notes"`
}

func (c *Config) ScaleI(i int) currency.Amount {
	return currency.Amount(i) * currency.Amount(c.Money.Scale)
}
func (c *Config) ScaleU(u uint32) currency.Amount { return currency.Amount(u * uint32(c.Money.Scale)) }

func (c *Config) LockWait() time.Duration {
	return time.Duration(c.Ledger.LockWaitMs) * time.Millisecond
}

// Defaults fills zero values after all sources are merged.
func (c *Config) Defaults() {
	if c.Money.Scale == 0 {
		c.Money.Scale = 100
	}
	if len(c.Money.Nominals) == 0 {
		c.Money.Nominals = []int{200, 100, 50, 20}
	}
	if c.Ledger.LockWaitMs == 0 {
		c.Ledger.LockWaitMs = 500
	}
	if len(c.Seed) == 0 {
		c.Seed = map[string]int{"200": 8, "100": 10, "50": 6, "20": 10}
	}
}

// TerminalSeed converts a notes map into a terminal seed. Nominals
// absent from the map are still valid for the terminal with count 0.
func (c *Config) TerminalSeed(notes map[string]int) (terminal.Seed, error) {
	counts := make(map[currency.Nominal]uint, len(c.Money.Nominals))
	for _, n := range c.Money.Nominals {
		counts[currency.Nominal(c.ScaleI(n))] = 0
	}
	for key, count := range notes {
		n, err := strconv.Atoi(key)
		if err != nil {
			return terminal.Seed{}, errors.Annotatef(err, "seed nominal=%q", key)
		}
		if count < 0 {
			return terminal.Seed{}, errors.Errorf("seed nominal=%q count=%d negative", key, count)
		}
		nominal := currency.Nominal(c.ScaleI(n))
		if _, ok := counts[nominal]; !ok {
			return terminal.Seed{}, errors.Errorf("seed nominal=%q not in money.nominals", key)
		}
		counts[nominal] = uint(count)
	}
	return terminal.Seed{Counts: counts}, nil
}

func (c *Config) read(log *log2.Log, fs FullReader, source ConfigSource, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		log.Fatalf("config duplicate source=%s", source.Name)
	} else {
		log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	}
	c.includeSeen[source.Name] = struct{}{}
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			err = errors.NotFoundf("config required name=%s path=%s", source.Name, norm)
			*errs = append(*errs, err)
			return
		}
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	err = hcl.Unmarshal(bs, c)
	if err != nil {
		err = errors.Annotatef(err, "config unmarshal source=%s content='%s'", source.Name, string(bs))
		*errs = append(*errs, err)
		return
	}

	var includes []ConfigSource
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		includeNorm := fs.Normalize(include.Name)
		if _, ok := c.includeSeen[includeNorm]; ok {
			err = errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name)
			*errs = append(*errs, err)
			continue
		}
		c.read(log, fs, include, errs)
	}
}

func ReadConfig(log *log2.Log, fs FullReader, names ...string) (*Config, error) {
	if len(names) == 0 {
		log.Fatal("code error [Must]ReadConfig() without names")
	}

	if osfs, ok := fs.(*OsFullReader); ok {
		dir, name := filepath.Split(names[0])
		osfs.SetBase(dir)
		names[0] = name
	}
	c := &Config{
		includeSeen: make(map[string]struct{}),
	}
	errs := make([]error, 0, 8)
	for _, name := range names {
		c.read(log, fs, ConfigSource{Name: name}, &errs)
	}
	if err := helpers.FoldErrors(errs); err != nil {
		return c, err
	}
	c.Defaults()
	return c, nil
}

func MustReadConfig(log *log2.Log, fs FullReader, names ...string) *Config {
	c, err := ReadConfig(log, fs, names...)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
