package terminal

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/juju/errors"

	"github.com/ManuelRisco/CajeroAutomatico/currency"
	"github.com/ManuelRisco/CajeroAutomatico/log2"
)

var (
	ErrLocationInvalid = errors.New("Location must be non-empty letters, digits and spaces")
	ErrLocationExists  = errors.New("Another terminal already uses this location")
)

var locationRe = regexp.MustCompile(`^[a-zA-Z0-9\s]+$`)

// ValidateLocation applies the registration rule: non-blank, only
// letters/digits/whitespace, not purely digits.
func ValidateLocation(location string) error {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" || !locationRe.MatchString(location) || isAllDigits(trimmed) {
		return errors.Annotatef(ErrLocationInvalid, "location=%q", location)
	}
	return nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Seed is the note inventory a freshly registered terminal starts
// with. The nominal set also defines which notes the terminal may
// ever hold.
type Seed struct {
	Counts map[currency.Nominal]uint
}

func (s Seed) group() *currency.NominalGroup {
	valid := make([]currency.Nominal, 0, len(s.Counts))
	for n := range s.Counts {
		valid = append(valid, n)
	}
	ng := currency.NewNominalGroup(valid)
	for n, c := range s.Counts {
		if c > 0 {
			if err := ng.Add(n, c); err != nil {
				panic(err) // unreachable, n comes from the same map
			}
		}
	}
	return ng
}

// Registry owns every terminal in the network. Terminals are never
// destroyed during a session.
type Registry struct {
	Log *log2.Log

	lk          sync.Mutex
	defaultSeed Seed
	nextID      uint32
	terminals   map[uint32]*Terminal
}

func NewRegistry(log *log2.Log, defaultSeed Seed) *Registry {
	return &Registry{
		Log:         log,
		defaultSeed: defaultSeed,
		terminals:   make(map[uint32]*Terminal),
	}
}

// Register adds a terminal at location with the default seed store.
func (r *Registry) Register(location string) (*Terminal, error) {
	return r.RegisterSeed(location, r.defaultSeed)
}

func (r *Registry) RegisterSeed(location string, seed Seed) (*Terminal, error) {
	if err := ValidateLocation(location); err != nil {
		return nil, err
	}
	r.lk.Lock()
	defer r.lk.Unlock()
	for _, t := range r.terminals {
		if strings.EqualFold(t.Location, location) {
			return nil, errors.Annotatef(ErrLocationExists, "location=%q", location)
		}
	}
	r.nextID++
	t := &Terminal{
		ID:       r.nextID,
		Location: strings.TrimSpace(location),
		store:    seed.group(),
	}
	r.terminals[t.ID] = t
	r.Log.Debugf("terminal registered id=%d location=%s store=%s", t.ID, t.Location, t.store.String())
	return t, nil
}

// Get resolves a terminal id, juju NotFound when absent.
func (r *Registry) Get(id uint32) (*Terminal, error) {
	r.lk.Lock()
	defer r.lk.Unlock()
	if t, ok := r.terminals[id]; ok {
		return t, nil
	}
	return nil, errors.NotFoundf("terminal id=%d", id)
}

// FindByLocation scans for a case-insensitive location match.
func (r *Registry) FindByLocation(location string) (*Terminal, error) {
	r.lk.Lock()
	defer r.lk.Unlock()
	for _, t := range r.terminals {
		if strings.EqualFold(t.Location, location) {
			return t, nil
		}
	}
	return nil, errors.NotFoundf("terminal location=%q", location)
}

// List returns all terminals ordered by id.
func (r *Registry) List() []*Terminal {
	r.lk.Lock()
	defer r.lk.Unlock()
	ts := make([]*Terminal, 0, len(r.terminals))
	for _, t := range r.terminals {
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].ID < ts[j].ID })
	return ts
}
