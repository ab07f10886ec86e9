// cajero loads a network config, seeds the ledger and prints an
// inventory and account report. The interactive menu lives outside
// this repo; this binary is the bootstrap and reporting surface.
package main

import (
	"flag"
	"fmt"

	"github.com/juju/errors"

	"github.com/ManuelRisco/CajeroAutomatico/internal/ledger"
	"github.com/ManuelRisco/CajeroAutomatico/internal/state"
	"github.com/ManuelRisco/CajeroAutomatico/log2"
)

var BuildVersion string = "unknown" // set by ldflags -X

func main() {
	flagConfig := flag.String("config", "cajero.hcl", "")
	flagLocation := flag.String("location", "", "find terminal by location")
	flagDebug := flag.Bool("debug", false, "")
	flag.Parse()

	log := log2.NewStderr(log2.LInfo)
	if *flagDebug {
		log.SetLevel(log2.LDebug)
	}
	log.Infof("cajero version=%s", BuildVersion)

	ctx, g := state.NewContext(log)
	g.BuildVersion = BuildVersion
	cfg := state.MustReadConfig(log, state.NewOsFullReader(), *flagConfig)
	g.MustInit(ctx, cfg)

	fmt.Println("--- Terminals ---")
	for _, t := range g.Ledger.Terminals().List() {
		fmt.Printf("id=%d location=%s notes=%s total=S/.%s\n",
			t.ID, t.Location, t.Store().String(), t.Total().Format100I())
	}

	if *flagLocation != "" {
		t, err := g.Ledger.Terminals().FindByLocation(*flagLocation)
		if errors.IsNotFound(err) {
			fmt.Printf("no terminal at location=%q\n", *flagLocation)
		} else if err != nil {
			log.Fatal(errors.ErrorStack(err))
		} else {
			fmt.Printf("found id=%d location=%s total=S/.%s\n", t.ID, t.Location, t.Total().Format100I())
		}
	}

	infos, err := g.Ledger.Accounts()
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	fmt.Println("--- Accounts by balance ---")
	for _, info := range ledger.SortByBalanceDesc(infos) {
		fmt.Printf("id=%s balance=S/.%s\n", info.ID, info.Balance.Format100I())
	}
}
