// check-networks: probes the built-in RPC endpoints of every registry chain
// in parallel, asks the deploy API which chains it can deploy to, and prints
// a summary table.
//
// Run from the module root:
//
//	go run ./scripts/check-networks
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Mohsinsiddi/tokenforge/internal/chain"
	"github.com/Mohsinsiddi/tokenforge/internal/config"
	"github.com/Mohsinsiddi/tokenforge/internal/deployapi"
	"github.com/Mohsinsiddi/tokenforge/internal/rpc"
)

const probeTimeout = 8 * time.Second

func main() {
	cfg, err := config.Load(os.Getenv(config.EnvConfigDir))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	remote := map[int64]bool{}
	apiErr := ""
	networks, err := deployapi.NewClient(cfg.APIURL).SupportedNetworks(ctx, true)
	if err != nil {
		apiErr = err.Error()
	}
	for _, n := range networks {
		remote[n.ChainID] = n.DeploySupported
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHAIN ID\tNETWORK\tAPI\tHEALTHY RPCS\tBEST\tLATENCY\tBLOCK")
	fmt.Fprintln(w, "────────\t───────\t───\t────────────\t────\t───────\t─────")

	for _, c := range chain.NewRegistry().All() {
		eps := rpc.ResultsToEndpoints(rpc.Benchmark(ctx, c.RPCs, probeTimeout), c.ChainID)
		healthy := 0
		for _, ep := range eps {
			if ep.Healthy {
				healthy++
			}
		}

		api := "-"
		if supported, ok := remote[c.ChainID]; ok {
			api = "no"
			if supported {
				api = "yes"
			}
		}

		best, latency, block := "-", "-", "-"
		if ep, err := rpc.Pick(eps, rpc.AlgorithmFastest); err == nil {
			best = host(ep.URL)
			latency = ep.Latency.Round(time.Millisecond).String()
			block = fmt.Sprintf("%d", ep.BlockNumber)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d/%d\t%s\t%s\t%s\n",
			c.ChainID, c.DisplayName, api, healthy, len(eps), best, latency, block)
	}
	w.Flush()

	if apiErr != "" {
		fmt.Printf("\ndeploy API %s unreachable: %s\n", cfg.APIURL, apiErr)
	}
}

func host(u string) string {
	u = strings.TrimPrefix(strings.TrimPrefix(u, "https://"), "http://")
	if i := strings.IndexByte(u, '/'); i >= 0 {
		u = u[:i]
	}
	return u
}
