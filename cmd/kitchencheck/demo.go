package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/kitchencheck/internal/demo"
	"github.com/dshills/kitchencheck/internal/logging"
)

func newDemoCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Work with synthetic demo data",
	}
	cmd.AddCommand(newDemoSeedCmd(open))
	return cmd
}

type seedFlags struct {
	date string
	days int
	seed uint64
}

func newDemoSeedCmd(open opener) *cobra.Command {
	var f seedFlags
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert generated records labelled as demo data",
		Long: "Insert generated temperature, cleaning, hygiene, cooling and HMS records " +
			"for one or more days. Every row is marked \"" + demo.Marker + "\" in its notes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, a *app) error {
				return runSeed(ctx, a, f)
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.date, "date", "", "last day to seed YYYY-MM-DD (default today)")
	fl.IntVar(&f.days, "days", 1, "number of days to seed, ending at --date")
	fl.Uint64Var(&f.seed, "seed", 1, "random seed; the same seed gives the same records")
	return cmd
}

func runSeed(ctx context.Context, a *app, f seedFlags) error {
	if f.days < 1 {
		return badInput(fmt.Errorf("--days must be at least 1"))
	}
	last, err := parseDay(f.date, time.Now())
	if err != nil {
		return err
	}
	total := demo.Summary{}
	for i := f.days - 1; i >= 0; i-- {
		day := last.AddDate(0, 0, -i)
		sum, err := demo.Seed(ctx, a.backend, a.tenant, day, f.seed)
		for k, v := range sum {
			total[k] += v
		}
		if err != nil {
			return err
		}
	}
	a.log.Info("demo data seeded",
		logging.String("tenant", a.tenant),
		logging.Int("days", f.days),
		logging.Int("rows", total.Total()))

	names := make([]string, 0, len(total))
	for k := range total {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(a.out, "%-28s %d\n", k, total[k])
	}
	_, err = fmt.Fprintf(a.out, "%-28s %d\n", "total", total.Total())
	return err
}
