package main

import (
	"context"
	"fmt"

	"code.tierpay.io/referral/broker"
	"code.tierpay.io/referral/cmd/referral/node"
	"code.tierpay.io/referral/config"
	"code.tierpay.io/referral/core/distribution"
	"code.tierpay.io/referral/core/sponsorship"
	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/libs/clock"
	"code.tierpay.io/referral/logging"

	"github.com/jessevdk/go-flags"
)

type ReconcileCmd struct {
	config.HomeFlag

	Accounts []string `short:"a" long:"account" required:"true" description:"ID of an account to check, can be repeated"`
}

type ResumeCmd struct {
	config.HomeFlag

	Purchase string `short:"p" long:"purchase" required:"true" description:"ID of the purchase whose commissions should be paid"`
}

var (
	reconcileCmd ReconcileCmd
	resumeCmd    ResumeCmd
)

// withDistribution runs fn against a distribution engine backed by the
// configured sql store.
func withDistribution(home string, fn func(context.Context, *logging.Logger, *distribution.Engine) error) error {
	log := logging.NewLoggerFromConfig(logging.NewDefaultConfig())
	defer log.AtExit()

	cfg, err := config.Read(home)
	if err != nil {
		return fmt.Errorf("couldn't read configuration: %w", err)
	}
	if !cfg.SQLStore.Enabled {
		return ErrSQLStoreDisabled
	}

	store, stop, err := node.OpenStore(log, *cfg, home)
	if err != nil {
		return err
	}
	defer stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// nothing subscribes here, payouts made by a resume are not notified
	b := broker.New(ctx, log, cfg.Broker)
	timeService := clock.New()
	graph := sponsorship.NewEngine(log, store, b, timeService)
	engine := distribution.NewEngine(log, cfg.Distribution, store, graph, b, timeService)
	return fn(ctx, log, engine)
}

func (opts *ReconcileCmd) Execute(_ []string) error {
	return withDistribution(opts.HomePath(), func(ctx context.Context, log *logging.Logger, engine *distribution.Engine) error {
		drifted := 0
		for _, id := range opts.Accounts {
			drift, err := engine.Reconcile(ctx, types.AccountID(id))
			if err != nil {
				return fmt.Errorf("couldn't reconcile %s: %w", id, err)
			}
			if drift.HasDrift() {
				drifted++
				fmt.Printf("%s: stored total %s, records total %s (%d records)\n",
					id, drift.Stored.Total, drift.Computed.Total, drift.Records)
				continue
			}
			fmt.Printf("%s: ok (%d records)\n", id, drift.Records)
		}
		if drifted > 0 {
			return fmt.Errorf("%d account(s) drifted", drifted)
		}
		return nil
	})
}

func (opts *ResumeCmd) Execute(_ []string) error {
	return withDistribution(opts.HomePath(), func(ctx context.Context, log *logging.Logger, engine *distribution.Engine) error {
		commissions, err := engine.ResumeDistribution(ctx, types.PurchaseID(opts.Purchase))
		if err != nil {
			return fmt.Errorf("couldn't resume the distribution: %w", err)
		}
		log.Info("distribution resumed",
			logging.PurchaseID(opts.Purchase),
			logging.Int("commissions", len(commissions)),
		)
		return nil
	})
}

func Reconcile(ctx context.Context, parser *flags.Parser) error {
	reconcileCmd = ReconcileCmd{}
	_, err := parser.AddCommand("reconcile", "Check the earnings of accounts",
		"Compare the stored earnings of accounts with the sum of their commission records", &reconcileCmd)
	return err
}

func Resume(ctx context.Context, parser *flags.Parser) error {
	resumeCmd = ResumeCmd{}
	_, err := parser.AddCommand("resume", "Finish the distribution of a purchase",
		"Pay the commissions a purchase is still missing, payouts already made are left as they are", &resumeCmd)
	return err
}
