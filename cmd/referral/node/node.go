package node

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"code.tierpay.io/referral/api"
	"code.tierpay.io/referral/broker"
	"code.tierpay.io/referral/config"
	"code.tierpay.io/referral/core/accounts"
	"code.tierpay.io/referral/core/distribution"
	"code.tierpay.io/referral/core/earnings"
	"code.tierpay.io/referral/core/notifications"
	"code.tierpay.io/referral/core/sponsorship"
	"code.tierpay.io/referral/libs/clock"
	"code.tierpay.io/referral/logging"
	"code.tierpay.io/referral/metrics"

	"golang.org/x/sync/errgroup"
)

// NodeCommand use to implement 'node' command.
type NodeCommand struct {
	ctx    context.Context
	cancel context.CancelFunc

	store     Store
	stopStore func()

	timeService  *clock.Service
	broker       *broker.Broker
	sponsorship  *sponsorship.Engine
	distribution *distribution.Engine
	accounts     *accounts.Engine
	earnings     *earnings.Service

	hub       *api.Hub
	notifier  *notifications.Subscriber
	apiServer *api.Server
	metrics   *metrics.Server

	Log           *logging.Logger
	home          string
	configWatcher *config.Watcher
	conf          config.Config

	Version     string
	VersionHash string
}

func (l *NodeCommand) Run(ctx context.Context, cfgwatchr *config.Watcher, home string, args []string) error {
	l.configWatcher = cfgwatchr
	l.conf = cfgwatchr.Get()
	l.home = home
	l.ctx, l.cancel = context.WithCancel(ctx)

	stages := []func([]string) error{
		l.persistentPre,
		l.preRun,
		l.runNode,
		l.postRun,
	}
	for _, fn := range stages {
		if err := fn(args); err != nil {
			l.cancel()
			if l.stopStore != nil {
				l.stopStore()
			}
			return err
		}
	}

	return nil
}

// persistentPre sets up logging and storage.
func (l *NodeCommand) persistentPre(_ []string) (err error) {
	l.Log = logging.NewLoggerFromConfig(l.conf.Logging)

	l.Log.Info("Starting referral node",
		logging.String("home", l.home),
		logging.String("version", l.Version),
		logging.String("version-hash", l.VersionHash))

	if l.metrics, err = metrics.New(l.Log, l.conf.Metrics); err != nil {
		return err
	}

	l.store, l.stopStore, err = OpenStore(l.Log, l.conf, l.home)
	return err
}

// preRun builds the engines and the api on top of the store.
func (l *NodeCommand) preRun(_ []string) (err error) {
	l.timeService = clock.New()
	l.broker = broker.New(l.ctx, l.Log, l.conf.Broker)

	l.sponsorship = sponsorship.NewEngine(l.Log, l.store, l.broker, l.timeService)
	l.distribution = distribution.NewEngine(l.Log, l.conf.Distribution, l.store, l.sponsorship, l.broker, l.timeService)
	l.accounts = accounts.NewEngine(l.Log, l.conf.Accounts, l.store, l.sponsorship,
		accounts.NewRandomCodeGenerator(), l.broker, l.timeService)
	l.earnings = earnings.NewService(l.Log, l.store, l.sponsorship)

	l.hub = api.NewHub(l.Log, l.conf.API.Websocket)
	l.notifier = notifications.NewSubscriber(l.ctx, l.Log, l.hub, false)
	l.broker.Subscribe(l.notifier)

	if l.apiServer, err = api.New(l.ctx, l.Log, l.conf.API, l.accounts, l.distribution, l.earnings, l.hub); err != nil {
		return fmt.Errorf("couldn't create the api: %w", err)
	}

	l.configWatcher.OnConfigUpdate(
		func(cfg config.Config) { l.broker.ReloadConf(cfg.Broker) },
		func(cfg config.Config) { l.distribution.ReloadConf(cfg.Distribution) },
		func(cfg config.Config) { l.accounts.ReloadConf(cfg.Accounts) },
		func(cfg config.Config) { l.apiServer.ReloadConf(cfg.API) },
	)
	return nil
}

// runNode is the entry of node command.
func (l *NodeCommand) runNode(_ []string) error {
	defer l.cancel()

	eg, ctx := errgroup.WithContext(l.ctx)

	eg.Go(func() error { return l.apiServer.Start() })

	if l.metrics != nil {
		eg.Go(func() error { return l.metrics.Start(ctx) })
	}

	// the api server is stopped through the node context
	eg.Go(func() error {
		<-ctx.Done()
		l.cancel()
		return nil
	})

	// waitSig will wait for a sigterm or sigint interrupt.
	eg.Go(func() error {
		gracefulStop := make(chan os.Signal, 1)
		signal.Notify(gracefulStop, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(gracefulStop)

		select {
		case sig := <-gracefulStop:
			l.Log.Info("Caught signal", logging.String("name", fmt.Sprintf("%+v", sig)))
			l.cancel()
		case <-ctx.Done():
			return ctx.Err()
		}

		return nil
	})

	l.Log.Info("Referral node startup complete")

	err := eg.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

func (l *NodeCommand) postRun(_ []string) error {
	l.stopStore()
	l.Log.Info("Referral node stopped")
	return nil
}
