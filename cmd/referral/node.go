package main

import (
	"context"

	"code.tierpay.io/referral/cmd/referral/node"
	"code.tierpay.io/referral/config"
	"code.tierpay.io/referral/logging"

	"github.com/jessevdk/go-flags"
)

type NodeCmd struct {
	config.HomeFlag
}

var nodeCmd NodeCmd

func (cmd *NodeCmd) Execute(args []string) error {
	log := logging.NewLoggerFromConfig(
		logging.NewDefaultConfig(),
	)
	defer log.AtExit()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	home := cmd.HomePath()
	confWatcher, err := config.NewFromFile(ctx, log, home, true)
	if err != nil {
		return err
	}

	return (&node.NodeCommand{
		Log:         log,
		Version:     CLIVersion,
		VersionHash: CLIVersionHash,
	}).Run(
		ctx,
		confWatcher,
		home,
		args,
	)
}

func Node(ctx context.Context, parser *flags.Parser) error {
	nodeCmd = NodeCmd{}
	_, err := parser.AddCommand("node", "Runs a referral node", "Runs a referral node as defined by the config files", &nodeCmd)
	return err
}
