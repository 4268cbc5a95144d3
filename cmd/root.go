// Copyright © 2018 Victor Tran
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tranvictor/hsocial/config"
	"github.com/tranvictor/hsocial/executor"
	"github.com/tranvictor/hsocial/logging"
	"github.com/tranvictor/hsocial/networks"
	"github.com/tranvictor/hsocial/ui"
	"github.com/tranvictor/hsocial/util"
	"github.com/tranvictor/hsocial/util/cache"
	"github.com/tranvictor/hsocial/util/monitor"
	"github.com/tranvictor/hsocial/util/reader"
)

// app is what every command runs against, built once flags are parsed.
type app struct {
	settings config.Settings
	logger   *zap.Logger
	network  networks.Network
	ui       ui.UI
	mirror   *reader.MirrorReader
	receipts *monitor.TxMonitor
	exec     *executor.Executor
	cache    *cache.Store
}

var current *app

// newUI builds the UI for a run; tests swap it for a recording one.
var newUI = func() ui.UI {
	return ui.NewTerminalUI(config.JSONOutput)
}

var rootCmd = &cobra.Command{
	Use:   "hsocial",
	Short: "Inspect hsocial profiles, lists and transactions on Hedera",
	Long: fmt.Sprintf(`hsocial reads the Hedera Consensus Service topics behind hsocial profiles,
channel, group and follow lists, and checks the transactions that wrote them.

Everything is read through a mirror node. By default hsocial uses the public
mirror nodes run by Hedera:
	1. mainnet: https://mainnet-public.mirrornode.hedera.com
	2. testnet: https://testnet.mirrornode.hedera.com
	3. previewnet: https://previewnet.mirrornode.hedera.com
You can point a network at your own mirror node with these env vars:
	1. mainnet: %s
	2. testnet: %s
	3. previewnet: %s
or for a single run with --mirror-url.

Settings such as receipt polling delays live in %s and can be
overridden with %s, %s and %s.`,
		networks.Mainnet.GetMirrorNodeVariableName(),
		networks.Testnet.GetMirrorNodeVariableName(),
		networks.Previewnet.GetMirrorNodeVariableName(),
		config.DefaultPath(),
		config.EnvNetwork,
		config.EnvMirrorURL,
		config.EnvLogLevel,
	),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current != nil {
			_ = current.logger.Sync()
		}
	},
}

func setup(cmd *cobra.Command, args []string) error {
	path := config.ConfigFile
	if path == "" {
		path = config.DefaultPath()
	}
	s, err := config.Load(path)
	if err != nil {
		return err
	}
	s.ApplyFlags()
	if err := s.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(s.Log.Level, s.Log.Format)
	if err != nil {
		return err
	}
	if !networks.SetNetwork(s.Network) {
		return fmt.Errorf(
			"unknown network %q, supported networks: %s",
			s.Network,
			strings.Join(networks.GetSupportedNetworkNames(), ", "),
		)
	}
	network := networks.CurrentNetwork()
	mirror, err := util.MirrorReader(network, s, logger)
	if err != nil {
		return err
	}
	store := cache.NewStore(cache.DefaultPath())
	if config.NoCache {
		store = cache.NewStore("")
	}

	current = &app{
		settings: s,
		logger:   logger.With(zap.String("network", network.GetName())),
		network:  network,
		ui:       newUI(),
		mirror:   mirror,
		receipts: util.ReceiptMonitor(mirror, s, logger),
		exec:     util.Executor(network, s, logger),
		cache:    store,
	}
	current.logger.Debug("settings loaded", zap.String("config", path), zap.String("command", cmd.CommandPath()))
	return nil
}

// printJSON writes v to the command output when --json is set and reports
// whether it did.
func printJSON(u ui.UI, v any) (bool, error) {
	if !config.JSONOutput {
		return false, nil
	}
	enc := json.NewEncoder(u.Writer())
	enc.SetIndent("", "  ")
	return true, enc.Encode(v)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&config.Network, "network", "k", "", "Hedera network: mainnet, testnet, previewnet or a custom one. Defaults to the configured network (testnet).")
	flags.StringVar(&config.MirrorURL, "mirror-url", "", "Mirror node REST API base URL, replacing the network's nodes for this run.")
	flags.StringVar(&config.ConfigFile, "config", "", "Settings file. Defaults to ~/.hsocial/config.yaml.")
	flags.StringVar(&config.LogLevel, "log-level", "", "Log level: debug, info, warn or error.")
	flags.StringVar(&config.LogFormat, "log-format", "", "Log format: console or json.")
	flags.BoolVar(&config.JSONOutput, "json", false, "Print results as JSON.")
	flags.BoolVar(&config.NoCache, "no-cache", false, "Don't read or write the local receipt cache.")
}

// Execute runs the root command until it finishes or the process is
// interrupted. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
