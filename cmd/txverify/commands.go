package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	txverify "github.com/chainflow/txverify"
	"github.com/chainflow/txverify/config"
	"github.com/chainflow/txverify/logger"
	"github.com/chainflow/txverify/metrics"
	"github.com/chainflow/txverify/server"
	"github.com/chainflow/txverify/types"
	"github.com/chainflow/txverify/wallet"
)

// serveCommand runs the HTTP service against the configured network.
func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the verification HTTP service",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			log := logger.NewZapLogger(cfg.LogLevel)

			engine := txverify.New(
				txverify.WithLogger(log),
				txverify.WithMetrics(metrics.NewPrometheusRecorder()),
				txverify.WithTimeout(cfg.RequestTimeout),
			)
			defer engine.Close()

			if err := engine.AddNetwork(cfg.Network, types.ClientConfig{
				Network: cfg.Network,
				RPCUrl:  cfg.RPCURL,
			}); err != nil {
				return fmt.Errorf("add network %s: %w", cfg.Network, err)
			}

			srv := server.New(cfg.ServerAddr, cfg, engine, log, true)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				log.Info("shutting down", map[string]any{"signal": sig.String()})
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
}

// verifyCommand runs a one-shot verification against an RPC endpoint.
func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Verify a single transaction",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "rpc-url", Usage: "EVM JSON-RPC endpoint", Required: true},
			&cli.StringFlag{Name: "network", Usage: "network name", Value: types.NetworkBSCTestnet.String()},
			&cli.StringFlag{Name: "tx-hash", Usage: "transaction hash to verify", Required: true},
			&cli.StringFlag{Name: "sender", Usage: "expected sender address", Required: true},
		},
		Action: func(c *cli.Context) error {
			network := types.Network(c.String("network"))

			engine := txverify.New(txverify.WithLogger(logger.NewZapLogger("warn")))
			defer engine.Close()

			if err := engine.AddNetwork(network, types.ClientConfig{
				Network: network,
				RPCUrl:  c.String("rpc-url"),
			}); err != nil {
				return err
			}

			result, err := engine.VerifyTransaction(c.Context, &types.VerificationRequest{
				TransactionHash: c.String("tx-hash"),
				ExpectedSender:  c.String("sender"),
				Network:         network.String(),
			})
			if err != nil {
				return err
			}

			return printJSON(result)
		},
	}
}

// walletNewCommand generates key material to stdout. Nothing is persisted.
func walletNewCommand() *cli.Command {
	return &cli.Command{
		Name:  "new",
		Usage: "Generate a new wallet key pair",
		Action: func(c *cli.Context) error {
			account, err := wallet.NewAccount()
			if err != nil {
				return err
			}
			return printJSON(account)
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
