// Package txverify verifies and classifies transactions on EVM ledgers.
// Given a transaction hash and an expected sender address it fetches the
// on-chain transaction, checks whether the expected sender originated it,
// and classifies what it did (native transfer, token transfer, or opaque
// contract call) into a normalized human-readable summary. It also carries
// the wallet operations the verification flow sits beside: key generation,
// balance queries, and outbound transfers.
package txverify

import (
	"context"
	"fmt"
	"time"

	"github.com/chainflow/txverify/clients"
	"github.com/chainflow/txverify/logger"
	"github.com/chainflow/txverify/metrics"
	"github.com/chainflow/txverify/types"
	"github.com/chainflow/txverify/verification"
	"github.com/chainflow/txverify/wallet"
)

// Version information
const Version = "1.0.0"

// Engine is the main entry point bundling the verification and wallet
// services over a shared set of ledger clients.
type Engine struct {
	verifier *verification.Service
	wallets  *wallet.Service
	logger   logger.Logger
	metrics  metrics.Recorder
	timeout  time.Duration
}

// New creates an Engine with the given options. Defaults: no-op logger,
// no-op metrics, 30 second per-request timeout.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:  logger.NoopLogger{},
		metrics: metrics.NoopRecorder{},
		timeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.verifier = verification.NewService(e.timeout, e.logger, e.metrics)
	e.wallets = wallet.NewService(e.timeout, e.logger, e.metrics)

	return e
}

// AddNetwork dials an EVM ledger client for the network and registers it
// with both services.
func (e *Engine) AddNetwork(network types.Network, config types.ClientConfig) error {
	client, err := clients.NewEVMClient(network, config.RPCUrl)
	if err != nil {
		return fmt.Errorf("failed to create EVM client for %s: %w", network, err)
	}

	return e.AddClient(network, client)
}

// AddClient registers an already-constructed ledger client with both
// services. Useful for injecting custom or test clients.
func (e *Engine) AddClient(network types.Network, client clients.LedgerClient) error {
	if err := e.verifier.AddClient(network, client); err != nil {
		return err
	}

	return e.wallets.AddClient(network, client)
}

// VerifyTransaction verifies and classifies a transaction.
func (e *Engine) VerifyTransaction(ctx context.Context, req *types.VerificationRequest) (*types.VerificationResult, error) {
	return e.verifier.Verify(ctx, req)
}

// NewAccount generates fresh custody key material. Nothing is persisted.
func (e *Engine) NewAccount() (*types.Account, error) {
	return wallet.NewAccount()
}

// Balances reports native and token balances for an address.
func (e *Engine) Balances(ctx context.Context, network types.Network, address string, tokens []string) (*types.BalanceSheet, error) {
	return e.wallets.Balances(ctx, network, address, tokens)
}

// Transfer signs and submits a native or token transfer.
func (e *Engine) Transfer(ctx context.Context, req *types.TransferRequest) (*types.TransferResult, error) {
	return e.wallets.Transfer(ctx, req)
}

// SupportedNetworks returns all networks with configured clients.
func (e *Engine) SupportedNetworks() []types.Network {
	return e.verifier.SupportedNetworks()
}

// IsNetworkSupported checks if a network is supported.
func (e *Engine) IsNetworkSupported(network types.Network) bool {
	return e.verifier.IsNetworkSupported(network) && e.wallets.IsNetworkSupported(network)
}

// Close closes all client connections.
func (e *Engine) Close() {
	e.verifier.Close()
}
