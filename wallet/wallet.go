// Package wallet provides the ledger-access operations around the
// verification engine: custody key generation, balance queries, and
// outbound native/token transfers. Generated key material is returned to
// the caller and never persisted here.
package wallet

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/chainflow/txverify/clients"
	"github.com/chainflow/txverify/logger"
	"github.com/chainflow/txverify/metrics"
	"github.com/chainflow/txverify/types"
	"github.com/chainflow/txverify/utils"
)

// NewAccount generates fresh secp256k1 custody key material.
func NewAccount() (*types.Account, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	return &types.Account{
		Address:    crypto.PubkeyToAddress(key.PublicKey).Hex(),
		PrivateKey: hexutil.Encode(crypto.FromECDSA(key)),
	}, nil
}

// Service manages wallet operations across registered networks.
type Service struct {
	ledgers map[types.Network]clients.LedgerClient
	timeout time.Duration
	logger  logger.Logger
	metrics metrics.Recorder
}

// NewService creates a new wallet service.
func NewService(timeout time.Duration, log logger.Logger, rec metrics.Recorder) *Service {
	return &Service{
		ledgers: make(map[types.Network]clients.LedgerClient),
		timeout: timeout,
		logger:  log,
		metrics: rec,
	}
}

// AddClient registers a ledger client for a network.
func (s *Service) AddClient(network types.Network, client clients.LedgerClient) error {
	if network == "" {
		return &types.Error{
			Code:    types.ErrUnsupportedNetwork,
			Message: "network name must not be empty",
		}
	}

	s.ledgers[network] = client
	return nil
}

// Balances reports the native balance of an address plus the balances of
// the given token contracts, keyed by contract address. A failing token
// lookup is reported as "Error" for that token rather than failing the
// whole sheet.
func (s *Service) Balances(ctx context.Context, network types.Network, address string, tokens []string) (*types.BalanceSheet, error) {
	client, cerr := s.clientFor(network)
	if cerr != nil {
		return nil, cerr
	}

	if err := utils.ValidateAddress(address); err != nil {
		return nil, &types.Error{
			Code:    types.ErrInvalidRequest,
			Message: fmt.Sprintf("invalid address: %v", err),
		}
	}

	balCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	owner := common.HexToAddress(address)

	native, err := client.NativeBalance(balCtx, owner)
	if err != nil {
		return nil, &types.Error{
			Code:    types.ErrNetworkError,
			Message: fmt.Sprintf("failed to fetch native balance: %v", err),
		}
	}

	sheet := &types.BalanceSheet{
		Address: address,
		Native:  utils.FormatNativeAmount(native),
	}

	if len(tokens) > 0 {
		sheet.Tokens = make(map[string]string, len(tokens))
	}
	for _, token := range tokens {
		sheet.Tokens[token] = s.tokenBalance(balCtx, client, common.HexToAddress(token), owner)
	}

	return sheet, nil
}

// tokenBalance fetches balanceOf and decimals concurrently and renders the
// display amount, matching the paired lookups the balance views issue.
func (s *Service) tokenBalance(ctx context.Context, client clients.LedgerClient, token, owner common.Address) string {
	type balanceResult struct {
		balance *big.Int
		err     error
	}
	type decimalsResult struct {
		decimals uint8
		err      error
	}

	balCh := make(chan balanceResult, 1)
	decCh := make(chan decimalsResult, 1)

	go func() {
		bal, err := client.TokenBalance(ctx, token, owner)
		balCh <- balanceResult{balance: bal, err: err}
	}()

	go func() {
		dec, err := client.TokenDecimals(ctx, token)
		decCh <- decimalsResult{decimals: dec, err: err}
	}()

	bal := <-balCh
	dec := <-decCh

	if bal.err != nil || dec.err != nil {
		s.logger.Warn("token balance lookup failed", map[string]any{
			"token": token.Hex(),
			"owner": owner.Hex(),
		})
		return "Error"
	}

	return utils.FormatTokenAmount(bal.balance, dec.decimals)
}

// Transfer signs and submits a native or token transfer.
func (s *Service) Transfer(ctx context.Context, req *types.TransferRequest) (*types.TransferResult, error) {
	client, cerr := s.clientFor(types.Network(req.Network))
	if cerr != nil {
		return nil, cerr
	}
	network := client.Network()

	key, err := crypto.HexToECDSA(strings.TrimPrefix(req.PrivateKey, "0x"))
	if err != nil {
		return nil, &types.Error{
			Code:    types.ErrInvalidRequest,
			Message: fmt.Sprintf("invalid private key: %v", err),
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	to := common.HexToAddress(req.To)

	var txHash common.Hash
	if req.Token == "" {
		wei, err := utils.ParseAmountWithDecimals(req.Amount, utils.NativeDecimals)
		if err != nil {
			return nil, &types.Error{
				Code:    types.ErrInvalidRequest,
				Message: fmt.Sprintf("invalid amount: %v", err),
			}
		}
		txHash, err = client.SendNative(sendCtx, key, to, wei)
		if err != nil {
			return nil, &types.Error{
				Code:    types.ErrTransferFailed,
				Message: fmt.Sprintf("native transfer failed: %v", err),
			}
		}
	} else {
		token := common.HexToAddress(req.Token)

		// The declared precision decides how the display amount scales;
		// without it the transfer cannot be constructed.
		decimals, err := client.TokenDecimals(sendCtx, token)
		if err != nil {
			return nil, &types.Error{
				Code:    types.ErrTransferFailed,
				Message: fmt.Sprintf("failed to resolve token decimals: %v", err),
			}
		}

		raw, err := utils.ParseAmountWithDecimals(req.Amount, decimals)
		if err != nil {
			return nil, &types.Error{
				Code:    types.ErrInvalidRequest,
				Message: fmt.Sprintf("invalid amount: %v", err),
			}
		}

		txHash, err = client.SendToken(sendCtx, key, token, to, raw)
		if err != nil {
			return nil, &types.Error{
				Code:    types.ErrTransferFailed,
				Message: fmt.Sprintf("token transfer failed: %v", err),
			}
		}
	}

	s.logger.Info("transfer submitted", map[string]any{
		"txHash":  txHash.Hex(),
		"network": network.String(),
		"token":   req.Token,
	})
	s.metrics.IncCounter("transfer_submitted", map[string]string{"network": network.String()})

	return &types.TransferResult{
		TxHash:  txHash.Hex(),
		Network: network.String(),
	}, nil
}

func (s *Service) clientFor(network types.Network) (clients.LedgerClient, *types.Error) {
	if network == "" {
		if len(s.ledgers) == 1 {
			for _, client := range s.ledgers {
				return client, nil
			}
		}
		return nil, &types.Error{
			Code:    types.ErrInvalidRequest,
			Message: "network is required when multiple networks are registered",
		}
	}

	client, ok := s.ledgers[network]
	if !ok {
		return nil, &types.Error{
			Code:    types.ErrUnsupportedNetwork,
			Message: fmt.Sprintf("no ledger client configured for network %s", network),
		}
	}

	return client, nil
}

// IsNetworkSupported checks if a network has a configured client.
func (s *Service) IsNetworkSupported(network types.Network) bool {
	_, ok := s.ledgers[network]
	return ok
}

// Close closes all client connections.
func (s *Service) Close() {
	for _, client := range s.ledgers {
		client.Close()
	}
}
