// Package verification implements the transaction verification and
// classification engine: given a transaction hash and an expected sender,
// it fetches the transaction, checks the sender, and classifies what the
// transaction did (native transfer, token transfer, or opaque contract
// call) into a normalized human-readable summary.
package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainflow/txverify/clients"
	"github.com/chainflow/txverify/logger"
	"github.com/chainflow/txverify/metrics"
	"github.com/chainflow/txverify/types"
)

// Messages keyed on the sender-match boolean.
const (
	MsgSenderVerified = "Transaction verified as sent by expected sender."
	MsgSenderMismatch = "Transaction was NOT sent by the expected sender."
)

// Verifier is the contract for transaction verification.
type Verifier interface {
	Verify(ctx context.Context, req *types.VerificationRequest) (*types.VerificationResult, error)
}

// Service manages transaction verification across registered networks.
// It carries no per-request state; the token metadata cache is the only
// state shared across calls.
type Service struct {
	ledgers map[types.Network]clients.LedgerClient
	timeout time.Duration
	logger  logger.Logger
	metrics metrics.Recorder

	// token contract address -> types.TokenMetadata; last-writer-wins,
	// values are immutable once known.
	tokenMeta sync.Map
}

// NewService creates a new verification service.
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

	if _, exists := s.ledgers[network]; exists {
		return &types.Error{
			Code:    types.ErrUnsupportedNetwork,
			Message: fmt.Sprintf("network %q is already registered", network),
		}
	}

	s.ledgers[network] = client
	return nil
}

// Verify runs the full verification flow for one request. Request-shape,
// lookup, and transport failures come back as *types.Error; everything else
// produces a classified result, with decode failures absorbed into the
// complex-interaction fallback.
func (s *Service) Verify(ctx context.Context, req *types.VerificationRequest) (*types.VerificationResult, error) {
	start := time.Now()

	// Fast local validation before any network call.
	if err := req.Validate(); err != nil {
		return nil, &types.Error{
			Code:    types.ErrInvalidRequest,
			Message: fmt.Sprintf("invalid request: %v", err),
		}
	}

	client, lookupErr := s.clientFor(types.Network(req.Network))
	if lookupErr != nil {
		return nil, lookupErr
	}
	network := client.Network().String()

	verifyCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := client.TransactionByHash(verifyCtx, common.HexToHash(req.TransactionHash))
	if err != nil {
		if errors.Is(err, clients.ErrTxNotFound) {
			s.metrics.IncCounter("verify_not_found", map[string]string{"network": network})
			return nil, &types.Error{
				Code:    types.ErrTxNotFound,
				Message: fmt.Sprintf("transaction %s not found", req.TransactionHash),
			}
		}

		s.logger.Error("transaction fetch failed", map[string]any{
			"txHash":  req.TransactionHash,
			"network": network,
			"error":   err.Error(),
		})
		return nil, &types.Error{
			Code:    types.ErrNetworkError,
			Message: fmt.Sprintf("failed to fetch transaction: %v", err),
		}
	}

	// Sender validity is independent of the classification branch.
	isValid := strings.EqualFold(tx.From.Hex(), req.ExpectedSender)

	details := s.classify(verifyCtx, client, tx)

	s.logger.Debug("transaction classified", map[string]any{
		"txHash":      req.TransactionHash,
		"network":     network,
		"isValid":     isValid,
		"tokenSymbol": details.TokenSymbol,
	})
	s.metrics.IncCounter(verifyCounter(isValid), map[string]string{"network": network})
	s.metrics.ObserveLatency("verify", time.Since(start), map[string]string{"network": network})

	return assembleResult(isValid, details), nil
}

// assembleResult combines the sender-match boolean with the classification
// details into the final response shape.
func assembleResult(isValid bool, details *types.ClassifiedTransfer) *types.VerificationResult {
	message := MsgSenderMismatch
	if isValid {
		message = MsgSenderVerified
	}

	return &types.VerificationResult{
		IsValid: isValid,
		Message: message,
		Details: details,
	}
}

func verifyCounter(isValid bool) string {
	if isValid {
		return "verify_valid"
	}
	return "verify_invalid"
}

func (s *Service) clientFor(network types.Network) (clients.LedgerClient, *types.Error) {
	if network == "" {
		// With exactly one registered network it is the default.
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

// SupportedNetworks returns all networks that have configured clients.
func (s *Service) SupportedNetworks() []types.Network {
	networks := make([]types.Network, 0, len(s.ledgers))
	for network := range s.ledgers {
		networks = append(networks, network)
	}
	return networks
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
