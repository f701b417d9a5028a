package clients

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainflow/txverify/types"
)

// ErrTxNotFound is returned by TransactionByHash when the ledger has no
// transaction with the requested hash. Callers distinguish it from transport
// failure via errors.Is.
var ErrTxNotFound = errors.New("transaction not found")

// LedgerClient is the engine's outbound dependency surface against a remote
// ledger node. Implementations must be safe for concurrent use.
type LedgerClient interface {
	// TransactionByHash fetches and normalizes a transaction, recovering
	// its sender. Returns ErrTxNotFound when the hash is unknown.
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.RawTransaction, error)

	// TokenSymbol issues a read-only symbol() call against a token contract.
	TokenSymbol(ctx context.Context, token common.Address) (string, error)

	// TokenDecimals issues a read-only decimals() call against a token contract.
	TokenDecimals(ctx context.Context, token common.Address) (uint8, error)

	// NativeBalance reports the base-asset balance of an address, in wei.
	NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error)

	// TokenBalance issues a read-only balanceOf(owner) call.
	TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error)

	// SendNative signs and submits a base-asset transfer.
	SendNative(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, wei *big.Int) (common.Hash, error)

	// SendToken signs and submits a transfer(to, rawAmount) call.
	SendToken(ctx context.Context, key *ecdsa.PrivateKey, token, to common.Address, rawAmount *big.Int) (common.Hash, error)

	Network() types.Network
	Close()
}
