package types

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// VerificationRequest is the inbound payload for transaction verification.
// The JSON field names match the wire contract consumed by the web client.
type VerificationRequest struct {
	// Hash of the transaction to verify.
	TransactionHash string `json:"txHash" validate:"required"`

	// Address the transaction is expected to have been sent from.
	// Comparison against the actual sender is case-insensitive.
	ExpectedSender string `json:"adminWalletAddress" validate:"required"`

	// Network to look the transaction up on. Optional when exactly one
	// network is registered with the engine.
	Network string `json:"network,omitempty"`
}

// Validate checks that the VerificationRequest contains all required fields.
func (r *VerificationRequest) Validate() error {
	if r.TransactionHash == "" {
		return fmt.Errorf("txHash is required")
	}

	if r.ExpectedSender == "" {
		return fmt.Errorf("adminWalletAddress is required")
	}

	return nil
}

// RawTransaction is the normalized on-chain transaction as fetched from a
// ledger client. Immutable once fetched.
type RawTransaction struct {
	Hash common.Hash

	// Recovered sender of the transaction.
	From common.Address

	// Destination address; nil for contract-creation transactions.
	To *common.Address

	// Native-unit amount attached to the transaction, in wei.
	Value *big.Int

	// Raw call payload.
	Data []byte
}

// DecodedTransfer is a successfully decoded transfer(address,uint256) call.
// Never partially populated: either the whole decode succeeds or the
// transaction falls back to the complex-interaction classification.
type DecodedTransfer struct {
	Recipient     common.Address
	RawAmount     *big.Int
	TokenContract common.Address
}

// TokenMetadata holds the display metadata of a token contract.
type TokenMetadata struct {
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// Defaults used when token metadata cannot be resolved. Metadata resolution
// failure is non-fatal and must never fail a verification request.
const (
	UnknownTokenSymbol   = "Unknown Token"
	UnknownTokenDecimals = uint8(18)
)

// Classification labels for transactions whose payload could not be decoded
// into a plain transfer.
const (
	ComplexInteractionLabel  = "Complex Interaction"
	ContractInteractionLabel = "Contract Interaction"
)

// ClassifiedTransfer is the normalized, human-readable summary of what a
// transaction did, regardless of classification branch. To and Amount are
// "N/A" where no value applies.
type ClassifiedTransfer struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Amount      string `json:"amount"`
	TokenSymbol string `json:"tokenSymbol"`
}

// VerificationResult is the final outcome of a verification request.
// IsValid is computed strictly from sender equality and is independent of
// the classification branch.
type VerificationResult struct {
	IsValid bool                `json:"isValid"`
	Message string              `json:"message"`
	Details *ClassifiedTransfer `json:"details,omitempty"`
}

// Account is freshly generated custody key material. It is returned to the
// caller and never persisted by this library.
type Account struct {
	Address    string `json:"address"`
	PrivateKey string `json:"privateKey"`
}

// BalanceSheet reports the native and token balances of one address.
type BalanceSheet struct {
	Address string            `json:"address"`
	Native  string            `json:"native"`
	Tokens  map[string]string `json:"tokens,omitempty"`
}

// TransferRequest asks for a native or token transfer to be signed and
// submitted. Token is empty for native transfers.
type TransferRequest struct {
	PrivateKey string `json:"privateKey" validate:"required"`
	To         string `json:"to" validate:"required"`
	Amount     string `json:"amount" validate:"required"`
	Token      string `json:"token,omitempty"`
	Network    string `json:"network,omitempty"`
}

// TransferResult reports a submitted transfer.
type TransferResult struct {
	TxHash  string `json:"txHash"`
	Network string `json:"network"`
}

// ClientConfig contains configuration for a ledger client.
type ClientConfig struct {
	Network Network       `json:"network"`
	RPCUrl  string        `json:"rpcUrl"`
	Timeout time.Duration `json:"timeout,omitempty"`
}

// Error is a machine-checkable failure carried alongside a human-readable
// message. Only request-shape, lookup, and transport failures surface as
// errors; every other internal failure degrades into a lower-fidelity
// classification.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrInvalidRequest     = "INVALID_REQUEST"
	ErrTxNotFound         = "TX_NOT_FOUND"
	ErrNetworkError       = "NETWORK_ERROR"
	ErrUnsupportedNetwork = "UNSUPPORTED_NETWORK"
	ErrTransferFailed     = "TRANSFER_FAILED"
	ErrConfigError        = "CONFIG_ERROR"
)
