package clients

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainflow/txverify/types"
)

var _ LedgerClient = (*MockLedgerClient)(nil)

// MockLedgerClient is a LedgerClient backed by function fields, for tests
// that need ledger behavior without a real node. Unset fields fail loudly.
type MockLedgerClient struct {
	NetworkValue types.Network

	TransactionByHashFunc func(ctx context.Context, hash common.Hash) (*types.RawTransaction, error)
	TokenSymbolFunc       func(ctx context.Context, token common.Address) (string, error)
	TokenDecimalsFunc     func(ctx context.Context, token common.Address) (uint8, error)
	NativeBalanceFunc     func(ctx context.Context, addr common.Address) (*big.Int, error)
	TokenBalanceFunc      func(ctx context.Context, token, owner common.Address) (*big.Int, error)
	SendNativeFunc        func(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, wei *big.Int) (common.Hash, error)
	SendTokenFunc         func(ctx context.Context, key *ecdsa.PrivateKey, token, to common.Address, rawAmount *big.Int) (common.Hash, error)
}

func (m *MockLedgerClient) TransactionByHash(ctx context.Context, hash common.Hash) (*types.RawTransaction, error) {
	if m.TransactionByHashFunc == nil {
		return nil, fmt.Errorf("unexpected TransactionByHash call")
	}
	return m.TransactionByHashFunc(ctx, hash)
}

func (m *MockLedgerClient) TokenSymbol(ctx context.Context, token common.Address) (string, error) {
	if m.TokenSymbolFunc == nil {
		return "", fmt.Errorf("unexpected TokenSymbol call")
	}
	return m.TokenSymbolFunc(ctx, token)
}

func (m *MockLedgerClient) TokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	if m.TokenDecimalsFunc == nil {
		return 0, fmt.Errorf("unexpected TokenDecimals call")
	}
	return m.TokenDecimalsFunc(ctx, token)
}

func (m *MockLedgerClient) NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	if m.NativeBalanceFunc == nil {
		return nil, fmt.Errorf("unexpected NativeBalance call")
	}
	return m.NativeBalanceFunc(ctx, addr)
}

func (m *MockLedgerClient) TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	if m.TokenBalanceFunc == nil {
		return nil, fmt.Errorf("unexpected TokenBalance call")
	}
	return m.TokenBalanceFunc(ctx, token, owner)
}

func (m *MockLedgerClient) SendNative(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, wei *big.Int) (common.Hash, error) {
	if m.SendNativeFunc == nil {
		return common.Hash{}, fmt.Errorf("unexpected SendNative call")
	}
	return m.SendNativeFunc(ctx, key, to, wei)
}

func (m *MockLedgerClient) SendToken(ctx context.Context, key *ecdsa.PrivateKey, token, to common.Address, rawAmount *big.Int) (common.Hash, error) {
	if m.SendTokenFunc == nil {
		return common.Hash{}, fmt.Errorf("unexpected SendToken call")
	}
	return m.SendTokenFunc(ctx, key, token, to, rawAmount)
}

func (m *MockLedgerClient) Network() types.Network {
	if m.NetworkValue == "" {
		return types.NetworkBSCTestnet
	}
	return m.NetworkValue
}

func (m *MockLedgerClient) Close() {}
