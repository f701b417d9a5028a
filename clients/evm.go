package clients

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/chainflow/txverify/types"
)

const nativeTransferGas = 21000

var _ LedgerClient = (*EVMClient)(nil)

// EVMClient provides ledger access over an EVM JSON-RPC endpoint.
type EVMClient struct {
	network types.Network
	rpcURL  string
	client  *ethclient.Client

	mu      sync.Mutex
	chainID *big.Int
}

func NewEVMClient(network types.Network, rpcURL string) (*EVMClient, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to EVM RPC: %w", err)
	}

	return &EVMClient{
		network: network,
		rpcURL:  rpcURL,
		client:  client,
	}, nil
}

func (e *EVMClient) Network() types.Network {
	return e.network
}

func (e *EVMClient) Close() {
	e.client.Close()
}

// TransactionByHash implements LedgerClient. The sender is recovered from
// the transaction signature; pending transactions are reported the same way
// as mined ones.
func (e *EVMClient) TransactionByHash(ctx context.Context, hash common.Hash) (*types.RawTransaction, error) {
	tx, _, err := e.client.TransactionByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, ErrTxNotFound
		}
		return nil, fmt.Errorf("fetch transaction %s: %w", hash, err)
	}

	chainID, err := e.signerChainID(ctx)
	if err != nil {
		return nil, err
	}

	from, err := gethtypes.Sender(gethtypes.LatestSignerForChainID(chainID), tx)
	if err != nil {
		return nil, fmt.Errorf("recover sender of %s: %w", hash, err)
	}

	return &types.RawTransaction{
		Hash:  tx.Hash(),
		From:  from,
		To:    tx.To(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}, nil
}

// TokenSymbol implements LedgerClient.
func (e *EVMClient) TokenSymbol(ctx context.Context, token common.Address) (string, error) {
	out, err := e.callERC20(ctx, token, "symbol")
	if err != nil {
		return "", err
	}

	sym, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("symbol() of %s returned unexpected type", token)
	}
	return sym, nil
}

// TokenDecimals implements LedgerClient.
func (e *EVMClient) TokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	out, err := e.callERC20(ctx, token, "decimals")
	if err != nil {
		return 0, err
	}

	dec, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("decimals() of %s returned unexpected type", token)
	}
	return dec, nil
}

// NativeBalance implements LedgerClient.
func (e *EVMClient) NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	bal, err := e.client.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("balance of %s: %w", addr, err)
	}
	return bal, nil
}

// TokenBalance implements LedgerClient.
func (e *EVMClient) TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	out, err := e.callERC20(ctx, token, "balanceOf", owner)
	if err != nil {
		return nil, err
	}

	bal, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf() of %s returned unexpected type", token)
	}
	return bal, nil
}

// SendNative implements LedgerClient.
func (e *EVMClient) SendNative(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, wei *big.Int) (common.Hash, error) {
	return e.submit(ctx, key, &to, wei, nil, nativeTransferGas)
}

// SendToken implements LedgerClient.
func (e *EVMClient) SendToken(ctx context.Context, key *ecdsa.PrivateKey, token, to common.Address, rawAmount *big.Int) (common.Hash, error) {
	callData, err := ERC20ABI.Pack("transfer", to, rawAmount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack transfer call: %w", err)
	}

	from := crypto.PubkeyToAddress(key.PublicKey)
	gasLimit, err := e.client.EstimateGas(ctx, ethereum.CallMsg{
		From: from,
		To:   &token,
		Data: callData,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("estimate transfer gas: %w", err)
	}

	return e.submit(ctx, key, &token, big.NewInt(0), callData, gasLimit)
}

func (e *EVMClient) submit(ctx context.Context, key *ecdsa.PrivateKey, to *common.Address, value *big.Int, data []byte, gasLimit uint64) (common.Hash, error) {
	from := crypto.PubkeyToAddress(key.PublicKey)

	nonce, err := e.client.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("fetch nonce: %w", err)
	}

	gasPrice, err := e.client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("suggest gas price: %w", err)
	}

	chainID, err := e.signerChainID(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	tx := gethtypes.NewTx(&gethtypes.LegacyTx{
		Nonce:    nonce,
		To:       to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := gethtypes.SignTx(tx, gethtypes.LatestSignerForChainID(chainID), key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign transaction: %w", err)
	}

	if err := e.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("broadcast transaction: %w", err)
	}

	return signed.Hash(), nil
}

// callERC20 packs and issues a read-only call against a token contract.
func (e *EVMClient) callERC20(ctx context.Context, token common.Address, method string, args ...interface{}) ([]interface{}, error) {
	callData, err := ERC20ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s call: %w", method, err)
	}

	res, err := e.client.CallContract(ctx, ethereum.CallMsg{
		To:   &token,
		Data: callData,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s() call against %s: %w", method, token, err)
	}

	out, err := ERC20ABI.Unpack(method, res)
	if err != nil {
		return nil, fmt.Errorf("decode %s() result: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s() of %s returned no values", method, token)
	}

	return out, nil
}

func (e *EVMClient) signerChainID(ctx context.Context) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.chainID != nil {
		return e.chainID, nil
	}

	chainID, err := e.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch chain ID: %w", err)
	}

	e.chainID = chainID
	return chainID, nil
}
