package verification

import (
	"context"
	"fmt"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainflow/txverify/clients"
	"github.com/chainflow/txverify/logger"
	"github.com/chainflow/txverify/metrics"
	"github.com/chainflow/txverify/types"
)

var (
	testTxHash    = "0x" + "ab" + fmt.Sprintf("%062x", 1)
	senderAddr    = common.HexToAddress("0xE4d365a5a8fC0DCEE9E3C5985D7FcBab8B4A0fE1")
	recipientAddr = common.HexToAddress("0xCCcCCccccCCCCcCCCCCCcCcCcCCCcCcccCccCccC")
	tokenAddr     = common.HexToAddress("0x036CbD53842c5426634e7929541eC2318f3dCF7e")
)

func newTestService(client clients.LedgerClient) *Service {
	svc := NewService(5*time.Second, logger.NoopLogger{}, metrics.NoopRecorder{})
	if client != nil {
		_ = svc.AddClient(client.Network(), client)
	}
	return svc
}

// transferPayload encodes a transfer(address,uint256) call the way a wallet
// or contract would emit it on the wire.
func transferPayload(t *testing.T, to common.Address, amount *big.Int) []byte {
	t.Helper()
	packed, err := clients.TransferMethod.Inputs.Pack(to, amount)
	require.NoError(t, err)
	return append(append([]byte{}, clients.TransferMethod.ID...), packed...)
}

func fixedTx(tx *types.RawTransaction) func(context.Context, common.Hash) (*types.RawTransaction, error) {
	return func(ctx context.Context, hash common.Hash) (*types.RawTransaction, error) {
		return tx, nil
	}
}

func TestVerify_NativeTransfer(t *testing.T) {
	oneEther := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	client := &clients.MockLedgerClient{
		NetworkValue: types.NetworkBSCTestnet,
		TransactionByHashFunc: fixedTx(&types.RawTransaction{
			Hash:  common.HexToHash(testTxHash),
			From:  senderAddr,
			To:    &recipientAddr,
			Value: oneEther,
		}),
	}
	svc := newTestService(client)

	result, err := svc.Verify(context.Background(), &types.VerificationRequest{
		TransactionHash: testTxHash,
		ExpectedSender:  senderAddr.Hex(),
	})
	require.NoError(t, err)

	assert.True(t, result.IsValid)
	assert.Equal(t, MsgSenderVerified, result.Message)
	require.NotNil(t, result.Details)
	assert.Equal(t, "1.0", result.Details.Amount)
	assert.Equal(t, "tBNB", result.Details.TokenSymbol)
	assert.Equal(t, recipientAddr.Hex(), result.Details.To)
}

// A transaction that both carries value and a payload is still native: the
// value check wins over selector matching.
func TestVerify_NativeValueOutranksPayload(t *testing.T) {
	var symbolCalls int32
	client := &clients.MockLedgerClient{
		TransactionByHashFunc: func(ctx context.Context, hash common.Hash) (*types.RawTransaction, error) {
			return &types.RawTransaction{
				Hash:  hash,
				From:  senderAddr,
				To:    &tokenAddr,
				Value: big.NewInt(1e15),
				Data:  transferPayload(t, recipientAddr, big.NewInt(500)),
			}, nil
		},
		TokenSymbolFunc: func(ctx context.Context, token common.Address) (string, error) {
			atomic.AddInt32(&symbolCalls, 1)
			return "TKN", nil
		},
	}
	svc := newTestService(client)

	result, err := svc.Verify(context.Background(), &types.VerificationRequest{
		TransactionHash: testTxHash,
		ExpectedSender:  senderAddr.Hex(),
	})
	require.NoError(t, err)

	assert.Equal(t, "0.001", result.Details.Amount)
	assert.Equal(t, "tBNB", result.Details.TokenSymbol)
	assert.Zero(t, atomic.LoadInt32(&symbolCalls), "native branch must not fetch token metadata")
}

func TestVerify_TokenTransfer(t *testing.T) {
	// 5 tokens with 2 decimals
	raw := big.NewInt(500)
	client := &clients.MockLedgerClient{
		TransactionByHashFunc: func(ctx context.Context, hash common.Hash) (*types.RawTransaction, error) {
			return &types.RawTransaction{
				Hash:  hash,
				From:  senderAddr,
				To:    &tokenAddr,
				Value: big.NewInt(0),
				Data:  transferPayload(t, recipientAddr, raw),
			}, nil
		},
		TokenSymbolFunc: func(ctx context.Context, token common.Address) (string, error) {
			return "TKN", nil
		},
		TokenDecimalsFunc: func(ctx context.Context, token common.Address) (uint8, error) {
			return 2, nil
		},
	}
	svc := newTestService(client)

	result, err := svc.Verify(context.Background(), &types.VerificationRequest{
		TransactionHash: testTxHash,
		ExpectedSender:  senderAddr.Hex(),
	})
	require.NoError(t, err)

	require.NotNil(t, result.Details)
	assert.Equal(t, recipientAddr.Hex(), result.Details.To)
	assert.Equal(t, "5.00", result.Details.Amount)
	assert.Equal(t, "TKN", result.Details.TokenSymbol)
	assert.Equal(t, senderAddr.Hex(), result.Details.From)
}

// A payload that starts with the transfer selector but cannot be decoded
// degrades to the complex-interaction classification instead of erroring.
func TestVerify_MalformedTransferPayload(t *testing.T) {
	truncated := append(append([]byte{}, clients.TransferMethod.ID...), 0x01, 0x02, 0x03)
	client := &clients.MockLedgerClient{
		TransactionByHashFunc: func(ctx context.Context, hash common.Hash) (*types.RawTransaction, error) {
			return &types.RawTransaction{
				Hash:  hash,
				From:  senderAddr,
				To:    &tokenAddr,
				Value: big.NewInt(0),
				Data:  truncated,
			}, nil
		},
	}
	svc := newTestService(client)

	result, err := svc.Verify(context.Background(), &types.VerificationRequest{
		TransactionHash: testTxHash,
		ExpectedSender:  senderAddr.Hex(),
	})
	require.NoError(t, err)

	require.NotNil(t, result.Details)
	assert.Equal(t, tokenAddr.Hex(), result.Details.To)
	assert.Equal(t, "N/A", result.Details.Amount)
	assert.Equal(t, types.ComplexInteractionLabel, result.Details.TokenSymbol)
}

func TestVerify_OpaqueContractCall(t *testing.T) {
	// approve(address,uint256) selector, not a transfer
	payload := append([]byte{0x09, 0x5e, 0xa7, 0xb3}, make([]byte, 64)...)
	client := &clients.MockLedgerClient{
		TransactionByHashFunc: func(ctx context.Context, hash common.Hash) (*types.RawTransaction, error) {
			return &types.RawTransaction{
				Hash:  hash,
				From:  senderAddr,
				To:    &tokenAddr,
				Value: big.NewInt(0),
				Data:  payload,
			}, nil
		},
	}
	svc := newTestService(client)

	result, err := svc.Verify(context.Background(), &types.VerificationRequest{
		TransactionHash: testTxHash,
		ExpectedSender:  senderAddr.Hex(),
	})
	require.NoError(t, err)

	assert.Equal(t, "N/A", result.Details.Amount)
	assert.Equal(t, types.ContractInteractionLabel, result.Details.TokenSymbol)
}

func TestVerify_SenderComparisonIsCaseInsensitive(t *testing.T) {
	client := &clients.MockLedgerClient{
		TransactionByHashFunc: fixedTx(&types.RawTransaction{
			Hash:  common.HexToHash(testTxHash),
			From:  senderAddr,
			To:    &recipientAddr,
			Value: big.NewInt(1),
		}),
	}
	svc := newTestService(client)

	tests := []struct {
		name     string
		expected string
		valid    bool
	}{
		{"lowercase match", "0xe4d365a5a8fc0dcee9e3c5985d7fcbab8b4a0fe1", true},
		{"uppercase match", "0XE4D365A5A8FC0DCEE9E3C5985D7FCBAB8B4A0FE1", true},
		{"checksummed match", senderAddr.Hex(), true},
		{"different address", recipientAddr.Hex(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Verify(context.Background(), &types.VerificationRequest{
				TransactionHash: testTxHash,
				ExpectedSender:  tt.expected,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.IsValid)
			if tt.valid {
				assert.Equal(t, MsgSenderVerified, result.Message)
			} else {
				assert.Equal(t, MsgSenderMismatch, result.Message)
			}
			// Classification is reported regardless of sender validity.
			require.NotNil(t, result.Details)
		})
	}
}

// Shape failures are rejected before any ledger access.
func TestVerify_InvalidRequestSkipsLedger(t *testing.T) {
	var fetches int32
	client := &clients.MockLedgerClient{
		TransactionByHashFunc: func(ctx context.Context, hash common.Hash) (*types.RawTransaction, error) {
			atomic.AddInt32(&fetches, 1)
			return nil, fmt.Errorf("should not be reached")
		},
	}
	svc := newTestService(client)

	tests := []struct {
		name string
		req  *types.VerificationRequest
	}{
		{"missing hash", &types.VerificationRequest{ExpectedSender: senderAddr.Hex()}},
		{"missing sender", &types.VerificationRequest{TransactionHash: testTxHash}},
		{"empty request", &types.VerificationRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Verify(context.Background(), tt.req)
			assert.Nil(t, result)
			require.Error(t, err)

			verr, ok := err.(*types.Error)
			require.True(t, ok)
			assert.Equal(t, types.ErrInvalidRequest, verr.Code)
		})
	}

	assert.Zero(t, atomic.LoadInt32(&fetches))
}

func TestVerify_TransactionNotFound(t *testing.T) {
	client := &clients.MockLedgerClient{
		TransactionByHashFunc: func(ctx context.Context, hash common.Hash) (*types.RawTransaction, error) {
			return nil, clients.ErrTxNotFound
		},
	}
	svc := newTestService(client)

	result, err := svc.Verify(context.Background(), &types.VerificationRequest{
		TransactionHash: testTxHash,
		ExpectedSender:  senderAddr.Hex(),
	})
	assert.Nil(t, result)
	require.Error(t, err)

	verr, ok := err.(*types.Error)
	require.True(t, ok)
	assert.Equal(t, types.ErrTxNotFound, verr.Code)
}

func TestVerify_NetworkError(t *testing.T) {
	client := &clients.MockLedgerClient{
		TransactionByHashFunc: func(ctx context.Context, hash common.Hash) (*types.RawTransaction, error) {
			return nil, fmt.Errorf("connection refused")
		},
	}
	svc := newTestService(client)

	result, err := svc.Verify(context.Background(), &types.VerificationRequest{
		TransactionHash: testTxHash,
		ExpectedSender:  senderAddr.Hex(),
	})
	assert.Nil(t, result)
	require.Error(t, err)

	verr, ok := err.(*types.Error)
	require.True(t, ok)
	assert.Equal(t, types.ErrNetworkError, verr.Code)
}

func TestVerify_UnsupportedNetwork(t *testing.T) {
	client := &clients.MockLedgerClient{NetworkValue: types.NetworkBSCTestnet}
	svc := newTestService(client)

	result, err := svc.Verify(context.Background(), &types.VerificationRequest{
		TransactionHash: testTxHash,
		ExpectedSender:  senderAddr.Hex(),
		Network:         "polygon",
	})
	assert.Nil(t, result)
	require.Error(t, err)

	verr, ok := err.(*types.Error)
	require.True(t, ok)
	assert.Equal(t, types.ErrUnsupportedNetwork, verr.Code)
}

func TestVerify_DefaultsToSoleNetwork(t *testing.T) {
	client := &clients.MockLedgerClient{
		NetworkValue: types.NetworkSepolia,
		TransactionByHashFunc: fixedTx(&types.RawTransaction{
			Hash:  common.HexToHash(testTxHash),
			From:  senderAddr,
			To:    &recipientAddr,
			Value: big.NewInt(1e18),
		}),
	}
	svc := newTestService(client)

	result, err := svc.Verify(context.Background(), &types.VerificationRequest{
		TransactionHash: testTxHash,
		ExpectedSender:  senderAddr.Hex(),
	})
	require.NoError(t, err)
	assert.Equal(t, "ETH", result.Details.TokenSymbol)
}

func TestSupportedNetworks(t *testing.T) {
	svc := NewService(time.Second, logger.NoopLogger{}, metrics.NoopRecorder{})
	require.NoError(t, svc.AddClient(types.NetworkBSC, &clients.MockLedgerClient{NetworkValue: types.NetworkBSC}))
	require.NoError(t, svc.AddClient(types.NetworkPolygon, &clients.MockLedgerClient{NetworkValue: types.NetworkPolygon}))

	assert.Len(t, svc.SupportedNetworks(), 2)
	assert.True(t, svc.IsNetworkSupported(types.NetworkBSC))
	assert.False(t, svc.IsNetworkSupported(types.NetworkSepolia))

	err := svc.AddClient(types.NetworkBSC, &clients.MockLedgerClient{NetworkValue: types.NetworkBSC})
	assert.Error(t, err, "registering the same network twice is rejected")
}
