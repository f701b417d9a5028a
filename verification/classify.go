package verification

import (
	"bytes"
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainflow/txverify/clients"
	"github.com/chainflow/txverify/types"
	"github.com/chainflow/txverify/utils"
)

// Placeholder for fields a classification branch has no value for.
const notApplicable = "N/A"

type classification int

const (
	classNative classification = iota
	classTokenCandidate
	classOpaque
)

// matchSelector decides which decoder applies, as a priority chain:
// a value-bearing transaction is always native, even when it also carries
// call data; otherwise a payload starting with the transfer selector is a
// token-transfer candidate; everything else is opaque.
func matchSelector(tx *types.RawTransaction) classification {
	if tx.Value != nil && tx.Value.Sign() > 0 {
		return classNative
	}

	if tx.To != nil && len(tx.Data) >= 4 && bytes.Equal(tx.Data[:4], clients.TransferMethod.ID) {
		return classTokenCandidate
	}

	return classOpaque
}

// decodeTransfer parses a token-transfer-candidate payload into its
// recipient and raw amount. Any malformed encoding or unexpected argument
// shape reports failure as data; it never escapes as an error.
func decodeTransfer(tx *types.RawTransaction) (*types.DecodedTransfer, bool) {
	args, err := clients.TransferMethod.Inputs.Unpack(tx.Data[4:])
	if err != nil || len(args) != 2 {
		return nil, false
	}

	recipient, ok := args[0].(common.Address)
	if !ok {
		return nil, false
	}

	rawAmount, ok := args[1].(*big.Int)
	if !ok {
		return nil, false
	}

	return &types.DecodedTransfer{
		Recipient:     recipient,
		RawAmount:     rawAmount,
		TokenContract: *tx.To,
	}, true
}

// classify drives the decision tree and normalizes the outcome. It is total
// over all fetched transactions: every branch, including decode failure,
// lands on a populated ClassifiedTransfer.
func (s *Service) classify(ctx context.Context, client clients.LedgerClient, tx *types.RawTransaction) *types.ClassifiedTransfer {
	switch matchSelector(tx) {
	case classNative:
		return &types.ClassifiedTransfer{
			From:        tx.From.Hex(),
			To:          addressOrNA(tx.To),
			Amount:      utils.FormatNativeAmount(tx.Value),
			TokenSymbol: client.Network().NativeSymbol(),
		}

	case classTokenCandidate:
		decoded, ok := decodeTransfer(tx)
		if !ok {
			s.logger.Debug("transfer payload decode failed, falling back", map[string]any{
				"txHash": tx.Hash.Hex(),
			})
			return s.fallbackTransfer(tx, types.ComplexInteractionLabel)
		}

		meta := s.resolveTokenMetadata(ctx, client, decoded.TokenContract)
		return &types.ClassifiedTransfer{
			From:        tx.From.Hex(),
			To:          decoded.Recipient.Hex(),
			Amount:      utils.FormatTokenAmount(decoded.RawAmount, meta.Decimals),
			TokenSymbol: meta.Symbol,
		}

	default:
		return s.fallbackTransfer(tx, types.ContractInteractionLabel)
	}
}

// fallbackTransfer is the lower-fidelity classification used when the
// payload cannot be interpreted as a plain transfer.
func (s *Service) fallbackTransfer(tx *types.RawTransaction, label string) *types.ClassifiedTransfer {
	return &types.ClassifiedTransfer{
		From:        tx.From.Hex(),
		To:          addressOrNA(tx.To),
		Amount:      notApplicable,
		TokenSymbol: label,
	}
}

func addressOrNA(addr *common.Address) string {
	if addr == nil {
		return notApplicable
	}
	return addr.Hex()
}
