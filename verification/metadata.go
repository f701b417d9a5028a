package verification

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainflow/txverify/clients"
	"github.com/chainflow/txverify/types"
)

// resolveTokenMetadata resolves the display metadata of a token contract.
// The symbol() and decimals() queries are independent and issued
// concurrently; if either fails the whole resolution falls back to the
// unknown-token defaults. Resolution failure is never fatal to the request.
//
// Successful lookups are cached process-wide. Concurrent misses for the same
// token may each perform the lookup; last-writer-wins is fine since metadata
// is immutable once known. Failures are not cached so a later request can
// retry a transiently failing contract.
func (s *Service) resolveTokenMetadata(ctx context.Context, client clients.LedgerClient, token common.Address) types.TokenMetadata {
	if cached, ok := s.tokenMeta.Load(token); ok {
		return cached.(types.TokenMetadata)
	}

	type symbolResult struct {
		symbol string
		err    error
	}
	type decimalsResult struct {
		decimals uint8
		err      error
	}

	symbolCh := make(chan symbolResult, 1)
	decimalsCh := make(chan decimalsResult, 1)

	go func() {
		symbol, err := client.TokenSymbol(ctx, token)
		symbolCh <- symbolResult{symbol: symbol, err: err}
	}()

	go func() {
		decimals, err := client.TokenDecimals(ctx, token)
		decimalsCh <- decimalsResult{decimals: decimals, err: err}
	}()

	symbol := <-symbolCh
	decimals := <-decimalsCh

	if symbol.err != nil || decimals.err != nil {
		s.logger.Warn("token metadata resolution failed, using defaults", map[string]any{
			"token":       token.Hex(),
			"symbolErr":   errString(symbol.err),
			"decimalsErr": errString(decimals.err),
		})
		return types.TokenMetadata{
			Symbol:   types.UnknownTokenSymbol,
			Decimals: types.UnknownTokenDecimals,
		}
	}

	meta := types.TokenMetadata{
		Symbol:   symbol.symbol,
		Decimals: decimals.decimals,
	}
	s.tokenMeta.Store(token, meta)

	return meta
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
