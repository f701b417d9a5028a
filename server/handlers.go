package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	txverify "github.com/chainflow/txverify"
	"github.com/chainflow/txverify/config"
	"github.com/chainflow/txverify/logger"
	"github.com/chainflow/txverify/types"
	"github.com/chainflow/txverify/utils"
)

const maxRequestBodySize = 1 << 20 // 1MB

// handleVerifyTransaction returns a handler for transaction verification.
// POST /api/v1/verify-tx
func handleVerifyTransaction(engine *txverify.Engine, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
		if err != nil {
			writeError(w, types.ErrInvalidRequest, "failed to read request body", http.StatusBadRequest)
			return
		}

		req, err := utils.ParseVerificationRequest(body)
		if err != nil {
			writeServiceError(w, log, err)
			return
		}

		result, err := engine.VerifyTransaction(r.Context(), req)
		if err != nil {
			writeServiceError(w, log, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	})
}

// handleNewWallet returns a handler that generates fresh key material.
// The material is returned to the caller only; nothing is stored.
// POST /api/v1/wallets
func handleNewWallet(engine *txverify.Engine, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, err := engine.NewAccount()
		if err != nil {
			log.Error("wallet generation failed", map[string]any{"error": err.Error()})
			writeError(w, types.ErrConfigError, "failed to generate wallet", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, account)
	})
}

// handleBalances returns a handler reporting native and configured-token
// balances for an address.
// GET /api/v1/wallets/{address}/balances?network={network}
func handleBalances(engine *txverify.Engine, cfg *config.Config, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		address := r.PathValue("address")
		network := types.Network(r.URL.Query().Get("network"))
		if network == "" {
			network = cfg.Network
		}

		sheet, err := engine.Balances(r.Context(), network, address, cfg.TokenContracts)
		if err != nil {
			writeServiceError(w, log, err)
			return
		}

		writeJSON(w, http.StatusOK, sheet)
	})
}

// handleTransfer returns a handler that signs and submits a transfer.
// POST /api/v1/transfers
func handleTransfer(engine *txverify.Engine, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
		if err != nil {
			writeError(w, types.ErrInvalidRequest, "failed to read request body", http.StatusBadRequest)
			return
		}

		req, err := utils.ParseTransferRequest(body)
		if err != nil {
			writeServiceError(w, log, err)
			return
		}

		result, err := engine.Transfer(r.Context(), req)
		if err != nil {
			writeServiceError(w, log, err)
			return
		}

		writeJSON(w, http.StatusCreated, result)
	})
}

// writeServiceError maps a service error to an HTTP status keyed on its
// machine-checkable code.
func writeServiceError(w http.ResponseWriter, log logger.Logger, err error) {
	var svcErr *types.Error
	if !errors.As(err, &svcErr) {
		log.Error("unexpected error", map[string]any{"error": err.Error()})
		writeError(w, types.ErrNetworkError, "internal server error", http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch svcErr.Code {
	case types.ErrInvalidRequest:
		status = http.StatusBadRequest
	case types.ErrTxNotFound:
		status = http.StatusNotFound
	case types.ErrUnsupportedNetwork:
		status = http.StatusBadRequest
	case types.ErrNetworkError:
		status = http.StatusBadGateway
	case types.ErrTransferFailed:
		status = http.StatusBadGateway
	}

	writeError(w, svcErr.Code, svcErr.Message, status)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, code, message string, status int) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
