package utils

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/chainflow/txverify/types"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ParseVerificationRequest parses and validates a VerificationRequest from
// JSON. Shape failures are reported before any ledger access happens.
func ParseVerificationRequest(data []byte) (*types.VerificationRequest, error) {
	var req types.VerificationRequest

	if err := json.Unmarshal(data, &req); err != nil {
		return nil, &types.Error{
			Code:    types.ErrInvalidRequest,
			Message: fmt.Sprintf("failed to parse verification request: %v", err),
		}
	}

	if err := validate.Struct(&req); err != nil {
		return nil, &types.Error{
			Code:    types.ErrInvalidRequest,
			Message: fmt.Sprintf("validation failed: %v", err),
		}
	}

	if err := ValidateTransactionHash(req.TransactionHash); err != nil {
		return nil, &types.Error{
			Code:    types.ErrInvalidRequest,
			Message: fmt.Sprintf("invalid txHash: %v", err),
		}
	}

	if err := ValidateAddress(req.ExpectedSender); err != nil {
		return nil, &types.Error{
			Code:    types.ErrInvalidRequest,
			Message: fmt.Sprintf("invalid adminWalletAddress: %v", err),
		}
	}

	return &req, nil
}

// ParseTransferRequest parses and validates a TransferRequest from JSON.
func ParseTransferRequest(data []byte) (*types.TransferRequest, error) {
	var req types.TransferRequest

	if err := json.Unmarshal(data, &req); err != nil {
		return nil, &types.Error{
			Code:    types.ErrInvalidRequest,
			Message: fmt.Sprintf("failed to parse transfer request: %v", err),
		}
	}

	if err := validate.Struct(&req); err != nil {
		return nil, &types.Error{
			Code:    types.ErrInvalidRequest,
			Message: fmt.Sprintf("validation failed: %v", err),
		}
	}

	if err := ValidateAddress(req.To); err != nil {
		return nil, &types.Error{
			Code:    types.ErrInvalidRequest,
			Message: fmt.Sprintf("invalid to address: %v", err),
		}
	}

	if req.Token != "" {
		if err := ValidateAddress(req.Token); err != nil {
			return nil, &types.Error{
				Code:    types.ErrInvalidRequest,
				Message: fmt.Sprintf("invalid token address: %v", err),
			}
		}
	}

	if _, err := ValidateAmount(req.Amount); err != nil {
		return nil, &types.Error{
			Code:    types.ErrInvalidRequest,
			Message: fmt.Sprintf("invalid amount: %v", err),
		}
	}

	return &req, nil
}
