package utils

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// NativeDecimals is the display precision of the base asset on EVM ledgers.
const NativeDecimals = 18

var hexRegex = regexp.MustCompile("^[0-9a-fA-F]+$")

// ValidateTransactionHash checks the shape of an EVM transaction hash
// (0x followed by 64 hex characters).
func ValidateTransactionHash(hash string) error {
	if hash == "" {
		return fmt.Errorf("transaction hash cannot be empty")
	}
	if !strings.HasPrefix(hash, "0x") {
		return fmt.Errorf("transaction hash must start with 0x")
	}
	if len(hash) != 66 {
		return fmt.Errorf("transaction hash must be 66 characters long")
	}
	if !hexRegex.MatchString(hash[2:]) {
		return fmt.Errorf("transaction hash must be valid hex")
	}

	return nil
}

// ValidateAddress checks the shape of an EVM address
// (0x followed by 40 hex characters). Checksum casing is not enforced;
// addresses compare case-insensitively throughout.
func ValidateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("address cannot be empty")
	}
	if !strings.HasPrefix(address, "0x") {
		return fmt.Errorf("address must start with 0x")
	}
	if len(address) != 42 {
		return fmt.Errorf("address must be 42 characters long")
	}
	if !hexRegex.MatchString(address[2:]) {
		return fmt.Errorf("address must be valid hex")
	}

	return nil
}

// ValidateAmount checks that an amount string is a non-negative decimal.
func ValidateAmount(amount string) (*decimal.Decimal, error) {
	if amount == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	if dec.IsNegative() {
		return nil, fmt.Errorf("amount cannot be negative")
	}

	return &dec, nil
}

// FormatTokenAmount renders a raw token amount at the token's declared
// precision: rawAmount / 10^decimals, fixed to `decimals` fractional digits.
func FormatTokenAmount(rawAmount *big.Int, decimals uint8) string {
	return decimal.NewFromBigInt(rawAmount, -int32(decimals)).StringFixed(int32(decimals))
}

// FormatNativeAmount renders a wei amount as a base-asset decimal string,
// trailing zeros trimmed but always keeping at least one fractional digit
// (1e18 wei renders as "1.0").
func FormatNativeAmount(wei *big.Int) string {
	s := decimal.NewFromBigInt(wei, -NativeDecimals).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ParseAmountWithDecimals parses a display amount and scales it to the raw
// integer representation with the given precision. Precision beyond the
// declared decimals is truncated.
func ParseAmountWithDecimals(amount string, decimals uint8) (*big.Int, error) {
	dec, err := ValidateAmount(amount)
	if err != nil {
		return nil, err
	}

	return dec.Shift(int32(decimals)).BigInt(), nil
}
