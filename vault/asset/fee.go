package asset

import (
	"github.com/holiman/uint256"

	apperrors "github.com/openclaim/vault/internal/platform/errors"
)

// ErrFeeOverflow indicates the fee product exceeds 256 bits.
var ErrFeeOverflow = apperrors.New(apperrors.CodeInvalidValue, "fee computation overflows")

// SplitFee divides a gross amount into net and fee parts.
//
// fee = amount * bps / FeeDenominator, integer arithmetic truncating toward
// zero; net = amount - fee. Rates above the denominator are rejected, matching
// the configuration-time bound in Definition.Validate.
func SplitFee(amount *uint256.Int, bps uint32) (net, fee *uint256.Int, err error) {
	if amount == nil {
		return nil, nil, apperrors.New(apperrors.CodeInvalidValue, "amount is required")
	}
	if bps > FeeDenominator {
		return nil, nil, ErrInvalidFeeConfiguration
	}

	product := new(uint256.Int)
	if _, overflow := product.MulOverflow(amount, uint256.NewInt(uint64(bps))); overflow {
		return nil, nil, ErrFeeOverflow
	}

	fee = product.Div(product, uint256.NewInt(FeeDenominator))
	net = new(uint256.Int).Sub(amount, fee)
	return net, fee, nil
}
