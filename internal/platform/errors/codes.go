// Package errors provides structured error handling for vault operations.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Authorization errors
	CodeUnauthorizedIssuer Code = "UNAUTHORIZED_ISSUER"
	CodeAssetDisabled      Code = "ASSET_DISABLED"

	// Issuance errors
	CodeDepositLimitExceeded Code = "DEPOSIT_LIMIT_EXCEEDED"
	CodeInvalidValue         Code = "INVALID_VALUE"
	CodeInvalidHolder        Code = "INVALID_HOLDER"

	// Redemption errors
	CodeReceiptNotFound             Code = "RECEIPT_NOT_FOUND"
	CodeReceiptNotOwned             Code = "RECEIPT_NOT_OWNED"
	CodeReceiptAssetMismatch        Code = "RECEIPT_ASSET_MISMATCH"
	CodeInsufficientFungibleBalance Code = "INSUFFICIENT_FUNGIBLE_BALANCE"
	CodeInvalidPartialAmount        Code = "INVALID_PARTIAL_AMOUNT"

	// Asset configuration errors
	CodeAssetEmptyID            Code = "ASSET_EMPTY_ID"
	CodeAssetEmptyIssuer        Code = "ASSET_EMPTY_ISSUER"
	CodeAssetInvalidStatus      Code = "ASSET_INVALID_STATUS"
	CodeAssetAlreadyExists      Code = "ASSET_ALREADY_EXISTS"
	CodeAssetNotFound           Code = "ASSET_NOT_FOUND"
	CodeInvalidFeeConfiguration Code = "INVALID_FEE_CONFIGURATION"

	// Engine consistency errors
	CodePartialMutationFailure Code = "PARTIAL_MUTATION_FAILURE"
	CodeConservationViolation  Code = "CONSERVATION_VIOLATION"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes for callers that expose one.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeInvalidValue,
		CodeInvalidHolder,
		CodeInvalidPartialAmount,
		CodeAssetEmptyID,
		CodeAssetEmptyIssuer,
		CodeAssetInvalidStatus,
		CodeInvalidFeeConfiguration:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeAssetDisabled,
		CodeDepositLimitExceeded,
		CodeReceiptNotOwned,
		CodeReceiptAssetMismatch,
		CodeInsufficientFungibleBalance:
		return codes.FailedPrecondition

	// PermissionDenied - caller lacks the issuer role
	case CodeUnauthorizedIssuer:
		return codes.PermissionDenied

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeReceiptNotFound,
		CodeAssetNotFound:
		return codes.NotFound

	// AlreadyExists - unique resource constraint
	case CodeAssetAlreadyExists:
		return codes.AlreadyExists

	// DataLoss - ledgers diverged and could not be reconciled
	case CodePartialMutationFailure,
		CodeConservationViolation:
		return codes.DataLoss

	default:
		return codes.Internal
	}
}
