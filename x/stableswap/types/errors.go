package types

import (
	"cosmossdk.io/errors"
)

// Stableswap module sentinel errors
var (
	ErrInvalidPoolId          = errors.Register(ModuleName, 1, "invalid pool id")
	ErrPoolNotFound           = errors.Register(ModuleName, 2, "pool not found")
	ErrPoolAlreadyExists      = errors.Register(ModuleName, 3, "pool already exists")
	ErrInvalidAsset           = errors.Register(ModuleName, 4, "asset is not part of the pool")
	ErrInvalidNumberOfAssets  = errors.Register(ModuleName, 5, "invalid number of assets")
	ErrUnknownAssetPrecision  = errors.Register(ModuleName, 6, "unknown asset precision")
	ErrIncorrectAmp           = errors.Register(ModuleName, 7, "amplification coefficient out of range")
	ErrMaxAmpChangeAssertion  = errors.Register(ModuleName, 8, "amplification change exceeds the allowed ratio")
	ErrMinAmpChangingTime     = errors.Register(ModuleName, 9, "amplification ramp violates the minimum changing time")
	ErrInsufficientLiquidity  = errors.Register(ModuleName, 10, "insufficient liquidity in pool")
	ErrZeroAmount             = errors.Register(ModuleName, 11, "amount cannot be zero")
	ErrMaxSpreadAssertion     = errors.Register(ModuleName, 12, "operation exceeds max spread limit")
	ErrMinimumLiquidityAmount = errors.Register(ModuleName, 13, "initial deposit must exceed the minimum liquidity amount")
	ErrLiquidityTooSmall      = errors.Register(ModuleName, 14, "deposit would mint zero shares")
	ErrInsufficientShares     = errors.Register(ModuleName, 15, "insufficient LP shares supplied")
	ErrTradingNotStarted      = errors.Register(ModuleName, 16, "trading has not started yet")
	ErrPoolFrozen             = errors.Register(ModuleName, 17, "pool is frozen")
	ErrSolverNotConverged     = errors.Register(ModuleName, 18, "invariant solver did not converge")
	ErrMathOverflow           = errors.Register(ModuleName, 19, "overflow in fixed-point computation")
	ErrUnauthorized           = errors.Register(ModuleName, 20, "unauthorized")
	ErrInvalidInput           = errors.Register(ModuleName, 21, "invalid input")
)
