package types

import (
	"cosmossdk.io/math"
)

// MaxIterations caps the Newton iterations of ComputeD and ComputeY. Hitting
// the cap is a hard failure; valid pool states converge in a handful of steps.
const MaxIterations = 64

var oneInt = math.OneInt()

// guardOverflow converts math.Int overflow panics into ErrMathOverflow so
// extreme inputs reject the operation instead of aborting the caller.
func guardOverflow(err *error) {
	if r := recover(); r != nil {
		*err = ErrMathOverflow.Wrapf("%v", r)
	}
}

// ann returns amp * n^n, with amp carrying its AmpPrecision scaling.
func ann(amp uint64, n int) math.Int {
	out := math.NewIntFromUint64(amp)
	nInt := math.NewInt(int64(n))
	for i := 0; i < n; i++ {
		out = out.Mul(nInt)
	}
	return out
}

// ComputeD solves the stableswap invariant
//
//	A*n^n*sum(x_i) + D = A*D*n^n + D^(n+1) / (n^n * prod(x_i))
//
// for D via Newton-Raphson. Balances must already be normalized to the pool's
// greatest precision; the result lives in the same fixed-point domain. amp is
// scaled by AmpPrecision.
func ComputeD(amp uint64, balances []math.Int) (d math.Int, err error) {
	defer guardOverflow(&err)

	n := len(balances)
	if n < MinPoolAssets || n > MaxPoolAssets {
		return math.Int{}, ErrInvalidNumberOfAssets.Wrapf("got %d balances", n)
	}

	sum := math.ZeroInt()
	for _, x := range balances {
		if x.IsNil() || x.IsNegative() {
			return math.Int{}, ErrInvalidInput.Wrap("balances must be non-negative")
		}
		sum = sum.Add(x)
	}
	if sum.IsZero() {
		return math.ZeroInt(), nil
	}
	for _, x := range balances {
		if x.IsZero() {
			return math.Int{}, ErrInsufficientLiquidity.Wrap("a pool balance is zero")
		}
	}

	nInt := math.NewInt(int64(n))
	annVal := ann(amp, n)
	ampPrec := math.NewIntFromUint64(AmpPrecision)

	d = sum
	for i := 0; i < MaxIterations; i++ {
		// dP = D^(n+1) / (n^n * prod(x_i)), divided progressively to keep
		// intermediates inside 256 bits
		dP := d
		for _, x := range balances {
			dP = dP.Mul(d).Quo(x.Mul(nInt))
		}

		dPrev := d
		// D = (A*n^n*S + dP*n) * D / ((A*n^n - 1)*D + (n+1)*dP), with the
		// AmpPrecision scaling of A divided back out
		numerator := annVal.Mul(sum).Quo(ampPrec).Add(dP.Mul(nInt)).Mul(d)
		denominator := annVal.Sub(ampPrec).Mul(d).Quo(ampPrec).Add(nInt.AddRaw(1).Mul(dP))
		d = numerator.Quo(denominator)

		if d.Sub(dPrev).Abs().LTE(oneInt) {
			return d, nil
		}
	}
	return math.Int{}, ErrSolverNotConverged.Wrapf("compute_d did not converge within %d iterations", MaxIterations)
}

// ComputeY solves the same invariant for the single unknown balance at
// targetIndex, given D and all other balances. The equation reduces to
//
//	y^2 + y*(b - D) = c
//
// which is iterated as y = (y^2 + c) / (2y + b - D). All inputs and the result
// are in the normalized fixed-point domain; amp is scaled by AmpPrecision.
func ComputeY(amp uint64, balances []math.Int, d math.Int, targetIndex int) (y math.Int, err error) {
	defer guardOverflow(&err)

	n := len(balances)
	if n < MinPoolAssets || n > MaxPoolAssets {
		return math.Int{}, ErrInvalidNumberOfAssets.Wrapf("got %d balances", n)
	}
	if targetIndex < 0 || targetIndex >= n {
		return math.Int{}, ErrInvalidInput.Wrapf("target index %d out of range", targetIndex)
	}
	if d.IsNil() || !d.IsPositive() {
		return math.Int{}, ErrInvalidInput.Wrap("D must be positive")
	}

	nInt := math.NewInt(int64(n))
	annVal := ann(amp, n)
	ampPrec := math.NewIntFromUint64(AmpPrecision)

	sum := math.ZeroInt()
	c := d
	for i, x := range balances {
		if i == targetIndex {
			continue
		}
		if x.IsNil() || !x.IsPositive() {
			return math.Int{}, ErrInsufficientLiquidity.Wrapf("balance %d must be positive", i)
		}
		sum = sum.Add(x)
		c = c.Mul(d).Quo(x.Mul(nInt))
	}
	// c = D^(n+1) / (n^n * prod(x_i) * A*n^n), with AmpPrecision restored
	c = c.Mul(d).Mul(ampPrec).Quo(annVal.Mul(nInt))
	// b = S + D/(A*n^n); the -D offset is applied inside the iteration
	b := sum.Add(d.Mul(ampPrec).Quo(annVal))

	y = d
	for i := 0; i < MaxIterations; i++ {
		yPrev := y
		y = y.Mul(y).Add(c).Quo(y.MulRaw(2).Add(b).Sub(d))

		if y.Sub(yPrev).Abs().LTE(oneInt) {
			return y, nil
		}
	}
	return math.Int{}, ErrSolverNotConverged.Wrapf("compute_y did not converge within %d iterations", MaxIterations)
}
