package types

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func rampPool(initAmp, nextAmp uint64, initTime, nextTime int64) Pool {
	return Pool{
		Id:          1,
		InitAmp:     initAmp * AmpPrecision,
		InitAmpTime: initTime,
		NextAmp:     nextAmp * AmpPrecision,
		NextAmpTime: nextTime,
		TotalShares: math.ZeroInt(),
	}
}

func TestValidateAmp(t *testing.T) {
	require.ErrorIs(t, ValidateAmp(0), ErrIncorrectAmp)
	require.ErrorIs(t, ValidateAmp(MaxAmp+1), ErrIncorrectAmp)
	require.NoError(t, ValidateAmp(1))
	require.NoError(t, ValidateAmp(MaxAmp))
}

func TestCurrentAmp_NoRamp(t *testing.T) {
	pool := rampPool(100, 100, 1000, 1000)
	require.Equal(t, 100*AmpPrecision, pool.CurrentAmp(999))
	require.Equal(t, 100*AmpPrecision, pool.CurrentAmp(5000))
}

func TestCurrentAmp_InterpolatesUpward(t *testing.T) {
	pool := rampPool(100, 200, 0, 1000)

	require.Equal(t, 100*AmpPrecision, pool.CurrentAmp(0))
	require.Equal(t, 150*AmpPrecision, pool.CurrentAmp(500))
	require.Equal(t, 175*AmpPrecision, pool.CurrentAmp(750))
	// clamps once the window has passed
	require.Equal(t, 200*AmpPrecision, pool.CurrentAmp(1000))
	require.Equal(t, 200*AmpPrecision, pool.CurrentAmp(100_000))
}

func TestCurrentAmp_InterpolatesDownward(t *testing.T) {
	pool := rampPool(200, 100, 0, 1000)

	require.Equal(t, 200*AmpPrecision, pool.CurrentAmp(0))
	require.Equal(t, 150*AmpPrecision, pool.CurrentAmp(500))
	require.Equal(t, 100*AmpPrecision, pool.CurrentAmp(1000))
}

func TestCurrentAmp_Monotonic(t *testing.T) {
	pool := rampPool(100, 1000, 0, 86_400)

	prev := pool.CurrentAmp(0)
	for now := int64(0); now <= 90_000; now += 600 {
		current := pool.CurrentAmp(now)
		require.GreaterOrEqual(t, current, prev, "amp must not decrease during an upward ramp")
		prev = current
	}
	require.Equal(t, 1000*AmpPrecision, prev)
}

func TestValidateAmpRamp_ChangeTooLarge(t *testing.T) {
	now := int64(1_000_000)
	pool := rampPool(100, 100, 0, 0)

	err := pool.ValidateAmpRamp(100*MaxAmpChange+1, now+2*MinAmpChangingTime, now)
	require.ErrorIs(t, err, ErrMaxAmpChangeAssertion)

	err = pool.ValidateAmpRamp(100/MaxAmpChange-1, now+2*MinAmpChangingTime, now)
	require.ErrorIs(t, err, ErrMaxAmpChangeAssertion)

	require.NoError(t, pool.ValidateAmpRamp(100*MaxAmpChange, now+2*MinAmpChangingTime, now))
	require.NoError(t, pool.ValidateAmpRamp(100/MaxAmpChange, now+2*MinAmpChangingTime, now))
}

func TestValidateAmpRamp_TooSoonAfterPreviousRamp(t *testing.T) {
	pool := rampPool(100, 200, 1_000_000, 1_000_000+MinAmpChangingTime)

	now := pool.InitAmpTime + MinAmpChangingTime - 1
	err := pool.ValidateAmpRamp(200, now+2*MinAmpChangingTime, now)
	require.ErrorIs(t, err, ErrMinAmpChangingTime)

	now = pool.InitAmpTime + MinAmpChangingTime
	require.NoError(t, pool.ValidateAmpRamp(200, now+MinAmpChangingTime, now))
}

func TestValidateAmpRamp_DurationTooShort(t *testing.T) {
	now := int64(1_000_000)
	pool := rampPool(100, 100, 0, 0)

	err := pool.ValidateAmpRamp(200, now+MinAmpChangingTime-1, now)
	require.ErrorIs(t, err, ErrMinAmpChangingTime)

	require.NoError(t, pool.ValidateAmpRamp(200, now+MinAmpChangingTime, now))
}

func TestValidateAmpRamp_InvalidTarget(t *testing.T) {
	now := int64(1_000_000)
	pool := rampPool(100, 100, 0, 0)

	require.ErrorIs(t, pool.ValidateAmpRamp(0, now+2*MinAmpChangingTime, now), ErrIncorrectAmp)
	require.ErrorIs(t, pool.ValidateAmpRamp(MaxAmp+1, now+2*MinAmpChangingTime, now), ErrIncorrectAmp)
}
