package types

const (
	// AmpPrecision is the fixed scaling applied to stored amplification values
	// so ramps interpolate without fractional loss
	AmpPrecision uint64 = 100

	// MaxAmp is the largest allowed (unscaled) amplification coefficient
	MaxAmp uint64 = 1_000_000

	// MaxAmpChange bounds the ratio between a ramp target and the current amp
	MaxAmpChange uint64 = 10

	// MinAmpChangingTime is the minimum ramp duration and the minimum delay
	// between consecutive ramps, in seconds
	MinAmpChangingTime int64 = 86400
)

// ValidateAmp checks an unscaled amplification coefficient.
func ValidateAmp(amp uint64) error {
	if amp == 0 || amp > MaxAmp {
		return ErrIncorrectAmp.Wrapf("amp must be in (0, %d], got %d", MaxAmp, amp)
	}
	return nil
}

// CurrentAmp returns the effective amplification (scaled by AmpPrecision) at
// the given unix time, linearly interpolating an active ramp and clamping to
// the target once the ramp window has passed.
func (p Pool) CurrentAmp(now int64) uint64 {
	if now >= p.NextAmpTime || p.NextAmp == p.InitAmp {
		return p.NextAmp
	}

	elapsed := uint64(now - p.InitAmpTime)
	total := uint64(p.NextAmpTime - p.InitAmpTime)

	if p.NextAmp > p.InitAmp {
		return p.InitAmp + (p.NextAmp-p.InitAmp)*elapsed/total
	}
	return p.InitAmp - (p.InitAmp-p.NextAmp)*elapsed/total
}

// ValidateAmpRamp checks a start-ramp request against the pool's current
// state. nextAmp is unscaled; now and nextAmpTime are unix seconds.
func (p Pool) ValidateAmpRamp(nextAmp uint64, nextAmpTime, now int64) error {
	if err := ValidateAmp(nextAmp); err != nil {
		return err
	}

	currentAmp := p.CurrentAmp(now)
	nextAmpScaled := nextAmp * AmpPrecision

	if nextAmpScaled*MaxAmpChange < currentAmp || nextAmpScaled > currentAmp*MaxAmpChange {
		return ErrMaxAmpChangeAssertion.Wrapf(
			"next amp %d is more than %dx away from current amp %d",
			nextAmpScaled, MaxAmpChange, currentAmp)
	}

	if now < p.InitAmpTime+MinAmpChangingTime {
		return ErrMinAmpChangingTime.Wrapf(
			"a ramp may start at most once every %d seconds", MinAmpChangingTime)
	}
	if nextAmpTime < now+MinAmpChangingTime {
		return ErrMinAmpChangingTime.Wrapf(
			"ramp must span at least %d seconds", MinAmpChangingTime)
	}
	return nil
}
