package configstore

import (
	"slices"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/cockroachdb/errors"
)

// SetReferralLevels replaces the referral table. Index 0 is the direct referrer.
func (s *Store) SetReferralLevels(levels []entity.BasisPoints) error {
	if len(levels) > s.referralLevelLimit {
		return errors.Wrapf(entity.ErrLimitExceeded, "%d levels, limit is %d", len(levels), s.referralLevelLimit)
	}
	for i, pct := range levels {
		if pct > entity.MaxBasisPoints {
			return errors.Wrapf(entity.ErrInvalidPercentage, "level %d is %d", i, pct)
		}
	}
	if sum := sumBasisPoints(levels); sum > entity.MaxBasisPoints {
		return errors.Wrapf(entity.ErrInvalidPercentage, "referral levels total %d", sum)
	}
	s.referralLevels = slices.Clone(levels)
	return nil
}

// SetReferralLevelLimit changes the maximum number of referral levels.
func (s *Store) SetReferralLevelLimit(limit int) error {
	if limit <= 0 || limit < len(s.referralLevels) {
		return errors.Wrapf(entity.ErrInvalidArgument, "limit %d is below %d configured levels", limit, len(s.referralLevels))
	}
	s.referralLevelLimit = limit
	return nil
}

func (s *Store) ReferralLevels() []entity.BasisPoints {
	return slices.Clone(s.referralLevels)
}
