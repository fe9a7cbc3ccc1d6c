package configstore

import (
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
)

// AddShareHolder appends an active share holder and returns its index.
func (s *Store) AddShareHolder(name string, wallet common.Address, percentage entity.BasisPoints) (int, error) {
	holder := ShareHolder{
		Name:       name,
		Wallet:     wallet,
		Percentage: percentage,
		Active:     true,
	}
	if err := s.validateShareHolder(holder); err != nil {
		return 0, errors.WithStack(err)
	}
	if s.activeShareHolders()+1 > s.shareHolderLimit {
		return 0, errors.Wrapf(entity.ErrCapacityExceeded, "limit is %d", s.shareHolderLimit)
	}
	if sum := s.activeSharePercentage(-1, percentage); sum > entity.MaxBasisPoints {
		return 0, errors.Wrapf(entity.ErrInvalidPercentage, "active share holders would total %d", sum)
	}
	s.shareHolders = append(s.shareHolders, holder)
	return len(s.shareHolders) - 1, nil
}

// UpdateShareHolder replaces the name, wallet and percentage at index. The active flag is kept.
func (s *Store) UpdateShareHolder(index int, name string, wallet common.Address, percentage entity.BasisPoints) error {
	current, err := s.ShareHolder(index)
	if err != nil {
		return errors.WithStack(err)
	}
	updated := ShareHolder{
		Name:       name,
		Wallet:     wallet,
		Percentage: percentage,
		Active:     current.Active,
	}
	if err := s.validateShareHolder(updated); err != nil {
		return errors.WithStack(err)
	}
	if updated.Active {
		if sum := s.activeSharePercentage(index, percentage); sum > entity.MaxBasisPoints {
			return errors.Wrapf(entity.ErrInvalidPercentage, "active share holders would total %d", sum)
		}
	}
	s.shareHolders[index] = updated
	return nil
}

// SetShareHolderStatus activates or deactivates the share holder at index.
func (s *Store) SetShareHolderStatus(index int, active bool) error {
	current, err := s.ShareHolder(index)
	if err != nil {
		return errors.WithStack(err)
	}
	if current.Active == active {
		return errors.Wrapf(entity.ErrAlreadyInState, "share holder %d active=%t", index, active)
	}
	if active {
		if s.activeShareHolders()+1 > s.shareHolderLimit {
			return errors.Wrapf(entity.ErrCapacityExceeded, "limit is %d", s.shareHolderLimit)
		}
		if sum := s.activeSharePercentage(index, current.Percentage); sum > entity.MaxBasisPoints {
			return errors.Wrapf(entity.ErrInvalidPercentage, "active share holders would total %d", sum)
		}
	}
	s.shareHolders[index].Active = active
	return nil
}

// SetShareHolderLimit changes the maximum number of active share holders.
func (s *Store) SetShareHolderLimit(limit int) error {
	if limit <= 0 || limit < s.activeShareHolders() {
		return errors.Wrapf(entity.ErrInvalidArgument, "limit %d is below %d active share holders", limit, s.activeShareHolders())
	}
	s.shareHolderLimit = limit
	return nil
}

func (s *Store) ShareHolder(index int) (ShareHolder, error) {
	if index < 0 || index >= len(s.shareHolders) {
		return ShareHolder{}, errors.Wrapf(entity.ErrNotFound, "share holder %d", index)
	}
	return s.shareHolders[index], nil
}

// ShareHolders returns every share holder, active or not, in table order.
func (s *Store) ShareHolders() []ShareHolder {
	return append([]ShareHolder(nil), s.shareHolders...)
}

func (s *Store) validateShareHolder(h ShareHolder) error {
	if h.Wallet == (common.Address{}) {
		return errors.Wrap(entity.ErrInvalidArgument, "share holder wallet is zero")
	}
	if h.Percentage > entity.MaxBasisPoints {
		return errors.Wrapf(entity.ErrInvalidPercentage, "%d exceeds %d", h.Percentage, entity.MaxBasisPoints)
	}
	return nil
}

func (s *Store) activeShareHolders() int {
	return lo.CountBy(s.shareHolders, func(h ShareHolder) bool { return h.Active })
}

// activeSharePercentage sums active percentages, substituting pct for the
// entry at index. An index of -1 adds pct as a new entry.
func (s *Store) activeSharePercentage(index int, pct entity.BasisPoints) entity.BasisPoints {
	var sum uint32
	for i, h := range s.shareHolders {
		if i == index || !h.Active {
			continue
		}
		sum += uint32(h.Percentage)
	}
	sum += uint32(pct)
	return entity.BasisPoints(min(sum, uint32(^entity.BasisPoints(0))))
}
