package configstore

import (
	"cmp"
	"slices"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/cockroachdb/errors"
)

// AddPlan adds a plan or re-activates a disabled one with the new price.
func (s *Store) AddPlan(months uint32, priceUSD uint64) error {
	if months == 0 || priceUSD == 0 {
		return errors.Wrapf(entity.ErrInvalidArgument, "months=%d price=%d", months, priceUSD)
	}
	if months > entity.MaxMonths {
		return errors.Wrapf(entity.ErrInvalidArgument, "plan of %d months exceeds %d", months, entity.MaxMonths)
	}
	if p, ok := s.plans[months]; ok {
		if p.Active {
			return errors.Wrapf(entity.ErrAlreadyExists, "%d months plan", months)
		}
		p.PriceUSD = priceUSD
		p.Active = true
		return nil
	}
	s.plans[months] = &Plan{Months: months, PriceUSD: priceUSD, Active: true}
	return nil
}

func (s *Store) EnablePlan(months uint32) error {
	return s.setPlanStatus(months, true)
}

func (s *Store) DisablePlan(months uint32) error {
	return s.setPlanStatus(months, false)
}

func (s *Store) setPlanStatus(months uint32, active bool) error {
	p, ok := s.plans[months]
	if !ok {
		return errors.Wrapf(entity.ErrNotFound, "%d months plan", months)
	}
	if p.Active == active {
		return errors.Wrapf(entity.ErrAlreadyInState, "%d months plan active=%t", months, active)
	}
	p.Active = active
	return nil
}

func (s *Store) ChangePlanPrice(months uint32, priceUSD uint64) error {
	p, ok := s.plans[months]
	if !ok || !p.Active {
		return errors.Wrapf(entity.ErrNotFound, "active %d months plan", months)
	}
	if priceUSD == 0 {
		return errors.Wrap(entity.ErrInvalidArgument, "price is zero")
	}
	if p.PriceUSD == priceUSD {
		return errors.WithStack(entity.ErrNoChange)
	}
	p.PriceUSD = priceUSD
	return nil
}

// Plan returns the plan keyed by months, active or not.
func (s *Store) Plan(months uint32) (Plan, error) {
	p, ok := s.plans[months]
	if !ok {
		return Plan{}, errors.Wrapf(entity.ErrNotFound, "%d months plan", months)
	}
	return *p, nil
}

// ActivePlan returns the plan keyed by months if it is active.
func (s *Store) ActivePlan(months uint32) (Plan, error) {
	p, ok := s.plans[months]
	if !ok || !p.Active {
		return Plan{}, errors.Wrapf(entity.ErrPlanNotActive, "%d months plan", months)
	}
	return *p, nil
}

// Plans returns every plan ordered by months.
func (s *Store) Plans() []Plan {
	plans := make([]Plan, 0, len(s.plans))
	for _, p := range s.plans {
		plans = append(plans, *p)
	}
	slices.SortFunc(plans, func(a, b Plan) int { return cmp.Compare(a.Months, b.Months) })
	return plans
}
