package configstore

import (
	"slices"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
)

// AddPaymentToken registers a token with its price feed or re-activates a
// disabled one with the new feed. The zero address is the native currency.
func (s *Store) AddPaymentToken(token common.Address, priceFeed string) error {
	if priceFeed == "" {
		return errors.Wrapf(entity.ErrInvalidArgument, "price feed for %s is empty", token)
	}
	if t, ok := s.tokens[token]; ok {
		if t.Active {
			return errors.Wrapf(entity.ErrAlreadyExists, "payment token %s", token)
		}
		t.PriceFeed = priceFeed
		t.Active = true
		return nil
	}
	s.tokens[token] = &PaymentToken{Address: token, PriceFeed: priceFeed, Active: true}
	return nil
}

func (s *Store) EnablePaymentToken(token common.Address) error {
	return s.setTokenStatus(token, true)
}

func (s *Store) DisablePaymentToken(token common.Address) error {
	return s.setTokenStatus(token, false)
}

func (s *Store) setTokenStatus(token common.Address, active bool) error {
	t, ok := s.tokens[token]
	if !ok {
		return errors.Wrapf(entity.ErrNotFound, "payment token %s", token)
	}
	if t.Active == active {
		return errors.Wrapf(entity.ErrAlreadyInState, "payment token %s active=%t", token, active)
	}
	t.Active = active
	return nil
}

func (s *Store) ChangePriceFeed(token common.Address, priceFeed string) error {
	t, ok := s.tokens[token]
	if !ok || !t.Active {
		return errors.Wrapf(entity.ErrNotFound, "active payment token %s", token)
	}
	if priceFeed == "" {
		return errors.Wrap(entity.ErrInvalidArgument, "price feed is empty")
	}
	if t.PriceFeed == priceFeed {
		return errors.WithStack(entity.ErrNoChange)
	}
	t.PriceFeed = priceFeed
	return nil
}

// PaymentToken returns the token registered at address, active or not.
func (s *Store) PaymentToken(token common.Address) (PaymentToken, error) {
	t, ok := s.tokens[token]
	if !ok {
		return PaymentToken{}, errors.Wrapf(entity.ErrNotFound, "payment token %s", token)
	}
	return *t, nil
}

// ActivePaymentToken returns the token registered at address if it is active.
func (s *Store) ActivePaymentToken(token common.Address) (PaymentToken, error) {
	t, ok := s.tokens[token]
	if !ok || !t.Active {
		return PaymentToken{}, errors.Wrapf(entity.ErrTokenNotActive, "payment token %s", token)
	}
	return *t, nil
}

// PaymentTokens returns every token ordered by address.
func (s *Store) PaymentTokens() []PaymentToken {
	tokens := make([]PaymentToken, 0, len(s.tokens))
	for _, t := range s.tokens {
		tokens = append(tokens, *t)
	}
	slices.SortFunc(tokens, func(a, b PaymentToken) int { return a.Address.Cmp(b.Address) })
	return tokens
}
