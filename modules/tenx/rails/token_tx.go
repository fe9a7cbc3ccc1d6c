package rails

import (
	"context"

	"github.com/RishalEP/tenx-blockchain/common/errs"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
)

// tokenTx stages token movements as debits and credits against the live
// balances. Commit re-checks them under the rails lock and applies them as
// deltas, so changes made by others meanwhile are kept.
type tokenTx struct {
	rails   *Memory
	token   common.Address
	debits  map[common.Address]uint128.Uint128
	credits map[common.Address]uint128.Uint128
	// allowance used per owner
	spent map[common.Address]uint128.Uint128
	done  bool
}

func newTokenTx(m *Memory, token common.Address) *tokenTx {
	return &tokenTx{
		rails:   m,
		token:   token,
		debits:  make(map[common.Address]uint128.Uint128),
		credits: make(map[common.Address]uint128.Uint128),
		spent:   make(map[common.Address]uint128.Uint128),
	}
}

// apply returns live + credit - debit, false if it leaves the uint128 range.
func apply(live, credit, debit uint128.Uint128) (uint128.Uint128, bool) {
	sum, overflow := live.AddOverflow(credit)
	if overflow || sum.Cmp(debit) < 0 {
		return uint128.Zero, false
	}
	return sum.Sub(debit), true
}

func (tx *tokenTx) balance(addr common.Address) uint128.Uint128 {
	b, _ := apply(tx.rails.TokenBalance(tx.token, addr), tx.credits[addr], tx.debits[addr])
	return b
}

func (tx *tokenTx) allowance(owner common.Address) uint128.Uint128 {
	a, _ := apply(tx.rails.Allowance(tx.token, owner), uint128.Zero, tx.spent[owner])
	return a
}

func (tx *tokenTx) Pull(_ context.Context, from common.Address, amount uint128.Uint128) error {
	if tx.done {
		return errors.New("token transaction is closed")
	}
	allowance := tx.allowance(from)
	if allowance.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientAllowance, "%s allows %s, needs %s", from, allowance, amount)
	}
	if err := tx.move(from, tx.rails.custody, amount); err != nil {
		return errors.WithStack(err)
	}
	tx.spent[from] = tx.spent[from].Add(amount)
	return nil
}

func (tx *tokenTx) Transfer(_ context.Context, to common.Address, amount uint128.Uint128) error {
	if tx.done {
		return errors.New("token transaction is closed")
	}
	tx.rails.mu.Lock()
	blocked := tx.rails.blocked[to]
	tx.rails.mu.Unlock()
	if blocked {
		return errors.Wrapf(ErrRecipientBlocked, "%s", to)
	}
	return tx.move(tx.rails.custody, to, amount)
}

func (tx *tokenTx) move(from, to common.Address, amount uint128.Uint128) error {
	fromBalance := tx.balance(from)
	if fromBalance.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientBalance, "%s has %s, needs %s", from, fromBalance, amount)
	}
	if from == to {
		return nil
	}
	if _, overflow := tx.balance(to).AddOverflow(amount); overflow {
		return errors.Wrapf(errs.OverflowUint128, "token balance of %s", to)
	}
	tx.debits[from] = tx.debits[from].Add(amount)
	tx.credits[to] = tx.credits[to].Add(amount)
	return nil
}

// Commit applies the staged deltas to the balances and allowances current at
// commit time. Nothing is applied if any of them no longer fits.
func (tx *tokenTx) Commit(_ context.Context) error {
	if tx.done {
		return errors.New("token transaction is closed")
	}
	tx.done = true

	m := tx.rails
	m.mu.Lock()
	defer m.mu.Unlock()

	balances := bucket(m.tokens, tx.token)
	nextBalances := make(map[common.Address]uint128.Uint128, len(tx.debits)+len(tx.credits))
	for _, touched := range []map[common.Address]uint128.Uint128{tx.debits, tx.credits} {
		for addr := range touched {
			b, ok := apply(balances[addr], tx.credits[addr], tx.debits[addr])
			if !ok {
				return errors.Wrapf(ErrInsufficientBalance, "token balance of %s changed", addr)
			}
			nextBalances[addr] = b
		}
	}
	allowances := bucket(m.allowances, tx.token)
	nextAllowances := make(map[common.Address]uint128.Uint128, len(tx.spent))
	for owner, spent := range tx.spent {
		a, ok := apply(allowances[owner], uint128.Zero, spent)
		if !ok {
			return errors.Wrapf(ErrInsufficientAllowance, "allowance of %s changed", owner)
		}
		nextAllowances[owner] = a
	}

	for addr, b := range nextBalances {
		balances[addr] = b
	}
	for owner, a := range nextAllowances {
		allowances[owner] = a
	}
	return nil
}

func (tx *tokenTx) Rollback(_ context.Context) {
	tx.done = true
	clear(tx.debits)
	clear(tx.credits)
	clear(tx.spent)
}
