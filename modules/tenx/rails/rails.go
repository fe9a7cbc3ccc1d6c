// Package rails is an in-memory ledger of native and token balances that
// stands in for the chain the accounting core settles on.
package rails

import (
	"context"
	"sync"

	"github.com/RishalEP/tenx-blockchain/common/errs"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/settlement"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
)

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrRecipientBlocked      = errors.New("recipient blocked")
)

// RecipientHook runs when native currency is sent to its address. Returning
// false rejects the transfer.
type RecipientHook func(ctx context.Context, from common.Address, amount uint128.Uint128) bool

var _ settlement.Rails = (*Memory)(nil)

type Memory struct {
	mu      sync.Mutex
	custody common.Address
	native  map[common.Address]uint128.Uint128

	// token -> holder -> amount
	tokens map[common.Address]map[common.Address]uint128.Uint128

	// token -> owner -> amount the custody account may pull
	allowances map[common.Address]map[common.Address]uint128.Uint128

	rejecting map[common.Address]bool
	blocked   map[common.Address]bool
	hooks     map[common.Address]RecipientHook
}

func NewMemory(custody common.Address) *Memory {
	return &Memory{
		custody:    custody,
		native:     make(map[common.Address]uint128.Uint128),
		tokens:     make(map[common.Address]map[common.Address]uint128.Uint128),
		allowances: make(map[common.Address]map[common.Address]uint128.Uint128),
		rejecting:  make(map[common.Address]bool),
		blocked:    make(map[common.Address]bool),
		hooks:      make(map[common.Address]RecipientHook),
	}
}

// Custody returns the account holding funds between receipt and payout.
func (m *Memory) Custody() common.Address {
	return m.custody
}

// Deposit credits native currency to addr.
func (m *Memory) Deposit(addr common.Address, amount uint128.Uint128) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return credit(m.native, addr, amount)
}

// Mint credits token to addr.
func (m *Memory) Mint(token, addr common.Address, amount uint128.Uint128) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return credit(bucket(m.tokens, token), addr, amount)
}

// Approve lets the custody account pull up to amount of token from owner.
func (m *Memory) Approve(token, owner common.Address, amount uint128.Uint128) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket(m.allowances, token)[owner] = amount
}

// Reject makes native transfers to addr fail.
func (m *Memory) Reject(addr common.Address, reject bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejecting[addr] = reject
}

// Block makes token transfers to addr fail.
func (m *Memory) Block(addr common.Address, block bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocked[addr] = block
}

// OnReceive installs hook for native transfers to addr. A nil hook removes it.
func (m *Memory) OnReceive(addr common.Address, hook RecipientHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hook == nil {
		delete(m.hooks, addr)
		return
	}
	m.hooks[addr] = hook
}

func (m *Memory) Balance(addr common.Address) uint128.Uint128 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.native[addr]
}

func (m *Memory) TokenBalance(token, addr common.Address) uint128.Uint128 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[token][addr]
}

func (m *Memory) Allowance(token, owner common.Address) uint128.Uint128 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allowances[token][owner]
}

func (m *Memory) ReceiveNative(_ context.Context, from common.Address, amount uint128.Uint128) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return move(m.native, from, m.custody, amount)
}

func (m *Memory) TransferNative(ctx context.Context, to common.Address, amount uint128.Uint128) bool {
	m.mu.Lock()
	rejecting := m.rejecting[to]
	hook := m.hooks[to]
	m.mu.Unlock()

	if rejecting {
		return false
	}
	// the hook runs unlocked so recipient code may call back into the caller
	if hook != nil && !hook(ctx, m.custody, amount) {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return move(m.native, m.custody, to, amount) == nil
}

func (m *Memory) BeginTokenTx(_ context.Context, token common.Address) (settlement.TokenTx, error) {
	return newTokenTx(m, token), nil
}

func bucket(m map[common.Address]map[common.Address]uint128.Uint128, key common.Address) map[common.Address]uint128.Uint128 {
	b, ok := m[key]
	if !ok {
		b = make(map[common.Address]uint128.Uint128)
		m[key] = b
	}
	return b
}

func credit(balances map[common.Address]uint128.Uint128, addr common.Address, amount uint128.Uint128) error {
	sum, overflow := balances[addr].AddOverflow(amount)
	if overflow {
		return errors.Wrapf(errs.OverflowUint128, "balance of %s", addr)
	}
	balances[addr] = sum
	return nil
}

func move(balances map[common.Address]uint128.Uint128, from, to common.Address, amount uint128.Uint128) error {
	if balances[from].Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientBalance, "%s has %s, needs %s", from, balances[from], amount)
	}
	if from == to {
		return nil
	}
	if _, overflow := balances[to].AddOverflow(amount); overflow {
		return errors.Wrapf(errs.OverflowUint128, "balance of %s", to)
	}
	balances[from] = balances[from].Sub(amount)
	balances[to] = balances[to].Add(amount)
	return nil
}
