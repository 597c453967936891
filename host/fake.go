package host

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/launchforge/go-launchpad/inter"
)

// This file provides the in-memory host environment used by the test suites
// and the demo CLI: a scriptable clock, a token registry with mintable
// tokens, and an AMM whose pool price and mint behavior can be manipulated
// to exercise failure paths (price drift, slippage, rejected transfers).

// FakeClock is a manually driven Clock.
type FakeClock struct {
	mu    sync.Mutex
	now   inter.Timestamp
	block uint64
}

// NewFakeClock starts a clock at the given time, block 1.
func NewFakeClock(start inter.Timestamp) *FakeClock {
	return &FakeClock{now: start, block: 1}
}

// Now implements Clock.
func (c *FakeClock) Now() inter.Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// BlockNumber implements Clock.
func (c *FakeClock) BlockNumber() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.block
}

// Advance moves the clock forward by the given number of seconds and bumps
// the block height.
func (c *FakeClock) Advance(seconds uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(seconds)
	c.block++
}

// SetNow jumps the clock to an absolute time.
func (c *FakeClock) SetNow(t inter.Timestamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
	c.block++
}

// FakeToken is an in-memory fungible token with mintable supply.
type FakeToken struct {
	mu       sync.Mutex
	addr     common.Address
	symbol   string
	decimals uint8
	balances map[common.Address]*big.Int
	supply   *big.Int

	// FailTransfers, when set, makes every Transfer fail with this error.
	// Used to exercise external-failure paths.
	FailTransfers error

	// OnTransfer, when set, runs before a transfer moves any balances.
	// Tests use it to model token callbacks, including callbacks that
	// re-enter the platform mid-operation.
	OnTransfer func(from, to common.Address, amount *big.Int) error
}

// NewFakeToken creates a token with zero supply.
func NewFakeToken(addr common.Address, symbol string, decimals uint8) *FakeToken {
	return &FakeToken{
		addr:     addr,
		symbol:   symbol,
		decimals: decimals,
		balances: make(map[common.Address]*big.Int),
		supply:   new(big.Int),
	}
}

// Address implements Token.
func (t *FakeToken) Address() common.Address { return t.addr }

// Symbol implements Token.
func (t *FakeToken) Symbol() string { return t.symbol }

// Decimals implements Token.
func (t *FakeToken) Decimals() uint8 { return t.decimals }

// BalanceOf implements Token.
func (t *FakeToken) BalanceOf(owner common.Address) *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if b, ok := t.balances[owner]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// TotalSupply reports the current total supply.
func (t *FakeToken) TotalSupply() *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return new(big.Int).Set(t.supply)
}

// Mint creates amount base units out of thin air for test setup.
func (t *FakeToken) Mint(to common.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credit(to, amount)
	t.supply.Add(t.supply, amount)
}

// Transfer implements Token.
func (t *FakeToken) Transfer(from, to common.Address, amount *big.Int) error {
	if t.OnTransfer != nil {
		if err := t.OnTransfer(from, to, amount); err != nil {
			return err
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailTransfers != nil {
		return t.FailTransfers
	}
	if amount.Sign() < 0 {
		return errors.New("negative transfer amount")
	}
	if err := t.debit(from, amount); err != nil {
		return err
	}
	t.credit(to, amount)
	return nil
}

// Burn implements Token.
func (t *FakeToken) Burn(from common.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.debit(from, amount); err != nil {
		return err
	}
	t.supply.Sub(t.supply, amount)
	return nil
}

func (t *FakeToken) debit(from common.Address, amount *big.Int) error {
	b, ok := t.balances[from]
	if !ok || b.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient %s balance of %s", t.symbol, from.Hex())
	}
	b.Sub(b, amount)
	return nil
}

func (t *FakeToken) credit(to common.Address, amount *big.Int) {
	b, ok := t.balances[to]
	if !ok {
		b = new(big.Int)
		t.balances[to] = b
	}
	b.Add(b, amount)
}

// FakeTokenRegistry is an in-memory TokenRegistry.
type FakeTokenRegistry struct {
	mu     sync.Mutex
	tokens map[common.Address]*FakeToken
}

// NewFakeTokenRegistry creates an empty registry.
func NewFakeTokenRegistry() *FakeTokenRegistry {
	return &FakeTokenRegistry{tokens: make(map[common.Address]*FakeToken)}
}

// NewToken creates and registers a fake token.
func (r *FakeTokenRegistry) NewToken(addr common.Address, symbol string, decimals uint8) *FakeToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := NewFakeToken(addr, symbol, decimals)
	r.tokens[addr] = t
	return t
}

// Token implements TokenRegistry.
func (r *FakeTokenRegistry) Token(addr common.Address) (Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[addr]
	if !ok {
		return nil, fmt.Errorf("unknown token %s", addr.Hex())
	}
	return t, nil
}

// poolKey identifies a fake pool.
type poolKey struct {
	token0  common.Address
	token1  common.Address
	feeTier uint32
}

type fakePosition struct {
	owner common.Address
}

// FakeAMM is an in-memory AMM. Pool ticks can be moved with SetTick to
// simulate price drift, MintHaircut simulates deposits landing below the
// desired amounts, and MintErr forces the next mint to fail.
type FakeAMM struct {
	mu        sync.Mutex
	addr      common.Address
	reg       *FakeTokenRegistry
	pools     map[poolKey]int32
	positions map[uint64]*fakePosition
	nextID    uint64

	// MintHaircut scales the actually deposited amounts, in parts per
	// 100000. 100000 (the default) deposits exactly the desired amounts.
	MintHaircut uint64

	// MintErr, when set, fails every Mint with this error.
	MintErr error
}

// NewFakeAMM creates an AMM holding deposited funds at addr.
func NewFakeAMM(addr common.Address, reg *FakeTokenRegistry) *FakeAMM {
	return &FakeAMM{
		addr:        addr,
		reg:         reg,
		pools:       make(map[poolKey]int32),
		positions:   make(map[uint64]*fakePosition),
		MintHaircut: 100000,
	}
}

// EnsurePool implements AMM.
func (a *FakeAMM) EnsurePool(token0, token1 common.Address, feeTier uint32, initialTick int32) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	k := poolKey{token0, token1, feeTier}
	if _, ok := a.pools[k]; !ok {
		a.pools[k] = initialTick
	}
	return nil
}

// CurrentTick implements AMM.
func (a *FakeAMM) CurrentTick(token0, token1 common.Address, feeTier uint32) (int32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	tick, ok := a.pools[poolKey{token0, token1, feeTier}]
	if !ok {
		return 0, errors.New("pool does not exist")
	}
	return tick, nil
}

// SetTick moves an existing pool's price tick.
func (a *FakeAMM) SetTick(token0, token1 common.Address, feeTier uint32, tick int32) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	k := poolKey{token0, token1, feeTier}
	if _, ok := a.pools[k]; !ok {
		return errors.New("pool does not exist")
	}
	a.pools[k] = tick
	return nil
}

// Mint implements AMM. The fake deposits MintHaircut/100000 of the desired
// amounts, failing if that lands below the configured minimums, and pulls
// the deposited amounts from the payer.
func (a *FakeAMM) Mint(p MintParams) (MintResult, error) {
	a.mu.Lock()
	if a.MintErr != nil {
		err := a.MintErr
		a.mu.Unlock()
		return MintResult{}, err
	}
	if _, ok := a.pools[poolKey{p.Token0, p.Token1, p.FeeTier}]; !ok {
		a.mu.Unlock()
		return MintResult{}, errors.New("pool does not exist")
	}
	haircut := a.MintHaircut
	a.mu.Unlock()

	scale := big.NewInt(100000)
	actual0 := new(big.Int).Div(new(big.Int).Mul(p.Amount0Desired, new(big.Int).SetUint64(haircut)), scale)
	actual1 := new(big.Int).Div(new(big.Int).Mul(p.Amount1Desired, new(big.Int).SetUint64(haircut)), scale)
	if p.Amount0Min != nil && actual0.Cmp(p.Amount0Min) < 0 {
		return MintResult{}, errors.New("price slippage check: amount0 below minimum")
	}
	if p.Amount1Min != nil && actual1.Cmp(p.Amount1Min) < 0 {
		return MintResult{}, errors.New("price slippage check: amount1 below minimum")
	}

	t0, err := a.reg.Token(p.Token0)
	if err != nil {
		return MintResult{}, err
	}
	t1, err := a.reg.Token(p.Token1)
	if err != nil {
		return MintResult{}, err
	}
	if err := t0.Transfer(p.Payer, a.addr, actual0); err != nil {
		return MintResult{}, err
	}
	if err := t1.Transfer(p.Payer, a.addr, actual1); err != nil {
		// Give back the first leg so a failed mint moves nothing.
		_ = t0.Transfer(a.addr, p.Payer, actual0)
		return MintResult{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	a.positions[a.nextID] = &fakePosition{owner: p.Recipient}
	return MintResult{TokenID: a.nextID, Amount0: actual0, Amount1: actual1}, nil
}

// TransferPosition implements AMM.
func (a *FakeAMM) TransferPosition(tokenID uint64, from, to common.Address) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	pos, ok := a.positions[tokenID]
	if !ok {
		return fmt.Errorf("unknown position %d", tokenID)
	}
	if pos.owner != from {
		return fmt.Errorf("position %d is not owned by %s", tokenID, from.Hex())
	}
	pos.owner = to
	return nil
}

// PositionOwner implements AMM.
func (a *FakeAMM) PositionOwner(tokenID uint64) (common.Address, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	pos, ok := a.positions[tokenID]
	if !ok {
		return common.Address{}, fmt.Errorf("unknown position %d", tokenID)
	}
	return pos.owner, nil
}

// FakeHost bundles the fakes into a ready-to-use host environment.
type FakeHost struct {
	Tokens *FakeTokenRegistry
	AMM    *FakeAMM
	Clock  *FakeClock
}

// NewFakeHost creates a fake host with the clock started at genesis.
// The AMM holds its funds at a fixed well-known address.
func NewFakeHost(genesis inter.Timestamp) *FakeHost {
	reg := NewFakeTokenRegistry()
	return &FakeHost{
		Tokens: reg,
		AMM:    NewFakeAMM(common.HexToAddress("0x00000000000000000000000000000000000000AA"), reg),
		Clock:  NewFakeClock(genesis),
	}
}
