package keeper

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	"github.com/stretchr/testify/require"

	"github.com/nectar-chain/nectar/x/stableswap/keeper"
	"github.com/nectar-chain/nectar/x/stableswap/types"
)

// TestBlockTime is the block time the test context starts at.
var TestBlockTime = time.Unix(1_700_000_000, 0).UTC()

// TestAuthority is the authority address used by the test keeper.
var TestAuthority = authtypes.NewModuleAddress("gov").String()

// MockBankKeeper is an in-memory bank for keeper tests: plain balance maps,
// mint/burn against a module supply and static denom metadata.
type MockBankKeeper struct {
	balances map[string]sdk.Coins
	metadata map[string]banktypes.Metadata
}

// NewMockBankKeeper creates an empty mock bank
func NewMockBankKeeper() *MockBankKeeper {
	return &MockBankKeeper{
		balances: make(map[string]sdk.Coins),
		metadata: make(map[string]banktypes.Metadata),
	}
}

// FundAccount credits coins to an account out of thin air.
func (m *MockBankKeeper) FundAccount(addr sdk.AccAddress, amt sdk.Coins) {
	m.balances[addr.String()] = m.balances[addr.String()].Add(amt...)
}

// Balance returns the tracked balance of addr in denom.
func (m *MockBankKeeper) Balance(addr sdk.AccAddress, denom string) math.Int {
	return m.balances[addr.String()].AmountOf(denom)
}

// SetDenomMetadata registers denom metadata with the given display exponent.
func (m *MockBankKeeper) SetDenomMetadata(denom string, decimals uint32) {
	display := denom + "-display"
	m.metadata[denom] = banktypes.Metadata{
		Base:    denom,
		Display: display,
		DenomUnits: []*banktypes.DenomUnit{
			{Denom: denom, Exponent: 0},
			{Denom: display, Exponent: decimals},
		},
	}
}

func (m *MockBankKeeper) SendCoinsFromAccountToModule(_ context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error {
	return m.move(senderAddr.String(), authtypes.NewModuleAddress(recipientModule).String(), amt)
}

func (m *MockBankKeeper) SendCoinsFromModuleToAccount(_ context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error {
	return m.move(authtypes.NewModuleAddress(senderModule).String(), recipientAddr.String(), amt)
}

func (m *MockBankKeeper) MintCoins(_ context.Context, moduleName string, amt sdk.Coins) error {
	key := authtypes.NewModuleAddress(moduleName).String()
	m.balances[key] = m.balances[key].Add(amt...)
	return nil
}

func (m *MockBankKeeper) BurnCoins(_ context.Context, moduleName string, amt sdk.Coins) error {
	return m.deduct(authtypes.NewModuleAddress(moduleName).String(), amt)
}

func (m *MockBankKeeper) GetDenomMetaData(_ context.Context, denom string) (banktypes.Metadata, bool) {
	meta, ok := m.metadata[denom]
	return meta, ok
}

func (m *MockBankKeeper) move(from, to string, amt sdk.Coins) error {
	if err := m.deduct(from, amt); err != nil {
		return err
	}
	m.balances[to] = m.balances[to].Add(amt...)
	return nil
}

func (m *MockBankKeeper) deduct(from string, amt sdk.Coins) error {
	balance, hasNeg := m.balances[from].SafeSub(amt...)
	if hasNeg {
		return fmt.Errorf("insufficient funds: %s has %s, needs %s", from, m.balances[from], amt)
	}
	m.balances[from] = balance
	return nil
}

// RecordedPrice is one price observation captured by RecordingOracleSink.
type RecordedPrice struct {
	PoolID    uint64
	Price     math.LegacyDec
	Timestamp int64
}

// RecordingOracleSink captures every price forwarded by the keeper.
type RecordingOracleSink struct {
	Prices []RecordedPrice
	Err    error
}

func (s *RecordingOracleSink) RecordPrice(_ context.Context, poolID uint64, price math.LegacyDec, timestamp int64) error {
	if s.Err != nil {
		return s.Err
	}
	s.Prices = append(s.Prices, RecordedPrice{PoolID: poolID, Price: price, Timestamp: timestamp})
	return nil
}

// StableswapKeeper creates a test keeper for the stableswap module backed by
// an in-memory store and the mock bank.
func StableswapKeeper(t testing.TB) (keeper.Keeper, *MockBankKeeper, sdk.Context) {
	return StableswapKeeperWithSink(t, nil)
}

// StableswapKeeperWithSink is StableswapKeeper with an explicit oracle sink.
func StableswapKeeperWithSink(t testing.TB, sink types.OracleSink) (keeper.Keeper, *MockBankKeeper, sdk.Context) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	bank := NewMockBankKeeper()
	k := keeper.NewKeeper(storeKey, bank, sink, TestAuthority)

	ctx := sdk.NewContext(stateStore, cmtproto.Header{}, false, log.NewNopLogger()).
		WithBlockTime(TestBlockTime)

	require.NoError(t, k.InitGenesis(ctx, *types.DefaultGenesis()))

	return k, bank, ctx
}
