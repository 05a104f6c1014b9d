// Package host executes contracts one message at a time.
//
// Each top-level call opens a write buffer over the committed database. A handler's
// emitted messages are dispatched depth first, in emission order, inside the same
// buffer; if anything in the causally linked batch fails the buffer is dropped and
// nothing (state, token moves, bank transfers) is persisted.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/store/cachekv"
	"cosmossdk.io/store/prefix"
	storetypes "cosmossdk.io/store/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/elys-network/ampfarm/internal/logger"
	"github.com/elys-network/ampfarm/internal/types"
)

const (
	DefaultMaxCallDepth = 32
	DefaultBlockTime    = 5 * time.Second
)

var (
	heightPrefix    = collections.NewPrefix(0)
	instancesPrefix = collections.NewPrefix(1)
	balancesPrefix  = collections.NewPrefix(2)
)

// EventSink receives every committed result.
type EventSink func(Result)

type Option func(*Host)

func WithEventSink(sink EventSink) Option {
	return func(h *Host) { h.sinks = append(h.sinks, sink) }
}

func WithMaxCallDepth(depth int) Option {
	return func(h *Host) { h.maxDepth = depth }
}

var _ Querier = (*Host)(nil)

// Host owns the database, the contract registry and the block clock.
// Its own query methods read committed state only.
type Host struct {
	mu        sync.Mutex
	db        dbm.DB
	prefix    string
	contracts map[types.Addr]Contract
	labels    map[types.Addr]string
	genesis   time.Time
	maxDepth  int
	sinks     []EventSink
	logger    zerolog.Logger

	height    collections.Item[int64]
	instances collections.Map[types.Addr, string]
	bank      bank
}

// New creates a host over db whose addresses use the given bech32 prefix.
func New(db dbm.DB, prefix string, opts ...Option) *Host {
	h := &Host{
		db:        db,
		prefix:    prefix,
		contracts: make(map[types.Addr]Contract),
		labels:    make(map[types.Addr]string),
		genesis:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		maxDepth:  DefaultMaxCallDepth,
		logger:    logger.GetForComponent("host"),
	}
	for _, opt := range opts {
		opt(h)
	}

	sb := collections.NewSchemaBuilderFromAccessor(rootStore)
	h.height = collections.NewItem(sb, heightPrefix, "height", collections.Int64Value)
	h.instances = collections.NewMap(sb, instancesPrefix, "instances", AddrKey, collections.StringValue)
	h.bank = newBank(sb)
	MustBuild(sb)
	return h
}

// Addr derives the address a label resolves to under this host's prefix.
func (h *Host) Addr(label string) types.Addr {
	return types.MustDeriveAddr(h.prefix, label)
}

// Register binds contract code to the address derived from label.
func (h *Host) Register(label string, c Contract) types.Addr {
	h.mu.Lock()
	defer h.mu.Unlock()

	addr := h.Addr(label)
	h.contracts[addr] = c
	h.labels[addr] = label
	return addr
}

// IsInstantiated reports whether addr has completed instantiation.
func (h *Host) IsInstantiated(addr types.Addr) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var ok bool
	err := catch(func() (err error) {
		ok, err = h.instances.Has(h.view(context.Background()), addr)
		return err
	})
	return ok, err
}

// Height returns the last committed block height.
func (h *Host) Height() (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.committedHeight(context.Background())
}

// Instantiate runs the instantiate handler of a registered contract.
func (h *Host) Instantiate(ctx context.Context, sender, contract types.Addr, msg any, funds sdk.Coins) (*Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.runTx(ctx, "instantiate", func(ctx context.Context, tx *txn) (any, error) {
		c, ok := h.contracts[contract]
		if !ok {
			return nil, errorsmod.Wrapf(types.ErrNotFound, "no contract registered at %s", contract)
		}
		exists, err := h.instances.Has(ctx, contract)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "%s is already instantiated", contract)
		}
		if err := h.instances.Set(ctx, contract, h.labels[contract]); err != nil {
			return nil, err
		}
		if err := tx.transfer(ctx, sender, contract, funds); err != nil {
			return nil, err
		}

		info := MessageInfo{Sender: sender, Funds: funds}
		res, err := c.Instantiate(tx.contractContext(ctx, contract), tx.deps(), tx.env(contract), info, msg)
		if err != nil {
			return nil, fmt.Errorf("instantiate %s: %w", contract, err)
		}
		return tx.handleResponse(ctx, contract, res, 0)
	})
}

// Execute runs msg on contract as sender, with funds moved from sender first.
func (h *Host) Execute(ctx context.Context, sender, contract types.Addr, msg any, funds sdk.Coins) (*Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.runTx(ctx, "execute", func(ctx context.Context, tx *txn) (any, error) {
		return tx.call(ctx, sender, contract, msg, funds, 0)
	})
}

// Mint credits native coins out of thin air. It is the faucet used by genesis and tests.
func (h *Host) Mint(ctx context.Context, to types.Addr, coins sdk.Coins) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.runTx(ctx, "mint", func(ctx context.Context, _ *txn) (any, error) {
		if err := coins.Validate(); err != nil {
			return nil, errorsmod.Wrap(types.ErrInvalidFunds, err.Error())
		}
		return nil, h.bank.mint(ctx, to, coins)
	})
	return err
}

// QueryWasm runs a read-only query against committed state.
func (h *Host) QueryWasm(ctx context.Context, contract types.Addr, req any) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var res any
	err := catch(func() error {
		tx, ctx, err := h.readTxn(ctx)
		if err != nil {
			return err
		}
		res, err = tx.QueryWasm(ctx, contract, req)
		return err
	})
	return res, err
}

// QueryBalance returns the committed native balance of addr.
func (h *Host) QueryBalance(ctx context.Context, addr types.Addr, denom string) (sdk.Coin, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var coin sdk.Coin
	err := catch(func() error {
		tx, ctx, err := h.readTxn(ctx)
		if err != nil {
			return err
		}
		coin, err = tx.QueryBalance(ctx, addr, denom)
		return err
	})
	return coin, err
}

// QueryAllBalances returns every committed native balance of addr.
func (h *Host) QueryAllBalances(ctx context.Context, addr types.Addr) (sdk.Coins, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var coins sdk.Coins
	err := catch(func() error {
		tx, ctx, err := h.readTxn(ctx)
		if err != nil {
			return err
		}
		coins, err = tx.QueryAllBalances(ctx, addr)
		return err
	})
	return coins, err
}

// view returns ctx bound to a throwaway branch of the committed database.
func (h *Host) view(ctx context.Context) context.Context {
	return withStore(ctx, rootStoreKey, newRootStore(h.db, nil))
}

func (h *Host) committedHeight(ctx context.Context) (int64, error) {
	var height int64
	err := catch(func() (err error) {
		height, err = h.height.Get(h.view(ctx))
		if errors.Is(err, collections.ErrNotFound) {
			return nil
		}
		return err
	})
	return height, err
}

func (h *Host) newTxn(ctx context.Context, height int64, txID string, batch dbm.Batch) (*txn, context.Context) {
	tx := &txn{
		host:   h,
		root:   newRootStore(h.db, batch),
		height: height,
		time:   h.genesis.Add(time.Duration(height) * DefaultBlockTime),
		txID:   txID,
	}
	return tx, withStore(ctx, rootStoreKey, tx.root)
}

// readTxn opens a read only execution at the committed height.
func (h *Host) readTxn(ctx context.Context) (*txn, context.Context, error) {
	height, err := h.committedHeight(ctx)
	if err != nil {
		return nil, nil, err
	}
	tx, ctx := h.newTxn(ctx, height, "", nil)
	return tx, ctx, nil
}

func (h *Host) runTx(ctx context.Context, kind string, fn func(ctx context.Context, tx *txn) (any, error)) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	height, err := h.committedHeight(ctx)
	if err != nil {
		return nil, err
	}
	batch := h.db.NewBatch()
	defer batch.Close()

	tx, txCtx := h.newTxn(ctx, height+1, uuid.New().String(), batch)
	txLogger := h.logger.With().Str("tx_id", tx.txID).Int64("height", tx.height).Str("kind", kind).Logger()

	var data any
	err = catch(func() (err error) {
		if data, err = fn(txCtx, tx); err != nil {
			return err
		}
		if err := h.height.Set(txCtx, tx.height); err != nil {
			return err
		}
		tx.root.Write()
		return nil
	})
	if err != nil {
		txLogger.Debug().Err(err).Msg("Execution failed, discarding batch")
		return nil, err
	}
	if err := batch.WriteSync(); err != nil {
		txLogger.Error().Err(err).Msg("Failed to commit batch")
		return nil, fmt.Errorf("failed to commit batch: %w", err)
	}

	result := Result{TxID: tx.txID, Height: tx.height, Events: tx.events, Data: data}
	txLogger.Debug().Int("events", len(result.Events)).Msg("Batch committed")
	for _, sink := range h.sinks {
		sink(result)
	}
	return &result, nil
}

// txn is the execution state of one top-level call.
type txn struct {
	host   *Host
	root   *cachekv.Store
	height int64
	time   time.Time
	txID   string
	events []types.Event
}

func (tx *txn) env(contract types.Addr) Env {
	return Env{BlockHeight: tx.height, BlockTime: tx.time, Contract: contract, TxID: tx.txID}
}

func (tx *txn) contractStore(contract types.Addr) storetypes.KVStore {
	return prefix.NewStore(tx.root, contractPrefix(contract))
}

// contractContext binds ctx to the storage of contract.
func (tx *txn) contractContext(ctx context.Context, contract types.Addr) context.Context {
	return withStore(ctx, contractStoreKey, tx.contractStore(contract))
}

func (tx *txn) deps() Deps {
	return Deps{Querier: tx, prefix: tx.host.prefix}
}

func (tx *txn) transfer(ctx context.Context, from, to types.Addr, funds sdk.Coins) error {
	if funds.Empty() {
		return nil
	}
	return tx.host.bank.send(ctx, from, to, funds)
}

func (tx *txn) lookup(ctx context.Context, contract types.Addr) (Contract, error) {
	c, ok := tx.host.contracts[contract]
	if !ok {
		return nil, errorsmod.Wrapf(types.ErrNotFound, "no contract at %s", contract)
	}
	exists, err := tx.host.instances.Has(ctx, contract)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errorsmod.Wrapf(types.ErrNotFound, "contract %s is not instantiated", contract)
	}
	return c, nil
}

func (tx *txn) call(ctx context.Context, sender, contract types.Addr, msg any, funds sdk.Coins, depth int) (any, error) {
	if depth > tx.host.maxDepth {
		return nil, errorsmod.Wrapf(types.ErrMaxCallDepth, "depth %d", depth)
	}
	c, err := tx.lookup(ctx, contract)
	if err != nil {
		return nil, err
	}
	if err := tx.transfer(ctx, sender, contract, funds); err != nil {
		return nil, err
	}

	info := MessageInfo{Sender: sender, Funds: funds}
	res, err := c.Execute(tx.contractContext(ctx, contract), tx.deps(), tx.env(contract), info, msg)
	if err != nil {
		return nil, fmt.Errorf("execute %s: %w", contract, err)
	}
	return tx.handleResponse(ctx, contract, res, depth)
}

func (tx *txn) handleResponse(ctx context.Context, contract types.Addr, res *Response, depth int) (any, error) {
	if res == nil {
		return nil, nil
	}
	if len(res.Attributes) > 0 {
		tx.events = append(tx.events, types.Event{Contract: contract, Attributes: res.Attributes})
	}
	for _, m := range res.Messages {
		if err := tx.dispatch(ctx, contract, m, depth+1); err != nil {
			return nil, err
		}
	}
	return res.Data, nil
}

func (tx *txn) dispatch(ctx context.Context, from types.Addr, m CosmosMsg, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch m := m.(type) {
	case WasmMsg:
		_, err := tx.call(ctx, from, m.Contract, m.Msg, m.Funds, depth)
		return err
	case BankMsg:
		return tx.transfer(ctx, from, m.To, m.Amount)
	default:
		return errorsmod.Wrapf(types.ErrUnknownMessage, "cannot dispatch %T", m)
	}
}

func (tx *txn) QueryBalance(ctx context.Context, addr types.Addr, denom string) (sdk.Coin, error) {
	amount, err := tx.host.bank.balance(ctx, addr, denom)
	if err != nil {
		return sdk.Coin{}, err
	}
	return sdk.NewCoin(denom, amount), nil
}

func (tx *txn) QueryAllBalances(ctx context.Context, addr types.Addr) (sdk.Coins, error) {
	return tx.host.bank.allBalances(ctx, addr)
}

// QueryWasm runs the query on a branch of the contract's storage that is never written back.
func (tx *txn) QueryWasm(ctx context.Context, contract types.Addr, req any) (any, error) {
	c, err := tx.lookup(ctx, contract)
	if err != nil {
		return nil, err
	}
	branch := cachekv.NewStore(tx.contractStore(contract))
	return c.Query(withStore(ctx, contractStoreKey, branch), tx.deps(), tx.env(contract), req)
}
