package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cosmossdk.io/collections"
	collcodec "cosmossdk.io/collections/codec"
	corestore "cosmossdk.io/core/store"
	"cosmossdk.io/store/cachekv"
	"cosmossdk.io/store/dbadapter"
	storetypes "cosmossdk.io/store/types"
	dbm "github.com/cosmos/cosmos-db"

	"github.com/elys-network/ampfarm/internal/types"
)

// AddrKey encodes canonical addresses as collection keys.
var AddrKey = collcodec.NewStringKeyCodec[types.Addr]()

type storeContextKey int

const (
	rootStoreKey storeContextKey = iota
	contractStoreKey
)

// batchDB sends every write of a committing cache into one database batch.
type batchDB struct {
	dbm.DB
	batch dbm.Batch
}

func (b batchDB) Set(key, value []byte) error { return b.batch.Set(key, value) }

func (b batchDB) Delete(key []byte) error { return b.batch.Delete(key) }

// newRootStore branches the committed database. Writes reach batch on Write; with a nil
// batch the branch is read only and is simply dropped.
func newRootStore(db dbm.DB, batch dbm.Batch) *cachekv.Store {
	if batch == nil {
		return cachekv.NewStore(dbadapter.Store{DB: db})
	}
	return cachekv.NewStore(dbadapter.Store{DB: batchDB{DB: db, batch: batch}})
}

func contractPrefix(contract types.Addr) []byte {
	return []byte("contracts/" + contract.String() + "/")
}

// coreKVStore exposes a store/types KVStore through the error returning core interface.
type coreKVStore struct {
	parent storetypes.KVStore
}

func (s coreKVStore) Get(key []byte) ([]byte, error) { return s.parent.Get(key), nil }

func (s coreKVStore) Has(key []byte) (bool, error) { return s.parent.Has(key), nil }

func (s coreKVStore) Set(key, value []byte) error {
	s.parent.Set(key, value)
	return nil
}

func (s coreKVStore) Delete(key []byte) error {
	s.parent.Delete(key)
	return nil
}

func (s coreKVStore) Iterator(start, end []byte) (corestore.Iterator, error) {
	return s.parent.Iterator(start, end), nil
}

func (s coreKVStore) ReverseIterator(start, end []byte) (corestore.Iterator, error) {
	return s.parent.ReverseIterator(start, end), nil
}

func withStore(ctx context.Context, key storeContextKey, store storetypes.KVStore) context.Context {
	return context.WithValue(ctx, key, store)
}

func openStore(ctx context.Context, key storeContextKey) corestore.KVStore {
	store, ok := ctx.Value(key).(storetypes.KVStore)
	if !ok {
		panic(fmt.Sprintf("host: context carries no store %d", key))
	}
	return coreKVStore{parent: store}
}

func rootStore(ctx context.Context) corestore.KVStore {
	return openStore(ctx, rootStoreKey)
}

// ContractStore opens the private storage of the contract currently running in ctx.
func ContractStore(ctx context.Context) corestore.KVStore {
	return openStore(ctx, contractStoreKey)
}

// NewSchemaBuilder starts a collections schema bound to the storage of the running contract.
func NewSchemaBuilder() *collections.SchemaBuilder {
	return collections.NewSchemaBuilderFromAccessor(ContractStore)
}

// MustBuild finalizes a schema. Overlapping prefixes or names panic.
func MustBuild(sb *collections.SchemaBuilder) collections.Schema {
	schema, err := sb.Build()
	if err != nil {
		panic(err)
	}
	return schema
}

// GetOr reads key from m and returns fallback when it is absent.
func GetOr[K, V any](ctx context.Context, m collections.Map[K, V], key K, fallback V) (V, error) {
	v, err := m.Get(ctx, key)
	if errors.Is(err, collections.ErrNotFound) {
		return fallback, nil
	}
	return v, err
}

type jsonValue[T any] struct{}

// JSONValue is a collections value codec for plain Go structs.
func JSONValue[T any]() collcodec.ValueCodec[T] { return jsonValue[T]{} }

func (jsonValue[T]) Encode(value T) ([]byte, error) { return json.Marshal(value) }

func (jsonValue[T]) Decode(b []byte) (T, error) {
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return v, fmt.Errorf("%w: %w", collections.ErrEncoding, err)
	}
	return v, nil
}

func (c jsonValue[T]) EncodeJSON(value T) ([]byte, error) { return c.Encode(value) }

func (c jsonValue[T]) DecodeJSON(b []byte) (T, error) { return c.Decode(b) }

func (c jsonValue[T]) Stringify(value T) string {
	bz, err := c.Encode(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(bz)
}

func (jsonValue[T]) ValueType() string {
	var v T
	return fmt.Sprintf("json/%T", v)
}

// catch runs fn and converts a panic, such as a store failure, into an error.
func catch(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("recovered: %w", e)
				return
			}
			err = fmt.Errorf("recovered: %v", r)
		}
	}()
	return fn()
}
