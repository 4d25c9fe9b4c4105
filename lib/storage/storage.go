package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/besnikbelegu/rustbase/lib/db"
	"github.com/besnikbelegu/rustbase/lib/engine"
	"github.com/besnikbelegu/rustbase/lib/query"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
	gometrics "github.com/rcrowley/go-metrics"
)

var Logger = logger.GetLogger("storage")

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Options configures the storage backend.
type Options struct {
	// CacheSize is the maximum number of values held by the read-through
	// cache (0 = default).
	CacheSize int
}

// --------------------------------------------------------------------------
// Backend
// --------------------------------------------------------------------------

// Backend implements engine.IBackend on top of two KVDB namespaces (user and
// database) behind a shared read-through cache. Values are stored in their
// textual serialization, so a snapshot is readable with any engine.
type Backend struct {
	users     db.KVDB
	databases db.KVDB
	cache     *backendCache
	registry  gometrics.Registry
}

// NewBackend creates a storage backend. The factory is invoked once per
// namespace.
func NewBackend(factory db.DBFactory, opts Options) *Backend {
	registry := gometrics.NewRegistry()
	return &Backend{
		users:     factory(),
		databases: factory(),
		cache:     newBackendCache(opts.CacheSize, registry),
		registry:  registry,
	}
}

// namespace returns the KVDB and cache key prefix for a verb.
func (b *Backend) namespace(verb query.Verb) (db.KVDB, string) {
	if verb == query.VerbUser {
		return b.users, "u:"
	}
	return b.databases, "d:"
}

// encodeKey turns a key value into the storage key. String keys are used
// verbatim, everything else uses its textual serialization.
func encodeKey(key query.Value) string {
	if key.Kind == query.KindString {
		return key.Str
	}
	return key.String()
}

// --------------------------------------------------------------------------
// Interface Methods (docu see engine/interface.go)
// --------------------------------------------------------------------------

func (b *Backend) Insert(verb query.Verb, key query.Value, payload query.Value) (query.Value, error) {
	if verb == query.VerbUser {
		if err := validateUserRecord(payload); err != nil {
			return query.Value{}, err
		}
	}

	kvdb, prefix := b.namespace(verb)

	// a null key asks for a generated one
	if key.Kind == query.KindNull {
		generated := uuid.NewString()
		kvdb.Set(generated, []byte(payload.String()))
		b.cache.put(prefix+generated, payload)
		Logger.Debugf("inserted generated key %s into %s namespace", generated, verb)
		return query.Object(
			query.Member{Key: "key", Value: query.String_(generated)},
			query.Member{Key: "value", Value: payload},
		), nil
	}

	k := encodeKey(key)
	if kvdb.Has(k) {
		return query.Value{}, engine.NewBackendError(engine.BackendRetCAlreadyExists,
			fmt.Sprintf("key %q already exists", k))
	}
	kvdb.Set(k, []byte(payload.String()))
	b.cache.put(prefix+k, payload)
	Logger.Debugf("inserted key %s into %s namespace", k, verb)
	return payload, nil
}

func (b *Backend) Get(verb query.Verb, key query.Value) (query.Value, error) {
	kvdb, prefix := b.namespace(verb)
	k := encodeKey(key)

	// a cache hit short-circuits the storage lookup
	if value, ok := b.cache.get(prefix + k); ok {
		return value, nil
	}

	raw, ok := kvdb.Get(k)
	if !ok {
		return query.Value{}, engine.NewBackendError(engine.BackendRetCNotFound,
			fmt.Sprintf("key %q not found", k))
	}
	value, err := query.ParseValue(string(raw))
	if err != nil {
		return query.Value{}, engine.NewBackendError(engine.BackendRetCInternalError,
			fmt.Sprintf("corrupt value for key %q: %v", k, err))
	}
	b.cache.put(prefix+k, value)
	return value, nil
}

func (b *Backend) Delete(verb query.Verb, key query.Value) (query.Value, error) {
	kvdb, prefix := b.namespace(verb)
	k := encodeKey(key)

	raw, ok := kvdb.Get(k)
	if !ok {
		return query.Value{}, engine.NewBackendError(engine.BackendRetCNotFound,
			fmt.Sprintf("key %q not found", k))
	}
	kvdb.Delete(k)
	b.cache.invalidate(prefix + k)
	Logger.Debugf("deleted key %s from %s namespace", k, verb)

	value, err := query.ParseValue(string(raw))
	if err != nil {
		// the entry is gone either way
		return query.Null(), nil
	}
	return value, nil
}

func (b *Backend) Update(verb query.Verb, key query.Value, payload query.Value) (query.Value, error) {
	if verb == query.VerbUser {
		if err := validateUserRecord(payload); err != nil {
			return query.Value{}, err
		}
	}
	if key.Kind == query.KindNull {
		return query.Value{}, engine.NewBackendError(engine.BackendRetCInvalidArgument,
			"update requires an explicit key")
	}

	kvdb, prefix := b.namespace(verb)
	k := encodeKey(key)
	if !kvdb.Has(k) {
		return query.Value{}, engine.NewBackendError(engine.BackendRetCNotFound,
			fmt.Sprintf("key %q not found", k))
	}
	kvdb.Set(k, []byte(payload.String()))
	b.cache.put(prefix+k, payload)
	Logger.Debugf("updated key %s in %s namespace", k, verb)
	return payload, nil
}

func (b *Backend) List(verb query.Verb, filter *query.Value) (query.Value, error) {
	kvdb, _ := b.namespace(verb)

	prefix := ""
	if filter != nil {
		if filter.Kind != query.KindString {
			return query.Value{}, engine.NewBackendError(engine.BackendRetCInvalidArgument,
				fmt.Sprintf("list filter must be a string, got %s", filter.Kind))
		}
		prefix = filter.Str
	}

	keys := kvdb.Scan(prefix)
	elems := make([]query.Value, 0, len(keys))
	for _, k := range keys {
		elems = append(elems, query.String_(k))
	}
	return query.Array(elems...), nil
}

// --------------------------------------------------------------------------
// User Record Validation
// --------------------------------------------------------------------------

// validateUserRecord checks the shape of a user namespace payload: an object
// with a string password and a permission out of the fixed set.
func validateUserRecord(payload query.Value) error {
	if payload.Kind != query.KindObject {
		return engine.NewBackendError(engine.BackendRetCInvalidArgument,
			"user record must be an object")
	}
	password, ok := payload.Field("password")
	if !ok || password.Kind != query.KindString {
		return engine.NewBackendError(engine.BackendRetCInvalidArgument,
			"password must be a string")
	}
	permission, ok := payload.Field("permission")
	if !ok || permission.Kind != query.KindString {
		return engine.NewBackendError(engine.BackendRetCInvalidArgument,
			"permission must be a string")
	}
	switch permission.Str {
	case "read", "write", "read_and_write", "admin":
		return nil
	default:
		return engine.NewBackendError(engine.BackendRetCInvalidArgument,
			"permission must be 'read', 'write', 'read_and_write', or 'admin'")
	}
}

// --------------------------------------------------------------------------
// Snapshots
// --------------------------------------------------------------------------

// Save writes a snapshot of both namespaces as two length-prefixed engine
// snapshots (user first, then database).
func (b *Backend) Save(w io.Writer) error {
	for _, kvdb := range []db.KVDB{b.users, b.databases} {
		var buf bytes.Buffer
		if err := kvdb.Save(&buf); err != nil {
			return err
		}
		var lenBuf [8]byte
		binary.BigEndian.PutUint64(lenBuf[:], uint64(buf.Len()))
		if _, err := w.Write(lenBuf[:]); err != nil {
			return err
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// Load restores both namespaces from a snapshot written by Save.
func (b *Backend) Load(r io.Reader) error {
	for _, kvdb := range []db.KVDB{b.users, b.databases} {
		var lenBuf [8]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return fmt.Errorf("failed to read snapshot section header: %w", err)
		}
		section := make([]byte, binary.BigEndian.Uint64(lenBuf[:]))
		if _, err := io.ReadFull(r, section); err != nil {
			return fmt.Errorf("truncated snapshot section: %w", err)
		}
		if err := kvdb.Load(bytes.NewReader(section)); err != nil {
			return err
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Introspection
// --------------------------------------------------------------------------

// CacheStats returns the cumulative cache hit and miss counts.
func (b *Backend) CacheStats() (hits, misses int64) {
	return b.cache.stats()
}

// Info returns metadata about both namespaces.
func (b *Backend) Info() (users, databases db.DatabaseInfo) {
	return b.users.GetInfo(), b.databases.GetInfo()
}

// Close closes both namespaces.
func (b *Backend) Close() error {
	if err := b.users.Close(); err != nil {
		return err
	}
	return b.databases.Close()
}
