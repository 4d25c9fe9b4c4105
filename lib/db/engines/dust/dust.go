package dust

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/besnikbelegu/rustbase/lib/db"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

// Constants for the snapshot file format
const (
	magicNum    = "DUSTDB\x00" // File format identifier
	dustVersion = 1            // Snapshot format version
)

// supportedFeatures is the feature set of the dust engine
const supportedFeatures = db.FeatureSet |
	db.FeatureGet |
	db.FeatureDelete |
	db.FeatureHas |
	db.FeatureScan |
	db.FeatureSave |
	db.FeatureLoad

// --------------------------------------------------------------------------
// Core dust database structure
// --------------------------------------------------------------------------

// dustImpl implements db.KVDB with a concurrent hash map. All operations are
// lock-free reads/writes on the underlying xsync map, so the engine can be
// shared by any number of sessions without external coordination.
type dustImpl struct {
	data *xsync.MapOf[string, []byte]
}

// DBOptions configures the dustImpl behavior during initialization
type DBOptions struct {
	SizeHint int // Expected number of entries (0 = library default)
}

// DefaultOptions returns the default dustImpl options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		SizeHint: 0,
	}
}

// NewDustDB creates a new dust engine instance with the specified options
// (optional).
func NewDustDB(opts *DBOptions) db.KVDB {
	if opts == nil {
		opts = DefaultOptions()
	}

	var data *xsync.MapOf[string, []byte]
	if opts.SizeHint > 0 {
		data = xsync.NewMapOf[string, []byte](xsync.WithPresize(opts.SizeHint))
	} else {
		data = xsync.NewMapOf[string, []byte]()
	}

	return &dustImpl{
		data: data,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see db/db.go)
// --------------------------------------------------------------------------

func (d *dustImpl) Set(key string, value []byte) {
	// copy the value so later caller mutations cannot leak into the store
	stored := make([]byte, len(value))
	copy(stored, value)
	d.data.Store(key, stored)
}

func (d *dustImpl) Delete(key string) {
	d.data.Delete(key)
}

func (d *dustImpl) Get(key string) ([]byte, bool) {
	value, ok := d.data.Load(key)
	if !ok {
		return nil, false
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true
}

func (d *dustImpl) Has(key string) bool {
	_, ok := d.data.Load(key)
	return ok
}

func (d *dustImpl) Scan(prefix string) []string {
	keys := make([]string, 0, d.data.Size())
	d.data.Range(func(key string, _ []byte) bool {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return true
	})
	sort.Strings(keys)
	return keys
}

func (d *dustImpl) SupportsFeature(feature db.Feature) bool {
	return supportedFeatures&feature == feature
}

func (d *dustImpl) GetInfo() db.DatabaseInfo {
	features := make([]db.Feature, 0, 8)
	for f := db.FeatureSet; f <= db.FeatureLoad; f <<= 1 {
		if d.SupportsFeature(f) {
			features = append(features, f)
		}
	}
	return db.DatabaseInfo{
		Entries:           d.data.Size(),
		DbType:            db.ImplDust,
		SupportedFeatures: features,
	}
}

func (d *dustImpl) Close() error {
	d.data.Clear()
	return nil
}

// --------------------------------------------------------------------------
// Persistence Operations
// --------------------------------------------------------------------------

// Save writes a snapshot of the database. The snapshot is fuzzy: entries
// written or deleted concurrently may or may not be included, but every
// entry that is included is internally consistent.
func (d *dustImpl) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)

	// header: magic + version
	if _, err := bw.WriteString(magicNum); err != nil {
		return err
	}
	if err := bw.WriteByte(dustVersion); err != nil {
		return err
	}

	var rangeErr error
	d.data.Range(func(key string, value []byte) bool {
		if rangeErr = writeEntry(bw, key, value); rangeErr != nil {
			return false
		}
		return true
	})
	if rangeErr != nil {
		return rangeErr
	}

	return bw.Flush()
}

// Load replaces the database contents with a snapshot previously written by
// Save.
func (d *dustImpl) Load(r io.Reader) error {
	br := bufio.NewReader(r)

	// header: magic + version
	magic := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magic); err != nil {
		return fmt.Errorf("failed to read snapshot header: %w", err)
	}
	if string(magic) != magicNum {
		return fmt.Errorf("invalid snapshot file format")
	}
	version, err := br.ReadByte()
	if err != nil {
		return fmt.Errorf("failed to read snapshot version: %w", err)
	}
	if version != dustVersion {
		return fmt.Errorf("unsupported snapshot version %d", version)
	}

	d.data.Clear()
	for {
		key, value, err := readEntry(br)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		d.data.Store(key, value)
	}
}

// writeEntry encodes one length-prefixed key-value pair.
func writeEntry(w *bufio.Writer, key string, value []byte) error {
	var lenBuf [4]byte

	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(key)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := w.WriteString(key); err != nil {
		return err
	}

	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(value)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(value)
	return err
}

// readEntry decodes one length-prefixed key-value pair. It returns io.EOF
// cleanly at the end of the snapshot.
func readEntry(r *bufio.Reader) (string, []byte, error) {
	var lenBuf [4]byte

	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return "", nil, err
	}
	key := make([]byte, binary.BigEndian.Uint32(lenBuf[:]))
	if _, err := io.ReadFull(r, key); err != nil {
		return "", nil, fmt.Errorf("truncated snapshot entry: %w", err)
	}

	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", nil, fmt.Errorf("truncated snapshot entry: %w", err)
	}
	value := make([]byte, binary.BigEndian.Uint32(lenBuf[:]))
	if _, err := io.ReadFull(r, value); err != nil {
		return "", nil, fmt.Errorf("truncated snapshot entry: %w", err)
	}

	return string(key), value, nil
}
