package dust

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/besnikbelegu/rustbase/lib/db"
)

// TestBasicOperations checks Set, Get, Has and Delete
func TestBasicOperations(t *testing.T) {
	d := NewDustDB(nil)
	defer d.Close()

	if d.Has("a") {
		t.Errorf("expected empty database not to contain a")
	}
	if _, ok := d.Get("a"); ok {
		t.Errorf("expected Get on missing key to fail")
	}

	d.Set("a", []byte("1"))
	if !d.Has("a") {
		t.Errorf("expected a after Set")
	}
	if v, ok := d.Get("a"); !ok || string(v) != "1" {
		t.Errorf("expected a=1, got %q ok=%v", v, ok)
	}

	// Set overwrites
	d.Set("a", []byte("2"))
	if v, _ := d.Get("a"); string(v) != "2" {
		t.Errorf("expected a=2 after overwrite, got %q", v)
	}

	d.Delete("a")
	if d.Has("a") {
		t.Errorf("expected a gone after Delete")
	}

	// deleting a missing key is a no-op
	d.Delete("missing")
}

// TestValueIsolation checks that stored values are decoupled from caller
// buffers
func TestValueIsolation(t *testing.T) {
	d := NewDustDB(nil)
	defer d.Close()

	buf := []byte("original")
	d.Set("key", buf)
	buf[0] = 'X'

	v, _ := d.Get("key")
	if string(v) != "original" {
		t.Errorf("caller mutation leaked into the store: %q", v)
	}

	// mutating the returned slice must not affect the store either
	v[0] = 'Y'
	v2, _ := d.Get("key")
	if string(v2) != "original" {
		t.Errorf("reader mutation leaked into the store: %q", v2)
	}
}

// TestScan checks prefix scans and key ordering
func TestScan(t *testing.T) {
	d := NewDustDB(&DBOptions{SizeHint: 16})
	defer d.Close()

	for _, key := range []string{"user:bob", "db:b", "db:a", "user:alice", "other"} {
		d.Set(key, []byte("x"))
	}

	tests := []struct {
		name   string
		prefix string
		keys   []string
	}{
		{"All", "", []string{"db:a", "db:b", "other", "user:alice", "user:bob"}},
		{"DbPrefix", "db:", []string{"db:a", "db:b"}},
		{"UserPrefix", "user:", []string{"user:alice", "user:bob"}},
		{"NoMatch", "zzz", []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := d.Scan(tc.prefix)
			if !reflect.DeepEqual(got, tc.keys) {
				t.Errorf("Scan(%q) = %v, expected %v", tc.prefix, got, tc.keys)
			}
		})
	}
}

// TestSaveLoadRoundTrip checks snapshot persistence
func TestSaveLoadRoundTrip(t *testing.T) {
	src := NewDustDB(nil)
	defer src.Close()

	entries := map[string]string{
		"a":     "1",
		"b":     `{"nested": true}`,
		"empty": "",
	}
	for k, v := range entries {
		src.Set(k, []byte(v))
	}

	var buf bytes.Buffer
	if err := src.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// header: magic + version
	snapshot := buf.Bytes()
	if len(snapshot) < len(magicNum)+1 || string(snapshot[:len(magicNum)]) != magicNum {
		t.Fatalf("snapshot missing magic header")
	}
	if snapshot[len(magicNum)] != dustVersion {
		t.Fatalf("expected version %d, got %d", dustVersion, snapshot[len(magicNum)])
	}

	// Load replaces existing contents
	dst := NewDustDB(nil)
	defer dst.Close()
	dst.Set("stale", []byte("x"))

	if err := dst.Load(bytes.NewReader(snapshot)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if dst.Has("stale") {
		t.Errorf("expected Load to clear pre-existing entries")
	}
	for k, want := range entries {
		v, ok := dst.Get(k)
		if !ok || string(v) != want {
			t.Errorf("expected %s=%q after Load, got %q ok=%v", k, want, v, ok)
		}
	}
	if got := dst.GetInfo().Entries; got != len(entries) {
		t.Errorf("expected %d entries, got %d", len(entries), got)
	}
}

// TestLoadRejectsCorruptSnapshots checks header and truncation handling
func TestLoadRejectsCorruptSnapshots(t *testing.T) {
	valid := func() []byte {
		d := NewDustDB(nil)
		defer d.Close()
		d.Set("a", []byte("1"))
		var buf bytes.Buffer
		if err := d.Save(&buf); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		return buf.Bytes()
	}()

	tests := []struct {
		name string
		data []byte
	}{
		{"Empty", nil},
		{"WrongMagic", []byte("NOTADB\x00\x01")},
		{"UnsupportedVersion", append([]byte(magicNum), 99)},
		{"TruncatedEntry", valid[:len(valid)-1]},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDustDB(nil)
			defer d.Close()
			if err := d.Load(bytes.NewReader(tc.data)); err == nil {
				t.Errorf("expected Load to fail")
			}
		})
	}
}

// TestFeatureSupport checks the advertised feature set
func TestFeatureSupport(t *testing.T) {
	d := NewDustDB(nil)
	defer d.Close()

	all := db.FeatureSet | db.FeatureGet | db.FeatureDelete | db.FeatureHas |
		db.FeatureScan | db.FeatureSave | db.FeatureLoad
	if !d.SupportsFeature(all) {
		t.Errorf("expected all features supported")
	}

	info := d.GetInfo()
	if info.DbType != db.ImplDust {
		t.Errorf("expected dust implementation, got %s", info.DbType)
	}
	if len(info.SupportedFeatures) != 7 {
		t.Errorf("expected 7 features, got %v", info.SupportedFeatures)
	}
}
