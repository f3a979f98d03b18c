package mlst2serovar

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"go.uber.org/zap"

	"github.com/carbocation/serovar"
)

// EBGKey is the reserved top-level key under which the db builder stores eBG
// (eBurst group) counts.
const EBGKey = "ebg"

var ErrMalformedTable = errors.New("malformed serovar frequency table")

// SerovarCount is the number of isolates of one serovar observed for a key.
type SerovarCount struct {
	Serovar string
	Count   int
}

// FrequencyTable maps a sequence type (as a string) to the serovars observed
// for it. The order of serovars within a key is the order in which they were
// first added or read, which makes tie-breaking reproducible.
type FrequencyTable struct {
	keys    []string
	entries map[string][]SerovarCount
	index   map[string]map[string]int

	groupKeys []string
	groups    map[string]*FrequencyTable
}

func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{
		entries: make(map[string][]SerovarCount),
		index:   make(map[string]map[string]int),
		groups:  make(map[string]*FrequencyTable),
	}
}

// Add increments the count of serovar under key by n.
func (t *FrequencyTable) Add(key, serovar string, n int) {
	idx := t.touch(key)

	if pos, seen := idx[serovar]; seen {
		t.entries[key][pos].Count += n
		return
	}

	idx[serovar] = len(t.entries[key])
	t.entries[key] = append(t.entries[key], SerovarCount{Serovar: serovar, Count: n})
}

// touch registers key, keeping its first-seen position.
func (t *FrequencyTable) touch(key string) map[string]int {
	idx, exists := t.index[key]
	if !exists {
		idx = make(map[string]int)
		t.index[key] = idx
		t.entries[key] = nil
		t.keys = append(t.keys, key)
	}

	return idx
}

// Lookup returns the serovar counts for key, in table order. The returned
// slice must not be modified.
func (t *FrequencyTable) Lookup(key string) ([]SerovarCount, bool) {
	if t == nil {
		return nil, false
	}
	v, exists := t.entries[key]
	return v, exists
}

// Keys returns the sequence type keys in table order.
func (t *FrequencyTable) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

func (t *FrequencyTable) Len() int {
	return len(t.keys)
}

// Group returns a nested aggregate table such as the eBG counts, creating it
// if needed.
func (t *FrequencyTable) Group(name string) *FrequencyTable {
	g, exists := t.groups[name]
	if !exists {
		g = NewFrequencyTable()
		t.groups[name] = g
		t.groupKeys = append(t.groupKeys, name)
	}

	return g
}

// HasGroup reports whether a nested aggregate table exists under name.
func (t *FrequencyTable) HasGroup(name string) bool {
	_, exists := t.groups[name]
	return exists
}

// OpenTable reads a JSON table from a local path or a gs:// URL. Compressed
// tables are decompressed transparently.
func OpenTable(ctx context.Context, path string, client *storage.Client) (*FrequencyTable, error) {
	r, err := serovar.OpenInput(ctx, path, client)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer r.Close()

	table, err := ReadTable(bufio.NewReader(r))
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	zap.S().Debugw("Loaded serovar frequency table", "path", path, "keys", table.Len(), "groups", len(table.groupKeys))

	return table, nil
}

// ReadTable decodes the JSON table format written by WriteJSON. The decoder
// walks the token stream rather than unmarshaling into maps so that the
// serovar order of every key survives.
func ReadTable(r io.Reader) (*FrequencyTable, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	table := NewFrequencyTable()
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		if err := checkDuplicate(seen, key); err != nil {
			return nil, err
		}

		if err := expectDelim(dec, '{'); err != nil {
			return nil, fmt.Errorf("%w: key %q: %v", ErrMalformedTable, key, err)
		}

		// An empty object is recorded as a key with no serovars
		if !dec.More() {
			table.touch(key)
			if err := expectDelim(dec, '}'); err != nil {
				return nil, err
			}
			continue
		}

		if err := readKeyBody(dec, table, key); err != nil {
			return nil, err
		}
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after table", ErrMalformedTable)
	}

	return table, nil
}

// readKeyBody reads the members of one top-level object. The first member
// decides whether key holds serovar counts or is an aggregate group.
func readKeyBody(dec *json.Decoder, table *FrequencyTable, key string) error {
	var group *FrequencyTable
	first := true

	seen := make(map[string]struct{})
	for dec.More() {
		member, err := readKey(dec)
		if err != nil {
			return err
		}
		if err := checkDuplicate(seen, key+"/"+member); err != nil {
			return err
		}

		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrMalformedTable, key, err)
		}

		switch v := tok.(type) {
		case json.Number:
			if group != nil {
				return fmt.Errorf("%w: key %q mixes counts and nested objects", ErrMalformedTable, key)
			}
			n, err := parseCount(v)
			if err != nil {
				return fmt.Errorf("%w: key %q serovar %q: %v", ErrMalformedTable, key, member, err)
			}
			table.Add(key, member, n)
		case json.Delim:
			if v != '{' || (!first && group == nil) {
				return fmt.Errorf("%w: key %q has an unexpected %v", ErrMalformedTable, key, v)
			}
			if group == nil {
				group = table.Group(key)
			}
			if err := readCounts(dec, group, member); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: key %q serovar %q has a non-numeric count %v", ErrMalformedTable, key, member, tok)
		}
		first = false
	}

	return expectDelim(dec, '}')
}

// readCounts reads a flat serovar -> count object whose opening brace was
// already consumed.
func readCounts(dec *json.Decoder, table *FrequencyTable, key string) error {
	members := make(map[string]struct{})
	for dec.More() {
		member, err := readKey(dec)
		if err != nil {
			return err
		}
		if err := checkDuplicate(members, key+"/"+member); err != nil {
			return err
		}

		var num json.Number
		if err := dec.Decode(&num); err != nil {
			return fmt.Errorf("%w: key %q serovar %q: %v", ErrMalformedTable, key, member, err)
		}
		n, err := parseCount(num)
		if err != nil {
			return fmt.Errorf("%w: key %q serovar %q: %v", ErrMalformedTable, key, member, err)
		}
		table.Add(key, member, n)
	}

	if len(members) == 0 {
		table.touch(key)
	}

	return expectDelim(dec, '}')
}

// checkDuplicate rejects a key that already appeared in the same object.
func checkDuplicate(seen map[string]struct{}, key string) error {
	if _, exists := seen[key]; exists {
		return fmt.Errorf("%w: duplicate key %q", ErrMalformedTable, key)
	}
	seen[key] = struct{}{}
	return nil
}

func parseCount(num json.Number) (int, error) {
	f, err := num.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < 1 || f > math.MaxInt32 {
		return 0, fmt.Errorf("count %s is not a positive integer", num)
	}

	return int(f), nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected an object key, got %v", ErrMalformedTable, tok)
	}

	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %v, got %v", ErrMalformedTable, want, tok)
	}

	return nil
}

// WriteJSON writes the table in the on-disk format read by ReadTable: an
// object keyed by ST-as-string, with aggregate groups nested one level deeper.
func (t *FrequencyTable) WriteJSON(w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	writeKey := func(k string) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, _ := json.Marshal(k)
		buf.Write(kb)
		buf.WriteByte(':')
	}

	for _, name := range t.groupKeys {
		writeKey(name)
		buf.WriteByte('{')
		g := t.groups[name]
		for i, key := range g.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, _ := json.Marshal(key)
			buf.Write(kb)
			buf.WriteByte(':')
			writeCounts(&buf, g.entries[key])
		}
		buf.WriteByte('}')
	}

	for _, key := range t.keys {
		writeKey(key)
		writeCounts(&buf, t.entries[key])
	}

	buf.WriteByte('}')

	_, err := w.Write(buf.Bytes())
	return err
}

func writeCounts(buf *bytes.Buffer, counts []SerovarCount) {
	buf.WriteByte('{')
	for i, c := range counts {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, _ := json.Marshal(c.Serovar)
		buf.Write(kb)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(c.Count))
	}
	buf.WriteByte('}')
}
