package idmap

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"declid/internal/declid"
)

// EncodeMsgpack writes the map as an array of [encoding, value] pairs in
// iteration order.
func (m *Map[K, V]) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(m.Len()); err != nil {
		return err
	}
	for _, e := range m.view() {
		if err := enc.EncodeArrayLen(2); err != nil {
			return err
		}
		if err := enc.EncodeString(e.Id.Encode()); err != nil {
			return err
		}
		if err := enc.Encode(e.Value); err != nil {
			return fmt.Errorf("idmap: encode value of %s: %w", e.Id.Describe(), err)
		}
	}
	return nil
}

// DecodeMsgpack fills a zero Map. Decoding into a map that was already
// built, including an empty one from New, would change it in place and
// fails with *UnsupportedMutationError.
func (m *Map[K, V]) DecodeMsgpack(dec *msgpack.Decoder) error {
	if m.slots != nil {
		return &UnsupportedMutationError{Op: "DecodeMsgpack"}
	}
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	built := New[K, V]()
	for i := 0; i < n; i++ {
		pair, err := dec.DecodeArrayLen()
		if err != nil {
			return err
		}
		if pair != 2 {
			return fmt.Errorf("idmap: entry %d: expected [id, value] pair, got %d elements", i, pair)
		}
		encoded, err := dec.DecodeString()
		if err != nil {
			return err
		}
		parsed, err := declid.Parse(encoded)
		if err != nil {
			return fmt.Errorf("idmap: entry %d: %w", i, err)
		}
		id, ok := parsed.(K)
		if !ok {
			return fmt.Errorf("idmap: entry %d: %s has unexpected kind %s", i, parsed.Describe(), parsed.Kind())
		}
		var v V
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("idmap: entry %d: decode value of %s: %w", i, id.Describe(), err)
		}
		built.set(id, v)
	}
	*m = *built
	return nil
}
