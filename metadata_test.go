package vault

import (
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/vault/errors"
)

func TestMetadataValidate(t *testing.T) {
	var nilMeta *Metadata
	if err := nilMeta.Validate(); !errors.ErrEmpty.Is(err) {
		t.Fatalf("want empty error, got %v", err)
	}
	if err := (&Metadata{}).Validate(); !errors.ErrState.Is(err) {
		t.Fatalf("want state error, got %v", err)
	}
	if err := (&Metadata{Schema: 1}).Validate(); err != nil {
		t.Fatalf("valid metadata: %s", err)
	}
}

func TestMetadataSerialization(t *testing.T) {
	m := &Metadata{Schema: 7}
	raw, err := proto.Marshal(m)
	if err != nil {
		t.Fatalf("cannot marshal: %s", err)
	}
	var got Metadata
	if err := proto.Unmarshal(raw, &got); err != nil {
		t.Fatalf("cannot unmarshal: %s", err)
	}
	if got.Schema != 7 {
		t.Fatalf("want schema 7, got %d", got.Schema)
	}
	cpy := m.Copy()
	cpy.Schema = 2
	if m.Schema != 7 {
		t.Fatal("copy must be independent")
	}
}
