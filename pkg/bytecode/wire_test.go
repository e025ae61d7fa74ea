package bytecode

import (
	"bytes"
	"testing"
)

func TestChunkWireRoundTrip(t *testing.T) {
	c := NewChunk()
	c.WritePush(3.14, 7)
	c.WriteOp(OpSin, 7)
	c.WriteOp(OpHalt, 8)

	data, err := MarshalChunk(c)
	if err != nil {
		t.Fatalf("MarshalChunk failed: %v", err)
	}

	restored, err := UnmarshalChunk(data)
	if err != nil {
		t.Fatalf("UnmarshalChunk failed: %v", err)
	}
	if !bytes.Equal(restored.Code(), c.Code()) {
		t.Errorf("code changed across the wire: %x vs %x", restored.Code(), c.Code())
	}
	if restored.Line(0) != 7 || restored.Line(10) != 8 {
		t.Error("line table changed across the wire")
	}
}

func TestChunkWireDeterministic(t *testing.T) {
	c := NewChunk()
	c.WritePush(1, 1)
	c.WriteOp(OpHalt, 1)

	a, _ := MarshalChunk(c)
	b, _ := MarshalChunk(c)
	if !bytes.Equal(a, b) {
		t.Error("canonical encoding is not deterministic")
	}
}

func TestChunkWireRejectsNewerVersion(t *testing.T) {
	data, err := cborEncMode.Marshal(&chunkWire{
		Version: WireVersion + 1,
		Code:    []byte{byte(OpHalt)},
		Lines:   []int{1},
	})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if _, err := UnmarshalChunk(data); err == nil {
		t.Error("UnmarshalChunk accepted a newer format version")
	}
}

func TestChunkWireRejectsMismatchedLineTable(t *testing.T) {
	data, err := cborEncMode.Marshal(&chunkWire{
		Version: WireVersion,
		Code:    []byte{byte(OpHalt)},
		Lines:   []int{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if _, err := UnmarshalChunk(data); err == nil {
		t.Error("UnmarshalChunk accepted a mismatched line table")
	}
}

func TestChunkWireRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalChunk([]byte{0x00, 0x01, 0x02}); err == nil {
		t.Error("UnmarshalChunk accepted garbage input")
	}
}
