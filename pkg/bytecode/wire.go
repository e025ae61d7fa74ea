package bytecode

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// WireVersion is the current serialized chunk format version.
// Increment when making incompatible changes to the format.
const WireVersion uint16 = 1

// cborEncMode uses canonical options for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// chunkWire is the serialized form of a Chunk.
type chunkWire struct {
	Version uint16 `cbor:"1,keyasint"`
	Code    []byte `cbor:"2,keyasint"`
	Lines   []int  `cbor:"3,keyasint"`
}

// MarshalChunk serializes a Chunk to CBOR bytes.
func MarshalChunk(c *Chunk) ([]byte, error) {
	return cborEncMode.Marshal(&chunkWire{
		Version: WireVersion,
		Code:    c.code,
		Lines:   c.lines,
	})
}

// UnmarshalChunk deserializes a Chunk from CBOR bytes.
func UnmarshalChunk(data []byte) (*Chunk, error) {
	var w chunkWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal chunk: %w", err)
	}
	if w.Version > WireVersion {
		return nil, fmt.Errorf("bytecode: chunk version %d is newer than supported version %d", w.Version, WireVersion)
	}
	if len(w.Lines) != len(w.Code) {
		return nil, fmt.Errorf("bytecode: line table length %d does not match code length %d", len(w.Lines), len(w.Code))
	}
	return &Chunk{code: w.Code, lines: w.Lines}, nil
}
