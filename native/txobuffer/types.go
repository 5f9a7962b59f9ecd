// Package txobuffer implements the TXO buffer: a writer-owned account holding
// the little-endian u32 TXO indices of one Dogecoin block, written in chunks
// under a batch id and latched once finalized.
package txobuffer

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/pod"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/crypto"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/common"
)

const (
	// HeaderSize is the fixed header length.
	HeaderSize = 48
	// MaxChunkSize bounds the payload of one Write.
	MaxChunkSize = 900
	// MaxDataSize bounds the body so header, body and coverage fit one account.
	MaxDataSize = (host.MaxAccountDataLength - HeaderSize) * 8 / 9
)

var bufferSeed = []byte("txo_buffer")

// EmptyDigest is the digest of a buffer with an empty body.
var EmptyDigest = crypto.Sha256()

// Header is the fixed buffer header.
type Header struct {
	AuthorizedWriter solana.PublicKey
	InitStatus       uint8
	FinalizedStatus  uint8
	Padding          [2]uint8
	DogeBlockHeight  uint32
	BatchID          uint32
	DataSize         uint32
}

// AccountLen is the account length needed for a body of size bytes.
func AccountLen(size int) int {
	return HeaderSize + size + common.CoverageSize(size)
}

// Address returns the buffer account of writer.
func Address(program, writer solana.PublicKey) (solana.PublicKey, uint8) {
	return common.Canonical(program, bufferSeed, writer[:])
}

// EncodeIndices packs TXO indices as the buffer body.
func EncodeIndices(indices []uint32) []byte {
	out := make([]byte, 0, len(indices)*4)
	for _, idx := range indices {
		out = binary.LittleEndian.AppendUint32(out, idx)
	}
	return out
}

// DigestOf is the canonical digest of a body.
func DigestOf(body []byte) types.H256 {
	return crypto.Sha256(body)
}

// View is a read-only decoded buffer.
type View struct {
	Key    solana.PublicKey
	Header Header
	data   []byte
}

// Read decodes the buffer held by info, which must be owned by program.
func Read(program solana.PublicKey, info *host.AccountInfo) (*View, error) {
	if !info.IsOwnedBy(program) {
		return nil, ErrNotInitialized
	}
	return Decode(info.Key, info.Data())
}

// Decode decodes raw buffer account data.
func Decode(key solana.PublicKey, data []byte) (*View, error) {
	var hdr Header
	if err := pod.Decode(data, &hdr); err != nil {
		return nil, ErrNotInitialized
	}
	if len(data) < AccountLen(int(hdr.DataSize)) {
		return nil, fmt.Errorf("%w: %d bytes for a %d byte body", ErrBufferTooSmall, len(data), hdr.DataSize)
	}
	return &View{Key: key, Header: hdr, data: data}, nil
}

// Finalized reports whether the current batch is latched.
func (v *View) Finalized() bool { return v.Header.FinalizedStatus == 1 }

// Body returns the declared body bytes.
func (v *View) Body() []byte {
	return v.data[HeaderSize : HeaderSize+int(v.Header.DataSize)]
}

// Digest is SHA256 over the body.
func (v *View) Digest() types.H256 { return DigestOf(v.Body()) }

// Indices decodes the body as u32 indices.
func (v *View) Indices() []uint32 {
	body := v.Body()
	out := make([]uint32, len(body)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(body[i*4:])
	}
	return out
}
