// Package mintbuffer implements the pending-mint buffer: a writer-owned
// scratch account holding the mints proposed for a block, grouped for bounded
// consumption and lockable by the bridge while it drains them.
package mintbuffer

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/pod"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/crypto"
)

const (
	// HeaderSize is the fixed header length.
	HeaderSize = 72
	// GroupSize is the number of mints per group.
	GroupSize = 24
	// GroupHashSize is the size of one group hash slot.
	GroupHashSize = 32
	// MintRecordSize is the size of one mint record.
	MintRecordSize = 40
	// MaxPendingMints is the largest mint count a buffer can describe.
	MaxPendingMints = 1<<16 - 1
)

// Buffer modes.
const (
	ModeIdle uint8 = iota
	ModeWriting
	ModeReady
)

var bufferSeed = []byte("mint_buffer")

// EmptyDigest is the digest of a buffer with no mints.
var EmptyDigest = crypto.Sha256([]byte{0, 0})

// Header is the fixed buffer header.
type Header struct {
	AuthorizedLocker        solana.PublicKey
	AuthorizedWriter        solana.PublicKey
	IsLocked                uint8
	Mode                    uint8
	PendingMintGroupsCount  uint16
	PendingMintsInitialized uint16
	PendingMintsCount       uint16
}

// MintRecord is one pending mint. Recipient is the destination token account.
type MintRecord struct {
	Recipient types.H256
	Amount    uint64
}

// GroupCount is the number of groups needed for count mints.
func GroupCount(count int) int {
	return (count + GroupSize - 1) / GroupSize
}

// BufferLen is the account length needed for count mints.
func BufferLen(count int) int {
	return HeaderSize + GroupCount(count)*GroupHashSize + count*MintRecordSize
}

// GroupBounds returns the first mint index and the number of mints in group.
func GroupBounds(count, group int) (int, int) {
	start := group * GroupSize
	n := count - start
	if n > GroupSize {
		n = GroupSize
	}
	if n < 0 {
		n = 0
	}
	return start, n
}

// EncodeMints concatenates mint records.
func EncodeMints(mints []MintRecord) []byte {
	out := make([]byte, 0, len(mints)*MintRecordSize)
	for i := range mints {
		out = append(out, pod.MustEncode(&mints[i])...)
	}
	return out
}

// GroupHash hashes the encoded records of one group.
func GroupHash(mints []MintRecord) types.H256 {
	return crypto.Sha256(EncodeMints(mints))
}

// Digest computes the canonical digest of a complete mint list.
func Digest(mints []MintRecord) types.H256 {
	groups := GroupCount(len(mints))
	parts := make([][]byte, 0, groups+1)
	var count [2]byte
	binary.LittleEndian.PutUint16(count[:], uint16(len(mints)))
	parts = append(parts, count[:])
	for g := 0; g < groups; g++ {
		start, n := GroupBounds(len(mints), g)
		h := GroupHash(mints[start : start+n])
		parts = append(parts, h.Bytes())
	}
	return crypto.Sha256(parts...)
}

// Address returns the buffer account of writer.
func Address(program, writer solana.PublicKey) (solana.PublicKey, uint8) {
	addr, bump, err := solana.FindProgramAddress([][]byte{bufferSeed, writer[:]}, program)
	if err != nil {
		panic(err)
	}
	return addr, bump
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
	if len(data) < HeaderSize {
		return nil, ErrNotInitialized
	}
	var hdr Header
	if err := pod.Decode(data, &hdr); err != nil {
		return nil, ErrNotInitialized
	}
	if len(data) < BufferLen(int(hdr.PendingMintsCount)) {
		return nil, ErrBufferTooSmall
	}
	return &View{Key: key, Header: hdr, data: data}, nil
}

// Count is the number of pending mints.
func (v *View) Count() int { return int(v.Header.PendingMintsCount) }

// Groups is the number of groups.
func (v *View) Groups() int { return int(v.Header.PendingMintGroupsCount) }

// Complete reports whether every group has been written.
func (v *View) Complete() bool {
	return v.Header.PendingMintsInitialized == v.Header.PendingMintGroupsCount
}

// GroupHash returns the stored hash of group.
func (v *View) GroupHash(group int) types.H256 {
	off := HeaderSize + group*GroupHashSize
	return types.BytesToH256(v.data[off : off+GroupHashSize])
}

// Digest computes SHA256(count_le2 ‖ group hashes) over the stored hashes.
func (v *View) Digest() types.H256 {
	var count [2]byte
	binary.LittleEndian.PutUint16(count[:], v.Header.PendingMintsCount)
	hashes := v.data[HeaderSize : HeaderSize+v.Groups()*GroupHashSize]
	return crypto.Sha256(count[:], hashes)
}

// Group decodes the mint records of group.
func (v *View) Group(group int) ([]MintRecord, error) {
	if group < 0 || group >= v.Groups() {
		return nil, ErrGroupOutOfRange
	}
	start, n := GroupBounds(v.Count(), group)
	base := HeaderSize + v.Groups()*GroupHashSize + start*MintRecordSize
	out := make([]MintRecord, n)
	for i := range out {
		off := base + i*MintRecordSize
		if err := pod.Decode(v.data[off:off+MintRecordSize], &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
