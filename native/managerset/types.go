// Package managerset implements the delegated manager set registry: per-chain
// records of the seven custodian keys, indexed by rotation number.
package managerset

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/pod"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/crypto"
)

const (
	// Threshold is the number of custodian signatures required.
	Threshold = 5
	// Keys is the number of custodian keys in a set.
	Keys = 7
	// SetDataSize is the encoded manager set: three prefix bytes and seven keys.
	SetDataSize = 3 + Keys*crypto.CompressedPubKeySize
	// DiscriminatorSize prefixes every record.
	DiscriminatorSize = 8
	// IndexAccountSize is the discriminator plus chain id and current index.
	IndexAccountSize = DiscriminatorSize + 2 + 4
	// SetAccountSize is the discriminator plus chain id, index and the
	// length-prefixed set bytes.
	SetAccountSize = DiscriminatorSize + 2 + 4 + 4 + SetDataSize

	setVersion = 0x01
)

var (
	indexSeed = []byte("manager_set_index")
	setSeed   = []byte("manager_set")

	// IndexDiscriminator tags ManagerSetIndex accounts.
	IndexDiscriminator = discriminator("ManagerSetIndex")
	// SetDiscriminator tags ManagerSet accounts.
	SetDiscriminator = discriminator("ManagerSet")
)

func discriminator(name string) [DiscriminatorSize]byte {
	var out [DiscriminatorSize]byte
	sum := crypto.Sha256([]byte("account:" + name))
	copy(out[:], sum[:DiscriminatorSize])
	return out
}

// ManagerSetIndex tracks the latest installed set of a chain.
type ManagerSetIndex struct {
	ManagerChainID uint16
	CurrentIndex   uint32
}

// ManagerSet is one installed custodian key set.
type ManagerSet struct {
	ManagerChainID uint16
	Index          uint32
	ManagerSet     []byte
}

func chainSeed(chainID uint16) []byte {
	return binary.LittleEndian.AppendUint16(nil, chainID)
}

func indexSeedBytes(index uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, index)
}

// IndexAddress is the ManagerSetIndex account of chainID.
func IndexAddress(program solana.PublicKey, chainID uint16) (solana.PublicKey, uint8) {
	addr, bump, err := solana.FindProgramAddress([][]byte{indexSeed, chainSeed(chainID)}, program)
	if err != nil {
		panic(err)
	}
	return addr, bump
}

// SetAddress is the ManagerSet account of (chainID, index).
func SetAddress(program solana.PublicKey, chainID uint16, index uint32) (solana.PublicKey, uint8) {
	addr, bump, err := solana.FindProgramAddress([][]byte{setSeed, chainSeed(chainID), indexSeedBytes(index)}, program)
	if err != nil {
		panic(err)
	}
	return addr, bump
}

// EncodeSetData builds the set bytes from seven compressed keys.
func EncodeSetData(keys []crypto.CompressedPubKey) ([]byte, error) {
	if len(keys) != Keys {
		return nil, fmt.Errorf("%w: %d keys", ErrInvalidSetData, len(keys))
	}
	out := make([]byte, 0, SetDataSize)
	out = append(out, setVersion, Threshold, Keys)
	for _, k := range keys {
		out = append(out, k[:]...)
	}
	return out, nil
}

// ParseSetData validates set bytes and returns the keys.
func ParseSetData(data []byte) ([]crypto.CompressedPubKey, error) {
	if len(data) != SetDataSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSetData, len(data))
	}
	if !bytes.Equal(data[:3], []byte{setVersion, Threshold, Keys}) {
		return nil, fmt.Errorf("%w: prefix %x", ErrInvalidSetData, data[:3])
	}
	keys := make([]crypto.CompressedPubKey, Keys)
	for i := range keys {
		raw := data[3+i*crypto.CompressedPubKeySize : 3+(i+1)*crypto.CompressedPubKeySize]
		if _, err := crypto.ParseCompressedPubKey(raw); err != nil {
			return nil, fmt.Errorf("%w: key %d: %v", ErrInvalidSetData, i, err)
		}
		copy(keys[i][:], raw)
	}
	return keys, nil
}

// RedeemScript is the 5-of-7 multisig script OP_5 <pk1>..<pk7> OP_7
// OP_CHECKMULTISIG.
func RedeemScript(keys []crypto.CompressedPubKey) []byte {
	const (
		op5             = 0x55
		op7             = 0x57
		opCheckMultisig = 0xae
	)
	out := make([]byte, 0, 3+len(keys)*(1+crypto.CompressedPubKeySize))
	out = append(out, op5)
	for _, k := range keys {
		out = append(out, crypto.CompressedPubKeySize)
		out = append(out, k[:]...)
	}
	return append(out, op7, opCheckMultisig)
}

// CustodianHash is the P2SH script hash of the set's redeem script.
func CustodianHash(data []byte) (types.H160, error) {
	keys, err := ParseSetData(data)
	if err != nil {
		return types.H160{}, err
	}
	return crypto.Hash160(RedeemScript(keys)), nil
}

func encodeRecord(disc [DiscriminatorSize]byte, v interface{}) ([]byte, error) {
	body, err := pod.EncodeBorsh(v)
	if err != nil {
		return nil, err
	}
	return append(disc[:], body...), nil
}

func decodeRecord(disc [DiscriminatorSize]byte, data []byte, v interface{}) error {
	if len(data) < DiscriminatorSize || !bytes.Equal(data[:DiscriminatorSize], disc[:]) {
		return ErrInvalidAccount
	}
	if err := pod.DecodeBorsh(data[DiscriminatorSize:], v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}
	return nil
}

// DecodeIndex decodes a ManagerSetIndex account.
func DecodeIndex(data []byte) (*ManagerSetIndex, error) {
	var out ManagerSetIndex
	if err := decodeRecord(IndexDiscriminator, data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DecodeSet decodes a ManagerSet account.
func DecodeSet(data []byte) (*ManagerSet, error) {
	var out ManagerSet
	if err := decodeRecord(SetDiscriminator, data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReadSet decodes the ManagerSet held by info, which must be owned by program.
func ReadSet(program solana.PublicKey, info *host.AccountInfo) (*ManagerSet, error) {
	if !info.IsOwnedBy(program) {
		return nil, ErrInvalidAccount
	}
	return DecodeSet(info.Data())
}

// ReadIndex decodes the ManagerSetIndex held by info, which must be owned by
// program.
func ReadIndex(program solana.PublicKey, info *host.AccountInfo) (*ManagerSetIndex, error) {
	if !info.IsOwnedBy(program) {
		return nil, ErrInvalidAccount
	}
	return DecodeIndex(info.Data())
}
