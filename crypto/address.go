package crypto

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
)

// NetworkType identifies the Dogecoin network the custodian wallet lives on.
type NetworkType uint32

const (
	NetworkMainnet NetworkType = 0
	NetworkTestnet NetworkType = 1
	NetworkRegtest NetworkType = 2
)

// AddressType distinguishes pay-to-pubkey-hash from pay-to-script-hash outputs.
type AddressType uint32

const (
	AddressP2PKH AddressType = 0
	AddressP2SH  AddressType = 1
)

var (
	ErrUnknownNetwork     = errors.New("crypto: unknown dogecoin network")
	ErrUnknownAddressType = errors.New("crypto: unknown address type")
	ErrUnknownVersion     = errors.New("crypto: unknown address version byte")
)

type versionPair struct {
	pubKeyHash byte
	scriptHash byte
}

var networkVersions = map[NetworkType]versionPair{
	NetworkMainnet: {pubKeyHash: 0x1e, scriptHash: 0x16},
	NetworkTestnet: {pubKeyHash: 0x71, scriptHash: 0xc4},
	NetworkRegtest: {pubKeyHash: 0x6f, scriptHash: 0xc4},
}

// Valid reports whether t is P2PKH or P2SH.
func (t AddressType) Valid() bool { return t == AddressP2PKH || t == AddressP2SH }

func (t AddressType) String() string {
	switch t {
	case AddressP2PKH:
		return "p2pkh"
	case AddressP2SH:
		return "p2sh"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(t))
	}
}

// Valid reports whether the network is known.
func (n NetworkType) Valid() bool {
	_, ok := networkVersions[n]
	return ok
}

// EncodeAddress renders a base58check Dogecoin address.
func EncodeAddress(hash types.H160, typ AddressType, network NetworkType) (string, error) {
	versions, ok := networkVersions[network]
	if !ok {
		return "", ErrUnknownNetwork
	}
	switch typ {
	case AddressP2PKH:
		return base58.CheckEncode(hash[:], versions.pubKeyHash), nil
	case AddressP2SH:
		return base58.CheckEncode(hash[:], versions.scriptHash), nil
	default:
		return "", ErrUnknownAddressType
	}
}

// DecodeAddress parses a base58check address for the given network.
func DecodeAddress(addr string, network NetworkType) (types.H160, AddressType, error) {
	versions, ok := networkVersions[network]
	if !ok {
		return types.H160{}, 0, ErrUnknownNetwork
	}
	payload, version, err := base58.CheckDecode(addr)
	if err != nil {
		return types.H160{}, 0, fmt.Errorf("crypto: invalid address: %w", err)
	}
	if len(payload) != 20 {
		return types.H160{}, 0, fmt.Errorf("crypto: address payload is %d bytes", len(payload))
	}
	hash := types.BytesToH160(payload)
	switch version {
	case versions.pubKeyHash:
		return hash, AddressP2PKH, nil
	case versions.scriptHash:
		return hash, AddressP2SH, nil
	default:
		return types.H160{}, 0, ErrUnknownVersion
	}
}
