package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
)

func TestSha256KnownVector(t *testing.T) {
	got := Sha256([]byte("abc"))
	require.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", hex.EncodeToString(got[:]))
	require.Equal(t, Sha256([]byte("abc")), Sha256([]byte("a"), []byte("bc")))
}

func TestRipemd160KnownVector(t *testing.T) {
	got := Ripemd160([]byte("abc"))
	require.Equal(t, "8eb208f7e05d987a9b044a8e98c6b087f15a0bfc", hex.EncodeToString(got[:]))
}

func TestHash160ComposesShaAndRipemd(t *testing.T) {
	data := []byte("custodian")
	inner := Sha256(data)
	require.Equal(t, Ripemd160(inner[:]), Hash160(data))
}

func TestDoubleSha256(t *testing.T) {
	data := []byte("doge")
	once := Sha256(data)
	require.Equal(t, Sha256(once[:]), DoubleSha256(data))
}

func TestAddressRoundTrip(t *testing.T) {
	hash := types.BytesToH160([]byte("0123456789abcdefghij"))
	for _, network := range []NetworkType{NetworkMainnet, NetworkTestnet, NetworkRegtest} {
		for _, typ := range []AddressType{AddressP2PKH, AddressP2SH} {
			addr, err := EncodeAddress(hash, typ, network)
			require.NoError(t, err)
			gotHash, gotType, err := DecodeAddress(addr, network)
			require.NoError(t, err)
			require.Equal(t, hash, gotHash)
			require.Equal(t, typ, gotType)
		}
	}
	mainnet, err := EncodeAddress(hash, AddressP2PKH, NetworkMainnet)
	require.NoError(t, err)
	require.Equal(t, byte('D'), mainnet[0])
}

func TestSignAndRecoverCompressed(t *testing.T) {
	key, err := GeneratePrivateKey()
	require.NoError(t, err)
	digest := Sha256([]byte("public inputs"))
	sig, err := key.Sign(digest)
	require.NoError(t, err)

	recovered, err := RecoverCompressed(digest, sig)
	require.NoError(t, err)
	require.Equal(t, key.PubKey().Compressed(), recovered)

	parsed, err := ParseCompressedPubKey(recovered[:])
	require.NoError(t, err)
	require.Equal(t, key.PubKey().Hash160(), parsed.Hash160())

	sig[64] = 9
	_, err = RecoverCompressed(digest, sig)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseCompressedPubKeyRejectsGarbage(t *testing.T) {
	_, err := ParseCompressedPubKey(make([]byte, 33))
	require.Error(t, err)
	_, err = ParseCompressedPubKey(make([]byte, 32))
	require.Error(t, err)
}
