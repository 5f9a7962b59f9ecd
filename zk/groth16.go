package zk

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
)

const (
	g1Size = 64
	g2Size = 128
	// groth16PublicInputs is the (program key, public-input digest) pair.
	groth16PublicInputs = 2
)

var (
	ErrMalformedPoint = errors.New("zk: malformed curve point")
	ErrKeyShape       = errors.New("zk: verifying key must carry 3 IC points")
)

// VerifyingKey is a Groth16 verifying key over BN254 for a circuit with two
// public inputs.
type VerifyingKey struct {
	Alpha bn254.G1Affine
	Beta  bn254.G2Affine
	Gamma bn254.G2Affine
	Delta bn254.G2Affine
	IC    [groth16PublicInputs + 1]bn254.G1Affine
}

// Groth16Verifier verifies compact proofs laid out as A (G1) || B (G2) || C (G1),
// uncompressed big-endian, with G2 coordinates ordered (x.a1, x.a0, y.a1, y.a0).
type Groth16Verifier struct {
	Key *VerifyingKey
}

// NewGroth16Verifier binds a verifier to a verifying key.
func NewGroth16Verifier(key *VerifyingKey) *Groth16Verifier {
	return &Groth16Verifier{Key: key}
}

// VerifyCompactZKP implements Verifier.
func (v *Groth16Verifier) VerifyCompactZKP(proof *CompactProof, key ProgramKey, publicInputs types.H256) bool {
	if v == nil || v.Key == nil || proof == nil {
		return false
	}
	ok, err := v.Verify(proof, key, publicInputs)
	return err == nil && ok
}

// Verify runs the pairing check and reports decoding failures separately.
func (v *Groth16Verifier) Verify(proof *CompactProof, key ProgramKey, publicInputs types.H256) (bool, error) {
	var a, c bn254.G1Affine
	var b bn254.G2Affine
	if err := decodeG1(proof[0:g1Size], &a); err != nil {
		return false, err
	}
	if err := decodeG2(proof[g1Size:g1Size+g2Size], &b); err != nil {
		return false, err
	}
	if err := decodeG1(proof[g1Size+g2Size:], &c); err != nil {
		return false, err
	}

	programInput := new(big.Int).SetBytes(key[:])
	if programInput.Cmp(fr.Modulus()) >= 0 {
		return false, errors.New("zk: program key is not a canonical field element")
	}
	inputs := [groth16PublicInputs]*big.Int{programInput, HashToField(publicInputs)}

	acc := v.Key.IC[0]
	for i, input := range inputs {
		var term bn254.G1Affine
		term.ScalarMultiplication(&v.Key.IC[i+1], input)
		acc.Add(&acc, &term)
	}

	var negAlpha, negAcc, negC bn254.G1Affine
	negAlpha.Neg(&v.Key.Alpha)
	negAcc.Neg(&acc)
	negC.Neg(&c)

	return bn254.PairingCheck(
		[]bn254.G1Affine{a, negAlpha, negAcc, negC},
		[]bn254.G2Affine{b, v.Key.Beta, v.Key.Gamma, v.Key.Delta},
	)
}

// HashToField clears the top three bits of the digest so that it is always a
// canonical BN254 scalar.
func HashToField(digest types.H256) *big.Int {
	masked := digest
	masked[0] &= 0x1f
	return new(big.Int).SetBytes(masked[:])
}

func decodeFp(b []byte, out *fp.Element) error {
	if new(big.Int).SetBytes(b).Cmp(fp.Modulus()) >= 0 {
		return ErrMalformedPoint
	}
	out.SetBytes(b)
	return nil
}

func decodeG1(b []byte, p *bn254.G1Affine) error {
	if len(b) != g1Size {
		return ErrMalformedPoint
	}
	if err := decodeFp(b[0:32], &p.X); err != nil {
		return err
	}
	if err := decodeFp(b[32:64], &p.Y); err != nil {
		return err
	}
	if !p.IsOnCurve() || !p.IsInSubGroup() {
		return ErrMalformedPoint
	}
	return nil
}

func decodeG2(b []byte, p *bn254.G2Affine) error {
	if len(b) != g2Size {
		return ErrMalformedPoint
	}
	for i, dst := range []*fp.Element{&p.X.A1, &p.X.A0, &p.Y.A1, &p.Y.A0} {
		if err := decodeFp(b[i*32:(i+1)*32], dst); err != nil {
			return err
		}
	}
	if !p.IsOnCurve() || !p.IsInSubGroup() {
		return ErrMalformedPoint
	}
	return nil
}

// EncodeG1 serializes a G1 point in the compact proof layout.
func EncodeG1(p *bn254.G1Affine) []byte {
	out := make([]byte, 0, g1Size)
	x := p.X.Bytes()
	y := p.Y.Bytes()
	out = append(out, x[:]...)
	return append(out, y[:]...)
}

// EncodeG2 serializes a G2 point in the compact proof layout.
func EncodeG2(p *bn254.G2Affine) []byte {
	out := make([]byte, 0, g2Size)
	for _, e := range []*fp.Element{&p.X.A1, &p.X.A0, &p.Y.A1, &p.Y.A0} {
		b := e.Bytes()
		out = append(out, b[:]...)
	}
	return out
}

// EncodeProof assembles a compact proof from its three points.
func EncodeProof(a *bn254.G1Affine, b *bn254.G2Affine, c *bn254.G1Affine) CompactProof {
	var proof CompactProof
	copy(proof[0:g1Size], EncodeG1(a))
	copy(proof[g1Size:g1Size+g2Size], EncodeG2(b))
	copy(proof[g1Size+g2Size:], EncodeG1(c))
	return proof
}

type verifyingKeyFile struct {
	Alpha string   `json:"alpha"`
	Beta  string   `json:"beta"`
	Gamma string   `json:"gamma"`
	Delta string   `json:"delta"`
	IC    []string `json:"ic"`
}

// LoadVerifyingKey reads a JSON verifying key whose points are hex strings in
// the compact proof layout.
func LoadVerifyingKey(path string) (*VerifyingKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseVerifyingKey(raw)
}

// ParseVerifyingKey decodes the JSON verifying key format.
func ParseVerifyingKey(raw []byte) (*VerifyingKey, error) {
	var file verifyingKeyFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("zk: decode verifying key: %w", err)
	}
	if len(file.IC) != groth16PublicInputs+1 {
		return nil, ErrKeyShape
	}
	key := &VerifyingKey{}
	if err := decodeHexG1(file.Alpha, &key.Alpha); err != nil {
		return nil, fmt.Errorf("zk: alpha: %w", err)
	}
	for name, pair := range map[string]struct {
		src string
		dst *bn254.G2Affine
	}{
		"beta":  {file.Beta, &key.Beta},
		"gamma": {file.Gamma, &key.Gamma},
		"delta": {file.Delta, &key.Delta},
	} {
		raw, err := decodeHexString(pair.src)
		if err != nil {
			return nil, fmt.Errorf("zk: %s: %w", name, err)
		}
		if err := decodeG2(raw, pair.dst); err != nil {
			return nil, fmt.Errorf("zk: %s: %w", name, err)
		}
	}
	for i, ic := range file.IC {
		if err := decodeHexG1(ic, &key.IC[i]); err != nil {
			return nil, fmt.Errorf("zk: ic[%d]: %w", i, err)
		}
	}
	return key, nil
}

// MarshalJSON renders the key in the format ParseVerifyingKey accepts.
func (k *VerifyingKey) MarshalJSON() ([]byte, error) {
	file := verifyingKeyFile{
		Alpha: hex.EncodeToString(EncodeG1(&k.Alpha)),
		Beta:  hex.EncodeToString(EncodeG2(&k.Beta)),
		Gamma: hex.EncodeToString(EncodeG2(&k.Gamma)),
		Delta: hex.EncodeToString(EncodeG2(&k.Delta)),
	}
	for i := range k.IC {
		file.IC = append(file.IC, hex.EncodeToString(EncodeG1(&k.IC[i])))
	}
	return json.Marshal(file)
}

func decodeHexG1(s string, p *bn254.G1Affine) error {
	raw, err := decodeHexString(s)
	if err != nil {
		return err
	}
	return decodeG1(raw, p)
}

func decodeHexString(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
}
