package config

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/common"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/observability/otel"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/zk"
)

const (
	// VerifierMock accepts proofs signed by the configured mock prover keys.
	VerifierMock = "mock"
	// VerifierGroth16 checks BN254 Groth16 proofs against Groth16KeyFile.
	VerifierGroth16 = "groth16"
)

// Verifier selects the proof verifier and the program keys each transition
// is proven against. Keys are hex; an empty key is the zero key.
type Verifier struct {
	Mode           string `toml:"Mode"`
	Groth16KeyFile string `toml:"Groth16KeyFile"`
	BlockUpdateKey string `toml:"BlockUpdateKey"`
	ReorgBlocksKey string `toml:"ReorgBlocksKey"`
	WithdrawalKey  string `toml:"WithdrawalKey"`
	ManualClaimKey string `toml:"ManualClaimKey"`
}

// ProgramKeys parses the configured program keys.
func (v Verifier) ProgramKeys() (zk.ProgramKeys, error) {
	var keys zk.ProgramKeys
	for _, field := range []struct {
		name string
		raw  string
		dst  *zk.ProgramKey
	}{
		{"BlockUpdateKey", v.BlockUpdateKey, &keys.BlockUpdate},
		{"ReorgBlocksKey", v.ReorgBlocksKey, &keys.ReorgBlocks},
		{"WithdrawalKey", v.WithdrawalKey, &keys.Withdrawal},
		{"ManualClaimKey", v.ManualClaimKey, &keys.ManualClaim},
	} {
		key, err := zk.ParseProgramKey(field.raw)
		if err != nil {
			return keys, fmt.Errorf("verifier.%s: %w", field.name, err)
		}
		*field.dst = key
	}
	return keys, nil
}

// Build returns the verifier selected by Mode.
func (v Verifier) Build() (zk.Verifier, error) {
	switch v.Mode {
	case VerifierMock:
		return zk.MockVerifier{}, nil
	case VerifierGroth16:
		key, err := zk.LoadVerifyingKey(v.Groth16KeyFile)
		if err != nil {
			return nil, fmt.Errorf("verifier.Groth16KeyFile: %w", err)
		}
		return zk.NewGroth16Verifier(key), nil
	default:
		return nil, fmt.Errorf("verifier.Mode %q is not %q or %q", v.Mode, VerifierMock, VerifierGroth16)
	}
}

// Programs overrides the deployed program ids (base58). Empty entries keep
// the derived defaults.
type Programs struct {
	Bridge        string `toml:"Bridge"`
	MintBuffer    string `toml:"MintBuffer"`
	TxoBuffer     string `toml:"TxoBuffer"`
	GenericBuffer string `toml:"GenericBuffer"`
	ManualClaim   string `toml:"ManualClaim"`
	ManagerSet    string `toml:"ManagerSet"`
	Wormhole      string `toml:"Wormhole"`
}

// IDs resolves the configured program ids over the defaults.
func (p Programs) IDs() (common.ProgramIDs, error) {
	ids := common.DefaultProgramIDs()
	for _, field := range []struct {
		name string
		raw  string
		dst  *solana.PublicKey
	}{
		{"Bridge", p.Bridge, &ids.Bridge},
		{"MintBuffer", p.MintBuffer, &ids.MintBuffer},
		{"TxoBuffer", p.TxoBuffer, &ids.TxoBuffer},
		{"GenericBuffer", p.GenericBuffer, &ids.GenericBuffer},
		{"ManualClaim", p.ManualClaim, &ids.ManualClaim},
		{"ManagerSet", p.ManagerSet, &ids.ManagerSet},
		{"Wormhole", p.Wormhole, &ids.Wormhole},
	} {
		raw := strings.TrimSpace(field.raw)
		if raw == "" {
			continue
		}
		key, err := solana.PublicKeyFromBase58(raw)
		if err != nil {
			return ids, fmt.Errorf("programs.%s: %w", field.name, err)
		}
		*field.dst = key
	}
	return ids, nil
}

// Telemetry configures OTLP trace export.
type Telemetry struct {
	Traces      bool    `toml:"Traces"`
	Endpoint    string  `toml:"Endpoint"`
	Insecure    bool    `toml:"Insecure"`
	Headers     string  `toml:"Headers"`
	SampleRatio float64 `toml:"SampleRatio"`
}

// OTel converts the section for otel.Init.
func (t Telemetry) OTel(service, env string) otel.Config {
	return otel.Config{
		ServiceName: service,
		Environment: env,
		Endpoint:    t.Endpoint,
		Insecure:    t.Insecure,
		Headers:     otel.ParseHeaders(t.Headers),
		Traces:      t.Traces,
		SampleRatio: t.SampleRatio,
	}
}
