package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/common"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/zk"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	_, err = os.Stat(path)
	require.NoError(t, err)
	again, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, again)
}

func TestLoadParsesSections(t *testing.T) {
	bridgeID := "BPFLoaderUpgradeab1e11111111111111111111111"
	path := writeConfig(t, `ListenAddress = "127.0.0.1:9000"
DataDir = "/var/lib/dogebridge"
Environment = "staging"
LogFile = "/var/log/dogebridge.log"

[verifier]
Mode = "Mock"
BlockUpdateKey = "0x0101010101010101010101010101010101010101010101010101010101010101"
WithdrawalKey = "0202020202020202020202020202020202020202020202020202020202020202"

[programs]
Bridge = "`+bridgeID+`"

[telemetry]
Traces = true
Endpoint = "otel:4318"
Headers = "x-token=abc, x-team=bridge"
SampleRatio = 0.5
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", cfg.ListenAddress)
	require.Equal(t, "staging", cfg.Environment)
	require.Equal(t, "/var/log/dogebridge.log", cfg.LogFile)
	require.Equal(t, VerifierMock, cfg.Verifier.Mode)

	keys, err := cfg.Verifier.ProgramKeys()
	require.NoError(t, err)
	require.Equal(t, byte(1), keys.BlockUpdate[31])
	require.Equal(t, byte(2), keys.Withdrawal[0])
	require.Equal(t, zk.ProgramKey{}, keys.ReorgBlocks)

	ids, err := cfg.Programs.IDs()
	require.NoError(t, err)
	require.Equal(t, bridgeID, ids.Bridge.String())
	require.Equal(t, common.DefaultProgramIDs().MintBuffer, ids.MintBuffer)

	verifier, err := cfg.Verifier.Build()
	require.NoError(t, err)
	require.IsType(t, zk.MockVerifier{}, verifier)

	otelCfg := cfg.Telemetry.OTel("dogebridged", cfg.Environment)
	require.True(t, otelCfg.Traces)
	require.Equal(t, 0.5, otelCfg.SampleRatio)
	require.Equal(t, map[string]string{"x-token": "abc", "x-team": "bridge"}, otelCfg.Headers)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `ListenAddress = ":1"
DataDir = "./d"
ValidatorKey = "legacy"
`)
	_, err := Load(path)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "ValidatorKey"))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		msg    string
	}{
		{"missing listen", func(c *Config) { c.ListenAddress = "" }, "ListenAddress"},
		{"missing data dir", func(c *Config) { c.DataDir = " " }, "DataDir"},
		{"unknown mode", func(c *Config) { c.Verifier.Mode = "plonk" }, "unknown mode"},
		{"groth16 without key", func(c *Config) { c.Verifier.Mode = VerifierGroth16 }, "Groth16KeyFile"},
		{"short program key", func(c *Config) { c.Verifier.ManualClaimKey = "0xabcd" }, "ManualClaimKey"},
		{"bad program id", func(c *Config) { c.Programs.Wormhole = "not-base58!" }, "programs.Wormhole"},
		{"sample ratio", func(c *Config) { c.Telemetry.SampleRatio = 1.5 }, "SampleRatio"},
		{"traces without endpoint", func(c *Config) {
			c.Telemetry.Traces = true
			c.Telemetry.Endpoint = ""
		}, "telemetry"},
	}
	require.NoError(t, Default().Validate())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestGroth16VerifierRequiresKeyFile(t *testing.T) {
	v := Verifier{Mode: VerifierGroth16, Groth16KeyFile: filepath.Join(t.TempDir(), "missing.json")}
	_, err := v.Build()
	require.Error(t, err)
}
