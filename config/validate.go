package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration before the node starts.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ListenAddress) == "" {
		return fmt.Errorf("ListenAddress is required")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("DataDir is required")
	}
	switch c.Verifier.Mode {
	case VerifierMock:
	case VerifierGroth16:
		if strings.TrimSpace(c.Verifier.Groth16KeyFile) == "" {
			return fmt.Errorf("verifier: groth16 mode requires Groth16KeyFile")
		}
	default:
		return fmt.Errorf("verifier: unknown mode %q", c.Verifier.Mode)
	}
	if _, err := c.Verifier.ProgramKeys(); err != nil {
		return err
	}
	if _, err := c.Programs.IDs(); err != nil {
		return err
	}
	if c.Telemetry.Traces && strings.TrimSpace(c.Telemetry.Endpoint) == "" {
		return fmt.Errorf("telemetry: traces enabled without Endpoint")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry: SampleRatio must be within [0, 1]")
	}
	return nil
}
