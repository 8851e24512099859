package config

import (
	"fmt"

	"solana-trust-ledger/internal/solana"
)

// Validate checks constraints that would otherwise surface as runtime
// faults deep inside the pipeline.
func (c Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("backend.url is required")
	}
	if c.Backend.MaxAttempts < 1 {
		return fmt.Errorf("backend.max_attempts must be >= 1, got %d", c.Backend.MaxAttempts)
	}
	if c.Backend.RetryDelay < 0 {
		return fmt.Errorf("backend.retry_delay must be >= 0, got %s", c.Backend.RetryDelay)
	}

	if c.MarketData.BaseURL == "" {
		return fmt.Errorf("market_data.base_url is required")
	}
	if c.MarketData.WalletAddress != "" {
		if err := solana.ValidateWalletAddress(c.MarketData.WalletAddress); err != nil {
			return fmt.Errorf("market_data.wallet_address: %w", err)
		}
	}

	if c.Simulation.SimulatedOwnerAddr != "" {
		if err := solana.ValidateWalletAddress(c.Simulation.SimulatedOwnerAddr); err != nil {
			return fmt.Errorf("simulation.simulated_owner_addr: %w", err)
		}
	}
	if c.Simulation.InitialBalance < 0 {
		return fmt.Errorf("simulation.initial_balance must be >= 0, got %f", c.Simulation.InitialBalance)
	}
	if c.Simulation.ConfidenceDivisor <= 0 {
		return fmt.Errorf("simulation.confidence_divisor must be > 0, got %f", c.Simulation.ConfidenceDivisor)
	}

	if c.Monitor.WatchDuration <= 0 {
		return fmt.Errorf("monitor.watch_duration must be > 0, got %s", c.Monitor.WatchDuration)
	}
	if c.Monitor.PollInterval <= 0 {
		return fmt.Errorf("monitor.poll_interval must be > 0, got %s", c.Monitor.PollInterval)
	}

	return nil
}
