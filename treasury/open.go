package treasury

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitfsorg/libtreasury-go/config"
	"github.com/bitfsorg/libtreasury-go/network"
	"github.com/bitfsorg/libtreasury-go/oracle"
	"github.com/bitfsorg/libtreasury-go/paymail"
	"github.com/bitfsorg/libtreasury-go/payout"
	"github.com/bitfsorg/libtreasury-go/registry"
	"github.com/bitfsorg/libtreasury-go/store"
	"github.com/bitfsorg/libtreasury-go/wallet"
)

// StoreFile is the state database filename inside the data directory.
const StoreFile = "treasury.db"

// Open assembles a fully wired treasury from a data directory: the config
// file supplies the recipients, thresholds and node settings, and the
// encrypted wallet seed, decrypted with password, supplies the signing key.
// Close releases what Open acquired.
func Open(dataDir, password string) (*Treasury, error) {
	cfg, err := config.LoadConfig(config.ConfigPath(dataDir))
	if err != nil {
		return nil, fmt.Errorf("treasury: load config: %w", err)
	}
	cfg.DataDir = dataDir
	return FromConfig(cfg, password)
}

// FromConfig assembles a treasury from an already loaded configuration.
// The wallet seed is read from the configured data directory and its first
// external key becomes the payout signing key and receiving address.
//
// The chain connection comes from the config's rpc settings merged with the
// TREASURY_RPC_* environment and the network presets. When no endpoint
// resolves, which on mainnet means none was configured, the treasury runs
// in accounting-only mode.
func FromConfig(cfg config.Config, password string) (*Treasury, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("treasury: config: %w", err)
	}

	netCfg, err := wallet.GetNetwork(cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("treasury: network: %w", err)
	}
	seed, err := wallet.LoadSeed(wallet.SeedPath(cfg.DataDir), password)
	if err != nil {
		return nil, fmt.Errorf("treasury: load seed: %w", err)
	}
	w, err := wallet.NewWallet(seed, netCfg)
	if err != nil {
		return nil, fmt.Errorf("treasury: wallet: %w", err)
	}
	key, err := w.TreasuryKey()
	if err != nil {
		return nil, fmt.Errorf("treasury: signing key: %w", err)
	}
	address, err := w.TreasuryAddress()
	if err != nil {
		return nil, fmt.Errorf("treasury: receiving address: %w", err)
	}

	params := Params{
		Operating:   cfg.Operating,
		Community:   cfg.Community,
		Stakeholder: cfg.Stakeholders,
		Controller:  cfg.Controller,
		Address:     address,
		Quarter:     cfg.Quarter(),
		MinimumPool: cfg.MinPool,
		Resolver:    handleResolver(cfg),
	}

	if rpcCfg, rpcErr := resolveRPC(cfg); rpcErr == nil {
		chain := network.NewRPCClient(*rpcCfg)
		svc, err := payout.NewTxService(chain, key.PrivateKey, 0)
		if err != nil {
			return nil, fmt.Errorf("treasury: payout service: %w", err)
		}
		params.Chain = chain
		params.Payout = svc
	}

	if cfg.OracleURL != "" {
		params.Oracle = oracle.NewClient(cfg.OracleURL)
	}

	st, err := store.Open(filepath.Join(cfg.DataDir, StoreFile))
	if err != nil {
		return nil, err
	}
	params.Store = st

	t, err := New(params)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return t, nil
}

// resolveRPC merges the config file's rpc settings with the environment and
// the network presets. An error means no endpoint is configured.
func resolveRPC(cfg config.Config) (*network.RPCConfig, error) {
	flags := &network.RPCConfig{URL: cfg.RPCURL, User: cfg.RPCUser, Password: cfg.RPCPass}
	env := map[string]string{
		"TREASURY_RPC_URL":  os.Getenv("TREASURY_RPC_URL"),
		"TREASURY_RPC_USER": os.Getenv("TREASURY_RPC_USER"),
		"TREASURY_RPC_PASS": os.Getenv("TREASURY_RPC_PASS"),
	}
	return network.ResolveConfig(flags, env, cfg.Network)
}

// handleResolver builds the paymail resolver the config asks for. With
// dnssec set, SRV discovery goes through the configured upstream and an
// unvalidated response aborts resolution; otherwise lookups use the system
// resolver.
func handleResolver(cfg config.Config) registry.AddressResolver {
	r := paymail.NewResolver()
	r.Testnet = cfg.Network != "mainnet"
	if cfg.DNSSEC {
		r.DNS = paymail.NewDNSSECResolver(cfg.Resolver)
	} else {
		r.DNS = paymail.DefaultDNSResolver
	}
	return r
}
