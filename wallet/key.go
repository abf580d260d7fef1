package wallet

import (
	"fmt"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"
)

const (
	// BIP44 path constants.
	PurposeBIP44    = 44
	CoinTypeBitFS   = 236
	TreasuryAccount = 0

	// Chain indices.
	ExternalChain = 0 // Receive addresses
	InternalChain = 1 // Change addresses

	// BIP32 hardened offset.
	Hardened = 0x80000000
)

// Wallet holds the treasury's BIP32 master key.
type Wallet struct {
	masterKey *bip32.ExtendedKey
	network   *NetworkConfig
}

// KeyPair holds a derived public/private key pair.
type KeyPair struct {
	PrivateKey *ec.PrivateKey `json:"-"`
	PublicKey  *ec.PublicKey  `json:"public_key"`
	Path       string         `json:"path"` // Human-readable derivation path
}

// NewWallet creates a new Wallet from a BIP39 seed.
func NewWallet(seed []byte, network *NetworkConfig) (*Wallet, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}
	if network == nil {
		network = &MainNet
	}

	// Map our NetworkConfig to go-sdk chaincfg.Params for BIP32.
	var net *chaincfg.Params
	switch network.Name {
	case "mainnet":
		net = &chaincfg.MainNet
	default:
		net = &chaincfg.TestNet
	}

	masterKey, err := bip32.NewMaster(seed, net)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}

	return &Wallet{
		masterKey: masterKey,
		network:   network,
	}, nil
}

// Network returns the wallet's network configuration.
func (w *Wallet) Network() *NetworkConfig {
	return w.network
}

// deriveAccount derives the account-level key: m/44'/236'/account'
func (w *Wallet) deriveAccount(account uint32) (*bip32.ExtendedKey, error) {
	// m/44'
	purpose, err := w.masterKey.Child(PurposeBIP44 + Hardened)
	if err != nil {
		return nil, fmt.Errorf("%w: purpose derivation: %w", ErrDerivationFailed, err)
	}

	// m/44'/236'
	coinType, err := purpose.Child(CoinTypeBitFS + Hardened)
	if err != nil {
		return nil, fmt.Errorf("%w: coin type derivation: %w", ErrDerivationFailed, err)
	}

	// m/44'/236'/account'
	accountKey, err := coinType.Child(account + Hardened)
	if err != nil {
		return nil, fmt.Errorf("%w: account derivation: %w", ErrDerivationFailed, err)
	}

	return accountKey, nil
}

// DeriveKey derives a key pair from the treasury account.
//
//	chain: ExternalChain (0) for receive, InternalChain (1) for change
//	index: address index
//	Path: m/44'/236'/0'/chain/index
func (w *Wallet) DeriveKey(chain, index uint32) (*KeyPair, error) {
	if chain > InternalChain {
		return nil, fmt.Errorf("%w: invalid chain %d (must be 0 or 1)", ErrDerivationFailed, chain)
	}

	accountKey, err := w.deriveAccount(TreasuryAccount)
	if err != nil {
		return nil, err
	}

	// m/44'/236'/0'/chain
	chainKey, err := accountKey.Child(chain)
	if err != nil {
		return nil, fmt.Errorf("%w: chain derivation: %w", ErrDerivationFailed, err)
	}

	// m/44'/236'/0'/chain/index
	childKey, err := chainKey.Child(index)
	if err != nil {
		return nil, fmt.Errorf("%w: index derivation: %w", ErrDerivationFailed, err)
	}

	return extKeyToKeyPair(childKey, fmt.Sprintf("m/44'/236'/0'/%d/%d", chain, index))
}

// TreasuryKey derives the treasury signing key, the single key that holds
// pooled funds and signs payout transactions.
//
//	Path: m/44'/236'/0'/0/0
func (w *Wallet) TreasuryKey() (*KeyPair, error) {
	return w.DeriveKey(ExternalChain, 0)
}

// TreasuryAddress returns the P2PKH address of the treasury signing key on
// the wallet's network. Deposits to the treasury pay this address.
func (w *Wallet) TreasuryAddress() (string, error) {
	kp, err := w.TreasuryKey()
	if err != nil {
		return "", err
	}
	return kp.Address(w.network.Name == "mainnet")
}

// Address returns the P2PKH address for the key pair's public key.
func (kp *KeyPair) Address(mainnet bool) (string, error) {
	addr, err := script.NewAddressFromPublicKey(kp.PublicKey, mainnet)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}
	return addr.AddressString, nil
}

// extKeyToKeyPair converts a BIP32 extended key to a KeyPair.
func extKeyToKeyPair(extKey *bip32.ExtendedKey, path string) (*KeyPair, error) {
	privKey, err := extKey.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to extract EC private key: %w", ErrDerivationFailed, err)
	}

	pubKey := privKey.PubKey()
	if pubKey == nil {
		return nil, fmt.Errorf("%w: failed to derive public key", ErrDerivationFailed)
	}

	return &KeyPair{
		PrivateKey: privKey,
		PublicKey:  pubKey,
		Path:       path,
	}, nil
}
