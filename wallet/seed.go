// Package wallet implements the treasury signing identity.
//
// A BIP39 mnemonic produces the wallet seed; the seed is kept encrypted at
// rest (argon2id key derivation + AES-256-GCM) and unlocks the single
// BIP32 signing key that funds payout transactions.
package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bsv-blockchain/go-sdk/compat/bip39"
	"golang.org/x/crypto/argon2"
)

const (
	// Mnemonic entropy sizes.
	Mnemonic12Words = 128 // 12-word mnemonic
	Mnemonic24Words = 256 // 24-word mnemonic

	// Argon2id parameters for seed encryption.
	Argon2Time        = 3
	Argon2Memory      = 64 * 1024 // 64 MB
	Argon2Parallelism = 4
	Argon2KeyLen      = 32

	// Encryption format sizes.
	SaltLen     = 16
	NonceLen    = 12
	ChecksumLen = 4
)

// GenerateMnemonic creates a new BIP39 mnemonic with the specified entropy
// bits. Use Mnemonic12Words (128) for 12 words or Mnemonic24Words (256)
// for 24 words.
func GenerateMnemonic(entropyBits int) (string, error) {
	if entropyBits != Mnemonic12Words && entropyBits != Mnemonic24Words {
		return "", ErrInvalidEntropy
	}

	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", fmt.Errorf("wallet: failed to generate entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("wallet: failed to generate mnemonic: %w", err)
	}

	return mnemonic, nil
}

// ValidateMnemonic checks if a mnemonic string is valid BIP39.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// SeedFromMnemonic derives a 64-byte BIP39 seed from mnemonic + optional
// passphrase.
//
//	seed = PBKDF2(mnemonic, "mnemonic"+passphrase, 2048, 64, SHA512)
//
// Note: passphrase can be empty string "" (still participates in derivation).
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	if !ValidateMnemonic(mnemonic) {
		return nil, ErrInvalidMnemonic
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("wallet: failed to derive seed: %w", err)
	}

	return seed, nil
}

// deriveKey stretches a password into an AES-256 key with argon2id.
func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(password),
		salt,
		Argon2Time,
		Argon2Memory,
		Argon2Parallelism,
		Argon2KeyLen,
	)
}

// EncryptSeed encrypts the seed with argon2id + AES-256-GCM.
//
// Output format: salt(16B) || nonce(12B) || AES-GCM(key, nonce, seed||checksum)
//
// The checksum is SHA256(seed)[:4], verified after decryption so a wrong
// password is distinguishable from corrupted data.
func EncryptSeed(seed []byte, password string) ([]byte, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}

	salt := make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("wallet: failed to generate salt: %w", err)
	}

	// Plaintext: seed || SHA256(seed)[:4]
	seedHash := sha256.Sum256(seed)
	plaintext := make([]byte, len(seed)+ChecksumLen)
	copy(plaintext, seed)
	copy(plaintext[len(seed):], seedHash[:ChecksumLen])

	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, fmt.Errorf("wallet: AES cipher creation failed: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("wallet: GCM creation failed: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("wallet: failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	// Output: salt(16B) || nonce(12B) || ciphertext
	result := make([]byte, 0, SaltLen+NonceLen+len(ciphertext))
	result = append(result, salt...)
	result = append(result, nonce...)
	result = append(result, ciphertext...)

	return result, nil
}

// DecryptSeed decrypts a seed produced by EncryptSeed.
//
// Input format: salt(16B) || nonce(12B) || ciphertext
//
// Derives the key with argon2id, decrypts with AES-256-GCM, then verifies
// the SHA256(seed)[:4] checksum to confirm correct decryption.
func DecryptSeed(encrypted []byte, password string) ([]byte, error) {
	minLen := SaltLen + NonceLen + ChecksumLen // minimum: salt + nonce + at least checksum
	if len(encrypted) < minLen {
		return nil, ErrDecryptionFailed
	}

	salt := encrypted[:SaltLen]
	nonce := encrypted[SaltLen : SaltLen+NonceLen]
	ciphertext := encrypted[SaltLen+NonceLen:]

	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	if len(plaintext) < ChecksumLen {
		return nil, ErrDecryptionFailed
	}

	seed := plaintext[:len(plaintext)-ChecksumLen]
	storedChecksum := plaintext[len(plaintext)-ChecksumLen:]

	seedHash := sha256.Sum256(seed)
	for i := 0; i < ChecksumLen; i++ {
		if storedChecksum[i] != seedHash[i] {
			return nil, ErrChecksumMismatch
		}
	}

	return seed, nil
}

// SeedPath returns the encrypted seed file path inside dataDir.
func SeedPath(dataDir string) string {
	return filepath.Join(dataDir, "wallet.enc")
}

// SaveSeed encrypts the seed with the password and writes it to path,
// creating parent directories as needed. The file is written 0600.
func SaveSeed(path string, seed []byte, password string) error {
	encrypted, err := EncryptSeed(seed, password)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("wallet: create directory: %w", err)
	}
	if err := os.WriteFile(path, encrypted, 0600); err != nil {
		return fmt.Errorf("wallet: write seed file: %w", err)
	}
	return nil
}

// LoadSeed reads an encrypted seed file and decrypts it with the password.
// It returns ErrSeedNotFound if the file does not exist.
func LoadSeed(path, password string) ([]byte, error) {
	encrypted, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSeedNotFound, path)
		}
		return nil, fmt.Errorf("wallet: read seed file: %w", err)
	}
	return DecryptSeed(encrypted, password)
}
