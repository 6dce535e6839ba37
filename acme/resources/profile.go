package resources

import (
	"crypto"
	"encoding/json"
	"fmt"
	"os"

	"github.com/acmevault/acmevault/acme/keys"
)

// Profile bundles a Registration with the account private key so a session
// can be frozen to disk and restored later. The private key is serialized in
// its DER form alongside a key type tag.
type Profile struct {
	Registration *Registration
	Signer       crypto.Signer
}

type rawProfile struct {
	Registration *Registration
	PrivateKey   []byte
	KeyType      string
}

// SaveProfile persists the given registration and account key (neither may
// be nil) to the given file path.
func SaveProfile(path string, reg *Registration, signer crypto.Signer) error {
	if reg == nil {
		return fmt.Errorf("registration must not be nil")
	}
	if signer == nil {
		return fmt.Errorf("signer must not be nil")
	}

	keyBytes, keyType, err := keys.MarshalSigner(signer)
	if err != nil {
		return err
	}

	frozen, err := json.MarshalIndent(rawProfile{
		Registration: reg,
		PrivateKey:   keyBytes,
		KeyType:      keyType,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, frozen, 0600)
}

// RestoreProfile loads a previously saved profile from the given file path.
// The file should have been created with SaveProfile in an earlier session.
func RestoreProfile(path string) (*Profile, error) {
	frozen, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw rawProfile
	if err := json.Unmarshal(frozen, &raw); err != nil {
		return nil, err
	}

	signer, err := keys.UnmarshalSigner(raw.PrivateKey, raw.KeyType)
	if err != nil {
		return nil, err
	}

	return &Profile{
		Registration: raw.Registration,
		Signer:       signer,
	}, nil
}
