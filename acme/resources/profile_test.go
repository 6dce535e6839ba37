package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acmevault/acmevault/acme/keys"
)

func TestProfileRoundTrip(t *testing.T) {
	signer, err := keys.NewSigner("ecdsa")
	require.NoError(t, err)

	reg := &Registration{
		RegistrationURI: "https://acme.example.com/reg/1",
		Contacts:        []string{"mailto:admin@example.com"},
		TOSLinkURI:      "https://acme.example.com/terms",
	}

	path := t.TempDir() + "/profile.json"
	require.NoError(t, SaveProfile(path, reg, signer))

	profile, err := RestoreProfile(path)
	require.NoError(t, err)
	assert.Equal(t, reg.RegistrationURI, profile.Registration.RegistrationURI)
	assert.Equal(t, reg.Contacts, profile.Registration.Contacts)
	assert.Equal(t, keys.JWKThumbprint(signer), keys.JWKThumbprint(profile.Signer))
}

func TestSaveProfileValidation(t *testing.T) {
	signer, err := keys.NewSigner("ecdsa")
	require.NoError(t, err)
	path := t.TempDir() + "/profile.json"

	require.Error(t, SaveProfile(path, nil, signer))
	require.Error(t, SaveProfile(path, &Registration{}, nil))
}

func TestRestoreProfileMissingFile(t *testing.T) {
	_, err := RestoreProfile(t.TempDir() + "/absent.json")
	require.Error(t, err)
}
