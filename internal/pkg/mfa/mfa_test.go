package mfa

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var key = bytes.Repeat([]byte{7}, 32)

func TestAESGCM_RoundTrip(t *testing.T) {
	enc := NewAESGCMEncryptor(StaticKeyProvider{KeyBytes: key})
	scope := OTPSeed("user-1")

	sealed, err := SealString(enc, "JBSWY3DPEHPK3PXP", scope)
	require.NoError(t, err)
	assert.NotContains(t, sealed, "JBSWY3DPEHPK3PXP")

	plain, err := OpenString(enc, sealed, scope)
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", plain)

	again, err := SealString(enc, "JBSWY3DPEHPK3PXP", scope)
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must be fresh")
}

func TestAESGCM_ScopeBound(t *testing.T) {
	enc := NewAESGCMEncryptor(StaticKeyProvider{KeyBytes: key})

	sealed, err := SealString(enc, "JBSWY3DPEHPK3PXP", OTPSeed("user-1"))
	require.NoError(t, err)

	_, err = OpenString(enc, sealed, OTPSeed("user-2"))
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestAESGCM_Errors(t *testing.T) {
	enc := NewAESGCMEncryptor(StaticKeyProvider{KeyBytes: key})
	scope := OTPSeed("u")

	_, err := enc.Encrypt(nil, scope)
	assert.ErrorIs(t, err, ErrPlaintextEmpty)

	_, err = enc.Decrypt([]byte{0, 1, 2}, scope)
	assert.ErrorIs(t, err, ErrCiphertextTooShort)

	ct, err := enc.Encrypt([]byte("x"), scope)
	require.NoError(t, err)
	ct[0] = 9
	_, err = enc.Decrypt(ct, scope)
	assert.ErrorIs(t, err, ErrUnsupportedCiphertextVersion)

	_, err = NewAESGCMEncryptor(StaticKeyProvider{KeyBytes: key[:16]}).Encrypt([]byte("x"), scope)
	assert.ErrorIs(t, err, ErrInvalidKeyLength)

	_, err = NewAESGCMEncryptor(StaticKeyProvider{}).Encrypt([]byte("x"), scope)
	assert.ErrorIs(t, err, ErrMissingStaticKey)

	_, err = NewAESGCMEncryptor(nil).Encrypt([]byte("x"), scope)
	assert.ErrorIs(t, err, ErrEncryptorNotConfigured)

	_, err = OpenString(enc, "%%%", scope)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestBackupCodes(t *testing.T) {
	codes, err := NewBackupCodes().Generate()
	require.NoError(t, err)
	require.Len(t, codes, BackupCodeCount)

	seen := map[string]struct{}{}
	for _, c := range codes {
		assert.Len(t, c, BackupCodeLength)
		n, err := strconv.Atoi(c)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 10_000_000)
		assert.LessOrEqual(t, n, 99_999_999)
		seen[c] = struct{}{}
	}
	assert.Len(t, seen, BackupCodeCount)
}
