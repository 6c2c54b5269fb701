package security

import (
	"strings"
	"testing"

	"github.com/campuslabs/equiptrack-backend/pkg/config"
	"github.com/stretchr/testify/require"
)

func testConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func TestHashAndVerifyRoundtrip(t *testing.T) {
	hash, err := HashPassword("s3cret-passphrase", testConfig())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	ok, err := VerifyPassword("s3cret-passphrase", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword("not-the-passphrase", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashesAreSalted(t *testing.T) {
	first, err := HashPassword("same-input", testConfig())
	require.NoError(t, err)
	second, err := HashPassword("same-input", testConfig())
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	_, err := HashPassword("", testConfig())
	require.Error(t, err)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	_, err := VerifyPassword("anything", "$md5$nope")
	require.ErrorIs(t, err, ErrInvalidHash)
}

func TestGenerateTempPassword(t *testing.T) {
	password, err := GenerateTempPassword(10)
	require.NoError(t, err)
	require.Len(t, password, 10)
	for _, r := range password {
		require.Contains(t, string(tempPasswordCharset), string(r))
	}

	_, err = GenerateTempPassword(0)
	require.Error(t, err)
}
