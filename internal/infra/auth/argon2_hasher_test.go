package auth

import (
	"bytes"
	"strings"
	"testing"

	"credcore/config"
	"credcore/internal/domain/entity"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastParams keep the suite quick; production cost comes from config.
var fastParams = Argon2Params{
	Time:       1,
	MemoryKiB:  8,
	Threads:    1,
	KeyLength:  32,
	SaltLength: 16,
}

func TestArgon2Hasher_Hash(t *testing.T) {
	hasher := NewArgon2HasherWithParams(fastParams, nil)

	password := "mypassword"
	encoded, err := hasher.Hash(password)
	require.NoError(t, err)
	assert.NotEqual(t, password, encoded)
	assert.NotContains(t, encoded, password)

	record, err := entity.ParsePasswordRecord(encoded)
	require.NoError(t, err)
	assert.Len(t, record.Salt, fastParams.SaltLength)
	assert.Len(t, record.Hash, int(fastParams.KeyLength))
}

func TestArgon2Hasher_Check(t *testing.T) {
	hasher := NewArgon2HasherWithParams(fastParams, nil)

	encoded, err := hasher.Hash("mypassword")
	require.NoError(t, err)

	ok, err := hasher.Check("mypassword", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Check("mypassword1", encoded)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = hasher.Check("", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2Hasher_CheckMalformedRecord(t *testing.T) {
	hasher := NewArgon2HasherWithParams(fastParams, nil)

	ok, err := hasher.Check("mypassword", "invalid_hash")
	assert.False(t, ok)
	assert.True(t, errors.Is(err, entity.ErrPasswordRecordMalformed))
}

func TestArgon2Hasher_SaltIsFreshPerHash(t *testing.T) {
	hasher := NewArgon2HasherWithParams(fastParams, nil)

	first, err := hasher.Hash("mypassword")
	require.NoError(t, err)
	second, err := hasher.Hash("mypassword")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	firstRecord, err := entity.ParsePasswordRecord(first)
	require.NoError(t, err)
	secondRecord, err := entity.ParsePasswordRecord(second)
	require.NoError(t, err)
	assert.NotEqual(t, firstRecord.Salt, secondRecord.Salt)
}

func TestArgon2Hasher_DeterministicForSalt(t *testing.T) {
	salt := bytes.Repeat([]byte{0x42}, fastParams.SaltLength)

	first, err := NewArgon2HasherWithParams(fastParams, bytes.NewReader(salt)).Hash("mypassword")
	require.NoError(t, err)
	second, err := NewArgon2HasherWithParams(fastParams, bytes.NewReader(salt)).Hash("mypassword")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, strings.Repeat("42", fastParams.SaltLength)+"."))
}

func TestArgon2Hasher_SaltSourceFailure(t *testing.T) {
	hasher := NewArgon2HasherWithParams(fastParams, bytes.NewReader([]byte{0x01}))

	_, err := hasher.Hash("mypassword")
	assert.ErrorContains(t, err, "failed to generate salt")
}

func TestArgon2Hasher_VerifiesRecordsWithOtherKeyLength(t *testing.T) {
	short := fastParams
	short.KeyLength = 16

	encoded, err := NewArgon2HasherWithParams(short, nil).Hash("mypassword")
	require.NoError(t, err)

	ok, err := NewArgon2HasherWithParams(fastParams, nil).Check("mypassword", encoded)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewArgon2Hasher_FromConfig(t *testing.T) {
	cfg := &config.Config{
		Hasher: &config.HasherConfig{
			Time:       1,
			MemoryKiB:  8,
			Threads:    1,
			KeyLength:  24,
			SaltLength: 8,
		},
	}

	encoded, err := NewArgon2Hasher(cfg).Hash("mypassword")
	require.NoError(t, err)

	record, err := entity.ParsePasswordRecord(encoded)
	require.NoError(t, err)
	assert.Len(t, record.Salt, 8)
	assert.Len(t, record.Hash, 24)
}
