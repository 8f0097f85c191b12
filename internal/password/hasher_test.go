package password_test

import (
	"strings"
	"testing"

	"github.com/ErlanBelekov/greeting-api/internal/password"
	"github.com/stretchr/testify/require"
)

// Cheap parameters keep the suite fast; the encoding path is identical.
var testParams = password.Params{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func TestHash_PHCFormat(t *testing.T) {
	h := password.NewHasher(testParams)

	encoded, err := h.Hash("password123")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))

	parts := strings.Split(encoded, "$")
	require.Len(t, parts, 6)
	require.Equal(t, "m=1024,t=1,p=1", parts[3])
	require.NotEmpty(t, parts[4], "salt")
	require.NotEmpty(t, parts[5], "key")
}

func TestHash_UniqueSalts(t *testing.T) {
	h := password.NewHasher(testParams)

	first, err := h.Hash("samepassword")
	require.NoError(t, err)
	second, err := h.Hash("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, h.Verify("samepassword", first))
	require.True(t, h.Verify("samepassword", second))
}

func TestVerify_RoundTrip(t *testing.T) {
	h := password.NewHasher(testParams)

	tests := []struct {
		name      string
		plaintext string
	}{
		{"short", "pw1"},
		{"complex", "P@ssw0rd!#$%^&*()"},
		{"long", strings.Repeat("a", 200)},
		{"empty", ""},
		{"unicode", "пароль🔒密码"},
		{"whitespace", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := h.Hash(tt.plaintext)
			require.NoError(t, err)
			require.True(t, h.Verify(tt.plaintext, encoded))
			require.False(t, h.Verify(tt.plaintext+"x", encoded))
		})
	}
}

func TestVerify_UsesEmbeddedParams(t *testing.T) {
	encoded, err := password.NewHasher(testParams).Hash("pw1")
	require.NoError(t, err)

	other := password.NewHasher(password.Params{Memory: 2048, Iterations: 2, Parallelism: 1})
	require.True(t, other.Verify("pw1", encoded))
}

func TestVerify_MalformedHash(t *testing.T) {
	h := password.NewHasher(testParams)

	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"plain text", "not-a-hash"},
		{"wrong algorithm", "$argon2i$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5"},
		{"wrong version", "$argon2id$v=16$m=1024,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5"},
		{"bad params", "$argon2id$v=19$m=x,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5"},
		{"zero params", "$argon2id$v=19$m=0,t=0,p=0$c2FsdHNhbHQ$a2V5a2V5"},
		{"bad salt", "$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5a2V5"},
		{"bad key", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$!!!"},
		{"too few parts", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.False(t, h.Verify("pw1", tt.encoded))
		})
	}
}
