package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the tests fast; production uses DefaultParams.
var testParams = Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32}

func TestHashPassword_SaltAndVerifier(t *testing.T) {
	salt, verifier := HashPassword([]byte("hunter2"), testParams)

	require.Len(t, salt, SaltSize)
	require.Len(t, verifier, int(testParams.KeyLen))

	salt2, verifier2 := HashPassword([]byte("hunter2"), testParams)
	assert.NotEqual(t, salt, salt2, "salt must be random per call")
	assert.NotEqual(t, verifier, verifier2, "same password with a new salt yields a new verifier")
}

func TestDeriveVerifier_Deterministic(t *testing.T) {
	salt := []byte("0123456789abcdef")
	a := DeriveVerifier([]byte("pw"), salt, testParams)
	b := DeriveVerifier([]byte("pw"), salt, testParams)
	assert.Equal(t, a, b)
}

func TestCheckPassword(t *testing.T) {
	salt, verifier := HashPassword([]byte("correct horse"), testParams)

	tests := []struct {
		name     string
		password string
		salt     []byte
		verifier []byte
		want     bool
	}{
		{"match", "correct horse", salt, verifier, true},
		{"wrong password", "battery staple", salt, verifier, false},
		{"empty password", "", salt, verifier, false},
		{"missing salt", "correct horse", nil, verifier, false},
		{"missing verifier", "correct horse", salt, nil, false},
		{"wrong params", "correct horse", salt, verifier[:16], false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckPassword([]byte(tt.password), tt.salt, tt.verifier, testParams))
		})
	}
}
