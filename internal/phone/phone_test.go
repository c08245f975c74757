package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"national trunk prefix", "0712345678", "254712345678"},
		{"bare safaricom", "712345678", "254712345678"},
		{"bare airtel", "110345678", "254110345678"},
		{"already canonical", "254712345678", "254712345678"},
		{"plus prefixed", "+254712345678", "254712345678"},
		{"spaces and dashes", "0712 345-678", "254712345678"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalize_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "12345", "0812345678", "25471234567", "2547123456789", "not a number"} {
		_, err := Normalize(in)
		assert.ErrorIs(t, err, ErrInvalidPhone, "input %q", in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"0712345678", "712345678", "+254110345678"} {
		once, err := Normalize(in)
		require.NoError(t, err)
		twice, err := Normalize(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	}
}

func TestValid(t *testing.T) {
	t.Parallel()

	assert.True(t, Valid("0712345678"))
	assert.True(t, Valid("254110345678"))
	assert.False(t, Valid("12345"))
	assert.False(t, Valid("0812345678"))
}

func TestDisplay(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "+254712345678", Display("254712345678"))
	assert.Equal(t, "+254712345678", Display("+254712345678"))
}
