package utils_test

import (
	"testing"

	"github.com/jrsteele09/go-auth-frontdoor/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	require.Equal(t, "", utils.Value[string](nil))
	require.Equal(t, "x", utils.Value(utils.Ptr("x")))
}

func TestPtr_Copies(t *testing.T) {
	v := 1
	p := utils.Ptr(v)
	*p = 2
	require.Equal(t, 1, v)
}
