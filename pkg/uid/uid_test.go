package uid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/fcmpush/pkg/uid"
)

func TestNewSonyflake(t *testing.T) {
	gen, err := uid.NewSonyflake(7)
	require.NoError(t, err)

	first, err := gen.NextID()
	require.NoError(t, err)

	second, err := gen.NextID()
	require.NoError(t, err)

	assert.Greater(t, second, first)
}
