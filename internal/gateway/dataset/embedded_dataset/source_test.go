package embedded_dataset_test

import (
	"context"
	"testing"

	"github.com/horockey/cardshelf/internal/gateway/dataset/embedded_dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load(t *testing.T) {
	bundle, err := embedded_dataset.New().Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, bundle.Series, 2)
	assert.Len(t, bundle.Cards, 24)
	assert.Equal(t, "ddd-s97", bundle.Series[0].ID)
	assert.Equal(t, "DDD/S97-001", bundle.Cards[0].CardCode)
}

func Test_Raw_IsCopy(t *testing.T) {
	raw := embedded_dataset.Raw()
	raw[0] = 'X'
	assert.Equal(t, byte('{'), embedded_dataset.Raw()[0])
}
