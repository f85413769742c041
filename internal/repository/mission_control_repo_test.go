package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePositions_BareArray(t *testing.T) {
	body := []byte(`[{"id":1,"ticker":"AAPL","pnl":25.5},{"id":2,"ticker":"MSFT","pnl":-10}]`)

	positions, err := decodePositions(body)
	require.NoError(t, err)

	require.Len(t, positions, 2)
	assert.Equal(t, "AAPL", positions[0].Ticker)
	assert.Equal(t, 25.5, positions[0].PNL)
}

func TestDecodePositions_DataEnvelope(t *testing.T) {
	body := []byte(`{"data":[{"id":7,"ticker":"NVDA","pnl":"42.5"}]}`)

	positions, err := decodePositions(body)
	require.NoError(t, err)

	require.Len(t, positions, 1)
	assert.Equal(t, int64(7), positions[0].ID)
	assert.Equal(t, 42.5, positions[0].PNL)
}

func TestDecodePositions_Garbage(t *testing.T) {
	_, err := decodePositions([]byte(`"not a list"`))
	assert.Error(t, err)
}
