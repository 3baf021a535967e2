package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCursor(t *testing.T) {
	ts := time.Date(2024, 3, 10, 14, 30, 45, 123456789, time.UTC)

	token := EncodeCursor(ts, "b6c1d2f0-0000-4000-8000-000000000001")
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedTS, decodedID, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.True(t, ts.Equal(decodedTS), "Timestamp should match after decode")
	assert.Equal(t, "b6c1d2f0-0000-4000-8000-000000000001", decodedID)

	// Non-UTC timestamps are normalised
	tunis := time.FixedZone("CET", 3600)
	decodedTS, _, err = DecodeCursor(EncodeCursor(ts.In(tunis), "x"))
	require.NoError(t, err)
	assert.True(t, ts.Equal(decodedTS))
}

func TestDecodeCursorError(t *testing.T) {
	_, _, err := DecodeCursor("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode")

	missingID := base64.StdEncoding.EncodeToString([]byte("2024-03-10T00:00:00Z"))
	_, _, err = DecodeCursor(missingID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	badDate := EncodeMultiFieldToken("notadate", "id-1")
	_, _, err = DecodeCursor(badDate)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "timestamp parse")
}

func TestAfter(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.True(t, After(base.Add(-time.Second), "z", base, "a"), "older rows come after the cursor")
	assert.False(t, After(base.Add(time.Second), "a", base, "z"), "newer rows come before the cursor")
	assert.True(t, After(base, "a", base, "b"), "ties break on descending id")
	assert.False(t, After(base, "b", base, "b"), "the cursor row itself is excluded")
}

func TestMultiFieldToken(t *testing.T) {
	token := EncodeMultiFieldToken("one", "two", "three")
	parts, err := DecodeMultiFieldToken(token)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, parts)
}
