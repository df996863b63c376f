package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalString(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"30m"`), &d))
	assert.Equal(t, 30*time.Minute, d.Duration)
}

func TestUnmarshalNanoseconds(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`1800000000000`), &d))
	assert.Equal(t, 30*time.Minute, d.Duration)
}

func TestUnmarshalInvalid(t *testing.T) {
	var d Duration
	assert.Error(t, json.Unmarshal([]byte(`"bogus"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
}

func TestMarshalRoundTrip(t *testing.T) {
	d := Duration{Duration: 90 * time.Second}

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(data))

	var got Duration
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, d.Duration, got.Duration)
}
