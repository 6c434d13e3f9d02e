package inventory

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	d := DateOf(time.Date(2025, 1, 31, 23, 50, 0, 0, loc))
	assert.Equal(t, "2025-01-31", d.String())
	assert.Equal(t, "2025-02-01", d.AddDays(1).String())
	assert.Equal(t, "2025-01-01", d.FirstOfMonth().String())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.Equal(t, "", Date{}.String())

	_, err := ParseDate("31.01.2025")
	assert.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	in := struct {
		D Date `json:"d"`
	}{D: NewDate(2024, time.February, 29)}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-02-29"}`, string(b))

	var out struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.True(t, in.D.Equal(out.D))
}
