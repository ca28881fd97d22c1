package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	t.Parallel()

	t.Run("marshals as plain date string", func(t *testing.T) {
		t.Parallel()
		d := NewDate(1999, time.March, 14)
		data, err := json.Marshal(d)
		require.NoError(t, err)
		assert.Equal(t, `"1999-03-14"`, string(data))
	})

	t.Run("round trips", func(t *testing.T) {
		t.Parallel()
		var d Date
		require.NoError(t, json.Unmarshal([]byte(`"2001-12-31"`), &d))
		assert.Equal(t, "2001-12-31", d.String())
	})

	t.Run("null clears the date", func(t *testing.T) {
		t.Parallel()
		d := NewDate(2000, time.January, 1)
		require.NoError(t, json.Unmarshal([]byte(`null`), &d))
		assert.True(t, d.IsZero())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		t.Parallel()
		var d Date
		err := json.Unmarshal([]byte(`"31/12/2001"`), &d)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestDateSQL(t *testing.T) {
	t.Parallel()

	t.Run("zero date stores NULL", func(t *testing.T) {
		t.Parallel()
		v, err := Date{}.Value()
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("scans time.Time", func(t *testing.T) {
		t.Parallel()
		var d Date
		require.NoError(t, d.Scan(time.Date(1995, time.June, 2, 17, 30, 0, 0, time.UTC)))
		assert.Equal(t, "1995-06-02", d.String())
	})

	t.Run("scans NULL as zero", func(t *testing.T) {
		t.Parallel()
		d := NewDate(2000, time.January, 1)
		require.NoError(t, d.Scan(nil))
		assert.True(t, d.IsZero())
	})

	t.Run("rejects unsupported types", func(t *testing.T) {
		t.Parallel()
		var d Date
		assert.Error(t, d.Scan(42))
	})
}

func TestDateComparisons(t *testing.T) {
	t.Parallel()

	a := NewDate(1990, time.May, 1)
	b := NewDate(1990, time.May, 2)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.After(b))
}
