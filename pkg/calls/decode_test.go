package calls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestDecodeJSON(t *testing.T) {
	body := []byte(`{"id":7,"name":"widget"}`)

	v, err := DecodeJSON(body, true, item{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": float64(7), "name": "widget"}, v)

	v, err = DecodeJSON(body, false, item{})
	require.NoError(t, err)
	assert.Equal(t, &item{ID: 7, Name: "widget"}, v)

	v, err = DecodeJSON(body, false, &item{})
	require.NoError(t, err)
	assert.Equal(t, &item{ID: 7, Name: "widget"}, v)

	v, err = DecodeJSON(body, false, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": float64(7), "name": "widget"}, v)
}

func TestDecodeJSON_Empty(t *testing.T) {
	v, err := DecodeJSON(nil, true, nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = DecodeJSON([]byte("  \n"), false, item{})
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDecodeJSON_Invalid(t *testing.T) {
	_, err := DecodeJSON([]byte("<html>"), true, nil)
	assert.Error(t, err)
}
