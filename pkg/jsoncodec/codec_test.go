package jsoncodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles,omitempty"`
}

func TestCodec(t *testing.T) {
	var c Codec
	assert.Equal(t, "json", c.Name())
	assert.Equal(t, "json; charset=utf-8", Codec{name: "json; charset=utf-8"}.Name())

	data, err := c.Marshal(&message{ID: "5", Roles: []string{"manager"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"5","roles":["manager"]}`, string(data))

	var got message
	require.NoError(t, c.Unmarshal(data, &got))
	assert.Equal(t, message{ID: "5", Roles: []string{"manager"}}, got)
}

func TestUnmarshalEmptyBody(t *testing.T) {
	got := message{ID: "keep"}
	require.NoError(t, Codec{}.Unmarshal([]byte("  "), &got))
	assert.Equal(t, "keep", got.ID)
}

func TestUnmarshalRejectsUnknownFields(t *testing.T) {
	var got message
	err := Codec{}.Unmarshal([]byte(`{"id":"5","role":"admin"}`), &got)
	assert.ErrorContains(t, err, "unknown field")
}
