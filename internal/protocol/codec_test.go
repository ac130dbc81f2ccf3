package protocol

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameReader(t *testing.T) {
	t.Run("reads newline delimited frames", func(t *testing.T) {
		fr := NewFrameReader(strings.NewReader("one\ntwo\n"), 1024)

		frame, err := fr.ReadFrame()
		require.NoError(t, err)
		assert.Equal(t, "one", string(frame))

		frame, err = fr.ReadFrame()
		require.NoError(t, err)
		assert.Equal(t, "two", string(frame))

		_, err = fr.ReadFrame()
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("rejects oversized frames", func(t *testing.T) {
		fr := NewFrameReader(strings.NewReader(strings.Repeat("x", 100)+"\n"), 10)

		_, err := fr.ReadFrame()
		assert.ErrorIs(t, err, ErrFrameTooLarge)
	})
}

func TestDecodeRequest(t *testing.T) {
	t.Run("decodes a typed envelope", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"id":"abc","type":"LOGIN","payload":{"username":"u"},"token":"tok"}`))
		require.NoError(t, err)
		assert.Equal(t, "abc", req.ID)
		assert.Equal(t, OpLogin, req.Type)
		assert.Equal(t, "tok", req.Token)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		_, err := DecodeRequest([]byte(`{"id":`))
		assert.Error(t, err)
	})

	t.Run("rejects missing type", func(t *testing.T) {
		_, err := DecodeRequest([]byte(`{"id":"abc"}`))
		assert.Error(t, err)
	})
}

func TestIsJSONFrame(t *testing.T) {
	assert.True(t, IsJSONFrame([]byte(`{"id":"x"}`)))
	assert.True(t, IsJSONFrame([]byte(`   {"id":"x"}`)))
	assert.False(t, IsJSONFrame([]byte("login alice secret")))
	assert.False(t, IsJSONFrame([]byte("")))
}

func TestEncodeFrame(t *testing.T) {
	frame, err := EncodeFrame(map[string]string{"a": "b"})
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":\"b\"}\n", string(frame))
}

func TestRequestBind(t *testing.T) {
	t.Run("empty payload is a validation error", func(t *testing.T) {
		req := &Request{ID: "1", Type: OpLogin}
		var dst map[string]string
		assert.Error(t, req.Bind(&dst))
	})

	t.Run("binds payload", func(t *testing.T) {
		req := &Request{ID: "1", Type: OpLogin, Payload: []byte(`{"username":"u"}`)}
		var dst struct {
			Username string `json:"username"`
		}
		require.NoError(t, req.Bind(&dst))
		assert.Equal(t, "u", dst.Username)
	})
}
