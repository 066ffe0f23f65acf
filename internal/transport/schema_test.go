package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextResponseSchema(t *testing.T) {
	var out TextResponse
	require.NoError(t, TextResponseSchema.Decode([]byte(`{"text":"# Title","extra":1}`), &out))
	assert.Equal(t, "# Title", out.Text)

	require.NoError(t, TextResponseSchema.Decode([]byte(`{"text":""}`), &out))
	assert.Empty(t, out.Text)

	assert.Error(t, TextResponseSchema.Decode([]byte(`{"result":"x"}`), &out))
	assert.Error(t, TextResponseSchema.Decode([]byte(`{"text":42}`), &out))
	assert.Error(t, TextResponseSchema.Decode([]byte(`not json`), &out))
}

func TestRewriteRequestSchemaAcceptsUnknownMode(t *testing.T) {
	var req RewriteRequest
	require.NoError(t, RewriteRequestSchema.Decode([]byte(`{"mode":"yaml","content":"x"}`), &req))
	assert.Equal(t, "yaml", req.Mode)

	assert.Error(t, RewriteRequestSchema.Decode([]byte(`{"mode":"json"}`), &req))
	assert.Error(t, RewriteRequestSchema.Decode([]byte(`{"mode":1,"content":"x"}`), &req))
}

func TestSelectRequestSchema(t *testing.T) {
	var req SelectRequest
	require.NoError(t, SelectRequestSchema.Decode([]byte(`{"mode":"pydantic"}`), &req))
	assert.Equal(t, "pydantic", req.Mode)
	assert.Error(t, SelectRequestSchema.Decode([]byte(`{"mode":"yaml"}`), &req))
}

func TestImageRequestSchema(t *testing.T) {
	var req ImageRequest
	require.NoError(t, ImageRequestSchema.Decode([]byte(`{"image_data":"aGk="}`), &req))
	assert.Equal(t, "aGk=", req.ImageData)
	assert.Error(t, ImageRequestSchema.Decode([]byte(`{"image_data":""}`), &req))
	assert.Error(t, ImageRequestSchema.Decode([]byte(`{}`), &req))
}

func TestCompileSchemaRejectsBadSchema(t *testing.T) {
	_, err := CompileSchema("bad.json", map[string]any{"type": 12})
	assert.Error(t, err)
}
