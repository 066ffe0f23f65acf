package rewrite

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/free-ocr/constants"
	"github.com/joseph-ayodele/free-ocr/internal/common"
	"github.com/joseph-ayodele/free-ocr/internal/transport"
)

func TestClientRewrite(t *testing.T) {
	var got transport.RewriteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ProxyPath, r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"text":"plain text"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", srv.Client(), nil)
	out, err := c.Rewrite(context.Background(), constants.ModePlain, "# plain text")
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)
	assert.Equal(t, transport.RewriteRequest{Mode: "plain", Content: "# plain text"}, got)
}

func TestClientAcceptsFullEndpoint(t *testing.T) {
	c := NewClient("http://proxy.test"+ProxyPath, nil, nil)
	assert.Equal(t, "http://proxy.test"+ProxyPath, c.url)
}

func TestClientRewriteErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{"bad mode", http.StatusBadRequest, `{"error":"invalid mode \"yaml\""}`, common.ErrInvalidInput, `invalid mode "yaml"`},
		{"generator down", http.StatusBadGateway, `{"error":"text generation failed"}`, common.ErrUpstream, "text generation failed"},
		{"missing text", http.StatusOK, `{"output":"x"}`, common.ErrUpstream, "malformed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, srv.Client(), nil).Rewrite(context.Background(), constants.ModeJSON, "x")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, common.PublicMessage(err), tt.wantMsg)
		})
	}
}
