package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := New(5*time.Second, 100, 100).WithHTTPClient(server.Client())
	return client, server
}

func TestGet(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		want        string
		wantStatus  int
		wantErr     error
	}{
		{
			name:   "plain csv",
			status: http.StatusOK,
			body:   "SKU,flag\n1,TRUE\n",
			want:   "SKU,flag\n1,TRUE\n",
		},
		{
			name:   "utf-8 bom stripped",
			status: http.StatusOK,
			body:   "\xef\xbb\xbfSKU,flag\n",
			want:   "SKU,flag\n",
		},
		{
			name:    "invalid utf-8",
			status:  http.StatusOK,
			body:    "SKU,flag\n\xff42,TRUE\n",
			wantErr: ErrInvalidUTF8,
		},
		{
			name:       "not found",
			status:     http.StatusNotFound,
			body:       "gone",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "server error",
			status:     http.StatusInternalServerError,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:        "html sign-in page",
			status:      http.StatusOK,
			contentType: "text/html; charset=utf-8",
			body:        "<html><head><title>Sign in -\n Google Accounts</title></head><body></body></html>",
			wantErr:     ErrHTMLPage,
		},
		{
			name:    "html without content type",
			status:  http.StatusOK,
			body:    "  <!DOCTYPE html><html></html>",
			wantErr: ErrHTMLPage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := client.Get(context.Background(), server.URL+"/report.csv")

			switch {
			case tt.wantStatus != 0:
				var se *StatusError
				require.True(t, errors.As(err, &se), "want *StatusError, got %v", err)
				assert.Equal(t, tt.wantStatus, se.StatusCode)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, string(got))
			}
		})
	}
}

func TestGetHTMLPageErrorIncludesTitle(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><title>Sign in</title></html>"))
	})
	_, err := client.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Sign in"`)
}

func TestGetTransportError(t *testing.T) {
	client := New(time.Second, 100, 100)
	_, err := client.Get(context.Background(), "http://127.0.0.1:1/unreachable.csv")
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestGetSendsCSVAccept(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Contains(t, r.Header.Get("Accept"), "text/csv")
		_, _ = w.Write([]byte("a\n"))
	})
	_, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
}
