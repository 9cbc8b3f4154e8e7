package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, contentType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPJSONSource_FetchRate(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
		wantErr  bool
	}{
		{name: "rates map", status: http.StatusOK, body: `{"result":"success","base_code":"USD","rates":{"USD":1,"UYU":39.87}}`, expected: "39.87"},
		{name: "single rate", status: http.StatusOK, body: `{"rate": 40.5}`, expected: "40.5"},
		{name: "missing currency", status: http.StatusOK, body: `{"rates":{"EUR":0.92}}`, wantErr: true},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, wantErr: true},
		{name: "not json", status: http.StatusOK, body: `<html>`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, "application/json", tt.body)
			source := NewHTTPJSONSource(srv.URL, 5*time.Second)

			rate, err := source.FetchRate(context.Background(), "USD", "UYU")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rate.String())
		})
	}
}

func TestXMLSource_FetchRate(t *testing.T) {
	feed := `<Envelope><Cube><Cube time="2024-03-15"><Cube currency="UYU" rate="39,12"/></Cube></Cube></Envelope>`
	srv := serve(t, http.StatusOK, "application/xml", feed)

	source := NewXMLSource(srv.URL, "//Cube[@currency='{to}']/@rate", 5*time.Second)
	rate, err := source.FetchRate(context.Background(), "USD", "UYU")
	require.NoError(t, err)
	assert.Equal(t, "39.12", rate.String())

	_, err = source.FetchRate(context.Background(), "USD", "BRL")
	assert.Error(t, err)
}

func TestSession_RefreshFromHTTP(t *testing.T) {
	srv := serve(t, http.StatusOK, "application/json", `{"rates":{"UYU":41.25}}`)
	s := NewSession(NewHTTPJSONSource(srv.URL, time.Second), "USD", "UYU", DefaultFallbackRate, nil)

	rate, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "41.25", rate.Rate.String())
	assert.False(t, rate.Fallback)
}

func TestNewRateSource(t *testing.T) {
	fallback := decimal.NewFromInt(40)

	src, err := NewRateSource(SourceJSON, "http://example.invalid", "", fallback, time.Second, nil)
	require.NoError(t, err)
	assert.IsType(t, &HTTPJSONSource{}, src)

	src, err = NewRateSource(SourceXML, "http://example.invalid", "//rate", fallback, time.Second, nil)
	require.NoError(t, err)
	assert.IsType(t, &XMLSource{}, src)

	src, err = NewRateSource(SourceStatic, "", "", fallback, time.Second, nil)
	require.NoError(t, err)
	rate, err := src.FetchRate(context.Background(), "USD", "UYU")
	require.NoError(t, err)
	assert.True(t, fallback.Equal(rate))

	_, err = NewRateSource(SourceXML, "http://example.invalid", "", fallback, time.Second, nil)
	assert.Error(t, err)
	_, err = NewRateSource("ftp", "", "", fallback, time.Second, nil)
	assert.Error(t, err)
}
