package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fedelife/expense-extractor/internal/currencyutils"
	"fedelife/expense-extractor/internal/logging"
	"fedelife/expense-extractor/internal/xmlutils"

	"github.com/shopspring/decimal"
)

// Source kinds accepted by NewRateSource.
const (
	SourceJSON   = "json"
	SourceXML    = "xml"
	SourceStatic = "static"
)

const maxRateBody = 1 << 20

// HTTPJSONSource reads a JSON rate document such as {"rates": {"UYU": 40.12}} or {"rate": 40.12}.
type HTTPJSONSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPJSONSource builds a JSON source with a client timeout.
func NewHTTPJSONSource(url string, timeout time.Duration) *HTTPJSONSource {
	return &HTTPJSONSource{URL: url, Client: &http.Client{Timeout: timeout}}
}

func (s *HTTPJSONSource) Name() string { return "json:" + s.URL }

type rateDocument struct {
	Rate  json.Number            `json:"rate"`
	Rates map[string]json.Number `json:"rates"`
}

// FetchRate downloads the document and reads the rate for `to`.
func (s *HTTPJSONSource) FetchRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	body, err := fetch(ctx, s.Client, s.URL)
	if err != nil {
		return decimal.Zero, err
	}
	defer body.Close()

	dec := json.NewDecoder(body)
	dec.UseNumber()
	var doc rateDocument
	if err := dec.Decode(&doc); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode rate document: %w", err)
	}

	raw := doc.Rate
	for code, value := range doc.Rates {
		if strings.EqualFold(code, to) {
			raw = value
			break
		}
	}
	if raw == "" {
		return decimal.Zero, fmt.Errorf("no %s rate in document", to)
	}
	rate, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid rate %q: %w", raw.String(), err)
	}
	return rate, nil
}

// XMLSource reads a rate from an XML feed with an XPath template; {from} and {to}
// are replaced by the currency codes.
type XMLSource struct {
	URL    string
	XPath  string
	Client *http.Client
}

// NewXMLSource builds an XML source with a client timeout.
func NewXMLSource(url, xpath string, timeout time.Duration) *XMLSource {
	return &XMLSource{URL: url, XPath: xpath, Client: &http.Client{Timeout: timeout}}
}

func (s *XMLSource) Name() string { return "xml:" + s.URL }

// FetchRate downloads the feed and evaluates the XPath.
func (s *XMLSource) FetchRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	body, err := fetch(ctx, s.Client, s.URL)
	if err != nil {
		return decimal.Zero, err
	}
	defer body.Close()

	root, err := xmlutils.ParseXML(body)
	if err != nil {
		return decimal.Zero, err
	}
	value, err := xmlutils.FirstValue(root, xmlutils.ExpandXPath(s.XPath, from, to))
	if err != nil {
		return decimal.Zero, err
	}
	return currencyutils.ParseAmount(value)
}

// StaticSource always answers with Rate, or Err when set.
type StaticSource struct {
	Rate decimal.Decimal
	Err  error
}

func (s StaticSource) Name() string { return SourceStatic }

func (s StaticSource) FetchRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	return s.Rate, s.Err
}

// NewRateSource builds the source named by kind. The static kind answers with the
// fallback rate, which leaves the session unchanged.
func NewRateSource(kind, url, xpath string, fallback decimal.Decimal, timeout time.Duration, logger logging.Logger) (RateSource, error) {
	logging.OrDefault(logger).Debug("Configuring exchange rate source",
		logging.F(logging.FieldSource, kind))
	switch kind {
	case SourceJSON:
		return NewHTTPJSONSource(url, timeout), nil
	case SourceXML:
		if xpath == "" {
			return nil, fmt.Errorf("xml rate source needs an XPath")
		}
		return NewXMLSource(url, xpath, timeout), nil
	case SourceStatic:
		return StaticSource{Rate: fallback}, nil
	default:
		return nil, fmt.Errorf("unknown rate source %q", kind)
	}
}

func fetch(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return struct {
		io.Reader
		io.Closer
	}{io.LimitReader(resp.Body, maxRateBody), resp.Body}, nil
}
