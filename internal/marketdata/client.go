package marketdata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client fetches historical price data from a Yahoo-Finance-compatible chart
// API. It implements Provider.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new market data client for the given base URL
// (e.g. "https://query1.finance.yahoo.com").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// chartResponse maps the chart API response format: nested result objects with
// parallel timestamp and close-price arrays, plus an optional error string.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency string `json:"currency"`
				Symbol   string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *string `json:"error"`
	} `json:"chart"`
}

// FetchHistory returns daily closing quotes for the ticker between from and
// to, inclusive, ascending by date.
func (c *Client) FetchHistory(ticker string, from, to time.Time) ([]DayQuote, error) {
	url := fmt.Sprintf(
		"%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL,
		ticker,
		from.Unix(),
		to.Unix(),
	)

	response, err := c.queryChart(url)
	if err != nil {
		return nil, err
	}

	return parseQuotes(response)
}

// ValidateTicker checks the ticker against the provider by requesting the
// last five days of data. An unknown-ticker response yields (false, nil);
// transport failures are returned as errors.
func (c *Client) ValidateTicker(ticker string) (bool, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", c.baseURL, ticker)

	_, err := c.queryChart(url)
	if errors.Is(err, ErrTickerNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// parseQuotes validates and flattens a chart response into DayQuotes.
func parseQuotes(response chartResponse) ([]DayQuote, error) {
	result := response.Chart.Result[0]

	if len(result.Timestamp) == 0 {
		return []DayQuote{}, nil
	}
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no close prices returned")
	}
	closes := result.Indicators.Quote[0].Close
	if len(closes) != len(result.Timestamp) {
		return nil, fmt.Errorf("mismatched data lengths")
	}

	quotes := make([]DayQuote, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		quotes[i] = DayQuote{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Close: closes[i],
		}
	}

	return quotes, nil
}

// queryChart executes a chart API request and checks for API-level errors.
func (c *Client) queryChart(url string) (chartResponse, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return chartResponse{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chartResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return chartResponse{}, ErrTickerNotFound
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return chartResponse{}, err
	}

	var response chartResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return chartResponse{}, err
	}

	if response.Chart.Error != nil {
		return response, fmt.Errorf("chart API error: %s", *response.Chart.Error)
	}

	if len(response.Chart.Result) == 0 {
		return chartResponse{}, ErrTickerNotFound
	}

	return response, nil
}
