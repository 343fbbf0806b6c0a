package bank

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to a Plaid-style aggregation API for one linked account.
// A Client is request-scoped: it carries the access token of a single link.
type Client struct {
	baseURL     string
	clientID    string
	secret      string
	accessToken string
	httpClient  *http.Client
}

// NewClient creates a bank client for the given access token.
func NewClient(baseURL, clientID, secret, accessToken string) *Client {
	return &Client{
		baseURL:     baseURL,
		clientID:    clientID,
		secret:      secret,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

type accountsResponse struct {
	Accounts []struct {
		Name     string `json:"name"`
		Subtype  string `json:"subtype"`
		Balances struct {
			Available *float64 `json:"available"`
			Current   float64  `json:"current"`
		} `json:"balances"`
	} `json:"accounts"`
}

type transactionsResponse struct {
	Transactions []struct {
		Date   string  `json:"date"`
		Amount float64 `json:"amount"`
	} `json:"transactions"`
}

// CurrentBalance sums the available balance over all linked accounts.
// Credit-card balances count against the total; when no available balance is
// reported, the current balance is used instead.
func (c *Client) CurrentBalance() (float64, error) {
	var response accountsResponse
	if err := c.post("/accounts/balance/get", map[string]any{}, &response); err != nil {
		return 0, err
	}

	var balance float64
	for _, account := range response.Accounts {
		value := account.Balances.Current
		if account.Balances.Available != nil {
			value = *account.Balances.Available
		}
		if account.Subtype == "credit card" {
			value = -value
		}
		balance += value
	}

	return balance, nil
}

// AccountName returns the name of the first linked account.
func (c *Client) AccountName() (string, error) {
	var response accountsResponse
	if err := c.post("/accounts/get", map[string]any{}, &response); err != nil {
		return "", err
	}

	if len(response.Accounts) == 0 {
		return "", fmt.Errorf("no accounts returned")
	}

	return response.Accounts[0].Name, nil
}

// IncomeOverDays sums the positive transaction amounts over the last n days.
func (c *Client) IncomeOverDays(days int) (float64, error) {
	transactions, err := c.transactionsSince(time.Now().AddDate(0, 0, -days))
	if err != nil {
		return 0, err
	}

	var income float64
	for _, tx := range transactions.Transactions {
		if tx.Amount > 0 {
			income += tx.Amount
		}
	}

	return income, nil
}

// ExpenditureOverDays sums the negative transaction amounts over the last n days.
func (c *Client) ExpenditureOverDays(days int) (float64, error) {
	transactions, err := c.transactionsSince(time.Now().AddDate(0, 0, -days))
	if err != nil {
		return 0, err
	}

	var expenditure float64
	for _, tx := range transactions.Transactions {
		if tx.Amount < 0 {
			expenditure += tx.Amount
		}
	}

	return expenditure, nil
}

// HistorySince reconstructs the balance on each day with activity since
// start by walking the transactions backwards from the current balance.
// The result is ordered newest first, starting with today.
func (c *Client) HistorySince(start time.Time) ([]BalancePoint, error) {
	balance, err := c.CurrentBalance()
	if err != nil {
		return nil, err
	}

	transactions, err := c.transactionsSince(start)
	if err != nil {
		return nil, err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	points := []BalancePoint{{Date: today, Balance: balance}}

	for _, tx := range transactions.Transactions {
		date, err := time.Parse("2006-01-02", tx.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse transaction date: %w", err)
		}

		balance -= tx.Amount
		if points[len(points)-1].Date.Equal(date) {
			continue
		}
		points = append(points, BalancePoint{Date: date, Balance: balance})
	}

	return points, nil
}

func (c *Client) transactionsSince(start time.Time) (transactionsResponse, error) {
	body := map[string]any{
		"start_date": start.UTC().Format("2006-01-02"),
		"end_date":   time.Now().UTC().Format("2006-01-02"),
	}

	var response transactionsResponse
	if err := c.post("/transactions/get", body, &response); err != nil {
		return transactionsResponse{}, err
	}

	return response, nil
}

// ExchangePublicToken trades the short-lived public token from the link flow
// for a permanent access token and item id. Called on a Client that has no
// access token yet.
func (c *Client) ExchangePublicToken(publicToken string) (accessToken, itemID string, err error) {
	var response struct {
		AccessToken string `json:"access_token"`
		ItemID      string `json:"item_id"`
	}

	body := map[string]any{"public_token": publicToken}
	if err := c.post("/item/public_token/exchange", body, &response); err != nil {
		return "", "", err
	}

	return response.AccessToken, response.ItemID, nil
}

// InstitutionName returns the institution identifier of the linked item.
func (c *Client) InstitutionName() (string, error) {
	var response struct {
		Item struct {
			InstitutionID string `json:"institution_id"`
		} `json:"item"`
	}

	if err := c.post("/item/get", map[string]any{}, &response); err != nil {
		return "", err
	}

	return response.Item.InstitutionID, nil
}

// post executes an authenticated POST request against the aggregation API.
func (c *Client) post(path string, body map[string]any, out any) error {
	body["client_id"] = c.clientID
	body["secret"] = c.secret
	if c.accessToken != "" {
		body["access_token"] = c.accessToken
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bank provider returned status %d", resp.StatusCode)
	}

	return json.Unmarshal(data, out)
}
