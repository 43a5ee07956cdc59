package sheetsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"golang.org/x/oauth2/jwt"
)

const (
	sheetsScope    = "https://www.googleapis.com/auth/spreadsheets"
	defaultBaseURL = "https://sheets.googleapis.com"
	defaultSheet   = "Sheet1"
)

// SheetsConfig locates the spreadsheet and the service-account key.
type SheetsConfig struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
}

// serviceAccount is the subset of a service-account key file we need.
type serviceAccount struct {
	ClientEmail  string `json:"client_email"`
	PrivateKey   string `json:"private_key"`
	PrivateKeyID string `json:"private_key_id"`
	TokenURI     string `json:"token_uri"`
}

// SheetsClient reads and writes daily rows of a Google Sheet. Row 1 holds
// headers; columns A to C hold date, focus minutes and habit status.
type SheetsClient struct {
	http          *http.Client
	baseURL       string
	spreadsheetID string
	sheet         string
}

var _ Client = (*SheetsClient)(nil)

// NewSheetsClient authenticates with the service-account key in
// cfg.CredentialsFile. ctx scopes token refreshes.
func NewSheetsClient(ctx context.Context, cfg SheetsConfig) (*SheetsClient, error) {
	if cfg.SpreadsheetID == "" || cfg.CredentialsFile == "" {
		return nil, ErrNotConfigured
	}
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var sa serviceAccount
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" || sa.TokenURI == "" {
		return nil, fmt.Errorf("parse credentials: client_email, private_key and token_uri are required")
	}

	conf := &jwt.Config{
		Email:        sa.ClientEmail,
		PrivateKey:   []byte(sa.PrivateKey),
		PrivateKeyID: sa.PrivateKeyID,
		Scopes:       []string{sheetsScope},
		TokenURL:     sa.TokenURI,
	}
	return NewSheetsClientWithHTTP(conf.Client(ctx), defaultBaseURL, cfg.SpreadsheetID, cfg.SheetName), nil
}

// NewSheetsClientWithHTTP uses an already authorized HTTP client.
func NewSheetsClientWithHTTP(client *http.Client, baseURL, spreadsheetID, sheet string) *SheetsClient {
	if sheet == "" {
		sheet = defaultSheet
	}
	return &SheetsClient{
		http:          client,
		baseURL:       strings.TrimRight(baseURL, "/"),
		spreadsheetID: spreadsheetID,
		sheet:         sheet,
	}
}

type valueRange struct {
	Values [][]any `json:"values"`
}

// PullTotal returns the focus minutes recorded for date (DD-MM-YYYY).
func (c *SheetsClient) PullTotal(ctx context.Context, date string) (bool, int, error) {
	rows, err := c.rows(ctx)
	if err != nil {
		return false, 0, err
	}
	for _, r := range rows {
		if r.Date == date {
			return true, r.FocusMinutes, nil
		}
	}
	return false, 0, nil
}

// PushRow overwrites the row for row.Date, appending one if none exists.
func (c *SheetsClient) PushRow(ctx context.Context, row Row) error {
	rows, err := c.rows(ctx)
	if err != nil {
		return err
	}
	body := valueRange{Values: [][]any{{row.Date, row.FocusMinutes, row.HabitStatus}}}

	for i, r := range rows {
		if r.Date != row.Date {
			continue
		}
		// Data starts on sheet row 2.
		n := i + 2
		rng := fmt.Sprintf("%s!A%d:C%d", c.sheet, n, n)
		return c.do(ctx, http.MethodPut, c.valuesURL(rng, "")+"?valueInputOption=USER_ENTERED", body, nil)
	}
	rng := c.sheet + "!A:C"
	return c.do(ctx, http.MethodPost, c.valuesURL(rng, ":append")+"?valueInputOption=USER_ENTERED", body, nil)
}

func (c *SheetsClient) rows(ctx context.Context) ([]Row, error) {
	var vr valueRange
	if err := c.do(ctx, http.MethodGet, c.valuesURL(c.sheet+"!A2:C", ""), nil, &vr); err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(vr.Values))
	for _, v := range vr.Values {
		r := Row{HabitStatus: NotDone}
		if len(v) > 0 {
			r.Date = fmt.Sprint(v[0])
		}
		if len(v) > 1 {
			r.FocusMinutes, _ = strconv.Atoi(strings.TrimSpace(fmt.Sprint(v[1])))
		}
		if len(v) > 2 && fmt.Sprint(v[2]) != "" {
			r.HabitStatus = fmt.Sprint(v[2])
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func (c *SheetsClient) valuesURL(rng, suffix string) string {
	return fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s%s",
		c.baseURL, url.PathEscape(c.spreadsheetID), url.PathEscape(rng), suffix)
}

func (c *SheetsClient) do(ctx context.Context, method, u string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sheets %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sheets %s: status %d: %s", method, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode sheets response: %w", err)
	}
	return nil
}
