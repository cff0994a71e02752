package insightvm

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Сканер отдаёт не больше 500 записей на страницу; больший size он
// отклоняет с 422, поэтому режем на своей стороне.
const maxPageSize = 500

type Config struct {
	BaseURL  string // например https://console.local:3780/api/3
	Username string
	Password string
	Timeout  time.Duration

	// консоль сканера обычно живёт на self-signed сертификате
	SkipTLSVerify bool
}

type Client struct {
	baseURL string
	auth    string
	http    *http.Client
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{}
	if cfg.SkipTLSVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	creds := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		auth:    "Basic " + creds,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// TestConnection проверяет доступность сканера и возвращает сведения о сервере.
func (c *Client) TestConnection(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "administration/info", nil, nil)
}

func (c *Client) Assets(ctx context.Context, page, size int) (*AssetPage, error) {
	raw, err := c.do(ctx, http.MethodGet, "assets", pageQuery(page, size), nil)
	if err != nil {
		return nil, err
	}
	return decodeAssetPage(raw)
}

func (c *Client) SiteAssets(ctx context.Context, siteID, page, size int) (*AssetPage, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("sites/%d/assets", siteID), pageQuery(page, size), nil)
	if err != nil {
		return nil, err
	}
	return decodeAssetPage(raw)
}

func (c *Client) Sites(ctx context.Context, page, size int) (*SitePage, error) {
	raw, err := c.do(ctx, http.MethodGet, "sites", pageQuery(page, size), nil)
	if err != nil {
		return nil, err
	}
	var sp SitePage
	if err := json.Unmarshal(raw, &sp); err != nil {
		return nil, &APIError{Kind: ErrMalformedResponse, Message: fmt.Sprintf("unexpected site listing shape: %v", err)}
	}
	return &sp, nil
}

func (c *Client) AssetVulnerabilities(ctx context.Context, assetID int64, page, size int) (*FindingPage, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("assets/%d/vulnerabilities", assetID), pageQuery(page, size), nil)
	if err != nil {
		return nil, err
	}
	var fp FindingPage
	if err := json.Unmarshal(raw, &fp); err != nil {
		return nil, &APIError{Kind: ErrMalformedResponse, Message: fmt.Sprintf("unexpected vulnerability listing shape: %v", err)}
	}
	return &fp, nil
}

// SearchAssetsByIP ищет активы сканера с точным совпадением IP.
func (c *Client) SearchAssetsByIP(ctx context.Context, ip string) ([]Asset, error) {
	body := searchRequest{
		Match:   "all",
		Filters: []searchFilter{{Field: "ip-address", Operator: "is", Value: ip}},
	}
	raw, err := c.do(ctx, http.MethodPost, "assets/search", nil, body)
	if err != nil {
		return nil, err
	}
	ap, err := decodeAssetPage(raw)
	if err != nil {
		return nil, err
	}
	return ap.Resources, nil
}

// StartAssetScan запускает на сайте скан перечисленных активов.
func (c *Client) StartAssetScan(ctx context.Context, siteID int, name string, assetIDs []int64) (*ScanRef, error) {
	if name == "" {
		name = "Asset_Scan_" + time.Now().Format("20060102_150405")
	}
	body := map[string]interface{}{
		"name":   name,
		"assets": assetIDs,
	}
	raw, err := c.do(ctx, http.MethodPost, fmt.Sprintf("sites/%d/scans", siteID), nil, body)
	if err != nil {
		return nil, err
	}
	var ref ScanRef
	if err := json.Unmarshal(raw, &ref); err != nil {
		return nil, &APIError{Kind: ErrMalformedResponse, Message: fmt.Sprintf("unexpected scan start response: %v", err)}
	}
	return &ref, nil
}

// Scan возвращает текущее состояние запущенного скана.
func (c *Client) Scan(ctx context.Context, scanID int64) (*ScanInfo, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("scans/%d", scanID), nil, nil)
	if err != nil {
		return nil, err
	}
	var info ScanInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, &APIError{Kind: ErrMalformedResponse, Message: fmt.Sprintf("unexpected scan status shape: %v", err)}
	}
	return &info, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (json.RawMessage, error) {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &APIError{Kind: ErrInvalidRequest, Message: fmt.Sprintf("failed to encode request body: %v", err)}
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, &APIError{Kind: ErrConnectionFailed, Message: fmt.Sprintf("failed to build request: %v", err)}
	}
	req.Header.Set("Authorization", c.auth)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &APIError{Kind: ErrTimeout, Message: "scanner request timed out"}
		}
		return nil, &APIError{Kind: ErrConnectionFailed, Message: fmt.Sprintf("failed to connect to scanner: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: ErrConnectionFailed, Message: fmt.Sprintf("failed to read scanner response: %v", err), StatusCode: resp.StatusCode}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &APIError{Kind: ErrUnauthorized, Message: "invalid scanner credentials or unauthorized access", StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusForbidden:
		return nil, &APIError{Kind: ErrForbidden, Message: "insufficient permissions for this scanner operation", StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusNotFound:
		return nil, &APIError{Kind: ErrNotFound, Message: "scanner resource not found", StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, &APIError{Kind: ErrInvalidRequest, Message: upstreamMessage(raw, "invalid request parameters"), StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &APIError{Kind: ErrRateLimited, Message: "scanner API rate limit exceeded", StatusCode: resp.StatusCode}
	case resp.StatusCode >= 500:
		return nil, &APIError{Kind: ErrUpstreamUnavailable, Message: fmt.Sprintf("scanner API server error: %d", resp.StatusCode), StatusCode: resp.StatusCode}
	case resp.StatusCode >= 400:
		return nil, &APIError{Kind: ErrInvalidRequest, Message: upstreamMessage(raw, http.StatusText(resp.StatusCode)), StatusCode: resp.StatusCode}
	}

	if len(raw) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, &APIError{Kind: ErrMalformedResponse, Message: "scanner returned a non-JSON response", StatusCode: resp.StatusCode}
	}
	return raw, nil
}

func decodeAssetPage(raw json.RawMessage) (*AssetPage, error) {
	var ap AssetPage
	if err := json.Unmarshal(raw, &ap); err != nil {
		return nil, &APIError{Kind: ErrMalformedResponse, Message: fmt.Sprintf("unexpected asset listing shape: %v", err)}
	}
	return &ap, nil
}

func pageQuery(page, size int) url.Values {
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > maxPageSize {
		size = maxPageSize
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	return q
}

// вычленяет message из тела ошибки сканера, если оно есть
func upstreamMessage(raw []byte, fallback string) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return fallback
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
