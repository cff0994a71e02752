package insightvm

import "fmt"

type ErrorKind string

const (
	ErrUnauthorized        ErrorKind = "unauthorized"
	ErrForbidden           ErrorKind = "forbidden"
	ErrNotFound            ErrorKind = "not_found"
	ErrInvalidRequest      ErrorKind = "invalid_request"
	ErrRateLimited         ErrorKind = "rate_limited"
	ErrUpstreamUnavailable ErrorKind = "upstream_unavailable"
	ErrTimeout             ErrorKind = "timeout"
	ErrConnectionFailed    ErrorKind = "connection_failed"
	ErrMalformedResponse   ErrorKind = "malformed_response"
)

// APIError — единый вид ошибки клиента: транспортные сбои и ответы
// сканера сводятся к набору различимых kind'ов.
type APIError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("insightvm: %s: %s", e.Kind, e.Message)
}

// Page — пагинационный блок ответов сканера.
type Page struct {
	Number         int `json:"number"`
	Size           int `json:"size"`
	TotalResources int `json:"totalResources"`
	TotalPages     int `json:"totalPages"`
}

type Asset struct {
	ID       int64  `json:"id"`
	IP       string `json:"ip"`
	HostName string `json:"hostName"`
	OS       string `json:"os"`
	SiteID   int    `json:"siteId"`
}

type AssetPage struct {
	Page      Page    `json:"page"`
	Resources []Asset `json:"resources"`
}

type Site struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Assets      int    `json:"assets"`
}

type SitePage struct {
	Page      Page   `json:"page"`
	Resources []Site `json:"resources"`
}

// Finding — уязвимость актива в выдаче сканера.
type Finding struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Severity    string  `json:"severity"`
	CVSSScore   float64 `json:"cvssScore"`
}

type FindingPage struct {
	Page      Page      `json:"page"`
	Resources []Finding `json:"resources"`
}

// ScanRef — ответ сканера на запуск скана.
type ScanRef struct {
	ID int64 `json:"id"`
}

// ScanInfo — состояние скана на стороне сканера.
type ScanInfo struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type searchFilter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value,omitempty"`
}

type searchRequest struct {
	Match   string         `json:"match"`
	Filters []searchFilter `json:"filters"`
}
