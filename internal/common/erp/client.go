// Package erp is a thin OData v4 client for the ERP web services.
package erp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"solar-advisor/internal/common/config"
	"solar-advisor/internal/common/httpclient"
)

const (
	EntityCustomers    = "Customer_Card"
	EntityItems        = "ItemsAPI"
	EntitySalespersons = "Salesperson_Purchaser_Card"
)

var (
	ErrRequestFailed = errors.New("ERP_REQUEST_FAILED")
	ErrNotFound      = errors.New("ERP_RECORD_NOT_FOUND")
	ErrInvalidField  = errors.New("invalid search field")
	ErrInvalidEntity = errors.New("invalid entity name")
	ErrNotConfigured = errors.New("ERP base URL is not configured")
)

// CustomerSearchFields are the only fields customers may be filtered on.
var CustomerSearchFields = []string{"Phone_No", "Name", "No"}

var entityName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Record is one OData entity as returned by the ERP.
type Record = map[string]interface{}

// Client calls the ERP with basic auth.
type Client struct {
	http     *httpclient.Client
	baseURL  string
	username string
	password string
}

func NewClient(cfg config.ERPConfig, opts ...httpclient.Option) *Client {
	return &Client{
		http:     httpclient.New("erp", config.GetDuration(cfg.Timeout), cfg.MaxRetries, opts...),
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (Record, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	target := c.baseURL + "/" + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var out Record
	err := c.http.DoJSON(ctx, httpclient.Request{
		Method:   http.MethodGet,
		URL:      target,
		Username: c.username,
		Password: c.password,
	}, &out)
	if err != nil {
		if httpclient.StatusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	return out, nil
}

// FetchEntity lists an entity set with $top/$skip paging. The raw OData
// envelope is returned untouched.
func (c *Client) FetchEntity(ctx context.Context, entity string, top, skip int) (Record, error) {
	if !entityName.MatchString(entity) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEntity, entity)
	}
	q := url.Values{}
	q.Set("$top", strconv.Itoa(top))
	q.Set("$skip", strconv.Itoa(skip))
	return c.get(ctx, entity, q)
}

// FetchEntityByID reads one entity by key, e.g. id "'C00010'" for string keys.
func (c *Client) FetchEntityByID(ctx context.Context, entity, id string) (Record, error) {
	if !entityName.MatchString(entity) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEntity, entity)
	}
	return c.get(ctx, fmt.Sprintf("%s(%s)", entity, url.PathEscape(id)), nil)
}

// filter returns the "value" array of entity filtered by field eq value.
func (c *Client) filter(ctx context.Context, entity, field, value string) ([]Record, error) {
	q := url.Values{}
	q.Set("$filter", fmt.Sprintf("%s eq '%s'", field, strings.ReplaceAll(value, "'", "''")))

	envelope, err := c.get(ctx, entity, q)
	if err != nil {
		return nil, err
	}
	raw, _ := envelope["value"].([]interface{})
	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		if rec, ok := item.(map[string]interface{}); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// FindCustomers filters Customer_Card on one of CustomerSearchFields.
func (c *Client) FindCustomers(ctx context.Context, field, value string) ([]Record, error) {
	allowed := false
	for _, f := range CustomerSearchFields {
		if f == field {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	return c.filter(ctx, EntityCustomers, field, value)
}

// FindProduct returns the item whose No equals number.
func (c *Client) FindProduct(ctx context.Context, number string) (Record, error) {
	items, err := c.filter(ctx, EntityItems, "No", number)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, number)
	}
	return items[0], nil
}

// FindSalesperson returns the salesperson card registered under email.
func (c *Client) FindSalesperson(ctx context.Context, email string) (Record, error) {
	people, err := c.filter(ctx, EntitySalespersons, "E_Mail", email)
	if err != nil {
		return nil, err
	}
	if len(people) == 0 {
		return nil, fmt.Errorf("%w: salesperson %s", ErrNotFound, email)
	}
	return people[0], nil
}

// String reads a string field from a record, or "".
func String(rec Record, key string) string {
	if rec == nil {
		return ""
	}
	switch v := rec[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Number reads a numeric field from a record, or 0.
func Number(rec Record, key string) float64 {
	if rec == nil {
		return 0
	}
	switch v := rec[key].(type) {
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}
