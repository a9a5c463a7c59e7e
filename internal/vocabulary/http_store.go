package vocabulary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPStore implements Store against a remote vocabulary service.
//
//	GET /vocabularies/{id}      -> Item
//	GET /vocabularies?ids=1,2,3 -> {"items": [Item, ...]}
type HTTPStore struct {
	client *resty.Client
}

type itemsResponse struct {
	Items []Item `json:"items"`
}

// NewHTTPStore creates an HTTPStore. apiKey is sent as a bearer token when not empty.
func NewHTTPStore(baseURL, apiKey string, timeout time.Duration) *HTTPStore {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &HTTPStore{client: client}
}

// GetItem fetches a single item.
func (s *HTTPStore) GetItem(ctx context.Context, id int64) (*Item, error) {
	res, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		Get("/vocabularies/{id}")
	if err != nil {
		return nil, fmt.Errorf("client.R.Get(vocabulary %d) > %w", id, err)
	}
	if res.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("get vocabulary %d: %w", id, ErrItemNotFound)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("get vocabulary %d: status code: %d, body: %s", id, res.StatusCode(), string(res.Body()))
	}

	var item Item
	if err := json.Unmarshal(res.Body(), &item); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(vocabulary %d) > %w", id, err)
	}
	return &item, nil
}

// GetItems fetches the items in one request.
func (s *HTTPStore) GetItems(ctx context.Context, ids []int64) (map[int64]Item, error) {
	result := make(map[int64]Item, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	params := make([]string, 0, len(ids))
	for _, id := range ids {
		params = append(params, strconv.FormatInt(id, 10))
	}
	res, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("ids", strings.Join(params, ",")).
		Get("/vocabularies")
	if err != nil {
		return nil, fmt.Errorf("client.R.Get(vocabularies) > %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("get vocabularies: status code: %d, body: %s", res.StatusCode(), string(res.Body()))
	}

	var body itemsResponse
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(vocabularies) > %w", err)
	}
	for _, item := range body.Items {
		result[item.ID] = item
	}
	return result, nil
}
