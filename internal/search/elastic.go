// Package search keeps documentation sections in an Elasticsearch index and
// answers substring lookups from it.
package search

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"docvoice/internal/models"
	"docvoice/internal/storage"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
)

//go:embed schema.json
var schemaJSON []byte

type Client struct {
	es    *elasticsearch.Client
	index string
}

func NewClient(address, index string) (*Client, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{address},
	}
	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{
		es:    es,
		index: index,
	}, nil
}

func (c *Client) Index() string { return c.index }

// InitIndex creates the index unless it already exists.
func (c *Client) InitIndex(ctx context.Context) error {
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil // already exists
	}
	return c.createIndex(ctx)
}

// ResetIndex drops the index and creates it empty.
func (c *Client) ResetIndex(ctx context.Context) error {
	res, err := c.es.Indices.Delete([]string{c.index}, c.es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("error deleting index: %s", res.String())
	}
	return c.createIndex(ctx)
}

func (c *Client) createIndex(ctx context.Context) error {
	res, err := c.es.Indices.Create(
		c.index,
		c.es.Indices.Create.WithBody(bytes.NewReader(schemaJSON)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index: %s", res.String())
	}
	return nil
}

func (c *Client) IndexSection(ctx context.Context, s models.Section) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      c.index,
		DocumentID: strconv.FormatInt(s.ID, 10),
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing: %s", res.String())
	}

	return nil
}

// NewBulkIndexer returns an indexer writing to this client's index.
func (c *Client) NewBulkIndexer(workers int) (esutil.BulkIndexer, error) {
	return esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         c.index,
		Client:        c.es,
		NumWorkers:    workers,
		FlushBytes:    5 * 1024 * 1024,
		FlushInterval: 1 * time.Second,
	})
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.Section `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// FindSections returns up to limit sections whose title or content contains
// substr, ignoring case, in ID order.
func (c *Client) FindSections(ctx context.Context, substr string, limit int) ([]models.Section, error) {
	body, err := json.Marshal(findQuery(substr, limit))
	if err != nil {
		return nil, err
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error searching: %s", res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	sections := make([]models.Section, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		sections = append(sections, hit.Source)
	}
	return sections, nil
}

func (c *Client) GetSection(ctx context.Context, id int64) (models.Section, error) {
	res, err := c.es.Get(c.index, strconv.FormatInt(id, 10), c.es.Get.WithContext(ctx))
	if err != nil {
		return models.Section{}, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return models.Section{}, storage.ErrNotFound
	}
	if res.IsError() {
		return models.Section{}, fmt.Errorf("error fetching section %d: %s", id, res.String())
	}

	var doc struct {
		Source models.Section `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return models.Section{}, fmt.Errorf("decode section %d: %w", id, err)
	}
	return doc.Source, nil
}

func findQuery(substr string, limit int) map[string]any {
	pattern := "*" + escapeWildcard(substr) + "*"
	wildcard := func(field string) map[string]any {
		return map[string]any{
			"wildcard": map[string]any{
				field: map[string]any{"value": pattern, "case_insensitive": true},
			},
		}
	}

	q := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"should":               []any{wildcard("title"), wildcard("content")},
				"minimum_should_match": 1,
			},
		},
		"sort": []any{map[string]any{"id": "asc"}},
	}
	if limit > 0 {
		q["size"] = limit
	}
	return q
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}
