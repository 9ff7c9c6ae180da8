// Package vectorstore serves k-nearest-neighbour product search from an
// Elasticsearch dense_vector index.
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"solar-advisor/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const vectorField = "embedding"

var (
	ErrSearchFailed  = errors.New("VECTOR_SEARCH_FAILED")
	ErrIndexNotFound = errors.New("INDEX_NOT_FOUND")
	ErrBulkFailed    = errors.New("BULK_INDEX_FAILED")
)

// Searcher returns the topK nearest products to vector.
type Searcher interface {
	Search(ctx context.Context, vector []float32, topK int) ([]models.CandidateMatch, error)
}

// Document is one indexed product description.
type Document struct {
	ID         string    `json:"-"`
	SystemName string    `json:"system_name"`
	ModelCode  string    `json:"model_code"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding"`
}

type Store struct {
	client     *elasticsearch.Client
	index      string
	dimensions int
}

var _ Searcher = (*Store)(nil)

func NewStore(client *elasticsearch.Client, index string, dimensions int) *Store {
	return &Store{client: client, index: index, dimensions: dimensions}
}

type knnQuery struct {
	Field         string    `json:"field"`
	QueryVector   []float32 `json:"query_vector"`
	K             int       `json:"k"`
	NumCandidates int       `json:"num_candidates"`
}

type searchBody struct {
	KNN    knnQuery `json:"knn"`
	Size   int      `json:"size"`
	Source struct {
		Excludes []string `json:"excludes"`
	} `json:"_source"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string                 `json:"_id"`
			Score  float64                `json:"_score"`
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs an approximate kNN query. Hits come back in the index's own
// descending score order; the stored vector is not returned.
func (s *Store) Search(ctx context.Context, vector []float32, topK int) ([]models.CandidateMatch, error) {
	if topK <= 0 {
		topK = 5
	}
	numCandidates := topK * 10
	if numCandidates < 50 {
		numCandidates = 50
	}

	body := searchBody{
		KNN:  knnQuery{Field: vectorField, QueryVector: vector, K: topK, NumCandidates: numCandidates},
		Size: topK,
	}
	body.Source.Excludes = []string{vectorField}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(payload),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, s.index)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchFailed, res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrSearchFailed, err)
	}

	matches := make([]models.CandidateMatch, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		matches = append(matches, models.CandidateMatch{
			ID:       hit.ID,
			Score:    hit.Score,
			Metadata: hit.Source,
		})
	}
	return matches, nil
}

// EnsureIndex creates the index with a cosine dense_vector mapping when it
// does not exist yet.
func (s *Store) EnsureIndex(ctx context.Context) (created bool, err error) {
	exists, err := esapi.IndicesExistsRequest{Index: []string{s.index}}.Do(ctx, s.client)
	if err != nil {
		return false, fmt.Errorf("check index: %w", err)
	}
	exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return false, nil
	}

	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"system_name": map[string]interface{}{"type": "keyword"},
				"model_code":  map[string]interface{}{"type": "keyword"},
				"text":        map[string]interface{}{"type": "text"},
				vectorField: map[string]interface{}{
					"type":       "dense_vector",
					"dims":       s.dimensions,
					"index":      true,
					"similarity": "cosine",
				},
			},
		},
	}
	payload, err := json.Marshal(mapping)
	if err != nil {
		return false, err
	}

	res, err := esapi.IndicesCreateRequest{Index: s.index, Body: bytes.NewReader(payload)}.Do(ctx, s.client)
	if err != nil {
		return false, fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return false, fmt.Errorf("create index: %s", res.String())
	}
	return true, nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// BulkIndex upserts docs in a single _bulk request and refreshes the index.
func (s *Store) BulkIndex(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		meta := map[string]interface{}{"index": map[string]interface{}{"_index": s.index, "_id": doc.ID}}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}

	res, err := esapi.BulkRequest{Body: &buf, Refresh: "true"}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBulkFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrBulkFailed, res.String())
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrBulkFailed, err)
	}
	if !parsed.Errors {
		return nil
	}

	var failures []string
	for _, item := range parsed.Items {
		for _, result := range item {
			if result.Error != nil {
				failures = append(failures, fmt.Sprintf("%s: %s", result.ID, result.Error.Reason))
			}
		}
	}
	return fmt.Errorf("%w: %s", ErrBulkFailed, strings.Join(failures, "; "))
}
