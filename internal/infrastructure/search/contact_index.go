package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-contacts-api/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// ContactIndex mirrors contacts into Elasticsearch. Every query carries an
// owner_id term filter.
type ContactIndex struct {
	ES        *elasticsearch.Client
	IndexName string
}

func NewContactIndex(es *elasticsearch.Client, index string) *ContactIndex {
	return &ContactIndex{ES: es, IndexName: index}
}

type contactDoc struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	UpdatedAt   string `json:"updated_at"`
}

const mapping = `{
  "mappings": {
    "properties": {
      "id":            {"type": "keyword"},
      "owner_id":      {"type": "keyword"},
      "name":          {"type": "text"},
      "surname":       {"type": "text"},
      "email":         {"type": "text", "analyzer": "simple"},
      "mobile":        {"type": "keyword"},
      "date_of_birth": {"type": "date"},
      "updated_at":    {"type": "date"}
    }
  }
}`

func responseError(res *esapi.Response) error {
	return fmt.Errorf("elasticsearch: %s", res.Status())
}

// EnsureIndex creates the index with its mapping when it does not exist.
func (x *ContactIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.ES.Indices.Exists([]string{x.IndexName}, x.ES.Indices.Exists.WithContext(c))
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	res, err = x.ES.Indices.Create(x.IndexName,
		x.ES.Indices.Create.WithContext(c),
		x.ES.Indices.Create.WithBody(strings.NewReader(mapping)))
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return responseError(res)
	}
	return nil
}

func (x *ContactIndex) Index(ctx context.Context, c *entity.Contact) error {
	doc := contactDoc{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Name:      c.Name,
		Surname:   c.Surname,
		Email:     c.Email,
		Mobile:    c.Mobile,
		UpdatedAt: c.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if c.DateOfBirth != nil {
		doc.DateOfBirth = c.DateOfBirth.Format("2006-01-02")
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.IndexName, DocumentID: c.ID, Body: bytes.NewReader(b), Refresh: "false"}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(ctx, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return responseError(res)
	}
	return nil
}

// Remove deletes the document. The owner is part of the query so a foreign
// id deletes nothing; a missing document is not an error.
func (x *ContactIndex) Remove(ctx context.Context, ownerID, contactID string) error {
	q := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"owner_id": ownerID}},
					map[string]any{"term": map[string]any{"id": contactID}},
				},
			},
		},
	}
	b, _ := json.Marshal(q)
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.ES.DeleteByQuery([]string{x.IndexName}, bytes.NewReader(b), x.ES.DeleteByQuery.WithContext(ctx))
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError(res)
	}
	return nil
}

// Search runs a multi_match over the owner's contacts. Only ids and the
// indexed fields come back; callers re-read rows from the store.
func (x *ContactIndex) Search(ctx context.Context, ownerID, query string, size int) ([]entity.Contact, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	q := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"owner_id": ownerID}},
				},
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"name^2", "surname^2", "email", "mobile"},
						"fuzziness": "AUTO",
					},
				},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(q)

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.IndexName), x.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, responseError(res)
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string     `json:"_id"`
				Source contactDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.Contact, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		if h.Source.OwnerID != ownerID {
			continue
		}
		out = append(out, entity.Contact{
			ID:      h.ID,
			OwnerID: h.Source.OwnerID,
			Name:    h.Source.Name,
			Surname: h.Source.Surname,
			Email:   h.Source.Email,
			Mobile:  h.Source.Mobile,
		})
	}
	return out, nil
}
