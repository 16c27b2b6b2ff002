package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/account-service/internal/domain/entity"
	repo "github.com/oksasatya/account-service/internal/domain/repository"
	"github.com/oksasatya/account-service/pkg/helpers"
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 50
)

const profileIndexMapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "keyword"},
      "name":       {"type": "text"},
      "gender":     {"type": "keyword"},
      "created_at": {"type": "date"},
      "profile": {
        "properties": {
          "username":            {"type": "text", "fields": {"raw": {"type": "keyword"}}},
          "bio":                 {"type": "text"},
          "location":            {"type": "text"},
          "profile_picture_url": {"type": "keyword", "index": false},
          "reputation":          {"type": "integer"}
        }
      }
    }
  }
}`

// EnsureSearchIndex creates the profiles index when it does not exist yet.
func (s *Service) EnsureSearchIndex(ctx context.Context) error {
	if s.ES == nil {
		return nil
	}
	created, err := helpers.ESEnsureIndex(ctx, s.ES, s.Settings.ESIndex, profileIndexMapping)
	if err != nil {
		return err
	}
	if created {
		s.Logger.WithField("index", s.Settings.ESIndex).Info("profiles index created")
	}
	return nil
}

// IndexProfile writes the public view of u to the profiles index.
// Users without a username are not searchable and are skipped.
func (s *Service) IndexProfile(ctx context.Context, u *entity.User) error {
	if s.ES == nil || u.Profile.Username == "" {
		return nil
	}
	b, err := json.Marshal(NewPublicProfile(u))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: s.Settings.ESIndex, DocumentID: u.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		return fmt.Errorf("index profile: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index profile: %s", res.Status())
	}
	return nil
}

// HandleProfileEvent indexes the user named by a queued ProfileEvent.
// Events for users that no longer exist are dropped.
func (s *Service) HandleProfileEvent(ctx context.Context, body []byte) error {
	var ev ProfileEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("decode profile event: %w", err)
	}
	u, err := s.Repo.FindByID(ctx, ev.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.Logger.WithField("user_id", ev.UserID).Warn("profile event for unknown user dropped")
			return nil
		}
		return err
	}
	if err := s.IndexProfile(ctx, u); err != nil {
		return err
	}
	s.Logger.WithField("user_id", u.ID).WithField("type", ev.Type).Debug("profile indexed")
	return nil
}

// SearchProfiles runs a multi_match query over the indexed public views.
// Without Elasticsearch it returns an empty list.
func (s *Service) SearchProfiles(ctx context.Context, q string, size int) ([]PublicProfile, error) {
	if s.ES == nil {
		return []PublicProfile{}, nil
	}
	if size <= 0 {
		size = defaultSearchSize
	}
	if size > maxSearchSize {
		size = maxSearchSize
	}

	var query map[string]any
	if q = strings.TrimSpace(q); q == "" {
		query = map[string]any{"match_all": map[string]any{}}
	} else {
		query = map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"profile.username^2", "name", "profile.bio", "profile.location"},
			},
		}
	}
	b, err := json.Marshal(map[string]any{"query": query, "size": size})
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.Settings.ESIndex),
		s.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.IsError() {
		return nil, fmt.Errorf("search profiles: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source PublicProfile `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]PublicProfile, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
