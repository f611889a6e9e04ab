package search

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
)

func TestSearch_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchFn = func(_ context.Context, cmd *db.SearchCommand) (*db.SearchResult, error) {
		if cmd.Index != "places" {
			t.Errorf("unexpected index: %s", cmd.Index)
		}
		if cmd.SearchType != query.SearchTypeDFSQueryThenFetch {
			t.Errorf("unexpected search type: %s", cmd.SearchType)
		}
		if cmd.Body.Query != "@name:(berlin)" {
			t.Errorf("unexpected query: %s", cmd.Body.Query)
		}
		return &db.SearchResult{
			Total: 7,
			Entries: []db.SearchEntry{
				{Key: "docsearch:place:101", Score: 4.2, Fields: map[string]string{"name": "Berlin"}},
				{Key: "docsearch:place:102", Score: 1.1, Fields: map[string]string{"name": "Berlin, NH"}},
			},
		}, nil
	}

	docs, meta, err := repo.Search(context.Background(), "places",
		query.SearchTypeDFSQueryThenFetch, query.Body{Query: "@name:(berlin)"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}
	if docs[0].ID != "101" {
		t.Errorf("expected ID 101, got %s", docs[0].ID)
	}
	if docs[1].Field("name") != "Berlin, NH" {
		t.Errorf("unexpected source: %v", docs[1].Source)
	}
	scores, ok := meta[MetaScores].([]float64)
	if !ok || len(scores) != 2 || scores[0] != 4.2 {
		t.Errorf("unexpected scores: %v", meta[MetaScores])
	}
	if meta[MetaTotal] != 7 {
		t.Errorf("unexpected total: %v", meta[MetaTotal])
	}
}

func TestSearch_NoHits(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(context.Context, *db.SearchCommand) (*db.SearchResult, error) {
		return &db.SearchResult{}, nil
	}

	docs, meta, err := repo.Search(context.Background(), "places", "", query.Body{Query: "*"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if docs != nil || meta != nil {
		t.Errorf("expected nil docs and meta, got %v %v", docs, meta)
	}
}

func TestSearch_ErrorKeepsStatus(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(context.Context, *db.SearchCommand) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Status: http.StatusRequestTimeout, Err: errors.New("deadline")}
	}

	_, _, err := repo.Search(context.Background(), "places", "", query.Body{Query: "*"})
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected wrapped db.Error, got %v", err)
	}
	if dbErr.StatusCode() != http.StatusRequestTimeout {
		t.Errorf("status = %d", dbErr.StatusCode())
	}
}

func TestEnsureIndex_Exists(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error {
		t.Error("CreateIndex must not be called for an existing index")
		return nil
	}

	created, err := repo.EnsureIndex(context.Background(), "places")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected created=false")
	}
}

func TestEnsureIndex_Creates(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(context.Context, string) (bool, error) { return false, nil }

	var got *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		got = def
		return nil
	}

	created, err := repo.EnsureIndex(context.Background(), "places")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected created=true")
	}
	if got == nil || got.Name != "places" || got.Prefixes[0] != "docsearch:place:" {
		t.Fatalf("unexpected definition: %+v", got)
	}
	if len(got.Fields) != 7 {
		t.Errorf("expected 7 fields, got %d", len(got.Fields))
	}
}

func TestEnsureIndex_RaceLost(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(context.Context, string) (bool, error) { return false, nil }
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error { return db.ErrIndexExists }

	created, err := repo.EnsureIndex(context.Background(), "places")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected created=false")
	}
}

func TestEnsureIndex_ProbeError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(context.Context, string) (bool, error) { return false, errors.New("down") }

	if _, err := repo.EnsureIndex(context.Background(), "places"); err == nil {
		t.Fatal("expected error")
	}
}
