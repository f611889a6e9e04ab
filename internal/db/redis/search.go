package redis

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
)

// defaultLimit mirrors FT.SEARCH's own default page size.
const defaultLimit = 10

// Search runs a single scored FT.SEARCH. It never retries.
func (s *Store) Search(ctx context.Context, cmd *db.SearchCommand) (*db.SearchResult, error) {
	if cmd.Index == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if cmd.Body.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	args, err := buildSearchArgs(cmd)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Status: http.StatusBadRequest, Err: err}
	}

	raw, err := s.do(ctx, s.b().Arbitrary("FT.SEARCH").Args(args...).Build()).ToArray()
	if err != nil {
		return nil, wrapErr(db.OpSearch, err)
	}

	return parseScoredResult(raw)
}

func buildSearchArgs(cmd *db.SearchCommand) ([]string, error) {
	body := cmd.Body
	args := []string{cmd.Index, body.Query, "WITHSCORES"}

	switch cmd.SearchType {
	case query.SearchTypeDFSQueryThenFetch:
		// BM25STD uses index-wide document frequencies.
		args = append(args, "SCORER", "BM25STD")
	case query.SearchTypeQueryThenFetch, "":
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedSearchType, cmd.SearchType)
	}

	if len(body.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(body.ReturnFields)))
		args = append(args, body.ReturnFields...)
	}

	if body.SortBy != "" {
		order := "ASC"
		if body.SortDesc {
			order = "DESC"
		}
		args = append(args, "SORTBY", body.SortBy, order)
	}

	limit := body.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	args = append(args, "LIMIT", strconv.Itoa(max(0, body.Offset)), strconv.Itoa(limit))

	if len(body.Params) > 0 {
		keys := make([]string, 0, len(body.Params))
		for k := range body.Params {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		args = append(args, "PARAMS", strconv.Itoa(len(keys)*2))
		for _, k := range keys {
			args = append(args, k, body.Params[k])
		}
	}

	return append(args, "DIALECT", "2"), nil
}

// parseScoredResult parses a WITHSCORES reply.
func parseScoredResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/3)
	// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Score:  score,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		k, err := fields[j].ToString()
		if err != nil {
			continue
		}
		v, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[k] = v
	}
	return m
}
