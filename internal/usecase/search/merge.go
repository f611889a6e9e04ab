package search

import (
	"github.com/kailas-cloud/docsearch/internal/domain/search/outcome"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/pipeline"
)

// MetaQueryType is the response metadata key holding the rendered query type.
const MetaQueryType = "query_type"

// merge folds a terminal outcome into the request and returns the backend
// result count. Existing data is only replaced by a non-empty result set.
func merge(req *pipeline.Request, rendered query.Rendered, o *outcome.Outcome) int {
	if o.Err != nil {
		req.AddError(o.Err.Error())
		return 0
	}

	if len(o.Docs) > 0 {
		req.Response.Data = o.Docs
	}

	if req.Response.Meta == nil {
		req.Response.Meta = make(map[string]any, len(o.Meta)+1)
	}
	for k, v := range o.Meta {
		req.Response.Meta[k] = v
	}
	req.Response.Meta[MetaQueryType] = rendered.Type

	return len(o.Docs)
}
