// Package docsearch is an in-process Go client for the docsearch place index
// stored in Redis with the query engine loaded.
//
// It runs the same query execution controller as the HTTP service: backend
// timeouts are retried a bounded number of times with a fixed delay.
//
//	client, _ := docsearch.New(ctx,
//	    docsearch.WithRedis("localhost:6379", ""),
//	    docsearch.WithRequestRetries(3),
//	)
//	defer client.Close()
//	res, _ := client.Search(ctx, docsearch.SearchRequest{
//	    Text:    "brandenburger tor",
//	    Country: "DEU",
//	    Size:    5,
//	})
package docsearch
