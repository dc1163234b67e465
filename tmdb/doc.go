// Package tmdb provides a client for the TMDB movie discovery API.
//
// The client issues one request per category and page against
// /discover/movie and maps the response onto catalog.Page. It implements
// catalog.Fetcher and is safe for concurrent use: requests share only the
// http.Client and a rate limiter, both of which are concurrency-safe.
//
// # Usage
//
//	logger := zerolog.New(os.Stdout)
//	client, err := tmdb.NewClient(
//		"https://api.themoviedb.org/3",
//		"your-api-key",
//		logger,
//		tmdb.WithTimeout(15*time.Second),
//		tmdb.WithLanguage("en-US"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	page, err := client.FetchPage(ctx, catalog.Popular, 1)
//
// # Error Handling
//
// Every failure of FetchPage is returned as a *FetchError naming the
// category and page. Non-2xx responses additionally wrap an *APIError:
//
//	var apiErr *tmdb.APIError
//	if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
//		// Handle bad credentials
//	}
package tmdb
