// Package enqueue provides a client for thread playlist endpoints.
//
// # Overview
//
// An enqueue server exposes the media attached to an imageboard thread as
// a JSON document:
//
//	GET /enqueue/{board}/thread/{threadId}
//
//	{
//	  "subject": "Thread subject",
//	  "webms": [
//	    {"url": "//i.example.org/g/1.webm", "filename": "1.webm", "thumbnail": "//i.example.org/g/1s.jpg"}
//	  ]
//	}
//
// The client fetches that document with context support, retries
// transient failures with exponential backoff and reports everything else
// as a typed error.
//
// # Quick Start
//
//	client, err := enqueue.NewClient(enqueue.Config{
//	    BaseURL: "http://localhost:3000",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	thread, err := client.Thread(ctx, "wsg", "123456")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, webm := range thread.Webms {
//	    fmt.Println(webm.Filename, webm.URL)
//	}
//
// Item and thumbnail URLs in the response may be relative or
// protocol-relative; the client resolves them against BaseURL.
//
// # Error Handling
//
// Non-2xx responses are returned as *Error:
//
//	var apiErr *enqueue.Error
//	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
//	    // Thread does not exist (anymore)
//	}
//
// Bodies that are not a thread document wrap ErrMalformedResponse.
//
// # Retry Logic
//
// The client retries network errors and 5xx/429 responses up to
// Config.MaxRetries attempts, doubling the delay between attempts (capped
// at 30 seconds). Context cancellation stops retries immediately.
//
// # Caching
//
// When Config.Cache is set, responses carrying an ETag or Last-Modified
// header are stored and later requests are made conditional. A 304 Not
// Modified answer is served from the cache.
package enqueue
