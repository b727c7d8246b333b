// Package server is the search daemon. A feeder claims requests from the
// work queue, a pool of workers runs one search per request, and a
// collector publishes each outcome on an in-process pub/sub topic whose
// subscriber writes the result files.
package server
