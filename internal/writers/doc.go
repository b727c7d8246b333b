// Package writers turns search results into serialized outputs.
//
// Writers own all presentation knowledge (TSV rows, pretty fold tables,
// JSON/JSONL/YAML) and the solution files the daemon leaves in a request's
// output directory. JSON, JSONL and YAML go through pkg/api (v1) for a
// stable wire format.
package writers
