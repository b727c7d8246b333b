package writers

// Output formats.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatYAML  = "yaml"
)

// TSVHeader is the canonical header row for text/TSV outputs.
const TSVHeader = "recognition\tsequence\tstem1\tstem2\tquencher\tratio\tunknown\tbinding_constant\tfolds\tlowest_energy"
