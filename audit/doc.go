// Package audit records classified request failures to an append-only sink.
//
// Recording is best effort: Logger.Record makes one attempt per record,
// never returns an error and never panics. Sink failures are reported on
// the operational logger and the record is dropped.
//
// # Configuration
//
//	audit:
//	  sink: "file"        # file | redis | multi | stdout
//	  path: "error.log"
//	  stream: "audit:failures"
//	  max_len: 100000
package audit
