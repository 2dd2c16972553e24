// Package calls provides ready-made call kinds for JSON and HTML APIs.
//
// Each kind implements call.Kind:
//
//   - GetJSON, DeleteJSON: request encoded into the query string, JSON response
//   - GetHTML: request encoded into the query string, body returned as a string
//   - PostForm: request sent as an urlencoded body, JSON response
//   - PostJSON, PutJSON: request sent as a JSON body, JSON response
//
// Query encoding follows the bracket convention for nested values
// (tags[0]=a&tags[1]=b, filter[state]=open). In raw-query mode list values are
// instead repeated verbatim (tags=a&tags=b) and Pairs keep their order and
// duplicates, which is what some APIs expect for multi-valued filters.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package calls
