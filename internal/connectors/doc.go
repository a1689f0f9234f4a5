// Package connectors holds the document sources searched for each query.
//
// The local subpackage reads a directory on disk; the remote subpackage
// searches a hierarchical remote store such as Google Drive. Both fan
// per-document download and extraction out over the shared Pool and
// re-assemble results in discovery order.
package connectors
