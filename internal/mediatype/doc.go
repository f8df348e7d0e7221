// Package mediatype resolves file extensions to media type descriptors and
// answers conformance questions ("is this a movie?") against a small type
// hierarchy. It also sniffs file content so a mislabeled audio or image file
// is not treated as video.
package mediatype
