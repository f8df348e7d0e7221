// Package audio picks the primary audio stream of a media file.
//
// Exports carry exactly one audio stream. Select ranks the candidates by the
// default disposition flag, a preferred language, and a penalty for
// commentary or audio-description tracks, falling back to container order
// when everything ties.
package audio
