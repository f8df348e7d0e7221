// Package language normalizes the language tags found on media streams.
//
// Containers label tracks inconsistently: MP4 and MOV files carry ISO 639-2
// codes ("spa", "fre"), Matroska may carry BCP 47 tags ("es-MX"), and some
// muxers write plain words ("Spanish"). Base reduces all of them to the
// ISO 639-1 base so callers can compare tracks against a preferred language.
package language
