// Package l10n holds the user-facing message catalog. Spanish is the default
// language; English is available. Unsupported language tags fall back to
// Spanish.
package l10n
