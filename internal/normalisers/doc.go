// Package normalisers turns raw source bytes into canonical documents.
// The legal normaliser cleans court decisions and extracts case metadata.
package normalisers
