// Package connectors holds the sources that case documents are read from.
// The filesystem connector walks local directories and watches them for
// changes.
package connectors
