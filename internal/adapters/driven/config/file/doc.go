// Package file loads caselex configuration from disk.
//
// The format follows the file extension: .toml (the default), .yaml or .yml.
// A .env file in the same directory is loaded into the environment first so
// that provider API keys can be kept out of the config file.
package file
