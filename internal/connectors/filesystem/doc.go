// Package filesystem reads raw case files from local directories and
// watches them for changes.
//
// Directories are walked recursively. Hidden files and directories are
// skipped, and only files with a configured extension are picked up. A file
// named explicitly is always read. Bundle files holding several cases
// separated by an underscore rule yield one document per case, with source
// ids of the form "path#n".
package filesystem
