// Package output renders command results for the terminal and maps
// failures to process exit codes.
package output
