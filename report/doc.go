// Package report exports ingested call data to spreadsheet files for sharing
// outside the tool.
package report
