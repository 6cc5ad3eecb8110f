// Package exporter writes the pipeline result tables to disk: the CSV
// files matching the original planner's output layout, an optional
// consolidated Excel workbook, and a JSON run manifest. Each run gets its
// own timestamped directory; runs never share or mutate state.
package exporter
