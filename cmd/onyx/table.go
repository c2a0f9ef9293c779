package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// settingRow is one label/value line in a CLI detail table. Every table
// this CLI prints is a two-column listing of such pairs.
type settingRow struct {
	label string
	value string
}

// renderPairs renders label/value rows under a two-column header. Labels
// are always left aligned; numeric value columns ask for right alignment.
func renderPairs(labelHeader, valueHeader string, rows []settingRow, alignValuesRight bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{labelHeader, valueHeader})
	for _, row := range rows {
		tw.AppendRow(table.Row{row.label, row.value})
	}

	valueAlign := text.AlignLeft
	if alignValuesRight {
		valueAlign = text.AlignRight
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: valueAlign, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}
