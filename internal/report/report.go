// Package report renders display tables as text for the command line.
package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	service "github.com/okian/kickhub/internal/app"
	"github.com/okian/kickhub/internal/domain/types"
)

// Table writes t under its title.
func Table(w io.Writer, t types.Table) error {
	if t.Title != "" {
		if _, err := fmt.Fprintf(w, "%s\n", t.Title); err != nil {
			return err
		}
	}
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))

	names := t.HeaderNames()
	header := make([]any, len(names))
	for i, n := range names {
		header[i] = n
	}
	table.Header(header...)
	for _, r := range t.Rows {
		if err := table.Append(t.Cells(r)...); err != nil {
			return fmt.Errorf("append %s row: %w", t.Title, err)
		}
	}
	return table.Render()
}

// Tables writes each table followed by a blank line.
func Tables(w io.Writer, ts []types.Table) error {
	for _, t := range ts {
		if err := Table(w, t); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// ComparisonTable lays the players' stat cards side by side: one column per
// player, one row per card line.
func ComparisonTable(v service.View) types.Table {
	t := types.Table{
		Title:   fmt.Sprintf("%s / %s / %s", v.Comparison, v.Game, v.Stats),
		Headers: []types.Header{{Key: "stat", Name: "Stat"}},
	}
	if v.Stadium != "" {
		t.Title = v.Stadium + ": " + t.Title
	}
	rows := 0
	for i, p := range v.Players {
		t.Headers = append(t.Headers, types.Header{Key: column(i), Name: p.Name})
		rows = max(rows, len(p.Card.Lines))
	}
	for line := 0; line < rows; line++ {
		row := types.Row{}
		for i, p := range v.Players {
			row[column(i)] = ""
			if line >= len(p.Card.Lines) {
				continue
			}
			l := p.Card.Lines[line]
			row["stat"] = l.Label
			row[column(i)] = l.Value
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// TeammateTable lists each player's top pass targets and sources.
func TeammateTable(v service.View) types.Table {
	t := types.Table{
		Title: "Teammates",
		Headers: []types.Header{
			{Key: "player", Name: "Player"},
			{Key: "to", Name: "Passes To"},
			{Key: "from", Name: "Passes From"},
		},
	}
	for _, p := range v.Players {
		n := max(len(p.Card.PassesTo), len(p.Card.PassesFrom))
		for i := 0; i < n; i++ {
			row := types.Row{"player": "", "to": "", "from": ""}
			if i == 0 {
				row["player"] = p.Name
			}
			if i < len(p.Card.PassesTo) {
				row["to"] = fmt.Sprintf("%s (%d)", p.Card.PassesTo[i].Name, p.Card.PassesTo[i].Count)
			}
			if i < len(p.Card.PassesFrom) {
				row["from"] = fmt.Sprintf("%s (%d)", p.Card.PassesFrom[i].Name, p.Card.PassesFrom[i].Count)
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

func column(i int) string { return fmt.Sprintf("p%d", i) }
