package ui

import (
	"fmt"

	"uhe-console/internal/domain"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"
)

func blueprintsListPage(details []domain.BlueprintDetail, sources []string, activeSource string) Node {
	tableRows := make([]Node, 0, len(details))
	for i := range details {
		d := details[i]
		binding := "-"
		if d.BindingDB != "" {
			binding = d.BindingDB + "." + d.BindingSchema + "." + d.BindingTable
		}
		mapping := statusLabel("incomplete", "attention")
		if d.MappingComplete {
			mapping = statusLabel("complete", "success")
		}
		deployment := statusLabel("not deployed", "muted")
		if d.Deployed {
			deployment = statusLabel("deployed", "success")
		}
		tableRows = append(tableRows, Tr(
			data.Show(containsExpr(d.ID+" "+d.Name+" "+d.Source)),
			Td(Text(d.Name)),
			Td(statusLabel(d.Source, "accent")),
			Td(Text(binding)),
			Td(Text(fmt.Sprintf("%d", d.ColumnCount))),
			Td(mapping),
			Td(deployment),
		))
	}

	tableNode := Node(emptyStateCard("No blueprints match the current filter."))
	if len(tableRows) > 0 {
		tableNode = Div(Class(cardClass("table-wrap")),
			Table(Class("data-table"),
				THead(Tr(
					Th(Text("Blueprint")), Th(Text("Source")), Th(Text("Bound table")),
					Th(Text("Columns")), Th(Text("Mapping")), Th(Text("Deployment")),
				)),
				TBody(Group(tableRows)),
			),
		)
	}

	sourceLinks := make([]Node, 0, len(sources)+1)
	allClass := "btn btn-sm"
	if activeSource == "" {
		allClass += " btn-primary"
	}
	sourceLinks = append(sourceLinks, A(Href("/ui/blueprints"), Class(allClass), Text("All sources")))
	for _, src := range sources {
		className := "btn btn-sm"
		if src == activeSource {
			className += " btn-primary"
		}
		sourceLinks = append(sourceLinks, A(Href("/ui/blueprints?source="+src), Class(className), Text(src)))
	}

	return appPage(
		"Blueprints",
		"blueprints",
		quickFilterCard("Filter by blueprint id, name or source",
			Div(Class("d-flex gap-2 flex-wrap"), Group(sourceLinks)),
		),
		tableNode,
	)
}
