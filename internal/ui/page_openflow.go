package ui

import (
	"net/http"

	"uhe-console/internal/domain"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"
)

func openflowPage(r *http.Request, states []domain.SnapshotState) Node {
	rows := make([]Node, 0, len(states))
	for i := range states {
		s := states[i]
		table := s.DatabaseName + "." + s.SchemaName + "." + s.TableName
		enabled := statusLabel("disabled", "muted")
		if s.Enabled {
			enabled = statusLabel("enabled", "success")
		}
		snapshot := statusLabel(orDash(s.SnapshotStatus), "accent")
		if s.SnapshotRequest {
			snapshot = statusLabel("requested", "attention")
		}
		actionPath := "/ui/openflow/" + s.DatabaseName + "/" + s.SchemaName + "/" + s.TableName
		rows = append(rows, Tr(
			data.Show(containsExpr(table)),
			Td(Text(table)),
			Td(enabled),
			Td(snapshot),
			Td(Text(orDash(s.WatermarkColumn))),
			Td(Text(orDash(s.LastSnapshotTimestamp))),
			Td(Div(Class("d-flex gap-2"),
				postButton(r, actionPath+"/request-snapshot", "Request snapshot", false),
				postButton(r, actionPath+"/toggle", toggleLabel(s.Enabled), false),
				postButton(r, actionPath+"/delete", "Remove", true),
			)),
		))
	}

	tableNode := Node(emptyStateCard("No snapshot configurations registered."))
	if len(rows) > 0 {
		tableNode = Div(Class(cardClass("table-wrap")),
			Table(Class("data-table"),
				THead(Tr(
					Th(Text("Table")), Th(Text("CDC")), Th(Text("Snapshot")),
					Th(Text("Watermark")), Th(Text("Last snapshot")), Th(Text("Actions")),
				)),
				TBody(Group(rows)),
			),
		)
	}

	return appPage(
		"Openflow",
		"openflow",
		quickFilterCard("Filter by table name"),
		tableNode,
	)
}

func toggleLabel(enabled bool) string {
	if enabled {
		return "Disable"
	}
	return "Enable"
}

func postButton(r *http.Request, action, label string, danger bool) Node {
	className := "btn btn-sm"
	if danger {
		className += " btn-danger"
	}
	return Form(
		Method("post"),
		Action(action),
		csrfField(r),
		Button(Type("submit"), Class(className), Text(label)),
	)
}
