package ui

import (
	"net/http"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"
)

type modelRowData struct {
	Filter      string
	ID          string
	Name        string
	Type        string
	Description string
	Deployed    bool
	DeployError string
}

func modelsListPage(r *http.Request, rows []modelRowData) Node {
	tableRows := make([]Node, 0, len(rows))
	for i := range rows {
		row := rows[i]
		deployment := statusLabel("not deployed", "muted")
		if row.Deployed {
			deployment = statusLabel("deployed", "success")
		} else if row.DeployError != "" {
			deployment = statusLabel("failed", "danger")
		}
		tableRows = append(tableRows, Tr(
			data.Show(containsExpr(row.Filter)),
			Td(Input(Type("checkbox"), Name("model_id"), Value(row.ID))),
			Td(Text(row.Name)),
			Td(statusLabel(row.Type, "accent")),
			Td(Text(row.Description)),
			Td(deployment),
		))
	}

	tableNode := Node(emptyStateCard("No dimensional models found."))
	if len(tableRows) > 0 {
		tableNode = Form(
			Method("post"),
			Action("/ui/wizard/open"),
			csrfField(r),
			Div(Class(cardClass("table-wrap")),
				Table(Class("data-table"),
					THead(Tr(Th(Text("")), Th(Text("Model")), Th(Text("Type")), Th(Text("Description")), Th(Text("Deployment")))),
					TBody(Group(tableRows)),
				),
			),
			Div(
				Class(cardClass("toolbar")),
				P(Class(mutedClass()+" mb-0 flex-1"), Text("Select the models to bind and deploy, then open the wizard.")),
				Button(Type("submit"), Class("btn btn-primary"), Text("Open deployment wizard")),
			),
		)
	}

	return appPage(
		"Models",
		"models",
		quickFilterCard("Filter by model name or type"),
		tableNode,
	)
}
