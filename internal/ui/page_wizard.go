package ui

import (
	"fmt"
	"net/http"
	"net/url"

	"uhe-console/internal/domain"
	"uhe-console/internal/service/wizard"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type wizardSidebarItem struct {
	Key    string
	Name   string
	Source string
	Status domain.BlueprintStatus
	Dirty  bool
	Active bool
}

type wizardSelectedData struct {
	Key             string
	Name            string
	Source          string
	Status          domain.BlueprintStatus
	Binding         domain.DatabaseBinding
	Databases       []string
	Schemas         []string
	Tables          []string
	Columns         []domain.SourceColumn
	Rows            []wizard.FieldRow
	DeleteCondition string
	WhereClause     string
	Dirty           bool
}

type wizardMappingData struct {
	SessionID string
	Models    []domain.CatalogModel
	Sidebar   []wizardSidebarItem
	Selected  *wizardSelectedData
}

func wizardMappingPage(r *http.Request, d wizardMappingData) Node {
	base := "/ui/wizard/" + d.SessionID

	sidebar := make([]Node, 0, len(d.Sidebar))
	for i := range d.Sidebar {
		item := d.Sidebar[i]
		className := "wizard-blueprint-link"
		if item.Active {
			className += " active"
		}
		label := item.Name
		if item.Dirty {
			label += " *"
		}
		sidebar = append(sidebar, A(
			Href(base+"?blueprint="+url.QueryEscape(item.Key)),
			Class(className),
			statusDot(string(item.Status)),
			Span(Text(label)),
			Span(Class(mutedClass()+" flex-1"), Text(" "+item.Source)),
		))
	}

	main := Node(emptyStateCard("This session has no blueprints to bind."))
	if d.Selected != nil {
		main = wizardMappingPanel(r, base, *d.Selected)
	}

	modelNames := make([]string, 0, len(d.Models))
	for _, m := range d.Models {
		modelNames = append(modelNames, m.Name)
	}

	return appPage(
		"Deployment Wizard",
		"models",
		Div(Class(cardClass("toolbar")),
			P(Class(mutedClass()+" mb-0 flex-1"), Text("Binding "+stringsJoin(modelNames))),
			deployStartForm(r, base),
			postButton(r, base+"/close", "Close wizard", true),
		),
		Div(Class("wizard-layout"),
			Div(Class("wizard-sidebar"),
				Div(Class(cardClass()),
					H2(Text("Blueprints")),
					Group(sidebar),
				),
			),
			Div(Class("wizard-main"), main),
		),
	)
}

func wizardMappingPanel(r *http.Request, base string, sel wizardSelectedData) Node {
	keyParam := url.QueryEscape(sel.Key)

	bindingForm := Form(
		Method("post"),
		Action(base+"/table?blueprint="+keyParam),
		csrfField(r),
		Div(Class("form-row"),
			selectField("db", "Database", sel.Binding.DB, sel.Databases, true),
			selectField("schema", "Schema", sel.Binding.Schema, sel.Schemas, true),
			selectField("table", "Table", sel.Binding.Table, sel.Tables, true),
			Button(Type("submit"), Class("btn"), Text("Bind table")),
		),
	)

	columnNames := make([]string, 0, len(sel.Columns))
	for _, c := range sel.Columns {
		columnNames = append(columnNames, c.Name)
	}

	fieldRows := make([]Node, 0, len(sel.Rows))
	for i := range sel.Rows {
		row := sel.Rows[i]
		var control Node
		if row.Key.IsColumn() || row.Key.IsKeyNode() || row.Category == wizard.CategoryIngestTime {
			control = fieldSelect("field_"+string(row.Key), row.Value, columnNames)
		} else {
			control = Input(Type("text"), Name("field_"+string(row.Key)), Value(row.Value), Class("form-control"))
		}
		fieldRows = append(fieldRows, Tr(
			Td(Text(row.Name), nodeBadge(row.Node)),
			Td(statusLabel(row.Category, "accent")),
			Td(Text(orDash(row.ExpectedType))),
			Td(control),
			Td(fieldStatusLabel(row)),
		))
	}

	saveAttrs := []Node{Type("submit"), Class("btn btn-primary"), FormAction(base + "/save?blueprint=" + keyParam), Text("Save bindings")}
	if !sel.Binding.IsComplete() {
		saveAttrs = append(saveAttrs, Disabled())
	}

	mappingForm := Form(
		Method("post"),
		Action(base+"/mappings?blueprint="+keyParam),
		csrfField(r),
		Div(Class(cardClass("table-wrap")),
			Table(Class("data-table"),
				THead(Tr(Th(Text("Field")), Th(Text("Kind")), Th(Text("Type")), Th(Text("Source column")), Th(Text("Status")))),
				TBody(Group(fieldRows)),
			),
		),
		Div(Class(cardClass()),
			Div(Class("form-row"),
				Div(Class("form-field flex-1"),
					Label(For("delete-condition"), Text("Delete condition")),
					Input(ID("delete-condition"), Type("text"), Name("field_"+string(domain.FieldKeyDeleteCondition)), Value(sel.DeleteCondition), Class("form-control")),
				),
				Div(Class("form-field flex-1"),
					Label(For("where-clause"), Text("Where clause")),
					Input(ID("where-clause"), Type("text"), Name("field_"+string(domain.FieldKeyWhereClause)), Value(sel.WhereClause), Class("form-control")),
				),
			),
			Div(Class("d-flex gap-2"),
				Button(Type("submit"), Class("btn"), Text("Apply mappings")),
				Button(saveAttrs...),
			),
		),
	)

	header := Div(Class(cardClass("toolbar")),
		statusDot(string(sel.Status)),
		H2(Class("mb-0 flex-1"), Text(sel.Name)),
		statusLabel(sel.Source, "accent"),
		dirtyBadge(sel.Dirty),
	)

	return Group([]Node{
		header,
		Div(Class(cardClass()), H2(Text("Source table")), bindingForm),
		mappingForm,
	})
}

func nodeBadge(node string) Node {
	if node == "" {
		return nil
	}
	return Span(Class(mutedClass()), Text(" ("+node+")"))
}

func dirtyBadge(dirty bool) Node {
	if !dirty {
		return statusLabel("saved", "muted")
	}
	return statusLabel("unsaved changes", "attention")
}

func fieldStatusLabel(row wizard.FieldRow) Node {
	switch row.Status {
	case domain.FieldBound:
		return statusLabel("bound", "success")
	case domain.FieldMismatch:
		return Group([]Node{
			statusLabel("mismatch", "danger"),
			P(Class(mutedClass()+" mb-0"), Text(row.Reason)),
		})
	default:
		return statusLabel("pending", "muted")
	}
}

func selectField(name, label, current string, options []string, withNone bool) Node {
	opts := []Node{}
	if withNone {
		opts = append(opts, Option(Value(""), Text("-"), selectedIf(current == "")))
	}
	for _, o := range options {
		opts = append(opts, Option(Value(o), Text(o), selectedIf(o == current)))
	}
	return Div(Class("form-field"),
		Label(For("bind-"+name), Text(label)),
		Select(ID("bind-"+name), Name(name), Class("form-control"), Group(opts)),
	)
}

func fieldSelect(name, current string, columns []string) Node {
	opts := []Node{Option(Value(domain.NoneValue), Text("NONE"), selectedIf(current == "" || current == domain.NoneValue))}
	seen := false
	for _, c := range columns {
		if c == current {
			seen = true
		}
		opts = append(opts, Option(Value(c), Text(c), selectedIf(c == current)))
	}
	// A restored value can reference a column missing from the current table.
	if !seen && current != "" && current != domain.NoneValue {
		opts = append(opts, Option(Value(current), Text(current+" (missing)"), Selected()))
	}
	return Select(Name(name), Class("form-control"), Group(opts))
}

func selectedIf(v bool) Node {
	if !v {
		return nil
	}
	return Selected()
}

func deployStartForm(r *http.Request, base string) Node {
	return Form(
		Method("post"),
		Action(base+"/deploy/start"),
		csrfField(r),
		Div(Class("d-flex gap-2 flex-items-center"),
			Label(Class(mutedClass()),
				Input(Type("checkbox"), Name("replace_objects")),
				Text(" Replace objects"),
			),
			Label(Class(mutedClass()),
				Input(Type("checkbox"), Name("run_full_refresh")),
				Text(" Full refresh"),
			),
			Button(Type("submit"), Class("btn btn-primary"), Text("Deploy")),
		),
	)
}

type wizardDeployData struct {
	SessionID string
	View      *wizard.ProgressView
}

func wizardDeployPage(r *http.Request, d wizardDeployData) Node {
	base := "/ui/wizard/" + d.SessionID
	view := d.View

	toolbar := []Node{
		P(Class(mutedClass()+" mb-0 flex-1"), Text(fmt.Sprintf("Deployment progress: %.0f%%", view.Progress))),
	}
	if view.Deploying {
		if view.CancelRequested {
			toolbar = append(toolbar, statusLabel("cancel requested - backend work may continue", "attention"))
		} else {
			toolbar = append(toolbar, postButton(r, base+"/deploy/cancel", "Cancel", true))
		}
		toolbar = append(toolbar, postButton(r, base+"/close", "Minimize", false))
	} else {
		toolbar = append(toolbar, A(Href(base), Class("btn"), Text("Back to mapping")))
	}

	body := []Node{
		Div(Class(cardClass("toolbar")), Group(toolbar)),
		Div(Class(cardClass()),
			Div(Class("progress-track"),
				Div(Class("progress-fill"), StyleAttr(fmt.Sprintf("width: %.0f%%", view.Progress))),
			),
		),
	}

	if view.Outcome != nil {
		body = append(body, outcomeCard(view.Outcome))
	}
	for i := range view.Models {
		body = append(body, modelChecklistCard(view.Models[i]))
	}
	if len(view.Errors) > 0 {
		body = append(body, errorGroupsCard(view.Errors))
	}
	body = append(body, logCard(view.Logs))

	if view.Deploying {
		body = append(body, deployStreamScript(d.SessionID))
	}

	return appPage("Deployment", "models", Group(body))
}

func outcomeCard(outcome *domain.CompleteEvent) Node {
	tone := "success"
	if len(outcome.Failed) > 0 {
		tone = "danger"
	}
	details := fmt.Sprintf("%d succeeded, %d failed.", len(outcome.Successful), len(outcome.Failed))
	return Div(Class(cardClass()),
		H2(Text("Run complete")),
		P(statusLabel(details, tone)),
		P(Class(mutedClass()), Text(outcome.Message)),
	)
}

func modelChecklistCard(m wizard.ModelSnapshot) Node {
	rows := make([]Node, 0)
	for _, step := range m.Steps {
		rows = append(rows, Tr(
			Td(Strong(Text(step.Label))),
			Td(itemStatusLabel(step.Status)),
			Td(Text("")),
		))
		for _, item := range step.Items {
			rows = append(rows, Tr(
				Td(Class("color-fg-muted"), Text("    "+item.Name)),
				Td(Text("")),
				Td(itemStatusLabel(item.Status)),
			))
		}
	}
	return Div(Class(cardClass("table-wrap")),
		H2(Text(m.ModelName+" ("+m.ModelType+")")),
		Table(Class("data-table"),
			THead(Tr(Th(Text("Step / item")), Th(Text("Step status")), Th(Text("Item status")))),
			TBody(Group(rows)),
		),
	)
}

func itemStatusLabel(status domain.ItemStatus) Node {
	switch status {
	case domain.ItemCompleted:
		return statusLabel("completed", "success")
	case domain.ItemInProgress:
		return statusLabel("in progress", "accent")
	case domain.ItemError:
		return statusLabel("error", "danger")
	default:
		return statusLabel("pending", "muted")
	}
}

func errorGroupsCard(groups []domain.ErrorGroup) Node {
	nodes := make([]Node, 0, len(groups))
	for i := range groups {
		g := groups[i]
		items := make([]Node, 0, len(g.Occurrences))
		for _, occ := range g.Occurrences {
			items = append(items, Li(Text(occ.Model+" / "+occ.Step+" / "+occ.Item)))
		}
		nodes = append(nodes, Div(
			P(statusLabel(fmt.Sprintf("%d occurrence(s)", len(g.Occurrences)), "danger"), Text(" "+g.Message)),
			Ul(Group(items)),
		))
	}
	return Div(Class(cardClass()), H2(Text("Errors")), Group(nodes))
}

func logCard(logs []domain.LogEntry) Node {
	lines := make([]Node, 0, len(logs))
	for i := range logs {
		entry := logs[i]
		prefix := entry.Timestamp.Format("15:04:05")
		lines = append(lines, Div(
			Class("log-line "+entry.Level),
			Text(prefix+" ["+entry.Level+"] "+entry.Message),
		))
	}
	if len(lines) == 0 {
		lines = append(lines, Div(Class("log-line"), Text("Waiting for deployment output...")))
	}
	return Div(Class(cardClass()),
		H2(Text("Deployment log")),
		Div(Class("log-view"), Group(lines)),
	)
}

// deployStreamScript follows the session's event relay and re-renders the
// page as the run progresses. Reload is debounced so bursts of log events do
// not thrash the browser.
func deployStreamScript(sessionID string) Node {
	src := "/v1/wizard/sessions/" + sessionID + "/deploy/stream"
	return Script(Raw(`
(function () {
  var es = new EventSource('` + src + `');
  var pending = null;
  function refresh(delay) {
    if (pending) { return; }
    pending = setTimeout(function () { window.location.reload(); }, delay);
  }
  ['log', 'model_start', 'model_complete', 'error'].forEach(function (name) {
    es.addEventListener(name, function () { refresh(1000); });
  });
  es.addEventListener('complete', function () { es.close(); refresh(300); });
  es.addEventListener('close', function () { es.close(); refresh(300); });
  es.onerror = function () { es.close(); refresh(2000); };
})();`))
}

func stringsJoin(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	out := values[0]
	for i := 1; i < len(values); i++ {
		out += ", " + values[i]
	}
	return out
}
