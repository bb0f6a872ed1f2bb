package ui

import (
	"net/http"

	"uhe-console/internal/domain"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"
)

func governancePage(r *http.Request, contacts []domain.Contact, models []domain.ModelGovernance) Node {
	contactRows := make([]Node, 0, len(contacts))
	for i := range contacts {
		c := contacts[i]
		contactRows = append(contactRows, Tr(
			data.Show(containsExpr(c.Name+" "+c.CommunicationValue)),
			Td(Text(c.Name)),
			Td(statusLabel(orDash(c.CommunicationType), "accent")),
			Td(Text(orDash(c.CommunicationValue))),
			Td(Text(orDash(c.CreatedOn))),
		))
	}
	contactsNode := Node(emptyStateCard("No governance contacts yet."))
	if len(contactRows) > 0 {
		contactsNode = Div(Class(cardClass("table-wrap")),
			Table(Class("data-table"),
				THead(Tr(Th(Text("Contact")), Th(Text("Method")), Th(Text("Value")), Th(Text("Created")))),
				TBody(Group(contactRows)),
			),
		)
	}

	modelRows := make([]Node, 0, len(models))
	for i := range models {
		m := models[i]
		deployment := statusLabel("not deployed", "muted")
		if m.Deployed {
			deployment = statusLabel("deployed", "success")
		}
		modelRows = append(modelRows, Tr(
			data.Show(containsExpr(m.ModelName+" "+m.Domain)),
			Td(Text(m.ModelName)),
			Td(statusLabel(m.ModelType, "accent")),
			Td(Text(orDash(m.Domain))),
			Td(deployment),
			Td(Text(orDash(m.StewardContact))),
			Td(Text(orDash(m.SupportContact))),
			Td(assignContactsForm(r, m, contacts)),
		))
	}
	modelsNode := Node(emptyStateCard("No governed models yet. Deploy a model first."))
	if len(modelRows) > 0 {
		modelsNode = Div(Class(cardClass("table-wrap")),
			Table(Class("data-table"),
				THead(Tr(
					Th(Text("Model")), Th(Text("Type")), Th(Text("Domain")), Th(Text("Deployment")),
					Th(Text("Steward")), Th(Text("Support")), Th(Text("Assign")),
				)),
				TBody(Group(modelRows)),
			),
		)
	}

	return appPage(
		"Governance",
		"governance",
		quickFilterCard("Filter contacts and models"),
		Div(Class(cardClass()), H2(Text("Contacts")), newContactForm(r)),
		contactsNode,
		Div(Class(cardClass()), H2(Text("Model stewardship"))),
		modelsNode,
	)
}

func newContactForm(r *http.Request) Node {
	return Form(
		Method("post"),
		Action("/ui/governance/contacts"),
		csrfField(r),
		Div(Class("form-row"),
			Div(Class("form-field"),
				Label(For("contact-name"), Text("Name")),
				Input(ID("contact-name"), Type("text"), Name("name"), Class("form-control"), Required()),
			),
			Div(Class("form-field"),
				Label(For("contact-method"), Text("Method")),
				Select(ID("contact-method"), Name("method"), Class("form-control"),
					Option(Value("EMAIL"), Text("EMAIL")),
					Option(Value("URL"), Text("URL")),
					Option(Value("USERS"), Text("USERS")),
				),
			),
			Div(Class("form-field"),
				Label(For("contact-value"), Text("Value")),
				Input(ID("contact-value"), Type("text"), Name("value"), Class("form-control"), Required()),
			),
			Button(Type("submit"), Class("btn btn-primary"), Text("Add contact")),
		),
	)
}

func assignContactsForm(r *http.Request, m domain.ModelGovernance, contacts []domain.Contact) Node {
	options := []Node{Option(Value(""), Text("-"))}
	for i := range contacts {
		options = append(options, Option(Value(contacts[i].Name), Text(contacts[i].Name)))
	}
	return Form(
		Method("post"),
		Action("/ui/governance/models/assign"),
		csrfField(r),
		Input(Type("hidden"), Name("model_id"), Value(m.ModelID)),
		Input(Type("hidden"), Name("model_type"), Value(m.ModelType)),
		Div(Class("d-flex gap-2 flex-items-center"),
			Select(Name("steward"), Class("form-control"), Group(options)),
			Button(Type("submit"), Class("btn btn-sm"), Text("Set steward")),
		),
	)
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
