package ui

import (
	"fmt"
	"strings"

	"uhe-console/internal/domain"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type overviewPageData struct {
	Metrics    *domain.ModellingMetrics
	Validation *domain.DatabaseValidation
	AccountURL string
}

func overviewPage(d overviewPageData) Node {
	cards := []Node{}
	if d.Metrics != nil {
		m := d.Metrics
		cards = append(cards,
			metricCard("Connected sources", fmt.Sprintf("%d", m.ConnectedSources)),
			metricCard("Storage objects", fmt.Sprintf("%d", m.StorageObjects.Total)),
			metricCard("Deployed models", fmt.Sprintf("%d", m.DeployedModels.Total)),
			metricCard("Steward coverage", fmt.Sprintf("%.0f%%", m.Governance.StewardCoveragePercentage)),
		)
	}

	body := []Node{}
	if len(cards) > 0 {
		body = append(body, Div(Class("grid"), Group(cards)))
	}
	if d.Metrics != nil {
		body = append(body, Div(
			Class(cardClass()),
			H2(Text("Model breakdown")),
			P(Text(fmt.Sprintf("%d dimensions, %d facts deployed into %s.",
				d.Metrics.DeployedModels.Dimensions, d.Metrics.DeployedModels.Facts, d.Metrics.Database))),
			P(Class(mutedClass()), Text(fmt.Sprintf("Storage layer: %d nodes, %d edges, %d attribute sets.",
				d.Metrics.StorageObjects.Nodes, d.Metrics.StorageObjects.Edges, d.Metrics.StorageObjects.Attributes))),
		))
	}
	body = append(body, validationCard(d.Validation))
	if d.AccountURL != "" {
		body = append(body, Div(
			Class(cardClass()),
			H2(Text("Snowflake account")),
			P(A(Href(d.AccountURL), Target("_blank"), Rel("noopener"), Text(d.AccountURL))),
		))
	}

	return appPage("Overview", "home", Group(body))
}

func validationCard(v *domain.DatabaseValidation) Node {
	if v == nil {
		return Div(
			Class(cardClass()),
			H2(Text("Output database")),
			P(Class(mutedClass()), Text("Validation unavailable: the engine backend could not be reached.")),
		)
	}
	if v.Valid {
		return Div(
			Class(cardClass()),
			H2(Text("Output database")),
			P(statusLabel("healthy", "success"), Text(" "+v.DatabaseName+" exists with all required schemas.")),
		)
	}
	detail := "Database " + v.DatabaseName + " does not exist."
	if v.DatabaseExists {
		detail = "Missing schemas: " + strings.Join(v.MissingSchemas, ", ")
	}
	return Div(
		Class(cardClass()),
		H2(Text("Output database")),
		P(statusLabel("attention", "attention"), Text(" "+detail)),
	)
}
