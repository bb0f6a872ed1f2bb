package backend

import "uhe-console/internal/domain"

// Deployment step names, in the order a staged deployment executes them.
// These match the step identifiers carried by stream log events.
const (
	StepStaging             = "staging"
	StepDataProcessing      = "data_processing"
	StepKeyStorage          = "key_storage"
	StepBuildRelationships  = "build_relationships"
	StepDataStorage         = "data_storage"
	StepSupportingArtefacts = "supporting_artefacts"
	StepModelDeployment     = "model_deployment"
	StepSeedLoad            = "seed_load"
	StepApplyTags           = "apply_tags"
	StepApplyGrants         = "apply_grants"
)

// StepLabels maps step names to the headings shown in the deploy checklist.
var StepLabels = map[string]string{
	StepStaging:             "Staging",
	StepDataProcessing:      "Data processing",
	StepKeyStorage:          "Key storage",
	StepBuildRelationships:  "Build relationships",
	StepDataStorage:         "Data storage",
	StepSupportingArtefacts: "Supporting artefacts",
	StepModelDeployment:     "Model deployment",
	StepSeedLoad:            "Seed load",
	StepApplyTags:           "Apply tags",
	StepApplyGrants:         "Apply grants",
}

// The deployment-summary endpoint returns named sections per model rather
// than a uniform step list. The wire types below mirror that shape; toDomain
// flattens them into ordered steps.

type summarySection struct {
	Items []domain.SummaryItem `json:"items"`
	Count int                  `json:"count"`
}

type dataProcessingSection struct {
	Streams []domain.SummaryItem `json:"streams"`
	Tasks   []domain.SummaryItem `json:"tasks"`
	Count   int                  `json:"count"`
}

type modelDeploymentSection struct {
	Name      string `json:"name"`
	ModelID   string `json:"model_id"`
	ModelType string `json:"model_type"`
}

type seedLoadSection struct {
	Available   bool `json:"available"`
	Description string `json:"description"`
	Blueprints  []struct {
		BlueprintID   string `json:"blueprint_id"`
		Source        string `json:"source"`
		BindingObject string `json:"binding_object"`
	} `json:"blueprints"`
}

type modelSummaryWire struct {
	ModelID             string                 `json:"model_id"`
	ModelName           string                 `json:"model_name"`
	ModelType           string                 `json:"model_type"`
	Staging             summarySection         `json:"staging"`
	DataProcessing      dataProcessingSection  `json:"data_processing"`
	KeyStorage          summarySection         `json:"key_storage"`
	BuildRelationships  summarySection         `json:"build_relationships"`
	DataStorage         summarySection         `json:"data_storage"`
	SupportingArtefacts summarySection         `json:"supporting_artefacts"`
	ModelDeployment     modelDeploymentSection `json:"model_deployment"`
	SeedLoad            seedLoadSection        `json:"seed_load"`
	ApplyTags           summarySection         `json:"apply_tags"`
	ApplyGrants         summarySection         `json:"apply_grants"`
}

type deploymentSummaryWire struct {
	Message string             `json:"message"`
	Models  []modelSummaryWire `json:"models"`
}

func (w *deploymentSummaryWire) toDomain() *domain.DeploymentSummary {
	out := &domain.DeploymentSummary{Message: w.Message}
	for _, m := range w.Models {
		ms := domain.ModelSummary{
			ModelID:   m.ModelID,
			ModelName: m.ModelName,
			ModelType: m.ModelType,
		}

		addStep := func(step string, items []domain.SummaryItem) {
			if len(items) == 0 {
				return
			}
			ms.Steps = append(ms.Steps, domain.SummaryStep{
				Step:  step,
				Label: StepLabels[step],
				Items: items,
			})
		}

		addStep(StepStaging, m.Staging.Items)

		// Streams and tasks deploy within one stage.
		processing := make([]domain.SummaryItem, 0, len(m.DataProcessing.Streams)+len(m.DataProcessing.Tasks))
		processing = append(processing, m.DataProcessing.Streams...)
		processing = append(processing, m.DataProcessing.Tasks...)
		addStep(StepDataProcessing, processing)

		addStep(StepKeyStorage, m.KeyStorage.Items)
		addStep(StepBuildRelationships, m.BuildRelationships.Items)
		addStep(StepDataStorage, m.DataStorage.Items)
		addStep(StepSupportingArtefacts, m.SupportingArtefacts.Items)

		if m.ModelDeployment.Name != "" {
			addStep(StepModelDeployment, []domain.SummaryItem{{
				Name: m.ModelDeployment.Name,
				Type: m.ModelDeployment.ModelType,
			}})
		}

		if m.SeedLoad.Available {
			items := make([]domain.SummaryItem, 0, len(m.SeedLoad.Blueprints))
			for _, bp := range m.SeedLoad.Blueprints {
				items = append(items, domain.SummaryItem{
					Name:        "REFRESH_" + bp.BindingObject,
					BlueprintID: bp.BlueprintID,
					Source:      bp.Source,
				})
			}
			addStep(StepSeedLoad, items)
		}

		addStep(StepApplyTags, m.ApplyTags.Items)
		addStep(StepApplyGrants, m.ApplyGrants.Items)

		out.Models = append(out.Models, ms)
	}
	return out
}
