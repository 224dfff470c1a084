// Package webhooks ingests post-call deliveries from the conversational-AI
// vendor, turning analysis results into lead records.
package webhooks

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/iautomae/platform/internal/leads"
)

// Payload is the vendor's post-call delivery body. The same shape comes
// back from the conversation fetch API, so the sync command reuses it.
type Payload struct {
	ConversationID string          `json:"conversation_id"`
	AgentID        string          `json:"agent_id"`
	Transcript     json.RawMessage `json:"transcript"`
	Analysis       Analysis        `json:"analysis"`
	Metadata       Metadata        `json:"metadata"`
}

// Analysis carries the vendor's post-call evaluation.
type Analysis struct {
	DataCollectionResults map[string]CollectedValue `json:"data_collection_results"`
	CallSuccessful        string                    `json:"call_successful"`
	TranscriptSummary     string                    `json:"transcript_summary"`
}

// CollectedValue is one entry of the vendor's data collection results.
type CollectedValue struct {
	Value any `json:"value"`
}

// Metadata carries conversation usage accounting.
type Metadata struct {
	Cost        int `json:"cost"`
	TotalTokens int `json:"total_tokens"`
}

// Alias lists for the logical fields extracted from data collection
// results. Agent builders name collection fields freely, usually in
// Spanish; matching is case-insensitive and each accented variant is
// listed alongside its plain form. Order is priority: the first alias
// present wins.
var (
	nameAliases          = []string{"nombre", "nombre_cliente", "nombre_completo", "name", "full_name", "client_name"}
	phoneAliases         = []string{"telefono", "teléfono", "numero", "número", "celular", "phone", "phone_number", "whatsapp"}
	qualificationAliases = []string{"calificacion", "calificación", "calificado", "cualificacion", "cualificación", "qualification", "qualified", "estado"}
	summaryAliases       = []string{"resumen", "resumen_llamada", "summary", "notas"}
)

// Validate checks the delivery carries the identifiers ingestion needs.
func (p *Payload) Validate() error {
	if p.ConversationID == "" {
		return fmt.Errorf("conversation_id is required")
	}
	if p.AgentID == "" {
		return fmt.Errorf("agent_id is required")
	}
	return nil
}

// LeadCommand converts the delivery into a lead create command for the
// resolved local agent.
func (p *Payload) LeadCommand(agentID uuid.UUID) leads.CreateCommand {
	summary := p.extract(summaryAliases)
	if summary == "" {
		summary = p.Analysis.TranscriptSummary
	}

	return leads.CreateCommand{
		AgentID:        agentID,
		ConversationID: p.ConversationID,
		Name:           p.extract(nameAliases),
		Phone:          p.extract(phoneAliases),
		Status:         Classify(p.extract(qualificationAliases)),
		Summary:        summary,
		Transcript:     p.Transcript,
		Tokens:         p.Metadata.TotalTokens,
		Credits:        p.Metadata.Cost,
	}
}

// extract returns the first collection result whose key matches one of
// the aliases, compared case-insensitively.
func (p *Payload) extract(aliases []string) string {
	if len(p.Analysis.DataCollectionResults) == 0 {
		return ""
	}

	lowered := make(map[string]CollectedValue, len(p.Analysis.DataCollectionResults))
	for key, value := range p.Analysis.DataCollectionResults {
		lowered[strings.ToLower(strings.TrimSpace(key))] = value
	}

	for _, alias := range aliases {
		if value, ok := lowered[alias]; ok {
			if s := stringValue(value.Value); s != "" {
				return s
			}
		}
	}
	return ""
}

// stringValue renders a collected value, which the vendor types loosely.
func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", t), "0"), ".")
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// Classify maps an extracted qualification to a lead status. A value
// containing NO or RECHAZADO in any casing reads as not qualified;
// everything else, including a missing value, defaults to qualified.
func Classify(qualification string) leads.Status {
	upper := strings.ToUpper(qualification)
	if strings.Contains(upper, "NO") || strings.Contains(upper, "RECHAZADO") {
		return leads.StatusNotQualified
	}
	return leads.StatusQualified
}
