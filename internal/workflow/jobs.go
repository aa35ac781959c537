package workflow

import (
	"strings"
)

type JobType string

const (
	JobGenerateMessages       JobType = "generate_messages"
	JobRegenerateMessages     JobType = "regenerate_messages"
	JobEnrichContacts         JobType = "enrich_contacts"
	JobDeleteRejectedContacts JobType = "delete_rejected_contacts"
	JobSortProfiles           JobType = "sort_profiles"
	JobResortProfiles         JobType = "resort_profiles"
)

// JobRequest is the body clients post to trigger a job.
type JobRequest struct {
	ID   string `json:"id"`
	Mode string `json:"mode,omitempty"`
}

type JobSpec struct {
	Type JobType
	// Path is the route suffix shared by the public route and the engine
	// webhook, e.g. "generer/messages".
	Path     string
	Endpoint string
	// Permission is required on top of authentication.
	Permission  string
	Description string

	StartMessage   string
	SuccessMessage string
	FailureMessage string

	// DefaultMode is sent as "mode" when the job takes one.
	DefaultMode string
}

// Body builds the submission payload for req.
func (s JobSpec) Body(req JobRequest) map[string]any {
	body := map[string]any{"id": req.ID}
	if s.DefaultMode != "" {
		mode := strings.TrimSpace(req.Mode)
		if mode == "" {
			mode = s.DefaultMode
		}
		body["mode"] = mode
	}
	return body
}

var defaultJobs = []JobSpec{
	{
		Type:           JobGenerateMessages,
		Path:           "generer/messages",
		Permission:     "write",
		Description:    "Generate personalised messages (SSE)",
		StartMessage:   "Generating personalised messages...",
		SuccessMessage: "Messages generated successfully",
		FailureMessage: "Message generation failed",
		DefaultMode:    "generate",
	},
	{
		Type:           JobRegenerateMessages,
		Path:           "regenerer/messages",
		Permission:     "write",
		Description:    "Regenerate messages (SSE)",
		StartMessage:   "Regenerating messages...",
		SuccessMessage: "Messages regenerated successfully",
		FailureMessage: "Message regeneration failed",
	},
	{
		Type:           JobEnrichContacts,
		Path:           "enrichir/contacte",
		Permission:     "write",
		Description:    "Enrich contacts (SSE)",
		StartMessage:   "Enriching contacts...",
		SuccessMessage: "Contact enrichment completed",
		FailureMessage: "Contact enrichment failed",
	},
	{
		Type:           JobDeleteRejectedContacts,
		Path:           "supprimer/contact/reject",
		Permission:     "delete",
		Description:    "Delete rejected contacts (SSE)",
		StartMessage:   "Deleting rejected contacts...",
		SuccessMessage: "Rejected contacts deleted",
		FailureMessage: "Rejected contact deletion failed",
	},
	{
		Type:           JobSortProfiles,
		Path:           "trier/profils",
		Permission:     "write",
		Description:    "Sort profiles (SSE)",
		StartMessage:   "Sorting profiles...",
		SuccessMessage: "Profile sort completed",
		FailureMessage: "Profile sort failed",
	},
	{
		Type:           JobResortProfiles,
		Path:           "retrier/profils",
		Permission:     "write",
		Description:    "Re-sort profiles (SSE)",
		StartMessage:   "Re-validating profiles...",
		SuccessMessage: "Profile re-sort completed",
		FailureMessage: "Profile re-sort failed",
	},
}

// Catalog holds the job types this service can trigger, in a stable order.
type Catalog struct {
	specs []JobSpec
}

// NewCatalog resolves every job's endpoint to <webhookBase>webhook/<path>
// unless overrides names one explicitly.
func NewCatalog(webhookBase string, overrides map[JobType]string) *Catalog {
	base := strings.TrimSuffix(strings.TrimSpace(webhookBase), "/")
	c := &Catalog{specs: make([]JobSpec, 0, len(defaultJobs))}
	for _, spec := range defaultJobs {
		spec.Endpoint = base + "/webhook/" + spec.Path
		if ep := strings.TrimSpace(overrides[spec.Type]); ep != "" {
			spec.Endpoint = ep
		}
		c.specs = append(c.specs, spec)
	}
	return c
}

func (c *Catalog) All() []JobSpec {
	out := make([]JobSpec, len(c.specs))
	copy(out, c.specs)
	return out
}
