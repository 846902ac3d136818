package pipeline

// Stage identifies how far a pipeline run progressed.
type Stage string

// Pipeline stages, in execution order.
const (
	StageFetchEmail    Stage = "fetch_email"
	StageLogin         Stage = "login"
	StageEmailSearch   Stage = "email_search"
	StageClassify      Stage = "classify_domain"
	StageDomainSearch  Stage = "domain_search"
	StageUpdateRecord  Stage = "update_record"
	StageCreateContact Stage = "create_contact"
	StageCreateLead    Stage = "create_lead"
	StageDone          Stage = "done"
)

// ResolutionKind is the variant of a pipeline resolution.
type ResolutionKind string

// Resolution variants. Exactly one is produced per successful run.
const (
	ResolvedExisting   ResolutionKind = "existing_record"
	ResolvedNewContact ResolutionKind = "new_contact"
	ResolvedNewLead    ResolutionKind = "new_lead"
)

// Resolution is the outcome of entity resolution for one Slack member.
type Resolution struct {
	Kind ResolutionKind
	// RecordID is the updated or created Salesforce record.
	RecordID string
	// RecordType is Lead or Contact for existing-record resolutions.
	RecordType string
	// AccountID is set for new contacts.
	AccountID string
	// OwnerID is the owner mentioned in the feed post, empty when the
	// record is effectively ownerless (queues, new leads).
	OwnerID string
	// Company is the lead company name for new leads.
	Company string
}

// Outcome is the per-event record of a pipeline run, logged exactly once.
type Outcome struct {
	RunID      string
	UserID     string
	Email      string
	Stage      Stage
	Resolution *Resolution
	// Err is the terminal stage error, nil for completed runs.
	Err error
	// NotifyErr is a feed-post failure after a successful CRM write; the
	// record stays, the announcement is lost.
	NotifyErr error
}

// Completed reports whether the run produced a resolution.
func (o *Outcome) Completed() bool {
	return o.Err == nil && o.Resolution != nil
}
