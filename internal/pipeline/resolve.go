package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/community-sync/pkg/salesforce"
)

// groupTypeRegular is the Group.Type of an @-mentionable public group.
// Anything else (queues in particular) cannot be mentioned in Chatter.
const groupTypeRegular = "Regular"

// resolveExisting handles an email match: tag the record with the Slack user
// id and announce the join on its feed.
func (p *Pipeline) resolveExisting(ctx context.Context, c salesforce.Client, prof UserProfile, rec salesforce.SearchRecord, out *Outcome, log *zap.Logger) {
	owner := rec.OwnerID
	if salesforce.IsGroupID(owner) {
		groupType, err := salesforce.GetGroupType(ctx, c, owner)
		if err != nil {
			// Ownership only affects the feed mention; the update
			// still proceeds.
			log.Warn("pipeline: group owner lookup failed", zap.String("owner_id", owner), zap.Error(err))
			owner = ""
		} else if groupType != groupTypeRegular {
			owner = ""
		}
	}

	out.Stage = StageUpdateRecord
	err := c.UpdateOne(ctx, rec.Attributes.Type, rec.ID, map[string]any{
		p.externalIDField: prof.ID,
	})
	if err != nil {
		out.Err = eris.Wrap(err, "pipeline: tag existing record")
		return
	}

	out.Resolution = &Resolution{
		Kind:       ResolvedExisting,
		RecordID:   rec.ID,
		RecordType: rec.Attributes.Type,
		OwnerID:    owner,
	}
	p.notify(ctx, c, existingEntityPost(rec.ID, rec.Attributes.Type, owner, prof.DisplayName), out, log)
}

// resolveByDomain handles members unknown by email: classify the domain,
// then either attach a Contact to a matched Account or create a Lead.
func (p *Pipeline) resolveByDomain(ctx context.Context, c salesforce.Client, prof UserProfile, domain string, out *Outcome, log *zap.Logger) {
	out.Stage = StageClassify
	company, err := p.kickfire.Lookup(ctx, domain)
	if err != nil {
		// Classifier failure means "no company", not a dead event.
		log.Warn("pipeline: domain classify failed", zap.String("domain", domain), zap.Error(err))
		company = nil
	}

	// ISP and unclassified domains go straight to an unqualified lead;
	// the domain search would only match coincidental text.
	if company == nil || company.ISP {
		p.createLead(ctx, c, prof, "", out, log)
		return
	}

	out.Stage = StageDomainSearch
	records, err := c.Search(ctx, salesforce.DomainSearch(domain))
	if err != nil {
		out.Err = eris.Wrap(err, "pipeline: domain search")
		return
	}

	if acct, ok := unambiguousAccount(records); ok {
		p.createContact(ctx, c, prof, acct.ID, acct.OwnerID, out, log)
		return
	}

	if len(records) > 0 && records[0].Attributes.Type == salesforce.TypeContact {
		accountID := records[0].AccountID
		ownerID, err := salesforce.GetAccountOwner(ctx, c, accountID)
		if err != nil {
			out.Err = eris.Wrap(err, "pipeline: account owner lookup")
			return
		}
		p.createContact(ctx, c, prof, accountID, ownerID, out, log)
		return
	}

	p.createLead(ctx, c, prof, company.Name, out, log)
}

// unambiguousAccount returns the top hit when it is an Account and no second
// Account competes with it. Two Accounts at the front means the domain maps
// to more than one org, so nothing is chosen.
func unambiguousAccount(records []salesforce.SearchRecord) (salesforce.SearchRecord, bool) {
	if len(records) == 0 || records[0].Attributes.Type != salesforce.TypeAccount {
		return salesforce.SearchRecord{}, false
	}
	if len(records) > 1 && records[1].Attributes.Type == salesforce.TypeAccount {
		return salesforce.SearchRecord{}, false
	}
	return records[0], true
}

func (p *Pipeline) createContact(ctx context.Context, c salesforce.Client, prof UserProfile, accountID, ownerID string, out *Outcome, log *zap.Logger) {
	out.Stage = StageCreateContact

	fields := map[string]any{
		"FirstName":          prof.FirstName,
		"LastName":           prof.LastName,
		"Email":              prof.Email,
		"HasOptedOutOfEmail": true,
		"LeadSource":         "Community",
		"AccountId":          accountID,
		p.externalIDField:    prof.ID,
	}
	if ownerID != "" {
		fields["OwnerId"] = ownerID
	}

	id, err := c.InsertOne(ctx, salesforce.TypeContact, fields)
	if err != nil {
		out.Err = eris.Wrap(err, "pipeline: create contact")
		return
	}

	out.Resolution = &Resolution{
		Kind:      ResolvedNewContact,
		RecordID:  id,
		AccountID: accountID,
		OwnerID:   ownerID,
	}
	p.notify(ctx, c, newEntityPost(id, salesforce.TypeContact, ownerID, prof.DisplayName), out, log)
}

func (p *Pipeline) createLead(ctx context.Context, c salesforce.Client, prof UserProfile, company string, out *Outcome, log *zap.Logger) {
	out.Stage = StageCreateLead

	if company == "" {
		company = "Unknown"
	}

	id, err := c.InsertOne(ctx, salesforce.TypeLead, map[string]any{
		"FirstName":          prof.FirstName,
		"LastName":           prof.LastName,
		"Email":              prof.Email,
		"HasOptedOutOfEmail": true,
		"LeadSource":         "Community",
		"Company":            company,
		p.externalIDField:    prof.ID,
	})
	if err != nil {
		out.Err = eris.Wrap(err, "pipeline: create lead")
		return
	}

	out.Resolution = &Resolution{
		Kind:     ResolvedNewLead,
		RecordID: id,
		Company:  company,
	}
	// Leads have no resolved owner at creation time, so no mention.
	p.notify(ctx, c, newEntityPost(id, salesforce.TypeLead, "", prof.DisplayName), out, log)
}
