package salesforce

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// Record type names returned in SOSL attributes.
const (
	TypeAccount = "Account"
	TypeContact = "Contact"
	TypeLead    = "Lead"
	TypeGroup   = "Group"
)

// groupKeyPrefix is the Salesforce ID key prefix for Group records. An
// OwnerId starting with it belongs to a public group or queue rather than
// a user.
const groupKeyPrefix = "00G"

// IsGroupID reports whether the given record ID is in the Group key space.
func IsGroupID(id string) bool {
	return strings.HasPrefix(id, groupKeyPrefix)
}

// RecordAttributes carries the SObject type tag of a search hit.
type RecordAttributes struct {
	Type string `json:"type"`
}

// SearchRecord is a single SOSL search hit. Fields outside the RETURNING
// clause for the record's type are zero.
type SearchRecord struct {
	Attributes RecordAttributes `json:"attributes"`
	ID         string           `json:"Id"`
	Name       string           `json:"Name"`
	OwnerID    string           `json:"OwnerId"`
	AccountID  string           `json:"AccountId"`
}

// searchResponse is the body of GET /search.
type searchResponse struct {
	SearchRecords []SearchRecord `json:"searchRecords"`
}

// Search runs a SOSL query and returns the hits in Salesforce relevance
// order.
func (c *sfClient) Search(ctx context.Context, sosl string) ([]SearchRecord, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "sf: rate limit")
	}
	resp, err := c.sf.DoRequest(http.MethodGet, "/search/?q="+url.QueryEscape(sosl), nil)
	if err != nil {
		return nil, eris.Wrap(err, "sf: search")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, eris.Errorf("sf: search status %d: %s", resp.StatusCode, string(body))
	}

	var result searchResponse
	if err := decodeJSON(resp.Body, &result); err != nil {
		return nil, eris.Wrap(err, "sf: decode search")
	}
	return result.SearchRecords, nil
}

// GetAccountOwner fetches the OwnerId of the given Account.
func GetAccountOwner(ctx context.Context, c Client, accountID string) (string, error) {
	soql := "SELECT Id, OwnerId FROM Account WHERE Id = '" + escapeSoql(accountID) + "' LIMIT 1"

	var accounts []struct {
		ID      string `json:"Id"`
		OwnerID string `json:"OwnerId"`
	}
	if err := c.Query(ctx, soql, &accounts); err != nil {
		return "", eris.Wrap(err, "sf: get account owner "+accountID)
	}
	if len(accounts) == 0 {
		return "", eris.New("sf: account not found: " + accountID)
	}
	return accounts[0].OwnerID, nil
}

// GetGroupType fetches the Type of the given Group (e.g. "Regular",
// "Queue").
func GetGroupType(ctx context.Context, c Client, groupID string) (string, error) {
	soql := "SELECT Id, Type FROM Group WHERE Id = '" + escapeSoql(groupID) + "' LIMIT 1"

	var groups []struct {
		ID   string `json:"Id"`
		Type string `json:"Type"`
	}
	if err := c.Query(ctx, soql, &groups); err != nil {
		return "", eris.Wrap(err, "sf: get group type "+groupID)
	}
	if len(groups) == 0 {
		return "", eris.New("sf: group not found: " + groupID)
	}
	return groups[0].Type, nil
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
