package models

import "fmt"

// Israeli HMO names as they appear in the knowledge base.
const (
	HMOMaccabi  = "מכבי"
	HMOMeuhedet = "מאוחדת"
	HMOClalit   = "כללית"
)

// Membership tiers as they appear in the knowledge base.
const (
	TierGold   = "זהב"
	TierSilver = "כסף"
	TierBronze = "ארד"
)

// KnownHMOs lists the supported HMOs in a fixed order.
var KnownHMOs = []string{HMOMaccabi, HMOMeuhedet, HMOClalit}

// KnownTiers lists the supported membership tiers in a fixed order.
var KnownTiers = []string{TierGold, TierSilver, TierBronze}

// UserProfile carries the user details collected during onboarding. The
// retrieval core reads it as a filter predicate and never mutates it.
// Confirmed marks that the user has approved their details; until then
// eligibility filtering is skipped.
type UserProfile struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	IDNumber       string `json:"id_number"`
	Gender         string `json:"gender"`
	Age            int    `json:"age"`
	HMO            string `json:"hmo"`
	HMOCardNumber  string `json:"hmo_card_number"`
	MembershipTier string `json:"membership_tier"`
	Confirmed      bool   `json:"confirmed"`
}

// Validate checks the fields the retrieval core depends on. HMO and tier are
// only required once the profile is confirmed.
func (p *UserProfile) Validate() error {
	if !p.Confirmed {
		return nil
	}
	if !contains(KnownHMOs, p.HMO) {
		return fmt.Errorf("unknown hmo: %q", p.HMO)
	}
	if !contains(KnownTiers, p.MembershipTier) {
		return fmt.Errorf("unknown membership tier: %q", p.MembershipTier)
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
