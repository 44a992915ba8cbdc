// Package relayinfo models the NIP-11 relay information document.
package relayinfo

// Limits is the limitation object of the information document.
type Limits struct {
	MaxMessageLength    int   `json:"max_message_length,omitempty"`
	MaxSubscriptions    int   `json:"max_subscriptions,omitempty"`
	MaxFilters          int   `json:"max_filters,omitempty"`
	MaxLimit            int   `json:"max_limit,omitempty"`
	MaxSubidLength      int   `json:"max_subid_length,omitempty"`
	MaxEventTags        int   `json:"max_event_tags,omitempty"`
	MaxContentLength    int   `json:"max_content_length,omitempty"`
	MinPowDifficulty    int   `json:"min_pow_difficulty"`
	AuthRequired        bool  `json:"auth_required"`
	PaymentRequired     bool  `json:"payment_required"`
	RestrictedWrites    bool  `json:"restricted_writes"`
	CreatedAtLowerLimit int64 `json:"created_at_lower_limit,omitempty"`
	CreatedAtUpperLimit int64 `json:"created_at_upper_limit,omitempty"`
}

// T is the relay information document served for application/nostr+json
// requests on the relay root.
type T struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Pubkey        string   `json:"pubkey,omitempty"`
	Contact       string   `json:"contact,omitempty"`
	Nips          []int    `json:"supported_nips"`
	Software      string   `json:"software"`
	Version       string   `json:"version"`
	Limitation    Limits   `json:"limitation"`
	PostingPolicy string   `json:"posting_policy,omitempty"`
	LanguageTags  []string `json:"language_tags,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Icon          string   `json:"icon,omitempty"`
}

// SupportedNIPs lists the protocol extensions this codebase implements.
func SupportedNIPs() []int {
	return []int{
		1,  // basic protocol flow
		2,  // contact lists
		4,  // encrypted direct messages
		9,  // event deletion
		11, // relay information document
		12, // generic tag queries
		13, // proof of work
		15, // end of stored events notice
		16, // event treatment
		20, // command results
		22, // created_at limits
		26, // delegated event signing
		28, // public chat
		33, // parameterized replaceable events
		40, // expiration timestamp
		42, // client authentication
		45, // counting results
		50, // search
		65, // relay list metadata
	}
}
