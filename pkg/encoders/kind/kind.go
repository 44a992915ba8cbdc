// Package kind defines the event kind type and the range rules that govern
// event treatment.
package kind

// T is an event kind. The protocol constrains kinds to 16 bits.
type T uint16

const (
	// ProfileMetadata is the kind 0 replaceable profile event.
	ProfileMetadata T = 0
	// TextNote is the kind 1 short text note.
	TextNote T = 1
	// ContactList is the kind 3 replaceable follow list.
	ContactList T = 3
	// EncryptedDirectMessage is the kind 4 NIP-04 direct message.
	EncryptedDirectMessage T = 4
	// Deletion is the kind 5 deletion request.
	Deletion T = 5
	// GiftWrap is the kind 1059 NIP-59 sealed wrapper.
	GiftWrap T = 1059
	// ClientAuth is the kind 22242 NIP-42 authentication event.
	ClientAuth T = 22242
)

// IsPrivileged reports whether events of this kind are only delivered to
// their author and tagged counterparties when auth is enabled.
func (k T) IsPrivileged() bool {
	return k == EncryptedDirectMessage || k == GiftWrap
}

// IsReplaceable reports whether events of this kind replace prior events
// with the same (pubkey, kind) identity.
func (k T) IsReplaceable() bool {
	return k == ProfileMetadata || k == ContactList ||
		(k >= 10000 && k < 20000)
}

// IsParameterizedReplaceable reports whether events of this kind replace
// prior events with the same (pubkey, kind, d tag) identity.
func (k T) IsParameterizedReplaceable() bool {
	return k >= 30000 && k < 40000
}

// IsEphemeral reports whether events of this kind are never stored.
func (k T) IsEphemeral() bool { return k >= 20000 && k < 30000 }
