package relay

import (
	"encoding/json"
	"net/http"
	"time"

	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/protocol/relayinfo"
	"roost.dev/pkg/protocol/socketapi"
	"roost.dev/pkg/utils/chk"
	"roost.dev/pkg/version"
)

// handleRelayInfo serves the NIP-11 information document.
func (s *Server) handleRelayInfo(w http.ResponseWriter, r *http.Request) {
	now := time.Now().Unix()
	postingPolicy := ""
	if len(s.owner) > 0 {
		postingPolicy = "owner-only relay, events from other keys are refused"
	}
	info := &relayinfo.T{
		Name:        s.cfg.Name,
		Description: s.cfg.Description,
		Pubkey:      s.cfg.Pubkey,
		Contact:     s.cfg.Contact,
		Nips:        s.SupportedNIPs(),
		Software:    version.URL,
		Version:     version.V,
		Limitation: relayinfo.Limits{
			MaxMessageLength:    socketapi.MaxMessageSize,
			MaxSubscriptions:    s.cfg.MaxSubs,
			MaxFilters:          socketapi.MaxFilters,
			MaxLimit:            socketapi.MaxQueryLimit,
			MaxSubidLength:      socketapi.MaxSubIDLength,
			MaxEventTags:        event.MaxTags,
			MaxContentLength:    event.MaxContentLength,
			MinPowDifficulty:    s.cfg.MinPow,
			AuthRequired:        s.cfg.AuthRequired,
			RestrictedWrites:    len(s.owner) > 0,
			CreatedAtLowerLimit: now - s.cfg.PastLimit,
			CreatedAtUpperLimit: now + s.cfg.FutureLimit,
		},
		PostingPolicy: postingPolicy,
		LanguageTags:  []string{"en"},
		Tags:          []string{"personal"},
	}
	w.Header().Set("Content-Type", "application/nostr+json")
	chk.E(json.NewEncoder(w).Encode(info))
}
