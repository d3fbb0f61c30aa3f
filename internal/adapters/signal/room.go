package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"codesync-server/internal/core"
	"codesync-server/internal/domain"
)

func (ctl *SignalWSController) handleJoin(
	sid domain.ConnID,
	conn core.SignalConnection,
	data []byte,
) {
	type joinPayload struct {
		Type     string `json:"type"`
		Room     string `json:"room"`
		Username string `json:"username"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	if err := ctl.Relay.Join(sid, domain.RoomID(p.Room), p.Username); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("join rejected")
		ctl.sendError(conn, err.Error())
		return
	}
}

func (ctl *SignalWSController) handleContentChange(
	sid domain.ConnID,
	conn core.SignalConnection,
	data []byte,
) {
	if !ctl.limiter.Allow(sid) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("content change rate limited")
		return
	}
	type contentPayload struct {
		Type    string `json:"type"`
		Room    string `json:"room"`
		Content string `json:"content"`
	}
	var p contentPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad content payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	ctl.Relay.ContentChange(sid, domain.RoomID(p.Room), p.Content)
}

func (ctl *SignalWSController) handleSync(
	sid domain.ConnID,
	conn core.SignalConnection,
	data []byte,
) {
	type syncPayload struct {
		Type    string `json:"type"`
		SID     string `json:"sid"`
		Content string `json:"content"`
	}
	var p syncPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad sync payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	ctl.Relay.Sync(sid, domain.ConnID(p.SID), p.Content)
}
