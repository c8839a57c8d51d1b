package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crystalfall/rpgserver/internal/game/spell"
	"github.com/crystalfall/rpgserver/internal/storage/postgres"
)

type castRequest struct {
	CasterID   string   `json:"casterId"`
	SpellIndex int      `json:"spellIndex"`
	TargetIDs  []string `json:"targetIds"`
}

// handleCast resolves a spell cast across multiple targets. A malformed
// caster id maps to the same 404 as a well-formed id that matches no
// character: id shape is a lookup detail, not part of the contract, and
// the equipment and position handlers answer the same way.
func (s *Server) handleCast(w http.ResponseWriter, r *http.Request) {
	var req castRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	casterID, err := uuid.Parse(req.CasterID)
	if err != nil {
		writeError(w, http.StatusNotFound, "caster not found")
		return
	}

	result, err := s.spells.Cast(r.Context(), casterID, req.SpellIndex, req.TargetIDs)
	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrCharacterNotFound):
			writeError(w, http.StatusNotFound, "caster not found")
		case errors.Is(err, spell.ErrInvalidSpell):
			writeError(w, http.StatusBadRequest, "spell does not exist")
		case errors.Is(err, spell.ErrNoTargets):
			writeError(w, http.StatusBadRequest, "targetIds must not be empty")
		default:
			s.logger.Error("resolving spell cast",
				zap.String("caster_id", req.CasterID),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "could not resolve cast")
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}
