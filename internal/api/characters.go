package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crystalfall/rpgserver/internal/game/character"
	"github.com/crystalfall/rpgserver/internal/game/patch"
	"github.com/crystalfall/rpgserver/internal/storage/postgres"
)

func (s *Server) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	chars, err := s.characters.List(r.Context())
	if err != nil {
		s.logger.Error("listing characters", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list characters")
		return
	}
	writeJSON(w, http.StatusOK, chars)
}

func (s *Server) handleListMonsters(w http.ResponseWriter, r *http.Request) {
	monsters, err := s.monsters.List(r.Context())
	if err != nil {
		s.logger.Error("listing monsters", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list monsters")
		return
	}
	writeJSON(w, http.StatusOK, monsters)
}

func (s *Server) handleListInventory(w http.ResponseWriter, r *http.Request) {
	items, err := s.items.List(r.Context())
	if err != nil {
		s.logger.Error("listing inventory", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list inventory")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type equipRequest struct {
	Slot   string `json:"slot"`
	ItemID string `json:"itemId"`
}

// handleEquip sets an equipment slot, recomputes derived attributes, and
// persists the character. The item id is deliberately not checked for
// existence: a dangling reference self-heals to zero stats through the
// resolver rather than producing an inconsistent error state.
func (s *Server) handleEquip(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "character not found")
		return
	}

	var req equipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !character.ValidSlot(req.Slot) {
		writeError(w, http.StatusBadRequest, "slot must be one of weapon, armor, accessory")
		return
	}

	c, err := s.characters.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, postgres.ErrCharacterNotFound) {
			writeError(w, http.StatusNotFound, "character not found")
			return
		}
		s.logger.Error("loading character", zap.String("id", id.String()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load character")
		return
	}

	c.Equipment.SetSlot(req.Slot, req.ItemID)

	if err := s.resolveAndSave(r.Context(), c); err != nil {
		s.logger.Error("saving equipped character", zap.String("id", id.String()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not update equipment")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "character not found")
		return
	}

	c, err := s.characters.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, postgres.ErrCharacterNotFound) {
			writeError(w, http.StatusNotFound, "character not found")
			return
		}
		s.logger.Error("loading character position", zap.String("id", id.String()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load position")
		return
	}
	writeJSON(w, http.StatusOK, map[string]character.Position{"position": c.Position})
}

type formationEntry struct {
	ID        string `json:"id"`
	Formation string `json:"formation"`
}

type formationRequest struct {
	Formations []formationEntry `json:"formations"`
}

// handleFormation updates the battle row of several characters in one
// batched write.
func (s *Server) handleFormation(w http.ResponseWriter, r *http.Request) {
	var req formationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Formations == nil {
		writeError(w, http.StatusBadRequest, "expected a formations array")
		return
	}

	updates := make([]postgres.CharacterUpdate, 0, len(req.Formations))
	for _, f := range req.Formations {
		if !character.ValidFormation(f.Formation) {
			writeError(w, http.StatusBadRequest, "formation must be vanguard or rearguard")
			return
		}
		id, err := uuid.Parse(f.ID)
		if err != nil {
			// Unresolvable ids are no-ops, same as ids that match no row.
			continue
		}
		updates = append(updates, postgres.CharacterUpdate{
			ID:  id,
			Set: map[string]any{patch.FieldFormation: f.Formation},
		})
	}

	modified, err := s.characters.BulkApply(r.Context(), updates)
	if err != nil {
		s.logger.Error("updating formations", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not update formations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"modifiedCount": modified})
}

type bulkRequest struct {
	Characters []patch.Character `json:"characters"`
}

// handleBulk applies a heterogeneous list of sparse character patches.
// Each character's update is atomic; a patch whose target id does not
// exist is silently a no-op. Formation values are validated before any
// write: the whole batch runs as one statement sequence, so a value the
// store would reject must never reach it.
func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Characters == nil {
		writeError(w, http.StatusBadRequest, "expected a characters array")
		return
	}

	updates := make([]postgres.CharacterUpdate, 0, len(req.Characters))
	for _, p := range req.Characters {
		if p.Formation != nil && !character.ValidFormation(*p.Formation) {
			writeError(w, http.StatusBadRequest, "formation must be vanguard or rearguard")
			return
		}
		id, err := uuid.Parse(p.ID)
		if err != nil {
			continue
		}
		set := p.Changes()
		if len(set) == 0 {
			continue
		}
		updates = append(updates, postgres.CharacterUpdate{ID: id, Set: set})
	}

	modified, err := s.characters.BulkApply(r.Context(), updates)
	if err != nil {
		s.logger.Error("applying bulk update", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save characters")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "modifiedCount": modified})
}
