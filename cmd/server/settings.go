package main

import "net/http"

func (s *server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	current, err := s.settings.Get(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, current)
}

// handleSettingsPut applies the body on top of the current settings, so
// omitted fields keep their stored values.
func (s *server) handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	current, err := s.settings.Get(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := decodeJSON(w, r, &current); err != nil {
		s.fail(w, r, err)
		return
	}

	updated, err := s.settings.Update(r.Context(), current)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, updated)
}
