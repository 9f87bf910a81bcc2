package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	errx "github.com/ia-assistant/server/internal/core/error"
	"github.com/ia-assistant/server/internal/pipeline/model"
	logx "github.com/ia-assistant/server/pkg/logger"
)

const msgEmptyQuestion = "Por favor ingresa una pregunta o mensaje"

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	recent, err := h.deps.Runs.Recent(r.Context(), recentRuns)
	if err != nil {
		logx.Warn().Err(err).Msg("could not load recent runs")
		recent = nil
	}

	page := indexPage{Flashes: h.flashes.pop(w, r), Recent: recent}
	if err := h.views.render(w, http.StatusOK, "index.html", page); err != nil {
		h.fail(w, http.StatusInternalServerError, err)
	}
}

func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.fail(w, http.StatusBadRequest, err)
		return
	}

	in := model.RunInput{
		ID:             uuid.New(),
		UserInput:      strings.TrimSpace(r.PostFormValue("user_input")),
		RecipientEmail: strings.TrimSpace(r.PostFormValue("recipient_email")),
		UserFeedback:   strings.TrimSpace(r.PostFormValue("user_feedback")),
	}
	if in.UserInput == "" {
		h.redirectWithFlash(w, r, msgEmptyQuestion)
		return
	}

	state := h.deps.Runner.Run(r.Context(), in)

	record := model.NewRunRecord(in, state, h.now())
	if err := h.deps.Runs.Save(r.Context(), record); err != nil {
		logx.Warn().Err(err).Str("run_id", in.ID.String()).Msg("could not persist run record")
	}

	if state.HasError() {
		h.redirectWithFlash(w, r, state.Error)
		return
	}

	page := resultPage{Flashes: h.flashes.pop(w, r), Run: record}
	if err := h.views.render(w, http.StatusOK, "result.html", page); err != nil {
		h.fail(w, http.StatusInternalServerError, err)
	}
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	f, err := h.deps.Store.Open(filename)
	if err != nil {
		logx.Warn().Err(err).Str("filename", filename).Msg("download failed")
		h.redirectWithFlash(w, r, fmt.Sprintf("Error al descargar: %s", errx.SafeMessage(err)))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.fail(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeContent(w, r, filename, info.ModTime(), f)
}

func (h *Handler) handleResult(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, http.StatusNotFound, err)
		return
	}

	record, err := h.deps.Runs.Find(r.Context(), id)
	if err != nil {
		if errors.Is(err, errx.ErrNotFound) {
			h.fail(w, http.StatusNotFound, err)
			return
		}
		h.fail(w, errx.Status(err), err)
		return
	}

	page := resultPage{Flashes: h.flashes.pop(w, r), Run: *record}
	if err := h.views.render(w, http.StatusOK, "result.html", page); err != nil {
		h.fail(w, http.StatusInternalServerError, err)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
