package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"todoapi/internal/activity/model"
	"todoapi/internal/activity/service"
	"todoapi/middleware"
	"todoapi/pkg/logger"
)

const maxBodyBytes = 1 << 20

type ActivityHandler struct {
	Service *service.ActivityService
}

func NewActivityHandler(service *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{Service: service}
}

func (h *ActivityHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("no data"))
}

func (h *ActivityHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.Projections(h.Service.All()))
}

func (h *ActivityHandler) SearchTitle(w http.ResponseWriter, r *http.Request) {
	matches := h.Service.FindByTitleSubstring(r.PathValue("title"))
	writeJSON(w, http.StatusOK, model.Projections(matches))
}

func (h *ActivityHandler) SearchDescription(w http.ResponseWriter, r *http.Request) {
	matches := h.Service.FindByDescriptionSubstring(r.PathValue("description"))
	writeJSON(w, http.StatusOK, model.Projections(matches))
}

func (h *ActivityHandler) SearchID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	matches := []model.Activity{}
	if a, ok := h.Service.FindByID(id); ok {
		matches = append(matches, a)
	}
	writeJSON(w, http.StatusOK, model.Projections(matches))
}

func (h *ActivityHandler) SeeTitle(w http.ResponseWriter, r *http.Request) {
	title := r.PathValue("title")
	a, ok := h.Service.FindByTitleExact(title)
	if !ok {
		h.fail(w, r, fmt.Errorf("%w: title %q", model.ErrNotFound, title))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *ActivityHandler) SeeID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	a, ok := h.Service.FindByID(id)
	if !ok {
		h.fail(w, r, fmt.Errorf("%w: id %d", model.ErrNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *ActivityHandler) AddActivity(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: read body: %v", model.ErrMalformedInput, err))
		return
	}
	candidate, err := model.ParseActivity(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	created, err := h.Service.Add(candidate)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	logger.Sugar.Infof("Activity %d added", created.ID)
	w.WriteHeader(http.StatusCreated)
}

func (h *ActivityHandler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	deleted, err := h.Service.DeleteByID(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !deleted {
		h.fail(w, r, fmt.Errorf("%w: id %d", model.ErrNotFound, id))
		return
	}
	logger.Sugar.Infof("Activity %d deleted", id)
	w.WriteHeader(http.StatusOK)
}

// fail maps err to a status code and writes it with an empty body.
func (h *ActivityHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Sugar.Errorf("Handler: %s %s failed (request %s): %v", r.Method, r.URL.Path, middleware.RequestID(r.Context()), err)
	} else {
		logger.Sugar.Debugf("Handler: %s %s: %v", r.Method, r.URL.Path, err)
	}
	w.WriteHeader(status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func pathID(r *http.Request) (int, error) {
	raw := r.PathValue("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: id %q is not an integer", model.ErrMalformedInput, raw)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Sugar.Errorf("Error encoding response: %v", err)
	}
}
