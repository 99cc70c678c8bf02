package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/contacthub/internal/common"
	"github.com/dmitrijs2005/contacthub/internal/server/contacts"
)

const msgContactNotFound = "Contact not found."

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var c contacts.Contact
	if !decodeJSON(w, r, &c) {
		return
	}
	if c.Name == "" {
		writeDetail(w, http.StatusBadRequest, "Name is required.")
		return
	}

	created, err := s.contacts.Create(r.Context(), identityFromContext(r.Context()), &c)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	c, err := s.contacts.Get(r.Context(), identityFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeDetail(w, http.StatusNotFound, msgContactNotFound)
			return
		}
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := contacts.ListFilter{
		Name:    q.Get("name"),
		Surname: q.Get("surname"),
		Email:   q.Get("email"),
		Skip:    intQueryParam(q.Get("skip")),
		Limit:   intQueryParam(q.Get("limit")),
	}

	list, err := s.contacts.List(r.Context(), identityFromContext(r.Context()), filter)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	var c contacts.Contact
	if !decodeJSON(w, r, &c) {
		return
	}
	c.ID = mux.Vars(r)["id"]

	updated, err := s.contacts.Update(r.Context(), identityFromContext(r.Context()), &c)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeDetail(w, http.StatusNotFound, msgContactNotFound)
			return
		}
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	err := s.contacts.Delete(r.Context(), identityFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeDetail(w, http.StatusNotFound, msgContactNotFound)
			return
		}
		s.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpcomingBirthdays(w http.ResponseWriter, r *http.Request) {
	days := intQueryParam(r.URL.Query().Get("days"))

	list, err := s.contacts.UpcomingBirthdays(r.Context(), identityFromContext(r.Context()), days)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// intQueryParam parses a positive integer query value; anything else is 0,
// which the services treat as "use the default".
func intQueryParam(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
