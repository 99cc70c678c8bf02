package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/contacthub/internal/common"
)

// maxAvatarSize caps avatar uploads at 5 MiB.
const maxAvatarSize = 5 << 20

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, identityFromContext(r.Context()))
}

func (s *Server) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	snap := identityFromContext(r.Context())

	if err := s.auth.RequireAdmin(snap); err != nil {
		writeDetail(w, http.StatusForbidden, "Only admin users can access this endpoint")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize)
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid upload.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid upload.")
		return
	}
	defer file.Close()

	user, err := s.auth.UpdateAvatar(r.Context(), snap, header.Filename,
		header.Header.Get("Content-Type"), file)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeDetail(w, http.StatusNotFound, "User not found.")
			return
		}
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user.Snapshot())
}
