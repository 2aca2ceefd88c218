package remark

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/taskboard/pkg/cerr"
)

// DownloadAttachment serves GET /attachments/{remarkID}. It sits behind the
// auth and cerr chi middleware, so errors are handed to cerr.
func (s *Server) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rm, err := s.repo.Get(ctx, chi.URLParam(r, "remarkID"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if _, err := s.tasks.Viewable(ctx, rm.TaskID); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if rm.Attachment == nil {
		cerr.SetNewJSONError(ctx, cerr.NotFound, "remark has no attachment", nil)
		return
	}
	data, err := s.attachments.Get(ctx, rm.Attachment.ID)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	w.Header().Set("Content-Type", rm.Attachment.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": rm.Attachment.Name}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
