package remark

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/oklog/ulid/v2"

	taskboardv1 "github.com/kazz187/taskboard/api/taskboard/v1"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

const (
	attachmentsPrefix = "attachments"

	DefaultMaxAttachmentSize = 10 << 20
)

// AttachmentStore keeps attachment bytes in storage, keyed by attachment id.
type AttachmentStore struct {
	storage storage.Storage
	maxSize int64
}

func NewAttachmentStore(s storage.Storage, maxSize int64) *AttachmentStore {
	if maxSize <= 0 {
		maxSize = DefaultMaxAttachmentSize
	}
	return &AttachmentStore{storage: s, maxSize: maxSize}
}

func attachmentPath(id string) string {
	return attachmentsPrefix + "/" + id
}

// Put validates and stores an upload and returns its descriptor.
func (s *AttachmentStore) Put(ctx context.Context, up *taskboardv1.AttachmentUpload) (*Attachment, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(up.Name), `\`, "/"))
	if name == "" || name == "." || name == "/" {
		return nil, cerr.NewValidationError("invalid attachment", []cerr.Violation{{Field: "attachment.name", Message: "file name is required"}})
	}
	if len(up.Data) == 0 {
		return nil, cerr.NewValidationError("invalid attachment", []cerr.Violation{{Field: "attachment.data", Message: "file is empty"}})
	}
	if int64(len(up.Data)) > s.maxSize {
		return nil, cerr.NewValidationError("invalid attachment", []cerr.Violation{{
			Field:   "attachment.data",
			Message: fmt.Sprintf("file must be at most %d bytes", s.maxSize),
		}})
	}
	a := &Attachment{
		ID:          ulid.Make().String(),
		Name:        name,
		ContentType: contentType(name, up),
		Size:        int64(len(up.Data)),
	}
	if err := s.storage.Write(ctx, attachmentPath(a.ID), up.Data); err != nil {
		return nil, cerr.WrapStorageWriteError("attachment", err)
	}
	return a, nil
}

func (s *AttachmentStore) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := s.storage.Read(ctx, attachmentPath(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError("attachment", err)
	}
	return data, nil
}

func (s *AttachmentStore) Delete(ctx context.Context, id string) error {
	if err := s.storage.Delete(ctx, attachmentPath(id)); err != nil {
		return cerr.WrapStorageDeleteError("attachment", err)
	}
	return nil
}

// contentType trusts the client first, then the extension, then sniffs.
func contentType(name string, up *taskboardv1.AttachmentUpload) string {
	if up.ContentType != "" {
		return up.ContentType
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return http.DetectContentType(up.Data)
}
