package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"cov_inspection_service/internal/inspection/domain"
	errprocess "cov_inspection_service/pkg/err"
	"cov_inspection_service/pkg/logger"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Remote is the object-store backend contract.
type Remote interface {
	// Put uploads a local file. event and cov are folder hints; a hint
	// that cannot be realized degrades to the nearest resolved ancestor
	// instead of failing the upload. Returns the stored object key.
	Put(ctx context.Context, localPath, filename, event, cov string) (string, error)
	// Get resolves filename to an object key at call time and streams it.
	Get(ctx context.Context, filename string) (io.ReadCloser, error)
}

// ObjectAPI is the slice of the MinIO client the remote store uses.
type ObjectAPI interface {
	UploadFile(ctx context.Context, objectName, filePath, contentType string) (minio.UploadInfo, error)
	PutBytes(ctx context.Context, objectName string, data []byte, contentType string) error
	GetObject(ctx context.Context, objectName string) (io.ReadCloser, error)
	StatObject(ctx context.Context, objectName string) (bool, error)
	ListObjects(ctx context.Context, prefix string, recursive bool) <-chan minio.ObjectInfo
}

// folderMarker is the zero-byte object that realizes a folder prefix.
const folderMarker = ".folder"

// RemoteVideoStore keeps videos in MinIO under
// {root}/{event}/COV_{van}/{filename}. Folders are find-or-create marker
// prefixes.
type RemoteVideoStore struct {
	client ObjectAPI
	root   string
}

// NewRemoteVideoStore wraps an object client; root may be empty for
// bucket-top storage.
func NewRemoteVideoStore(client ObjectAPI, root string) *RemoteVideoStore {
	return &RemoteVideoStore{client: client, root: strings.Trim(root, "/")}
}

// ensureFolder finds or creates a folder prefix under parent. On any
// failure it returns the parent so the upload lands one level up.
func (s *RemoteVideoStore) ensureFolder(ctx context.Context, parent, name string) string {
	prefix := path.Join(parent, name)
	marker := path.Join(prefix, folderMarker)

	exists, err := s.client.StatObject(ctx, marker)
	if err != nil {
		logger.Log.Warn("remote folder lookup failed, using parent",
			zap.String("folder", prefix), zap.Error(err))
		return parent
	}
	if exists {
		return prefix
	}

	if err := s.client.PutBytes(ctx, marker, []byte{}, "application/octet-stream"); err != nil {
		logger.Log.Warn("remote folder create failed, using parent",
			zap.String("folder", prefix), zap.Error(err))
		return parent
	}
	return prefix
}

// Put uploads localPath under the deepest folder prefix that could be
// resolved.
func (s *RemoteVideoStore) Put(ctx context.Context, localPath, filename, event, cov string) (string, error) {
	prefix := s.root
	if event != "" {
		prefix = s.ensureFolder(ctx, prefix, event)
	}
	if cov != "" {
		prefix = s.ensureFolder(ctx, prefix, "COV_"+cov)
	}

	key := path.Join(prefix, filename)
	if _, err := s.client.UploadFile(ctx, key, localPath, "video/mp4"); err != nil {
		return "", errprocess.Set("remote upload failed: " + err.Error())
	}
	return key, nil
}

// Get scans the store for the filename. There is no cached name-to-key
// mapping; resolution happens per call so replaced or moved objects are
// always found at their current key.
func (s *RemoteVideoStore) Get(ctx context.Context, filename string) (io.ReadCloser, error) {
	for info := range s.client.ListObjects(ctx, s.root, true) {
		if info.Err != nil {
			return nil, errprocess.Set("remote list failed: " + info.Err.Error())
		}
		if path.Base(info.Key) != filename {
			continue
		}
		obj, err := s.client.GetObject(ctx, info.Key)
		if err != nil {
			return nil, errprocess.Set("remote get failed: " + err.Error())
		}
		return obj, nil
	}
	return nil, domain.ErrVideoNotFound
}
