// Package media stores uploaded images and hands back {url, public id} pairs.
package media

import (
	"context"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Asset is a stored file as seen by the rest of the service.
type Asset struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

type Store interface {
	Upload(ctx context.Context, localPath string) (Asset, error)
	Delete(ctx context.Context, publicID string) error
}

// LocalStore keeps files in a directory that is served statically under publicPath.
type LocalStore struct {
	dir        string
	publicPath string
}

func NewLocalStore(dir, publicPath string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "create upload folder")
	}
	return &LocalStore{dir: dir, publicPath: strings.TrimRight(publicPath, "/")}, nil
}

func (s *LocalStore) Dir() string { return s.dir }

// Upload copies the file at localPath into the store under a fresh name.
func (s *LocalStore) Upload(ctx context.Context, localPath string) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}
	ext := strings.ToLower(filepath.Ext(localPath))
	publicID := uuid.NewString() + ext

	if err := copyFile(localPath, filepath.Join(s.dir, publicID)); err != nil {
		return Asset{}, errors.Wrapf(err, "store %s", filepath.Base(localPath))
	}
	return Asset{URL: s.publicPath + "/" + publicID, PublicID: publicID}, nil
}

// Delete removes a stored file. Deleting a missing file is not an error.
func (s *LocalStore) Delete(ctx context.Context, publicID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if publicID == "" || publicID != filepath.Base(publicID) {
		return errors.Errorf("invalid public id %q", publicID)
	}
	if err := os.Remove(filepath.Join(s.dir, publicID)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "delete %s", publicID)
	}
	return nil
}

// UploadMultipart spools a multipart file to a temp file and uploads it.
func UploadMultipart(ctx context.Context, store Store, fh *multipart.FileHeader) (Asset, error) {
	src, err := fh.Open()
	if err != nil {
		return Asset{}, errors.Wrap(err, "open upload")
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "upload-*"+strings.ToLower(filepath.Ext(fh.Filename)))
	if err != nil {
		return Asset{}, errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return Asset{}, errors.Wrap(err, "spool upload")
	}
	if err := tmp.Close(); err != nil {
		return Asset{}, errors.Wrap(err, "spool upload")
	}
	return store.Upload(ctx, tmp.Name())
}

// UploadAll uploads every file and deletes the ones already stored if a later one fails.
func UploadAll(ctx context.Context, store Store, files []*multipart.FileHeader) ([]Asset, error) {
	assets := make([]Asset, 0, len(files))
	for _, fh := range files {
		a, err := UploadMultipart(ctx, store, fh)
		if err != nil {
			for _, done := range assets {
				_ = store.Delete(ctx, done.PublicID)
			}
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, nil
}

// copyFile copies a single file
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
