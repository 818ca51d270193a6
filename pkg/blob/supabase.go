package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	storage "github.com/supabase-community/storage-go"
	supa "github.com/supabase-community/supabase-go"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/errors"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
)

// storageAPI is the subset of the supabase storage client we use.
type storageAPI interface {
	UploadFile(bucketId, relativePath string, data io.Reader, fileOptions ...storage.FileOptions) (storage.FileUploadResponse, error)
	DownloadFile(bucketId, filePath string, urlOptions ...storage.UrlOptions) ([]byte, error)
	RemoveFile(bucketId string, paths []string) ([]storage.FileUploadResponse, error)
	ListFiles(bucketId, queryPath string, options storage.FileSearchOptions) ([]storage.FileObject, error)
}

// Supabase is a Store backed by supabase storage buckets.
type Supabase struct {
	opts *Options
	api  storageAPI
}

func NewSupabase(opts *Options) (*Supabase, error) {
	opts.SetDefaults()
	client, err := supa.NewClient(opts.URL, opts.Key, nil)
	if err != nil {
		return nil, fmt.Errorf("%w supabase client: %v", errors.ErrInvalidArg, err)
	}
	return &Supabase{opts: opts, api: client.Storage}, nil
}

// Exists lists the object's parent folder & looks for it by name; storage has
// no cheaper way to ask.
func (s *Supabase) Exists(ctx context.Context, loc structs.Location) (bool, error) {
	dir, name := path.Split(loc.Key)
	dir = strings.TrimSuffix(dir, "/")

	for offset := 0; ; offset += s.opts.ListPageSize {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		objs, err := s.api.ListFiles(loc.Container, dir, storage.FileSearchOptions{
			Limit:  s.opts.ListPageSize,
			Offset: offset,
		})
		if err != nil {
			return false, err
		}
		for _, o := range objs {
			if o.Name == name {
				return true, nil
			}
		}
		if len(objs) < s.opts.ListPageSize {
			return false, nil
		}
	}
}

func (s *Supabase) Get(ctx context.Context, loc structs.Location) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.api.DownloadFile(loc.Container, loc.Key)
	if isNotFound(err) {
		return nil, fmt.Errorf("%w %s", errors.ErrNotFound, loc)
	}
	return data, err
}

func (s *Supabase) Put(ctx context.Context, loc structs.Location, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	upsert := false
	_, err := s.api.UploadFile(loc.Container, loc.Key, bytes.NewReader(data), storage.FileOptions{
		ContentType:  &contentType,
		CacheControl: &s.opts.CacheControl,
		Upsert:       &upsert,
	})
	return err
}

func (s *Supabase) Delete(ctx context.Context, loc structs.Location) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.api.RemoveFile(loc.Container, []string{loc.Key})
	if isNotFound(err) {
		return nil
	}
	return err
}

// isNotFound sniffs storage errors, which don't reliably carry a status code.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	serr, ok := err.(*storage.StorageError)
	if !ok {
		return false
	}
	return serr.Status == http.StatusNotFound || strings.Contains(strings.ToLower(serr.Message), "not found")
}
