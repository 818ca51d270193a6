package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	storage "github.com/supabase-community/storage-go"

	ie "github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/errors"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
)

type fakeStorage struct {
	files    map[string][]byte // bucket/key -> data
	lists    []string          // prefixes we were asked to list
	uploaded map[string]string // bucket/key -> content type
	err      error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: map[string][]byte{}, uploaded: map[string]string{}}
}

func (f *fakeStorage) UploadFile(bucket, key string, data io.Reader, opts ...storage.FileOptions) (storage.FileUploadResponse, error) {
	if f.err != nil {
		return storage.FileUploadResponse{}, f.err
	}
	b, _ := io.ReadAll(data)
	f.files[bucket+"/"+key] = b
	f.uploaded[bucket+"/"+key] = *opts[0].ContentType
	return storage.FileUploadResponse{}, nil
}

func (f *fakeStorage) DownloadFile(bucket, key string, _ ...storage.UrlOptions) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.files[bucket+"/"+key]
	if !ok {
		return nil, &storage.StorageError{Message: "Object not found"}
	}
	return b, nil
}

func (f *fakeStorage) RemoveFile(bucket string, keys []string) ([]storage.FileUploadResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, k := range keys {
		delete(f.files, bucket+"/"+k)
	}
	return nil, nil
}

func (f *fakeStorage) ListFiles(bucket, prefix string, opts storage.FileSearchOptions) ([]storage.FileObject, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lists = append(f.lists, fmt.Sprintf("%s:%d", prefix, opts.Offset))
	// a "folder" with many files in it, only one of which matches
	out := []storage.FileObject{}
	for i := opts.Offset; i < opts.Offset+opts.Limit && i < 25; i++ {
		out = append(out, storage.FileObject{Name: fmt.Sprintf("other-%d", i)})
	}
	for k := range f.files {
		if k == bucket+"/"+prefix+"/target.jpg" && len(out) < opts.Limit {
			out = append(out, storage.FileObject{Name: "target.jpg"})
		}
	}
	return out, nil
}

func TestSupabaseExists(t *testing.T) {
	fake := newFakeStorage()
	s := &Supabase{opts: &Options{ListPageSize: 10}, api: fake}
	loc := structs.Location{Container: "staging", Key: "u1/target.jpg"}

	ok, err := s.Exists(context.Background(), loc)

	assert.Nil(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"u1:0", "u1:10", "u1:20"}, fake.lists)

	fake.files["staging/u1/target.jpg"] = []byte("x")
	fake.lists = nil

	ok, err = s.Exists(context.Background(), loc)

	assert.Nil(t, err)
	assert.True(t, ok)
}

func TestSupabaseGetPutDelete(t *testing.T) {
	fake := newFakeStorage()
	s := &Supabase{opts: &Options{CacheControl: "60"}, api: fake}
	ctx := context.Background()
	loc := structs.Location{Container: "images", Key: "u1/a.jpg"}

	_, err := s.Get(ctx, loc)
	assert.True(t, errors.Is(err, ie.ErrNotFound))

	err = s.Put(ctx, loc, []byte("data"), "image/jpeg")
	assert.Nil(t, err)
	assert.Equal(t, "image/jpeg", fake.uploaded["images/u1/a.jpg"])

	data, err := s.Get(ctx, loc)
	assert.Nil(t, err)
	assert.Equal(t, []byte("data"), data)

	assert.Nil(t, s.Delete(ctx, loc))
	_, err = s.Get(ctx, loc)
	assert.True(t, errors.Is(err, ie.ErrNotFound))
}

func TestSupabaseErrors(t *testing.T) {
	fake := newFakeStorage()
	fake.err = &storage.StorageError{Status: 500, Message: "boom"}
	s := &Supabase{opts: &Options{ListPageSize: 10}, api: fake}
	ctx := context.Background()
	loc := structs.Location{Container: "images", Key: "a.jpg"}

	_, err := s.Exists(ctx, loc)
	assert.NotNil(t, err)
	_, err = s.Get(ctx, loc)
	assert.False(t, errors.Is(err, ie.ErrNotFound))
	assert.NotNil(t, s.Put(ctx, loc, nil, "image/png"))
	assert.NotNil(t, s.Delete(ctx, loc))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.Get(cancelled, loc)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestIsNotFound(t *testing.T) {
	cases := []struct {
		Name   string
		Given  error
		Expect bool
	}{
		{"Nil", nil, false},
		{"Other", fmt.Errorf("not found"), false},
		{"Status", &storage.StorageError{Status: 404}, true},
		{"Message", &storage.StorageError{Message: "Object not found"}, true},
		{"ServerError", &storage.StorageError{Status: 500, Message: "internal"}, false},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, isNotFound(c.Given))
		})
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	loc := structs.Location{Container: "staging", Key: "k"}

	ok, err := m.Exists(ctx, loc)
	assert.Nil(t, err)
	assert.False(t, ok)

	assert.Nil(t, m.Put(ctx, loc, []byte("v"), "image/png"))

	ok, _ = m.Exists(ctx, loc)
	assert.True(t, ok)
	data, err := m.Get(ctx, loc)
	assert.Nil(t, err)
	assert.Equal(t, []byte("v"), data)
	assert.Equal(t, "image/png", m.ContentType(loc))
	assert.Equal(t, []string{"k"}, m.Keys("staging"))

	assert.Nil(t, m.Delete(ctx, loc))
	assert.Nil(t, m.Delete(ctx, loc))
	_, err = m.Get(ctx, loc)
	assert.True(t, errors.Is(err, ie.ErrNotFound))
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(&Options{Driver: "floppy"})

	assert.True(t, errors.Is(err, ie.ErrNotSupported))
}
