package minio_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/bounoable/mediadrive"
	"github.com/bounoable/mediadrive/minio"
	gominio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type request struct {
	method      string
	path        string
	contentType string
	size        int
	part        bool
}

// bucketServer fakes the object endpoints of an S3-compatible store.
type bucketServer struct {
	mux      sync.Mutex
	requests []request
	objects  map[string][]byte
}

func (s *bucketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mux.Lock()
	defer s.mux.Unlock()

	q := r.URL.Query()
	s.requests = append(s.requests, request{
		method:      r.Method,
		path:        r.URL.Path,
		contentType: r.Header.Get("Content-Type"),
		size:        len(body),
		part:        q.Has("partNumber"),
	})

	switch {
	case r.Method == http.MethodPost && q.Has("uploads"):
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<InitiateMultipartUploadResult><Bucket>media</Bucket><Key>%s</Key><UploadId>upload-1</UploadId></InitiateMultipartUploadResult>`, r.URL.Path)
	case r.Method == http.MethodPut && q.Has("partNumber"):
		w.Header().Set("ETag", fmt.Sprintf(`"part-%s"`, q.Get("partNumber")))
	case r.Method == http.MethodPost && q.Has("uploadId"):
		s.objects[r.URL.Path] = nil
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<CompleteMultipartUploadResult><Bucket>media</Bucket><Key>%s</Key><ETag>"complete"</ETag></CompleteMultipartUploadResult>`, r.URL.Path)
	case r.Method == http.MethodPut:
		s.objects[r.URL.Path] = body
		w.Header().Set("ETag", `"object"`)
	case r.Method == http.MethodDelete:
		delete(s.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *bucketServer) recorded() []request {
	s.mux.Lock()
	defer s.mux.Unlock()
	return append([]request{}, s.requests...)
}

func (s *bucketServer) object(path string) ([]byte, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	b, ok := s.objects[path]
	return b, ok
}

func newTestDisk(t *testing.T) (*minio.Disk, *bucketServer) {
	srv := &bucketServer{objects: make(map[string][]byte)}
	ts := httptest.NewTLSServer(srv)
	t.Cleanup(ts.Close)

	u, err := url.Parse(ts.URL)
	require.NoError(t, err)

	client, err := gominio.New(u.Host, &gominio.Options{
		Creds:     credentials.NewStaticV4("some-key-id", "some-app-key", ""),
		Secure:    true,
		Region:    "us-east-1",
		Transport: ts.Client().Transport,
	})
	require.NoError(t, err)

	return minio.NewDisk(client, "media"), srv
}

func TestDisk_Put(t *testing.T) {
	disk, srv := newTestDisk(t)

	err := disk.Put(context.Background(), "uploads/doc1.pdf", []byte("%PDF-1.7"), mediadrive.PutOptions{
		ContentType: "application/pdf",
	})
	require.NoError(t, err)

	requests := srv.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodPut, requests[0].method)
	assert.Equal(t, "/media/uploads/doc1.pdf", requests[0].path)
	assert.Equal(t, "application/pdf", requests[0].contentType)

	b, ok := srv.object("/media/uploads/doc1.pdf")
	assert.True(t, ok)
	assert.Equal(t, []byte("%PDF-1.7"), b)
}

func TestDisk_Put_smallBlockSize(t *testing.T) {
	disk, srv := newTestDisk(t)

	data := bytes.Repeat([]byte("x"), 6*1024*1024)
	err := disk.Put(context.Background(), "uploads/video.mp4", data, mediadrive.PutOptions{
		ContentType: "video/mp4",
		BlockSize:   1024,
		Concurrency: 1,
	})
	require.NoError(t, err)

	var sizes []int
	for _, req := range srv.recorded() {
		if req.part {
			sizes = append(sizes, req.size)
		}
	}

	// 6 MiB in parts of at least 5 MiB
	assert.ElementsMatch(t, []int{5 * 1024 * 1024, 1024 * 1024}, sizes)

	_, ok := srv.object("/media/uploads/video.mp4")
	assert.True(t, ok)
}

func TestDisk_Delete(t *testing.T) {
	disk, srv := newTestDisk(t)

	require.NoError(t, disk.Put(context.Background(), "uploads/doc1.pdf", []byte("pdf"), mediadrive.PutOptions{}))
	require.NoError(t, disk.Delete(context.Background(), "uploads/doc1.pdf"))

	_, ok := srv.object("/media/uploads/doc1.pdf")
	assert.False(t, ok)
}

func TestDisk_BaseURL(t *testing.T) {
	disk, _ := newTestDisk(t)

	assert.Equal(t, disk.Client.EndpointURL().String()+"/media", disk.BaseURL())
}
