package router

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"b2b-market-api/internal/domain"
)

func (s *testServer) doUpload(t *testing.T, token string, filenames []string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range filenames {
		fw, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestUploadImages(t *testing.T) {
	s := newTestServer(t)
	_, sellerTok := s.seedUser(t, domain.RoleSeller, true, true)
	_, buyerTok := s.seedUser(t, domain.RoleBuyer, false, true)

	t.Run("seller only", func(t *testing.T) {
		w, _ := s.doUpload(t, buyerTok, []string{"a.jpg"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("saves and returns paths", func(t *testing.T) {
		w, env := s.doUpload(t, sellerTok, []string{"a.jpg", "b.png"})
		require.Equal(t, http.StatusOK, w.Code)
		var out struct {
			Paths []string `json:"paths"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &out))
		require.Len(t, out.Paths, 2)
		for _, p := range out.Paths {
			assert.Contains(t, p, "/uploads/")
		}
	})

	t.Run("rejects unsupported extension", func(t *testing.T) {
		w, _ := s.doUpload(t, sellerTok, []string{"script.exe"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects too many files", func(t *testing.T) {
		w, _ := s.doUpload(t, sellerTok, []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg", "6.jpg"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
