package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/klass-lk/blogboot/internal/model"
	"github.com/klass-lk/blogboot/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUploadController_GetCoverUploadURL(t *testing.T) {
	files := new(MockFileService)
	srv := newTestServer("/uploads", NewUploadController(files, authenticate()))

	expiresAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	files.On("GetUploadURL", mock.Anything, "trip.jpg", CoverPrefix).Return(storage.PresignedUpload{
		Key:       "covers/abc-trip.jpg",
		UploadURL: "https://bucket.s3/covers/abc-trip.jpg?X-Amz-Signature=put",
		URL:       "https://bucket.s3/covers/abc-trip.jpg?X-Amz-Signature=get",
		ExpiresAt: expiresAt,
	}, nil).Once()
	files.On("GetUploadURL", mock.Anything, "broken.jpg", CoverPrefix).Return(storage.PresignedUpload{}, errors.New("no credentials")).Once()

	admin := bearer(t, "a1", model.RoleAdmin)

	w := perform(srv, http.MethodPost, "/api/uploads/cover-url", `{"fileName":"trip.jpg"}`, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var body storage.PresignedUpload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "covers/abc-trip.jpg", body.Key)
	assert.True(t, body.ExpiresAt.Equal(expiresAt))

	w = perform(srv, http.MethodPost, "/api/uploads/cover-url", `{"fileName":"broken.jpg"}`, admin)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = perform(srv, http.MethodPost, "/api/uploads/cover-url", `{}`, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(srv, http.MethodPost, "/api/uploads/cover-url", `{"fileName":"trip.jpg"}`, bearer(t, "u1", model.RoleUser))
	assert.Equal(t, http.StatusForbidden, w.Code)
	files.AssertExpectations(t)
}
