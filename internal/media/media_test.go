package media

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	uploaded  uploader.UploadParams
	destroyed string
	err       error
	apiErr    string
}

func (f *fakeUploader) Upload(_ context.Context, _ interface{}, p uploader.UploadParams) (*uploader.UploadResult, error) {
	f.uploaded = p
	if f.err != nil {
		return nil, f.err
	}
	return &uploader.UploadResult{
		PublicID:  p.Folder + "/" + p.PublicID,
		SecureURL: "https://res.cloudinary.com/demo/" + p.PublicID + ".jpg",
		Error:     api.ErrorResp{Message: f.apiErr},
	}, nil
}

func (f *fakeUploader) Destroy(_ context.Context, p uploader.DestroyParams) (*uploader.DestroyResult, error) {
	f.destroyed = p.PublicID
	return &uploader.DestroyResult{Result: "ok"}, f.err
}

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  string
	}{
		{name: "jpeg", filename: "ribeye.JPG", size: 1024},
		{name: "webp", filename: "bisque.webp", size: MaxImageSize},
		{name: "too large", filename: "big.png", size: MaxImageSize + 1, wantErr: "too large"},
		{name: "wrong type", filename: "menu.pdf", size: 10, wantErr: "Invalid file type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImage(tt.filename, tt.size)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCloudinaryStore_Upload(t *testing.T) {
	fake := &fakeUploader{}
	store := newCloudinaryStore(fake, "bistro/menu", zerolog.Nop())
	store.now = func() time.Time { return time.Unix(1700000000, 0) }

	url, publicID, err := store.Upload(context.Background(), strings.NewReader("img"), "Grilled Ribeye.jpg")
	require.NoError(t, err)

	assert.Equal(t, "1700000000_Grilled_Ribeye", fake.uploaded.PublicID)
	assert.Equal(t, "bistro/menu", fake.uploaded.Folder)
	assert.Equal(t, "bistro/menu/1700000000_Grilled_Ribeye", publicID)
	assert.Contains(t, url, "https://")
}

func TestCloudinaryStore_Errors(t *testing.T) {
	t.Run("transport error", func(t *testing.T) {
		store := newCloudinaryStore(&fakeUploader{err: errors.New("timeout")}, "f", zerolog.Nop())
		_, _, err := store.Upload(context.Background(), strings.NewReader("x"), "a.png")
		assert.ErrorContains(t, err, "failed to upload to cloudinary")
	})

	t.Run("api error", func(t *testing.T) {
		store := newCloudinaryStore(&fakeUploader{apiErr: "Invalid image file"}, "f", zerolog.Nop())
		_, _, err := store.Upload(context.Background(), strings.NewReader("x"), "a.png")
		assert.ErrorContains(t, err, "Invalid image file")
	})
}

func TestCloudinaryStore_Delete(t *testing.T) {
	fake := &fakeUploader{}
	store := newCloudinaryStore(fake, "f", zerolog.Nop())

	require.NoError(t, store.Delete(context.Background(), ""))
	assert.Empty(t, fake.destroyed)

	require.NoError(t, store.Delete(context.Background(), "f/old"))
	assert.Equal(t, "f/old", fake.destroyed)
}

func TestDisabledStore(t *testing.T) {
	store := NewDisabledStore()

	_, _, err := store.Upload(context.Background(), strings.NewReader("x"), "a.png")
	assert.ErrorIs(t, err, ErrUploadsDisabled)
	assert.NoError(t, store.Delete(context.Background(), "anything"))
}
