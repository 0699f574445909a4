package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"socialhub/internal/config"
	"socialhub/internal/model"
)

// memFile adapts a bytes.Reader to multipart.File.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func upload(data []byte, contentType string) (multipart.File, *multipart.FileHeader) {
	header := &multipart.FileHeader{
		Filename: "upload",
		Size:     int64(len(data)),
		Header:   textproto.MIMEHeader{},
	}
	if contentType != "" {
		header.Header.Set("Content-Type", contentType)
	}
	return memFile{bytes.NewReader(data)}, header
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestReadAndValidateImage(t *testing.T) {
	valid := pngBytes(t, 10, 10)

	tests := []struct {
		name        string
		data        []byte
		contentType string
		maxSize     int64
		wantErr     error
		wantType    string
	}{
		{"declared png", valid, "image/png", 1 << 20, nil, "image/png"},
		{"sniffed png", valid, "", 1 << 20, nil, "image/png"},
		{"content type params stripped", valid, "image/png; charset=binary", 1 << 20, nil, "image/png"},
		{"too large", valid, "image/png", 10, model.ErrFileTooLarge, ""},
		{"unsupported type", []byte("plain text"), "text/plain", 1 << 20, model.ErrInvalidImageType, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, header := upload(tt.data, tt.contentType)

			data, contentType, err := readAndValidateImage(file, header, tt.maxSize)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if contentType != tt.wantType || !bytes.Equal(data, tt.data) {
				t.Errorf("got (%d bytes, %q), want (%d bytes, %q)", len(data), contentType, len(tt.data), tt.wantType)
			}
		})
	}
}

func TestResizeToJPEG(t *testing.T) {
	out, err := resizeToJPEG(pngBytes(t, 640, 480), model.ProfilePictureWidth, model.ProfilePictureHeight, 85)
	if err != nil {
		t.Fatalf("resizeToJPEG() error = %v", err)
	}

	img, err := imaging.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not decodable: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 200 {
		t.Errorf("size = %dx%d, want 200x200", b.Dx(), b.Dy())
	}

	if _, err := resizeToJPEG([]byte("garbage"), 200, 200, 85); !errors.Is(err, model.ErrInvalidImageType) {
		t.Errorf("garbage input error = %v, want ErrInvalidImageType", err)
	}
}

func newTestMediaService(t *testing.T) *MediaService {
	t.Helper()
	svc, err := NewMediaService(context.Background(), &config.Config{
		S3Endpoint:        "http://localhost:9000",
		S3Region:          "us-east-1",
		S3AccessKeyID:     "test-key",
		S3SecretAccessKey: "test-secret",
		S3Bucket:          "media",
		S3PublicURL:       "https://cdn.example.com/",
	})
	if err != nil {
		t.Fatalf("NewMediaService() error = %v", err)
	}
	return svc
}

func TestMediaService_PresignPostImage(t *testing.T) {
	svc := newTestMediaService(t)

	resp, err := svc.PresignPostImage(context.Background(), &model.PresignPostImageRequest{
		ContentType: "image/png",
		FileSize:    1024,
	})
	if err != nil {
		t.Fatalf("PresignPostImage() error = %v", err)
	}

	if !strings.HasPrefix(resp.Key, model.PostImageFolder+"/") || !strings.HasSuffix(resp.Key, ".png") {
		t.Errorf("key = %q", resp.Key)
	}
	if resp.PublicURL != "https://cdn.example.com/"+resp.Key {
		t.Errorf("public url = %q", resp.PublicURL)
	}
	if !strings.HasPrefix(resp.UploadURL, "http://localhost:9000/media/"+resp.Key) {
		t.Errorf("upload url = %q, want path-style bucket url", resp.UploadURL)
	}
	if !strings.Contains(resp.UploadURL, "X-Amz-Signature=") {
		t.Errorf("upload url is not signed: %q", resp.UploadURL)
	}
	if resp.ExpiresInS != model.PresignExpirySeconds {
		t.Errorf("expires_in = %d", resp.ExpiresInS)
	}
}

func TestMediaService_PresignPostImage_Rejects(t *testing.T) {
	svc := newTestMediaService(t)

	tests := []struct {
		name    string
		req     model.PresignPostImageRequest
		wantErr error
	}{
		{"bad type", model.PresignPostImageRequest{ContentType: "application/pdf", FileSize: 10}, model.ErrInvalidImageType},
		{"too large", model.PresignPostImageRequest{ContentType: "image/jpeg", FileSize: model.MaxPostImageSizeBytes + 1}, model.ErrFileTooLarge},
		{"zero size", model.PresignPostImageRequest{ContentType: "image/jpeg"}, model.ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.PresignPostImage(context.Background(), &tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewMediaService_RequiresConfig(t *testing.T) {
	if _, err := NewMediaService(context.Background(), &config.Config{}); err == nil {
		t.Error("expected error for empty storage config")
	}
}
