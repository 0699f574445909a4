package model

import "errors"

const (
	MaxProfilePictureSizeBytes = 5 * 1024 * 1024
	MaxPostImageSizeBytes      = 10 * 1024 * 1024
	ProfilePictureWidth        = 200
	ProfilePictureHeight       = 200
	ProfilePictureFolder       = "profile_pics"
	PostImageFolder            = "post_images"
	ProfilePictureExt          = ".jpg"
	ImmutableCacheControl      = "public, max-age=31536000"
	PresignExpirySeconds       = 900
)

// Supported image content types for upload validation
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"
)

var imageExtensions = map[string]string{
	ContentTypeJPEG: ".jpg",
	ContentTypePNG:  ".png",
	ContentTypeGIF:  ".gif",
	ContentTypeWebP: ".webp",
}

// Error codes for HTTP responses
const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidImageType = "INVALID_IMAGE_TYPE"
)

var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")
)

// UploadResult is the stored object location. URL is what clients persist in
// profile.profile_picture or post.image.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// PresignPostImageRequest asks for a direct upload URL for a post image.
type PresignPostImageRequest struct {
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size"`
}

// PresignPostImageResponse: the client PUTs the bytes to UploadURL, then sends
// PublicURL as the post's image.
type PresignPostImageResponse struct {
	UploadURL  string `json:"upload_url"`
	PublicURL  string `json:"public_url"`
	Key        string `json:"key"`
	ExpiresInS int    `json:"expires_in"`
}

// IsAllowedImageType reports if the provided content type is supported
func IsAllowedImageType(contentType string) bool {
	_, ok := imageExtensions[contentType]
	return ok
}

// ImageExtension returns the object key extension for a supported content type.
func ImageExtension(contentType string) string {
	return imageExtensions[contentType]
}
