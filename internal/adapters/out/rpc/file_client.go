package rpc

import (
	"context"

	"orderflow/internal/core/ports"
)

const (
	methodCreatePresignedUpload = "/files.v1.FileService/CreatePresignedUpload"
	methodGetDownloadURL        = "/files.v1.FileService/GetDownloadUrl"

	// downloadURLExpiresIn is the lifetime of a download link in seconds.
	downloadURLExpiresIn = 3600
)

const (
	visibilityPrivate = "PRIVATE"
	visibilityPublic  = "PUBLIC"
)

type presignedUploadRequest struct {
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	Visibility string `json:"visibility"`
	Folder     string `json:"folder"`
	Kind       string `json:"kind"`
}

type presignedUploadResponse struct {
	FileID     int64             `json:"file_id"`
	Bucket     string            `json:"bucket"`
	Key        string            `json:"key"`
	UploadURL  string            `json:"upload_url"`
	ExpiresIn  int64             `json:"expires_in"`
	HTTPMethod string            `json:"http_method"`
	Headers    map[string]string `json:"headers"`
}

type downloadURLRequest struct {
	FileID    int64 `json:"file_id"`
	ExpiresIn int64 `json:"expires_in"`
}

type downloadURLResponse struct {
	FileID      int64  `json:"file_id"`
	DownloadURL string `json:"download_url"`
	ExpiresIn   int64  `json:"expires_in"`
}

type FileClient struct {
	caller Caller
}

var _ ports.FileClient = (*FileClient)(nil)

func NewFileClient(caller Caller) *FileClient {
	return &FileClient{caller: caller}
}

func (c *FileClient) CreatePresignedUpload(ctx context.Context, req ports.PresignedUploadRequest) (ports.PresignedUpload, error) {
	visibility := visibilityPublic
	if req.Private {
		visibility = visibilityPrivate
	}

	var resp presignedUploadResponse
	err := c.caller.Call(ctx, methodCreatePresignedUpload, presignedUploadRequest{
		FileName:   req.FileName,
		MimeType:   req.MimeType,
		Visibility: visibility,
		Folder:     req.Folder,
		Kind:       req.Kind,
	}, &resp)
	if err != nil {
		return ports.PresignedUpload{}, err
	}

	return ports.PresignedUpload(resp), nil
}

func (c *FileClient) GetDownloadURL(ctx context.Context, fileID int64) (ports.Download, error) {
	var resp downloadURLResponse
	err := c.caller.Call(ctx, methodGetDownloadURL, downloadURLRequest{
		FileID:    fileID,
		ExpiresIn: downloadURLExpiresIn,
	}, &resp)
	if err != nil {
		return ports.Download{}, err
	}
	return ports.Download(resp), nil
}
