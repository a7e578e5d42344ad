package model

type CoverUploadRequest struct {
	FileName string `json:"fileName" binding:"required"`
}
