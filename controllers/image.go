package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"inpaint/metrics"
	"inpaint/models"
	"inpaint/storage"
	"inpaint/utils"
)

// PairStore Record store used by the handlers
type PairStore interface {
	Insert(ctx context.Context, original models.FileInfo, mask models.FileInfo) (uint, error)
	ListRecent(ctx context.Context, limit int) ([]models.ImagePair, error)
	Ping(ctx context.Context) error
}

// PairWriter Writes the two uploaded files to the upload directory
type PairWriter interface {
	SavePair(original storage.Payload, mask storage.Payload) (models.FileInfo, models.FileInfo, error)
}

type UploadResponse struct {
	ID           uint   `json:"id"`
	Message      string `json:"message"`
	OriginalPath string `json:"original_path"`
	MaskPath     string `json:"mask_path"`
}

type ImagePairResponse struct {
	ID               uint      `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	OriginalPath     string    `json:"original_path"`
	MaskFilename     string    `json:"mask_filename"`
	MaskPath         string    `json:"mask_path"`
	UploadDate       time.Time `json:"upload_date"`
}

// UploadImages Store an original image with its mask and record the pair
func UploadImages(store PairStore, writer PairWriter, config *utils.Config) gin.HandlerFunc {
	fn := func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.Upload.MaxBytes)

		original, err := formPayload(c, "original")
		if err != nil {
			abortUpload(c, err)
			return
		}
		mask, err := formPayload(c, "mask")
		if err != nil {
			abortUpload(c, err)
			return
		}

		originalInfo, maskInfo, err := writer.SavePair(original, mask)
		if err != nil {
			abortUpload(c, err)
			return
		}
		metrics.RecordUploadBytes("original", mimetype.Detect(original.Data).String(), len(original.Data))
		metrics.RecordUploadBytes("mask", mimetype.Detect(mask.Data).String(), len(mask.Data))

		id, err := store.Insert(c.Request.Context(), originalInfo, maskInfo)
		if err != nil {
			abortUpload(c, fmt.Errorf("Failed to save to database: %w", err))
			return
		}

		log.WithFields(log.Fields{
			"id":       id,
			"original": originalInfo.Filename,
			"mask":     maskInfo.Filename,
		}).Info("Stored image pair")
		metrics.RecordUpload("success")

		c.JSON(http.StatusOK, UploadResponse{
			ID:           id,
			Message:      "Images uploaded successfully",
			OriginalPath: config.FileURL(originalInfo.Filename),
			MaskPath:     config.FileURL(maskInfo.Filename),
		})
	}
	return fn
}

// FindImages List the most recent image pairs
func FindImages(store PairStore, config *utils.Config) gin.HandlerFunc {
	fn := func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(config.Upload.ListLimit)))
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "limit must be an integer"})
			return
		}
		if limit < 1 {
			limit = 1
		}
		if limit > config.Upload.MaxListLimit {
			limit = config.Upload.MaxListLimit
		}

		pairs, err := store.ListRecent(c.Request.Context(), limit)
		if err != nil {
			log.WithError(err).Warn("Listing image pairs failed")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}
		if len(pairs) == 0 {
			c.JSON(http.StatusOK, gin.H{"message": "No images found"})
			return
		}

		response := make([]ImagePairResponse, 0, len(pairs))
		for _, pair := range pairs {
			response = append(response, ImagePairResponse{
				ID:               pair.ID,
				OriginalFilename: pair.OriginalFilename,
				OriginalPath:     pair.OriginalPath,
				MaskFilename:     pair.MaskFilename,
				MaskPath:         pair.MaskPath,
				UploadDate:       pair.UploadDate,
			})
		}
		c.JSON(http.StatusOK, response)
	}
	return fn
}

// formPayload Read a multipart file field completely
func formPayload(c *gin.Context, field string) (storage.Payload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return storage.Payload{}, &missingFieldError{field: field}
		}
		return storage.Payload{}, err
	}
	data, err := readFormFile(header)
	if err != nil {
		return storage.Payload{}, fmt.Errorf("read %s: %w", field, err)
	}
	return storage.Payload{Name: header.Filename, Data: data}, nil
}

func readFormFile(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

type missingFieldError struct {
	field string
}

func (e *missingFieldError) Error() string {
	return fmt.Sprintf("%s: field required", e.field)
}

// abortUpload Every failure in the upload path is reported as a server error,
// except a missing form field which is a validation error.
func abortUpload(c *gin.Context, err error) {
	metrics.RecordUpload("failed")

	var missing *missingFieldError
	if errors.As(err, &missing) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	log.WithFields(log.Fields{
		"request_id": c.GetString("request_id"),
	}).WithError(err).Warn("Upload failed")
	c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
}
