package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wattwise/bill-ingest-service/internal/classify"
	"github.com/wattwise/bill-ingest-service/internal/dispatch"
	"github.com/wattwise/bill-ingest-service/internal/models"
	"github.com/wattwise/bill-ingest-service/internal/storage"
)

// ProcessBill extracts, classifies and routes an uploaded bill or meter photo.
// Form fields: file (one or more), phone.
func (h *Handler) ProcessBill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	startTime := time.Now()

	if h.deps.Extractor == nil || h.deps.Dispatcher == nil || h.deps.Endpoints == nil {
		h.sendError(w, http.StatusServiceUnavailable, "bill processing is not configured")
		return
	}

	// Parse multipart form
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		h.sendError(w, http.StatusBadRequest, "File too large or invalid form data")
		return
	}

	// accept both "file" and "image" field names
	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["image"]
	}
	if len(headers) == 0 {
		h.sendError(w, http.StatusBadRequest, "No file provided (use 'file' or 'image' field)")
		return
	}

	docs := make([]models.Document, 0, len(headers))
	for _, header := range headers {
		doc, err := readDocument(header)
		if err != nil {
			h.sendError(w, http.StatusBadRequest, "Failed to read file")
			return
		}
		docs = append(docs, doc)
	}
	phone := classify.NormalizePhone(r.FormValue("phone"))

	// Upload to MinIO (if configured) so a failed call can be retried later
	var fileRef string
	if h.deps.Upload != nil {
		first := docs[0]
		filename := fmt.Sprintf("%s_%s%s",
			time.Now().Format("20060102_150405"),
			uuid.New().String()[:8],
			storage.GetFileExtension(first.ContentType),
		)
		ref, err := h.deps.Upload(ctx, filename, bytes.NewReader(first.Data), int64(len(first.Data)), first.ContentType)
		if err != nil {
			// storage is optional, the bill is still processed
			logger.Warn().Err(err).Msg("failed to store original document")
		} else {
			fileRef = ref
		}
	}

	// temporary link to the stored original for the caller
	var fileURL string
	if fileRef != "" && h.deps.Presign != nil {
		if url, err := h.deps.Presign(ctx, fileRef); err != nil {
			logger.Warn().Err(err).Str("file_ref", fileRef).Msg("failed to presign document")
		} else {
			fileURL = url
		}
	}

	ext, err := h.deps.Extractor.Extract(ctx, docs)
	if err != nil {
		logger.Error().Err(err).Int("documents", len(docs)).Msg("extraction failed")
		h.sendError(w, http.StatusBadGateway, "extraction failed: "+err.Error())
		return
	}

	outcome := classify.ClassifyDocument(h.classifier, *ext)

	specs, err := dispatch.BuildCalls(outcome.Decision, &outcome.Validated, phone, h.deps.Endpoints.Endpoints(ctx))
	if err != nil {
		logger.Error().Err(err).Msg("failed to plan billing calls")
		h.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// the first document is the one forwarded downstream
	results, ok := h.deps.Dispatcher.Dispatch(ctx, specs, &docs[0])

	response := NewProcessResponse(outcome, results, ok)
	response.FileRef = fileRef
	response.FileURL = fileURL
	response.TotalDuration = time.Since(startTime).Seconds()

	logger.Info().
		Bool("ok", ok).
		Strs("services", outcome.Decision.Services()).
		Int("confidence", outcome.Confidence).
		Int("corrections", len(outcome.Corrections)).
		Msg("bill processed")

	h.sendJSON(w, http.StatusOK, response)
}

// ClassifyExtraction classifies an extraction document without calling the
// vision model or the billing API. The planned calls are returned for inspection.
func (h *Handler) ClassifyExtraction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadSize))
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	ext, err := models.ParseExtraction(body)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome := classify.ClassifyDocument(h.classifier, *ext)
	response := NewProcessResponse(outcome, nil, true)

	if h.deps.Endpoints != nil {
		phone := classify.NormalizePhone(r.URL.Query().Get("phone"))
		specs, err := dispatch.BuildCalls(outcome.Decision, &outcome.Validated, phone, h.deps.Endpoints.Endpoints(ctx))
		if err != nil && !errors.Is(err, models.ErrUnknownService) {
			h.sendError(w, http.StatusInternalServerError, err.Error())
			return
		}
		response.PlannedCalls = specs
	}

	h.sendJSON(w, http.StatusOK, response)
}

func readDocument(header *multipart.FileHeader) (models.Document, error) {
	file, err := header.Open()
	if err != nil {
		return models.Document{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return models.Document{}, err
	}

	return models.Document{
		Name:        header.Filename,
		ContentType: storage.ResolveContentType(header.Header.Get("Content-Type"), header.Filename),
		Data:        data,
	}, nil
}
