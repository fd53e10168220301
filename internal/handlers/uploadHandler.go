package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/krypton-oss/kryptonsec-api/internal/adapter/utils"
	"github.com/krypton-oss/kryptonsec-api/internal/api"
	"github.com/krypton-oss/kryptonsec-api/internal/config"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/jobModel"
	"github.com/krypton-oss/kryptonsec-api/internal/metrics"
)

// UploadFileHandler godoc
// @Summary      Bulk import a knowledge base file
// @Description  Accepts a JSON array or NDJSON file via multipart/form-data, stores it to disk and queues a background import job. Progress is reported through the status endpoint.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "JSON array or NDJSON of {content, metadata} records"
// @Success      202   {object}  api.MessageResponse  "Accepted - processing started in background"
// @Failure      400   {object}  api.ErrorResponse    "No JSON file found or file too large"
// @Failure      403   {object}  api.ErrorResponse    "Admin or editor access required"
// @Security     BearerAuth
// @Router       /api/admin/upload/file [post]
func UploadFileHandler(w http.ResponseWriter, r *http.Request) {
	if !isPrivileged(requestClaims(r)) {
		WriteErrorResponse(w, http.StatusForbidden, "", "Admin or Editor access required")
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logRH.Error("Couldn't get target directory :", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	if err := r.ParseMultipartForm(config.UploadMaxBytes); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("file")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "No JSON file found")
		return
	}
	defer fileReader.Close()

	name := fileMetadata.Filename
	if !strings.HasSuffix(name, ".json") && !strings.HasSuffix(name, ".ndjson") {
		WriteErrorResponse(w, http.StatusBadRequest, name, "Only .json and .ndjson uploads are supported")
		return
	}

	tempFilePath := filepath.Join(targetDir, fmt.Sprintf("%d-%s", time.Now().UnixNano(), name))
	destinationFileWriter, err := os.Create(tempFilePath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, name, "Storage error")
		return
	}
	defer destinationFileWriter.Close()

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, name, "Write error")
		return
	}

	pushImportJob(r, name, tempFilePath)
	writeJsonResponse(w, http.StatusAccepted, api.MessageResponse{
		Message: "File uploaded. Processing started in background.",
	})
}

// UploadStatusHandler godoc
// @Summary      Progress of the current bulk import
// @Tags         Ingestion
// @Produce      json
// @Success      200  {object}  ragModel.ImportStatus
// @Failure      403  {object}  api.ErrorResponse  "Admin or editor access required"
// @Security     BearerAuth
// @Router       /api/admin/upload/status [get]
func UploadStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !isPrivileged(requestClaims(r)) {
		WriteErrorResponse(w, http.StatusForbidden, "", "Admin or Editor access required")
		return
	}
	writeJsonResponse(w, http.StatusOK, handlerInstance.tracker.Snapshot())
}

func pushImportJob(r *http.Request, fileName, filePath string) {
	traceId, _ := r.Context().Value(config.TRACE_ID_KEY).(string)
	newJob := jobModel.Job{
		Id:          utils.GetNewUUID(),
		TraceId:     traceId,
		FileName:    fileName,
		FilePath:    filePath,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
	}

	metrics.IncrementJobsInQueue()

	//blocking send so a burst of uploads backs up at the HTTP layer
	handlerInstance.jobService.JobChannel <- newJob
	logRH.Info("Queued import job", "jobId", newJob.Id, "file", fileName)

	//imports are heavy, so every queued job may grow the pool by one
	atomic.AddInt64(&handlerInstance.jobService.RequestCount, 1)
	handlerInstance.jobService.DispatcherChannel <- true
}
