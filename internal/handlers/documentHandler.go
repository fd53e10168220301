package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/krypton-oss/kryptonsec-api/internal/adapter/utils"
	"github.com/krypton-oss/kryptonsec-api/internal/api"
)

// AddDocumentHandler godoc
// @Summary      Add a knowledge base document
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Param        request  body      api.CreateDocumentRequest  true  "Document content and optional metadata"
// @Success      200      {object}  api.CreateDocumentResponse
// @Failure      403      {object}  api.ErrorResponse  "Admin or editor access required"
// @Security     BearerAuth
// @Router       /api/admin/documents [post]
func AddDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !isPrivileged(requestClaims(r)) {
		WriteErrorResponse(w, http.StatusForbidden, "", "Admin or Editor access required")
		return
	}

	var req api.CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "content is required")
		return
	}

	id, err := handlerInstance.retriever.AddDocument(r.Context(), req.Content, req.Metadata)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.CreateDocumentResponse{Id: id, Message: "Document indexed"})
}

// ListDocumentsHandler godoc
// @Summary      Page through stored documents
// @Tags         Documents
// @Produce      json
// @Param        limit   query     int  false  "Page size (default 50, max 500)"
// @Param        offset  query     int  false  "Starting row"
// @Success      200     {object}  api.DocumentListResponse
// @Failure      403     {object}  api.ErrorResponse  "Admin or editor access required"
// @Security     BearerAuth
// @Router       /api/admin/documents [get]
func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !isPrivileged(requestClaims(r)) {
		WriteErrorResponse(w, http.StatusForbidden, "", "Admin or Editor access required")
		return
	}

	limit, offset := paginationParams(r)
	docs, total, err := handlerInstance.retriever.ListDocuments(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.DocumentListResponse{
		Documents: docs,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	})
}

// UpdateDocumentHandler godoc
// @Summary      Replace a document's content and metadata
// @Description  The document is re-embedded with the new content.
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Document ID"
// @Param        request  body      api.CreateDocumentRequest  true  "New content and metadata"
// @Success      200      {object}  api.MessageResponse
// @Failure      404      {object}  api.ErrorResponse  "Unknown document"
// @Security     BearerAuth
// @Router       /api/admin/documents/{id} [put]
func UpdateDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !isPrivileged(requestClaims(r)) {
		WriteErrorResponse(w, http.StatusForbidden, "", "Admin or Editor access required")
		return
	}

	var req api.CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "content is required")
		return
	}

	id := utils.GetChiURLParam(r, "id")
	if err := handlerInstance.retriever.UpdateDocument(r.Context(), id, req.Content, req.Metadata); err != nil {
		respondServiceError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.MessageResponse{Message: "Document updated"})
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.MessageResponse
// @Security     BearerAuth
// @Router       /api/admin/documents/{id} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !isPrivileged(requestClaims(r)) {
		WriteErrorResponse(w, http.StatusForbidden, "", "Admin or Editor access required")
		return
	}

	id := utils.GetChiURLParam(r, "id")
	if err := handlerInstance.retriever.DeleteDocument(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.MessageResponse{Message: "Document deleted"})
}

// SearchDocumentsHandler godoc
// @Summary      Query the knowledge base directly
// @Description  Returns the same chunks the chat pipeline would retrieve.
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Param        request  body      api.SearchRequest  true  "Query text and optional result limit"
// @Success      200      {object}  api.SearchResponse
// @Failure      403      {object}  api.ErrorResponse  "Admin or editor access required"
// @Security     BearerAuth
// @Router       /api/admin/search [post]
func SearchDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !isPrivileged(requestClaims(r)) {
		WriteErrorResponse(w, http.StatusForbidden, "", "Admin or Editor access required")
		return
	}

	var req api.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "query is required")
		return
	}

	chunks, err := handlerInstance.retriever.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.SearchResponse{Results: chunks})
}
