package receipt

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/husseinallaw/receiptvault-app/internal/extraction"
	"github.com/husseinallaw/receiptvault-app/internal/priceindex"
)

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// jsonError writes a JSON error response with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// handleListReceipts returns a list of all receipts
func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.service.ListReceipts()
	if err != nil {
		slog.Error("Error listing receipts", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(receipts); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleUploadReceipt handles receipt upload: the image goes through OCR
// and field extraction before the structured receipt is returned
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	// 50MB ceiling to handle high-resolution phone photos
	maxFormSize := int64(50 << 20)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		if err.Error() == "http: request body too large" {
			errorMsg = "File is too large. Maximum size is 50MB. Please compress or resize your image."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		errorMsg := "No file provided"
		if err.Error() == "http: no such file" {
			errorMsg = "No file was selected. Please choose a file to upload."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}
	defer f.Close()

	if header.Size > maxFormSize {
		jsonError(w, "File is too large. Maximum size is 50MB. Please compress or resize your image.", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeFromExt(header.Filename)
	}
	// Preserve HEIC/HEIF MIME types so conversion logic can detect them
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	receipt, err := s.service.ProcessReceipt(header.Filename, data, contentType)
	if err != nil {
		slog.Error("Error processing receipt", "filename", header.Filename, "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(receipt); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// contentTypeFromExt guesses a content type from a filename extension
func contentTypeFromExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleGetReceipt returns a single receipt by ID
func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	receipt, err := s.service.GetReceipt(id)
	if err != nil {
		slog.Error("Error getting receipt", "id", id, "error", err)
		corsError(w, "Receipt not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(receipt); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleGetReceiptImage serves the stored source image for a receipt
func (s *Server) handleGetReceiptImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	data, contentType, err := s.service.GetReceiptImage(id)
	if err != nil {
		slog.Error("Error getting receipt image", "id", id, "error", err)
		corsError(w, "Receipt image not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteReceipt removes a receipt and its image
func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.service.DeleteReceipt(id); err != nil {
		slog.Error("Error deleting receipt", "id", id, "error", err)
		corsError(w, "Receipt not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// priceObservationRequest is the body of a recorded price observation
type priceObservationRequest struct {
	StoreID    string     `json:"store_id"`
	Price      float64    `json:"price"`
	Currency   string     `json:"currency"`
	RecordedAt *time.Time `json:"recorded_at"`
}

// handleRecordPrice merges one price observation into a product's index
func (s *Server) handleRecordPrice(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")

	var req priceObservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.StoreID == "" {
		jsonError(w, "store_id is required", http.StatusBadRequest)
		return
	}
	if req.Price < 0 {
		jsonError(w, "price must not be negative", http.StatusBadRequest)
		return
	}

	currency := extraction.Currency(req.Currency)
	if currency != extraction.CurrencyLBP && currency != extraction.CurrencyUSD {
		jsonError(w, "currency must be LBP or USD", http.StatusBadRequest)
		return
	}

	recordedAt := time.Now()
	if req.RecordedAt != nil {
		recordedAt = *req.RecordedAt
	}

	entry, err := s.prices.Record(productID, priceindex.Observation{
		StoreID:    req.StoreID,
		Price:      req.Price,
		Currency:   currency,
		RecordedAt: recordedAt,
	})
	if err != nil {
		slog.Error("Error recording price", "product_id", productID, "store_id", req.StoreID, "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entry); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleGetPriceIndex returns a product's price index entry
func (s *Server) handleGetPriceIndex(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")

	entry, err := s.prices.Get(productID)
	if err != nil {
		slog.Error("Error getting price index", "product_id", productID, "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if entry == nil {
		corsError(w, "Price index not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entry); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleListRates returns the active exchange rates
func (s *Server) handleListRates(w http.ResponseWriter, r *http.Request) {
	rates, err := s.rates.Active()
	if err != nil {
		slog.Error("Error listing exchange rates", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rates); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleListInsights returns all stored spending insights
func (s *Server) handleListInsights(w http.ResponseWriter, r *http.Request) {
	list, err := s.insights.List()
	if err != nil {
		slog.Error("Error listing insights", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(list); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}
