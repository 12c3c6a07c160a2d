package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ProductCatalog/pkg/kit"
)

const (
	maxBodyBytes          = 1 << 20
	defaultMaxUploadBytes = 5 << 20
	csvFormField          = "csvFile"
	utf8BOM               = "\ufeff"
)

// Scheduler is told after every successful mutation.
type Scheduler interface {
	Schedule()
}

type Server struct {
	Store     *Store
	Saves     Scheduler
	Persister Persister
	Log       *zap.Logger

	MaxUploadBytes int64
}

type productResp struct {
	Message string  `json:"message"`
	Product Product `json:"product"`
}

type healthResp struct {
	Status        string `json:"status"`
	TotalProducts int    `json:"totalProducts"`
	Storage       string `json:"storage"`
	File          string `json:"file"`
}

type bulkReq struct {
	Products json.RawMessage `json:"products"`
}

type bulkItemResult struct {
	Index   int      `json:"index"`
	Success bool     `json:"success"`
	Product *Product `json:"product,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type bulkResp struct {
	Message      string           `json:"message"`
	Results      []bulkItemResult `json:"results"`
	Total        int              `json:"total"`
	SuccessCount int              `json:"successCount"`
	ErrorCount   int              `json:"errorCount"`
}

type uploadResp struct {
	Message  string    `json:"message"`
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	ImportID string    `json:"importId"`
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	if s.Persister == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Persister.Ping(ctx); err != nil {
		s.logger().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "Service Unavailable", "storage not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	resp := healthResp{Status: "OK", TotalProducts: s.Store.Len()}
	if s.Persister != nil {
		resp.Storage, resp.File = s.Persister.Describe()
	}
	kit.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) list(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Store.List())
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok := s.Store.Get(id)
	if !ok {
		writeNotFound(w, r, id)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var patch ProductPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "Bad Request", "invalid JSON body: "+err.Error())
		return
	}

	p := s.Store.Create(patch)
	s.changed()

	s.logger().Info("product created", zap.String("id", p.ID))
	kit.WriteJSON(w, http.StatusCreated, productResp{Message: "Product created successfully", Product: p})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch ProductPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "Bad Request", "invalid JSON body: "+err.Error())
		return
	}

	p, err := s.Store.Update(id, patch)
	if errors.Is(err, ErrNotFound) {
		writeNotFound(w, r, id)
		return
	}
	if err != nil {
		s.writeInternal(w, r, "update product failed", err)
		return
	}
	s.changed()

	kit.WriteJSON(w, http.StatusOK, productResp{Message: "Product updated successfully", Product: p})
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := s.Store.Delete(id)
	if errors.Is(err, ErrNotFound) {
		writeNotFound(w, r, id)
		return
	}
	if err != nil {
		s.writeInternal(w, r, "delete product failed", err)
		return
	}
	s.changed()

	s.logger().Info("product deleted", zap.String("id", p.ID))
	kit.WriteJSON(w, http.StatusOK, productResp{Message: "Product deleted successfully", Product: p})
}

func (s *Server) bulkCreate(w http.ResponseWriter, r *http.Request) {
	var req bulkReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "Bad Request", "invalid JSON body: "+err.Error())
		return
	}

	var items []json.RawMessage
	if !isJSONArray(req.Products) || json.Unmarshal(req.Products, &items) != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "Bad Request", "products must be an array")
		return
	}

	results := make([]bulkItemResult, len(items))
	patches := make([]ProductPatch, 0, len(items))
	accepted := make([]int, 0, len(items))

	for i, raw := range items {
		results[i].Index = i

		var patch ProductPatch
		if err := decodeItem(raw, &patch); err != nil {
			results[i].Error = err.Error()
			continue
		}
		patches = append(patches, patch)
		accepted = append(accepted, i)
	}

	created := s.Store.CreateBatch(patches)
	for k, i := range accepted {
		p := created[k]
		results[i].Success = true
		results[i].Product = &p
	}

	failed := len(items) - len(created)
	if len(created) > 0 {
		s.changed()
	}

	s.logger().Info("bulk create", zap.Int("created", len(created)), zap.Int("failed", failed))
	kit.WriteJSON(w, http.StatusCreated, bulkResp{
		Message:      fmt.Sprintf("Bulk upload completed: %d succeeded, %d failed", len(created), failed),
		Results:      results,
		Total:        len(items),
		SuccessCount: len(created),
		ErrorCount:   failed,
	})
}

// uploadCSV parses an uploaded CSV into staged products. Nothing is stored;
// the returned ids are provisional and are reassigned if the products are
// later submitted to /products/bulk.
func (s *Server) uploadCSV(w http.ResponseWriter, r *http.Request) {
	limit := s.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "Bad Request", "invalid multipart upload: "+err.Error())
		return
	}

	f, hdr, err := r.FormFile(csvFormField)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "Bad Request", "no file uploaded")
		return
	}
	defer f.Close()

	if !strings.EqualFold(filepath.Ext(hdr.Filename), ".csv") {
		kit.WriteError(w, r, http.StatusBadRequest, "Bad Request", "only CSV files are allowed")
		return
	}

	raw, err := io.ReadAll(f)
	if err != nil {
		s.writeInternal(w, r, "read csv upload failed", err)
		return
	}
	if !utf8.Valid(raw) {
		s.writeInternal(w, r, "decode csv upload failed", errors.New("file is not valid UTF-8"))
		return
	}

	text := strings.TrimPrefix(string(raw), utf8BOM)
	products := ParseCSV(text, s.Store.MaxID())
	importID := uuid.NewString()

	s.logger().Info("csv parsed",
		zap.String("import_id", importID),
		zap.String("file", hdr.Filename),
		zap.Int("products", len(products)),
	)
	kit.WriteJSON(w, http.StatusOK, uploadResp{
		Message:  fmt.Sprintf("CSV parsed: %d products ready for review", len(products)),
		Products: products,
		Total:    len(products),
		ImportID: importID,
	})
}

func (s *Server) changed() {
	if s.Saves != nil {
		s.Saves.Schedule()
	}
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) writeInternal(w http.ResponseWriter, r *http.Request, what string, err error) {
	s.logger().Error(what, zap.Error(err))
	kit.WriteError(w, r, http.StatusInternalServerError, "Internal Server Error", err.Error())
}

func writeNotFound(w http.ResponseWriter, r *http.Request, id string) {
	kit.WriteError(w, r, http.StatusNotFound, "Product not found", fmt.Sprintf("product with id %q does not exist", id))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after json object")
	}
	return nil
}

func decodeItem(raw json.RawMessage, patch *ProductPatch) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return errors.New("product must be a JSON object")
	}
	return json.Unmarshal(raw, patch)
}

func isJSONArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
