package api

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/statement-ledger/internal/categorizer"
	"github.com/insightdelivered/statement-ledger/internal/extractor"
	"github.com/insightdelivered/statement-ledger/internal/logger"
	"github.com/insightdelivered/statement-ledger/internal/models"
	"github.com/insightdelivered/statement-ledger/internal/pipeline"
	"github.com/insightdelivered/statement-ledger/internal/writer"
)

const Version = "2.0.0"

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success      bool                 `json:"success"`
	Error        string               `json:"error,omitempty"`
	Transactions []models.Transaction `json:"transactions"`
	Documents    []DocumentResponse   `json:"documents"`
	Summary      *writer.Summary      `json:"summary,omitempty"`
	CSV          string               `json:"csv,omitempty"`
	Count        int                  `json:"count"`
	Version      string               `json:"version,omitempty"`
}

// DocumentResponse reports the outcome for one uploaded file.
type DocumentResponse struct {
	ID             string            `json:"id,omitempty"`
	Name           string            `json:"name"`
	Account        string            `json:"account"`
	Count          int               `json:"count"`
	Error          string            `json:"error,omitempty"`
	NoTransactions bool              `json:"noTransactions,omitempty"`
	OCRUsed        bool              `json:"ocrUsed,omitempty"`
	PageFailures   int               `json:"pageFailures,omitempty"`
	Pages          []models.PageStat `json:"pages,omitempty"`
}

// CorrectionRequest is the body of POST /api/corrections.
type CorrectionRequest struct {
	Merchant string `json:"merchant"`
	Category string `json:"category"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Pipeline   *pipeline.Pipeline
	Vocabulary *categorizer.Service
	Currency   string
	StaticDir  string
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/health", HandleHealth)
	api.Post("/convert", h.HandleConvert)
	api.Post("/corrections", h.HandleCorrection)
	api.Get("/vocabulary", h.HandleVocabulary)

	// Serve the web client, falling back to index.html for client-side routes.
	if h.StaticDir != "" {
		app.Static("/", h.StaticDir)
		app.Get("/*", func(c *fiber.Ctx) error {
			if strings.HasPrefix(c.Path(), "/api/") {
				return fiber.ErrNotFound
			}
			return c.SendFile(filepath.Join(h.StaticDir, "index.html"))
		})
	}
}

func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": Version,
		"engine":  "fiber",
	})
}

// HandleConvert converts every uploaded statement in the "files" (or "file")
// form field. Account labels come from repeated "account" values in file
// order; a single value applies to all files. ?format=csv or ?format=xlsx
// returns the ledger as a download instead of JSON.
func (h *Handler) HandleConvert(c *fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.FromContext(ctx)

	form, err := c.MultipartForm()
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Failed to parse form: %v", err))
	}
	files := append(form.File["files"], form.File["file"]...)
	if len(files) == 0 {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'files'.")
	}
	accounts := form.Value["account"]
	debug := c.FormValue("debug") == "true"

	tmpDir, err := os.MkdirTemp("", "statements-*")
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to create temp dir.")
	}
	defer os.RemoveAll(tmpDir)

	var (
		inputs   []pipeline.Input
		rejected []DocumentResponse
	)
	for i, fh := range files {
		account := accountFor(accounts, i, fh.Filename)
		if !extractor.Supported(fh.Filename) {
			rejected = append(rejected, DocumentResponse{
				Name:    fh.Filename,
				Account: account,
				Error:   fmt.Sprintf("%s: only PDF, CSV and XLSX files are supported", fh.Filename),
			})
			continue
		}
		path := filepath.Join(tmpDir, fmt.Sprintf("%d%s", i, strings.ToLower(filepath.Ext(fh.Filename))))
		if err := c.SaveFile(fh, path); err != nil {
			log.Error("failed to save upload", "file", fh.Filename, "error", err)
			return writeError(c, fiber.StatusInternalServerError, "Failed to save uploaded file.")
		}
		inputs = append(inputs, pipeline.Input{Path: path, Name: fh.Filename, Account: account})
	}

	batch := h.Pipeline.Process(ctx, inputs)

	switch strings.ToLower(c.Query("format")) {
	case "csv":
		var buf bytes.Buffer
		if err := (&writer.CSVWriter{Currency: h.Currency}).Write(&buf, batch.Ledger); err != nil {
			return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
		}
		c.Set(fiber.HeaderContentType, "text/csv")
		c.Attachment("ledger.csv")
		return c.Send(buf.Bytes())
	case "xlsx":
		var buf bytes.Buffer
		if err := (&writer.ExcelWriter{Currency: h.Currency}).Write(&buf, batch.Ledger); err != nil {
			return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("Excel generation failed: %v", err))
		}
		c.Attachment("ledger.xlsx")
		return c.Send(buf.Bytes())
	}

	var csvBuf bytes.Buffer
	if err := (&writer.CSVWriter{Currency: h.Currency}).Write(&csvBuf, batch.Ledger); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}

	// Ensure transactions is never nil (nil marshals to JSON null, not [])
	txns := batch.Ledger
	if txns == nil {
		txns = []models.Transaction{}
	}
	summary := writer.Summarize(txns, h.Currency)

	resp := ConvertResponse{
		Success:      true,
		Transactions: txns,
		Documents:    append(documentResponses(batch.Documents, debug), rejected...),
		Summary:      &summary,
		CSV:          csvBuf.String(),
		Count:        len(txns),
		Version:      Version,
	}

	if len(batch.Documents) == len(batch.Failed()) {
		resp.Success = false
		resp.Error = "No document could be processed."
		return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
	}
	return c.JSON(resp)
}

func documentResponses(docs []pipeline.DocumentResult, debug bool) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		r := DocumentResponse{
			ID:             d.ID.String(),
			Name:           d.Name,
			Account:        d.Account,
			Count:          d.Count,
			NoTransactions: d.NoTransactions,
			OCRUsed:        d.OCRUsed,
			PageFailures:   d.PageFailures,
		}
		if d.Err != nil {
			r.Error = d.Err.Error()
		}
		if debug {
			r.Pages = d.Pages
		}
		out = append(out, r)
	}
	return out
}

// accountFor picks the label for the i-th file, defaulting to the file name
// without its extension.
func accountFor(accounts []string, i int, filename string) string {
	switch {
	case i < len(accounts) && strings.TrimSpace(accounts[i]) != "":
		return strings.TrimSpace(accounts[i])
	case len(accounts) == 1 && strings.TrimSpace(accounts[0]) != "":
		return strings.TrimSpace(accounts[0])
	}
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

func (h *Handler) HandleCorrection(c *fiber.Ctx) error {
	var req CorrectionRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid body: %v", err))
	}

	err := h.Vocabulary.AddCorrection(c.UserContext(), req.Merchant, req.Category)
	switch {
	case errors.Is(err, categorizer.ErrUnknownCategory), errors.Is(err, categorizer.ErrEmptyMerchant):
		return writeError(c, fiber.StatusBadRequest, err.Error())
	case err != nil:
		return writeError(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"merchant": categorizer.NormalizeKey(req.Merchant),
		"category": h.Vocabulary.Categorize(req.Merchant),
	})
}

func (h *Handler) HandleVocabulary(c *fiber.Ctx) error {
	entries := h.Vocabulary.Snapshot().Entries()
	if entries == nil {
		entries = []categorizer.Entry{}
	}
	resp := fiber.Map{
		"entries":    entries,
		"categories": h.Vocabulary.Categories(),
		"threshold":  h.Vocabulary.Threshold(),
	}
	if err := h.Vocabulary.LoadErr(); err != nil {
		resp["loadError"] = err.Error()
	}
	return c.JSON(resp)
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Success: false,
		Error:   msg,
	})
}
