package importcsv

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/divvy/internal/http/respond"
	"github.com/MrJamesThe3rd/divvy/internal/importer"
	"github.com/MrJamesThe3rd/divvy/internal/ledger"
)

const maxUploadSize = 10 << 20

type Handler struct {
	importSvc *importer.Service
}

func NewHandler(importSvc *importer.Service) *Handler {
	return &Handler{importSvc: importSvc}
}

// Routes expects to be mounted under a path carrying the {id} group parameter.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type importedExpense struct {
	ID          uuid.UUID           `json:"id"`
	Description string              `json:"description"`
	Amount      int64               `json:"amount"`
	PayerID     uuid.UUID           `json:"payer_id"`
	Shares      map[uuid.UUID]int64 `json:"shares"`
	CreatedAt   time.Time           `json:"created_at"`
}

type failedRow struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type importResponse struct {
	Imported int               `json:"imported"`
	Expenses []importedExpense `json:"expenses"`
	Failed   []failedRow       `json:"failed"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	groupID, ok := respond.ID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	result, err := h.importSvc.Import(r.Context(), groupID, file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	status := http.StatusOK
	if len(result.Imported) > 0 {
		status = http.StatusCreated
	}

	respond.JSON(w, status, toResponse(result))
}

func toResponse(result *importer.Result) importResponse {
	resp := importResponse{
		Imported: len(result.Imported),
		Expenses: make([]importedExpense, 0, len(result.Imported)),
		Failed:   make([]failedRow, 0, len(result.Failed)),
	}

	for _, e := range result.Imported {
		resp.Expenses = append(resp.Expenses, toExpense(e))
	}

	for _, f := range result.Failed {
		resp.Failed = append(resp.Failed, failedRow{Line: f.Line, Error: f.Err.Error()})
	}

	return resp
}

func toExpense(e ledger.Expense) importedExpense {
	return importedExpense{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		PayerID:     e.PayerID,
		Shares:      e.Shares,
		CreatedAt:   e.CreatedAt,
	}
}
