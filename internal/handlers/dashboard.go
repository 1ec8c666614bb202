package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/acmebank/visualtests/internal/services"
)

// BranchClosingHour is the local hour the countdown on the dashboard runs to
const BranchClosingHour = 18

// DashboardData represents the data passed to the dashboard template
type DashboardData struct {
	Username       string
	Overview       *services.Overview
	BranchClosesIn string
}

// DashboardHandler renders the financial overview of the logged-in user
type DashboardHandler struct {
	template   *template.Template
	auth       services.AuthService
	accounts   services.AccountService
	cookieName string
	now        func() time.Time
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(templatePath string, auth services.AuthService, accounts services.AccountService, cookieName string) (*DashboardHandler, error) {
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	return &DashboardHandler{
		template:   tmpl,
		auth:       auth,
		accounts:   accounts,
		cookieName: cookieName,
		now:        time.Now,
	}, nil
}

// ServeHTTP handles the GET /app request
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, ok := currentSession(r, h.auth, h.cookieName)
	if !ok {
		http.Redirect(w, r, "/?reason=unauthenticated", http.StatusSeeOther)
		return
	}

	overview, err := h.accounts.Overview(session.Username)
	if err != nil {
		log.Printf("Error loading overview for %s: %v", session.Username, err)
		http.Error(w, "Failed to load accounts", http.StatusInternalServerError)
		return
	}

	data := DashboardData{
		Username:       session.Username,
		Overview:       overview,
		BranchClosesIn: formatCountdown(untilClosing(h.now())),
	}
	if err := h.template.Execute(w, data); err != nil {
		log.Printf("Error rendering template: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// OverviewAPIHandler serves the financial overview as JSON
type OverviewAPIHandler struct {
	auth       services.AuthService
	accounts   services.AccountService
	cookieName string
}

// NewOverviewAPIHandler creates a new overview API handler
func NewOverviewAPIHandler(auth services.AuthService, accounts services.AccountService, cookieName string) *OverviewAPIHandler {
	return &OverviewAPIHandler{auth: auth, accounts: accounts, cookieName: cookieName}
}

// AccountResponse is one account in the overview response
type AccountResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Balance  int64  `json:"balance"`
	Currency string `json:"currency"`
}

// TransactionResponse is one transaction in the overview response
type TransactionResponse struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"accountId"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// OverviewResponse represents the response sent to the client
type OverviewResponse struct {
	Owner        string                `json:"owner"`
	TotalBalance int64                 `json:"totalBalance"`
	CreditUsed   int64                 `json:"creditUsed"`
	Currency     string                `json:"currency"`
	Accounts     []AccountResponse     `json:"accounts"`
	Transactions []TransactionResponse `json:"transactions"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ServeHTTP handles the GET /api/overview request
func (h *OverviewAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, ok := currentSession(r, h.auth, h.cookieName)
	if !ok {
		sendErrorResponse(w, "Login required", http.StatusUnauthorized)
		return
	}

	overview, err := h.accounts.Overview(session.Username)
	if err != nil {
		log.Printf("Error loading overview for %s: %v", session.Username, err)
		sendErrorResponse(w, "Failed to load accounts", http.StatusInternalServerError)
		return
	}

	resp := OverviewResponse{
		Owner:        overview.Owner,
		TotalBalance: overview.TotalBalance,
		CreditUsed:   overview.CreditUsed,
		Currency:     overview.Currency,
		Accounts:     make([]AccountResponse, 0, len(overview.Accounts)),
		Transactions: make([]TransactionResponse, 0, len(overview.Transactions)),
	}
	for _, a := range overview.Accounts {
		resp.Accounts = append(resp.Accounts, AccountResponse{
			ID:       a.ID,
			Name:     a.Name,
			Kind:     string(a.Kind),
			Balance:  a.Balance,
			Currency: a.Currency,
		})
	}
	for _, t := range overview.Transactions {
		resp.Transactions = append(resp.Transactions, TransactionResponse{
			ID:          t.ID,
			AccountID:   t.AccountID,
			Status:      string(t.Status),
			Description: t.Description,
			Category:    t.Category,
			Amount:      t.Amount,
			Currency:    t.Currency,
			OccurredAt:  t.OccurredAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// currentSession resolves the session cookie of r
func currentSession(r *http.Request, auth services.AuthService, cookieName string) (*services.Session, bool) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return nil, false
	}
	session, err := auth.Lookup(cookie.Value)
	if err != nil {
		return nil, false
	}
	return session, true
}

// sendErrorResponse sends a JSON error response
func sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// untilClosing returns the time left until the branch closes today, or zero once closed
func untilClosing(now time.Time) time.Duration {
	closing := time.Date(now.Year(), now.Month(), now.Day(), BranchClosingHour, 0, 0, 0, now.Location())
	if !now.Before(closing) {
		return 0
	}
	return closing.Sub(now)
}

// formatCountdown renders d like "2h 30m 5s"; a closed branch reads "closed"
func formatCountdown(d time.Duration) string {
	if d <= 0 {
		return "closed"
	}
	d = d.Truncate(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}
