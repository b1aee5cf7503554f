package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"librarian/internal/ratelimit"
	"librarian/internal/service"
	"librarian/internal/util"
	"librarian/pkg/domain"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	Authors *service.AuthorService
	Genres  *service.GenreService
	Books   *service.BookService
	Members *service.MemberService
	Loans   *service.LoanService

	RedisAddr          string
	RedisPassword      string
	RateLimitPerMinute int
	TrustedProxies     []string
}

// Server exposes the library API over HTTP.
type Server struct {
	authors *service.AuthorService
	genres  *service.GenreService
	books   *service.BookService
	members *service.MemberService
	loans   *service.LoanService

	mux     *http.ServeMux
	limiter *ratelimit.FixedWindowLimiter
	proxies *util.TrustedProxies
}

// New constructs the server with routes configured. Rate limiting is
// enabled only when a per-minute quota is set.
func New(cfg Config) (*Server, error) {
	s := &Server{
		authors: cfg.Authors,
		genres:  cfg.Genres,
		books:   cfg.Books,
		members: cfg.Members,
		loans:   cfg.Loans,
		mux:     http.NewServeMux(),
	}
	if cfg.RateLimitPerMinute > 0 {
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(
			cfg.RedisAddr, cfg.RedisPassword, "librarian:ratelimit:api",
			cfg.RateLimitPerMinute, time.Minute,
		)
		if err != nil {
			return nil, err
		}
		s.limiter = limiter
	}
	proxies, err := util.NewTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}
	s.proxies = proxies
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	var h http.Handler = s.mux
	h = s.withRateLimit(h)
	return util.WithRequestID(util.WithRequestLog("library", util.WithSecurityHeaders(util.WithCORS(h))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.HandleFunc("/authors", s.handleAuthors)
	s.mux.HandleFunc("/authors/", s.handleAuthorByID)
	s.mux.HandleFunc("/genres", s.handleGenres)
	s.mux.HandleFunc("/books", s.handleBooks)
	s.mux.HandleFunc("/books/", s.handleBookByID)
	s.mux.HandleFunc("/members", s.handleMembers)
	s.mux.HandleFunc("/members/", s.handleMemberByID)
	s.mux.HandleFunc("/borrow", s.handleBorrow)
	s.mux.HandleFunc("/return", s.handleReturn)
	s.mux.HandleFunc("/loans", s.handleLoans)
	s.mux.HandleFunc("/loans/", s.handleMemberLoans)
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(util.ClientIP(r, s.proxies)) {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createAuthorRequest struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

func (s *Server) handleAuthors(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req createAuthorRequest
		if !decodeBody(w, r, &req) {
			return
		}
		author, err := s.authors.Create(r.Context(), req.Name, req.Bio)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, author)
	case http.MethodGet:
		page, limit := pageParams(r)
		result, err := s.authors.List(r.Context(), page, limit)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleAuthorByID(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/authors/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	author, err := s.authors.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, author)
}

type createGenreRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req createGenreRequest
		if !decodeBody(w, r, &req) {
			return
		}
		genre, err := s.genres.Create(r.Context(), req.Name)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, genre)
	case http.MethodGet:
		page, limit := pageParams(r)
		result, err := s.genres.List(r.Context(), page, limit)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type createBookRequest struct {
	Title         string   `json:"title"`
	ISBN          string   `json:"isbn"`
	AuthorID      string   `json:"authorId"`
	GenreIDs      []string `json:"genreIds"`
	InitialCopies int      `json:"initialCopies"`
}

type updateBookRequest struct {
	Title    *string  `json:"title"`
	ISBN     *string  `json:"isbn"`
	AuthorID *string  `json:"authorId"`
	GenreIDs []string `json:"genreIds"`
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req createBookRequest
		if !decodeBody(w, r, &req) {
			return
		}
		book, err := s.books.Create(r.Context(), service.CreateBookInput{
			Title:         req.Title,
			ISBN:          req.ISBN,
			AuthorID:      req.AuthorID,
			GenreIDs:      req.GenreIDs,
			InitialCopies: req.InitialCopies,
		})
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, book)
	case http.MethodGet:
		page, limit := pageParams(r)
		result, err := s.books.List(r.Context(), page, limit)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleBookByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/books/"), "/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	switch sub {
	case "":
		s.handleBook(w, r, id)
	case "copies":
		s.handleBookCopies(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		book, err := s.books.Get(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, book)
	case http.MethodPut:
		var req updateBookRequest
		if !decodeBody(w, r, &req) {
			return
		}
		book, err := s.books.Update(r.Context(), id, service.UpdateBookInput{
			Title:    req.Title,
			ISBN:     req.ISBN,
			AuthorID: req.AuthorID,
			GenreIDs: req.GenreIDs,
		})
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, book)
	case http.MethodDelete:
		if err := s.books.Delete(r.Context(), id); err != nil {
			writeDomainError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleBookCopies(w http.ResponseWriter, r *http.Request, bookID string) {
	switch r.Method {
	case http.MethodPost:
		copyRec, err := s.books.AddCopy(r.Context(), bookID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, copyRec)
	case http.MethodGet:
		page, limit := pageParams(r)
		result, err := s.books.ListCopies(r.Context(), bookID, page, limit)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type createMemberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type updateMemberRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req createMemberRequest
		if !decodeBody(w, r, &req) {
			return
		}
		member, err := s.members.Create(r.Context(), req.Name, req.Email)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, member)
	case http.MethodGet:
		page, limit := pageParams(r)
		result, err := s.members.List(r.Context(), page, limit)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleMemberByID(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/members/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		member, err := s.members.Get(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, member)
	case http.MethodPut:
		var req updateMemberRequest
		if !decodeBody(w, r, &req) {
			return
		}
		member, err := s.members.Update(r.Context(), id, service.UpdateMemberInput{
			Name:  req.Name,
			Email: req.Email,
		})
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, member)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type borrowRequest struct {
	BookID   string `json:"bookId"`
	MemberID string `json:"memberId"`
	CopyID   string `json:"copyId"`
}

func (s *Server) handleBorrow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req borrowRequest
	if !decodeBody(w, r, &req) {
		return
	}
	loan, err := s.loans.Borrow(r.Context(), req.BookID, req.MemberID, req.CopyID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

type returnRequest struct {
	LoanID string `json:"loanId"`
}

func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req returnRequest
	if !decodeBody(w, r, &req) {
		return
	}
	loan, err := s.loans.Return(r.Context(), req.LoanID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (s *Server) handleLoans(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	page, limit := pageParams(r)
	result, err := s.loans.ListAllLoans(r.Context(), page, limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMemberLoans(w http.ResponseWriter, r *http.Request) {
	memberID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/loans/"), "/")
	if memberID == "" || strings.Contains(memberID, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	page, limit := pageParams(r)
	result, err := s.loans.ListMemberLoans(r.Context(), memberID, page, limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// pageParams parses page/limit query parameters, defaulting to page=1
// and limit=10 when omitted or non-positive.
func pageParams(r *http.Request) (int, int) {
	page := defaultPage
	limit := defaultLimit
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return page, limit
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

// writeDomainError maps the closed domain error taxonomy to HTTP status
// codes. Unclassified errors are logged and surface as a generic 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		util.LoggerFromContext(r.Context()).Error("unhandled error", "err", err)
		writeErrorWithCode(w, r, http.StatusInternalServerError, "internal error", "INTERNAL")
		return
	}
	switch de.Kind {
	case domain.KindValidation:
		writeErrorWithCode(w, r, http.StatusBadRequest, de.Message, "VALIDATION_ERROR")
	case domain.KindConflict:
		writeErrorWithCode(w, r, http.StatusConflict, de.Message, "CONFLICT")
	case domain.KindNotFound:
		writeErrorWithCode(w, r, http.StatusNotFound, de.Message, "NOT_FOUND")
	case domain.KindDatabase:
		util.LoggerFromContext(r.Context()).Error("database error", "err", err)
		writeErrorWithCode(w, r, http.StatusInternalServerError, de.Message, "DATABASE_ERROR")
	default:
		writeErrorWithCode(w, r, http.StatusInternalServerError, de.Message, "INTERNAL")
	}
}

func writeErrorWithCode(w http.ResponseWriter, r *http.Request, status int, msg, code string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		Code:      code,
		RequestID: util.RequestIDFromRequest(r),
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: http.StatusText(status)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
