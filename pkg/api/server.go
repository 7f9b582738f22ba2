// Package api exposes the store over HTTP with JSON bodies.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"path"

	"github.com/gorilla/mux"

	"github.com/marshallshelly/costume-shop/pkg/auth"
	"github.com/marshallshelly/costume-shop/pkg/models"
)

// CostumeStore is the costume adapter surface the handlers use.
type CostumeStore interface {
	Create(ctx context.Context, costume models.Costume) (*models.Costume, error)
	All(ctx context.Context) ([]models.Costume, error)
	ByID(ctx context.Context, id int) (*models.Costume, error)
	Update(ctx context.Context, id int, costume models.Costume) (*models.Costume, error)
	Delete(ctx context.Context, id int) (*models.Costume, error)
}

// CustomerStore is the customer adapter surface the handlers use.
type CustomerStore interface {
	Create(ctx context.Context, customer models.Customer) (*models.Customer, error)
	All(ctx context.Context) ([]models.Customer, error)
	ByID(ctx context.Context, id int) (*models.Customer, error)
	ByOrderID(ctx context.Context, orderID int) (*models.Customer, error)
}

// OrderStore is the order adapter surface the handlers use.
type OrderStore interface {
	Create(ctx context.Context, order models.Order) (*models.Order, error)
	All(ctx context.Context) ([]models.Order, error)
	ByID(ctx context.Context, id int) (*models.Order, error)
	ByCustomerID(ctx context.Context, customerID int) ([]models.Order, error)
	Update(ctx context.Context, id int, order models.Order) (*models.Order, error)
	Delete(ctx context.Context, id int) (*models.Order, error)
}

// LinkStore is the order-costume link adapter surface the handlers use.
type LinkStore interface {
	Add(ctx context.Context, costumeID, orderID int) (*models.OrderCostume, error)
	Remove(ctx context.Context, costumeID, orderID int) error
	CostumesInOrder(ctx context.Context, orderID int) ([]models.CostumeInOrder, error)
	OrdersOfCostume(ctx context.Context, costumeID int) ([]models.CostumeOrder, error)
}

// Deps are the collaborators of a Server. Tokens and StaticDir are optional.
type Deps struct {
	Costumes  CostumeStore
	Customers CustomerStore
	Orders    OrderStore
	Links     LinkStore

	Tokens    *auth.Issuer
	StaticDir string
	Logger    *slog.Logger
}

// Server routes HTTP requests to the adapters.
type Server struct {
	deps   Deps
	router *mux.Router
	logger *slog.Logger
}

// NewServer builds the router.
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		deps:   deps,
		router: mux.NewRouter(),
		logger: logger.With("component", "api"),
	}
	s.setupRoutes()
	s.setupMiddleware()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(requestID)
	s.router.Use(s.accessLog)
	s.router.Use(s.recoverer)
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("", s.handleLive).Methods(http.MethodGet)
	api.HandleFunc("/", s.handleLive).Methods(http.MethodGet)

	costumes := api.PathPrefix("/costumes").Subrouter()
	costumes.HandleFunc("", s.listCostumes).Methods(http.MethodGet)
	costumes.HandleFunc("", s.createCostume).Methods(http.MethodPost)
	costumes.HandleFunc("/{id:[0-9]+}", s.getCostume).Methods(http.MethodGet)
	costumes.HandleFunc("/{id:[0-9]+}", s.updateCostume).Methods(http.MethodPut)
	costumes.HandleFunc("/{id:[0-9]+}", s.deleteCostume).Methods(http.MethodDelete)
	costumes.HandleFunc("/{id:[0-9]+}/orders", s.ordersOfCostume).Methods(http.MethodGet)

	customers := api.PathPrefix("/customers").Subrouter()
	customers.HandleFunc("", s.listCustomers).Methods(http.MethodGet)
	customers.HandleFunc("/{id:[0-9]+}", s.getCustomer).Methods(http.MethodGet)
	customers.HandleFunc("/{id:[0-9]+}/orders", s.ordersOfCustomer).Methods(http.MethodGet)

	account := api.PathPrefix("/account").Subrouter()
	account.HandleFunc("/register", s.register).Methods(http.MethodPost)
	account.HandleFunc("/login", s.login).Methods(http.MethodPost)

	orders := api.PathPrefix("/orders").Subrouter()
	orders.HandleFunc("", s.listOrders).Methods(http.MethodGet)
	orders.HandleFunc("", s.createOrder).Methods(http.MethodPost)
	orders.HandleFunc("/{id:[0-9]+}", s.getOrder).Methods(http.MethodGet)
	orders.HandleFunc("/{id:[0-9]+}", s.updateOrder).Methods(http.MethodPut)
	orders.HandleFunc("/{id:[0-9]+}", s.deleteOrder).Methods(http.MethodDelete)
	orders.HandleFunc("/{id:[0-9]+}/customer", s.customerOfOrder).Methods(http.MethodGet)
	orders.HandleFunc("/{id:[0-9]+}/costumes", s.costumesInOrder).Methods(http.MethodGet)
	orders.HandleFunc("/{id:[0-9]+}/costumes", s.addCostumeToOrder).Methods(http.MethodPost)
	orders.HandleFunc("/{id:[0-9]+}/costumes/{costumeId:[0-9]+}", s.removeCostumeFromOrder).Methods(http.MethodDelete)

	// anything else under /api, including a known path with the wrong method
	api.PathPrefix("/").HandlerFunc(s.invalidEndpoint)

	invalidRoute := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, message{"Invalid Route"})
	})
	if s.deps.StaticDir != "" {
		s.router.PathPrefix("/").Handler(staticFiles(http.Dir(s.deps.StaticDir), invalidRoute))
	}
	// router middleware is skipped for NotFoundHandler
	s.router.NotFoundHandler = requestID(s.accessLog(invalidRoute))
}

// staticFiles serves existing files under root and hands every other request
// to fallback. Directories are served only when they hold an index.html.
func staticFiles(root http.FileSystem, fallback http.Handler) http.Handler {
	files := http.FileServer(root)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			fallback.ServeHTTP(w, r)
			return
		}
		if !servable(root, path.Clean("/"+r.URL.Path)) {
			fallback.ServeHTTP(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

func servable(root http.FileSystem, name string) bool {
	f, err := root.Open(name)
	if err != nil {
		return false
	}
	info, err := f.Stat()
	f.Close()
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return true
	}
	index, err := root.Open(path.Join(name, "index.html"))
	if err != nil {
		return false
	}
	index.Close()
	return true
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("API is live"))
}

func (s *Server) invalidEndpoint(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, message{"Invalid API endpoint"})
}
