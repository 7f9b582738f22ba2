package api

import (
	"errors"
	"net/http"

	"github.com/marshallshelly/costume-shop/pkg/auth"
	"github.com/marshallshelly/costume-shop/pkg/models"
	"github.com/marshallshelly/costume-shop/pkg/runtime"
)

// Costumes

func (s *Server) listCostumes(w http.ResponseWriter, r *http.Request) {
	costumes, err := s.deps.Costumes.All(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"costumes": costumes})
}

func (s *Server) getCostume(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	costume, err := s.deps.Costumes.ByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"costume": costume})
}

func (s *Server) createCostume(w http.ResponseWriter, r *http.Request) {
	var req models.Costume
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	costume, err := s.deps.Costumes.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"costume": costume})
}

func (s *Server) updateCostume(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req models.Costume
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	costume, err := s.deps.Costumes.Update(r.Context(), id, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"costume": costume})
}

func (s *Server) deleteCostume(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	costume, err := s.deps.Costumes.Delete(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"costume": costume})
}

func (s *Server) ordersOfCostume(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	orders, err := s.deps.Links.OrdersOfCostume(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// Customers

func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.deps.Customers.All(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": customers})
}

func (s *Server) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	customer, err := s.deps.Customers.ByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

func (s *Server) ordersOfCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	orders, err := s.deps.Orders.ByCustomerID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// Account

type registerRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	ID       int    `json:"id"`
	Password string `json:"password"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Password == "" {
		s.writeError(w, r, &runtime.ValidationError{Field: "password", Message: "is required"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	customer, err := s.deps.Customers.Create(r.Context(), models.Customer{
		FullName: req.FullName,
		Email:    req.Email,
		Password: hash,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	customer, err := s.deps.Customers.ByID(r.Context(), req.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := auth.CheckPassword(customer.Password, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Info("login rejected", "customer_id", customer.ID, "request_id", RequestIDFromContext(r.Context()))
			writeJSON(w, http.StatusUnauthorized, message{"Invalid credentials"})
			return
		}
		s.writeError(w, r, err)
		return
	}

	resp := map[string]any{"customer": customer}
	if s.deps.Tokens != nil {
		token, err := s.deps.Tokens.Issue(customer.ID, customer.FullName)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp["token"] = token
	}
	writeJSON(w, http.StatusOK, resp)
}

// Orders

type orderRequest struct {
	DatePlaced string        `json:"datePlaced"`
	Status     models.Status `json:"status"`
	CustomerID int           `json:"customerId"`
}

func (req orderRequest) order() (models.Order, error) {
	placed, err := models.ParseDate(req.DatePlaced)
	if err != nil {
		return models.Order{}, err
	}
	return models.Order{DatePlaced: placed, Status: req.Status, CustomerID: req.CustomerID}, nil
}

type linkRequest struct {
	CostumeID int `json:"costumeId"`
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.deps.Orders.All(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	order, err := s.deps.Orders.ByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	order, err := req.order()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.deps.Orders.Create(r.Context(), order)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": created})
}

func (s *Server) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req orderRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	order, err := req.order()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.deps.Orders.Update(r.Context(), id, order)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": updated})
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	order, err := s.deps.Orders.Delete(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (s *Server) customerOfOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	customer, err := s.deps.Customers.ByOrderID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

func (s *Server) costumesInOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	costumes, err := s.deps.Links.CostumesInOrder(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"costumes": costumes})
}

func (s *Server) addCostumeToOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathInt(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req linkRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	link, err := s.deps.Links.Add(r.Context(), req.CostumeID, orderID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orderCostume": link})
}

func (s *Server) removeCostumeFromOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathInt(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	costumeID, err := pathInt(r, "costumeId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Links.Remove(r.Context(), costumeID, orderID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
