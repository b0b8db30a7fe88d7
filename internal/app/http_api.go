package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
	"github.com/vladislavdragonenkov/mdm/internal/masterdata"
	"github.com/vladislavdragonenkov/mdm/internal/service/orders"
)

// apiServer отдаёт справочники и операции над ними мобильному клиенту
// по JSON поверх HTTP. Генерация кода для gRPC-контракта справочников
// здесь не используется, поэтому доменные операции живут на HTTP,
// а gRPC несёт стандартный health-сервис.
type apiServer struct {
	orchestrators *Orchestrators
	resolver      *orders.Resolver
	customers     domain.Repository[domain.Customer]
	changelog     domain.ChangeLog
	logger        *log.Entry
}

func newAPIServer(
	orchestrators *Orchestrators,
	resolver *orders.Resolver,
	customers domain.Repository[domain.Customer],
	changelog domain.ChangeLog,
	logger *log.Entry,
) *apiServer {
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}
	return &apiServer{
		orchestrators: orchestrators,
		resolver:      resolver,
		customers:     customers,
		changelog:     changelog,
		logger:        logger,
	}
}

// register навешивает маршруты API на mux.
func (s *apiServer) register(mux *http.ServeMux) {
	registerEntityRoutes(mux, "customers", s.orchestrators.Customers, s.logger)
	registerEntityRoutes(mux, "sub-categories", s.orchestrators.SubCategories, s.logger)
	registerEntityRoutes(mux, "units", s.orchestrators.Units, s.logger)
	registerEntityRoutes(mux, "suppliers", s.orchestrators.Suppliers, s.logger)
	registerEntityRoutes(mux, "users", s.orchestrators.Users, s.logger)

	mux.HandleFunc("GET /api/v1/changelog/{table}/{id}", s.handleChangeLog)
	mux.HandleFunc("POST /api/v1/orders/active", s.handleActiveOrder)
}

// mutationRequest — конверт мутации: запись плюс текст уведомления.
type mutationRequest[T any] struct {
	Record  T      `json:"record"`
	Message string `json:"message"`
}

type flagRequest struct {
	Active  bool   `json:"active"`
	Message string `json:"message"`
}

func registerEntityRoutes[T any](mux *http.ServeMux, path string, orch *masterdata.Orchestrator[T], logger *log.Entry) {
	mux.HandleFunc("GET /api/v1/"+path, func(w http.ResponseWriter, r *http.Request) {
		scope := domain.Scope{
			RouteID:  queryInt64(r, "route_id"),
			ParentID: queryInt64(r, "parent_id"),
		}
		items, err := orch.List(r.URL.Query().Get("q"), scope)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	})

	mux.HandleFunc("POST /api/v1/"+path, func(w http.ResponseWriter, r *http.Request) {
		var req mutationRequest[T]
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
			return
		}
		created, err := orch.Create(req.Record, req.Message)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	})

	mux.HandleFunc("PUT /api/v1/"+path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req mutationRequest[T]
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
			return
		}
		updated, err := orch.Update(req.Record, req.Message)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	})

	mux.HandleFunc("PATCH /api/v1/"+path+"/{id}/active", func(w http.ResponseWriter, r *http.Request) {
		serverID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid record id"))
			return
		}
		var req flagRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
			return
		}
		if err := orch.SetActive(serverID, req.Active, req.Message); err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"active": req.Active})
	})
}

func (s *apiServer) handleChangeLog(w http.ResponseWriter, r *http.Request) {
	recordID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid record id"))
		return
	}
	entries, err := s.changelog.List(r.PathValue("table"), recordID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleActiveOrder возвращает активный заказ клиента на текущую
// бизнес-дату, создавая черновик при необходимости.
func (s *apiServer) handleActiveOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID int64 `json:"customer_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if req.CustomerID == 0 {
		writeError(w, s.logger, domain.ErrCustomerRequired)
		return
	}

	customer, err := s.customers.GetByID(req.CustomerID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	order, err := s.resolver.ActiveOrder(customer)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func queryInt64(r *http.Request, key string) int64 {
	value, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil {
		return 0
	}
	return value
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, logger *log.Entry, err error) {
	switch {
	case domain.IsConflict(err):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, domain.ErrNotSynced),
		errors.Is(err, domain.ErrCodeRequired),
		errors.Is(err, domain.ErrNameRequired),
		errors.Is(err, domain.ErrCustomerRequired),
		errors.Is(err, domain.ErrBusinessDateRequired):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	default:
		logger.WithError(err).Error("api request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
