package domain

// OrderStatus описывает стадию жизненного цикла заказа.
type OrderStatus string

const (
	// OrderStatusDraft — черновик, созданный при открытии клиента;
	// ещё не отправлен на исполнение.
	OrderStatusDraft OrderStatus = "draft"
	// OrderStatusSubmitted — заказ подтверждён и передан на исполнение.
	OrderStatusSubmitted OrderStatus = "submitted"
)

// UnassignedStaff — sentinel для ещё не назначенных кладовщика,
// биллера и контролёра черновика.
const UnassignedStaff int64 = -1

// InvoicePrefix — префикс номера заказа; полный номер строится как
// InvoicePrefix + порядковый номер.
const InvoicePrefix = "ORDER"

// Order — заказ клиента. Черновик идентифицируется парой
// (CustomerID, BusinessDate); суммы хранятся в минимальных денежных
// единицах.
type Order struct {
	LocalID       int64       `json:"local_id"`
	ServerID      int64       `json:"server_id"`
	CustomerID    int64       `json:"customer_id"`
	InvoiceNo     string      `json:"invoice_no"`
	Sequence      int64       `json:"sequence"`
	Status        OrderStatus `json:"status"`
	BusinessDate  string      `json:"business_date"`
	SalesmanID    int64       `json:"salesman_id"`
	StorekeeperID int64       `json:"storekeeper_id"`
	BillerID      int64       `json:"biller_id"`
	CheckerID     int64       `json:"checker_id"`
	GrossMinor    int64       `json:"gross_minor"`
	DiscountMinor int64       `json:"discount_minor"`
	NetMinor      int64       `json:"net_minor"`
	CreatedAt     string      `json:"created_at"`
}

// IsDraft возвращает true для неподтверждённого черновика.
func (o Order) IsDraft() bool { return o.Status == OrderStatusDraft }
