package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChangeType string

const (
	ChangeAll     ChangeType = "ALL"
	ChangeCreated ChangeType = "CREATED"
	ChangeUpdated ChangeType = "UPDATED"
	ChangeDeleted ChangeType = "DELETED"
)

func (c ChangeType) Valid() bool {
	switch c {
	case ChangeAll, ChangeCreated, ChangeUpdated, ChangeDeleted:
		return true
	}
	return false
}

type Ordering string

const (
	OrderingAsc  Ordering = "ASC"
	OrderingDesc Ordering = "DESC"
)

// softDeleteColumn holds the timestamp that hides a row from default reads.
const softDeleteColumn = "deleted"

// Order is one table's ticket. ActiveTable mirrors Table while the order is
// live and open and is NULL otherwise; its unique index keeps a table from
// holding two open orders.
type Order struct {
	ID            string      `json:"id" gorm:"primaryKey;size:36"`
	Table         string      `json:"table" gorm:"column:table_code;size:191;not null;index"`
	Closed        bool        `json:"closed" gorm:"not null;default:false"`
	ActiveTable   *string     `json:"-" gorm:"column:active_table;size:191;uniqueIndex"`
	OrderInfoList []OrderInfo `json:"orderInfoList" gorm:"foreignKey:OrderID"`
	Deleted       *time.Time  `json:"deleted,omitempty" gorm:"index"`
	CreatedAt     time.Time   `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     time.Time   `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }

func (Order) SoftDeleteColumn() string { return softDeleteColumn }

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderInfo is a single submission of handwritten tickets for an order.
type OrderInfo struct {
	ID             string                      `json:"id" gorm:"primaryKey;size:36"`
	OrderID        string                      `json:"orderId" gorm:"size:36;not null;index"`
	AdditionalInfo *string                     `json:"additionalInfo"`
	Completed      bool                        `json:"completed" gorm:"not null;default:false"`
	ImageURLs      datatypes.JSONSlice[string] `json:"imageUrls" gorm:"column:image_urls;not null"`
	Deleted        *time.Time                  `json:"deleted,omitempty" gorm:"index"`
	CreatedAt      time.Time                   `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt      time.Time                   `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (OrderInfo) TableName() string { return "order_infos" }

func (OrderInfo) SoftDeleteColumn() string { return softDeleteColumn }

func (i *OrderInfo) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// OrderFilter selects orders for listing. A nil Closed means both open and
// closed orders.
type OrderFilter struct {
	Table          *string
	Closed         *bool
	OrderByCreated *Ordering
	OrderByUpdated *Ordering
}

// DefaultOrderFilter lists only active orders.
func DefaultOrderFilter() OrderFilter {
	closed := false
	return OrderFilter{Closed: &closed}
}

type UpdateOrderInput struct {
	ID     string
	Table  *string
	Closed *bool
}
